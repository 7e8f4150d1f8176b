// Package zone implements a bump allocator over growable byte arenas.
//
// A Zone never frees individual allocations; it resets wholesale, the
// same lifecycle the generated node storage and pass scratch data
// follow (see the root package's Builder).
package zone

// blockSize is the size of each backing chunk. Allocations larger than
// this get their own oversized chunk.
const blockSize = 64 * 1024

// Zone is a single-threaded bump allocator. The zero value is not
// usable; construct with New.
type Zone struct {
	blocks     [][]byte
	cur        []byte
	allocCount int64
	reuseCount int64
	blockSize  int
}

// New creates a Zone whose first chunk holds at least initialSize
// bytes (rounded up to the default block size).
func New(initialSize int) *Zone {
	sz := blockSize
	if initialSize > sz {
		sz = initialSize
	}
	z := &Zone{blockSize: sz}
	z.grow(sz)
	return z
}

func (z *Zone) grow(n int) {
	if n < z.blockSize {
		n = z.blockSize
	}
	block := make([]byte, 0, n)
	z.blocks = append(z.blocks, block)
	z.cur = z.blocks[len(z.blocks)-1]
}

// Alloc returns a zeroed byte slice of length n whose backing array is
// owned by the zone. The slice remains valid until the next Reset.
func (z *Zone) Alloc(n int) []byte {
	if n == 0 {
		return nil
	}
	z.allocCount++
	if cap(z.cur)-len(z.cur) < n {
		z.grow(n)
	}
	base := len(z.cur)
	z.cur = z.cur[:base+n]
	buf := z.cur[base : base+n : base+n]
	// A block kept by Reset still holds its earlier contents.
	clear(buf)
	return buf
}

// AllocCopy allocates len(src) bytes and copies src into them.
func (z *Zone) AllocCopy(src []byte) []byte {
	dst := z.Alloc(len(src))
	copy(dst, src)
	return dst
}

// AllocString copies s into zone-owned storage and returns it as a
// string. The string conversion copies the bytes again, so the
// returned string is not backed by the zone.
func (z *Zone) AllocString(s string) string {
	if s == "" {
		return ""
	}
	return string(z.AllocCopy([]byte(s)))
}

// Stats reports allocation counters, mirroring the shape of a page
// pool's allocation statistics.
type Stats struct {
	AllocCount int64
	ReuseCount int64
	Blocks     int
}

func (z *Zone) Stats() Stats {
	return Stats{AllocCount: z.allocCount, ReuseCount: z.reuseCount, Blocks: len(z.blocks)}
}

// Reset releases all allocations, keeping the first backing block for
// reuse so the next build cycle doesn't pay for a fresh allocation.
func (z *Zone) Reset() {
	if len(z.blocks) == 0 {
		z.grow(z.blockSize)
		return
	}
	first := z.blocks[0][:0]
	z.reuseCount += int64(len(z.blocks))
	z.blocks = z.blocks[:1]
	z.blocks[0] = first
	z.cur = z.blocks[0]
}
