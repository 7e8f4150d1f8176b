package asmjit

import (
	"encoding/binary"

	"github.com/holiman/uint256"
)

// constEntry is one deduplicated payload in a ConstPool.
type constEntry struct {
	payload []byte
	offset  uint32
}

// ConstPool deduplicates constant data by content, the same role the
// original's ConstPool class plays ahead of EmbedConstPool: identical
// bytes share one offset no matter how many times Add is called with
// them, so repeated AVX masks or rodata literals cost space once.
type ConstPool struct {
	byContent map[string]*constEntry
	order     []*constEntry
	size      uint32
	alignment uint32
}

// NewConstPool creates an empty pool. alignment must be a power of two
// and governs the pool's own placement (via a preceding Align node).
// Entries are not aligned to it: Add places each payload at the next
// multiple of its own length.
func NewConstPool(alignment uint32) *ConstPool {
	if alignment == 0 {
		alignment = 1
	}
	return &ConstPool{byContent: make(map[string]*constEntry), alignment: alignment}
}

// Add inserts payload if not already present and returns its offset
// within the pool.
func (p *ConstPool) Add(payload []byte) uint32 {
	key := string(payload)
	if e, ok := p.byContent[key]; ok {
		return e.offset
	}
	off := alignUp32(p.size, uint32(len(payload)))
	e := &constEntry{payload: payload, offset: off}
	p.byContent[key] = e
	p.order = append(p.order, e)
	p.size = off + uint32(len(payload))
	return off
}

// AddU64 adds an 8-byte little-endian constant.
func (p *ConstPool) AddU64(v uint64) uint32 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	return p.Add(buf[:])
}

// AddU128 adds a 16-byte little-endian constant, the width an AVX mask
// or packed literal needs.
func (p *ConstPool) AddU128(v *uint256.Int) uint32 {
	var buf [32]byte
	b := v.Bytes32()
	// uint256 stores big-endian; reverse into little-endian and take
	// the low 16 bytes, matching how a 128-bit SSE/AVX operand is laid
	// out in memory.
	for i := 0; i < 32; i++ {
		buf[i] = b[31-i]
	}
	return p.Add(buf[:16])
}

// Size returns the pool's current footprint in bytes.
func (p *ConstPool) Size() uint32 { return p.size }

// Alignment returns the alignment the pool requires.
func (p *ConstPool) Alignment() uint32 { return p.alignment }

// Bytes renders the pool's contents as a single contiguous slice,
// suitable for a DataNode or direct emission.
func (p *ConstPool) Bytes() []byte {
	out := make([]byte, p.size)
	for _, e := range p.order {
		copy(out[e.offset:], e.payload)
	}
	return out
}

func alignUp32(pos, width uint32) uint32 {
	if width <= 1 {
		return pos
	}
	rem := pos % width
	if rem == 0 {
		return pos
	}
	return pos + (width - rem)
}
