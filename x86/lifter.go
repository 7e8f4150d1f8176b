package x86

import (
	asmjit "github.com/ppaulweber/libasmjit"
	"github.com/ppaulweber/libasmjit/internal/zone"
)

// sseToAvxPass upgrades legacy 128-bit SSE instructions operating on
// XMM registers to their three-operand VEX/AVX equivalents. It is
// all-or-nothing: if any candidate instruction in the node list cannot
// be upgraded, the whole pass leaves the list bitwise unchanged and
// still reports success — infeasibility is not an error, per spec.md
// §4.3/§7.
type sseToAvxPass struct {
	asmjit.PassBase
	db         InstructionDatabase
	translated bool
}

// NewSSEToAVXPass returns the SSE-to-AVX lifter pass backed by
// DefaultDatabase, grounded on the original's X86SseToAvxPass::run
// (see original_source's x86ssetoavxpass.cpp): a probe loop that
// collects every convertible instruction and a second loop that
// rewrites them, with probing always completed before any mutation.
func NewSSEToAVXPass() asmjit.Pass {
	return NewSSEToAVXPassWithDatabase(DefaultDatabase)
}

// NewSSEToAVXPassWithDatabase is NewSSEToAVXPass parameterized over an
// explicit InstructionDatabase, for a caller wiring in a real encoder
// table (or a test double) instead of this package's small reference
// set.
func NewSSEToAVXPassWithDatabase(db InstructionDatabase) asmjit.Pass {
	return &sseToAvxPass{db: db}
}

func (p *sseToAvxPass) Name() string { return "X86SseToAvxPass" }

// Translated reports whether the last Run call actually rewrote any
// instruction (false both when the list held no SSE/XMM instructions
// at all and when the pass aborted on an infeasible candidate).
func (p *sseToAvxPass) Translated() bool { return p.translated }

// Run implements asmjit.Pass. scratch is accepted to satisfy the
// interface but unused: the probe list here is a handful of node
// pointers best left to Go's GC, not bytes worth bump-allocating.
func (p *sseToAvxPass) Run(b *asmjit.Builder, scratch *zone.Zone) error {
	p.translated = false

	var candidates []*asmjit.InstructionNode

	// Phase 1 — probe. Forward traversal, as spec.md §4.3 requires for
	// determinism; any infeasible candidate aborts the entire pass
	// before a single node is touched.
	for n := b.First(); n != nil; n = n.Next() {
		inst, ok := n.(*asmjit.InstructionNode)
		if !ok {
			continue
		}
		id := InstID(inst.InstID)
		if !p.db.IsDefined(id) {
			// Spec's Open Question #1: the original's probe loop
			// returns here without advancing node_, which would be an
			// infinite loop were isDefinedId not closed over every id
			// the builder can produce. This reimplementation advances
			// unconditionally via the range-style `for` above and
			// continues scanning instead.
			continue
		}
		if !p.db.IsSSEFamily(id) {
			continue
		}

		regTypes := probeRegs(inst.Operands)
		if !regTypes.Has(RegTypeXMM) {
			// Scalar-integer SSE encodings (none in this table, but a
			// real one would land here) are unaffected.
			continue
		}
		if regTypes.Has(RegTypeMMX) {
			// MMX/XMM bridge: no AVX counterpart can exist for an
			// instruction that names both register files.
			return nil
		}

		opCount := len(inst.Operands)
		switch p.db.AvxConvMode(id) {
		case AvxConvNone:
			return nil
		case AvxConvMove:
			// No arity constraint beyond what the instruction already
			// carries.
		case AvxConvMoveIfMem, AvxConvExtend:
			if opCount < 1 || opCount > 3 {
				return nil
			}
		case AvxConvBlend:
			if opCount < 2 || opCount > 3 {
				return nil
			}
		}

		candidates = append(candidates, inst)
	}

	// Phase 2 — mutate. Order is irrelevant: every rewrite is
	// node-local, so this reverse (LIFO) walk over the candidates is
	// semantically identical to a forward walk.
	for i := len(candidates) - 1; i >= 0; i-- {
		inst := candidates[i]
		id := InstID(inst.InstID)
		mode := p.db.AvxConvMode(id)

		switch mode {
		case AvxConvMove:
			// Nothing to reshape.
		case AvxConvMoveIfMem:
			if !hasMemOperand(inst.Operands) {
				inst.Operands = extendOperands(inst.Operands)
			}
		case AvxConvBlend:
			if len(inst.Operands) == 2 {
				inst.Operands = append(inst.Operands, XMM0)
			}
			inst.Operands = extendOperands(inst.Operands)
		case AvxConvExtend:
			inst.Operands = extendOperands(inst.Operands)
		case AvxConvNone:
			// Unreachable: phase 1 aborts the whole pass before any
			// AvxConvNone candidate is ever appended.
		}

		inst.InstID = uint32(int32(id) + p.db.AvxConvDelta(id))
	}

	p.translated = len(candidates) > 0
	return nil
}

// probeRegs computes the RegMask of every register-kind operand in
// ops, the lifter's per-instruction register-type probe.
func probeRegs(ops []asmjit.Operand) RegMask {
	var mask RegMask
	for _, op := range ops {
		mask |= regMaskOf(op)
	}
	return mask
}

func hasMemOperand(ops []asmjit.Operand) bool {
	for _, op := range ops {
		if op.IsMem() {
			return true
		}
	}
	return false
}

// extendOperands implements the Extend reshape: shift every operand
// right by one and duplicate the original destination (ops[0]) into
// the vacated slot 0, so the AVX three-operand form's non-destructive
// destination is also its own first source.
func extendOperands(ops []asmjit.Operand) []asmjit.Operand {
	dst := ops[0]
	out := make([]asmjit.Operand, len(ops)+1)
	out[0] = dst
	copy(out[1:], ops)
	return out
}
