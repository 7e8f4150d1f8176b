package x86

// InstID identifies an x86/x64 instruction encoding. The zero value
// denotes "no instruction" / undefined id, mirroring LabelID's
// NoLabel convention in the root package.
type InstID uint32

// AvxConvMode classifies how (or whether) a legacy SSE instruction's
// id maps onto an AVX/VEX three-operand encoding. Closed set, per
// spec: None, Move, MoveIfMem, Extend, Blend.
type AvxConvMode uint8

const (
	// AvxConvNone means no AVX equivalent exists (e.g. SSE4A). The
	// lifter's probe phase aborts the whole pass on any candidate in
	// this mode.
	AvxConvNone AvxConvMode = iota
	// AvxConvMove is a two-operand move-style instruction whose AVX
	// form has identical arity; only the id changes.
	AvxConvMove
	// AvxConvMoveIfMem behaves like Move when one operand is memory,
	// and like Extend otherwise.
	AvxConvMoveIfMem
	// AvxConvExtend turns a destructive two-operand form into a
	// non-destructive three-operand form by duplicating the
	// destination into the new source slot.
	AvxConvExtend
	// AvxConvBlend is like Extend but the AVX form also takes an
	// implicit mask operand (XMM0) when the SSE form omitted it.
	AvxConvBlend
)

// instMeta is one row of the instruction database: everything the
// node model, a Validator, or the lifter needs to know about an
// instruction id, read-only and process-wide per spec §5/§6.
type instMeta struct {
	mnemonic     string
	operandCount int
	isSSEFamily  bool
	avxConvMode  AvxConvMode
	avxID        InstID // 0 if no AVX counterpart
}

// The instruction set below is deliberately small: enough real SSE
// mnemonics and their genuine VEX counterparts to exercise every
// AvxConvMode plus both abort conditions (no-AVX-equivalent, MMX+XMM
// bridge), not an exhaustive x86 encoding table — that table is the
// out-of-scope "instruction database" collaborator spec.md §1 treats
// as external; this is a minimal, honest implementation of it.
const (
	_ InstID = iota

	// General-purpose, non-SSE: present so the lifter's "skip
	// non-SSE-family" branch has something real to skip.
	InstMov
	InstAdd

	// Legacy 128-bit SSE encodings.
	InstMovaps
	InstMovapd
	InstAddps
	InstAddpd
	InstSubps
	InstMulps
	InstAndps
	InstXorps
	InstMovss
	InstMovsd
	InstBlendvps
	InstBlendvpd
	InstPblendvb

	// SSE4A: genuinely has no AVX counterpart.
	InstExtrq

	// MOVDQ2Q moves the low quadword of an XMM register into an MMX
	// register: a real SSE2 instruction, and the textbook MMX/XMM
	// bridge the lifter must never touch.
	InstMovdq2q

	// VEX/AVX three-operand counterparts.
	InstVmovaps
	InstVmovapd
	InstVaddps
	InstVaddpd
	InstVsubps
	InstVmulps
	InstVandps
	InstVxorps
	InstVmovss
	InstVmovsd
	InstVblendvps
	InstVblendvpd
	InstVpblendvb
)

// InstructionDatabase is the read-only collaborator the SSE-to-AVX
// lifter consumes (spec.md §6.3): given an instruction id it reports
// whether the id is known, whether it belongs to the legacy SSE
// family, and — for SSE-family ids — the AVX conversion mode and the
// signed delta to the id's AVX counterpart. The lifter depends on this
// interface, never on Database concretely, so a caller wiring in a
// real encoder's table only has to satisfy four methods.
type InstructionDatabase interface {
	IsDefined(id InstID) bool
	IsSSEFamily(id InstID) bool
	AvxConvMode(id InstID) AvxConvMode
	AvxConvDelta(id InstID) int32
}

// Database is a read-only instruction table: the external
// InstructionDatabase collaborator from spec.md §6, concrete enough to
// drive tests and the lifter without pretending to be a full x86
// encoder. Zero value is usable; all state lives in the package-level
// table it reads.
type Database struct{}

// DefaultDatabase is the process-wide instruction table every Builder
// and lifter in this package consults, matching §5's "read-only,
// process-wide, outlives all builders" rule — there is never a reason
// to construct more than one.
var DefaultDatabase = Database{}

var instTable = map[InstID]instMeta{
	InstMov: {mnemonic: "mov", operandCount: 2},
	InstAdd: {mnemonic: "add", operandCount: 2},

	InstMovaps: {mnemonic: "movaps", operandCount: 2, isSSEFamily: true, avxConvMode: AvxConvMove, avxID: InstVmovaps},
	InstMovapd: {mnemonic: "movapd", operandCount: 2, isSSEFamily: true, avxConvMode: AvxConvMove, avxID: InstVmovapd},
	InstAddps:  {mnemonic: "addps", operandCount: 2, isSSEFamily: true, avxConvMode: AvxConvExtend, avxID: InstVaddps},
	InstAddpd:  {mnemonic: "addpd", operandCount: 2, isSSEFamily: true, avxConvMode: AvxConvExtend, avxID: InstVaddpd},
	InstSubps:  {mnemonic: "subps", operandCount: 2, isSSEFamily: true, avxConvMode: AvxConvExtend, avxID: InstVsubps},
	InstMulps:  {mnemonic: "mulps", operandCount: 2, isSSEFamily: true, avxConvMode: AvxConvExtend, avxID: InstVmulps},
	InstAndps:  {mnemonic: "andps", operandCount: 2, isSSEFamily: true, avxConvMode: AvxConvExtend, avxID: InstVandps},
	InstXorps:  {mnemonic: "xorps", operandCount: 2, isSSEFamily: true, avxConvMode: AvxConvExtend, avxID: InstVxorps},

	InstMovss: {mnemonic: "movss", operandCount: 2, isSSEFamily: true, avxConvMode: AvxConvMoveIfMem, avxID: InstVmovss},
	InstMovsd: {mnemonic: "movsd", operandCount: 2, isSSEFamily: true, avxConvMode: AvxConvMoveIfMem, avxID: InstVmovsd},

	InstBlendvps: {mnemonic: "blendvps", operandCount: 3, isSSEFamily: true, avxConvMode: AvxConvBlend, avxID: InstVblendvps},
	InstBlendvpd: {mnemonic: "blendvpd", operandCount: 3, isSSEFamily: true, avxConvMode: AvxConvBlend, avxID: InstVblendvpd},
	InstPblendvb: {mnemonic: "pblendvb", operandCount: 3, isSSEFamily: true, avxConvMode: AvxConvBlend, avxID: InstVpblendvb},

	InstExtrq:   {mnemonic: "extrq", operandCount: 3, isSSEFamily: true, avxConvMode: AvxConvNone},
	InstMovdq2q: {mnemonic: "movdq2q", operandCount: 2, isSSEFamily: true, avxConvMode: AvxConvNone},

	InstVmovaps:   {mnemonic: "vmovaps", operandCount: 2},
	InstVmovapd:   {mnemonic: "vmovapd", operandCount: 2},
	InstVaddps:    {mnemonic: "vaddps", operandCount: 3},
	InstVaddpd:    {mnemonic: "vaddpd", operandCount: 3},
	InstVsubps:    {mnemonic: "vsubps", operandCount: 3},
	InstVmulps:    {mnemonic: "vmulps", operandCount: 3},
	InstVandps:    {mnemonic: "vandps", operandCount: 3},
	InstVxorps:    {mnemonic: "vxorps", operandCount: 3},
	InstVmovss:    {mnemonic: "vmovss", operandCount: 2},
	InstVmovsd:    {mnemonic: "vmovsd", operandCount: 2},
	InstVblendvps: {mnemonic: "vblendvps", operandCount: 4},
	InstVblendvpd: {mnemonic: "vblendvpd", operandCount: 4},
	InstVpblendvb: {mnemonic: "vpblendvb", operandCount: 4},
}

// IsDefined reports whether id names a known instruction.
func (Database) IsDefined(id InstID) bool {
	_, ok := instTable[id]
	return ok
}

// Mnemonic implements asmjit.InstructionDatabase.
func (Database) Mnemonic(id uint32) string {
	m, ok := instTable[InstID(id)]
	if !ok {
		return ""
	}
	return m.mnemonic
}

// OperandCount implements asmjit.InstructionDatabase.
func (Database) OperandCount(id uint32) int {
	m, ok := instTable[InstID(id)]
	if !ok {
		return -1
	}
	return m.operandCount
}

// IsSSEFamily reports whether id is a legacy 128-bit SSE encoding the
// lifter may be able to upgrade.
func (Database) IsSSEFamily(id InstID) bool {
	m, ok := instTable[id]
	return ok && m.isSSEFamily
}

// AvxConvMode returns id's conversion mode. Only meaningful when
// IsSSEFamily(id) is true.
func (Database) AvxConvMode(id InstID) AvxConvMode {
	return instTable[id].avxConvMode
}

// AvxConvDelta returns the signed offset from id to its AVX
// counterpart's id (avxID - id), computed from the table rather than
// hand-maintained so the two can never drift out of sync.
func (Database) AvxConvDelta(id InstID) int32 {
	m := instTable[id]
	if m.avxID == 0 {
		return 0
	}
	return int32(m.avxID) - int32(id)
}
