package asmjit

// OperandKind distinguishes the shape an Operand carries. Mirrors the
// way a single Operand value in a real assembler core stands in for a
// register, memory reference, immediate, or label reference; the x86
// package attaches architecture meaning to RegType/RegID.
type OperandKind uint8

const (
	OperandNone OperandKind = iota
	OperandReg
	OperandMem
	OperandImm
	OperandLabel
)

// Operand is an architecture-agnostic operand slot. Domain packages
// (x86) build named constructors on top (e.g. x86.XMM, returning an
// Operand with Kind==OperandReg and a concrete register type/id) rather
// than the core depending on any specific architecture.
type Operand struct {
	kind OperandKind

	regType uint8 // architecture-defined register class, 0 if unused
	regID   uint8 // architecture-defined register id, 0 if unused
	size    uint8 // width in bytes

	baseID  uint8 // Mem: base register id
	hasBase bool
	idxID   uint8 // Mem: index register id
	hasIdx  bool
	scale   uint8 // Mem: 1, 2, 4 or 8
	disp    int32 // Mem: byte displacement

	imm int64

	label LabelID
}

func (o Operand) Kind() OperandKind { return o.kind }
func (o Operand) IsNone() bool      { return o.kind == OperandNone }
func (o Operand) IsReg() bool       { return o.kind == OperandReg }
func (o Operand) IsMem() bool       { return o.kind == OperandMem }
func (o Operand) IsImm() bool       { return o.kind == OperandImm }
func (o Operand) IsLabel() bool     { return o.kind == OperandLabel }

func (o Operand) Size() uint8 { return o.size }

func (o Operand) RegType() uint8 { return o.regType }
func (o Operand) RegID() uint8   { return o.regID }

func (o Operand) MemBase() (id uint8, ok bool)  { return o.baseID, o.hasBase }
func (o Operand) MemIndex() (id uint8, ok bool) { return o.idxID, o.hasIdx }
func (o Operand) MemScale() uint8               { return o.scale }
func (o Operand) MemDisp() int32                { return o.disp }

func (o Operand) ImmValue() int64 { return o.imm }

func (o Operand) LabelID() LabelID { return o.label }

// NewReg builds a register operand. regType/regID are interpreted by
// the domain package that produced them (e.g. x86.RegTypeGP).
func NewReg(regType, regID uint8, size uint8) Operand {
	return Operand{kind: OperandReg, regType: regType, regID: regID, size: size}
}

// NewImm builds an immediate operand.
func NewImm(v int64) Operand {
	return Operand{kind: OperandImm, imm: v}
}

// NewLabelOperand builds an operand referencing a label's address, used
// for RIP-relative style instructions that target a bound label.
func NewLabelOperand(id LabelID) Operand {
	return Operand{kind: OperandLabel, label: id}
}

// MemOperand configures a memory operand; the zero value of any field
// not set via the builder methods below means "absent" (no base, no
// index, zero displacement).
type MemOperand struct {
	op Operand
}

// NewMem starts a memory operand of the given width in bytes.
func NewMem(size uint8) MemOperand {
	return MemOperand{op: Operand{kind: OperandMem, size: size}}
}

func (m MemOperand) WithBase(regType, regID uint8) MemOperand {
	m.op.baseID = regID
	m.op.hasBase = true
	m.op.regType = regType
	return m
}

func (m MemOperand) WithIndex(regID uint8, scale uint8) MemOperand {
	m.op.idxID = regID
	m.op.hasIdx = true
	m.op.scale = scale
	return m
}

func (m MemOperand) WithDisp(disp int32) MemOperand {
	m.op.disp = disp
	return m
}

func (m MemOperand) Operand() Operand { return m.op }
