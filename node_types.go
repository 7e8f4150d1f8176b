package asmjit

// InstOption is a bit in the 32-bit option bitset Emit consumes from
// builder side-band state and stores (masked) onto the resulting
// InstructionNode. OptionStrictValidation only controls Emit itself
// and is stripped before the options are stored, per spec step 6; the
// remaining bits persist on the node because the serializer needs
// them to know which of op4/op5/Extra to forward downstream.
type InstOption uint32

const (
	// OptionHasOp4 indicates the builder's pending op4 side-band slot
	// holds an operand to append as the instruction's 5th operand.
	OptionHasOp4 InstOption = 1 << iota
	// OptionHasOp5 is OptionHasOp4's counterpart for the 6th operand.
	OptionHasOp5
	// OptionHasOpExtra indicates the builder's pending extra operand
	// slot holds a broadcast mask or REP-style register.
	OptionHasOpExtra
	// OptionStrictValidation routes this Emit call through the
	// configured Validator before the node is appended. Consumed by
	// Emit itself; never stored on the resulting node.
	OptionStrictValidation
)

// optionStripMask is the set of bits Emit clears before storing the
// option bitset on the node: control flags meaningful only for the
// Emit call itself, not for anything downstream.
const optionStripMask = OptionStrictValidation

// InstructionNode carries an instruction id (domain-defined, opaque to
// this package), a 32-bit option bitset, the positional/side-band
// operand list, and an extra operand (broadcast masks, REP/REPE
// registers). The operand slice's len/cap double as the "operand
// count / operand capacity" distinction the original node model
// tracked with two separate struct variants: a node built with spare
// capacity (via Builder.NewInstNodeCap) can grow its operand list in
// place up to cap(Operands) without reallocating, exactly the
// invariant a hand-rolled opCount/opCapacity pair would enforce. The
// side-band op4/op5 operands, when present, are appended by Emit right
// after the positional operands in this same slice; Options records (via OptionHasOp4/
// OptionHasOp5/OptionHasOpExtra) which of op4, op5, and Extra actually
// hold a meaningful operand rather than the zero-value None.
type InstructionNode struct {
	nodeHeader
	InstID   uint32
	Options  uint32
	Operands []Operand
	Extra    Operand
}

// HasOp4 reports whether Operands carries the side-band op4 operand,
// stored right after the positional operands Emit was given.
func (n *InstructionNode) HasOp4() bool { return n.Options&uint32(OptionHasOp4) != 0 }

// HasOp5 reports whether Operands carries the side-band op5 operand,
// stored right after op4 when op4 is armed, otherwise right after the
// positional operands.
func (n *InstructionNode) HasOp5() bool { return n.Options&uint32(OptionHasOp5) != 0 }

// HasOpExtra reports whether Extra holds a meaningful operand (a
// broadcast mask or REP-style register) rather than the zero-value
// None operand.
func (n *InstructionNode) HasOpExtra() bool { return n.Options&uint32(OptionHasOpExtra) != 0 }

// DataNode carries a raw byte payload emitted verbatim.
type DataNode struct {
	nodeHeader
	Payload []byte
}

// AlignMode selects what an AlignNode pads with.
type AlignMode uint8

const (
	// AlignCode pads with architecture-appropriate no-op encodings.
	AlignCode AlignMode = iota
	// AlignZero pads with zero bytes.
	AlignZero
)

// AlignNode requests padding up to the next multiple of Alignment.
type AlignNode struct {
	nodeHeader
	Mode      AlignMode
	Alignment uint32
}

// LabelNode introduces a bindable position in the node list. Unbound
// until the Builder's Bind is called on its ID. Parent is NoLabel for
// a top-level label, or the enclosing label's id for a nested one
// (e.g. a local label scoped to a named function label), per spec.md
// §4.1's new_named_label(name, kind, parent) contract.
type LabelNode struct {
	nodeHeader
	ID     LabelID
	Kind   LabelKind
	Name   string
	Parent LabelID
}

// LabelDataNode embeds a relocatable, pointer-sized slot at the
// current position that resolves to a label's address — the
// jump-table-entry idiom, not a general data payload (a plain DataNode
// already covers that). It carries no bytes of its own; the
// downstream emitter is solely responsible for sizing and filling the
// slot once the label's address is known.
type LabelDataNode struct {
	nodeHeader
	ID LabelID
}

// ConstPoolNode reserves a contiguous block for deduplicated constant
// data, populated incrementally via the ConstPool attached to it and
// emitted as a unit when the serializer reaches it.
type ConstPoolNode struct {
	nodeHeader
	ID   LabelID
	Pool *ConstPool
}

// CommentNode carries only an inline comment; it contributes nothing
// to the emitted stream and a pass is free to delete it.
type CommentNode struct {
	nodeHeader
}

// SentinelKind distinguishes what a SentinelNode marks.
type SentinelKind uint8

const (
	// SentinelFuncEnd marks the end of a function body, a point passes
	// can use to stop a backward or forward scan.
	SentinelFuncEnd SentinelKind = iota
)

// SentinelNode is an informative marker with no emitted bytes.
type SentinelNode struct {
	nodeHeader
	Kind SentinelKind
}

func newInstructionNode(id uint32, options uint32, ops []Operand, extra Operand) *InstructionNode {
	n := &InstructionNode{InstID: id, Options: options, Operands: ops, Extra: extra}
	n.typ = NodeInstruction
	n.flags = FlagIsCode | FlagActsAsInst
	return n
}

func newDataNode(payload []byte) *DataNode {
	n := &DataNode{Payload: payload}
	n.typ = NodeData
	n.flags = FlagIsData
	return n
}

func newAlignNode(mode AlignMode, alignment uint32) *AlignNode {
	n := &AlignNode{Mode: mode, Alignment: alignment}
	n.typ = NodeAlign
	n.flags = FlagIsCode
	return n
}

func newLabelNode(id LabelID, kind LabelKind, name string, parent LabelID) *LabelNode {
	n := &LabelNode{ID: id, Kind: kind, Name: name, Parent: parent}
	n.typ = NodeLabel
	n.flags = FlagIsInformative | FlagHasNoEffect | FlagActsAsLabel
	return n
}

func newLabelDataNode(id LabelID) *LabelDataNode {
	n := &LabelDataNode{ID: id}
	n.typ = NodeLabelData
	n.flags = FlagIsData | FlagActsAsLabel
	return n
}

func newConstPoolNode(id LabelID, pool *ConstPool) *ConstPoolNode {
	n := &ConstPoolNode{ID: id, Pool: pool}
	n.typ = NodeConstPool
	n.flags = FlagIsData | FlagActsAsLabel
	return n
}

func newCommentNode(comment string) *CommentNode {
	n := &CommentNode{}
	n.typ = NodeComment
	n.flags = FlagIsInformative | FlagHasNoEffect | FlagIsRemovable
	n.comment = comment
	return n
}

func newSentinelNode(kind SentinelKind) *SentinelNode {
	n := &SentinelNode{Kind: kind}
	n.typ = NodeSentinel
	n.flags = FlagIsInformative | FlagHasNoEffect
	return n
}
