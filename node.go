package asmjit

// NodeType tags the concrete kind of a Node. Dispatch on node kind
// goes through this tag and the capability flags below, never through
// per-type virtual methods.
type NodeType uint8

const (
	NodeInstruction NodeType = iota
	NodeData
	NodeAlign
	NodeLabel
	NodeLabelData
	NodeConstPool
	NodeComment
	NodeSentinel
)

func (t NodeType) String() string {
	switch t {
	case NodeInstruction:
		return "Instruction"
	case NodeData:
		return "Data"
	case NodeAlign:
		return "Align"
	case NodeLabel:
		return "Label"
	case NodeLabelData:
		return "LabelData"
	case NodeConstPool:
		return "ConstPool"
	case NodeComment:
		return "Comment"
	case NodeSentinel:
		return "Sentinel"
	default:
		return "Unknown"
	}
}

// NodeFlags are capability bits describing what a node does, queried
// instead of type-switching on NodeType for most builder and pass
// logic.
type NodeFlags uint16

const (
	// FlagIsCode marks a node that contributes to the instruction
	// stream (Instruction, Align).
	FlagIsCode NodeFlags = 1 << iota
	// FlagIsData marks a node carrying raw payload bytes (Data,
	// LabelData, ConstPool).
	FlagIsData
	// FlagIsInformative marks a node with no effect on the emitted
	// stream beyond bookkeeping (Comment, Sentinel, Label).
	FlagIsInformative
	// FlagIsRemovable marks a node a pass may delete without changing
	// program behavior (Comment).
	FlagIsRemovable
	// FlagHasNoEffect marks a node that never emits any bytes
	// (Comment, Sentinel, Label).
	FlagHasNoEffect
	// FlagActsAsInst marks a node the serializer treats as an
	// instruction for downstream emission purposes (Instruction).
	FlagActsAsInst
	// FlagActsAsLabel marks a node that introduces a bindable address
	// (Label).
	FlagActsAsLabel
)

// Node is the shared identity of every element in a Builder's node
// list: a position in a doubly linked list plus capability flags.
// Concrete node kinds (InstructionNode, DataNode, ...) embed nodeHeader
// and add their own fields; callers type-switch on Type() to reach
// them.
type Node interface {
	Type() NodeType
	Flags() NodeFlags
	Prev() Node
	Next() Node
	Position() int
	Comment() string
	SetComment(string)

	IsCode() bool
	IsData() bool
	IsInformative() bool
	IsRemovable() bool
	HasNoEffect() bool
	ActsAsInst() bool
	ActsAsLabel() bool

	setPrev(Node)
	setNext(Node)
	setPosition(int)
	scratch() []byte
	setScratch([]byte)
}

// nodeHeader implements Node. Every concrete node type embeds it by
// value; the promoted pointer-receiver methods satisfy Node for
// *ConcreteType without any per-type overrides.
type nodeHeader struct {
	prev, next Node
	typ        NodeType
	flags      NodeFlags
	position   int
	comment    string
	pass       []byte
}

func (h *nodeHeader) Type() NodeType   { return h.typ }
func (h *nodeHeader) Flags() NodeFlags { return h.flags }
func (h *nodeHeader) Prev() Node       { return h.prev }
func (h *nodeHeader) Next() Node       { return h.next }
func (h *nodeHeader) Position() int    { return h.position }
func (h *nodeHeader) Comment() string  { return h.comment }

func (h *nodeHeader) SetComment(c string) { h.comment = c }

func (h *nodeHeader) IsCode() bool         { return h.flags&FlagIsCode != 0 }
func (h *nodeHeader) IsData() bool         { return h.flags&FlagIsData != 0 }
func (h *nodeHeader) IsInformative() bool  { return h.flags&FlagIsInformative != 0 }
func (h *nodeHeader) IsRemovable() bool    { return h.flags&FlagIsRemovable != 0 }
func (h *nodeHeader) HasNoEffect() bool    { return h.flags&FlagHasNoEffect != 0 }
func (h *nodeHeader) ActsAsInst() bool     { return h.flags&FlagActsAsInst != 0 }
func (h *nodeHeader) ActsAsLabel() bool    { return h.flags&FlagActsAsLabel != 0 }

func (h *nodeHeader) setPrev(n Node)     { h.prev = n }
func (h *nodeHeader) setNext(n Node)     { h.next = n }
func (h *nodeHeader) setPosition(p int)  { h.position = p }
func (h *nodeHeader) scratch() []byte    { return h.pass }
func (h *nodeHeader) setScratch(b []byte) { h.pass = b }
