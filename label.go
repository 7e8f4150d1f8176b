package asmjit

import "golang.org/x/exp/slices"

// LabelID identifies a label across its lifetime: declared (unbound),
// then bound to a position in the node list exactly once. The zero
// value, NoLabel, never denotes a real label.
type LabelID uint32

// NoLabel is the invalid label id, returned on allocation failure and
// rejected by every label-consuming operation.
const NoLabel LabelID = 0

// LabelKind distinguishes how a label's name is scoped.
type LabelKind uint8

const (
	// LabelAnonymous labels have no name; only NoLabel/LabelID identity.
	LabelAnonymous LabelKind = iota
	// LabelLocal labels are named within a single Builder.
	LabelLocal
	// LabelGlobal labels are named and visible to other code units via
	// the CodeContainer collaborator.
	LabelGlobal
	// LabelExternal labels reference a symbol resolved outside this
	// Builder entirely (e.g. an imported routine).
	LabelExternal
)

// CodeContainer allocates label ids shared across code units. A
// Builder never invents its own ids; it always asks a CodeContainer so
// ids stay unique even when multiple Builders emit into the same
// eventual binary. External interface per the node-model's
// collaborator boundary (spec.md §6.2's new_label_id/new_named_label_id
// contract).
type CodeContainer interface {
	// NewLabelID returns a fresh, never-before-returned label id.
	NewLabelID() LabelID
	// NewNamedLabelID returns a fresh id for a named label scoped by
	// kind, optionally nested under parent (NoLabel for a top-level
	// label). Mirrors spec.md §6.2's new_named_label_id(name, kind,
	// parent) → id.
	NewNamedLabelID(name string, kind LabelKind, parent LabelID) LabelID
}

// sequentialContainer is the default CodeContainer used when a Builder
// is constructed without one: a plain monotonic counter, adequate for
// a Builder used in isolation. It ignores name/kind/parent since it has
// no cross-builder namespace to scope them against; a real CodeContainer
// shared across builders would use them to keep named/nested labels
// unique the same way it keeps anonymous ones unique.
type sequentialContainer struct {
	next LabelID
}

func newSequentialContainer() *sequentialContainer {
	return &sequentialContainer{next: 1}
}

func (c *sequentialContainer) NewLabelID() LabelID {
	id := c.next
	c.next++
	return id
}

func (c *sequentialContainer) NewNamedLabelID(name string, kind LabelKind, parent LabelID) LabelID {
	return c.NewLabelID()
}

// labelEntry tracks a label's binding state alongside its node.
type labelEntry struct {
	node  *LabelNode
	bound bool
}

// labelTable is a dense id -> entry table, valid as long as ids are
// allocated by sequentialContainer (monotonic from 1); an external
// CodeContainer handing out sparse ids still works, just wastes the
// unused slots between them.
type labelTable struct {
	entries []labelEntry
}

func (t *labelTable) reserve(id LabelID) {
	idx := int(id)
	if idx < len(t.entries) {
		return
	}
	t.entries = slices.Grow(t.entries, idx+1-len(t.entries))
	t.entries = t.entries[:idx+1]
}

func (t *labelTable) set(id LabelID, node *LabelNode) {
	t.reserve(id)
	t.entries[id] = labelEntry{node: node}
}

func (t *labelTable) get(id LabelID) (labelEntry, bool) {
	idx := int(id)
	if id == NoLabel || idx >= len(t.entries) {
		return labelEntry{}, false
	}
	e := t.entries[idx]
	if e.node == nil {
		return labelEntry{}, false
	}
	return e, true
}

func (t *labelTable) markBound(id LabelID) {
	idx := int(id)
	if idx < len(t.entries) {
		t.entries[idx].bound = true
	}
}
