// Package asmjit implements an in-memory instruction-stream builder: a
// doubly linked list of tagged nodes (instructions, data, labels,
// alignment, constant pools, comments, sentinels), a pass framework
// that transforms the list before emission, and a serializer that
// replays the finished list into a downstream Emitter. The x86
// subpackage supplies concrete registers, operand constructors, and
// the SSE-to-AVX lifter pass.
package asmjit

import (
	"fmt"

	"github.com/ppaulweber/libasmjit/internal/corelog"
	"github.com/ppaulweber/libasmjit/internal/zone"
	"github.com/xlab/treeprint"
)

const (
	defaultArenaSize = 8 * 1024
)

// Option configures a Builder at construction time.
type Option func(*Builder)

// WithContainer supplies the CodeContainer responsible for allocating
// label ids. Without one, the Builder uses an internal sequential
// counter adequate for a Builder used on its own.
func WithContainer(c CodeContainer) Option {
	return func(b *Builder) { b.container = c }
}

// WithLogger supplies a Logger for pass and error diagnostics. Without
// one, the Builder uses corelog.Discard.
func WithLogger(l corelog.Logger) Option {
	return func(b *Builder) { b.logger = l }
}

// WithValidator supplies a Validator. By default it is only consulted
// when the strict-validation option is armed for a given Emit call via
// Validate(), per spec.md §4.1.2 step 3 ("if the 'strict validation'
// option is active, defer to the external validator"). Combine with
// WithAlwaysValidate to check every instruction unconditionally.
func WithValidator(v Validator) Option {
	return func(b *Builder) { b.validator = v }
}

// WithAlwaysValidate makes a configured Validator run on every Emit
// call, not only ones that armed Validate(). An explicit opt-in beyond
// spec.md's per-call "strict validation" option, for a caller that
// never wants an unchecked instruction to reach the node list.
func WithAlwaysValidate() Option {
	return func(b *Builder) { b.alwaysValidate = true }
}

// WithArenaSize sets the initial size, in bytes, of the data and
// pass-scratch arenas.
func WithArenaSize(n int) Option {
	return func(b *Builder) { b.arenaSize = n }
}

// Builder owns a node list plus the arenas and registries that back
// it. Not safe for concurrent use; a single goroutine owns a Builder
// for its entire lifetime, matching the no-concurrency model this
// package assumes throughout.
type Builder struct {
	container      CodeContainer
	logger         corelog.Logger
	validator      Validator
	alwaysValidate bool
	arenaSize      int

	data    *zone.Zone // backs comment/name copies and payload copies
	scratch *zone.Zone // reset before every pass, backs pass-local data

	first, last Node
	cursor      Node
	nodeCount   int

	// nextPosition is the next position number addNode/AddAfter/AddBefore
	// will assign. Starts at 1, not 0: per spec.md §3's Node model, 0 is
	// the reserved "unset" sentinel, not the first node's position
	// (original_source/src/asmjit/base/rabuilders_p.h pre-increments for
	// the same reason). Tracked separately from nodeCount so removing and
	// re-inserting nodes never reissues a position number, preserving
	// invariant 5's uniqueness.
	nextPosition int

	labels labelTable
	passes []Pass

	lastErr error

	// One-shot side-band state consumed by the next Emit call and
	// reset (whether Emit succeeds or fails validation), per spec
	// §4.1.2's single-shot options/inline-comment protocol.
	pendingOptions InstOption
	pendingOp4     Operand
	pendingOp5     Operand
	pendingExtra   Operand
	pendingComment string
}

// Validate arms the "strict validation" option for the very next Emit
// call, routing it through the configured Validator. Mirrors AsmJit's
// `.validate()` fluent call.
func (b *Builder) Validate() *Builder {
	b.pendingOptions |= OptionStrictValidation
	return b
}

// SetOp4 arms a 5th operand, supplied side-band, for the very next
// Emit call.
func (b *Builder) SetOp4(op Operand) *Builder {
	b.pendingOp4 = op
	b.pendingOptions |= OptionHasOp4
	return b
}

// SetOp5 arms a 6th operand, supplied side-band, for the very next
// Emit call.
func (b *Builder) SetOp5(op Operand) *Builder {
	b.pendingOp5 = op
	b.pendingOptions |= OptionHasOp5
	return b
}

// SetOpExtra arms the extra operand (a broadcast mask or REP-style
// register) for the very next Emit call.
func (b *Builder) SetOpExtra(op Operand) *Builder {
	b.pendingExtra = op
	b.pendingOptions |= OptionHasOpExtra
	return b
}

// SetInlineComment arms an inline comment to attach to the node
// produced by the very next Emit call.
func (b *Builder) SetInlineComment(comment string) *Builder {
	b.pendingComment = comment
	return b
}

// resetPending clears the one-shot side-band state, whether or not
// the Emit call it was armed for actually succeeded.
func (b *Builder) resetPending() {
	b.pendingOptions = 0
	b.pendingOp4 = Operand{}
	b.pendingOp5 = Operand{}
	b.pendingExtra = Operand{}
	b.pendingComment = ""
}

// NewBuilder creates an empty Builder ready for emission.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		logger:    corelog.Discard,
		arenaSize: defaultArenaSize,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.container == nil {
		b.container = newSequentialContainer()
	}
	b.data = zone.New(b.arenaSize)
	b.scratch = zone.New(b.arenaSize)
	b.nextPosition = 1
	return b
}

func (b *Builder) fail(err error) error {
	b.lastErr = err
	return err
}

// LastError returns the sticky error set by the first failing
// operation since construction or the last call to ClearError. Once
// set, every subsequent emission method short-circuits and returns it
// again, the fluent-chain pattern this package follows throughout.
func (b *Builder) LastError() error { return b.lastErr }

// ClearError clears the sticky error, allowing emission to resume. Not
// a recovery mechanism for the node list itself, which may be in a
// partial state from whatever failed.
func (b *Builder) ClearError() { b.lastErr = nil }

// First returns the first node in the list, or nil if empty.
func (b *Builder) First() Node { return b.first }

// Last returns the last node in the list, or nil if empty.
func (b *Builder) Last() Node { return b.last }

// Cursor returns the current insertion point. A nil cursor means the
// next emitted node becomes the new first node.
func (b *Builder) Cursor() Node { return b.cursor }

// SetCursor repositions the insertion point and returns the previous
// one, the same "return old value" convention AsmJit's setCursor uses
// so callers can restore it after a scoped insertion.
func (b *Builder) SetCursor(n Node) Node {
	old := b.cursor
	b.cursor = n
	return old
}

// NodeCount returns the number of nodes currently in the list.
func (b *Builder) NodeCount() int { return b.nodeCount }

// addNode links n immediately after the cursor (or at the head, if the
// cursor is nil) and advances the cursor to n.
func (b *Builder) addNode(n Node) Node {
	n.setPosition(b.nextPosition)
	b.nextPosition++
	if b.cursor == nil {
		n.setNext(b.first)
		if b.first != nil {
			b.first.setPrev(n)
		} else {
			b.last = n
		}
		b.first = n
	} else {
		next := b.cursor.Next()
		b.cursor.setNext(n)
		n.setPrev(b.cursor)
		n.setNext(next)
		if next != nil {
			next.setPrev(n)
		} else {
			b.last = n
		}
	}
	b.cursor = n
	b.nodeCount++
	return n
}

// Emit validates (when a Validator is configured and either
// OptionStrictValidation was armed via Validate or the Builder was built
// WithAlwaysValidate) and appends an instruction node after the
// cursor. ops supplies up to four positional operands (o0..o3); a 5th
// and 6th operand (op4, op5) and an extra operand come from builder
// side-band state armed via SetOp4/SetOp5/SetOpExtra, and an inline
// comment from SetInlineComment. All side-band state is single-shot:
// it is consumed and cleared by this call whether or not it succeeds,
// per spec §4.1.2.
func (b *Builder) Emit(id uint32, ops ...Operand) (*InstructionNode, error) {
	if b.lastErr != nil {
		return nil, b.lastErr
	}

	options := b.pendingOptions
	op4, op5, extra := b.pendingOp4, b.pendingOp5, b.pendingExtra
	comment := b.pendingComment

	// op_count: positional operands not None, plus one for each
	// side-band slot armed. None-terminated semantics only apply to
	// the four positional operands.
	opCount := 0
	for i := 0; i < len(ops) && i < 4; i++ {
		if !ops[i].IsNone() {
			opCount++
		}
	}
	if options&OptionHasOp4 != 0 {
		opCount++
	}
	if options&OptionHasOp5 != 0 {
		opCount++
	}

	// Per spec.md §4.1.2 step 3, the validator only runs when the
	// strict-validation option is active for this call (armed via
	// Validate()), unless the Builder was constructed with
	// WithAlwaysValidate. OptionStrictValidation is the gate, matching
	// the original's `options & kOptionStrictValidation` check.
	if b.validator != nil && (options&OptionStrictValidation != 0 || b.alwaysValidate) {
		if err := b.validator.Validate(id, ops); err != nil {
			b.resetPending()
			return nil, b.fail(fmt.Errorf("%w: %v", ErrValidationFailed, err))
		}
	}

	positional := ops
	if len(positional) > 4 {
		positional = positional[:4]
	}
	full := make([]Operand, 0, opCount)
	full = append(full, positional...)
	if options&OptionHasOp4 != 0 {
		full = append(full, op4)
	}
	if options&OptionHasOp5 != 0 {
		full = append(full, op5)
	}

	n := newInstructionNode(id, uint32(options&^optionStripMask), full, extra)
	if comment != "" {
		n.SetComment(b.data.AllocString(comment))
	}

	b.resetPending()
	b.addNode(n)
	return n, nil
}

// NewInstNodeCap builds a detached instruction node with spare operand
// capacity, without inserting it into the list. Growing Operands up to
// cap(n.Operands) via append never reallocates, the slice-based
// replacement for a hand-tracked opCount/opCapacity pair.
func (b *Builder) NewInstNodeCap(id uint32, capacity int) (*InstructionNode, error) {
	if b.lastErr != nil {
		return nil, b.lastErr
	}
	if capacity < 0 {
		return nil, b.fail(fmt.Errorf("%w: negative operand capacity", ErrInvalidArgument))
	}
	return newInstructionNode(id, 0, make([]Operand, 0, capacity), Operand{}), nil
}

// InsertNode inserts a previously constructed, detached node after the
// cursor. Used together with NewInstNodeCap, or to re-insert a node
// removed earlier.
func (b *Builder) InsertNode(n Node) (Node, error) {
	if b.lastErr != nil {
		return nil, b.lastErr
	}
	if n == nil {
		return nil, b.fail(fmt.Errorf("%w: nil node", ErrInvalidArgument))
	}
	return b.addNode(n), nil
}

// AddAfter splices n into the list immediately after ref, without
// touching the cursor. n must be detached (no prev/next); ref must
// already belong to this list. Grounded on
// original_source/base/codebuilder.cpp's CodeBuilder::addAfter.
func (b *Builder) AddAfter(n, ref Node) (Node, error) {
	if b.lastErr != nil {
		return nil, b.lastErr
	}
	if n == nil || ref == nil {
		return nil, b.fail(fmt.Errorf("%w: nil node", ErrInvalidArgument))
	}
	next := ref.Next()
	n.setPrev(ref)
	n.setNext(next)
	ref.setNext(n)
	if next != nil {
		next.setPrev(n)
	} else {
		b.last = n
	}
	n.setPosition(b.nextPosition)
	b.nextPosition++
	b.nodeCount++
	return n, nil
}

// AddBefore splices n into the list immediately before ref, without
// touching the cursor. n must be detached (no prev/next); ref must
// already belong to this list. Grounded on
// original_source/base/codebuilder.cpp's CodeBuilder::addBefore.
func (b *Builder) AddBefore(n, ref Node) (Node, error) {
	if b.lastErr != nil {
		return nil, b.lastErr
	}
	if n == nil || ref == nil {
		return nil, b.fail(fmt.Errorf("%w: nil node", ErrInvalidArgument))
	}
	prev := ref.Prev()
	n.setPrev(prev)
	n.setNext(ref)
	ref.setPrev(n)
	if prev != nil {
		prev.setNext(n)
	} else {
		b.first = n
	}
	n.setPosition(b.nextPosition)
	b.nextPosition++
	b.nodeCount++
	return n, nil
}

// EmitComment appends an informative, removable comment node.
func (b *Builder) EmitComment(comment string) (*CommentNode, error) {
	if b.lastErr != nil {
		return nil, b.lastErr
	}
	n := newCommentNode(b.data.AllocString(comment))
	b.addNode(n)
	return n, nil
}

// EmitData appends a data node carrying a private copy of payload.
func (b *Builder) EmitData(payload []byte) (*DataNode, error) {
	if b.lastErr != nil {
		return nil, b.lastErr
	}
	n := newDataNode(b.data.AllocCopy(payload))
	b.addNode(n)
	return n, nil
}

// EmitAlign appends an alignment directive.
func (b *Builder) EmitAlign(mode AlignMode, alignment uint32) (*AlignNode, error) {
	if b.lastErr != nil {
		return nil, b.lastErr
	}
	if alignment == 0 || alignment&(alignment-1) != 0 {
		return nil, b.fail(fmt.Errorf("%w: alignment must be a power of two", ErrInvalidArgument))
	}
	n := newAlignNode(mode, alignment)
	b.addNode(n)
	return n, nil
}

// EmitSentinel appends an informative marker node.
func (b *Builder) EmitSentinel(kind SentinelKind) (*SentinelNode, error) {
	if b.lastErr != nil {
		return nil, b.lastErr
	}
	n := newSentinelNode(kind)
	b.addNode(n)
	return n, nil
}

// NewLabel allocates an unbound, anonymous, top-level label.
func (b *Builder) NewLabel() (LabelID, error) {
	if b.lastErr != nil {
		return NoLabel, b.lastErr
	}
	id := b.container.NewLabelID()
	if id == NoLabel {
		return NoLabel, b.fail(ErrOutOfMemory)
	}
	b.labels.set(id, newLabelNode(id, LabelAnonymous, "", NoLabel))
	return id, nil
}

// NewNamedLabel allocates an unbound label with a name, scoped by kind
// and optionally nested under parent (NoLabel for a top-level label),
// per spec.md §4.1's new_named_label(name, kind, parent) contract.
// parent, if not NoLabel, must already be a label allocated on this
// Builder. When two NewNamedLabel calls race to name the same id (only
// possible with a CodeContainer shared across builders), the id the
// CodeContainer actually returned always wins over any
// caller-suggested name, matching NewLabel's precedence.
func (b *Builder) NewNamedLabel(name string, kind LabelKind, parent LabelID) (LabelID, error) {
	if b.lastErr != nil {
		return NoLabel, b.lastErr
	}
	if parent != NoLabel {
		if _, ok := b.labels.get(parent); !ok {
			return NoLabel, b.fail(fmt.Errorf("%w: parent label %d", ErrInvalidLabel, parent))
		}
	}
	id := b.container.NewNamedLabelID(name, kind, parent)
	if id == NoLabel {
		return NoLabel, b.fail(ErrOutOfMemory)
	}
	b.labels.set(id, newLabelNode(id, kind, b.data.AllocString(name), parent))
	return id, nil
}

// EmitLabelData appends a LabelDataNode under an already allocated,
// unbound label id, binding it at this position. The node embeds a
// relocatable, pointer-sized slot resolving to the label's own
// address (the jump-table-entry idiom) — it carries no payload of its
// own; use EmitData for an arbitrary byte blob.
func (b *Builder) EmitLabelData(id LabelID) (*LabelDataNode, error) {
	if b.lastErr != nil {
		return nil, b.lastErr
	}
	entry, ok := b.labels.get(id)
	if !ok {
		return nil, b.fail(fmt.Errorf("%w: %d", ErrInvalidLabel, id))
	}
	if entry.bound {
		return nil, b.fail(fmt.Errorf("%w: label %d already bound", ErrInvalidState, id))
	}
	n := newLabelDataNode(id)
	b.addNode(n)
	b.labels.markBound(id)
	return n, nil
}

// EmitConstPool appends a ConstPoolNode under an already allocated,
// unbound label id, binding it at this position. The caller is
// expected to have finished populating pool before calling this.
func (b *Builder) EmitConstPool(id LabelID, pool *ConstPool) (*ConstPoolNode, error) {
	if b.lastErr != nil {
		return nil, b.lastErr
	}
	entry, ok := b.labels.get(id)
	if !ok {
		return nil, b.fail(fmt.Errorf("%w: %d", ErrInvalidLabel, id))
	}
	if entry.bound {
		return nil, b.fail(fmt.Errorf("%w: label %d already bound", ErrInvalidState, id))
	}
	if _, err := b.EmitAlign(AlignZero, pool.Alignment()); err != nil {
		return nil, err
	}
	n := newConstPoolNode(id, pool)
	b.addNode(n)
	b.labels.markBound(id)
	return n, nil
}

// Bind inserts the LabelNode for id after the cursor, giving it a
// concrete position. id must have come from NewLabel/NewNamedLabel on
// this Builder and must not already be bound.
func (b *Builder) Bind(id LabelID) (*LabelNode, error) {
	if b.lastErr != nil {
		return nil, b.lastErr
	}
	entry, ok := b.labels.get(id)
	if !ok {
		return nil, b.fail(fmt.Errorf("%w: %d", ErrInvalidLabel, id))
	}
	if entry.bound {
		return nil, b.fail(fmt.Errorf("%w: label %d already bound", ErrInvalidState, id))
	}
	b.addNode(entry.node)
	b.labels.markBound(id)
	return entry.node, nil
}

// IsLabelBound reports whether id has been bound to a position yet.
func (b *Builder) IsLabelBound(id LabelID) bool {
	entry, ok := b.labels.get(id)
	return ok && entry.bound
}

// Remove unlinks n from the node list. n must belong to this Builder.
// If n is the current cursor, the cursor moves to n's predecessor.
func (b *Builder) Remove(n Node) error {
	if b.lastErr != nil {
		return b.lastErr
	}
	if n == nil {
		return b.fail(fmt.Errorf("%w: nil node", ErrInvalidArgument))
	}
	prev, next := n.Prev(), n.Next()
	if prev != nil {
		prev.setNext(next)
	} else {
		b.first = next
	}
	if next != nil {
		next.setPrev(prev)
	} else {
		b.last = prev
	}
	if b.cursor == n {
		b.cursor = prev
	}
	n.setPrev(nil)
	n.setNext(nil)
	b.nodeCount--
	return nil
}

// RemoveRange removes the contiguous run from first to last, both
// inclusive. first must not come after last in the list.
func (b *Builder) RemoveRange(first, last Node) error {
	if b.lastErr != nil {
		return b.lastErr
	}
	if first == nil || last == nil {
		return b.fail(fmt.Errorf("%w: nil range endpoint", ErrInvalidArgument))
	}
	prev := first.Prev()
	next := last.Next()
	if prev != nil {
		prev.setNext(next)
	} else {
		b.first = next
	}
	if next != nil {
		next.setPrev(prev)
	} else {
		b.last = prev
	}
	count := 0
	for n := first; n != nil; {
		cur := n
		n = n.Next()
		if b.cursor == cur {
			b.cursor = prev
		}
		cur.setPrev(nil)
		cur.setNext(nil)
		count++
		if cur == last {
			break
		}
	}
	b.nodeCount -= count
	return nil
}

// BuilderStats reports arena allocation counters for diagnostics.
type BuilderStats struct {
	Data    zone.Stats
	Scratch zone.Stats
	Nodes   int
}

// Stats reports current arena usage and node count.
func (b *Builder) Stats() BuilderStats {
	return BuilderStats{Data: b.data.Stats(), Scratch: b.scratch.Stats(), Nodes: b.nodeCount}
}

// Detach resets the Builder to an empty state: every node is dropped,
// both arenas reset wholesale, and the label table and pass list are
// cleared. The Builder is safe to reuse for a new, unrelated node list
// afterward.
func (b *Builder) Detach() {
	b.first, b.last, b.cursor = nil, nil, nil
	b.nodeCount = 0
	b.nextPosition = 1
	b.labels = labelTable{}
	for _, p := range b.passes {
		p.SetAttachedBuilder(nil)
	}
	b.passes = nil
	b.lastErr = nil
	b.resetPending()
	b.data.Reset()
	b.scratch.Reset()
}

// Dump renders the node list as a tree for debugging: one child per
// node, in list order, under a synthetic root.
func (b *Builder) Dump() string {
	tree := treeprint.New()
	tree.SetValue("Builder")
	for n := b.first; n != nil; n = n.Next() {
		tree.AddNode(dumpNode(n))
	}
	return tree.String()
}

func dumpNode(n Node) string {
	line := fmt.Sprintf("#%d %s", n.Position(), n.Type())
	switch v := n.(type) {
	case *InstructionNode:
		line += fmt.Sprintf(" inst=%d options=%#x operands=%d", v.InstID, v.Options, len(v.Operands))
		if v.HasOpExtra() {
			line += " +extra"
		}
	case *DataNode:
		line += fmt.Sprintf(" bytes=%d", len(v.Payload))
	case *AlignNode:
		line += fmt.Sprintf(" align=%d", v.Alignment)
	case *LabelNode:
		line += fmt.Sprintf(" id=%d name=%q parent=%d", v.ID, v.Name, v.Parent)
	case *LabelDataNode:
		line += fmt.Sprintf(" id=%d", v.ID)
	case *ConstPoolNode:
		line += fmt.Sprintf(" id=%d size=%d", v.ID, v.Pool.Size())
	case *SentinelNode:
		line += fmt.Sprintf(" kind=%d", v.Kind)
	}
	if c := n.Comment(); c != "" {
		line += fmt.Sprintf(" ; %s", c)
	}
	return line
}
