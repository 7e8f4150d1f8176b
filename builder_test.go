package asmjit

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmitAppendsInOrder(t *testing.T) {
	b := NewBuilder()
	_, err := b.Emit(1, NewImm(1))
	require.NoError(t, err)
	_, err = b.Emit(2, NewImm(2))
	require.NoError(t, err)

	require.Equal(t, 2, b.NodeCount())
	first := b.First().(*InstructionNode)
	second := first.Next().(*InstructionNode)
	assert.Equal(t, uint32(1), first.InstID)
	assert.Equal(t, uint32(2), second.InstID)
	assert.Nil(t, second.Next())
	assert.Same(t, first, second.Prev())
}

func TestLabelMustBeAllocatedBeforeBind(t *testing.T) {
	b := NewBuilder()
	_, err := b.Bind(LabelID(999))
	assert.ErrorIs(t, err, ErrInvalidLabel)
}

func TestBindTwiceFails(t *testing.T) {
	b := NewBuilder()
	id, err := b.NewLabel()
	require.NoError(t, err)
	_, err = b.Bind(id)
	require.NoError(t, err)
	_, err = b.Bind(id)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestNewNamedLabelThreadsParent(t *testing.T) {
	b := NewBuilder()
	parent, err := b.NewNamedLabel("outer", LabelGlobal, NoLabel)
	require.NoError(t, err)

	child, err := b.NewNamedLabel("inner", LabelLocal, parent)
	require.NoError(t, err)

	_, err = b.Bind(child)
	require.NoError(t, err)
	node := b.First().(*LabelNode)
	assert.Equal(t, "inner", node.Name)
	assert.Equal(t, LabelLocal, node.Kind)
	assert.Equal(t, parent, node.Parent)
}

func TestNewNamedLabelRejectsUnknownParent(t *testing.T) {
	b := NewBuilder()
	_, err := b.NewNamedLabel("child", LabelLocal, LabelID(999))
	assert.ErrorIs(t, err, ErrInvalidLabel)
}

func TestForwardLabelReference(t *testing.T) {
	b := NewBuilder()
	target, err := b.NewLabel()
	require.NoError(t, err)
	_, err = b.Emit(1, NewLabelOperand(target))
	require.NoError(t, err)
	_, err = b.Emit(2)
	require.NoError(t, err)
	_, err = b.Bind(target)
	require.NoError(t, err)

	assert.True(t, b.IsLabelBound(target))
	assert.Equal(t, 3, b.NodeCount())
	last := b.Last()
	assert.Equal(t, NodeLabel, last.Type())
}

func TestStickyErrorHaltsChain(t *testing.T) {
	b := NewBuilder()
	_, err := b.EmitAlign(AlignCode, 3) // not a power of two
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.ErrorIs(t, b.LastError(), ErrInvalidArgument)

	_, err = b.Emit(1)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Equal(t, 0, b.NodeCount())

	b.ClearError()
	_, err = b.Emit(1)
	require.NoError(t, err)
}

func TestRemoveUnlinksAndMovesCursor(t *testing.T) {
	b := NewBuilder()
	a, _ := b.Emit(1)
	mid, _ := b.Emit(2)
	c, _ := b.Emit(3)

	require.NoError(t, b.Remove(mid))
	assert.Equal(t, 2, b.NodeCount())
	assert.Same(t, c, a.Next())
	assert.Same(t, a, c.Prev())
	assert.Same(t, c, b.Cursor())

	require.NoError(t, b.Remove(c))
	assert.Same(t, a, b.Cursor())
}

func TestAddAfterSplicesWithoutMovingCursor(t *testing.T) {
	b := NewBuilder()
	a, _ := b.Emit(1)
	c, _ := b.Emit(2)
	b.SetCursor(a)

	mid, err := b.NewInstNodeCap(9, 0)
	require.NoError(t, err)
	inserted, err := b.AddAfter(mid, a)
	require.NoError(t, err)

	assert.Same(t, mid, inserted)
	assert.Same(t, mid, a.Next())
	assert.Same(t, a, mid.Prev())
	assert.Same(t, c, mid.Next())
	assert.Same(t, mid, c.Prev())
	assert.Equal(t, 3, b.NodeCount())
	assert.Same(t, a, b.Cursor(), "AddAfter must not move the cursor")
}

func TestAddAfterAtTailUpdatesLast(t *testing.T) {
	b := NewBuilder()
	a, _ := b.Emit(1)

	tail, err := b.NewInstNodeCap(9, 0)
	require.NoError(t, err)
	_, err = b.AddAfter(tail, a)
	require.NoError(t, err)

	assert.Same(t, tail, b.Last())
	assert.Nil(t, tail.Next())
}

func TestAddBeforeSplicesWithoutMovingCursor(t *testing.T) {
	b := NewBuilder()
	a, _ := b.Emit(1)
	c, _ := b.Emit(2)
	b.SetCursor(c)

	mid, err := b.NewInstNodeCap(9, 0)
	require.NoError(t, err)
	inserted, err := b.AddBefore(mid, c)
	require.NoError(t, err)

	assert.Same(t, mid, inserted)
	assert.Same(t, mid, a.Next())
	assert.Same(t, a, mid.Prev())
	assert.Same(t, c, mid.Next())
	assert.Same(t, mid, c.Prev())
	assert.Equal(t, 3, b.NodeCount())
	assert.Same(t, c, b.Cursor(), "AddBefore must not move the cursor")
}

func TestAddBeforeAtHeadUpdatesFirst(t *testing.T) {
	b := NewBuilder()
	a, _ := b.Emit(1)

	head, err := b.NewInstNodeCap(9, 0)
	require.NoError(t, err)
	_, err = b.AddBefore(head, a)
	require.NoError(t, err)

	assert.Same(t, head, b.First())
	assert.Nil(t, head.Prev())
}

func TestAddAfterAndAddBeforeRejectNilArguments(t *testing.T) {
	b := NewBuilder()
	a, _ := b.Emit(1)

	_, err := b.AddAfter(nil, a)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = b.AddBefore(nil, a)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	n, _ := b.NewInstNodeCap(9, 0)
	_, err = b.AddAfter(n, nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = b.AddBefore(n, nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestPositionsStartAtOneAndStayUnique(t *testing.T) {
	b := NewBuilder()
	a, _ := b.Emit(1)
	c, _ := b.Emit(2)
	assert.Equal(t, 1, a.Position())
	assert.Equal(t, 2, c.Position())

	require.NoError(t, b.Remove(a))
	d, _ := b.Emit(3)
	assert.NotEqual(t, 0, d.Position())
	assert.NotEqual(t, c.Position(), d.Position())
}

func TestRemoveRange(t *testing.T) {
	b := NewBuilder()
	a, _ := b.Emit(1)
	b.Emit(2)
	b.Emit(3)
	d, _ := b.Emit(4)
	e, _ := b.Emit(5)

	require.NoError(t, b.RemoveRange(a.Next(), d))
	assert.Equal(t, 2, b.NodeCount())
	assert.Same(t, a, b.First())
	assert.Same(t, e, a.Next())
}

func TestDetachResetsEverything(t *testing.T) {
	b := NewBuilder()
	b.Emit(1)
	b.Emit(2)
	id, _ := b.NewLabel()
	b.Bind(id)

	b.Detach()
	assert.Equal(t, 0, b.NodeCount())
	assert.Nil(t, b.First())
	assert.Nil(t, b.Cursor())
	assert.False(t, b.IsLabelBound(id))
	assert.NoError(t, b.LastError())
}

func TestCapacityPreallocatedOperandsGrowsInPlace(t *testing.T) {
	b := NewBuilder()
	n, err := b.NewInstNodeCap(1, 4)
	require.NoError(t, err)
	require.Equal(t, 0, len(n.Operands))
	require.Equal(t, 4, cap(n.Operands))

	n.Operands = append(n.Operands, NewImm(1), NewImm(2))
	assert.Equal(t, 2, len(n.Operands))
	assert.Equal(t, 4, cap(n.Operands))

	_, err = b.InsertNode(n)
	require.NoError(t, err)
	assert.Equal(t, 1, b.NodeCount())
}

func TestValidatorRejectsInstructionWhenArmed(t *testing.T) {
	b := NewBuilder(WithValidator(rejectAll{}))
	_, err := b.Validate().Emit(1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidationFailed))
}

func TestUnarmedEmitBypassesValidator(t *testing.T) {
	// Per spec.md §4.1.2 step 3, a configured Validator only runs when
	// OptionStrictValidation is armed for that call. Wiring a Validator
	// alone must not check every instruction.
	b := NewBuilder(WithValidator(rejectAll{}))
	_, err := b.Emit(1)
	require.NoError(t, err)
	assert.Equal(t, 1, b.NodeCount())
}

func TestWithAlwaysValidateChecksEveryEmit(t *testing.T) {
	b := NewBuilder(WithValidator(rejectAll{}), WithAlwaysValidate())
	_, err := b.Emit(1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidationFailed))
}

func TestSetOp4Op5ExtraArmSideBandOperands(t *testing.T) {
	b := NewBuilder()
	n, err := b.SetOp4(NewImm(4)).SetOp5(NewImm(5)).SetOpExtra(NewImm(9)).Emit(1, NewImm(0), NewImm(1))
	require.NoError(t, err)

	require.Equal(t, []Operand{NewImm(0), NewImm(1), NewImm(4), NewImm(5)}, n.Operands)
	assert.Equal(t, NewImm(9), n.Extra)
	assert.True(t, n.HasOp4())
	assert.True(t, n.HasOp5())
	assert.True(t, n.HasOpExtra())

	// Side-band state is single-shot: the next Emit sees none of it.
	n2, err := b.Emit(2, NewImm(0))
	require.NoError(t, err)
	assert.Equal(t, []Operand{NewImm(0)}, n2.Operands)
	assert.False(t, n2.HasOp4())
	assert.False(t, n2.HasOp5())
	assert.False(t, n2.HasOpExtra())
}

func TestSetOp4WithoutOp5LeavesOp5Unarmed(t *testing.T) {
	b := NewBuilder()
	n, err := b.SetOp4(NewImm(4)).Emit(1, NewImm(0))
	require.NoError(t, err)

	require.Equal(t, []Operand{NewImm(0), NewImm(4)}, n.Operands)
	assert.True(t, n.HasOp4())
	assert.False(t, n.HasOp5())
	assert.False(t, n.HasOpExtra())
}

type rejectAll struct{}

func (rejectAll) Validate(id uint32, ops []Operand) error {
	return errors.New("always rejected")
}

func TestCommentNodeIsRemovable(t *testing.T) {
	b := NewBuilder()
	c, err := b.EmitComment("scratch note")
	require.NoError(t, err)
	assert.True(t, c.IsRemovable())
	assert.True(t, c.HasNoEffect())
	assert.Equal(t, "scratch note", c.Comment())
}

func TestDumpListsEveryNode(t *testing.T) {
	b := NewBuilder()
	b.Emit(1)
	b.EmitComment("hi")
	out := b.Dump()
	assert.Contains(t, out, "Instruction")
	assert.Contains(t, out, "Comment")
}
