package asmjit

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingEmitter struct {
	events []string
	failAt string
}

func (e *recordingEmitter) EmitInstruction(id uint32, options uint32, ops []Operand, extra Operand) error {
	return e.record("inst")
}
func (e *recordingEmitter) EmitData(payload []byte) error        { return e.record("data") }
func (e *recordingEmitter) EmitAlign(m AlignMode, a uint32) error { return e.record("align") }
func (e *recordingEmitter) BindLabel(id LabelID) error            { return e.record("label") }
func (e *recordingEmitter) EmbedLabel(id LabelID) error           { return e.record("embed-label") }
func (e *recordingEmitter) EmbedConstPool(id LabelID, pool *ConstPool) error {
	return e.record("embed-constpool")
}
func (e *recordingEmitter) EmitComment(c string) error { return e.record("comment") }

func (e *recordingEmitter) record(kind string) error {
	if kind == e.failAt {
		return errors.New("downstream rejected " + kind)
	}
	e.events = append(e.events, kind)
	return nil
}

func TestSerializeReplaysInOrder(t *testing.T) {
	b := NewBuilder()
	id, _ := b.NewLabel()
	b.Emit(1)
	b.EmitComment("note")
	b.Bind(id)
	b.EmitData([]byte{1, 2, 3})

	e := &recordingEmitter{}
	require.NoError(t, b.Serialize(e))
	assert.Equal(t, []string{"inst", "comment", "label", "data"}, e.events)
}

func TestSerializeForwardsInlineCommentBeforeNode(t *testing.T) {
	b := NewBuilder()
	n, _ := b.Emit(1)
	n.SetComment("inline")

	e := &recordingEmitter{}
	require.NoError(t, b.Serialize(e))
	assert.Equal(t, []string{"comment", "inst"}, e.events)
}

func TestSerializeRoutesLabelDataThroughEmbedLabel(t *testing.T) {
	b := NewBuilder()
	id, err := b.NewLabel()
	require.NoError(t, err)
	_, err = b.EmitLabelData(id)
	require.NoError(t, err)

	e := &recordingEmitter{}
	require.NoError(t, b.Serialize(e))
	assert.Equal(t, []string{"embed-label"}, e.events)
}

func TestSerializeRoutesConstPoolThroughEmbedConstPool(t *testing.T) {
	b := NewBuilder()
	id, err := b.NewLabel()
	require.NoError(t, err)
	pool := NewConstPool(16)
	pool.AddU64(1)
	_, err = b.EmitConstPool(id, pool)
	require.NoError(t, err)

	e := &recordingEmitter{}
	require.NoError(t, b.Serialize(e))
	assert.Equal(t, []string{"align", "embed-constpool"}, e.events)
}

func TestSerializeStopsOnDownstreamError(t *testing.T) {
	b := NewBuilder()
	b.Emit(1)
	b.Emit(2)

	e := &recordingEmitter{failAt: "inst"}
	err := b.Serialize(e)
	require.Error(t, err)
	assert.Empty(t, e.events)
	// Downstream failure is not sticky on the source builder (spec.md
	// §7): it halts this Serialize call only.
	assert.NoError(t, b.LastError())
}

func TestSerializeDownstreamErrorDoesNotBlockLaterEmission(t *testing.T) {
	b := NewBuilder()
	b.Emit(1)

	e := &recordingEmitter{failAt: "inst"}
	require.Error(t, b.Serialize(e))

	_, err := b.Emit(2)
	require.NoError(t, err)
	assert.Equal(t, 2, b.NodeCount())
}
