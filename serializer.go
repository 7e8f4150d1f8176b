package asmjit

import "fmt"

// Serialize walks the node list head to tail exactly once, replaying
// each node into e. A node's inline comment, if any, is forwarded
// before the node's own content. The first error e returns stops the
// walk immediately; everything after that node is left unserialized.
// Per spec.md §7, a downstream failure is returned directly and is not
// sticky on the builder: it halts this call only, unlike out-of-memory
// or validation-failed, so a later Emit/Bind/etc. on the same builder
// is unaffected.
func (b *Builder) Serialize(e Emitter) error {
	if b.lastErr != nil {
		return b.lastErr
	}
	for n := b.first; n != nil; n = n.Next() {
		if c := n.Comment(); c != "" {
			if err := e.EmitComment(c); err != nil {
				return fmt.Errorf("serialize: %w", err)
			}
		}
		if err := serializeOne(e, n); err != nil {
			return fmt.Errorf("serialize: %w", err)
		}
	}
	return nil
}

func serializeOne(e Emitter, n Node) error {
	switch v := n.(type) {
	case *InstructionNode:
		return e.EmitInstruction(v.InstID, v.Options, v.Operands, v.Extra)
	case *DataNode:
		return e.EmitData(v.Payload)
	case *AlignNode:
		return e.EmitAlign(v.Mode, v.Alignment)
	case *LabelNode:
		return e.BindLabel(v.ID)
	case *LabelDataNode:
		return e.EmbedLabel(v.ID)
	case *ConstPoolNode:
		return e.EmbedConstPool(v.ID, v.Pool)
	case *CommentNode, *SentinelNode:
		return nil
	default:
		return nil
	}
}
