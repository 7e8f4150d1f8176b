package asmjit

import (
	"fmt"

	"github.com/ppaulweber/libasmjit/internal/zone"
	"golang.org/x/exp/slices"
)

// Pass transforms or inspects a Builder's node list in place. Passes
// run in registration order; the first one to return an error halts
// the chain (RunPasses stops and surfaces that error, it does not run
// the remaining passes). AttachedBuilder/SetAttachedBuilder expose the
// back-pointer to the Builder a Pass is currently registered on (nil
// when detached), set by AddPass and cleared by DeletePass, so AddPass
// can reject a Pass already attached elsewhere. Concrete Pass types
// satisfy these two methods by embedding PassBase rather than
// implementing the bookkeeping themselves.
type Pass interface {
	Name() string
	Run(b *Builder, scratch *zone.Zone) error
	AttachedBuilder() *Builder
	SetAttachedBuilder(b *Builder)
}

// PassBase implements the attached-builder bookkeeping every Pass
// needs; embed it by value in a concrete Pass type, the same mixin
// nodeHeader provides for Node.
type PassBase struct {
	builder *Builder
}

// AttachedBuilder implements Pass.
func (p *PassBase) AttachedBuilder() *Builder { return p.builder }

// SetAttachedBuilder implements Pass.
func (p *PassBase) SetAttachedBuilder(b *Builder) { p.builder = b }

// passFunc adapts a plain function to the Pass interface, the same
// shortcut the teacher's generator-table pattern uses for small,
// stateless steps.
type passFunc struct {
	PassBase
	name string
	fn   func(b *Builder, scratch *zone.Zone) error
}

func NewPassFunc(name string, fn func(b *Builder, scratch *zone.Zone) error) Pass {
	return &passFunc{name: name, fn: fn}
}

func (p *passFunc) Name() string { return p.name }
func (p *passFunc) Run(b *Builder, scratch *zone.Zone) error {
	return p.fn(b, scratch)
}

// AddPass appends p to the pass chain. Adding a pass with a name
// already registered replaces it, matching typical "register or
// reconfigure" pass-manager semantics. It rejects (ErrInvalidState) a
// pass already attached to a different builder.
func (b *Builder) AddPass(p Pass) error {
	if owner := p.AttachedBuilder(); owner != nil && owner != b {
		return fmt.Errorf("%w: pass %q already attached to another builder", ErrInvalidState, p.Name())
	}
	if i := slices.IndexFunc(b.passes, func(existing Pass) bool { return existing.Name() == p.Name() }); i >= 0 {
		b.passes[i].SetAttachedBuilder(nil)
		b.passes[i] = p
	} else {
		b.passes = append(b.passes, p)
	}
	p.SetAttachedBuilder(b)
	return nil
}

// PassByName returns the registered pass with the given name, or nil.
func (b *Builder) PassByName(name string) Pass {
	i := slices.IndexFunc(b.passes, func(p Pass) bool { return p.Name() == name })
	if i < 0 {
		return nil
	}
	return b.passes[i]
}

// DeletePass removes the named pass, clears its attached-builder
// back-pointer, and reports whether it was present.
func (b *Builder) DeletePass(name string) bool {
	i := slices.IndexFunc(b.passes, func(p Pass) bool { return p.Name() == name })
	if i < 0 {
		return false
	}
	b.passes[i].SetAttachedBuilder(nil)
	b.passes = slices.Delete(b.passes, i, i+1)
	return true
}

// RunPasses executes every registered pass in order over a fresh
// scratch arena per pass, stopping at (and returning) the first
// error. A pass that fails leaves the node list in whatever partial
// state it reached; RunPasses does not attempt rollback.
func (b *Builder) RunPasses() error {
	if b.lastErr != nil {
		return b.lastErr
	}
	for _, p := range b.passes {
		b.scratch.Reset()
		b.logger.Debug("running pass", "name", p.Name())
		if err := p.Run(b, b.scratch); err != nil {
			wrapped := fmt.Errorf("pass %q: %w", p.Name(), err)
			b.lastErr = wrapped
			b.logger.Error("pass failed", "name", p.Name(), "err", err)
			return wrapped
		}
	}
	return nil
}
