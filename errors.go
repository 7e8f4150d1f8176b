package asmjit

import "errors"

// Sentinel errors for the builder's error taxonomy. Compare with
// errors.Is, not string matching.
var (
	// ErrOutOfMemory is returned when an allocation cannot be serviced;
	// the Builder returns it when its CodeContainer hands back NoLabel
	// instead of a fresh label id.
	ErrOutOfMemory = errors.New("asmjit: out of memory")

	// ErrInvalidLabel is returned for operations referencing a label id
	// that was never allocated on this Builder (including an unknown
	// parent passed to NewNamedLabel).
	ErrInvalidLabel = errors.New("asmjit: invalid label")

	// ErrInvalidArgument is returned when an operand list, instruction
	// id, or other caller-supplied argument fails a structural check.
	ErrInvalidArgument = errors.New("asmjit: invalid argument")

	// ErrInvalidState is returned when an operation is attempted while
	// the Builder is in a state that forbids it (e.g. binding an
	// already-bound label, or adding a Pass already attached to another
	// Builder).
	ErrInvalidState = errors.New("asmjit: invalid state")

	// ErrValidationFailed is returned by a Validator collaborator that
	// rejected an instruction the Builder was about to emit.
	ErrValidationFailed = errors.New("asmjit: validation failed")
)
