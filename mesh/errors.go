package mesh

import "errors"

// Failure taxonomy of the element containers. Every error returned by this
// package wraps exactly one of these, so callers can test with errors.Is.
var (
	// ErrShapeMismatch reports a column count that differs from an
	// already established block width.
	ErrShapeMismatch = errors.New("shape mismatch")
	// ErrIndexOutOfRange reports a row, column, range or block index beyond
	// current bounds.
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrDuplicateName reports a field name that is already attached.
	ErrDuplicateName = errors.New("duplicate name")
	// ErrInvalidArgument reports malformed input such as a missing buffer
	// for a positive row count or an invalid element type.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUnknownField reports a lookup of a field that was never attached.
	ErrUnknownField = errors.New("unknown field")
	// ErrTypeMismatch reports typed access to a field of a different data type.
	ErrTypeMismatch = errors.New("field type mismatch")
)
