package bytecode

import "errors"

// Decode and evaluation errors. All of them are fatal to the match or
// encode call in which they occur: they signal a malformed or incompatible
// compiled artifact, not a transient condition. Callers typically treat the
// affected driver as a non-match, log, and move on to the next driver.
var (
	// ErrInvalidOp reports an unrecognized leading opcode byte.
	ErrInvalidOp = errors.New("invalid opcode")

	// ErrInvalidValueType reports an unrecognized operand type tag.
	ErrInvalidValueType = errors.New("invalid value type")

	// ErrInvalidBoolValue reports a boolean operand outside {0, 1}.
	ErrInvalidBoolValue = errors.New("invalid boolean value")

	// ErrMissingSymbol reports a string or key operand whose symbol-table
	// index has no entry.
	ErrMissingSymbol = errors.New("missing entry in symbol table")

	// ErrMismatchValueTypes reports a comparison between values of
	// different kinds. Comparisons never coerce.
	ErrMismatchValueTypes = errors.New("mismatched value types in comparison")

	// ErrUnexpectedEnd reports an instruction stream truncated mid-operand.
	ErrUnexpectedEnd = errors.New("unexpected end of bytecode")

	// ErrUnsupportedKeyType reports a condition whose key operand
	// materialized to a value kind that cannot name a device property.
	ErrUnsupportedKeyType = errors.New("unsupported property key type")
)
