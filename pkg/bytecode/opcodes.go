package bytecode

import "fmt"

// RawOp is the leading opcode byte of one V2 instruction.
//
// Only the two condition opcodes and the unconditional abort are
// interpreted by the matcher. The jump family is recognized so that
// programs emitted by richer compilers decode cleanly, but the matcher
// skips those bytes without following targets; see MatchBytecode.
type RawOp byte

const (
	RawOpEqualCondition   RawOp = 0x01
	RawOpInequalCondition RawOp = 0x02

	RawOpUnconditionalJump RawOp = 0x10
	RawOpJumpIfEqual       RawOp = 0x11
	RawOpJumpIfNotEqual    RawOp = 0x12
	RawOpJumpLandPad       RawOp = 0x20

	RawOpAbort RawOp = 0x30
)

// rawOpNames maps each defined opcode to its listing name.
var rawOpNames = map[RawOp]string{
	RawOpEqualCondition:    "EQ",
	RawOpInequalCondition:  "NE",
	RawOpUnconditionalJump: "JMP",
	RawOpJumpIfEqual:       "JEQ",
	RawOpJumpIfNotEqual:    "JNE",
	RawOpJumpLandPad:       "PAD",
	RawOpAbort:             "ABORT",
}

// String returns the listing name of an opcode.
func (op RawOp) String() string {
	if name, ok := rawOpNames[op]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(0x%02X)", byte(op))
}

// IsValid reports whether the byte is a defined opcode.
func (op RawOp) IsValid() bool {
	_, ok := rawOpNames[op]
	return ok
}

// IsCondition reports whether the opcode is an equal or inequal condition.
func (op RawOp) IsCondition() bool {
	return op == RawOpEqualCondition || op == RawOpInequalCondition
}

// RawValueType is the type tag that precedes each u32 operand of a V2
// condition instruction.
type RawValueType byte

const (
	RawValueKey    RawValueType = 0x00
	RawValueNumber RawValueType = 0x01
	RawValueString RawValueType = 0x02
	RawValueBool   RawValueType = 0x03
	RawValueEnum   RawValueType = 0x04
)

// String returns a human-readable name for the type tag.
func (t RawValueType) String() string {
	switch t {
	case RawValueKey:
		return "key"
	case RawValueNumber:
		return "number"
	case RawValueString:
		return "string"
	case RawValueBool:
		return "bool"
	case RawValueEnum:
		return "enum"
	default:
		return fmt.Sprintf("UNKNOWN(0x%02X)", byte(t))
	}
}
