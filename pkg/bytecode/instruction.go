package bytecode

import "fmt"

// ConditionKind is a condition code. The numeric values are part of the
// legacy V1 ABI and must not change.
type ConditionKind uint8

const (
	ConditionAlways   ConditionKind = 0
	ConditionEqual    ConditionKind = 1
	ConditionNotEqual ConditionKind = 2
)

// String returns a human-readable name for the condition code.
func (k ConditionKind) String() string {
	switch k {
	case ConditionAlways:
		return "always"
	case ConditionEqual:
		return "equal"
	case ConditionNotEqual:
		return "not-equal"
	default:
		return fmt.Sprintf("ConditionKind(%d)", uint8(k))
	}
}

// Condition is a single comparison embedded in an instruction: always true,
// or an equal/not-equal test of property Key against Value. A condition is
// owned entirely by its instruction.
type Condition struct {
	Kind  ConditionKind
	Key   uint32
	Value uint32
}

// Always returns the condition that is always satisfied.
func Always() Condition {
	return Condition{Kind: ConditionAlways}
}

// Equal returns the condition that property key equals value.
func Equal(key, value uint32) Condition {
	return Condition{Kind: ConditionEqual, Key: key, Value: value}
}

// NotEqual returns the condition that property key does not equal value.
func NotEqual(key, value uint32) Condition {
	return Condition{Kind: ConditionNotEqual, Key: key, Value: value}
}

// Operation is a V1 operation code. The values match the native driver
// ABI; 3 and 4 are reserved there and never emitted.
type Operation uint8

const (
	OpAbort Operation = 0
	OpMatch Operation = 1
	OpGoto  Operation = 2
	OpLabel Operation = 5
)

// String returns a human-readable name for the operation code.
func (o Operation) String() string {
	switch o {
	case OpAbort:
		return "abort"
	case OpMatch:
		return "match"
	case OpGoto:
		return "goto"
	case OpLabel:
		return "label"
	default:
		return fmt.Sprintf("Operation(%d)", uint8(o))
	}
}

// Instruction is one abstract bind instruction, independent of any wire
// encoding. Target is the jump target for Goto and the label id for Label;
// it is zero otherwise. Instructions are immutable once built.
type Instruction struct {
	Op     Operation
	Cond   Condition
	Target uint32
}

// Abort returns an instruction that fails the match if cond holds.
func Abort(cond Condition) Instruction {
	return Instruction{Op: OpAbort, Cond: cond}
}

// Match returns an instruction that succeeds the match if cond holds.
func Match(cond Condition) Instruction {
	return Instruction{Op: OpMatch, Cond: cond}
}

// Goto returns an instruction that jumps to the label target if cond holds.
func Goto(cond Condition, target uint32) Instruction {
	return Instruction{Op: OpGoto, Cond: cond, Target: target}
}

// Label returns a jump-target marker with the given id.
func Label(id uint32) Instruction {
	return Instruction{Op: OpLabel, Cond: Always(), Target: id}
}

// AstLocation tags which syntactic construct an instruction was compiled
// from. It is debug metadata only and never affects match semantics.
type AstLocation uint8

const (
	AstLocationUnknown AstLocation = iota
	AstLocationConditionStatement
	AstLocationAcceptStatementValue
	AstLocationAcceptStatementFailure
	AstLocationIfCondition
)

// DebugInfo is the diagnostic metadata compiled into a V1 record. Extra's
// meaning depends on AstLocation: for an accept-statement failure it is the
// key of the failed accept clause, otherwise it is unused.
type DebugInfo struct {
	Line        uint32
	AstLocation AstLocation
	Extra       uint16
}

// InstructionInfo pairs an instruction with its debug metadata.
type InstructionInfo struct {
	Instruction Instruction
	Debug       DebugInfo
}
