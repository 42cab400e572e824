package bytecode

import (
	"encoding/binary"
	"errors"
	"testing"
)

// ============ Stream-building helpers ============

func appendOperand(code []byte, typ RawValueType, value uint32) []byte {
	code = append(code, byte(typ))
	return binary.LittleEndian.AppendUint32(code, value)
}

func appendEqualCond(code []byte, keyType RawValueType, key uint32, valType RawValueType, val uint32) []byte {
	code = append(code, byte(RawOpEqualCondition))
	code = appendOperand(code, keyType, key)
	return appendOperand(code, valType, val)
}

func appendInequalCond(code []byte, keyType RawValueType, key uint32, valType RawValueType, val uint32) []byte {
	code = append(code, byte(RawOpInequalCondition))
	code = appendOperand(code, keyType, key)
	return appendOperand(code, valType, val)
}

func appendAbort(code []byte) []byte {
	return append(code, byte(RawOpAbort))
}

func verifyMatch(t *testing.T, program *DecodedProgram, props DeviceProperties, want bool) {
	t.Helper()
	got, err := MatchBytecode(program, props)
	if err != nil {
		t.Fatalf("MatchBytecode failed: %v", err)
	}
	if got != want {
		t.Errorf("Expected match=%t, got %t", want, got)
	}
}

func verifyMatchErr(t *testing.T, program *DecodedProgram, props DeviceProperties, wantErr error) {
	t.Helper()
	_, err := MatchBytecode(program, props)
	if !errors.Is(err, wantErr) {
		t.Errorf("Expected error %v, got %v", wantErr, err)
	}
}

// ============ Basic verdicts ============

func TestMatchEmptyProgram(t *testing.T) {
	verifyMatch(t, NewDecodedProgram(nil, nil), DeviceProperties{}, true)
}

func TestMatchUnconditionalAbort(t *testing.T) {
	code := appendAbort(nil)
	props := DeviceProperties{
		NumberKey(1): NumberValue(2000),
	}
	verifyMatch(t, NewDecodedProgram(nil, code), props, false)
	verifyMatch(t, NewDecodedProgram(nil, code), DeviceProperties{}, false)
}

// ============ Equal conditions ============

func TestEqualConditionNumberKeys(t *testing.T) {
	props := DeviceProperties{
		NumberKey(1): NumberValue(2000),
		NumberKey(2): NumberValue(500),
	}

	// Matching value.
	code := appendEqualCond(nil, RawValueNumber, 1, RawValueNumber, 2000)
	verifyMatch(t, NewDecodedProgram(nil, code), props, true)

	// Differing value.
	code = appendEqualCond(nil, RawValueNumber, 1, RawValueNumber, 5)
	verifyMatch(t, NewDecodedProgram(nil, code), props, false)

	// Key absent from the device.
	code = appendEqualCond(nil, RawValueNumber, 3, RawValueNumber, 5)
	verifyMatch(t, NewDecodedProgram(nil, code), props, false)
}

func TestEqualConditionStringKeys(t *testing.T) {
	props := DeviceProperties{
		StringKey("nightjar"): StringValue("poorwill"),
	}
	symbols := SymbolTable{1: "nightjar", 2: "poorwill", 3: "nighthawk"}

	code := appendEqualCond(nil, RawValueString, 1, RawValueString, 2)
	verifyMatch(t, NewDecodedProgram(symbols, code), props, true)

	code = appendEqualCond(nil, RawValueString, 1, RawValueString, 3)
	verifyMatch(t, NewDecodedProgram(symbols, code), props, false)

	code = appendEqualCond(nil, RawValueString, 2, RawValueString, 1)
	verifyMatch(t, NewDecodedProgram(symbols, code), props, false)
}

// ============ Inequal conditions ============

func TestInequalConditionNumberKeys(t *testing.T) {
	props := DeviceProperties{
		NumberKey(1): NumberValue(2000),
		NumberKey(2): NumberValue(500),
	}

	// Differing value satisfies the inequality.
	code := appendInequalCond(nil, RawValueNumber, 1, RawValueNumber, 500)
	verifyMatch(t, NewDecodedProgram(nil, code), props, true)

	// Absent key satisfies the inequality.
	code = appendInequalCond(nil, RawValueNumber, 10, RawValueNumber, 5)
	verifyMatch(t, NewDecodedProgram(nil, code), props, true)

	// Matching value fails it.
	code = appendInequalCond(nil, RawValueNumber, 2, RawValueNumber, 500)
	verifyMatch(t, NewDecodedProgram(nil, code), props, false)
}

func TestInequalConditionStringKeys(t *testing.T) {
	props := DeviceProperties{
		StringKey("nightjar"): StringValue("poorwill"),
	}
	symbols := SymbolTable{1: "nightjar", 2: "poorwill"}

	code := appendInequalCond(nil, RawValueString, 1, RawValueString, 1)
	verifyMatch(t, NewDecodedProgram(symbols, code), props, true)

	code = appendInequalCond(nil, RawValueString, 2, RawValueString, 1)
	verifyMatch(t, NewDecodedProgram(symbols, code), props, true)

	code = appendInequalCond(nil, RawValueString, 1, RawValueString, 2)
	verifyMatch(t, NewDecodedProgram(symbols, code), props, false)
}

// ============ Operand kinds ============

func TestKeyOperandResolution(t *testing.T) {
	props := DeviceProperties{
		StringKey("timberdoodle"): NumberValue(2000),
	}
	symbols := SymbolTable{1: "timberdoodle"}

	code := appendEqualCond(nil, RawValueKey, 1, RawValueNumber, 2000)
	verifyMatch(t, NewDecodedProgram(symbols, code), props, true)

	code = appendEqualCond(nil, RawValueKey, 1, RawValueNumber, 500)
	verifyMatch(t, NewDecodedProgram(symbols, code), props, false)
}

func TestBoolOperands(t *testing.T) {
	props := DeviceProperties{
		NumberKey(1): BoolValue(true),
	}

	code := appendEqualCond(nil, RawValueNumber, 1, RawValueBool, 1)
	verifyMatch(t, NewDecodedProgram(nil, code), props, true)

	code = appendEqualCond(nil, RawValueNumber, 1, RawValueBool, 0)
	verifyMatch(t, NewDecodedProgram(nil, code), props, false)
}

func TestEnumOperands(t *testing.T) {
	props := DeviceProperties{
		NumberKey(4): EnumValue(),
	}

	// Enum markers carry no payload, so two of them always compare equal.
	code := appendEqualCond(nil, RawValueNumber, 4, RawValueEnum, 99)
	verifyMatch(t, NewDecodedProgram(nil, code), props, true)

	code = appendInequalCond(nil, RawValueNumber, 4, RawValueEnum, 0)
	verifyMatch(t, NewDecodedProgram(nil, code), props, false)
}

// ============ Errors ============

func TestMissingSymbolTableEntry(t *testing.T) {
	code := appendInequalCond(nil, RawValueString, 10, RawValueString, 1)
	verifyMatchErr(t, NewDecodedProgram(nil, code), DeviceProperties{}, ErrMissingSymbol)

	code = appendInequalCond(nil, RawValueKey, 15, RawValueString, 1)
	verifyMatchErr(t, NewDecodedProgram(nil, code), DeviceProperties{}, ErrMissingSymbol)
}

func TestInvalidOp(t *testing.T) {
	code := []byte{0xFF}
	code = appendInequalCond(code, RawValueNumber, 10, RawValueNumber, 1)
	verifyMatchErr(t, NewDecodedProgram(nil, code), DeviceProperties{}, ErrInvalidOp)
}

func TestInvalidValueType(t *testing.T) {
	code := []byte{byte(RawOpEqualCondition), 0x05, 0, 0, 0, 0, 0x01, 0, 0, 0, 0}
	verifyMatchErr(t, NewDecodedProgram(nil, code), DeviceProperties{}, ErrInvalidValueType)
}

func TestInvalidBoolValue(t *testing.T) {
	code := appendInequalCond(nil, RawValueNumber, 10, RawValueBool, 15)
	verifyMatchErr(t, NewDecodedProgram(nil, code), DeviceProperties{}, ErrInvalidBoolValue)
}

func TestMismatchedValueTypes(t *testing.T) {
	props := DeviceProperties{
		NumberKey(1):        NumberValue(2000),
		StringKey("tyrant"): StringValue("flycatcher"),
	}
	symbols := SymbolTable{1: "tyrant", 2: "flycatcher"}

	code := appendEqualCond(nil, RawValueString, 1, RawValueNumber, 15)
	verifyMatchErr(t, NewDecodedProgram(symbols, code), props, ErrMismatchValueTypes)
}

func TestTruncatedCondition(t *testing.T) {
	code := []byte{byte(RawOpEqualCondition), 0x02, 0, 0, 0}
	verifyMatchErr(t, NewDecodedProgram(nil, code), DeviceProperties{}, ErrUnexpectedEnd)
}

// ============ Sequencing ============

func TestMultipleConditionsMatch(t *testing.T) {
	props := DeviceProperties{
		NumberKey(10):     NumberValue(2000),
		NumberKey(2):      NumberValue(500),
		StringKey("rail"): StringValue("crake"),
	}
	symbols := SymbolTable{1: "crake", 2: "rail"}

	var code []byte
	code = appendInequalCond(code, RawValueNumber, 10, RawValueNumber, 200)
	code = appendInequalCond(code, RawValueString, 1, RawValueString, 2)
	code = appendEqualCond(code, RawValueNumber, 10, RawValueNumber, 2000)

	verifyMatch(t, NewDecodedProgram(symbols, code), props, true)
}

func TestMultipleConditionsNoMatch(t *testing.T) {
	props := DeviceProperties{
		NumberKey(10):     NumberValue(2000),
		NumberKey(2):      NumberValue(500),
		StringKey("rail"): StringValue("crake"),
	}
	symbols := SymbolTable{1: "crake", 2: "rail"}

	var code []byte
	code = appendEqualCond(code, RawValueString, 2, RawValueString, 1)
	code = appendEqualCond(code, RawValueNumber, 2, RawValueNumber, 5000)
	code = appendInequalCond(code, RawValueNumber, 1, RawValueNumber, 40)

	verifyMatch(t, NewDecodedProgram(symbols, code), props, false)
}

func TestShortCircuitStopsAtFirstFailure(t *testing.T) {
	props := DeviceProperties{
		NumberKey(1): NumberValue(7),
	}

	// The failing first condition must end evaluation before the invalid
	// opcode that follows it is ever read.
	var code []byte
	code = appendEqualCond(code, RawValueNumber, 1, RawValueNumber, 8)
	code = append(code, 0xFF)

	verifyMatch(t, NewDecodedProgram(nil, code), props, false)
}

func TestJumpOpcodesSkippedNotFollowed(t *testing.T) {
	props := DeviceProperties{
		NumberKey(1): NumberValue(2000),
	}

	// Jump-family opcodes are stepped over without reading targets, so the
	// condition after them still runs.
	var code []byte
	code = append(code, byte(RawOpUnconditionalJump), byte(RawOpJumpLandPad))
	code = appendEqualCond(code, RawValueNumber, 1, RawValueNumber, 2000)

	verifyMatch(t, NewDecodedProgram(nil, code), props, true)
}
