package bytecode

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidCondition reports a V1 record with an unrecognized condition
// code. Only the legacy decode path can produce it.
var ErrInvalidCondition = errors.New("invalid condition code")

// v1RecordSize is the size of one encoded V1 instruction: three 32-bit
// words.
const v1RecordSize = 12

// RawInstruction is one bind instruction packed into the fixed-width V1
// record: three 32-bit words, bit positions counted from the low bit of
// the 96-bit concatenation.
//
//	lsb                                                          msb
//	[ 0,16) operand B       condition's property key
//	[16,24) operand A       jump target for goto/label
//	[24,28) operation code  abort=0 match=1 goto=2 label=5
//	[28,32) condition code  always=0 equal=1 not-equal=2
//	[32,64) value           condition's comparison value
//	[64,72) debug line
//	[72,80) debug AST location
//	[80,96) debug extra
//
// The layout matches the native driver ABI bit for bit; loaders consume
// the three words little-endian in order.
type RawInstruction [3]uint32

// ConditionCode returns the condition code bits.
func (r RawInstruction) ConditionCode() uint32 { return r[0] >> 28 }

// SetConditionCode stores the condition code bits.
func (r *RawInstruction) SetConditionCode(v uint32) {
	r[0] = r[0]&^(0xF<<28) | (v&0xF)<<28
}

// OperationCode returns the operation code bits.
func (r RawInstruction) OperationCode() uint32 { return (r[0] >> 24) & 0xF }

// SetOperationCode stores the operation code bits.
func (r *RawInstruction) SetOperationCode(v uint32) {
	r[0] = r[0]&^(0xF<<24) | (v&0xF)<<24
}

// ParameterA returns operand A.
func (r RawInstruction) ParameterA() uint32 { return (r[0] >> 16) & 0xFF }

// SetParameterA stores operand A.
func (r *RawInstruction) SetParameterA(v uint32) {
	r[0] = r[0]&^(0xFF<<16) | (v&0xFF)<<16
}

// ParameterB returns operand B.
func (r RawInstruction) ParameterB() uint32 { return r[0] & 0xFFFF }

// SetParameterB stores operand B.
func (r *RawInstruction) SetParameterB(v uint32) {
	r[0] = r[0]&^0xFFFF | v&0xFFFF
}

// Value returns the comparison value word.
func (r RawInstruction) Value() uint32 { return r[1] }

// SetValue stores the comparison value word.
func (r *RawInstruction) SetValue(v uint32) { r[1] = v }

// Line returns the debug line number.
func (r RawInstruction) Line() uint32 { return r[2] & 0xFF }

// SetLine stores the debug line number.
func (r *RawInstruction) SetLine(v uint32) {
	r[2] = r[2]&^uint32(0xFF) | v&0xFF
}

// AstLocation returns the debug AST-location tag.
func (r RawInstruction) AstLocation() uint32 { return (r[2] >> 8) & 0xFF }

// SetAstLocation stores the debug AST-location tag.
func (r *RawInstruction) SetAstLocation(v uint32) {
	r[2] = r[2]&^(uint32(0xFF)<<8) | (v&0xFF)<<8
}

// Extra returns the debug extra field.
func (r RawInstruction) Extra() uint32 { return r[2] >> 16 }

// SetExtra stores the debug extra field.
func (r *RawInstruction) SetExtra(v uint32) {
	r[2] = r[2]&^(uint32(0xFFFF)<<16) | (v&0xFFFF)<<16
}

// String formats the non-debug fields for diagnostics.
func (r RawInstruction) String() string {
	return fmt.Sprintf("c: %d, o: %d, a: %d, b: %#06x, v: %#010x",
		r.ConditionCode(), r.OperationCode(), r.ParameterA(), r.ParameterB(), r.Value())
}

// encodeCondition flattens a condition into its code and B/value operands.
func encodeCondition(c Condition) (code, b, v uint32) {
	return uint32(c.Kind), c.Key, c.Value
}

// EncodeInstruction packs one instruction, without debug metadata, into a
// V1 record.
func EncodeInstruction(inst Instruction) RawInstruction {
	var code, a, b, v uint32
	switch inst.Op {
	case OpAbort, OpMatch:
		code, b, v = encodeCondition(inst.Cond)
	case OpGoto:
		code, b, v = encodeCondition(inst.Cond)
		a = inst.Target
	case OpLabel:
		code = uint32(ConditionAlways)
		a = inst.Target
	}

	var raw RawInstruction
	raw.SetConditionCode(code)
	raw.SetOperationCode(uint32(inst.Op))
	raw.SetParameterA(a)
	raw.SetParameterB(b)
	raw.SetValue(v)
	return raw
}

// EncodeInstructionInfo packs an instruction together with its debug
// metadata into a V1 record.
func EncodeInstructionInfo(info InstructionInfo) RawInstruction {
	raw := EncodeInstruction(info.Instruction)
	raw.SetLine(info.Debug.Line)
	raw.SetAstLocation(uint32(info.Debug.AstLocation))
	raw.SetExtra(uint32(info.Debug.Extra))
	return raw
}

// Instruction unpacks the abstract instruction from a V1 record. This is
// the legacy decode path; it rejects reserved operation codes and unknown
// condition codes.
func (r RawInstruction) Instruction() (Instruction, error) {
	cond, err := decodeCondition(r.ConditionCode(), r.ParameterB(), r.Value())
	if err != nil {
		return Instruction{}, err
	}

	switch Operation(r.OperationCode()) {
	case OpAbort:
		return Abort(cond), nil
	case OpMatch:
		return Match(cond), nil
	case OpGoto:
		return Goto(cond, r.ParameterA()), nil
	case OpLabel:
		return Label(r.ParameterA()), nil
	default:
		return Instruction{}, fmt.Errorf("%w: V1 operation %d", ErrInvalidOp, r.OperationCode())
	}
}

// Debug unpacks the debug metadata from a V1 record.
func (r RawInstruction) Debug() DebugInfo {
	return DebugInfo{
		Line:        r.Line(),
		AstLocation: AstLocation(r.AstLocation()),
		Extra:       uint16(r.Extra()),
	}
}

func decodeCondition(code, b, v uint32) (Condition, error) {
	switch ConditionKind(code) {
	case ConditionAlways:
		return Always(), nil
	case ConditionEqual:
		return Equal(b, v), nil
	case ConditionNotEqual:
		return NotEqual(b, v), nil
	default:
		return Condition{}, fmt.Errorf("%w: %d", ErrInvalidCondition, code)
	}
}

// EncodeBytecodeV1 serializes a program as a flat byte stream: three
// little-endian 32-bit words per instruction, in program order.
func EncodeBytecodeV1(program []InstructionInfo) []byte {
	out := make([]byte, 0, len(program)*v1RecordSize)
	for _, info := range program {
		raw := EncodeInstructionInfo(info)
		for _, word := range raw {
			out = binary.LittleEndian.AppendUint32(out, word)
		}
	}
	return out
}

// EncodeStringV1 serializes a program as a comma-separated hex-triple
// listing, one "{0xW0,0xW1,0xW2}," group per instruction. The listing is a
// pure projection of the same packed records as EncodeBytecodeV1.
func EncodeStringV1(program []InstructionInfo) string {
	var sb strings.Builder
	for _, info := range program {
		raw := EncodeInstructionInfo(info)
		fmt.Fprintf(&sb, "{%#x,%#x,%#x},", raw[0], raw[1], raw[2])
	}
	return sb.String()
}

// DecodeBytecodeV1 parses a flat V1 byte stream back into instructions
// with their debug metadata. The stream must be a whole number of 12-byte
// records.
func DecodeBytecodeV1(data []byte) ([]InstructionInfo, error) {
	if len(data)%v1RecordSize != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrUnexpectedEnd, len(data)%v1RecordSize)
	}

	program := make([]InstructionInfo, 0, len(data)/v1RecordSize)
	for off := 0; off < len(data); off += v1RecordSize {
		raw := RawInstruction{
			binary.LittleEndian.Uint32(data[off:]),
			binary.LittleEndian.Uint32(data[off+4:]),
			binary.LittleEndian.Uint32(data[off+8:]),
		}
		inst, err := raw.Instruction()
		if err != nil {
			return nil, err
		}
		program = append(program, InstructionInfo{Instruction: inst, Debug: raw.Debug()})
	}
	return program, nil
}
