package bytecode

import (
	"fmt"
	"sort"
	"strings"
)

// Disassemble returns a human-readable listing of the program: the symbol
// table followed by one line per instruction, annotated with byte offsets.
// Purely diagnostic; the listing stops at the first malformed byte and
// reports the decode error in place.
func (p *DecodedProgram) Disassemble() string {
	var sb strings.Builder

	if len(p.SymbolTable) > 0 {
		sb.WriteString("; Symbols:\n")
		indices := make([]uint32, 0, len(p.SymbolTable))
		for idx := range p.SymbolTable {
			indices = append(indices, idx)
		}
		sort.Slice(indices, func(i, j int) bool { return indices[i] < indices[j] })
		for _, idx := range indices {
			fmt.Fprintf(&sb, ";   [%3d] %q\n", idx, p.SymbolTable[idx])
		}
		sb.WriteString("\n")
	}

	sb.WriteString("; Code:\n")
	r := byteReader{code: p.Instructions}
	for !r.done() {
		offset := r.pos
		line, err := disassembleInstruction(&r, p.SymbolTable)
		if err != nil {
			fmt.Fprintf(&sb, "%04X  <%v>\n", offset, err)
			break
		}
		fmt.Fprintf(&sb, "%04X  %s\n", offset, line)
	}
	return sb.String()
}

// disassembleInstruction formats a single instruction, advancing the
// cursor past it.
func disassembleInstruction(r *byteReader, symbols SymbolTable) (string, error) {
	b, err := r.nextU8()
	if err != nil {
		return "", err
	}

	op := RawOp(b)
	if !op.IsValid() {
		return "", fmt.Errorf("%w: 0x%02x", ErrInvalidOp, b)
	}
	if !op.IsCondition() {
		return op.String(), nil
	}

	key, err := disassembleOperand(r, symbols)
	if err != nil {
		return "", err
	}
	value, err := disassembleOperand(r, symbols)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%-6s %s, %s", op, key, value), nil
}

// disassembleOperand formats one [type:u8][value:u32] operand pair,
// resolving symbol indices where the table has them.
func disassembleOperand(r *byteReader, symbols SymbolTable) (string, error) {
	tag, err := r.nextU8()
	if err != nil {
		return "", err
	}
	raw, err := r.nextU32()
	if err != nil {
		return "", err
	}

	typ := RawValueType(tag)
	switch typ {
	case RawValueKey, RawValueString:
		if s, ok := symbols[raw]; ok {
			return fmt.Sprintf("%s:%q", typ, s), nil
		}
		return fmt.Sprintf("%s:sym(%d)?", typ, raw), nil
	case RawValueNumber, RawValueBool:
		return fmt.Sprintf("%s:%#x", typ, raw), nil
	case RawValueEnum:
		return typ.String(), nil
	default:
		return "", fmt.Errorf("%w: 0x%02x", ErrInvalidValueType, tag)
	}
}
