package bytecode

import (
	"encoding/binary"
	"fmt"
)

// DecodedProgram is one compiled bind rule set ready for evaluation: the
// symbol table the compiler assigned plus the raw V2 instruction stream.
// It is constructed once per rule set and is immutable; any number of
// matches may consume it, concurrently or otherwise.
type DecodedProgram struct {
	SymbolTable  SymbolTable
	Instructions []byte
}

// NewDecodedProgram bundles a symbol table and instruction stream. A nil
// symbol table is treated as empty.
func NewDecodedProgram(symbols SymbolTable, instructions []byte) *DecodedProgram {
	if symbols == nil {
		symbols = SymbolTable{}
	}
	return &DecodedProgram{SymbolTable: symbols, Instructions: instructions}
}

// byteReader is the cursor consumed while decoding operands. It is local
// to one evaluation and never shared.
type byteReader struct {
	code []byte
	pos  int
}

// nextU8 reads one byte, or reports truncation.
func (r *byteReader) nextU8() (byte, error) {
	if r.pos >= len(r.code) {
		return 0, fmt.Errorf("%w: at offset %d", ErrUnexpectedEnd, r.pos)
	}
	b := r.code[r.pos]
	r.pos++
	return b, nil
}

// nextU32 reads a little-endian u32, or reports truncation.
func (r *byteReader) nextU32() (uint32, error) {
	if r.pos+4 > len(r.code) {
		return 0, fmt.Errorf("%w: at offset %d", ErrUnexpectedEnd, r.pos)
	}
	v := binary.LittleEndian.Uint32(r.code[r.pos:])
	r.pos += 4
	return v, nil
}

// done reports whether the cursor has consumed the whole stream.
func (r *byteReader) done() bool {
	return r.pos >= len(r.code)
}
