package bytecode

import (
	"strings"
	"testing"
)

func TestDisassembleListing(t *testing.T) {
	symbols := SymbolTable{1: "rail", 2: "crake"}

	var code []byte
	code = appendEqualCond(code, RawValueString, 1, RawValueString, 2)
	code = append(code, byte(RawOpUnconditionalJump))
	code = appendInequalCond(code, RawValueNumber, 10, RawValueBool, 1)
	code = appendAbort(code)

	listing := NewDecodedProgram(symbols, code).Disassemble()

	for _, want := range []string{
		`[  1] "rail"`,
		`[  2] "crake"`,
		`0000  EQ     string:"rail", string:"crake"`,
		"000B  JMP",
		`000C  NE     number:0xa, bool:0x1`,
		"0017  ABORT",
	} {
		if !strings.Contains(listing, want) {
			t.Errorf("Listing missing %q:\n%s", want, listing)
		}
	}
}

func TestDisassembleUnresolvedSymbol(t *testing.T) {
	code := appendEqualCond(nil, RawValueKey, 7, RawValueNumber, 1)
	listing := NewDecodedProgram(nil, code).Disassemble()
	if !strings.Contains(listing, "key:sym(7)?") {
		t.Errorf("Listing missing unresolved symbol marker:\n%s", listing)
	}
}

func TestDisassembleStopsOnMalformedByte(t *testing.T) {
	var code []byte
	code = appendAbort(code)
	code = append(code, 0xEE)
	code = appendAbort(code) // never reached

	listing := NewDecodedProgram(nil, code).Disassemble()
	if !strings.Contains(listing, "0001  <invalid opcode: 0xee>") {
		t.Errorf("Listing missing decode error annotation:\n%s", listing)
	}
	if strings.Contains(listing, "0002") {
		t.Errorf("Listing continued past malformed byte:\n%s", listing)
	}
}

func TestDisassembleTruncatedOperand(t *testing.T) {
	code := []byte{byte(RawOpEqualCondition), byte(RawValueNumber), 1, 2}
	listing := NewDecodedProgram(nil, code).Disassemble()
	if !strings.Contains(listing, "unexpected end of bytecode") {
		t.Errorf("Listing missing truncation annotation:\n%s", listing)
	}
}
