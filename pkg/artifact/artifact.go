// Package artifact persists compiled bind rule sets. An Artifact bundles
// the V2 instruction stream with the symbol table its string operands
// index into, so the pair can be stored with a driver and reloaded at
// enumeration time without re-running the compiler.
package artifact

import (
	"errors"
	"fmt"
	"os"

	"github.com/fxamacker/cbor/v2"

	"github.com/driverbind/bindc/pkg/bytecode"
)

// FormatVersion is the artifact container version. Increment on
// incompatible changes to the container layout; the bytecode generation
// inside is versioned separately by its own format.
const FormatVersion uint16 = 1

// ErrVersionMismatch reports an artifact written by an incompatible
// container version.
var ErrVersionMismatch = errors.New("artifact version mismatch")

// cborEncMode uses canonical mode for deterministic encoding, so equal
// artifacts produce byte-identical blobs.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("artifact: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Artifact is one compiled bind rule set ready for storage or transport.
type Artifact struct {
	Version      uint16            `cbor:"version"`
	Name         string            `cbor:"name"`
	Symbols      map[uint32]string `cbor:"symbols"`
	Instructions []byte            `cbor:"instructions"`
}

// New creates an artifact for the given rule set. A nil symbol table is
// stored as empty.
func New(name string, symbols bytecode.SymbolTable, instructions []byte) *Artifact {
	if symbols == nil {
		symbols = bytecode.SymbolTable{}
	}
	return &Artifact{
		Version:      FormatVersion,
		Name:         name,
		Symbols:      symbols,
		Instructions: instructions,
	}
}

// Program returns the decoded program view of the artifact, ready for the
// matcher.
func (a *Artifact) Program() *bytecode.DecodedProgram {
	return bytecode.NewDecodedProgram(bytecode.SymbolTable(a.Symbols), a.Instructions)
}

// Marshal serializes the artifact to CBOR bytes.
func (a *Artifact) Marshal() ([]byte, error) {
	return cborEncMode.Marshal(a)
}

// Unmarshal deserializes an artifact from CBOR bytes, rejecting
// incompatible container versions.
func Unmarshal(data []byte) (*Artifact, error) {
	var a Artifact
	if err := cbor.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("artifact: unmarshal: %w", err)
	}
	if a.Version != FormatVersion {
		return nil, fmt.Errorf("%w: got %d, support %d", ErrVersionMismatch, a.Version, FormatVersion)
	}
	return &a, nil
}

// Save writes the artifact to a file.
func (a *Artifact) Save(path string) error {
	data, err := a.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("artifact: write %s: %w", path, err)
	}
	return nil
}

// Load reads an artifact from a file.
func Load(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("artifact: read %s: %w", path, err)
	}
	return Unmarshal(data)
}
