// Package bytecode implements the compiled form of driver bind rules and
// the engine that evaluates them against a device's properties.
//
// A bind rule is a small predicate compiled ahead of time into one of two
// binary encodings:
//
//   - V1: a legacy fixed-width format of three 32-bit words per
//     instruction, bit-packed to match the native driver ABI. The package
//     encodes this format for existing loaders; it is write-mostly.
//
//   - V2: a byte-oriented, variable-width format where string operands are
//     referenced through a symbol table instead of being embedded inline.
//     This is the format the matcher evaluates.
//
// At device-enumeration time a DecodedProgram (symbol table plus raw
// instruction bytes) is evaluated against a DeviceProperties table with
// MatchBytecode, producing a single bind/no-bind verdict. Evaluation is a
// linear pass with short-circuit semantics: the first failing condition or
// an explicit abort ends the match. There are no loops, so evaluation time
// is bounded by program length.
//
// Everything in this package is a pure function over immutable inputs. A
// DecodedProgram and a property table may be shared across concurrent
// matches without coordination.
package bytecode
