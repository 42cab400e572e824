package bytecode

import "fmt"

// ValueKind identifies which variant a Value holds.
type ValueKind uint8

const (
	KindNumber ValueKind = iota
	KindString
	KindBool
	KindEnum
	KindKey
)

// String returns a human-readable name for the kind.
func (k ValueKind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindEnum:
		return "enum"
	case KindKey:
		return "key"
	default:
		return fmt.Sprintf("ValueKind(%d)", uint8(k))
	}
}

// ValueType is the type a bind library declares for a key. It is carried on
// key-typed values for diagnostics only; comparisons never consult it.
type ValueType uint8

const (
	ValueTypeNumber ValueType = iota
	ValueTypeStr
	ValueTypeBool
	ValueTypeEnum
)

// Value is a typed operand or device property value. Exactly one payload
// field is meaningful, selected by Kind; use the constructors below rather
// than building literals.
//
// Values of different kinds are never comparable: condition evaluation
// reports ErrMismatchValueTypes instead of coercing.
type Value struct {
	Kind    ValueKind
	Number  uint64
	Str     string
	Bool    bool
	KeyType ValueType // only for KindKey
}

// NumberValue returns a number-typed value.
func NumberValue(n uint64) Value {
	return Value{Kind: KindNumber, Number: n}
}

// StringValue returns a string-typed value.
func StringValue(s string) Value {
	return Value{Kind: KindString, Str: s}
}

// BoolValue returns a boolean-typed value.
func BoolValue(b bool) Value {
	return Value{Kind: KindBool, Bool: b}
}

// EnumValue returns the opaque enum marker value. It carries no payload;
// two enum values always compare equal.
func EnumValue() Value {
	return Value{Kind: KindEnum}
}

// KeyValue returns a key-typed value naming a device property, together
// with the type the bind library declared for it.
func KeyValue(name string, typ ValueType) Value {
	return Value{Kind: KindKey, Str: name, KeyType: typ}
}

// equals reports payload equality. Both values must have the same kind;
// callers check kinds first. Key values compare by name only, since the
// declared type is a placeholder.
func (v Value) equals(o Value) bool {
	switch v.Kind {
	case KindNumber:
		return v.Number == o.Number
	case KindString, KindKey:
		return v.Str == o.Str
	case KindBool:
		return v.Bool == o.Bool
	case KindEnum:
		return true
	default:
		return false
	}
}

// String formats the value for diagnostics.
func (v Value) String() string {
	switch v.Kind {
	case KindNumber:
		return fmt.Sprintf("%#x", v.Number)
	case KindString:
		return fmt.Sprintf("%q", v.Str)
	case KindBool:
		return fmt.Sprintf("%t", v.Bool)
	case KindEnum:
		return "enum"
	case KindKey:
		return fmt.Sprintf("key(%q)", v.Str)
	default:
		return fmt.Sprintf("Value(kind=%d)", uint8(v.Kind))
	}
}

// PropertyKeyKind identifies which variant a PropertyKey holds.
type PropertyKeyKind uint8

const (
	PropertyKeyNumber PropertyKeyKind = iota
	PropertyKeyString
)

// PropertyKey names a device property. Keys are either small integers
// (legacy numeric property IDs) or strings (symbol-table backed names).
// The zero value is the numeric key 0.
type PropertyKey struct {
	Kind   PropertyKeyKind
	Number uint64
	Str    string
}

// NumberKey returns a number-keyed property key.
func NumberKey(n uint64) PropertyKey {
	return PropertyKey{Kind: PropertyKeyNumber, Number: n}
}

// StringKey returns a string-keyed property key.
func StringKey(s string) PropertyKey {
	return PropertyKey{Kind: PropertyKeyString, Str: s}
}

// String formats the key for diagnostics.
func (k PropertyKey) String() string {
	if k.Kind == PropertyKeyString {
		return fmt.Sprintf("%q", k.Str)
	}
	return fmt.Sprintf("%#x", k.Number)
}

// DeviceProperties is the live property table of one device, supplied by
// the enumeration subsystem at match time. It is read-only for the
// duration of a match.
type DeviceProperties map[PropertyKey]Value

// SymbolTable maps the small integer indices assigned by the compiler to
// the strings they stand for. It is owned by the compiled artifact and
// borrowed read-only by the matcher.
type SymbolTable map[uint32]string

// Lookup resolves a symbol index, returning ErrMissingSymbol if the table
// has no entry for it.
func (t SymbolTable) Lookup(index uint32) (string, error) {
	s, ok := t[index]
	if !ok {
		return "", fmt.Errorf("%w: %d", ErrMissingSymbol, index)
	}
	return s, nil
}
