package bytecode

import "fmt"

// deviceMatcher evaluates one decoded program against one device. It
// borrows the program's symbol table and the property table read-only; the
// only state it owns is the byte cursor.
type deviceMatcher struct {
	properties DeviceProperties
	symbols    SymbolTable
	r          byteReader
}

// MatchBytecode evaluates a decoded program against a device property
// table. It returns true if the device matches the bind rules, false if it
// does not, and an error if the program is malformed.
//
// Evaluation is a single linear pass: conditions are decoded and checked
// in order, the first failing condition or an unconditional abort ends the
// match, and a stream that runs out without failing is a match. Jump and
// landing-pad opcodes are skipped without interpreting their targets; that
// mirrors the behavior existing compiled programs were built against, so
// following jumps here would change their match results.
func MatchBytecode(program *DecodedProgram, properties DeviceProperties) (bool, error) {
	m := deviceMatcher{
		properties: properties,
		symbols:    program.SymbolTable,
		r:          byteReader{code: program.Instructions},
	}
	return m.matchBind()
}

func (m *deviceMatcher) matchBind() (bool, error) {
	for !m.r.done() {
		b, err := m.r.nextU8()
		if err != nil {
			return false, err
		}

		op := RawOp(b)
		switch op {
		case RawOpEqualCondition, RawOpInequalCondition:
			ok, err := m.evaluateCondition(op)
			if err != nil {
				return false, err
			}
			if !ok {
				return false, nil
			}
		case RawOpAbort:
			return false, nil
		case RawOpUnconditionalJump, RawOpJumpIfEqual, RawOpJumpIfNotEqual, RawOpJumpLandPad:
			// Skipped, not followed.
		default:
			return false, fmt.Errorf("%w: 0x%02x", ErrInvalidOp, b)
		}
	}
	return true, nil
}

// evaluateCondition decodes a condition instruction's two operands and
// reports whether the condition holds for the device.
func (m *deviceMatcher) evaluateCondition(op RawOp) (bool, error) {
	keyValue, err := m.readValue()
	if err != nil {
		return false, err
	}
	key, err := propertyKeyOf(keyValue)
	if err != nil {
		return false, err
	}

	bindValue, err := m.readValue()
	if err != nil {
		return false, err
	}

	deviceValue, ok := m.properties[key]
	if !ok {
		// An absent property satisfies an inequality and fails an
		// equality.
		return op == RawOpInequalCondition, nil
	}
	return compareValues(op, deviceValue, bindValue)
}

// readValue materializes the next [type:u8][value:u32] operand pair.
func (m *deviceMatcher) readValue() (Value, error) {
	tag, err := m.r.nextU8()
	if err != nil {
		return Value{}, err
	}
	raw, err := m.r.nextU32()
	if err != nil {
		return Value{}, err
	}

	switch RawValueType(tag) {
	case RawValueNumber:
		return NumberValue(uint64(raw)), nil
	case RawValueKey:
		// The declared type on a key is a placeholder; only the resolved
		// string takes part in property lookup.
		name, err := m.symbols.Lookup(raw)
		if err != nil {
			return Value{}, err
		}
		return KeyValue(name, ValueTypeStr), nil
	case RawValueString:
		s, err := m.symbols.Lookup(raw)
		if err != nil {
			return Value{}, err
		}
		return StringValue(s), nil
	case RawValueBool:
		switch raw {
		case 0:
			return BoolValue(false), nil
		case 1:
			return BoolValue(true), nil
		default:
			return Value{}, fmt.Errorf("%w: %d", ErrInvalidBoolValue, raw)
		}
	case RawValueEnum:
		return EnumValue(), nil
	default:
		return Value{}, fmt.Errorf("%w: 0x%02x", ErrInvalidValueType, tag)
	}
}

// propertyKeyOf projects a materialized key operand onto a property key.
func propertyKeyOf(v Value) (PropertyKey, error) {
	switch v.Kind {
	case KindNumber:
		return NumberKey(v.Number), nil
	case KindString, KindKey:
		return StringKey(v.Str), nil
	default:
		return PropertyKey{}, fmt.Errorf("%w: %s", ErrUnsupportedKeyType, v.Kind)
	}
}

// compareValues applies the condition to a stored device value and a
// decoded bind value. The kinds must match exactly; there is no coercion.
func compareValues(op RawOp, deviceValue, bindValue Value) (bool, error) {
	if deviceValue.Kind != bindValue.Kind {
		return false, fmt.Errorf("%w: %s against %s",
			ErrMismatchValueTypes, deviceValue.Kind, bindValue.Kind)
	}

	equal := deviceValue.equals(bindValue)
	switch op {
	case RawOpEqualCondition:
		return equal, nil
	case RawOpInequalCondition:
		return !equal, nil
	default:
		return false, fmt.Errorf("%w: 0x%02x is not a condition", ErrInvalidOp, byte(op))
	}
}
