// Package manifest handles device-properties TOML files: the typed
// key/value facts of one device, written down so tools can evaluate bind
// rules without a running system.
package manifest

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/driverbind/bindc/pkg/bytecode"
)

// Device describes one device and its property table.
type Device struct {
	Name       string     `toml:"name"`
	Properties []Property `toml:"properties"`

	// Path is the file the device was loaded from (set at load time).
	Path string `toml:"-"`
}

// Property is one typed key/value fact. Exactly one of Key/KeyName selects
// the key, and exactly one of Number/String/Bool/Enum selects the value.
type Property struct {
	Key     *uint64 `toml:"key"`
	KeyName *string `toml:"key-name"`

	Number *uint64 `toml:"number"`
	String *string `toml:"string"`
	Bool   *bool   `toml:"bool"`
	Enum   bool    `toml:"enum"`
}

// Load parses a device-properties file.
func Load(path string) (*Device, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var d Device
	if err := toml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	d.Path = path
	return &d, nil
}

// DeviceProperties converts the manifest into the property table the
// matcher consumes, validating that each entry declares exactly one key
// form and one value form and that no key repeats.
func (d *Device) DeviceProperties() (bytecode.DeviceProperties, error) {
	props := make(bytecode.DeviceProperties, len(d.Properties))
	for i, p := range d.Properties {
		key, err := p.propertyKey()
		if err != nil {
			return nil, fmt.Errorf("property %d: %w", i, err)
		}
		value, err := p.value()
		if err != nil {
			return nil, fmt.Errorf("property %d: %w", i, err)
		}
		if _, ok := props[key]; ok {
			return nil, fmt.Errorf("property %d: duplicate key %s", i, key)
		}
		props[key] = value
	}
	return props, nil
}

func (p Property) propertyKey() (bytecode.PropertyKey, error) {
	switch {
	case p.Key != nil && p.KeyName != nil:
		return bytecode.PropertyKey{}, fmt.Errorf("both key and key-name set")
	case p.Key != nil:
		return bytecode.NumberKey(*p.Key), nil
	case p.KeyName != nil:
		return bytecode.StringKey(*p.KeyName), nil
	default:
		return bytecode.PropertyKey{}, fmt.Errorf("neither key nor key-name set")
	}
}

func (p Property) value() (bytecode.Value, error) {
	set := 0
	if p.Number != nil {
		set++
	}
	if p.String != nil {
		set++
	}
	if p.Bool != nil {
		set++
	}
	if p.Enum {
		set++
	}
	if set != 1 {
		return bytecode.Value{}, fmt.Errorf("expected exactly one of number, string, bool, enum; got %d", set)
	}

	switch {
	case p.Number != nil:
		return bytecode.NumberValue(*p.Number), nil
	case p.String != nil:
		return bytecode.StringValue(*p.String), nil
	case p.Bool != nil:
		return bytecode.BoolValue(*p.Bool), nil
	default:
		return bytecode.EnumValue(), nil
	}
}
