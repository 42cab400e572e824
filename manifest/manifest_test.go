package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/driverbind/bindc/pkg/bytecode"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "device.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing manifest: %v", err)
	}
	return path
}

func TestLoadDevice(t *testing.T) {
	path := writeManifest(t, `
name = "acme-codec"

[[properties]]
key = 1
number = 2000

[[properties]]
key-name = "acme.BIND_PROTOCOL"
string = "i2c"

[[properties]]
key = 9
bool = true

[[properties]]
key-name = "acme.CODEC_FAMILY"
enum = true
`)

	d, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if d.Name != "acme-codec" {
		t.Errorf("Expected name %q, got %q", "acme-codec", d.Name)
	}
	if d.Path != path {
		t.Errorf("Expected path %q, got %q", path, d.Path)
	}

	props, err := d.DeviceProperties()
	if err != nil {
		t.Fatalf("DeviceProperties failed: %v", err)
	}
	if len(props) != 4 {
		t.Fatalf("Expected 4 properties, got %d", len(props))
	}
	if v := props[bytecode.NumberKey(1)]; v != bytecode.NumberValue(2000) {
		t.Errorf("Property 1: got %v", v)
	}
	if v := props[bytecode.StringKey("acme.BIND_PROTOCOL")]; v != bytecode.StringValue("i2c") {
		t.Errorf("BIND_PROTOCOL: got %v", v)
	}
	if v := props[bytecode.NumberKey(9)]; v != bytecode.BoolValue(true) {
		t.Errorf("Property 9: got %v", v)
	}
	if v := props[bytecode.StringKey("acme.CODEC_FAMILY")]; v != bytecode.EnumValue() {
		t.Errorf("CODEC_FAMILY: got %v", v)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestPropertyValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			"no key",
			"[[properties]]\nnumber = 1\n",
			"neither key nor key-name",
		},
		{
			"both keys",
			"[[properties]]\nkey = 1\nkey-name = \"x\"\nnumber = 1\n",
			"both key and key-name",
		},
		{
			"no value",
			"[[properties]]\nkey = 1\n",
			"exactly one of",
		},
		{
			"two values",
			"[[properties]]\nkey = 1\nnumber = 1\nbool = true\n",
			"exactly one of",
		},
		{
			"duplicate key",
			"[[properties]]\nkey = 1\nnumber = 1\n\n[[properties]]\nkey = 1\nnumber = 2\n",
			"duplicate key",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Load(writeManifest(t, tt.content))
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			_, err = d.DeviceProperties()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}
