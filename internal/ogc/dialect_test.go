package ogc

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLookup_Aliases(t *testing.T) {
	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{"WMS", "WMS", true},
		{"wms", "WMS", true},
		{"OGC:WMS", "WMS", true},
		{"ogc:wfs", "WFS", true},
		{" WCS ", "WCS", true},
		{"WPS", "WPS", true},
		{"CSW", "CSW", true},
		{"SOS", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		d, ok := Lookup(tt.input)
		if ok != tt.ok {
			t.Errorf("Lookup(%q) ok = %v, want %v", tt.input, ok, tt.ok)
			continue
		}
		if ok && d.Name != tt.want {
			t.Errorf("Lookup(%q) = %q, want %q", tt.input, d.Name, tt.want)
		}
	}
}

func TestBuiltinDialects_Shape(t *testing.T) {
	for _, name := range Names() {
		d, ok := Lookup(name)
		if !ok {
			t.Fatalf("Lookup(%q) failed for registered name", name)
		}
		if len(d.Operations) == 0 {
			t.Errorf("dialect %s has no operations", name)
		}
		if d.Separator == "" {
			t.Errorf("dialect %s has no separator", name)
		}
	}
}

func TestRegisterFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dialects.yml")
	content := `dialects:
  - name: sos
    operations: [GetCapabilities, GetObservation, DescribeSensor]
    resource_params: [observedproperty]
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing dialect file: %v", err)
	}

	if err := RegisterFile(path); err != nil {
		t.Fatalf("RegisterFile: %v", err)
	}

	d, ok := Lookup("OGC:SOS")
	if !ok {
		t.Fatal("registered dialect not found")
	}
	if d.Name != "SOS" {
		t.Errorf("Name = %q, want SOS", d.Name)
	}
	if d.Separator != "," {
		t.Errorf("Separator = %q, want default comma", d.Separator)
	}
	if len(d.Operations) != 3 {
		t.Errorf("Operations = %v, want 3 entries", d.Operations)
	}
}

func TestRegisterFile_Invalid(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
	}{
		{"empty name", "dialects:\n  - operations: [GetThing]\n"},
		{"no operations", "dialects:\n  - name: ABC\n"},
		{"bad yaml", "dialects: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".yml")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatalf("writing file: %v", err)
			}
			if err := RegisterFile(path); err == nil {
				t.Error("RegisterFile succeeded, want error")
			}
		})
	}

	if err := RegisterFile(filepath.Join(dir, "missing.yml")); err == nil {
		t.Error("RegisterFile on missing file succeeded, want error")
	}
}
