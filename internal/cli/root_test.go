package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/phanxgames/arbor"
)

func TestSetVersion(t *testing.T) {
	SetVersion("1.0.0", "abc123", "2026-01-01")
	t.Cleanup(func() { SetVersion("", "", "") })

	if version != "1.0.0" {
		t.Errorf("version = %q, want %q", version, "1.0.0")
	}
	if commit != "abc123" {
		t.Errorf("commit = %q, want %q", commit, "abc123")
	}
	if date != "2026-01-01" {
		t.Errorf("date = %q, want %q", date, "2026-01-01")
	}
}

func TestRootCommands(t *testing.T) {
	root := newRootCmd()
	want := map[string]bool{"view": false, "inspect": false, "demo": false, "config": false}
	for _, c := range root.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("missing subcommand %q", name)
		}
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	arbor.SetLogger(nil)
	return out.String(), err
}

func TestConfigCommandPrintsDefaults(t *testing.T) {
	out, err := execute(t, "config")
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	for _, key := range []string{"[window]", "[treemap]", "[controls]", "zoom_normalization"} {
		if !strings.Contains(out, key) {
			t.Errorf("output missing %q:\n%s", key, out)
		}
	}
}

func TestConfigCommandValidate(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.toml")
	bad := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(good, []byte("[treemap]\noffset = 5\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(bad, []byte("[treemap]\noffset = 90\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "config", "--validate", good)
	if err != nil {
		t.Fatalf("validate good: %v", err)
	}
	if !strings.Contains(out, "is valid") {
		t.Errorf("output = %q, want success message", out)
	}
	if _, err := execute(t, "config", "--validate", bad); err == nil {
		t.Error("expected error for out-of-range offset")
	}
}

func TestInspectCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tree.yaml")
	data := "label: root\nchildren:\n  - label: a\n  - label: b\n    children:\n      - label: b1\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "inspect", path)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	for _, want := range []string{"Simple Tree Map", "nodes", "aa-quad", "fill-stroke",
		"outline (toggle, default on)", "offset (0..25, default 0)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestInspectUnknownLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tree.json")
	if err := os.WriteFile(path, []byte(`{"label": "root"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := execute(t, "inspect", "--layout", "radial", path); err == nil {
		t.Error("expected error for unknown layout")
	}
}

func TestFormatOptions(t *testing.T) {
	if got := formatOptions(nil); got != "none" {
		t.Errorf("formatOptions(nil) = %q", got)
	}
	got := formatOptions(arbor.NewTreemap(false, 3).Options())
	want := "outline (toggle, default on), offset (0..25, default 0)"
	if got != want {
		t.Errorf("formatOptions = %q, want %q", got, want)
	}
}
