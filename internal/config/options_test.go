package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseOptions_Valid(t *testing.T) {
	yaml := `
unchecked_math: true
trace:
  enabled: true
  hits: true
  output: stdout
`
	opts, err := ParseOptions([]byte(yaml), "test.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !opts.UncheckedMath {
		t.Error("expected unchecked_math to be true")
	}
	if !opts.Trace.Enabled || !opts.Trace.Hits {
		t.Errorf("trace = %+v, want enabled with hits", opts.Trace)
	}
	if opts.Trace.Output != TraceStdout {
		t.Errorf("output = %q, want %q", opts.Trace.Output, TraceStdout)
	}
}

func TestParseOptions_Defaults(t *testing.T) {
	opts, err := ParseOptions([]byte("trace:\n  enabled: true\n"), "test.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.UncheckedMath {
		t.Error("unchecked_math should default to false")
	}
	if opts.Trace.Output != TraceStderr {
		t.Errorf("output = %q, want %q", opts.Trace.Output, TraceStderr)
	}

	def := DefaultOptions()
	if def.Trace.Enabled || def.Trace.Output != TraceStderr {
		t.Errorf("DefaultOptions() = %+v", def)
	}
}

func TestParseOptions_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"hits without enabled", "trace:\n  hits: true\n", "trace.hits requires trace.enabled"},
		{"directory output", "trace:\n  enabled: true\n  output: /\n", "is not a file"},
		{"bad yaml", "unchecked_math: [\n", "parsing test.yaml"},
		{"wrong type", "unchecked_math: maybe\n", "parsing test.yaml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseOptions([]byte(tt.yaml), "test.yaml")
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should contain %q", err, tt.want)
			}
		})
	}
}

func TestLoadOptions_MissingFile(t *testing.T) {
	_, err := LoadOptions(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestFindOptions_WalksUp(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(root, ConfigFileName)
	if err := os.WriteFile(want, []byte("unchecked_math: true\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := FindOptions(nested)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != want {
		t.Errorf("FindOptions = %q, want %q", got, want)
	}

	opts, err := LoadOptions(got)
	if err != nil {
		t.Fatalf("LoadOptions: %v", err)
	}
	if !opts.UncheckedMath {
		t.Error("expected unchecked_math from file")
	}
}

func TestApply_SetsUncheckedMath(t *testing.T) {
	prev := UncheckedMath()
	defer SetUncheckedMath(prev)

	(&Options{UncheckedMath: true}).Apply()
	if !UncheckedMath() {
		t.Error("Apply did not enable unchecked math")
	}
	if old := SetUncheckedMath(false); !old {
		t.Error("SetUncheckedMath should return the previous value")
	}
}
