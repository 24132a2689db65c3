// Package config holds the process-wide compiler settings and the
// hostcall.yaml options file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Options represents the top-level hostcall.yaml configuration.
type Options struct {
	// UncheckedMath emits long->int argument narrowing without an overflow check.
	UncheckedMath bool `yaml:"unchecked_math"`

	// Trace configures the inline cache dispatch tracer.
	Trace TraceOptions `yaml:"trace"`
}

// TraceOptions configures dispatch tracing.
type TraceOptions struct {
	// Enabled turns on cache_miss and cache_not_found events.
	Enabled bool `yaml:"enabled"`

	// Hits also reports cache_hit events. Only meaningful with Enabled.
	Hits bool `yaml:"hits,omitempty"`

	// Output is "stderr", "stdout" or a file path. Defaults to stderr.
	Output string `yaml:"output,omitempty"`
}

// DefaultOptions returns the options used when no file is present.
func DefaultOptions() *Options {
	o := &Options{}
	o.setDefaults()
	return o
}

// LoadOptions reads and parses a hostcall.yaml file.
func LoadOptions(path string) (*Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return ParseOptions(data, path)
}

// ParseOptions parses hostcall.yaml content from bytes.
// The path argument is used only for error messages.
func ParseOptions(data []byte, path string) (*Options, error) {
	var opts Options
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := opts.validate(path); err != nil {
		return nil, err
	}
	opts.setDefaults()
	return &opts, nil
}

// FindOptions searches for hostcall.yaml starting from dir and walking up
// to parent directories. Returns "" and a nil error when nothing is found.
func FindOptions(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}

	for {
		for _, name := range ConfigFileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// Apply installs the process-wide settings carried by the options.
func (o *Options) Apply() {
	SetUncheckedMath(o.UncheckedMath)
}

func (o *Options) validate(path string) error {
	if o.Trace.Hits && !o.Trace.Enabled {
		return fmt.Errorf("%s: trace.hits requires trace.enabled", path)
	}
	if out := o.Trace.Output; out != "" && out != TraceStderr && out != TraceStdout {
		if filepath.Base(out) == "." || filepath.Base(out) == string(filepath.Separator) {
			return fmt.Errorf("%s: trace.output %q is not a file", path, out)
		}
	}
	return nil
}

func (o *Options) setDefaults() {
	if o.Trace.Output == "" {
		o.Trace.Output = TraceStderr
	}
}
