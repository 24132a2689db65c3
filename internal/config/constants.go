package config

import "sync/atomic"

// ConfigFileName is the options file looked up by FindOptions.
const ConfigFileName = "hostcall.yaml"

// ConfigFileNames are all recognized options file names, in lookup order.
var ConfigFileNames = []string{"hostcall.yaml", "hostcall.yml"}

// Names given to compiler-generated symbols
const (
	ByRefTempPrefix = "_byRef_temp"
	ScriptUnitName  = "<unit>"
	ThisName        = "this"
)

// Trace output targets
const (
	TraceStderr = "stderr"
	TraceStdout = "stdout"
)

// uncheckedMath selects unchecked long->int narrowing at call boundaries.
// It is read when code is emitted, not when it runs.
var uncheckedMath atomic.Bool

// UncheckedMath reports whether narrowing conversions are emitted unchecked.
func UncheckedMath() bool {
	return uncheckedMath.Load()
}

// SetUncheckedMath sets the process-wide unchecked math mode and returns the previous value.
func SetUncheckedMath(on bool) bool {
	return uncheckedMath.Swap(on)
}
