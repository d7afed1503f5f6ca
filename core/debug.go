package core

import "fmt"

// DebugWriter is a function type for writing internal diagnostics.
type DebugWriter func(string)

// debugPrintln is the global debug sink. No-op by default so the pulse
// loop pays nothing when debugging is off; binaries redirect it to stderr
// or a log file.
var debugPrintln DebugWriter

// SetDebugWriter sets the diagnostics sink. Pass nil to disable.
func SetDebugWriter(w DebugWriter) {
	debugPrintln = w
}

func debugf(format string, args ...any) {
	if debugPrintln != nil {
		debugPrintln(fmt.Sprintf(format, args...))
	}
}
