// Package logging provides debug logging utilities for warroom.
package logging

import "log"

// DebugEnabled controls whether Debug() produces output.
// Set from the debug flag in config.json, hot-reloaded by the watcher.
var DebugEnabled bool

// Debug logs a message only when DebugEnabled is true.
func Debug(format string, args ...any) {
	if DebugEnabled {
		log.Printf("DEBUG: "+format, args...)
	}
}
