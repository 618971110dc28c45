// Package debug provides a lazily-enabled, package-level logger that
// writes timestamped, categorized lines to ~/.config/gruvbok/debug.log.
package debug

import (
	"fmt"
	"os"
	"sync"
	"time"
)

var (
	file    *os.File
	mu      sync.Mutex
	enabled bool
)

// Enable opens the debug log file, creating its directory if needed.
// Calling Enable twice is a no-op.
func Enable() error {
	mu.Lock()
	defer mu.Unlock()

	if enabled {
		return nil
	}

	homeDir, _ := os.UserHomeDir()
	logDir := homeDir + "/.config/gruvbok"

	if err := os.MkdirAll(logDir, 0755); err != nil {
		return err
	}

	f, err := os.OpenFile(logDir+"/debug.log", os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}

	file = f
	enabled = true

	ts := time.Now().Format("15:04:05.000")
	fmt.Fprintf(file, "[%s] %-10s %s\n", ts, "debug", "=== Debug logging started ===")
	file.Sync()

	return nil
}

// Disable closes the debug log file. Safe to call when not enabled.
func Disable() {
	mu.Lock()
	defer mu.Unlock()

	if file != nil {
		file.Close()
		file = nil
	}
	enabled = false
}

// Log writes a categorized, formatted line. A no-op when logging is
// disabled, so call sites never need to guard on Enabled().
func Log(category, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()

	if !enabled || file == nil {
		return
	}

	ts := time.Now().Format("15:04:05.000")
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(file, "[%s] %-10s %s\n", ts, category, msg)
	file.Sync()
}

// counters backs LogEvery's sampling.
var counters = make(map[string]int)

// LogEvery logs only every n-th call for a given category+format pair,
// for events that fire far faster than a human could read (the ~60Hz
// engine tick, MIDI clock pulses).
func LogEvery(n int, category, format string, args ...any) {
	mu.Lock()
	key := category + format
	counters[key]++
	count := counters[key]
	mu.Unlock()

	if count%n == 0 {
		Log(category, format+" (every %d, count=%d)", append(args, n, count)...)
	}
}

// Enabled reports whether logging is currently active.
func Enabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return enabled
}
