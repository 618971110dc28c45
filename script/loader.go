package script

import (
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/gruvbok/gruvbok/debug"
)

const numModes = 15

// fileNamePattern matches "NN_description.lua": two decimal digits, an
// underscore, any description, and a .lua extension. The two digits pick
// the mode slot; the description picks which registered Behavior to load.
var fileNamePattern = regexp.MustCompile(`^(\d{2})_(.+)\.lua$`)

// Loader holds up to 15 Contexts, one per mode slot, discovered from a
// directory of NN_description.lua files.
type Loader struct {
	contexts [numModes]*Context
}

// NewLoader returns an empty Loader with no slots populated.
func NewLoader() *Loader {
	return &Loader{}
}

// LoadFromDirectory scans dir for NN_description.lua files, constructs a
// Context per matching slot, loads its Behavior, assigns its MIDI
// channel, and calls init with tempo plus the slot-derived defaults.
// Returns the number of slots that ended up valid. A slot whose Behavior
// name isn't registered is still installed (mirroring a parse failure in
// a real script loader) but left invalid.
func (l *Loader) LoadFromDirectory(dir string, tempo int) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}

	loaded := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		m := fileNamePattern.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		slot, err := strconv.Atoi(m[1])
		if err != nil || slot < 0 || slot >= numModes {
			continue
		}
		behaviorName := strings.ToLower(m[2])

		ctx := NewContext()
		ctx.Load(behaviorName)

		channel := uint8(0)
		if slot > 0 {
			channel = uint8(slot - 1)
		}
		ctx.SetChannel(channel)

		ctx.CallInit(InitParams{
			Tempo:       tempo,
			ModeNumber:  slot,
			MidiChannel: channel,
		})

		l.contexts[slot] = ctx
		if ctx.Valid() {
			loaded++
		} else {
			debug.Log("script", "slot %d (%s) failed to load: behavior not registered", slot, behaviorName)
		}
	}

	return loaded, nil
}

// Install directly binds ctx to mode, replacing any prior context in
// that slot — the programmatic counterpart to a file claiming a slot
// via LoadFromDirectory, used when a caller constructs a Context itself
// (e.g. installing a built-in demo behavior) rather than discovering it
// from a directory scan.
func (l *Loader) Install(mode int, ctx *Context) {
	if mode < 0 || mode >= numModes {
		return
	}
	l.contexts[mode] = ctx
}

// ContextFor returns the Context bound to mode, or nil if mode is out of
// range or no file claimed that slot.
func (l *Loader) ContextFor(mode int) *Context {
	if mode < 0 || mode >= numModes {
		return nil
	}
	return l.contexts[mode]
}

// ReinitAll re-runs init(ctx) on every populated slot with the
// parameters paramsFor returns for that slot.
func (l *Loader) ReinitAll(paramsFor func(mode int) InitParams) {
	for slot, ctx := range l.contexts {
		if ctx == nil {
			continue
		}
		ctx.CallInit(paramsFor(slot))
	}
}
