// Package config loads and saves GRUVBOK's persistent settings —
// MIDI output routing, default tempo, autosave location, and per-mode
// General MIDI program numbers — from ~/.config/gruvbok/config.json.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// numModes mirrors event.NumModes; duplicated as a literal to avoid a
// config->event import for a single constant.
const numModes = 15

// Config is GRUVBOK's on-disk settings.
type Config struct {
	MidiOutputPortName string `json:"midiOutputPortName,omitempty"`
	DefaultTempoBPM     int    `json:"defaultTempoBPM,omitempty"`
	AutosavePath        string `json:"autosavePath,omitempty"`

	// ProgramMap holds the General MIDI program number GRUVBOK sends on
	// mode N's channel each time that mode's script is (re)initialized
	// (on Start and after a debounced tempo change), one entry per
	// mode (index 0 unused; mode 0 emits no notes). -1 means "don't send
	// a program change, leave the receiving synth's default."
	ProgramMap [numModes]int `json:"programMap,omitempty"`
}

// DefaultProgramMap is GRUVBOK's out-of-the-box GM voice assignment,
// one General MIDI program per playable mode (1-14). Mode 10 is left at
// program 0 on channel 9, the conventional GM drum channel.
var DefaultProgramMap = [numModes]int{
	0:  -1, // mode 0: meta-sequencer, no voice
	1:  48, // String Ensemble 1
	2:  33, // Electric Bass (finger)
	3:  0,  // Acoustic Grand Piano
	4:  81, // Lead 2 (sawtooth)
	5:  4,  // Electric Piano 1
	6:  56, // Trumpet
	7:  65, // Alto Sax
	8:  24, // Acoustic Guitar (nylon)
	9:  89, // Pad 2 (warm)
	10: 0,  // drum channel, program not meaningful
	11: 99, // FX 4 (atmosphere)
	12: 52, // Choir Aahs
	13: 90, // Pad 3 (polysynth)
	14: 98, // FX 3 (crystal)
}

// Default returns a Config with sensible defaults: 120 BPM, the default
// GM program map, and an autosave path under the config directory.
func Default() *Config {
	dir, _ := Dir()
	return &Config{
		DefaultTempoBPM: 120,
		AutosavePath:    filepath.Join(dir, "autosave.bin"),
		ProgramMap:      DefaultProgramMap,
	}
}

// Dir returns ~/.config/gruvbok.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "gruvbok"), nil
}

// Path returns ~/.config/gruvbok/config.json.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, falling back to Default() if no file
// exists yet.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes c to ~/.config/gruvbok/config.json, creating the directory
// if necessary.
func (c *Config) Save() error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	path, err := Path()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// ProgramFor returns the GM program number for mode, or -1 if mode is
// out of range or has none assigned.
func (c *Config) ProgramFor(mode int) int {
	if mode < 0 || mode >= numModes {
		return -1
	}
	return c.ProgramMap[mode]
}
