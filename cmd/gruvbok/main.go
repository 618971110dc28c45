// Command gruvbok is GRUVBOK's desktop entry point: it wires the Engine
// to a real MIDI output port and drives it from a minimal Bubble Tea
// status view, a thin stand-in for the GUI/hardware shell that is
// itself out of scope for this repository.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gruvbok/gruvbok/config"
	"github.com/gruvbok/gruvbok/debug"
	"github.com/gruvbok/gruvbok/engine"
	"github.com/gruvbok/gruvbok/hardware"
)

func main() {
	port := flag.String("port", "", "MIDI output port name substring (empty: first available)")
	scriptDir := flag.String("scripts", "", "directory of NN_description.lua script slots")
	demo := flag.Bool("demo", false, "load the built-in drum-backbeat demo content")
	debugLog := flag.Bool("debug", false, "enable ~/.config/gruvbok/debug.log")
	flag.Parse()

	if *debugLog {
		if err := debug.Enable(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not enable debug log: %v\n", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}
	if *port != "" {
		cfg.MidiOutputPortName = *port
	}

	sink, err := hardware.OpenDesktopSink(cfg.MidiOutputPortName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open MIDI output: %v\n", err)
		os.Exit(1)
	}

	eng := engine.New(nil, sink, cfg)

	if *scriptDir != "" {
		loaded, err := eng.LoadScripts(*scriptDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: script load failed: %v\n", err)
		} else {
			fmt.Printf("loaded %d script slot(s) from %s\n", loaded, *scriptDir)
		}
	}
	if *demo {
		eng.LoadDemoContent()
	}

	fmt.Println("gruvbok")
	if name := sink.PortName(); name != "" {
		fmt.Printf("MIDI output: %s\n", name)
	} else {
		fmt.Println("MIDI output: none (running silent)")
	}

	eng.Start(time.Now())

	p := tea.NewProgram(newModel(eng))
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
