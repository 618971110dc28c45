// Command miditest is a small MIDI diagnostic CLI, useful for checking
// port enumeration, hot-plug behavior, and basic note output against
// whatever synth or DAW GRUVBOK is configured to drive — no Launchpad
// or other controller-specific SysEx involved, since GRUVBOK targets
// plain MIDI output.
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"github.com/gruvbok/gruvbok/config"
	"github.com/gruvbok/gruvbok/hardware"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	switch os.Args[1] {
	case "list":
		listPorts()
	case "probe":
		probeConfiguredPort()
	case "note":
		testNote()
	case "poll":
		pollDevices()
	default:
		usage()
	}
}

func usage() {
	fmt.Println("miditest")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list   - list all MIDI ports")
	fmt.Println("  probe  - check whether the configured output port resolves")
	fmt.Println("  note   - send a test Note On/Off through the configured output")
	fmt.Println("  poll   - poll for device changes")
}

func listPorts() {
	fmt.Println("=== MIDI Input Ports ===")
	fmt.Println("(waiting up to 3 seconds...)")

	type result struct {
		ins  []drivers.In
		outs []drivers.Out
	}
	ch := make(chan result, 1)
	go func() {
		ins := gomidi.GetInPorts()
		outs := gomidi.GetOutPorts()
		ch <- result{ins: ins, outs: outs}
	}()

	select {
	case r := <-ch:
		for i, p := range r.ins {
			fmt.Printf("  %d: %s\n", i, p.String())
		}
		fmt.Println("\n=== MIDI Output Ports ===")
		for i, p := range r.outs {
			fmt.Printf("  %d: %s\n", i, p.String())
		}
	case <-time.After(3 * time.Second):
		fmt.Println("\nTIMEOUT! CoreMIDI is hung.")
		fmt.Println("Fix: sudo killall coreaudiod midiserver")
	}
}

// probeConfiguredPort reports whether ~/.config/gruvbok/config.json's
// midiOutputPortName currently resolves to a live output port.
func probeConfiguredPort() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("could not load config: %v\n", err)
		return
	}

	if cfg.MidiOutputPortName == "" {
		fmt.Println("no port configured; gruvbok will use the first available output")
	} else {
		fmt.Printf("configured port substring: %q\n", cfg.MidiOutputPortName)
	}

	sink, err := hardware.OpenDesktopSink(cfg.MidiOutputPortName)
	if err != nil {
		fmt.Printf("failed to open: %v\n", err)
		return
	}
	if name := sink.PortName(); name != "" {
		fmt.Printf("resolved to: %s\n", name)
	} else {
		fmt.Println("no matching output port found; gruvbok would run silent")
	}
}

func testNote() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("could not load config: %v\n", err)
		return
	}

	sink, err := hardware.OpenDesktopSink(cfg.MidiOutputPortName)
	if err != nil {
		fmt.Printf("failed to open output: %v\n", err)
		return
	}
	if sink.PortName() == "" {
		fmt.Println("no output port available")
		return
	}

	fmt.Printf("sending Note On/Off (channel 0, note 60) to %s\n", sink.PortName())
	sink.Send(gomidi.NoteOn(0, 60, 100))
	time.Sleep(300 * time.Millisecond)
	sink.Send(gomidi.NoteOff(0, 60))
	fmt.Println("done")
}

func pollDevices() {
	fmt.Println("Polling for device changes every 2 seconds. Ctrl+C to exit.")

	lastIn := ""
	lastOut := ""

	for {
		ins := gomidi.GetInPorts()
		outs := gomidi.GetOutPorts()

		var inNames, outNames []string
		for _, p := range ins {
			inNames = append(inNames, p.String())
		}
		for _, p := range outs {
			outNames = append(outNames, p.String())
		}

		currentIn := strings.Join(inNames, ",")
		currentOut := strings.Join(outNames, ",")

		if currentIn != lastIn || currentOut != lastOut {
			fmt.Printf("\n[%s] device change detected\n", time.Now().Format("15:04:05"))
			fmt.Printf("  inputs:  %v\n", inNames)
			fmt.Printf("  outputs: %v\n", outNames)
			lastIn = currentIn
			lastOut = currentOut
		}

		time.Sleep(2 * time.Second)
	}
}
