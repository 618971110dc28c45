// Package hardware wires GRUVBOK's scheduler and LED state machine to a
// real MIDI output port via gitlab.com/gomidi/midi/v2, the same driver
// stack the teacher uses for its Launchpad controller.
package hardware

import (
	"fmt"
	"strings"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"github.com/gruvbok/gruvbok/debug"
)

// Sink is what engine's scheduler and LED controller send through:
// raw MIDI bytes plus the single status LED.
type Sink interface {
	Send(data []byte)
	SetLED(on bool)
}

// DesktopSink drives an actual MIDI output port. Its LED has no physical
// backing on a desktop, so SetLED just tracks and logs the last state —
// a console front-end can read GetLED to render it.
type DesktopSink struct {
	portName string
	send     func(msg gomidi.Message) error
	ledOn    bool
}

// OpenDesktopSink opens the first MIDI output port whose name contains
// portNameSubstring (case-insensitive), or the first available output
// port if portNameSubstring is empty. If no output port exists at all,
// it returns a sink that only logs, matching the teacher's tolerance for
// missing controllers rather than refusing to start.
func OpenDesktopSink(portNameSubstring string) (*DesktopSink, error) {
	outPorts := gomidi.GetOutPorts()

	var chosen drivers.Out
	for _, p := range outPorts {
		if portNameSubstring == "" || strings.Contains(strings.ToLower(p.String()), strings.ToLower(portNameSubstring)) {
			chosen = p
			break
		}
	}

	sink := &DesktopSink{}
	if chosen == nil {
		debug.Log("hardware", "no MIDI output port found matching %q; running silent", portNameSubstring)
		return sink, nil
	}

	send, err := gomidi.SendTo(chosen)
	if err != nil {
		return nil, fmt.Errorf("open MIDI output %q: %w", chosen.String(), err)
	}

	sink.portName = chosen.String()
	sink.send = send
	debug.Log("hardware", "opened MIDI output %q", sink.portName)
	return sink, nil
}

// PortName returns the opened output port's name, or "" if running silent.
func (d *DesktopSink) PortName() string {
	return d.portName
}

// Send transmits raw MIDI bytes (already channel-baked by the caller) to
// the output port. A no-op when running silent.
func (d *DesktopSink) Send(data []byte) {
	if d.send == nil {
		return
	}
	if err := d.send(gomidi.Message(data)); err != nil {
		debug.Log("hardware", "send error: %v", err)
	}
}

// SetLED records the LED's on/off state. Desktop has no LED to drive, so
// this only updates GetLED's return value and logs the transition.
func (d *DesktopSink) SetLED(on bool) {
	if on == d.ledOn {
		return
	}
	d.ledOn = on
	debug.LogEvery(1, "led", "led=%v", on)
}

// GetLED reports the last state SetLED was called with.
func (d *DesktopSink) GetLED() bool {
	return d.ledOn
}

// ListOutputPorts returns the names of every available MIDI output port,
// for a console front-end's port picker.
func ListOutputPorts() []string {
	ports := gomidi.GetOutPorts()
	names := make([]string, len(ports))
	for i, p := range ports {
		names[i] = p.String()
	}
	return names
}
