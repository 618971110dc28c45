package main

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gruvbok/gruvbok/engine"
)

const tickInterval = 16 * time.Millisecond // ~60Hz, matching the engine's expected host tick rate

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	ledOnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Bold(true)
	ledOffStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("235"))
)

type tickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// model is a minimal Bubble Tea status view: it drives Engine.Update at
// roughly 60Hz and renders tempo, cursor position, and LED state. It is
// a stand-in for the GUI/hardware front-end, which is out of scope.
type model struct {
	eng  *engine.Engine
	quit bool
}

func newModel(eng *engine.Engine) model {
	return model{eng: eng}
}

func (m model) Init() tea.Cmd {
	return tickCmd()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.eng.Update(time.Time(msg))
		return m, tickCmd()

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.eng.Stop()
			m.quit = true
			return m, tea.Quit
		case "p":
			if m.eng.IsPlaying() {
				m.eng.Stop()
			} else {
				m.eng.Start(time.Now())
			}
		case "+", "=":
			m.eng.SetTempo(m.eng.Tempo()+1, time.Now())
		case "-", "_":
			m.eng.SetTempo(m.eng.Tempo()-1, time.Now())
		case "d":
			m.eng.LoadDemoContent()
		}
	}
	return m, nil
}

func (m model) View() string {
	if m.quit {
		return ""
	}

	play := "stopped"
	if m.eng.IsPlaying() {
		play = "playing"
	}
	dirty := ""
	if m.eng.IsDirty() {
		dirty = " *"
	}

	header := headerStyle.Render(fmt.Sprintf("gruvbok  %s%s", play, dirty))

	pattern, on := m.eng.LEDState()
	led := ledOffStyle.Render("●")
	if on {
		led = ledOnStyle.Render("●")
	}

	status := fmt.Sprintf(
		"tempo %3d bpm   mode %2d   pattern %2d   track %d   step %2d   song-step %2d   led %s %s",
		m.eng.Tempo(), m.eng.CurrentMode(), m.eng.CurrentPattern(), m.eng.CurrentTrack(),
		m.eng.CurrentStep(), m.eng.SongModeStep(), led, pattern,
	)

	help := dimStyle.Render("p play/stop   +/- tempo   d load demo   q quit")

	return header + "\n" + status + "\n\n" + help + "\n"
}
