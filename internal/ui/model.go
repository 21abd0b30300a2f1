// Package ui is the terminal front end of the play command: a fixed 16 ms
// loop that redraws playback progress and maps keys to playback controls.
package ui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// TickInterval is the period of the redraw loop
const TickInterval = 16 * time.Millisecond

// VolumeStep is applied per up/down key press
const VolumeStep = 0.05

// Playback is the clip being played, as seen by the UI
type Playback interface {
	Progress() (pos, length int64)
	Volume() float64
	SetVolume(v float64)
	// TogglePause pauses or resumes and reports whether playback is now paused
	TogglePause() bool
	Restart()
	Finished() bool
	Stop()
}

// ClipInfo describes the clip for the header lines
type ClipInfo struct {
	Path     string
	Format   string
	Duration time.Duration
}

type tickMsg time.Time

// Model represents the TUI state
type Model struct {
	playback Playback
	info     ClipInfo

	pos, length int64
	volume      float64
	paused      bool
	finished    bool

	width int
}

func NewModel(playback Playback, info ClipInfo) Model {
	m := Model{playback: playback, info: info}
	m.refresh()
	return m
}

func tick() tea.Cmd {
	return tea.Tick(TickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init starts the redraw loop
func (m Model) Init() tea.Cmd {
	return tick()
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case tickMsg:
		m.refresh()
		if m.finished {
			return m, tea.Quit
		}
		return m, tick()
	}
	return m, nil
}

func (m *Model) refresh() {
	m.pos, m.length = m.playback.Progress()
	m.volume = m.playback.Volume()
	m.finished = !m.paused && m.playback.Finished()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.playback.Stop()
		return m, tea.Quit
	case "up":
		m.playback.SetVolume(min(m.volume+VolumeStep, 1))
	case "down":
		m.playback.SetVolume(max(m.volume-VolumeStep, 0))
	case " ":
		m.paused = m.playback.TogglePause()
	case "r":
		m.playback.Restart()
		m.paused = false
	}
	m.refresh()
	return m, nil
}

// Finished reports whether the loop ended because the clip ran out
func (m Model) Finished() bool {
	return m.finished
}

// View renders the TUI
func (m Model) View() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", filepath.Base(m.info.Path))
	fmt.Fprintf(&b, "%s, %s\n\n", m.info.Format, formatDuration(m.info.Duration))

	state := "Playing"
	switch {
	case m.finished:
		state = "Finished"
	case m.paused:
		state = "Paused "
	}

	elapsed := time.Duration(0)
	if m.length > 0 {
		elapsed = time.Duration(float64(m.info.Duration) * float64(m.pos) / float64(m.length))
	}

	fmt.Fprintf(&b, "%s [%s] %s\n", state, renderBar(m.pos, m.length, m.barWidth()), formatDuration(elapsed))
	fmt.Fprintf(&b, "Volume  [%s] %3d%%\n\n", renderBar(int64(m.volume*100+0.5), 100, 10), int(m.volume*100+0.5))
	b.WriteString("↑/↓:Volume  space:Pause  r:Restart  q:Quit\n")

	return b.String()
}

func (m Model) barWidth() int {
	if m.width <= 0 {
		return 40
	}
	return max(10, min(60, m.width-24))
}

func renderBar(value, total int64, width int) string {
	filled := 0
	if total > 0 {
		filled = int(value * int64(width) / total)
	}
	filled = max(0, min(width, filled))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	return fmt.Sprintf("%d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}
