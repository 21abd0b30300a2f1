package ui

import (
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
)

// Run drives playback from the terminal until the clip ends or the user
// quits. It reports whether the clip played to the end.
func Run(playback Playback, info ClipInfo, in io.Reader, out io.Writer) (bool, error) {
	p := tea.NewProgram(NewModel(playback, info), tea.WithInput(in), tea.WithOutput(out))

	final, err := p.Run()
	if err != nil {
		return false, fmt.Errorf("failed to run TUI: %w", err)
	}
	m, ok := final.(Model)
	return ok && m.Finished(), nil
}
