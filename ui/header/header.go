package header

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// LinkMsg reports a change in the link state.
type LinkMsg struct {
	Up     bool
	Detail string // e.g. the device, or why it went down
}

// Model holds the header's state
type Model struct {
	width    int
	callsign string
	link     LinkMsg
}

// New creates a new header model
func New(callsign string) Model {
	return Model{
		width:    80, // Default width, will be updated
		callsign: callsign,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width // Just store the width
	case LinkMsg:
		m.link = msg
	}
	return m, nil
}

func (m Model) View() string {
	base := lipgloss.NewStyle().
		Bold(true).
		Background(lipgloss.Color("63")). // Purple background (matches map border)
		Foreground(lipgloss.Color("255"))

	left := base.Render(" Downlink " + m.callsign)

	state, color := "DOWN", lipgloss.Color("9")
	if m.link.Up {
		state, color = "UP", lipgloss.Color("10")
	}
	right := base.Render(m.link.Detail+" ") + base.Foreground(color).Render(state+" ")

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, left, base.Render(strings.Repeat(" ", gap)), right)
}
