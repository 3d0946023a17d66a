package hexview

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"downlink/packet"
)

// Model shows the last received packet as hex, one row per block.
type Model struct {
	width  int
	height int
	dump   string
}

func New() Model {
	return Model{width: 80, height: 23}
}

func (m Model) Init() tea.Cmd { return nil }

// SetPacket replaces the shown packet.
func (m *Model) SetPacket(raw []byte) {
	var b strings.Builder
	_ = packet.Print(&b, raw) // strings.Builder does not fail
	m.dump = strings.TrimSuffix(b.String(), "\n")
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = msg.Width
		m.height = msg.Height
	}
	return m, nil
}

func (m Model) View() string {
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("63")).
		Width(m.width - 2).
		Height(m.height - 2)

	content := m.dump
	if content == "" {
		content = "no packet yet"
	}
	// no wrapping: cut long rows and drop rows past the bottom
	w, h := m.width-2, m.height-2
	lines := strings.Split(content, "\n")
	if h >= 0 && len(lines) > h {
		lines = lines[:h]
	}
	for i, l := range lines {
		if w >= 0 && len(l) > w {
			lines[i] = l[:w]
		}
	}
	return style.Render(strings.Join(lines, "\n"))
}
