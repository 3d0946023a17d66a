package footer

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Model holds the footer's state
type Model struct {
	width int
	base  string // base layer file, or empty

	zoom     float64
	follow   bool
	last     string
	lastAt   time.Time
	locator  string
	received int
	dropped  int
}

// New creates a new footer model
func New(base string) Model {
	return Model{width: 80, base: base, zoom: 1}
}

func (m Model) Init() tea.Cmd { return nil }

func (m *Model) SetZoom(zoom float64)  { m.zoom = zoom }
func (m *Model) SetFollow(follow bool) { m.follow = follow }
func (m *Model) AddDropped()           { m.dropped++ }

// SetLocator shows the grid locator of the newest fix.
func (m *Model) SetLocator(grid string) { m.locator = grid }

func (m *Model) SetLastPacket(callsign string, seq uint16, at time.Time) {
	m.last = fmt.Sprintf("%s #%d", callsign, seq)
	m.lastAt = at
	m.received++
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = msg.Width
	}
	return m, nil
}

// Status is the footer text without styling.
func (m Model) Status() string {
	last := "none"
	if m.last != "" {
		last = m.last + " at " + m.lastAt.Format("15:04:05")
	}
	if m.locator != "" {
		last += " in " + m.locator
	}
	follow := ""
	if m.follow {
		follow = " follow"
	}
	base := m.base
	if base == "" {
		base = "no base map"
	}
	return fmt.Sprintf(" last %s | rx %d drop %d | zoom %.1fx%s | %s | q quit x hex f follow",
		last, m.received, m.dropped, m.zoom, follow, base)
}

func (m Model) View() string {
	style := lipgloss.NewStyle().
		Background(lipgloss.Color("236")).
		Foreground(lipgloss.Color("250")).
		Width(m.width).
		MaxWidth(m.width)
	return style.Render(m.Status())
}
