package sidebar

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"downlink/packet"
)

const title = "Last Packets"

// Model lists recently heard packets, newest first, with a marker where
// a station's sequence numbers skipped.
type Model struct {
	width  int
	height int
	lines  []string
	seqs   map[string]uint16
}

func New() Model {
	return Model{width: 20, height: 24, seqs: make(map[string]uint16)}
}

func (m Model) Init() tea.Cmd { return nil }

// Entry formats one sidebar line for a received packet.
func Entry(at time.Time, callsign string, seq uint16, blocks int) string {
	return fmt.Sprintf("%s #%04d %s %d", at.Format("15:04:05"), seq, callsign, blocks)
}

// Missed returns how many packets were lost between prev and seq.
// Sequence numbers wrap at packet.MaxSeq.
func Missed(prev, seq uint16) int {
	return (int(seq) - int(prev) - 1 + packet.MaxSeq + 1) % (packet.MaxSeq + 1)
}

// AddPacket records a packet heard from callsign.
func (m *Model) AddPacket(at time.Time, callsign string, seq uint16, blocks int) {
	if prev, ok := m.seqs[callsign]; ok && prev != seq {
		if n := Missed(prev, seq); n > 0 {
			m.push(fmt.Sprintf("  %d missed from %s", n, callsign))
		}
	}
	m.seqs[callsign] = seq
	m.push(Entry(at, callsign, seq, blocks))
}

func (m *Model) push(line string) {
	m.lines = append([]string{line}, m.lines...)
	m.trim()
}

// rows is the space left inside the border under the title.
func (m Model) rows() int {
	return max(m.height-3, 1)
}

func (m *Model) trim() {
	if n := m.rows(); len(m.lines) > n {
		m.lines = m.lines[:n]
	}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.WindowSizeMsg); ok {
		m.width, m.height = msg.Width, msg.Height
		m.trim()
	}
	return m, nil
}

func (m Model) View() string {
	inner := m.width - 4 // border and padding
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("63")).
		Width(m.width - 2).
		Height(m.height - 2).
		Padding(0, 1)
	heading := lipgloss.NewStyle().Bold(true).Underline(true).Width(inner).Render(title)
	if m.height-3 <= 0 {
		return style.Render(heading)
	}

	rows := make([]string, 0, len(m.lines)+1)
	rows = append(rows, heading)
	for _, l := range m.lines {
		if len(l) > inner {
			l = l[:max(inner, 0)]
		}
		rows = append(rows, l)
	}
	return style.Render(strings.Join(rows, "\n"))
}
