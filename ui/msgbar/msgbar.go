package msgbar

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"downlink/blocks"
	"downlink/packet"
)

const (
	barHeight = 7 // Total height of the component (including border)
)

// Text is a message received in a debug, status or startup block.
type Text struct {
	Callsign string
	Message  blocks.Message
}

// Notice is a local line, such as a warning from the monitor itself.
type Notice string

// Model holds the message bar's state
type Model struct {
	width    int
	height   int
	messages []string // newest first
}

// New creates a new message bar model
func New() Model {
	return Model{
		width:    80,
		height:   barHeight,
		messages: make([]string, 0),
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

// Format renders a received message, e.g. "VA3INI [status +12.345s] armed".
func Format(t Text) string {
	kind := strings.TrimSuffix(packet.SubtypeName(packet.TypeData, t.Message.Subtype), "_message")
	secs := time.Duration(t.Message.Time) * time.Millisecond
	return fmt.Sprintf("%s [%s +%.3fs] %s", t.Callsign, kind, secs.Seconds(), t.Message.Text)
}

func (m *Model) push(line string) {
	// Add to the top
	m.messages = append([]string{line}, m.messages...)

	// barHeight - 2 (for borders)
	maxMessages := barHeight - 2
	if len(m.messages) > maxMessages {
		m.messages = m.messages[:maxMessages]
	}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		// Height is fixed, but we store it for consistency
		m.height = barHeight

	case Text:
		m.push(Format(msg))

	case Notice:
		m.push("! " + string(msg))
	}
	return m, nil
}

func (m Model) View() string {
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("63")). // Purple
		Width(m.width - 2).                     // -2 for border
		Height(m.height - 2).                   // -2 for border
		Padding(0, 1)

	var b strings.Builder

	contentWidth := m.width - 2 - 2 // -border, -padding
	if contentWidth < 0 {
		contentWidth = 0
	}

	numMessages := m.height - 2
	if numMessages < 0 {
		numMessages = 0
	}

	for i := 0; i < numMessages; i++ {
		if i < len(m.messages) {
			// oldest at the top, in arrival order
			msg := m.messages[len(m.messages)-1-i]
			if len(msg) > contentWidth {
				msg = msg[:contentWidth]
			}
			b.WriteString(msg)
		}
		if i < numMessages-1 {
			b.WriteRune('\n') // Add newline unless it's the last line
		}
	}

	return style.Render(b.String())
}
