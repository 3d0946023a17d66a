package sidebar

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestEntry(t *testing.T) {
	t.Parallel()

	at := time.Date(2024, 6, 1, 14, 3, 9, 0, time.UTC)
	assert.Equal(t, "14:03:09 #0042 VA3INI 7", Entry(at, "VA3INI", 42, 7))
}

func TestMissed(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, Missed(4, 5))
	assert.Equal(t, 2, Missed(4, 7))
	assert.Equal(t, 1, Missed(4094, 0))
	assert.Equal(t, 4095, Missed(5, 5))
}

func TestModel_AddPacket(t *testing.T) {
	t.Parallel()

	at := time.Date(2024, 6, 1, 14, 3, 9, 0, time.UTC)
	m := New()
	m, _ = m.Update(tea.WindowSizeMsg{Width: 30, Height: 10})
	m.AddPacket(at, "VA3INI", 4095, 2)
	m.AddPacket(at, "VA3INI", 0, 2)
	m.AddPacket(at, "VE3XYZ", 9, 1)
	m.AddPacket(at, "VA3INI", 3, 4)
	m.AddPacket(at, "VA3INI", 3, 4) // repeat

	assert.Equal(t, []string{
		"14:03:09 #0003 VA3INI 4",
		"14:03:09 #0003 VA3INI 4",
		"  2 missed from VA3INI",
		"14:03:09 #0009 VE3XYZ 1",
		"14:03:09 #0000 VA3INI 2",
		"14:03:09 #4095 VA3INI 2",
	}, m.lines)
}

func TestModel_TrimsToHeight(t *testing.T) {
	t.Parallel()

	at := time.Date(2024, 6, 1, 14, 3, 9, 0, time.UTC)
	m := New()
	m, _ = m.Update(tea.WindowSizeMsg{Width: 30, Height: 6})
	for seq := uint16(1); seq <= 5; seq++ {
		m.AddPacket(at, "VA3INI", seq, 1)
	}
	// 6 rows less two borders and the title
	assert.Len(t, m.lines, 3)

	view := m.View()
	assert.Contains(t, view, title)
	assert.Contains(t, view, "#0005")
	assert.NotContains(t, view, "#0002")
	assert.Len(t, strings.Split(view, "\n"), 6)

	m, _ = m.Update(tea.WindowSizeMsg{Width: 30, Height: 4})
	assert.Equal(t, []string{"14:03:09 #0005 VA3INI 1"}, m.lines)
}
