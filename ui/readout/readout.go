package readout

import (
	"fmt"
	"math/bits"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"downlink/blocks"
	"downlink/packet"
)

// Value is a decoded block value, as returned by blocks.Decode.
type Value struct {
	Value any
}

// Model shows the latest reading of each kind.
type Model struct {
	width  int
	height int
	latest map[string]string
}

// New creates a new readout model
func New() Model {
	return Model{
		width:  30,
		height: 12,
		latest: make(map[string]string),
	}
}

func (m Model) Init() tea.Cmd { return nil }

// Format renders a decoded block value as a label and text. It returns
// ok false for values the readout does not show, such as messages.
func Format(v any) (label, text string, ok bool) {
	switch v := v.(type) {
	case blocks.Temperature:
		return "temp", fmt.Sprintf("%.3f C", v.Celsius()), true
	case blocks.Pressure:
		return "press", fmt.Sprintf("%.3f kPa", float64(v.Pascals)/1000), true
	case blocks.Humidity:
		return "humid", fmt.Sprintf("%.2f %%", v.Percent()), true
	case blocks.Altitude:
		if v.SeaLevel {
			return "alt msl", fmt.Sprintf("%.2f m", v.Metres()), true
		}
		return "alt", fmt.Sprintf("%.2f m", v.Metres()), true
	case blocks.Acceleration:
		x, y, z := v.MetresPerSecond2()
		return "accel", fmt.Sprintf("%.2f %.2f %.2f", x, y, z), true
	case blocks.AngularVelocity:
		x, y, z := v.DegreesPerSecond()
		return "gyro", fmt.Sprintf("%.1f %.1f %.1f", x, y, z), true
	case blocks.GNSSLocation:
		return "gnss", fmt.Sprintf("%.5f %.5f %s", v.Latitude, v.Longitude, v.Fix), true
	case blocks.GNSSMetadata:
		used := bits.OnesCount32(v.GPSInUse) + bits.OnesCount32(v.GLONASSInUse)
		return "sats", fmt.Sprintf("%d used / %d seen", used, len(v.Satellites)), true
	case blocks.PowerInfo:
		return fmt.Sprintf("rail %d", v.Rail), fmt.Sprintf("%.3f V", v.Volts()), true
	case blocks.SignalReport:
		return "signal", fmt.Sprintf("snr %d rssi %d", v.SNR, v.RSSI), true
	case blocks.TelemetryRequest:
		names := make([]string, len(v.Subtypes))
		for i, s := range v.Subtypes {
			names[i] = packet.SubtypeName(packet.TypeData, s)
		}
		return "request", strings.Join(names, ","), true
	case blocks.Empty:
		return v.Type.String(), packet.SubtypeName(v.Type, v.Subtype), true
	}
	return "", "", false
}

// Lines returns the readout rows sorted by label.
func (m Model) Lines() []string {
	labels := make([]string, 0, len(m.latest))
	for l := range m.latest {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	lines := make([]string, len(labels))
	for i, l := range labels {
		lines[i] = fmt.Sprintf("%-8s %s", l, m.latest[l])
	}
	return lines
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case Value:
		if label, text, ok := Format(msg.Value); ok {
			m.latest[label] = text
		}
	}
	return m, nil
}

func (m Model) View() string {
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("63")).
		Width(m.width - 2).
		Height(m.height - 2).
		Padding(0, 1)

	title := lipgloss.NewStyle().Bold(true).Underline(true).Render("Telemetry")
	rows := m.height - 3 // borders and title
	lines := m.Lines()
	if rows < 0 {
		rows = 0
	}
	if len(lines) > rows {
		lines = lines[:rows]
	}
	w := m.width - 4
	for i, l := range lines {
		if w > 0 && len(l) > w {
			lines[i] = l[:w]
		}
	}
	return style.Render(strings.Join(append([]string{title}, lines...), "\n"))
}
