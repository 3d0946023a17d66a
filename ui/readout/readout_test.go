package readout

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"

	"downlink/blocks"
	"downlink/packet"
)

func TestFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in    any
		label string
		text  string
	}{
		{blocks.Temperature{Millidegrees: -2000}, "temp", "-2.000 C"},
		{blocks.Pressure{Pascals: 101325}, "press", "101.325 kPa"},
		{blocks.Humidity{Units: 455000}, "humid", "45.50 %"},
		{blocks.Altitude{Millimetres: 1500}, "alt", "1.50 m"},
		{blocks.Altitude{Millimetres: 1500, SeaLevel: true}, "alt msl", "1.50 m"},
		{blocks.PowerInfo{Rail: 2, Millivolts: 3700}, "rail 2", "3.700 V"},
		{blocks.GNSSMetadata{GPSInUse: 0b1011, Satellites: make([]blocks.Satellite, 5)}, "sats", "3 used / 5 seen"},
		{blocks.SignalReport{SNR: -5, RSSI: -90}, "signal", "snr -5 rssi -90"},
		{blocks.TelemetryRequest{Subtypes: []packet.Subtype{packet.DataTemperature, packet.DataHumidity}}, "request", "temperature,humidity"},
		{blocks.Empty{Type: packet.TypeCommand, Subtype: packet.CmdDeployChute}, "command", "deploy_chute"},
	}
	for _, tt := range tests {
		label, text, ok := Format(tt.in)
		assert.True(t, ok, tt.label)
		assert.Equal(t, tt.label, label)
		assert.Equal(t, tt.text, text)
	}

	_, _, ok := Format(blocks.Message{Text: "hi"})
	assert.False(t, ok)
}

func TestModel_Latest(t *testing.T) {
	t.Parallel()

	m := New()
	m, _ = m.Update(tea.WindowSizeMsg{Width: 30, Height: 8})
	m, _ = m.Update(Value{blocks.Temperature{Millidegrees: 1000}})
	m, _ = m.Update(Value{blocks.Temperature{Millidegrees: 2000}})
	m, _ = m.Update(Value{blocks.Altitude{Millimetres: 5000}})
	m, _ = m.Update(Value{blocks.Message{Text: "ignored"}})

	assert.Equal(t, []string{"alt      5.00 m", "temp     2.000 C"}, m.Lines())
	assert.Contains(t, m.View(), "Telemetry")
}
