package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"downlink/aprs"
	"downlink/assembler"
	"downlink/blocks"
	"downlink/config"
	"downlink/device/kiss"
	"downlink/metrics"
	"downlink/packet"
	"downlink/sensor"
)

func buildPacket(t *testing.T, seq uint16, bs ...packet.Block) []byte {
	t.Helper()
	n := 0
	for i := range bs {
		n += bs[i].Len()
	}
	h, err := packet.NewHeader("VA3INI", n, 1, packet.Rocket, seq)
	require.NoError(t, err)
	buf := h.Bytes()
	for i := range bs {
		buf = bs[i].AppendTo(buf)
	}
	return buf
}

func TestModel_Receive(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	conf := config.Default()
	conf.Station.Callsign = "VE3XYZ"
	conf.Store.Path = filepath.Join(dir, "packets.db")
	conf.Track.Path = filepath.Join(dir, "flight.shp")

	m := metrics.NewMetrics(prometheus.NewRegistry())
	rec, err := openRecorder(conf, m)
	require.NoError(t, err)
	defer rec.Close()

	temp, err := blocks.EncodeTemperature(packet.Multicast, 1000, 21.5)
	require.NoError(t, err)
	loc, err := blocks.EncodeGNSSLocation(packet.Multicast, blocks.GNSSLocation{
		Latitude: 43.65, Longitude: -79.38, Altitude: 250, Fix: blocks.Fix3D,
	})
	require.NoError(t, err)
	status, err := blocks.EncodeStatus(packet.Multicast, 1000, "armed")
	require.NoError(t, err)

	raw := buildPacket(t, 7, temp, loc, status)
	p, err := packet.Decode(raw)
	require.NoError(t, err)

	var tm tea.Model = initialModel(context.Background(), conf, nil, rec)
	tm, _ = tm.Update(tea.WindowSizeMsg{Width: 140, Height: 40})
	tm, _ = tm.Update(kiss.Received{Packet: p, Raw: raw, At: time.Now()})
	mod := tm.(model)

	view := mod.View()
	assert.Contains(t, view, "#0007 VA3INI 3")
	assert.Contains(t, view, "21.500 C")
	assert.Contains(t, view, "[status +1.000s] armed")
	assert.Contains(t, view, "in FN03")

	pos, ok := mod.mapModel.Latest("VA3INI")
	require.True(t, ok)
	assert.InDelta(t, 43.65, pos.Lat, 1e-6)

	tm, _ = tm.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	assert.Contains(t, tm.View(), "VA3INI #7 v1 76B")

	rows, err := rec.store.ListBySession(context.Background(), rec.store.Session())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, raw, rows[0].Raw)
	assert.Equal(t, 1, rec.track.Len())
	assert.InDelta(t, 1, testutil.ToFloat64(m.PacketsReceived), 0)
}

func TestModel_LinkClosed(t *testing.T) {
	t.Parallel()

	var tm tea.Model = initialModel(context.Background(), config.Default(), nil, nil)
	tm, _ = tm.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	tm, _ = tm.Update(linkClosedMsg{})
	view := tm.View()
	assert.Contains(t, view, "link closed")
	assert.Contains(t, view, "! connection closed")

	tm, _ = tm.Update(dropMsg{})
	assert.Contains(t, tm.View(), "drop 1")
}

func TestEncoderPipeline(t *testing.T) {
	t.Parallel()

	in := filepath.Join(t.TempDir(), "records.bin")
	f, err := os.Create(in)
	require.NoError(t, err)
	w := sensor.NewWriter(f)
	require.NoError(t, w.Write(sensor.Time(5000)))
	for i := 0; i < 25; i++ {
		require.NoError(t, w.Write(sensor.Temperature(float32(i))))
	}
	require.NoError(t, f.Close())

	conf := config.Default()
	conf.Station.Callsign = "VA3INI"
	conf.Interface.Type = "stdout"

	var out bytes.Buffer
	sink, closeSink, err := openSink(conf, &out)
	require.NoError(t, err)
	defer closeSink()

	a, err := assembler.New(assembler.Config{Callsign: "VA3INI", Version: 1, Source: packet.Rocket, Dest: packet.Multicast})
	require.NoError(t, err)

	r, err := openInput(in)
	require.NoError(t, err)
	defer r.Close()
	src := sensor.NewStreamSource(r, time.Second)
	defer src.Close()

	require.NoError(t, a.Run(context.Background(), src, sink))

	text := out.String()
	assert.Equal(t, 2, strings.Count(text, "header "))
	assert.Equal(t, 25, strings.Count(text, "temperature->multicast"))
	assert.Contains(t, text, "VA3INI #0 v1 252B")
	assert.Contains(t, text, "VA3INI #1 v1 72B")
}

func TestRun_UnknownMode(t *testing.T) {
	conf := config.Default()
	conf.Station.Callsign = "VA3INI"
	require.ErrorContains(t, run("replay", conf), `unknown mode "replay"`)
}

// fakeUploader collects frames instead of talking to APRS-IS.
type fakeUploader struct {
	frames []string
	closed bool
}

func (u *fakeUploader) Send(f aprs.Frame) error {
	u.frames = append(u.frames, f.String())
	return nil
}

func (u *fakeUploader) Close() error {
	u.closed = true
	return nil
}

func TestRecorder_Upload(t *testing.T) {
	t.Parallel()

	conf := config.Default()
	conf.Station.Callsign = "VE3XYZ"
	conf.IGate.Comment = "flight 2"
	rec, err := openRecorder(conf, nil)
	require.NoError(t, err)
	up := &fakeUploader{}
	rec.igate = up

	loc, err := blocks.EncodeGNSSLocation(packet.Multicast, blocks.GNSSLocation{
		Latitude: 43.65, Longitude: -79.38, Altitude: 250, Fix: blocks.Fix3D,
	})
	require.NoError(t, err)
	status, err := blocks.EncodeStatus(packet.Multicast, 1000, "armed")
	require.NoError(t, err)

	at := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	for i, off := range []time.Duration{0, 10 * time.Second, 40 * time.Second} {
		raw := buildPacket(t, uint16(i), loc)
		p, err := packet.Decode(raw)
		require.NoError(t, err)
		fix, err := blocks.DecodeGNSSLocation(p.Blocks[0])
		require.NoError(t, err)
		rx := kiss.Received{Packet: p, Raw: raw, At: at.Add(off)}
		require.NoError(t, rec.record(context.Background(), rx, []blocks.GNSSLocation{fix}, nil))
	}
	// the second fix falls inside the interval
	require.Len(t, up.frames, 2)
	assert.True(t, strings.HasPrefix(up.frames[0], "VA3INI>APZ001,qAR,VE3XYZ:!4339.00N\\07922.80WO/A=000820"))
	assert.True(t, strings.HasSuffix(up.frames[0], "flight 2 #0"))
	assert.True(t, strings.HasSuffix(up.frames[1], "flight 2 #2"))

	raw := buildPacket(t, 3, status)
	p, err := packet.Decode(raw)
	require.NoError(t, err)
	msg, err := blocks.DecodeMessage(p.Blocks[0])
	require.NoError(t, err)
	rx := kiss.Received{Packet: p, Raw: raw, At: at.Add(time.Minute)}
	require.NoError(t, rec.record(context.Background(), rx, nil, []blocks.Message{msg}))
	require.Len(t, up.frames, 3)
	assert.Equal(t, "VA3INI>APZ001,qAR,VE3XYZ:>armed", up.frames[2])

	require.NoError(t, rec.Close())
	assert.True(t, up.closed)
}
