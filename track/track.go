// Package track exports received GNSS fixes as an ESRI point shapefile
// that the monitor map, or any GIS tool, can load.
package track

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jonas-p/go-shp"

	"downlink/blocks"
	"downlink/internal/syncutil"
)

// ErrNoFix is returned for locations without a 2D or 3D fix.
var ErrNoFix = errors.New("track: location has no fix")

// Attribute columns, in file order.
const (
	FieldCallsign = iota
	FieldSeq
	FieldUTC
	FieldAltitude
	FieldSpeed
	FieldFix
	FieldSats
)

var fields = []shp.Field{
	shp.StringField("CALLSIGN", 6),
	shp.NumberField("SEQ", 4),
	shp.NumberField("UTC_MS", 8),
	shp.FloatField("ALT_M", 10, 2),
	shp.FloatField("SPEED_MS", 8, 2),
	shp.StringField("FIX", 7),
	shp.NumberField("SATS", 3),
}

// Writer appends points to a shapefile. It is safe for concurrent use.
type Writer struct {
	mu  syncutil.Mutex
	shp *shp.Writer
	n   int
}

// Create starts a new point shapefile. path must end in ".shp"; the
// .shx and .dbf files are written next to it.
func Create(path string) (*Writer, error) {
	if !strings.HasSuffix(strings.ToLower(path), ".shp") {
		return nil, fmt.Errorf("track: %s does not end in .shp", path)
	}
	w, err := shp.Create(path, shp.POINT)
	if err != nil {
		return nil, fmt.Errorf("track: create %s: %w", path, err)
	}
	if err := w.SetFields(fields); err != nil {
		w.Close()
		return nil, fmt.Errorf("track: %w", err)
	}
	return &Writer{shp: w}, nil
}

// Add writes one fix heard from callsign in packet seq.
func (t *Writer) Add(callsign string, seq uint16, loc blocks.GNSSLocation) error {
	if loc.Fix != blocks.Fix2D && loc.Fix != blocks.Fix3D {
		return ErrNoFix
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.shp == nil {
		return errors.New("track: writer closed")
	}

	row := int(t.shp.Write(&shp.Point{X: loc.Longitude, Y: loc.Latitude}))
	attrs := []any{
		FieldCallsign: callsign,
		FieldSeq:      int(seq),
		FieldUTC:      int(loc.UTCTime),
		FieldAltitude: loc.Altitude,
		FieldSpeed:    loc.Speed,
		FieldFix:      loc.Fix.String(),
		FieldSats:     int(loc.Satellites),
	}
	for i, v := range attrs {
		if err := t.shp.WriteAttribute(row, i, v); err != nil {
			return fmt.Errorf("track: row %d: %w", row, err)
		}
	}
	t.n++
	return nil
}

// Len returns the number of points written.
func (t *Writer) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.n
}

// Close finishes the file headers. Points are not readable by other tools
// until Close returns.
func (t *Writer) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.shp == nil {
		return nil
	}
	t.shp.Close()
	t.shp = nil
	return nil
}
