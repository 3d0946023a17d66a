package aprs

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Symbol tables.
const (
	PrimaryTable   = '/'
	AlternateTable = '\\'
)

// Rocket is the APRS symbol for a rocket, \O.
var Rocket = Symbol{Table: AlternateTable, Code: 'O'}

// Symbol selects the map icon of a position report.
type Symbol struct {
	Table byte
	Code  byte
}

// Position is an uncompressed position report without timestamp.
type Position struct {
	Lat, Lon float64 // decimal degrees
	Altitude float64 // metres, sent in feet; zero omits it
	Symbol   Symbol
	Comment  string
}

// Payload renders the report body, e.g. "!4339.00N\07923.00WO/A=000820 hi".
func (p Position) Payload() (string, error) {
	if math.IsNaN(p.Lat) || p.Lat < -90 || p.Lat > 90 {
		return "", fmt.Errorf("latitude %v out of range", p.Lat)
	}
	if math.IsNaN(p.Lon) || p.Lon < -180 || p.Lon > 180 {
		return "", fmt.Errorf("longitude %v out of range", p.Lon)
	}
	sym := p.Symbol
	if sym.Table == 0 {
		sym = Rocket
	}

	var b strings.Builder
	b.WriteByte('!')
	b.WriteString(formatCoord(p.Lat, 2, 'N', 'S'))
	b.WriteByte(sym.Table)
	b.WriteString(formatCoord(p.Lon, 3, 'E', 'W'))
	b.WriteByte(sym.Code)
	if p.Altitude != 0 {
		feet := int(math.Round(p.Altitude / 0.3048))
		if feet < 0 {
			// 6 characters including the sign
			fmt.Fprintf(&b, "/A=-%05d", -feet)
		} else {
			fmt.Fprintf(&b, "/A=%06d", feet)
		}
	}
	if p.Comment != "" {
		if p.Altitude != 0 {
			b.WriteByte(' ')
		}
		b.WriteString(p.Comment)
	}
	return b.String(), nil
}

// formatCoord writes DDMM.mm or DDDMM.mm with the hemisphere letter.
func formatCoord(deg float64, width int, pos, neg byte) string {
	hemi := pos
	if deg < 0 {
		hemi, deg = neg, -deg
	}
	hundredths := int(math.Round(deg * 60 * 100)) // minutes * 100
	d, m := hundredths/6000, hundredths%6000
	return fmt.Sprintf("%0*d%02d.%02d%c", width, d, m/100, m%100, hemi)
}

// normalPosRegex matches an uncompressed position after the data type
// identifier (and timestamp, if any).
// 1: lat_deg (dd)
// 2: lat_min (mm.mm)
// 3: lat_dir (N/S)
// 4: symbol_table (the separator, e.g., \ / S)
// 5: lon_deg (ddd)
// 6: lon_min (mm.mm)
// 7: lon_dir (E/W)
// 8: symbol (the icon)
// 9: body (comment)
var normalPosRegex = regexp.MustCompile(
	`^(\d{2})([0-9 ]{2}\.[0-9 ]{2})([NnSs])` + // Lat
		`([\/\\0-9A-Z])` + // Symbol Table (Separator)
		`(\d{3})([0-9 ]{2}\.[0-9 ]{2})([EeWw])` + // Lon
		`([\x21-\x7e])` + // Symbol
		`(.*)$`, // Comment
)

// parseCoord converts DDMM.hh plus hemisphere to decimal degrees.
// Ambiguity spaces are read as the middle of the range.
func parseCoord(degStr, minStr, dirStr, pos, neg string) (float64, error) {
	minStr = strings.ReplaceAll(minStr, " ", "5")

	deg, err := strconv.ParseFloat(degStr, 64)
	if err != nil {
		return 0, err
	}
	min, err := strconv.ParseFloat(minStr, 64)
	if err != nil {
		return 0, err
	}

	decDeg := deg + (min / 60.0)

	switch strings.ToUpper(dirStr) {
	case neg:
		decDeg = -decDeg
	case pos:
	default:
		return 0, fmt.Errorf("invalid hemisphere: %s", dirStr)
	}
	return decDeg, nil
}

// ParsePosition reads an uncompressed position payload starting with
// '!', '=', '/' or '@'. It returns the position with the comment; any
// altitude stays in the comment.
func ParsePosition(payload string) (Position, error) {
	if len(payload) < 20 {
		return Position{}, fmt.Errorf("packet too short")
	}

	body := payload[1:]
	switch payload[0] {
	case '!', '=':
	case '/', '@':
		// HHMMSSz, not interpreted
		if len(body) < 7 {
			return Position{}, fmt.Errorf("timestamped packet too short")
		}
		body = body[7:]
	default:
		return Position{}, fmt.Errorf("not a position report: %q", payload[0])
	}

	matches := normalPosRegex.FindStringSubmatch(body)
	if matches == nil {
		return Position{}, fmt.Errorf("invalid uncompressed position format")
	}

	lat, err := parseCoord(matches[1], matches[2], matches[3], "N", "S")
	if err != nil {
		return Position{}, fmt.Errorf("failed to parse latitude: %w", err)
	}
	lon, err := parseCoord(matches[5], matches[6], matches[7], "E", "W")
	if err != nil {
		return Position{}, fmt.Errorf("failed to parse longitude: %w", err)
	}

	return Position{
		Lat:     lat,
		Lon:     lon,
		Symbol:  Symbol{Table: matches[4][0], Code: matches[8][0]},
		Comment: matches[9],
	}, nil
}
