package mapview

import (
	"fmt"
	"math"
	"strings"
)

// Maidenhead field, square and subsquare sizes in degrees of lon, lat.
const (
	fieldLon, fieldLat         = 20.0, 10.0
	squareLon, squareLat       = 2.0, 1.0
	subsquareLon, subsquareLat = 2.0 / 24, 1.0 / 24
)

// GridSquareToLatLon returns the longitude and latitude of the centre of a
// 4 or 6 character Maidenhead locator such as "FN03" or "FN03gp".
func GridSquareToLatLon(grid string) (lon, lat float64, err error) {
	g := strings.ToUpper(grid)
	if len(g) != 4 && len(g) != 6 {
		return 0, 0, fmt.Errorf("gridsquare %q must be 4 or 6 characters", grid)
	}
	if !between(g[0], 'A', 'R') || !between(g[1], 'A', 'R') ||
		!between(g[2], '0', '9') || !between(g[3], '0', '9') {
		return 0, 0, fmt.Errorf("invalid gridsquare %q", grid)
	}

	lon = float64(g[0]-'A')*fieldLon - 180 + float64(g[2]-'0')*squareLon
	lat = float64(g[1]-'A')*fieldLat - 90 + float64(g[3]-'0')*squareLat
	if len(g) == 4 {
		return lon + squareLon/2, lat + squareLat/2, nil
	}

	if !between(g[4], 'A', 'X') || !between(g[5], 'A', 'X') {
		return 0, 0, fmt.Errorf("invalid gridsquare %q", grid)
	}
	lon += float64(g[4]-'A')*subsquareLon + subsquareLon/2
	lat += float64(g[5]-'A')*subsquareLat + subsquareLat/2
	return lon, lat, nil
}

// Locator returns the 6 character Maidenhead locator containing lon, lat,
// with the subsquare in lower case, e.g. "FN03gp".
func Locator(lon, lat float64) string {
	// keep the east and north edges inside the last field
	lon = math.Min(math.Max(lon+180, 0), 360-1e-9)
	lat = math.Min(math.Max(lat+90, 0), 180-1e-9)

	b := []byte{
		'A' + byte(lon/fieldLon),
		'A' + byte(lat/fieldLat),
		'0' + byte(math.Mod(lon, fieldLon)/squareLon),
		'0' + byte(math.Mod(lat, fieldLat)/squareLat),
		'a' + byte(math.Mod(lon, squareLon)/subsquareLon),
		'a' + byte(math.Mod(lat, squareLat)/subsquareLat),
	}
	return string(b)
}

func between(c, lo, hi byte) bool { return c >= lo && c <= hi }
