package aprs

import (
	"fmt"
	"strings"
)

// CalculatePasscode generates the APRS-IS passcode for a given callsign.
// The SSID, if any, is ignored.
func CalculatePasscode(callsign string) (int, error) {
	call, _, _ := strings.Cut(strings.ToUpper(callsign), "-")
	if len(call) > 6 || len(call) < 1 {
		return 0, fmt.Errorf("invalid callsign format for passcode: %s", callsign)
	}

	hash := 0x73e2
	// bytes alternate between the high and low half
	for i := 0; i < len(call); i++ {
		shift := 8
		if i%2 == 1 {
			shift = 0
		}
		hash ^= int(call[i]) << shift
	}
	return hash & 0x7fff, nil
}
