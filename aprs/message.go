package aprs

import (
	"fmt"
	"strings"
)

// MaxStatusLen is the longest status text, without the '>' identifier.
const MaxStatusLen = 62

// StatusPayload renders a status report. Text is cut to MaxStatusLen and
// may not contain '|' or '~', which APRS reserves.
func StatusPayload(text string) (string, error) {
	if strings.ContainsAny(text, "|~") {
		return "", fmt.Errorf("status text contains '|' or '~'")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("status text is blank")
	}
	if len(text) > MaxStatusLen {
		text = text[:MaxStatusLen]
	}
	return ">" + text, nil
}
