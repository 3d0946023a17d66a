// Package aprs formats the APRS reports the igate uploads for heard
// packets: positions for GNSS fixes and status reports for status text.
package aprs

import (
	"fmt"
	"strings"
)

// Frame is one packet in TNC2 text form, SRC>DEST,PATH:payload.
type Frame struct {
	Src     string
	Dest    string
	Path    []string
	Payload string
}

func (f Frame) String() string {
	var b strings.Builder
	b.WriteString(f.Src)
	b.WriteByte('>')
	b.WriteString(f.Dest)
	for _, p := range f.Path {
		b.WriteByte(',')
		b.WriteString(p)
	}
	b.WriteByte(':')
	b.WriteString(f.Payload)
	return b.String()
}

// ParseFrame reads a TNC2 line as sent by APRS-IS servers.
func ParseFrame(line string) (Frame, error) {
	line = strings.TrimRight(line, "\r\n")
	header, payload, ok := strings.Cut(line, ":")
	if !ok {
		return Frame{}, fmt.Errorf("no payload separator in %q", line)
	}
	src, rest, ok := strings.Cut(header, ">")
	if !ok || src == "" {
		return Frame{}, fmt.Errorf("no source in %q", header)
	}
	parts := strings.Split(rest, ",")
	if parts[0] == "" {
		return Frame{}, fmt.Errorf("no destination in %q", header)
	}
	f := Frame{Src: src, Dest: parts[0], Payload: payload}
	if len(parts) > 1 {
		f.Path = parts[1:]
	}
	return f, nil
}
