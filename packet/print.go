package packet

import (
	"fmt"
	"io"
	"strings"
)

// Hex renders b as space separated lowercase hex byte pairs.
func Hex(b []byte) string {
	var sb strings.Builder
	for i, c := range b {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%02x", c)
	}
	return sb.String()
}

// Print writes a finished packet as hex, one line for the header and one
// per block. Undecodable input is printed as a single raw line. It never
// changes buf.
func Print(w io.Writer, buf []byte) error {
	p, err := Decode(buf)
	if err != nil {
		_, werr := fmt.Fprintf(w, "raw     %s (%v)\n", Hex(buf), err)
		return werr
	}
	if _, err := fmt.Fprintf(w, "header  %s  %s #%d v%d %dB\n",
		Hex(p.Header[:]), p.Callsign(), p.Seq(), p.Header.Version(), p.Header.Length()); err != nil {
		return err
	}
	for i := range p.Blocks {
		b := &p.Blocks[i]
		if _, err := fmt.Fprintf(w, "block %-2d %s | %s  %s->%s %dB\n",
			i, Hex(b.Header[:]), Hex(b.Payload), b.Name(), b.Dest(), b.Len()); err != nil {
			return err
		}
	}
	return nil
}
