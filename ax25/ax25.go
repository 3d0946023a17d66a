// Package ax25 wraps packets in AX.25 UI frames so a standard TNC can
// carry them with callsign addressing.
package ax25

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	controlUI   byte = 0x03
	pidNoLayer3 byte = 0xF0

	addrLen     = 7
	callLen     = 6
	minFrameLen = 2*addrLen + 2 // dest + src + control + PID
	maxDigis    = 8
)

var (
	ErrShortFrame = errors.New("ax25: frame too short")
	ErrNotUI      = errors.New("ax25: not a UI frame")
	ErrAddress    = errors.New("ax25: invalid address")
)

// Address is a callsign with an optional SSID.
type Address struct {
	Call string
	SSID uint8
}

// ParseAddress reads "CALL" or "CALL-SSID".
func ParseAddress(s string) (Address, error) {
	call, ssid, found := strings.Cut(strings.ToUpper(strings.TrimSpace(s)), "-")
	if call == "" || len(call) > callLen {
		return Address{}, fmt.Errorf("%w: %q", ErrAddress, s)
	}
	for _, c := range call {
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return Address{}, fmt.Errorf("%w: %q", ErrAddress, s)
		}
	}
	a := Address{Call: call}
	if found {
		n, err := strconv.ParseUint(ssid, 10, 8)
		if err != nil || n > 15 {
			return Address{}, fmt.Errorf("%w: bad SSID in %q", ErrAddress, s)
		}
		a.SSID = uint8(n)
	}
	return a, nil
}

func (a Address) String() string {
	if a.SSID > 0 {
		return fmt.Sprintf("%s-%d", a.Call, a.SSID)
	}
	return a.Call
}

// encode writes the 7-byte shifted address field. last marks the final
// address of the header.
func (a Address) encode(dst []byte, last bool) {
	for i := 0; i < callLen; i++ {
		c := byte(' ')
		if i < len(a.Call) {
			c = a.Call[i]
		}
		dst[i] = c << 1
	}
	dst[6] = 0x60 | (a.SSID&0x0F)<<1
	if last {
		dst[6] |= 0x01
	}
}

func decodeAddress(b []byte) (Address, error) {
	var sb strings.Builder
	for i := 0; i < callLen; i++ {
		c := b[i] >> 1
		if c == ' ' {
			continue
		}
		if c < '!' || c > '~' {
			return Address{}, fmt.Errorf("%w: byte 0x%02X", ErrAddress, b[i])
		}
		sb.WriteByte(c)
	}
	if sb.Len() == 0 {
		return Address{}, fmt.Errorf("%w: empty callsign", ErrAddress)
	}
	return Address{Call: sb.String(), SSID: (b[6] >> 1) & 0x0F}, nil
}

// Frame is a decoded UI frame.
type Frame struct {
	Dest, Src Address
	Path      []Address
	Info      []byte
}

// Encode builds a UI frame (no FCS; the TNC adds it).
func Encode(dest, src Address, path []Address, info []byte) ([]byte, error) {
	if len(path) > maxDigis {
		return nil, fmt.Errorf("%w: %d digipeaters", ErrAddress, len(path))
	}
	addrs := append([]Address{dest, src}, path...)
	out := make([]byte, len(addrs)*addrLen, len(addrs)*addrLen+2+len(info))
	for i, a := range addrs {
		if len(a.Call) == 0 || len(a.Call) > callLen || a.SSID > 15 {
			return nil, fmt.Errorf("%w: %q", ErrAddress, a.String())
		}
		a.encode(out[i*addrLen:], i == len(addrs)-1)
	}
	out = append(out, controlUI, pidNoLayer3)
	return append(out, info...), nil
}

// Decode parses a UI frame. Info aliases frame.
func Decode(frame []byte) (*Frame, error) {
	if len(frame) < minFrameLen {
		return nil, ErrShortFrame
	}
	// the address field ends at the first byte with its low bit set
	end := -1
	for i := addrLen - 1; i < len(frame) && i < addrLen*(2+maxDigis); i += addrLen {
		if frame[i]&0x01 == 0x01 {
			end = i + 1
			break
		}
	}
	if end < 2*addrLen || end+2 > len(frame) {
		return nil, fmt.Errorf("%w: unterminated address field", ErrShortFrame)
	}
	if frame[end] != controlUI {
		return nil, fmt.Errorf("%w: control 0x%02X", ErrNotUI, frame[end])
	}

	f := &Frame{Info: frame[end+2:]}
	for i := 0; i < end; i += addrLen {
		a, err := decodeAddress(frame[i : i+addrLen])
		if err != nil {
			return nil, err
		}
		switch i {
		case 0:
			f.Dest = a
		case addrLen:
			f.Src = a
		default:
			f.Path = append(f.Path, a)
		}
	}
	return f, nil
}
