package kiss

import (
	"bufio"
	"bytes"
	"io"
)

// KISS special bytes.
const (
	FEND  byte = 0xC0 // frame end
	FESC  byte = 0xDB // frame escape
	TFEND byte = 0xDC // transposed frame end
	TFESC byte = 0xDD // transposed frame escape
)

// CmdData is the command nibble of a data frame.
const CmdData byte = 0x00

// AppendFrame appends a KISS data frame for port carrying data to dst.
func AppendFrame(dst []byte, port byte, data []byte) []byte {
	dst = append(dst, FEND, port<<4|CmdData)
	for _, b := range data {
		switch b {
		case FEND:
			dst = append(dst, FESC, TFEND)
		case FESC:
			dst = append(dst, FESC, TFESC)
		default:
			dst = append(dst, b)
		}
	}
	return append(dst, FEND)
}

// Frame is one unescaped KISS frame.
type Frame struct {
	Port    byte
	Command byte
	Data    []byte
}

// Decoder reads KISS frames from a byte stream.
type Decoder struct {
	r    *bufio.Reader
	buf  bytes.Buffer
	open bool // the last frame's closing FEND also opens the next one
}

func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReader(r)}
}

// ReadFrame returns the next non-empty frame. Bytes before the first FEND
// are discarded, and a FEND shared by two frames ends one and starts the
// next. An unknown escape is passed through as is.
func (d *Decoder) ReadFrame() (Frame, error) {
	d.buf.Reset()
	inFrame := d.open
	for {
		b, err := d.r.ReadByte()
		if err != nil {
			return Frame{}, err
		}
		switch {
		case b == FEND:
			if inFrame && d.buf.Len() > 0 {
				d.open = true
				raw := d.buf.Bytes()
				return Frame{
					Port:    raw[0] >> 4,
					Command: raw[0] & 0x0F,
					Data:    append([]byte(nil), raw[1:]...),
				}, nil
			}
			inFrame = true
		case !inFrame:
		case b == FESC:
			b, err = d.r.ReadByte()
			if err != nil {
				return Frame{}, err
			}
			switch b {
			case TFEND:
				d.buf.WriteByte(FEND)
			case TFESC:
				d.buf.WriteByte(FESC)
			default:
				d.buf.WriteByte(b)
			}
		default:
			d.buf.WriteByte(b)
		}
	}
}
