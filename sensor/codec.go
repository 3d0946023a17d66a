package sensor

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// RecordSize is the size of one record on the acquisition stream: a tag
// byte, three bytes of padding and a 12-byte little-endian value union.
const RecordSize = 16

const valueOffset = 4

// ErrShortRecord is returned when a stream ends part way through a record.
var ErrShortRecord = errors.New("truncated sensor record")

var le = binary.LittleEndian

// Encode writes r in stream layout.
func Encode(r Record) [RecordSize]byte {
	var b [RecordSize]byte
	b[0] = byte(r.Tag)
	v := b[valueOffset:]
	switch r.Tag {
	case TagTime:
		le.PutUint32(v, r.Millis)
	case TagAngularVel, TagLinearAccelRel, TagLinearAccelAbs:
		le.PutUint32(v[0:], math.Float32bits(r.Vector.X))
		le.PutUint32(v[4:], math.Float32bits(r.Vector.Y))
		le.PutUint32(v[8:], math.Float32bits(r.Vector.Z))
	case TagCoords:
		le.PutUint32(v[0:], uint32(r.Lat))
		le.PutUint32(v[4:], uint32(r.Lon))
	case TagVoltage:
		le.PutUint32(v[0:], math.Float32bits(r.Value))
		v[4] = r.ID
	case TagFix:
		v[0] = r.ID
	default:
		le.PutUint32(v, math.Float32bits(r.Value))
	}
	return b
}

// Decode reads one record. Unknown tags are not an error here; the value
// is kept as a float so the caller can log it.
func Decode(b []byte) (Record, error) {
	if len(b) < RecordSize {
		return Record{}, fmt.Errorf("%w: have %d of %d bytes", ErrShortRecord, len(b), RecordSize)
	}
	r := Record{Tag: Tag(b[0])}
	v := b[valueOffset:RecordSize]
	switch r.Tag {
	case TagTime:
		r.Millis = le.Uint32(v)
	case TagAngularVel, TagLinearAccelRel, TagLinearAccelAbs:
		r.Vector = Vec3{
			X: math.Float32frombits(le.Uint32(v[0:])),
			Y: math.Float32frombits(le.Uint32(v[4:])),
			Z: math.Float32frombits(le.Uint32(v[8:])),
		}
	case TagCoords:
		r.Lat = int32(le.Uint32(v[0:]))
		r.Lon = int32(le.Uint32(v[4:]))
	case TagVoltage:
		r.Value = math.Float32frombits(le.Uint32(v[0:]))
		r.ID = v[4]
	case TagFix:
		r.ID = v[0]
	default:
		r.Value = math.Float32frombits(le.Uint32(v))
	}
	return r, nil
}

// Reader decodes records from a byte stream.
type Reader struct {
	r   io.Reader
	buf [RecordSize]byte
}

func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// Read returns the next record. It returns io.EOF at a clean record
// boundary and ErrShortRecord when the stream stops mid record.
func (rd *Reader) Read() (Record, error) {
	_, err := io.ReadFull(rd.r, rd.buf[:])
	switch {
	case errors.Is(err, io.ErrUnexpectedEOF):
		return Record{}, ErrShortRecord
	case err != nil:
		return Record{}, err
	}
	return Decode(rd.buf[:])
}

// Writer encodes records onto a byte stream.
type Writer struct {
	w io.Writer
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

func (wr *Writer) Write(r Record) error {
	b := Encode(r)
	_, err := wr.w.Write(b[:])
	return err
}
