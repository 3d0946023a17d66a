// Package assembler packs blocks into size-bounded packets and runs the
// reporting cycle that turns sensor records into finished packets.
package assembler

import (
	"fmt"

	"downlink/blocks"
	"downlink/packet"
)

// maxBlocks is the most blocks a packet can hold: header-only blocks
// filling the whole body.
const maxBlocks = packet.MaxPacketBody / packet.BlockHeaderSize

// Config describes the packets an Assembler produces.
type Config struct {
	Callsign string
	Version  uint8
	Source   packet.Address // packet source, normally packet.Rocket
	Dest     packet.Address // destination of built blocks
	FirstSeq uint16

	// ConservativeFill ends a cycle as soon as a largest-size block might
	// no longer fit, instead of filling to the last byte.
	ConservativeFill bool

	// Observer is told about cycle events. Nil means none.
	Observer Observer
}

// Assembler owns one packet under construction. It is not safe for
// concurrent use; run one Assembler per producer.
type Assembler struct {
	cfg Config
	obs Observer

	buf     [packet.MaxPacketSize]byte
	hdr     packet.Header
	n       int // bytes of buf in use, header included
	offsets []int
	seq     uint16

	// state carried between records and cycles
	now   uint32
	fix   blocks.FixType
	carry *packet.Block
}

// New validates cfg by encoding a first header and returns an Assembler
// ready for its first cycle.
func New(cfg Config) (*Assembler, error) {
	if cfg.FirstSeq > packet.MaxSeq {
		return nil, &packet.RangeError{Field: "sequence", Value: cfg.FirstSeq, Reason: "does not fit in 12 bits"}
	}
	if !cfg.Dest.Valid() {
		return nil, &packet.RangeError{Field: "destination", Value: cfg.Dest, Reason: "unknown device address"}
	}
	a := &Assembler{
		cfg:     cfg,
		obs:     cfg.Observer,
		seq:     cfg.FirstSeq,
		offsets: make([]int, 0, maxBlocks),
	}
	if a.obs == nil {
		a.obs = nopObserver{}
	}
	if err := a.Reset(); err != nil {
		return nil, fmt.Errorf("packet header: %w", err)
	}
	return a, nil
}

// Reset drops every block and starts a header-only packet carrying the
// current sequence number.
func (a *Assembler) Reset() error {
	h, err := packet.NewHeader(a.cfg.Callsign, 0, a.cfg.Version, a.cfg.Source, a.seq)
	if err != nil {
		return err
	}
	a.hdr = h
	a.n = packet.HeaderSize
	a.offsets = a.offsets[:0]
	return nil
}

// Len is the current packet size in bytes, header included.
func (a *Assembler) Len() int { return a.n }

// Remaining is the number of bytes still free.
func (a *Assembler) Remaining() int { return packet.MaxPacketSize - a.n }

func (a *Assembler) BlockCount() int { return len(a.offsets) }

// Seq is the sequence number of the packet under construction.
func (a *Assembler) Seq() uint16 { return a.seq }

// Header returns a copy of the current packet header.
func (a *Assembler) Header() packet.Header { return a.hdr }

// RoomFor reports whether b would fit. Append fails exactly when RoomFor
// returns false.
func (a *Assembler) RoomFor(b *packet.Block) bool {
	return a.n+b.Len() <= packet.MaxPacketSize
}

// Append copies b after the last block. It returns an error wrapping
// packet.ErrCapacityExceeded when b does not fit, and a *packet.RangeError
// when the payload length disagrees with b's header; the packet is
// unchanged in both cases.
func (a *Assembler) Append(b packet.Block) error {
	if want := b.Header.PayloadLength(); len(b.Payload) != want {
		return &packet.RangeError{
			Field:  b.Name() + " payload",
			Value:  len(b.Payload),
			Reason: fmt.Sprintf("header declares %d bytes", want),
		}
	}
	if !a.RoomFor(&b) {
		return fmt.Errorf("%s needs %d bytes, %d free: %w",
			b.Name(), b.Len(), a.Remaining(), packet.ErrCapacityExceeded)
	}
	if err := a.hdr.AddLength(b.Len()); err != nil {
		return err
	}
	a.offsets = append(a.offsets, a.n)
	b.AppendTo(a.buf[:a.n])
	a.n += b.Len()
	return nil
}

// Block returns block i as stored in the packet. The payload aliases the
// assembler's buffer and is only valid until the next Reset.
func (a *Assembler) Block(i int) (packet.Block, bool) {
	if i < 0 || i >= len(a.offsets) {
		return packet.Block{}, false
	}
	b, _, err := packet.ParseBlock(a.buf[a.offsets[i]:a.n])
	if err != nil {
		return packet.Block{}, false
	}
	return b, true
}

// Bytes returns the finished packet. The slice aliases the assembler's
// buffer and is only valid until the next Append or Reset.
func (a *Assembler) Bytes() []byte {
	copy(a.buf[:packet.HeaderSize], a.hdr[:])
	return a.buf[:a.n]
}

// full reports whether the cycle should stop pulling records.
func (a *Assembler) full() bool {
	if a.cfg.ConservativeFill {
		return a.Remaining() < packet.MaxBlockSize
	}
	return a.Remaining() < packet.BlockHeaderSize
}

func (a *Assembler) nextSeq() {
	a.seq = (a.seq + 1) & packet.MaxSeq
}
