package packet

const (
	HeaderSize      = 12  // packet header bytes
	BlockHeaderSize = 4   // block header bytes
	MaxPacketSize   = 256 // header plus all blocks
	MaxBlockSize    = 128 // block header plus payload
	MaxBlockPayload = MaxBlockSize - BlockHeaderSize
	MaxPacketBody   = MaxPacketSize - HeaderSize
	CallsignSize    = 6
	MaxSeq          = 1<<12 - 1
	MaxVersion      = 1<<5 - 1
)

// Packet header word layout (bytes 6..11, big-endian).
const (
	phLengthHi, phLengthLo   = 47, 42
	phVersionHi, phVersionLo = 41, 37
	phSourceHi, phSourceLo   = 31, 28
	phSeqHi, phSeqLo         = 27, 16
)

// Header is the 12-byte packet header. The zero value is not a valid
// header; build one with NewHeader or ParseHeader.
type Header [HeaderSize]byte

// NewHeader encodes a packet header. payloadLen is the number of block
// bytes that follow the header and must be a multiple of 4. Callsigns
// longer than six characters are truncated.
func NewHeader(callsign string, payloadLen int, version uint8, src Address, seq uint16) (Header, error) {
	var h Header
	if len(callsign) == 0 {
		return h, rangeErr("callsign", callsign, "empty")
	}
	for i := 0; i < len(callsign); i++ {
		if c := callsign[i]; c < 0x20 || c > 0x7E {
			return h, rangeErr("callsign", callsign, "not printable ASCII")
		}
	}
	if version > MaxVersion {
		return h, rangeErr("version", version, "does not fit in 5 bits")
	}
	if !src.Valid() {
		return h, rangeErr("source", src, "unknown device address")
	}
	copy(h[:CallsignSize], callsign)
	if err := h.SetSeq(seq); err != nil {
		return Header{}, err
	}
	if err := h.SetLength(payloadLen); err != nil {
		return Header{}, err
	}
	word := readUint48(h[6:])
	word = setField(word, phVersionHi, phVersionLo, uint64(version))
	word = setField(word, phSourceHi, phSourceLo, uint64(src))
	putUint48(h[6:], word)
	return h, nil
}

// ParseHeader decodes a packet header from the start of b. Reserved bits
// are ignored.
func ParseHeader(b []byte) (Header, error) {
	var h Header
	if len(b) < HeaderSize {
		return h, decodeErr(0, "packet header", "need %d bytes, have %d", HeaderSize, len(b))
	}
	copy(h[:], b[:HeaderSize])
	if !h.Source().Valid() {
		return Header{}, decodeErr(6, "packet header", "unknown source address 0x%X", uint8(h.Source()))
	}
	return h, nil
}

func (h *Header) word() uint64 { return readUint48(h[6:]) }

// Length returns the total packet size in bytes, header included.
func (h *Header) Length() int {
	return dequantize(getField(h.word(), phLengthHi, phLengthLo))
}

// PayloadLength returns the number of block bytes after the header.
func (h *Header) PayloadLength() int {
	return h.Length() - HeaderSize
}

// SetLength stores the length for a packet carrying payloadLen block bytes.
func (h *Header) SetLength(payloadLen int) error {
	if payloadLen < 0 || payloadLen%4 != 0 {
		return rangeErr("packet length", payloadLen, "not a multiple of 4")
	}
	if payloadLen > MaxPacketBody {
		return rangeErr("packet length", payloadLen, "exceeds %d payload bytes", MaxPacketBody)
	}
	field, _ := quantize(HeaderSize + payloadLen)
	putUint48(h[6:], setField(h.word(), phLengthHi, phLengthLo, field))
	return nil
}

// AddLength grows the stored length by delta bytes. The result is checked
// the same way as SetLength and h is left unchanged on error.
func (h *Header) AddLength(delta int) error {
	return h.SetLength(h.PayloadLength() + delta)
}

// Callsign returns the callsign with NUL padding removed.
func (h *Header) Callsign() string {
	n := 0
	for n < CallsignSize && h[n] != 0 {
		n++
	}
	return string(h[:n])
}

func (h *Header) Version() uint8 {
	return uint8(getField(h.word(), phVersionHi, phVersionLo))
}

func (h *Header) Source() Address {
	return Address(getField(h.word(), phSourceHi, phSourceLo))
}

// Seq returns the 12-bit packet number.
func (h *Header) Seq() uint16 {
	return uint16(getField(h.word(), phSeqHi, phSeqLo))
}

// SetSeq stores the packet number, rejecting values wider than 12 bits.
func (h *Header) SetSeq(seq uint16) error {
	if seq > MaxSeq {
		return rangeErr("sequence", seq, "does not fit in 12 bits")
	}
	putUint48(h[6:], setField(h.word(), phSeqHi, phSeqLo, uint64(seq)))
	return nil
}

// Bytes returns the encoded header.
func (h *Header) Bytes() []byte {
	return h[:]
}
