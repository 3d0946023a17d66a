package packet

import "encoding/binary"

// Block header word layout (big-endian uint32).
const (
	bhLengthHi, bhLengthLo   = 31, 27
	bhSignature              = 26
	bhTypeHi, bhTypeLo       = 25, 22
	bhSubtypeHi, bhSubtypeLo = 21, 16
	bhDestHi, bhDestLo       = 15, 12
)

// BlockHeader is the 4-byte header in front of every block payload.
type BlockHeader [BlockHeaderSize]byte

// NewBlockHeader encodes a block header for a payload of payloadLen bytes.
func NewBlockHeader(payloadLen int, hasSig bool, typ BlockType, sub Subtype, dest Address) (BlockHeader, error) {
	var b BlockHeader
	if !ValidSubtype(typ, sub) {
		return b, rangeErr("subtype", sub, "not defined for %s blocks", typ)
	}
	if !dest.Valid() {
		return b, rangeErr("destination", dest, "unknown device address")
	}
	if err := b.SetLength(payloadLen); err != nil {
		return BlockHeader{}, err
	}
	word := uint64(b.word())
	if hasSig {
		word = setField(word, bhSignature, bhSignature, 1)
	}
	word = setField(word, bhTypeHi, bhTypeLo, uint64(typ))
	word = setField(word, bhSubtypeHi, bhSubtypeLo, uint64(sub))
	word = setField(word, bhDestHi, bhDestLo, uint64(dest))
	b.put(uint32(word))
	return b, nil
}

// ParseBlockHeader decodes a block header from the start of b. Reserved
// bits are ignored; unknown types, subtypes and addresses are rejected.
func ParseBlockHeader(b []byte) (BlockHeader, error) {
	var h BlockHeader
	if len(b) < BlockHeaderSize {
		return h, decodeErr(0, "block header", "need %d bytes, have %d", BlockHeaderSize, len(b))
	}
	copy(h[:], b[:BlockHeaderSize])
	if !ValidSubtype(h.Type(), h.Subtype()) {
		return BlockHeader{}, decodeErr(0, "block header", "%s has no %s",
			h.Type(), SubtypeName(h.Type(), h.Subtype()))
	}
	if !h.Dest().Valid() {
		return BlockHeader{}, decodeErr(2, "block header", "unknown destination 0x%X", uint8(h.Dest()))
	}
	return h, nil
}

func (b *BlockHeader) word() uint32 { return binary.BigEndian.Uint32(b[:]) }

func (b *BlockHeader) put(w uint32) { binary.BigEndian.PutUint32(b[:], w) }

func (b *BlockHeader) field(hi, lo uint) uint64 {
	return getField(uint64(b.word()), hi, lo)
}

// Length returns the block size in bytes, header included.
func (b *BlockHeader) Length() int {
	return dequantize(b.field(bhLengthHi, bhLengthLo))
}

// PayloadLength returns the number of payload bytes after the header.
func (b *BlockHeader) PayloadLength() int {
	return b.Length() - BlockHeaderSize
}

// SetLength stores the length for a payload of payloadLen bytes.
func (b *BlockHeader) SetLength(payloadLen int) error {
	if payloadLen < 0 || payloadLen%4 != 0 {
		return rangeErr("block length", payloadLen, "not a multiple of 4")
	}
	if payloadLen > MaxBlockPayload {
		return rangeErr("block length", payloadLen, "exceeds %d payload bytes", MaxBlockPayload)
	}
	field, _ := quantize(BlockHeaderSize + payloadLen)
	b.put(uint32(setField(uint64(b.word()), bhLengthHi, bhLengthLo, field)))
	return nil
}

func (b *BlockHeader) HasSignature() bool {
	return b.field(bhSignature, bhSignature) == 1
}

func (b *BlockHeader) Type() BlockType {
	return BlockType(b.field(bhTypeHi, bhTypeLo))
}

func (b *BlockHeader) Subtype() Subtype {
	return Subtype(b.field(bhSubtypeHi, bhSubtypeLo))
}

func (b *BlockHeader) Dest() Address {
	return Address(b.field(bhDestHi, bhDestLo))
}

// Bytes returns the encoded header.
func (b *BlockHeader) Bytes() []byte {
	return b[:]
}
