package packet

// Block is a block header paired with its payload. The payload length
// always matches the length encoded in the header.
type Block struct {
	Header  BlockHeader
	Payload []byte
}

// NewBlock wraps payload in a block header. The payload is referenced, not
// copied. Its length must be a multiple of 4 and at most MaxBlockPayload.
func NewBlock(typ BlockType, sub Subtype, dest Address, payload []byte) (Block, error) {
	h, err := NewBlockHeader(len(payload), false, typ, sub, dest)
	if err != nil {
		return Block{}, err
	}
	return Block{Header: h, Payload: payload}, nil
}

// Len returns the encoded size of the block, header included.
func (b *Block) Len() int {
	return b.Header.Length()
}

func (b *Block) Type() BlockType  { return b.Header.Type() }
func (b *Block) Subtype() Subtype { return b.Header.Subtype() }
func (b *Block) Dest() Address    { return b.Header.Dest() }

// Name renders type and subtype, e.g. "data/temperature".
func (b *Block) Name() string {
	return b.Type().String() + "/" + SubtypeName(b.Type(), b.Subtype())
}

// AppendTo appends the encoded block to dst.
func (b *Block) AppendTo(dst []byte) []byte {
	dst = append(dst, b.Header[:]...)
	return append(dst, b.Payload...)
}

// ParseBlock decodes one block from the start of buf and returns it along
// with the number of bytes consumed. The payload aliases buf.
func ParseBlock(buf []byte) (Block, int, error) {
	h, err := ParseBlockHeader(buf)
	if err != nil {
		return Block{}, 0, err
	}
	n := h.Length()
	if n > len(buf) {
		return Block{}, 0, decodeErr(0, "block", "%s claims %d bytes, have %d",
			SubtypeName(h.Type(), h.Subtype()), n, len(buf))
	}
	return Block{Header: h, Payload: buf[BlockHeaderSize:n]}, n, nil
}
