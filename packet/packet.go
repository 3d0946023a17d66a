package packet

// Packet is a decoded packet: its header and the blocks it carries in
// transmission order.
type Packet struct {
	Header Header
	Blocks []Block
}

// Callsign returns the sender callsign from the header.
func (p *Packet) Callsign() string {
	return p.Header.Callsign()
}

// Seq returns the packet number from the header.
func (p *Packet) Seq() uint16 {
	return p.Header.Seq()
}

// Decode parses a packet. The length in the header must cover exactly the
// header plus the blocks that follow; trailing bytes beyond the encoded
// length are ignored so that padded link frames decode. Block payloads
// alias buf.
func Decode(buf []byte) (*Packet, error) {
	h, err := ParseHeader(buf)
	if err != nil {
		return nil, err
	}
	total := h.Length()
	if total < HeaderSize {
		return nil, decodeErr(6, "packet", "header claims %d bytes, less than the %d byte header", total, HeaderSize)
	}
	if total > len(buf) {
		return nil, decodeErr(6, "packet", "header claims %d bytes, have %d", total, len(buf))
	}

	p := &Packet{Header: h}
	off := HeaderSize
	for off < total {
		b, n, err := ParseBlock(buf[off:total])
		if err != nil {
			if de, ok := err.(*DecodeError); ok {
				de.Offset += off
			}
			return nil, err
		}
		p.Blocks = append(p.Blocks, b)
		off += n
	}
	return p, nil
}

// BlockBytes sums the encoded length of every block.
func (p *Packet) BlockBytes() int {
	n := 0
	for i := range p.Blocks {
		n += p.Blocks[i].Len()
	}
	return n
}
