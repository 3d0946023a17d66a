package blocks

import (
	"bytes"
	"encoding/binary"

	"downlink/packet"
)

// MaxMessageLen is the longest text a message block can carry.
const MaxMessageLen = packet.MaxBlockPayload - messageTimeSize

// Message is a decoded debug, status or startup message.
type Message struct {
	Subtype packet.Subtype
	Time    uint32
	Text    string
}

// EncodeDebugMessage builds a free-form debug message block.
func EncodeDebugMessage(dest packet.Address, time uint32, text string) (packet.Block, error) {
	return encodeMessage(packet.DataDebugMessage, dest, time, text)
}

// EncodeStatus builds a status line block.
func EncodeStatus(dest packet.Address, time uint32, text string) (packet.Block, error) {
	return encodeMessage(packet.DataStatus, dest, time, text)
}

// EncodeStartupMessage builds the block sent once after boot.
func EncodeStartupMessage(dest packet.Address, time uint32, text string) (packet.Block, error) {
	return encodeMessage(packet.DataStartupMessage, dest, time, text)
}

// encodeMessage pads text with NULs up to the next 4-byte boundary. Text
// whose length is already aligned gets no terminator.
func encodeMessage(sub packet.Subtype, dest packet.Address, time uint32, text string) (packet.Block, error) {
	if len(text) > MaxMessageLen {
		return packet.Block{}, &packet.RangeError{Field: "message", Value: len(text),
			Reason: "longer than a block can carry"}
	}
	for i := 0; i < len(text); i++ {
		if c := text[i]; c == 0 || c > 0x7E {
			return packet.Block{}, &packet.RangeError{Field: "message", Value: text,
				Reason: "must be ASCII without NUL"}
		}
	}
	n := messageTimeSize + (len(text)+3)&^3
	buf := make([]byte, n)
	binary.BigEndian.PutUint32(buf[0:4], time)
	copy(buf[messageTimeSize:], text)
	return data(sub, dest, buf)
}

func DecodeMessage(b packet.Block) (Message, error) {
	sub := b.Subtype()
	switch sub {
	case packet.DataDebugMessage, packet.DataStatus, packet.DataStartupMessage:
	default:
		sub = packet.DataDebugMessage
	}
	if err := expect(&b, packet.TypeData, sub, messageTimeSize); err != nil {
		return Message{}, err
	}
	text := b.Payload[messageTimeSize:]
	if i := bytes.IndexByte(text, 0); i >= 0 {
		text = text[:i]
	}
	return Message{
		Subtype: sub,
		Time:    binary.BigEndian.Uint32(b.Payload[0:4]),
		Text:    string(text),
	}, nil
}
