package packet

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBlockHeader_Init(t *testing.T) {
	t.Parallel()

	b, err := NewBlockHeader(16, false, TypeData, DataAltitude, GroundStation)
	require.NoError(t, err)

	assert.Equal(t, 16+BlockHeaderSize, b.Length())
	assert.Equal(t, TypeData, b.Type())
	assert.Equal(t, DataAltitude, b.Subtype())
	assert.Equal(t, GroundStation, b.Dest())
	assert.False(t, b.HasSignature())
}

func TestNewBlockHeader_BitLayout(t *testing.T) {
	t.Parallel()

	// length 12 -> field 2, sig set, data/temperature, multicast
	b, err := NewBlockHeader(8, true, TypeData, DataTemperature, Multicast)
	require.NoError(t, err)

	// 00010 1 0010 001001 1111 000000000000
	assert.Equal(t, []byte{0x14, 0x89, 0xF0, 0x00}, b.Bytes())
}

func TestBlockHeader_SetLength(t *testing.T) {
	t.Parallel()

	b, err := NewBlockHeader(12, false, TypeData, DataTemperature, GroundStation)
	require.NoError(t, err)
	assert.Equal(t, 12+BlockHeaderSize, b.Length())

	require.NoError(t, b.SetLength(4))
	assert.Equal(t, 4+BlockHeaderSize, b.Length())
	assert.Equal(t, DataTemperature, b.Subtype())

	assert.ErrorIs(t, b.SetLength(5), ErrRange)
	assert.ErrorIs(t, b.SetLength(MaxBlockPayload+4), ErrRange)
	assert.Equal(t, 4+BlockHeaderSize, b.Length())
}

func TestBlockHeader_LengthBounds(t *testing.T) {
	t.Parallel()

	for payload := 0; payload <= MaxBlockPayload; payload += 4 {
		b, err := NewBlockHeader(payload, false, TypeCommand, CmdTareSensors, Rocket)
		require.NoError(t, err)
		got, err := ParseBlockHeader(b.Bytes())
		require.NoError(t, err)
		assert.Equal(t, payload+BlockHeaderSize, got.Length())
		assert.GreaterOrEqual(t, got.Length(), BlockHeaderSize)
		assert.LessOrEqual(t, got.Length(), MaxBlockSize)
	}
}

func TestNewBlockHeader_Rejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		length int
		typ    BlockType
		sub    Subtype
		dest   Address
	}{
		{name: "subtype outside control namespace", length: 4, typ: TypeControl, sub: DataTemperature, dest: GroundStation},
		{name: "subtype outside command namespace", length: 4, typ: TypeCommand, sub: CmdTareSensors + 1, dest: GroundStation},
		{name: "unknown type", length: 4, typ: BlockType(9), sub: 0, dest: GroundStation},
		{name: "unknown destination", length: 4, typ: TypeData, sub: DataTemperature, dest: Address(3)},
		{name: "unaligned length", length: 6, typ: TypeData, sub: DataTemperature, dest: GroundStation},
		{name: "oversized", length: 128, typ: TypeData, sub: DataDebugMessage, dest: GroundStation},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewBlockHeader(tt.length, false, tt.typ, tt.sub, tt.dest)
			assert.ErrorIs(t, err, ErrRange)
		})
	}
}

func TestParseBlockHeader_Malformed(t *testing.T) {
	t.Parallel()

	_, err := ParseBlockHeader([]byte{0x00})
	assert.ErrorIs(t, err, ErrMalformed)

	// type 0xF
	_, err = ParseBlockHeader([]byte{0x03, 0xC0, 0x00, 0x00})
	assert.ErrorIs(t, err, ErrMalformed)

	// control subtype 0x3F
	_, err = ParseBlockHeader([]byte{0x00, 0x3F, 0x00, 0x00})
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestParseBlockHeader_IgnoresReserved(t *testing.T) {
	t.Parallel()

	b, err := NewBlockHeader(8, false, TypeData, DataPressure, GroundStation)
	require.NoError(t, err)
	raw := b
	raw[2] |= 0x0F
	raw[3] = 0xFF

	got, err := ParseBlockHeader(raw[:])
	require.NoError(t, err)
	assert.Equal(t, 12, got.Length())
	assert.Equal(t, DataPressure, got.Subtype())
	assert.Equal(t, GroundStation, got.Dest())
}

func TestParseBlock(t *testing.T) {
	t.Parallel()

	blk, err := NewBlock(TypeData, DataTemperature, GroundStation, []byte{0, 0, 5, 220, 255, 255, 248, 48})
	require.NoError(t, err)
	raw := blk.AppendTo(nil)
	require.Len(t, raw, 12)

	got, n, err := ParseBlock(append(raw, 0xAA, 0xBB))
	require.NoError(t, err)
	assert.Equal(t, 12, n)
	assert.Equal(t, blk.Payload, got.Payload)
	assert.Equal(t, "data/temperature", got.Name())

	_, _, err = ParseBlock(raw[:8])
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestDecode_LengthInvariant(t *testing.T) {
	t.Parallel()

	var body []byte
	sizes := []int{8, 0, 32, 12}
	for i, size := range sizes {
		blk, err := NewBlock(TypeData, DataDebugMessage, GroundStation, bytes.Repeat([]byte{byte(i)}, size))
		require.NoError(t, err)
		body = blk.AppendTo(body)
	}
	h, err := NewHeader("VA3INI", len(body), 1, Rocket, 7)
	require.NoError(t, err)
	buf := append(h.Bytes(), body...)

	p, err := Decode(buf)
	require.NoError(t, err)
	require.Len(t, p.Blocks, len(sizes))
	assert.Equal(t, p.Header.Length(), HeaderSize+p.BlockBytes())
	for i, size := range sizes {
		assert.Equal(t, size, len(p.Blocks[i].Payload))
	}

	// decoding is read-only
	again, err := Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, p, again)
}

func TestDecode_Malformed(t *testing.T) {
	t.Parallel()

	blk, err := NewBlock(TypeData, DataTemperature, GroundStation, make([]byte, 8))
	require.NoError(t, err)
	h, err := NewHeader("VA3INI", blk.Len(), 1, Rocket, 1)
	require.NoError(t, err)
	good := blk.AppendTo(h.Bytes())

	t.Run("truncated packet", func(t *testing.T) {
		t.Parallel()
		_, err := Decode(good[:len(good)-4])
		assert.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("block overruns packet", func(t *testing.T) {
		t.Parallel()
		bad := append([]byte(nil), good...)
		bad[HeaderSize] = 0x20 // block length field 4 -> 20 bytes
		_, err := Decode(bad)
		var de *DecodeError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, HeaderSize, de.Offset)
	})

	t.Run("length shorter than header", func(t *testing.T) {
		t.Parallel()
		bad := append([]byte(nil), good...)
		bad[6] &^= 0xFC // length field 0 -> 4 bytes
		_, err := Decode(bad)
		var de *DecodeError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, 6, de.Offset)
		assert.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("trailing padding ignored", func(t *testing.T) {
		t.Parallel()
		p, err := Decode(append(append([]byte(nil), good...), 0, 0, 0, 0))
		require.NoError(t, err)
		assert.Len(t, p.Blocks, 1)
	})
}

func FuzzDecode(f *testing.F) {
	blk, _ := NewBlock(TypeData, DataTemperature, GroundStation, make([]byte, 8))
	h, _ := NewHeader("VA3INI", blk.Len(), 1, Rocket, 1)
	good := blk.AppendTo(h.Bytes())
	f.Add(good)
	short := append([]byte(nil), good...)
	short[6] &^= 0xFC
	f.Add(short)
	f.Add([]byte{})
	f.Add(bytes.Repeat([]byte{0xFF}, 300))

	f.Fuzz(func(t *testing.T, buf []byte) {
		p, err := Decode(buf)
		if err != nil {
			return
		}
		if p.Header.Length() != HeaderSize+p.BlockBytes() {
			t.Fatalf("length %d != %d + %d", p.Header.Length(), HeaderSize, p.BlockBytes())
		}
	})
}

func TestPrint(t *testing.T) {
	t.Parallel()

	blk, err := NewBlock(TypeData, DataTemperature, GroundStation, make([]byte, 8))
	require.NoError(t, err)
	h, err := NewHeader("VA3INI", blk.Len(), 1, Rocket, 3)
	require.NoError(t, err)
	buf := blk.AppendTo(h.Bytes())
	orig := append([]byte(nil), buf...)

	var out bytes.Buffer
	require.NoError(t, Print(&out, buf))
	assert.Contains(t, out.String(), "VA3INI #3 v1 24B")
	assert.Contains(t, out.String(), "data/temperature->groundstation 12B")
	assert.Equal(t, orig, buf)

	out.Reset()
	require.NoError(t, Print(&out, []byte{0xDE, 0xAD}))
	assert.Contains(t, out.String(), "raw     de ad")
}
