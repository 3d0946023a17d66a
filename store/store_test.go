package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"downlink/blocks"
	"downlink/packet"
)

func encodePacket(t *testing.T, seq uint16) []byte {
	t.Helper()
	b, err := blocks.EncodeHumidity(packet.Multicast, 10, 45)
	require.NoError(t, err)
	h, err := packet.NewHeader("VA3INI", b.Len(), 1, packet.Rocket, seq)
	require.NoError(t, err)
	return b.AppendTo(h.Bytes())
}

func TestStore_InsertList(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, err := Open(filepath.Join(t.TempDir(), "packets.db"))
	require.NoError(t, err)
	defer s.Close()

	_, err = uuid.Parse(s.Session())
	require.NoError(t, err)

	at := time.Unix(1700000000, 5)
	for seq := uint16(1); seq <= 3; seq++ {
		raw := encodePacket(t, seq)
		p, err := packet.Decode(raw)
		require.NoError(t, err)
		id, err := s.Insert(ctx, at, "VE3XYZ-2", p, raw)
		require.NoError(t, err)
		assert.Equal(t, int64(seq), id)
	}

	got, err := s.ListBySession(ctx, s.Session())
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, uint16(2), got[1].Seq)
	assert.Equal(t, "VA3INI", got[1].Callsign)
	assert.Equal(t, "VE3XYZ-2", got[1].From)
	assert.Equal(t, "rocket", got[1].Source)
	assert.Equal(t, 1, got[1].Blocks)
	assert.True(t, at.Equal(got[1].ReceivedAt))
	assert.Equal(t, encodePacket(t, 2), got[1].Raw)

	none, err := s.ListBySession(ctx, "nope")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStore_Sessions(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "packets.db")
	raw := encodePacket(t, 9)
	p, err := packet.Decode(raw)
	require.NoError(t, err)

	var ids []string
	for i := 0; i < 2; i++ {
		s, err := Open(path)
		require.NoError(t, err)
		_, err = s.Insert(ctx, time.Now(), "", p, raw)
		require.NoError(t, err)
		ids = append(ids, s.Session())
		require.NoError(t, s.Close())
	}
	assert.NotEqual(t, ids[0], ids[1])

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Sessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, ids, got)
}
