package aprs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPosition_Payload(t *testing.T) {
	t.Parallel()

	got, err := Position{Lat: 43.65, Lon: -79.38, Altitude: 250}.Payload()
	require.NoError(t, err)
	assert.Equal(t, `!4339.00N\07922.80WO/A=000820`, got)

	got, err = Position{
		Lat: -33.8568, Lon: 151.2153, Symbol: Symbol{Table: PrimaryTable, Code: 'O'}, Comment: "seq 7",
	}.Payload()
	require.NoError(t, err)
	assert.Equal(t, "!3351.41S/15112.92EOseq 7", got)

	got, err = Position{Lat: 0.5, Lon: 0.5, Altitude: -10}.Payload()
	require.NoError(t, err)
	assert.Equal(t, `!0030.00N\00030.00EO/A=-00033`, got)

	_, err = Position{Lat: 91}.Payload()
	require.Error(t, err)
}

func TestParsePosition_RoundTrip(t *testing.T) {
	t.Parallel()

	in := Position{Lat: 43.65, Lon: -79.38, Altitude: 250, Comment: "hi"}
	payload, err := in.Payload()
	require.NoError(t, err)

	out, err := ParsePosition(payload)
	require.NoError(t, err)
	assert.InDelta(t, in.Lat, out.Lat, 1e-4)
	assert.InDelta(t, in.Lon, out.Lon, 1e-4)
	assert.Equal(t, Rocket, out.Symbol)
	assert.Equal(t, "/A=000820 hi", out.Comment)
}

func TestParsePosition(t *testing.T) {
	t.Parallel()

	// timestamped, with ambiguity
	p, err := ParsePosition("/092345z4903.5 N/07201.75W>comment")
	require.NoError(t, err)
	assert.InDelta(t, 49+3.55/60, p.Lat, 1e-9)
	assert.InDelta(t, -(72 + 1.75/60), p.Lon, 1e-9)
	assert.Equal(t, byte('>'), p.Symbol.Code)

	for _, bad := range []string{
		"!short",
		":N0CALL   :hello there friend",
		"!4903.50X/07201.75W>comment",
	} {
		_, err := ParsePosition(bad)
		assert.Error(t, err, bad)
	}
}

func TestFrame(t *testing.T) {
	t.Parallel()

	f := Frame{Src: "VA3INI", Dest: "APZ001", Path: []string{"qAR", "VE3XYZ"}, Payload: ">armed"}
	assert.Equal(t, "VA3INI>APZ001,qAR,VE3XYZ:>armed", f.String())

	back, err := ParseFrame(f.String() + "\r\n")
	require.NoError(t, err)
	assert.Equal(t, f, back)

	// payload may itself contain ':'
	back, err = ParseFrame("N0CALL>APRS::VA3INI   :hi")
	require.NoError(t, err)
	assert.Nil(t, back.Path)
	assert.Equal(t, ":VA3INI   :hi", back.Payload)

	for _, bad := range []string{"no separator", ">APRS:x", "N0CALL>:x"} {
		_, err := ParseFrame(bad)
		assert.Error(t, err, bad)
	}
}

func TestStatusPayload(t *testing.T) {
	t.Parallel()

	got, err := StatusPayload(" armed ")
	require.NoError(t, err)
	assert.Equal(t, ">armed", got)

	long := make([]byte, 80)
	for i := range long {
		long[i] = 'a'
	}
	got, err = StatusPayload(string(long))
	require.NoError(t, err)
	assert.Len(t, got, 1+MaxStatusLen)

	_, err = StatusPayload("a|b")
	require.Error(t, err)
	_, err = StatusPayload("  ")
	require.Error(t, err)
}

func TestCalculatePasscode(t *testing.T) {
	t.Parallel()

	a, err := CalculatePasscode("n0call")
	require.NoError(t, err)
	b, err := CalculatePasscode("N0CALL-9")
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, 13023, a)

	_, err = CalculatePasscode("TOOLONGCALL")
	require.Error(t, err)
}
