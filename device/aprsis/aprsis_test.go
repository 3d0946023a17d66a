package aprsis

import (
	"bufio"
	"net"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"downlink/aprs"
)

// fakeServer answers a login with resp and passes later lines to lines.
func fakeServer(t *testing.T, resp string) (net.Conn, <-chan string) {
	t.Helper()
	client, server := net.Pipe()
	lines := make(chan string, 4)
	go func() {
		defer close(lines)
		r := bufio.NewReader(server)
		for {
			line, err := r.ReadString('\n')
			if err != nil {
				return
			}
			if strings.HasPrefix(line, "user ") {
				if _, err := server.Write([]byte("# aprsc 2.1.14\r\n" + resp)); err != nil {
					return
				}
			}
			lines <- strings.TrimRight(line, "\r\n")
		}
	}()
	t.Cleanup(func() { server.Close() })
	return client, lines
}

func TestClient_LoginAndSend(t *testing.T) {
	t.Parallel()

	conn, lines := fakeServer(t, "# logresp N0CALL verified, server T2TEST\r\n")
	c, err := New(conn, "N0CALL", 13023)
	require.NoError(t, err)
	defer c.Close()

	assert.Equal(t, "user N0CALL pass 13023 vers Downlink 0.1", <-lines)
	assert.True(t, c.IsVerified)

	f := aprs.Frame{Src: "VA3INI", Dest: "APZ001", Path: []string{"qAR", "N0CALL"}, Payload: ">armed"}
	require.NoError(t, c.Send(f))
	assert.Equal(t, "VA3INI>APZ001,qAR,N0CALL:>armed", <-lines)
}

func TestClient_ReadOnly(t *testing.T) {
	t.Parallel()

	conn, lines := fakeServer(t, "# logresp N0CALL unverified, server T2TEST\r\n")
	c, err := New(conn, "N0CALL", -1)
	require.NoError(t, err)
	defer c.Close()
	<-lines

	assert.False(t, c.IsVerified)
	require.ErrorIs(t, c.Send(aprs.Frame{Src: "VA3INI", Dest: "APZ001", Payload: ">x"}), ErrReadOnly)
}

func TestClient_LoginMismatch(t *testing.T) {
	t.Parallel()

	conn, _ := fakeServer(t, "# logresp SOMEONE verified, server T2TEST\r\n")
	_, err := New(conn, "N0CALL", 13023)
	require.ErrorContains(t, err, "callsign mismatch")
}

func TestClient_StartReturnsOnClose(t *testing.T) {
	t.Parallel()

	conn, lines := fakeServer(t, "# logresp N0CALL verified, server T2TEST\r\n")
	c, err := New(conn, "N0CALL", 13023)
	require.NoError(t, err)
	<-lines

	done := make(chan struct{})
	go func() {
		c.Start()
		close(done)
	}()
	require.NoError(t, c.Close())
	<-done
}
