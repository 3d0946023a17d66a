package kiss

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"downlink/ax25"
	"downlink/config"
	"downlink/internal/syncutil"
	"downlink/monitoring"
	"downlink/packet"
)

// TransportError reports a failed read or write on the TNC link.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("kiss %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Received is one packet heard on the link.
type Received struct {
	Packet *packet.Packet
	Raw    []byte // the packet bytes, AX.25 header removed
	From   string // AX.25 source, empty without AX.25
	At     time.Time
}

// Client represents an active connection to a KISS TNC
type Client struct {
	conn io.ReadWriteCloser
	port byte

	wrap      bool // AX.25 UI framing
	src, dest ax25.Address
	path      []ax25.Address

	writeMu  syncutil.Mutex
	frameBuf []byte

	// OnDrop, if set, is called from Start for each data frame on our
	// port that does not decode.
	OnDrop func(err error)
}

// Connect establishes a connection to a TNC based on the interface config
func Connect(conf config.InterfaceConfig, callsign string) (*Client, error) {
	var (
		conn io.ReadWriteCloser
		err  error
	)
	// host:port is TCP, anything else a serial device
	if strings.Contains(conf.Device, ":") {
		monitoring.Logf("Attempting KISS TCP connection to: %s", conf.Device)
		conn, err = connectTCP(conf.Device)
	} else {
		monitoring.Logf("Attempting KISS serial connection to: %s at %d baud", conf.Device, conf.Baud)
		conn, err = connectSerial(conf.Device, conf.Baud, conf.ReadTimeout.Duration)
	}
	if err != nil {
		return nil, err
	}
	c, err := New(conn, conf, callsign)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return c, nil
}

// New wraps an open link. callsign is the AX.25 source when conf enables
// AX.25 framing.
func New(conn io.ReadWriteCloser, conf config.InterfaceConfig, callsign string) (*Client, error) {
	c := &Client{conn: conn, port: conf.Port & 0x0F, wrap: conf.AX25}
	if !conf.AX25 {
		return c, nil
	}
	var err error
	if c.src, err = ax25.ParseAddress(callsign); err != nil {
		return nil, err
	}
	if c.dest, err = ax25.ParseAddress(conf.AX25Dest); err != nil {
		return nil, err
	}
	for _, p := range conf.AX25Path {
		a, err := ax25.ParseAddress(p)
		if err != nil {
			return nil, err
		}
		c.path = append(c.path, a)
	}
	return c, nil
}

// Send writes one packet as a KISS data frame, inside an AX.25 UI frame
// when configured. It is safe for concurrent use and does not keep pkt.
func (c *Client) Send(ctx context.Context, pkt []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload := pkt
	if c.wrap {
		var err error
		if payload, err = ax25.Encode(c.dest, c.src, c.path, pkt); err != nil {
			return err
		}
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if d, ok := ctx.Deadline(); ok {
		if dl, ok := c.conn.(interface{ SetWriteDeadline(time.Time) error }); ok {
			_ = dl.SetWriteDeadline(d)
		}
	}
	c.frameBuf = AppendFrame(c.frameBuf[:0], c.port, payload)
	if _, err := c.conn.Write(c.frameBuf); err != nil {
		return &TransportError{Op: "write", Err: err}
	}
	return nil
}

// Start begins the packet-reading loop. Frames that are not data frames
// for our port, or do not decode, are skipped. The channel is closed when
// the link fails or is closed. Run it as a goroutine.
func (c *Client) Start(out chan<- Received) {
	defer close(out)
	decoder := NewDecoder(c.conn)
	for {
		f, err := decoder.ReadFrame()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				monitoring.Logf("kiss read: %v", err)
			}
			return
		}
		if f.Command != CmdData || f.Port != c.port {
			continue
		}
		r, err := c.unwrap(f.Data)
		if err != nil {
			monitoring.Debugf("dropping frame: %v", err)
			if c.OnDrop != nil {
				c.OnDrop(err)
			}
			continue
		}
		out <- r
	}
}

func (c *Client) unwrap(data []byte) (Received, error) {
	r := Received{Raw: data, At: time.Now()}
	if c.wrap {
		f, err := ax25.Decode(data)
		if err != nil {
			return r, err
		}
		r.Raw, r.From = f.Info, f.Src.String()
	}
	p, err := packet.Decode(r.Raw)
	if err != nil {
		return r, err
	}
	r.Packet = p
	return r, nil
}

// Close disconnects the client
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}
