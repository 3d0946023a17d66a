package aprsis

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"downlink/aprs"
	"downlink/config"
	"downlink/internal/syncutil"
	"downlink/monitoring"
)

const (
	appName    = "Downlink"
	appVersion = "0.1"

	loginTimeout = 10 * time.Second
	writeTimeout = 5 * time.Second
)

// ErrReadOnly is returned by Send when the server did not verify the
// passcode; unverified clients cannot inject packets.
var ErrReadOnly = errors.New("aprs-is: login not verified, read-only")

type conn interface {
	io.ReadWriteCloser
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
}

// Client represents an active connection to an APRS-IS server
type Client struct {
	conn       conn
	reader     *bufio.Reader
	callsign   string
	IsVerified bool

	writeMu syncutil.Mutex
}

// Connect establishes a connection to an APRS-IS server and logs in as
// callsign.
func Connect(conf config.IGateConfig, callsign string) (*Client, error) {
	if callsign == "" {
		return nil, fmt.Errorf("callsign missing in config for APRS-IS")
	}
	passcode := conf.Passcode
	if passcode <= 0 {
		monitoring.Logf("Warning: APRS-IS passcode not provided or invalid in config, connecting read-only.")
		passcode = -1
	} else {
		calculatedPasscode, err := aprs.CalculatePasscode(callsign)
		if err != nil {
			return nil, fmt.Errorf("failed to calculate passcode: %w", err)
		}
		if passcode != calculatedPasscode {
			monitoring.Logf("Warning: Provided passcode does not match the one for %s. Connecting read-only.", callsign)
			passcode = -1
		}
	}

	monitoring.Logf("Attempting APRS-IS connection to %s", conf.Server)
	c, err := net.DialTimeout("tcp", conf.Server, 15*time.Second)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to APRS-IS server %s: %w", conf.Server, err)
	}
	monitoring.Logf("Connected to APRS-IS server: %s", c.RemoteAddr())

	client, err := New(c, callsign, passcode)
	if err != nil {
		c.Close()
		return nil, err
	}
	return client, nil
}

// New logs in over an open connection. A passcode of -1 logs in
// read-only.
func New(c conn, callsign string, passcode int) (*Client, error) {
	client := &Client{
		conn:     c,
		reader:   bufio.NewReader(c),
		callsign: callsign,
	}
	if err := client.login(passcode); err != nil {
		return nil, fmt.Errorf("APRS-IS login failed: %w", err)
	}
	monitoring.Logf("APRS-IS login done, verified=%t", client.IsVerified)
	return client, nil
}

// login sends the login string and verifies the response
func (c *Client) login(passcode int) error {
	loginStr := fmt.Sprintf("user %s pass %d vers %s %s\r\n", c.callsign, passcode, appName, appVersion)
	monitoring.Debugf("Sending login: user %s pass **** vers %s %s", c.callsign, appName, appVersion)

	if _, err := io.WriteString(c.conn, loginStr); err != nil {
		return fmt.Errorf("failed to send login string: %w", err)
	}

	_ = c.conn.SetReadDeadline(time.Now().Add(loginTimeout))
	defer c.conn.SetReadDeadline(time.Time{})

	for {
		lineBytes, err := c.reader.ReadBytes('\n')
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				return fmt.Errorf("timeout waiting for login response from server")
			}
			if errors.Is(err, io.EOF) {
				return fmt.Errorf("connection closed unexpectedly during login")
			}
			return fmt.Errorf("error reading login response: %w", err)
		}
		line := strings.TrimSpace(string(lineBytes))
		monitoring.Debugf("APRS-IS Server: %s", line)

		if !strings.HasPrefix(line, "# logresp ") {
			if strings.HasPrefix(line, "#") {
				continue // banner and keepalives
			}
			// data before logresp; carry on read-only
			c.IsVerified = false
			return nil
		}
		// # logresp <callsign> verified|unverified, server <serverid>
		parts := strings.Fields(line)
		if len(parts) < 4 {
			return fmt.Errorf("short login response: %s", line)
		}
		if !strings.EqualFold(parts[2], c.callsign) {
			return fmt.Errorf("login response callsign mismatch: expected %s, got %s", c.callsign, parts[2])
		}
		c.IsVerified = passcode != -1 && strings.HasPrefix(parts[3], "verified")
		return nil
	}
}

// Send uploads one frame.
func (c *Client) Send(f aprs.Frame) error {
	if !c.IsVerified {
		return ErrReadOnly
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if _, err := io.WriteString(c.conn, f.String()+"\r\n"); err != nil {
		return fmt.Errorf("aprs-is write: %w", err)
	}
	return nil
}

// Start drains what the server sends until the connection closes. Frames
// are logged at debug level. Run it as a goroutine.
func (c *Client) Start() {
	for {
		lineBytes, err := c.reader.ReadBytes('\n')
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
				monitoring.Logf("APRS-IS connection closed.")
			} else {
				monitoring.Logf("Error reading APRS-IS stream: %v", err)
			}
			return
		}
		line := strings.TrimSpace(string(lineBytes))
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		if f, err := aprs.ParseFrame(line); err == nil {
			monitoring.Debugf("APRS-IS heard %s", f.Src)
		}
	}
}

// Close disconnects the client
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}
