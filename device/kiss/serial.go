package kiss

import (
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"go.bug.st/serial"
)

// connectSerial opens a connection to a serial KISS TNC
func connectSerial(devicePath string, baud int, readTimeout time.Duration) (io.ReadWriteCloser, error) {
	if devicePath == "" {
		return nil, fmt.Errorf("no device path (e.g., /dev/ttyUSB0 or COM3) provided for KISS serial")
	}

	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(devicePath, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", devicePath, err)
	}

	if readTimeout > 0 {
		if err := port.SetReadTimeout(readTimeout); err != nil {
			port.Close()
			return nil, fmt.Errorf("failed to set read timeout: %w", err)
		}
	}
	return &serialPort{Port: port}, nil
}

// serialPort hides read timeouts from the frame decoder. A timed out read
// returns (0, nil), which bufio treats as a broken reader after a few
// repeats; here it is retried until data arrives or the port is closed.
type serialPort struct {
	serial.Port
	closed atomic.Bool
}

func (p *serialPort) Read(b []byte) (int, error) {
	for {
		if p.closed.Load() {
			return 0, io.EOF
		}
		n, err := p.Port.Read(b)
		if n > 0 || err != nil {
			return n, err
		}
	}
}

func (p *serialPort) Close() error {
	p.closed.Store(true)
	return p.Port.Close()
}
