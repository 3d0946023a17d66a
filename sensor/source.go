package sensor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

// ErrNoData means nothing arrived within the source's wait. It is not a
// failure; the caller should send what it has and try again later.
var ErrNoData = errors.New("no sensor data available")

// Source delivers measurement records.
//
// Next returns ErrNoData when no record is currently available, io.EOF
// once the source is exhausted, and any other error on a transport
// failure.
type Source interface {
	Next(ctx context.Context) (Record, error)
}

// ChanSource reads records from a channel. A closed channel reports io.EOF,
// or, for a StreamSource, the read error that ended the stream.
type ChanSource struct {
	c    <-chan Record
	wait time.Duration
	err  error
}

// NewChanSource returns a source that waits up to wait for each record.
// A wait of zero never blocks.
func NewChanSource(c <-chan Record, wait time.Duration) *ChanSource {
	return &ChanSource{c: c, wait: wait}
}

func (s *ChanSource) Next(ctx context.Context) (Record, error) {
	if s.wait <= 0 {
		select {
		case r, ok := <-s.c:
			return s.recv(r, ok)
		case <-ctx.Done():
			return Record{}, ctx.Err()
		default:
			return Record{}, ErrNoData
		}
	}

	t := time.NewTimer(s.wait)
	defer t.Stop()
	select {
	case r, ok := <-s.c:
		return s.recv(r, ok)
	case <-t.C:
		return Record{}, ErrNoData
	case <-ctx.Done():
		return Record{}, ctx.Err()
	}
}

func (s *ChanSource) recv(r Record, ok bool) (Record, error) {
	if ok {
		return r, nil
	}
	if s.err != nil {
		return Record{}, s.err
	}
	return Record{}, io.EOF
}

// StreamSource reads 16-byte records from r on a background goroutine and
// hands them out through Next with a bounded wait.
type StreamSource struct {
	*ChanSource
	recs chan Record
	done chan struct{}
}

func NewStreamSource(r io.Reader, wait time.Duration) *StreamSource {
	recs := make(chan Record, 64)
	s := &StreamSource{
		ChanSource: NewChanSource(recs, wait),
		recs:       recs,
		done:       make(chan struct{}),
	}
	go s.read(NewReader(r))
	return s
}

func (s *StreamSource) read(rd *Reader) {
	defer close(s.recs)
	for {
		r, err := rd.Read()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				// published to Next by the channel close
				s.err = fmt.Errorf("sensor stream: %w", err)
			}
			return
		}
		select {
		case s.recs <- r:
		case <-s.done:
			return
		}
	}
}

// Close stops delivering records. A reader blocked in Read stays blocked
// until the underlying stream returns.
func (s *StreamSource) Close() error {
	select {
	case <-s.done:
	default:
		close(s.done)
	}
	return nil
}
