package assembler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"downlink/monitoring"
	"downlink/packet"
	"downlink/sensor"
)

// Sink receives finished packets. Send must not keep pkt after it
// returns; copy it if needed.
type Sink interface {
	Send(ctx context.Context, pkt []byte) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, pkt []byte) error

func (f SinkFunc) Send(ctx context.Context, pkt []byte) error { return f(ctx, pkt) }

// Observer is notified of cycle events, e.g. to update metrics.
type Observer interface {
	PacketSent(size, blocks int)
	BlockAppended(b *packet.Block)
	BlockCarried(b *packet.Block)
	RecordSkipped(tag sensor.Tag, err error)
}

type nopObserver struct{}

func (nopObserver) PacketSent(int, int)             {}
func (nopObserver) BlockAppended(*packet.Block)     {}
func (nopObserver) BlockCarried(*packet.Block)      {}
func (nopObserver) RecordSkipped(sensor.Tag, error) {}

// Cycle builds and sends one packet. It starts with the block carried over
// from the previous cycle, if any, then pulls records from src until the
// packet is full, a block does not fit, or src has no data. A block that
// does not fit is carried into the next cycle rather than dropped.
//
// Cycle returns io.EOF once src is exhausted, after sending what was
// collected. A source failure also sends what was collected and is then
// returned. Empty packets are not sent.
func (a *Assembler) Cycle(ctx context.Context, src sensor.Source, sink Sink) error {
	if err := a.Reset(); err != nil {
		return err
	}
	if a.carry != nil {
		b := *a.carry
		a.carry = nil
		if err := a.Append(b); err != nil {
			return err
		}
		a.obs.BlockAppended(&b)
	}

	var srcErr error
	for !a.full() {
		r, err := src.Next(ctx)
		if err != nil {
			if errors.Is(err, sensor.ErrNoData) {
				break
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			srcErr = err
			break
		}

		b, ok, err := a.Build(r)
		if err != nil {
			monitoring.Logf("skipping %s record: %v", r.Tag, err)
			a.obs.RecordSkipped(r.Tag, err)
			continue
		}
		if !ok {
			continue
		}
		if err := a.Append(b); err != nil {
			if !errors.Is(err, packet.ErrCapacityExceeded) {
				return err
			}
			a.carry = &b
			a.obs.BlockCarried(&b)
			break
		}
		a.obs.BlockAppended(&b)
	}

	if err := a.flush(ctx, sink); err != nil {
		return err
	}
	if srcErr != nil && !errors.Is(srcErr, io.EOF) {
		return fmt.Errorf("read sensor record: %w", srcErr)
	}
	return srcErr
}

// flush sends the packet if it holds any block and advances the sequence
// number.
func (a *Assembler) flush(ctx context.Context, sink Sink) error {
	if a.BlockCount() == 0 {
		return nil
	}
	pkt := a.Bytes()
	if err := sink.Send(ctx, pkt); err != nil {
		return fmt.Errorf("send packet %d: %w", a.seq, err)
	}
	a.obs.PacketSent(len(pkt), a.BlockCount())
	a.nextSeq()
	return nil
}

// idleBackoff is how long Run pauses after a cycle that sent nothing.
const idleBackoff = 100 * time.Millisecond

// Run repeats Cycle until src is exhausted, ctx is done, or sending
// fails. It returns nil when src reaches io.EOF. A cycle that sends no
// packet is followed by a short pause so that a source which never blocks
// does not spin.
func (a *Assembler) Run(ctx context.Context, src sensor.Source, sink Sink) error {
	idle := time.NewTimer(idleBackoff)
	defer idle.Stop()
	for {
		seq := a.seq
		err := a.Cycle(ctx, src, sink)
		switch {
		case errors.Is(err, io.EOF):
			return nil
		case err != nil:
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if a.seq != seq {
			continue
		}

		idle.Reset(idleBackoff)
		select {
		case <-idle.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
