package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"downlink/assembler"
	"downlink/config"
	"downlink/device/kiss"
	"downlink/metrics"
	"downlink/monitoring"
	"downlink/packet"
	"downlink/sensor"
)

// runEncoder turns the sensor record stream into packets until the stream
// ends or ctx is canceled.
func runEncoder(ctx context.Context, conf config.Config, m *metrics.Metrics) error {
	src, dest, err := conf.Packet.Addresses()
	if err != nil {
		return err
	}
	a, err := assembler.New(assembler.Config{
		Callsign:         conf.Station.Callsign,
		Version:          conf.Packet.Version,
		Source:           src,
		Dest:             dest,
		FirstSeq:         conf.Packet.FirstSeq,
		ConservativeFill: conf.Packet.ConservativeFill,
		Observer:         m,
	})
	if err != nil {
		return err
	}

	in, err := openInput(conf.Input.Path)
	if err != nil {
		return err
	}
	defer in.Close()
	records := sensor.NewStreamSource(in, conf.Input.Wait.Duration)
	defer records.Close()

	sink, closeSink, err := openSink(conf, os.Stdout)
	if err != nil {
		return err
	}
	defer closeSink()

	monitoring.Logf("Encoding records from %s as %s, first packet #%d", conf.Input.Path, conf.Station.Callsign, conf.Packet.FirstSeq)
	err = a.Run(ctx, records, sink)
	if ctx.Err() != nil {
		monitoring.Logf("Stopped at packet #%d", a.Seq())
		return nil
	}
	return err
}

func openInput(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	return f, nil
}

// openSink connects the configured link. The stdout interface prints each
// packet as hex to w instead.
func openSink(conf config.Config, w io.Writer) (assembler.Sink, func() error, error) {
	switch strings.ToLower(conf.Interface.Type) {
	case "kiss":
		c, err := kiss.Connect(conf.Interface, conf.Station.Callsign)
		if err != nil {
			return nil, nil, err
		}
		return c, c.Close, nil
	default:
		printer := assembler.SinkFunc(func(_ context.Context, pkt []byte) error {
			if err := packet.Print(w, pkt); err != nil {
				return err
			}
			_, err := fmt.Fprintln(w)
			return err
		})
		return printer, func() error { return nil }, nil
	}
}
