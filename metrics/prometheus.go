package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"downlink/packet"
	"downlink/sensor"
)

// Metrics contains all Prometheus metrics for the encoder and the monitor
type Metrics struct {
	// Encoder metrics
	PacketsSent    prometheus.Counter
	PacketSize     prometheus.Histogram
	BlocksPerPkt   prometheus.Histogram
	BlocksAppended *prometheus.CounterVec
	BlocksCarried  prometheus.Counter
	RecordsSkipped *prometheus.CounterVec

	// Monitor metrics
	PacketsReceived prometheus.Counter
	DecodeErrors    prometheus.Counter
	LastSeq         prometheus.Gauge
	SeqGaps         prometheus.Counter

	lastSeq  int
	haveLast bool
}

// NewMetrics creates all metrics and registers them with reg. A nil reg
// uses the default registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		PacketsSent: f.NewCounter(prometheus.CounterOpts{
			Name: "downlink_packets_sent_total",
			Help: "Total number of packets handed to the link",
		}),
		PacketSize: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "downlink_packet_size_bytes",
			Help:    "Size of sent packets including the header",
			Buckets: prometheus.LinearBuckets(32, 32, 8), // 32 to 256 bytes
		}),
		BlocksPerPkt: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "downlink_packet_blocks",
			Help:    "Number of blocks in each sent packet",
			Buckets: prometheus.LinearBuckets(1, 4, 8),
		}),
		BlocksAppended: f.NewCounterVec(prometheus.CounterOpts{
			Name: "downlink_blocks_appended_total",
			Help: "Total number of blocks appended to packets",
		}, []string{"block"}),
		BlocksCarried: f.NewCounter(prometheus.CounterOpts{
			Name: "downlink_blocks_carried_total",
			Help: "Total number of blocks deferred to the next packet",
		}),
		RecordsSkipped: f.NewCounterVec(prometheus.CounterOpts{
			Name: "downlink_records_skipped_total",
			Help: "Total number of sensor records that produced no block",
		}, []string{"tag"}),

		PacketsReceived: f.NewCounter(prometheus.CounterOpts{
			Name: "downlink_packets_received_total",
			Help: "Total number of packets decoded by the monitor",
		}),
		DecodeErrors: f.NewCounter(prometheus.CounterOpts{
			Name: "downlink_decode_errors_total",
			Help: "Total number of frames that did not decode",
		}),
		LastSeq: f.NewGauge(prometheus.GaugeOpts{
			Name: "downlink_last_seq",
			Help: "Packet number of the last received packet",
		}),
		SeqGaps: f.NewCounter(prometheus.CounterOpts{
			Name: "downlink_seq_gaps_total",
			Help: "Total number of packets missing between received packet numbers",
		}),
	}
}

// PacketSent records a packet accepted by the sink.
func (m *Metrics) PacketSent(size, blocks int) {
	m.PacketsSent.Inc()
	m.PacketSize.Observe(float64(size))
	m.BlocksPerPkt.Observe(float64(blocks))
}

// BlockAppended counts a block by name.
func (m *Metrics) BlockAppended(b *packet.Block) {
	m.BlocksAppended.WithLabelValues(b.Name()).Inc()
}

// BlockCarried counts a block that did not fit.
func (m *Metrics) BlockCarried(*packet.Block) {
	m.BlocksCarried.Inc()
}

// RecordSkipped counts a record by tag.
func (m *Metrics) RecordSkipped(tag sensor.Tag, _ error) {
	m.RecordsSkipped.WithLabelValues(tag.String()).Inc()
}

// RecordReceived updates the monitor metrics for a decoded packet and
// counts the packet numbers skipped since the previous one. Not safe for
// concurrent use; the monitor calls it from one goroutine.
func (m *Metrics) RecordReceived(p *packet.Packet) {
	m.PacketsReceived.Inc()
	seq := int(p.Seq())
	if m.haveLast && seq != m.lastSeq {
		if gap := (seq - m.lastSeq - 1 + packet.MaxSeq + 1) % (packet.MaxSeq + 1); gap > 0 {
			m.SeqGaps.Add(float64(gap))
		}
	}
	m.lastSeq, m.haveLast = seq, true
	m.LastSeq.Set(float64(seq))
}

// RecordDecodeError increments the decode errors counter
func (m *Metrics) RecordDecodeError() {
	m.DecodeErrors.Inc()
}
