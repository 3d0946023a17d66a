package blocks

import (
	"encoding/binary"
	"fmt"

	"downlink/packet"
)

// PowerInfo is a decoded power rail reading.
type PowerInfo struct {
	Time       uint32
	Rail       uint8
	Millivolts int16
}

func (p PowerInfo) Volts() float64 { return float64(p.Millivolts) / MillivoltsPerVolt }

// EncodePowerInfo builds a power info block for one rail from volts.
func EncodePowerInfo(dest packet.Address, time uint32, rail uint8, volts float64) (packet.Block, error) {
	mv, err := packet.ScaleInt16("voltage", volts, MillivoltsPerVolt)
	if err != nil {
		return packet.Block{}, err
	}
	buf := make([]byte, PowerInfoSize)
	binary.BigEndian.PutUint32(buf[0:4], time)
	buf[4] = rail
	// buf[5] reserved
	binary.BigEndian.PutUint16(buf[6:8], uint16(mv))
	return data(packet.DataPowerInfo, dest, buf)
}

func DecodePowerInfo(b packet.Block) (PowerInfo, error) {
	if err := expect(&b, packet.TypeData, packet.DataPowerInfo, PowerInfoSize); err != nil {
		return PowerInfo{}, err
	}
	p := b.Payload
	return PowerInfo{
		Time:       binary.BigEndian.Uint32(p[0:4]),
		Rail:       p[4],
		Millivolts: int16(binary.BigEndian.Uint16(p[6:8])),
	}, nil
}

// SignalReport describes link quality as seen by the sender.
type SignalReport struct {
	SNR     int8
	RSSI    int8
	Radio   uint8 // 2 bits
	TxPower uint8 // 6 bits
	Request bool  // ask the receiver to answer with its own report
}

// EncodeSignalReport builds a control/signal_report block.
func EncodeSignalReport(dest packet.Address, r SignalReport) (packet.Block, error) {
	if err := packet.CheckBits("radio", uint64(r.Radio), 2); err != nil {
		return packet.Block{}, err
	}
	if err := packet.CheckBits("tx power", uint64(r.TxPower), 6); err != nil {
		return packet.Block{}, err
	}
	buf := make([]byte, SignalReportSize)
	buf[0] = byte(r.SNR)
	buf[1] = byte(r.RSSI)
	buf[2] = r.Radio<<6 | r.TxPower
	if r.Request {
		buf[3] = 0x01
	}
	return packet.NewBlock(packet.TypeControl, packet.CtrlSignalReport, dest, buf)
}

func DecodeSignalReport(b packet.Block) (SignalReport, error) {
	if err := expect(&b, packet.TypeControl, packet.CtrlSignalReport, SignalReportSize); err != nil {
		return SignalReport{}, err
	}
	p := b.Payload
	return SignalReport{
		SNR:     int8(p[0]),
		RSSI:    int8(p[1]),
		Radio:   p[2] >> 6,
		TxPower: p[2] & 0x3F,
		Request: p[3]&0x01 != 0,
	}, nil
}

// MaxTelemetryRequests is the number of subtypes one request can name.
const MaxTelemetryRequests = 4

// TelemetryRequest names data subtypes the ground wants sent.
type TelemetryRequest struct {
	Subtypes []packet.Subtype
}

// EncodeTelemetryRequest builds a command/telemetry_request block asking for
// up to four data subtypes.
func EncodeTelemetryRequest(dest packet.Address, subtypes ...packet.Subtype) (packet.Block, error) {
	if len(subtypes) > MaxTelemetryRequests {
		return packet.Block{}, &packet.RangeError{Field: "requested subtypes", Value: len(subtypes),
			Reason: fmt.Sprintf("at most %d", MaxTelemetryRequests)}
	}
	buf := make([]byte, TelemetryRequestSize)
	for i, sub := range subtypes {
		if !packet.ValidSubtype(packet.TypeData, sub) {
			return packet.Block{}, &packet.RangeError{Field: "requested subtype", Value: sub,
				Reason: "not a data subtype"}
		}
		buf[i] = 0x40 | byte(sub)
	}
	return packet.NewBlock(packet.TypeCommand, packet.CmdTelemetryRequest, dest, buf)
}

func DecodeTelemetryRequest(b packet.Block) (TelemetryRequest, error) {
	if err := expect(&b, packet.TypeCommand, packet.CmdTelemetryRequest, TelemetryRequestSize); err != nil {
		return TelemetryRequest{}, err
	}
	var req TelemetryRequest
	for _, c := range b.Payload[:TelemetryRequestSize] {
		if c&0x40 != 0 {
			req.Subtypes = append(req.Subtypes, packet.Subtype(c&0x3F))
		}
	}
	return req, nil
}

// Empty is a decoded header-only block such as a beacon or a command
// without arguments.
type Empty struct {
	Type    packet.BlockType
	Subtype packet.Subtype
}

// EncodeCommand builds an argument-free command block (reset, deploy, tare).
func EncodeCommand(dest packet.Address, sub packet.Subtype) (packet.Block, error) {
	if sub == packet.CmdTelemetryRequest {
		return packet.Block{}, &packet.RangeError{Field: "command", Value: sub,
			Reason: "telemetry request carries arguments"}
	}
	return packet.NewBlock(packet.TypeCommand, sub, dest, nil)
}

// EncodeBeacon builds a header-only beacon block.
func EncodeBeacon(dest packet.Address) (packet.Block, error) {
	return packet.NewBlock(packet.TypeControl, packet.CtrlBeacon, dest, nil)
}

func DecodeEmpty(b packet.Block) (Empty, error) {
	return Empty{Type: b.Type(), Subtype: b.Subtype()}, nil
}
