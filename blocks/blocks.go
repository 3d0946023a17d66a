// Package blocks encodes and decodes block payloads. Each payload is a
// fixed-point, big-endian record; physical values are scaled into integer
// fields so that no floating point crosses the link.
package blocks

import (
	"encoding/binary"
	"errors"

	"downlink/packet"
)

// Wire scale factors, physical unit to integer field.
const (
	MillidegreesPerDegree   = 1000   // temperature; pressure is sent in whole Pa
	HumidityUnitsPerPercent = 10000  // humidity, 1/10000 % RH
	MillimetresPerMetre     = 1000   // altitude
	CentimetresPerMetre     = 100    // acceleration, cm/s^2
	DecidegreesPerDegree    = 10     // angular velocity, 0.1 deg/s
	MillivoltsPerVolt       = 1000   // power rails
	ArcminUnitsPerDegree    = 600000 // latitude/longitude, 1e-4 arcminute
	CentiPerUnit            = 100    // speed cm/s, course, dilution of precision
)

// Payload sizes in bytes.
const (
	ScalarSize           = 8
	VectorSize           = 12
	PowerInfoSize        = 8
	SignalReportSize     = 4
	GNSSLocationSize     = 32
	TelemetryRequestSize = 4
	gnssMetaFixedSize    = 12
	satelliteSize        = 4
	messageTimeSize      = 4
)

// ErrUnsupported is returned by Decode for blocks this package carries but
// does not interpret.
var ErrUnsupported = errors.New("block payload not supported")

// Opaque is returned alongside ErrUnsupported so callers can still show the
// raw payload.
type Opaque struct {
	Name    string
	Payload []byte
}

func data(sub packet.Subtype, dest packet.Address, payload []byte) (packet.Block, error) {
	return packet.NewBlock(packet.TypeData, sub, dest, payload)
}

// expect checks that b carries typ/sub and that the payload length is
// acceptable before a decoder reads it.
func expect(b *packet.Block, typ packet.BlockType, sub packet.Subtype, size int) error {
	if b.Type() != typ || b.Subtype() != sub {
		return &packet.DecodeError{What: "payload", Reason: "expected " + typ.String() + "/" +
			packet.SubtypeName(typ, sub) + ", got " + b.Name()}
	}
	if len(b.Payload) < size {
		return &packet.DecodeError{What: packet.SubtypeName(typ, sub), Reason: "payload too short"}
	}
	return nil
}

func putScalar(t uint32, v uint32) []byte {
	buf := make([]byte, ScalarSize)
	binary.BigEndian.PutUint32(buf[0:4], t)
	binary.BigEndian.PutUint32(buf[4:8], v)
	return buf
}

func readScalar(b []byte) (uint32, uint32) {
	return binary.BigEndian.Uint32(b[0:4]), binary.BigEndian.Uint32(b[4:8])
}

// Decode interprets any block the package knows about. The concrete type of
// the returned value matches the subtype, e.g. Temperature or GNSSLocation.
func Decode(b packet.Block) (any, error) {
	switch b.Type() {
	case packet.TypeData:
		switch b.Subtype() {
		case packet.DataTemperature:
			return DecodeTemperature(b)
		case packet.DataPressure:
			return DecodePressure(b)
		case packet.DataHumidity:
			return DecodeHumidity(b)
		case packet.DataAltitude, packet.DataAltitudeSea:
			return DecodeAltitude(b)
		case packet.DataAcceleration:
			return DecodeAcceleration(b)
		case packet.DataAngularVelocity:
			return DecodeAngularVelocity(b)
		case packet.DataGNSSLocation:
			return DecodeGNSSLocation(b)
		case packet.DataGNSSMetadata:
			return DecodeGNSSMetadata(b)
		case packet.DataPowerInfo:
			return DecodePowerInfo(b)
		case packet.DataDebugMessage, packet.DataStatus, packet.DataStartupMessage:
			return DecodeMessage(b)
		}
	case packet.TypeControl:
		switch b.Subtype() {
		case packet.CtrlSignalReport:
			return DecodeSignalReport(b)
		case packet.CtrlBeacon, packet.CtrlBeaconResponse, packet.CtrlNonceRequest:
			return DecodeEmpty(b)
		}
	case packet.TypeCommand:
		switch b.Subtype() {
		case packet.CmdTelemetryRequest:
			return DecodeTelemetryRequest(b)
		case packet.CmdResetAvionics, packet.CmdDeployChute, packet.CmdTareSensors:
			return DecodeEmpty(b)
		}
	}
	return Opaque{Name: b.Name(), Payload: b.Payload}, ErrUnsupported
}
