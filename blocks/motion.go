package blocks

import (
	"encoding/binary"

	"downlink/packet"
)

// Vector is a decoded three-axis block. Units depend on the subtype:
// cm/s^2 for acceleration, 0.1 deg/s for angular velocity.
type Vector struct {
	Time    uint32
	X, Y, Z int16
}

// EncodeAcceleration builds an acceleration block from m/s^2.
func EncodeAcceleration(dest packet.Address, time uint32, x, y, z float64) (packet.Block, error) {
	return encodeVector(packet.DataAcceleration, "acceleration", CentimetresPerMetre, dest, time, x, y, z)
}

// EncodeAngularVelocity builds an angular velocity block from deg/s.
func EncodeAngularVelocity(dest packet.Address, time uint32, x, y, z float64) (packet.Block, error) {
	return encodeVector(packet.DataAngularVelocity, "angular velocity", DecidegreesPerDegree, dest, time, x, y, z)
}

func encodeVector(sub packet.Subtype, field string, factor float64, dest packet.Address, time uint32, x, y, z float64) (packet.Block, error) {
	buf := make([]byte, VectorSize)
	binary.BigEndian.PutUint32(buf[0:4], time)
	for i, v := range [3]float64{x, y, z} {
		s, err := packet.ScaleInt16(field+" "+string(rune('x'+i)), v, factor)
		if err != nil {
			return packet.Block{}, err
		}
		binary.BigEndian.PutUint16(buf[4+2*i:], uint16(s))
	}
	// buf[10:12] reserved, zero
	return data(sub, dest, buf)
}

func decodeVector(b packet.Block, sub packet.Subtype) (Vector, error) {
	if err := expect(&b, packet.TypeData, sub, VectorSize); err != nil {
		return Vector{}, err
	}
	p := b.Payload
	return Vector{
		Time: binary.BigEndian.Uint32(p[0:4]),
		X:    int16(binary.BigEndian.Uint16(p[4:6])),
		Y:    int16(binary.BigEndian.Uint16(p[6:8])),
		Z:    int16(binary.BigEndian.Uint16(p[8:10])),
	}, nil
}

// Acceleration is a decoded acceleration block in cm/s^2.
type Acceleration struct{ Vector }

// MetresPerSecond2 returns the axes in m/s^2.
func (a Acceleration) MetresPerSecond2() (x, y, z float64) {
	return float64(a.X) / CentimetresPerMetre, float64(a.Y) / CentimetresPerMetre, float64(a.Z) / CentimetresPerMetre
}

func DecodeAcceleration(b packet.Block) (Acceleration, error) {
	v, err := decodeVector(b, packet.DataAcceleration)
	return Acceleration{v}, err
}

// AngularVelocity is a decoded angular velocity block in 0.1 deg/s.
type AngularVelocity struct{ Vector }

// DegreesPerSecond returns the axes in deg/s.
func (a AngularVelocity) DegreesPerSecond() (x, y, z float64) {
	return float64(a.X) / DecidegreesPerDegree, float64(a.Y) / DecidegreesPerDegree, float64(a.Z) / DecidegreesPerDegree
}

func DecodeAngularVelocity(b packet.Block) (AngularVelocity, error) {
	v, err := decodeVector(b, packet.DataAngularVelocity)
	return AngularVelocity{v}, err
}
