package assembler

import (
	"errors"
	"fmt"

	"downlink/blocks"
	"downlink/packet"
	"downlink/sensor"
)

// ErrUnknownTag is returned by Build for records it has no block for.
var ErrUnknownTag = errors.New("unknown sensor tag")

const (
	pascalsPerKilopascal = 1000
	coordsPerDegree      = 1e7
)

// Build turns a record into a block stamped with the current mission
// time. Records that only update state (time, fix type) return ok false.
func (a *Assembler) Build(r sensor.Record) (b packet.Block, ok bool, err error) {
	dest := a.cfg.Dest
	switch r.Tag {
	case sensor.TagTime:
		a.now = r.Millis
		return packet.Block{}, false, nil
	case sensor.TagFix:
		if err := packet.CheckBits("fix type", uint64(r.ID), 2); err != nil {
			return packet.Block{}, false, err
		}
		a.fix = blocks.FixType(r.ID)
		return packet.Block{}, false, nil

	case sensor.TagTemperature:
		b, err = blocks.EncodeTemperature(dest, a.now, float64(r.Value))
	case sensor.TagPressure:
		b, err = blocks.EncodePressure(dest, a.now, float64(r.Value)*pascalsPerKilopascal)
	case sensor.TagHumidity:
		b, err = blocks.EncodeHumidity(dest, a.now, float64(r.Value))
	case sensor.TagAltitudeRel:
		b, err = blocks.EncodeAltitude(dest, a.now, float64(r.Value))
	case sensor.TagAltitudeSea:
		b, err = blocks.EncodeAltitudeSea(dest, a.now, float64(r.Value))
	case sensor.TagAngularVel:
		v := r.Vector
		b, err = blocks.EncodeAngularVelocity(dest, a.now, float64(v.X), float64(v.Y), float64(v.Z))
	case sensor.TagLinearAccelRel, sensor.TagLinearAccelAbs:
		v := r.Vector
		b, err = blocks.EncodeAcceleration(dest, a.now, float64(v.X), float64(v.Y), float64(v.Z))
	case sensor.TagCoords:
		b, err = blocks.EncodeGNSSLocation(dest, blocks.GNSSLocation{
			FixTime:   a.now,
			Latitude:  float64(r.Lat) / coordsPerDegree,
			Longitude: float64(r.Lon) / coordsPerDegree,
			Fix:       a.fix,
		})
	case sensor.TagVoltage:
		b, err = blocks.EncodePowerInfo(dest, a.now, r.ID, float64(r.Value))
	default:
		return packet.Block{}, false, fmt.Errorf("%w: %s", ErrUnknownTag, r.Tag)
	}
	if err != nil {
		return packet.Block{}, false, fmt.Errorf("%s: %w", r.Tag, err)
	}
	return b, true, nil
}

// MissionTime is the time stamped on blocks built from now on.
func (a *Assembler) MissionTime() uint32 { return a.now }
