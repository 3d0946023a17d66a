// Package sensor models the tagged measurement records produced by the
// flight computer's acquisition process and the sources that deliver them.
package sensor

import "fmt"

// Tag identifies the quantity carried by a Record.
type Tag uint8

const (
	TagTemperature    Tag = 0x0 // degrees Celsius
	TagPressure       Tag = 0x1 // kilopascals
	TagHumidity       Tag = 0x2 // % relative humidity
	TagTime           Tag = 0x3 // mission milliseconds
	TagAltitudeSea    Tag = 0x4 // metres above mean sea level
	TagAltitudeRel    Tag = 0x5 // metres above the launch site
	TagAngularVel     Tag = 0x6 // degrees per second
	TagLinearAccelRel Tag = 0x7 // m/s^2, gravity removed
	TagLinearAccelAbs Tag = 0x8 // m/s^2
	TagCoords         Tag = 0x9 // 1e-7 degrees
	TagVoltage        Tag = 0xA // volts with a rail id
	TagFix            Tag = 0xB // GNSS fix type
)

var tagNames = map[Tag]string{
	TagTemperature:    "temperature",
	TagPressure:       "pressure",
	TagHumidity:       "humidity",
	TagTime:           "time",
	TagAltitudeSea:    "altitude_sea",
	TagAltitudeRel:    "altitude_rel",
	TagAngularVel:     "angular_vel",
	TagLinearAccelRel: "linear_accel_rel",
	TagLinearAccelAbs: "linear_accel_abs",
	TagCoords:         "coords",
	TagVoltage:        "voltage",
	TagFix:            "fix",
}

// Known reports whether t is a tag the flight software defines.
func (t Tag) Known() bool {
	_, ok := tagNames[t]
	return ok
}

func (t Tag) String() string {
	if n, ok := tagNames[t]; ok {
		return n
	}
	return fmt.Sprintf("tag(0x%X)", uint8(t))
}

// Vec3 is a three-axis reading.
type Vec3 struct {
	X, Y, Z float32
}

// Record is one measurement. Only the fields relevant to Tag are set.
type Record struct {
	Tag      Tag
	Value    float32 // scalar readings and volts
	Vector   Vec3
	Lat, Lon int32  // TagCoords, 1e-7 degrees
	Millis   uint32 // TagTime
	ID       uint8  // voltage rail, or fix type for TagFix
}

func Temperature(celsius float32) Record { return Record{Tag: TagTemperature, Value: celsius} }
func Pressure(kpa float32) Record        { return Record{Tag: TagPressure, Value: kpa} }
func Humidity(percent float32) Record    { return Record{Tag: TagHumidity, Value: percent} }
func Time(ms uint32) Record              { return Record{Tag: TagTime, Millis: ms} }
func AltitudeSea(m float32) Record       { return Record{Tag: TagAltitudeSea, Value: m} }
func AltitudeRel(m float32) Record       { return Record{Tag: TagAltitudeRel, Value: m} }
func Fix(fix uint8) Record               { return Record{Tag: TagFix, ID: fix} }

func AngularVelocity(x, y, z float32) Record {
	return Record{Tag: TagAngularVel, Vector: Vec3{x, y, z}}
}

// Acceleration builds a relative (gravity removed) acceleration record.
func Acceleration(x, y, z float32) Record {
	return Record{Tag: TagLinearAccelRel, Vector: Vec3{x, y, z}}
}

// Coords takes latitude and longitude in 1e-7 degrees.
func Coords(lat, lon int32) Record {
	return Record{Tag: TagCoords, Lat: lat, Lon: lon}
}

func Voltage(id uint8, volts float32) Record {
	return Record{Tag: TagVoltage, ID: id, Value: volts}
}

func (r Record) String() string {
	switch r.Tag {
	case TagTime:
		return fmt.Sprintf("time %dms", r.Millis)
	case TagAngularVel, TagLinearAccelRel, TagLinearAccelAbs:
		return fmt.Sprintf("%s (%g, %g, %g)", r.Tag, r.Vector.X, r.Vector.Y, r.Vector.Z)
	case TagCoords:
		return fmt.Sprintf("coords %d, %d", r.Lat, r.Lon)
	case TagVoltage:
		return fmt.Sprintf("voltage #%d %gV", r.ID, r.Value)
	case TagFix:
		return fmt.Sprintf("fix %d", r.ID)
	default:
		return fmt.Sprintf("%s %g", r.Tag, r.Value)
	}
}
