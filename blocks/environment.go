package blocks

import "downlink/packet"

// Temperature is a decoded temperature block.
type Temperature struct {
	Time         uint32 // mission ms
	Millidegrees int32
}

func (t Temperature) Celsius() float64 { return float64(t.Millidegrees) / MillidegreesPerDegree }

// EncodeTemperature builds a temperature block from degrees Celsius.
func EncodeTemperature(dest packet.Address, time uint32, celsius float64) (packet.Block, error) {
	v, err := packet.ScaleInt32("temperature", celsius, MillidegreesPerDegree)
	if err != nil {
		return packet.Block{}, err
	}
	return data(packet.DataTemperature, dest, putScalar(time, uint32(v)))
}

func DecodeTemperature(b packet.Block) (Temperature, error) {
	if err := expect(&b, packet.TypeData, packet.DataTemperature, ScalarSize); err != nil {
		return Temperature{}, err
	}
	t, v := readScalar(b.Payload)
	return Temperature{Time: t, Millidegrees: int32(v)}, nil
}

// Pressure is a decoded pressure block.
type Pressure struct {
	Time    uint32
	Pascals int32
}

// EncodePressure builds a pressure block from pascals.
func EncodePressure(dest packet.Address, time uint32, pascals float64) (packet.Block, error) {
	v, err := packet.ScaleInt32("pressure", pascals, 1)
	if err != nil {
		return packet.Block{}, err
	}
	return data(packet.DataPressure, dest, putScalar(time, uint32(v)))
}

func DecodePressure(b packet.Block) (Pressure, error) {
	if err := expect(&b, packet.TypeData, packet.DataPressure, ScalarSize); err != nil {
		return Pressure{}, err
	}
	t, v := readScalar(b.Payload)
	return Pressure{Time: t, Pascals: int32(v)}, nil
}

// Humidity is a decoded humidity block in 1/10000 % RH.
type Humidity struct {
	Time  uint32
	Units uint32
}

func (h Humidity) Percent() float64 { return float64(h.Units) / HumidityUnitsPerPercent }

// EncodeHumidity builds a humidity block from percent relative humidity.
func EncodeHumidity(dest packet.Address, time uint32, percent float64) (packet.Block, error) {
	v, err := packet.ScaleUint32("humidity", percent, HumidityUnitsPerPercent)
	if err != nil {
		return packet.Block{}, err
	}
	return data(packet.DataHumidity, dest, putScalar(time, v))
}

func DecodeHumidity(b packet.Block) (Humidity, error) {
	if err := expect(&b, packet.TypeData, packet.DataHumidity, ScalarSize); err != nil {
		return Humidity{}, err
	}
	t, v := readScalar(b.Payload)
	return Humidity{Time: t, Units: v}, nil
}

// Altitude is a decoded altitude block. SeaLevel distinguishes an altitude
// above mean sea level from the canonical altitude above the launch site.
type Altitude struct {
	Time        uint32
	Millimetres int32
	SeaLevel    bool
}

func (a Altitude) Metres() float64 { return float64(a.Millimetres) / MillimetresPerMetre }

// EncodeAltitude builds an altitude block, relative to launch, from metres.
func EncodeAltitude(dest packet.Address, time uint32, metres float64) (packet.Block, error) {
	return encodeAltitude(packet.DataAltitude, dest, time, metres)
}

// EncodeAltitudeSea builds an altitude block, relative to mean sea level,
// from metres.
func EncodeAltitudeSea(dest packet.Address, time uint32, metres float64) (packet.Block, error) {
	return encodeAltitude(packet.DataAltitudeSea, dest, time, metres)
}

func encodeAltitude(sub packet.Subtype, dest packet.Address, time uint32, metres float64) (packet.Block, error) {
	v, err := packet.ScaleInt32("altitude", metres, MillimetresPerMetre)
	if err != nil {
		return packet.Block{}, err
	}
	return data(sub, dest, putScalar(time, uint32(v)))
}

// DecodeAltitude accepts both altitude subtypes.
func DecodeAltitude(b packet.Block) (Altitude, error) {
	sub := packet.DataAltitude
	if b.Subtype() == packet.DataAltitudeSea {
		sub = packet.DataAltitudeSea
	}
	if err := expect(&b, packet.TypeData, sub, ScalarSize); err != nil {
		return Altitude{}, err
	}
	t, v := readScalar(b.Payload)
	return Altitude{Time: t, Millimetres: int32(v), SeaLevel: sub == packet.DataAltitudeSea}, nil
}
