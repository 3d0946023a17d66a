package blocks

import (
	"encoding/binary"
	"fmt"

	"downlink/packet"
)

// FixType is the 2-bit GNSS fix quality.
type FixType uint8

const (
	FixUnknown FixType = 0
	FixNone    FixType = 1
	Fix2D      FixType = 2
	Fix3D      FixType = 3
)

func (f FixType) String() string {
	switch f {
	case FixUnknown:
		return "unknown"
	case FixNone:
		return "none"
	case Fix2D:
		return "2D"
	case Fix3D:
		return "3D"
	default:
		return fmt.Sprintf("fix(%d)", uint8(f))
	}
}

// GNSSLocation is a position fix. Encoding takes physical units and
// decoding returns them, quantized to the wire resolution.
type GNSSLocation struct {
	FixTime    uint32  // mission ms when the fix was taken
	Latitude   float64 // degrees, north positive
	Longitude  float64 // degrees, east positive
	UTCTime    uint32  // ms since UTC midnight
	Altitude   float64 // metres above mean sea level
	Speed      float64 // m/s over ground
	Course     float64 // degrees from true north
	PDOP       float64
	HDOP       float64
	VDOP       float64
	Satellites uint8
	Fix        FixType
}

// EncodeGNSSLocation builds a GNSS location block.
func EncodeGNSSLocation(dest packet.Address, loc GNSSLocation) (packet.Block, error) {
	lat, err := packet.ScaleInt32("latitude", loc.Latitude, ArcminUnitsPerDegree)
	if err != nil {
		return packet.Block{}, err
	}
	lon, err := packet.ScaleInt32("longitude", loc.Longitude, ArcminUnitsPerDegree)
	if err != nil {
		return packet.Block{}, err
	}
	alt, err := packet.ScaleInt32("gnss altitude", loc.Altitude, MillimetresPerMetre)
	if err != nil {
		return packet.Block{}, err
	}
	speed, err := packet.ScaleInt16("speed", loc.Speed, CentiPerUnit)
	if err != nil {
		return packet.Block{}, err
	}
	course, err := packet.ScaleUint16("course", loc.Course, CentiPerUnit)
	if err != nil {
		return packet.Block{}, err
	}
	var dop [3]uint16
	for i, v := range [3]float64{loc.PDOP, loc.HDOP, loc.VDOP} {
		if dop[i], err = packet.ScaleUint16("dilution of precision", v, CentiPerUnit); err != nil {
			return packet.Block{}, err
		}
	}
	if err := packet.CheckBits("fix type", uint64(loc.Fix), 2); err != nil {
		return packet.Block{}, err
	}

	buf := make([]byte, GNSSLocationSize)
	binary.BigEndian.PutUint32(buf[0:4], loc.FixTime)
	binary.BigEndian.PutUint32(buf[4:8], uint32(lat))
	binary.BigEndian.PutUint32(buf[8:12], uint32(lon))
	binary.BigEndian.PutUint32(buf[12:16], loc.UTCTime)
	binary.BigEndian.PutUint32(buf[16:20], uint32(alt))
	binary.BigEndian.PutUint16(buf[20:22], uint16(speed))
	binary.BigEndian.PutUint16(buf[22:24], course)
	binary.BigEndian.PutUint16(buf[24:26], dop[0])
	binary.BigEndian.PutUint16(buf[26:28], dop[1])
	binary.BigEndian.PutUint16(buf[28:30], dop[2])
	buf[30] = loc.Satellites
	buf[31] = byte(loc.Fix) << 6
	return data(packet.DataGNSSLocation, dest, buf)
}

func DecodeGNSSLocation(b packet.Block) (GNSSLocation, error) {
	if err := expect(&b, packet.TypeData, packet.DataGNSSLocation, GNSSLocationSize); err != nil {
		return GNSSLocation{}, err
	}
	p := b.Payload
	be := binary.BigEndian
	return GNSSLocation{
		FixTime:    be.Uint32(p[0:4]),
		Latitude:   float64(int32(be.Uint32(p[4:8]))) / ArcminUnitsPerDegree,
		Longitude:  float64(int32(be.Uint32(p[8:12]))) / ArcminUnitsPerDegree,
		UTCTime:    be.Uint32(p[12:16]),
		Altitude:   float64(int32(be.Uint32(p[16:20]))) / MillimetresPerMetre,
		Speed:      float64(int16(be.Uint16(p[20:22]))) / CentiPerUnit,
		Course:     float64(be.Uint16(p[22:24])) / CentiPerUnit,
		PDOP:       float64(be.Uint16(p[24:26])) / CentiPerUnit,
		HDOP:       float64(be.Uint16(p[26:28])) / CentiPerUnit,
		VDOP:       float64(be.Uint16(p[28:30])) / CentiPerUnit,
		Satellites: p[30],
		Fix:        FixType(p[31] >> 6),
	}, nil
}

// Constellation selects the satellite system of a Satellite entry.
type Constellation uint8

const (
	GPS     Constellation = 0
	GLONASS Constellation = 1
)

// Satellite is one entry in a GNSS metadata block.
type Satellite struct {
	Constellation Constellation
	PRN           uint8  // 6 bits
	Elevation     uint8  // degrees
	SNR           uint8  // dB-Hz
	Azimuth       uint16 // degrees, 9 bits
}

// GNSSMetadata lists the satellites in view and which are used in the fix.
type GNSSMetadata struct {
	Time         uint32
	GPSInUse     uint32 // bit n set when GPS PRN n+1 is used
	GLONASSInUse uint32
	Satellites   []Satellite
}

// MaxSatellites is the number of entries that fit in one block.
const MaxSatellites = (packet.MaxBlockPayload - gnssMetaFixedSize) / satelliteSize

// EncodeGNSSMetadata builds a GNSS metadata block. At most MaxSatellites
// entries fit; callers split longer lists across blocks.
func EncodeGNSSMetadata(dest packet.Address, meta GNSSMetadata) (packet.Block, error) {
	if len(meta.Satellites) > MaxSatellites {
		return packet.Block{}, &packet.RangeError{Field: "satellites", Value: len(meta.Satellites),
			Reason: fmt.Sprintf("at most %d per block", MaxSatellites)}
	}
	buf := make([]byte, gnssMetaFixedSize+satelliteSize*len(meta.Satellites))
	binary.BigEndian.PutUint32(buf[0:4], meta.Time)
	binary.BigEndian.PutUint32(buf[4:8], meta.GPSInUse)
	binary.BigEndian.PutUint32(buf[8:12], meta.GLONASSInUse)
	for i, s := range meta.Satellites {
		if err := packet.CheckBits("constellation", uint64(s.Constellation), 1); err != nil {
			return packet.Block{}, err
		}
		if err := packet.CheckBits("prn", uint64(s.PRN), 6); err != nil {
			return packet.Block{}, err
		}
		if err := packet.CheckBits("azimuth", uint64(s.Azimuth), 9); err != nil {
			return packet.Block{}, err
		}
		off := gnssMetaFixedSize + i*satelliteSize
		buf[off] = s.Elevation
		buf[off+1] = s.SNR
		packed := uint16(s.Constellation)<<15 | uint16(s.PRN)<<9 | s.Azimuth
		binary.BigEndian.PutUint16(buf[off+2:off+4], packed)
	}
	return data(packet.DataGNSSMetadata, dest, buf)
}

func DecodeGNSSMetadata(b packet.Block) (GNSSMetadata, error) {
	if err := expect(&b, packet.TypeData, packet.DataGNSSMetadata, gnssMetaFixedSize); err != nil {
		return GNSSMetadata{}, err
	}
	p := b.Payload
	meta := GNSSMetadata{
		Time:         binary.BigEndian.Uint32(p[0:4]),
		GPSInUse:     binary.BigEndian.Uint32(p[4:8]),
		GLONASSInUse: binary.BigEndian.Uint32(p[8:12]),
	}
	for off := gnssMetaFixedSize; off+satelliteSize <= len(p); off += satelliteSize {
		packed := binary.BigEndian.Uint16(p[off+2 : off+4])
		meta.Satellites = append(meta.Satellites, Satellite{
			Constellation: Constellation(packed >> 15),
			PRN:           uint8(packed>>9) & 0x3F,
			Elevation:     p[off],
			SNR:           p[off+1],
			Azimuth:       packed & 0x1FF,
		})
	}
	return meta, nil
}
