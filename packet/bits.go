package packet

import "math"

// Bit fields are addressed by their highest and lowest bit inside a word,
// where bit 0 is the least significant bit. Header words are stored
// big-endian so the first declared field occupies the top bits.

func getField(word uint64, hi, lo uint) uint64 {
	width := hi - lo + 1
	return (word >> lo) & (1<<width - 1)
}

func setField(word uint64, hi, lo uint, v uint64) uint64 {
	width := hi - lo + 1
	mask := uint64(1<<width-1) << lo
	return (word &^ mask) | ((v << lo) & mask)
}

func fits(v uint64, width uint) bool {
	return v < 1<<width
}

// readUint48 and putUint48 move the six packed bytes of the packet header.
func readUint48(b []byte) uint64 {
	_ = b[5]
	return uint64(b[0])<<40 | uint64(b[1])<<32 | uint64(b[2])<<24 |
		uint64(b[3])<<16 | uint64(b[4])<<8 | uint64(b[5])
}

func putUint48(b []byte, v uint64) {
	_ = b[5]
	b[0] = byte(v >> 40)
	b[1] = byte(v >> 32)
	b[2] = byte(v >> 24)
	b[3] = byte(v >> 16)
	b[4] = byte(v >> 8)
	b[5] = byte(v)
}

// quantize converts a byte length into the 4-byte-unit, minus-one-biased
// length field. The caller checks the field width.
func quantize(total int) (uint64, bool) {
	if total < 4 || total%4 != 0 {
		return 0, false
	}
	return uint64(total/4 - 1), true
}

func dequantize(field uint64) int {
	return int(field+1) * 4
}

// scale multiplies a physical value by its wire scale factor and rounds
// half away from zero. NaN and infinities are rejected.
func scale(field string, v, factor float64) (float64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, rangeErr(field, v, "not a finite number")
	}
	return math.Round(v * factor), nil
}

// ScaleInt32 converts a physical value into a fixed-point int32.
func ScaleInt32(field string, v, factor float64) (int32, error) {
	s, err := scale(field, v, factor)
	if err != nil {
		return 0, err
	}
	if s < math.MinInt32 || s > math.MaxInt32 {
		return 0, rangeErr(field, v, "scaled value %.0f overflows int32", s)
	}
	return int32(s), nil
}

// ScaleUint32 converts a physical value into a fixed-point uint32.
func ScaleUint32(field string, v, factor float64) (uint32, error) {
	s, err := scale(field, v, factor)
	if err != nil {
		return 0, err
	}
	if s < 0 || s > math.MaxUint32 {
		return 0, rangeErr(field, v, "scaled value %.0f overflows uint32", s)
	}
	return uint32(s), nil
}

// ScaleInt16 converts a physical value into a fixed-point int16.
func ScaleInt16(field string, v, factor float64) (int16, error) {
	s, err := scale(field, v, factor)
	if err != nil {
		return 0, err
	}
	if s < math.MinInt16 || s > math.MaxInt16 {
		return 0, rangeErr(field, v, "scaled value %.0f overflows int16", s)
	}
	return int16(s), nil
}

// ScaleUint16 converts a physical value into a fixed-point uint16.
func ScaleUint16(field string, v, factor float64) (uint16, error) {
	s, err := scale(field, v, factor)
	if err != nil {
		return 0, err
	}
	if s < 0 || s > math.MaxUint16 {
		return 0, rangeErr(field, v, "scaled value %.0f overflows uint16", s)
	}
	return uint16(s), nil
}

// CheckInt8 validates an integer destined for a signed byte.
func CheckInt8(field string, v int) (int8, error) {
	if v < math.MinInt8 || v > math.MaxInt8 {
		return 0, rangeErr(field, v, "does not fit in int8")
	}
	return int8(v), nil
}

// CheckBits validates an unsigned integer destined for a width-bit field.
func CheckBits(field string, v uint64, width uint) error {
	if !fits(v, width) {
		return rangeErr(field, v, "does not fit in %d bits", width)
	}
	return nil
}
