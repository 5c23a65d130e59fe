package tensor

import "math"

// MaxFloat16 is the largest finite IEEE 754 half-precision value.
const MaxFloat16 = 65504.0

// FP16ToFloat32 converts IEEE 754 half-precision bits to single-precision.
// Handles zero, subnormal, normal, infinity and NaN.
func FP16ToFloat32(h uint16) float32 {
	sign := uint32(h>>15) & 0x1
	exp := uint32(h>>10) & 0x1F
	frac := uint32(h) & 0x3FF

	var bits uint32
	switch {
	case exp == 0 && frac == 0:
		bits = sign << 31
	case exp == 0:
		// Subnormal: normalize into float32 range.
		e := int32(1)
		for frac&0x400 == 0 {
			frac <<= 1
			e--
		}
		frac &= 0x3FF
		bits = (sign << 31) | uint32(e+127-15)<<23 | (frac << 13)
	case exp == 31:
		bits = (sign << 31) | (0xFF << 23) | (frac << 13)
	default:
		bits = (sign << 31) | ((exp + 127 - 15) << 23) | (frac << 13)
	}
	return math.Float32frombits(bits)
}

// Float32ToFP16 converts float32 to IEEE 754 half-precision bits with
// round-to-nearest-even. Values beyond the half range overflow to ±Inf,
// values below the smallest subnormal flush to signed zero.
func Float32ToFP16(f float32) uint16 {
	bits := math.Float32bits(f)
	sign := uint16(bits>>16) & 0x8000
	exp := int32(bits>>23) & 0xFF
	frac := bits & 0x7FFFFF

	if exp == 0xFF {
		if frac == 0 {
			return sign | 0x7C00
		}
		// Keep NaN a NaN even if the payload lives in the low bits.
		return sign | 0x7C00 | uint16(frac>>13) | 0x200
	}

	e := exp - 127 + 15
	if e >= 31 {
		return sign | 0x7C00
	}

	if e <= 0 {
		if e < -10 {
			return sign
		}
		// Subnormal half: shift the implicit leading one into the fraction.
		m := frac | 0x800000
		shift := uint32(14 - e)
		half := uint16(m >> shift)
		rem := m & (1<<shift - 1)
		mid := uint32(1) << (shift - 1)
		if rem > mid || (rem == mid && half&1 == 1) {
			half++
		}
		return sign | half
	}

	half := uint16(e)<<10 | uint16(frac>>13)
	rem := frac & 0x1FFF
	if rem > 0x1000 || (rem == 0x1000 && half&1 == 1) {
		// Carry may roll the exponent into 31, which correctly yields Inf.
		half++
	}
	return sign | half
}
