package kvs

import "math"

// Bounds for the 64-bit integer variants expressed as the float64 values
// nearest the true limits, used for range checks before conversion. 2^63
// and 2^64 are exact in float64, so comparisons against them are exact even
// though MaxInt64/MaxUint64 themselves are not.
const (
	minI64AsFloat = -9223372036854775808.0 // -2^63, exact and inclusive
	maxI64AsFloat = 9223372036854775808.0  // 2^63, exact and exclusive
	maxU64AsFloat = 18446744073709551616.0 // 2^64, exact and exclusive
)

// floatToI32 converts f to int32 only if the conversion is lossless: no
// fractional part and within range. This is what rejects the open question
// from spec.md §9 ("t":"i32" with payload 2147483648.0).
func floatToI32(f float64) (int32, bool) {
	if f != math.Trunc(f) || f < math.MinInt32 || f > math.MaxInt32 {
		return 0, false
	}
	return int32(f), true
}

func floatToU32(f float64) (uint32, bool) {
	if f != math.Trunc(f) || f < 0 || f > math.MaxUint32 {
		return 0, false
	}
	return uint32(f), true
}

func floatToI64(f float64) (int64, bool) {
	if f != math.Trunc(f) || f < minI64AsFloat || f >= maxI64AsFloat {
		return 0, false
	}
	v := int64(f)
	if float64(v) != f {
		return 0, false
	}
	return v, true
}

func floatToU64(f float64) (uint64, bool) {
	if f != math.Trunc(f) || f < 0 || f >= maxU64AsFloat {
		return 0, false
	}
	v := uint64(f)
	if float64(v) != f {
		return 0, false
	}
	return v, true
}
