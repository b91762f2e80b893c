// Package safeconv provides integer conversions that panic on overflow.
package safeconv

import "math"

// MaxInt is the maximum value for int type (platform-dependent).
const MaxInt = int(^uint(0) >> 1)

// MustUintToInt converts uint to int, panics on overflow.
// Use only when overflow is logically impossible.
func MustUintToInt(v uint) int {
	if v > uint(MaxInt) {
		panic("safeconv: uint to int overflow")
	}

	return int(v)
}

// MustInt64ToUint64 converts int64 to uint64, panics if negative.
// Use only when negative values are logically impossible.
func MustInt64ToUint64(v int64) uint64 {
	if v < 0 {
		panic("safeconv: negative int64 to uint64 conversion")
	}

	return uint64(v)
}

// MustInt64ToUint32 converts int64 to uint32, panics on bounds violation.
// Use only when bounds violations are logically impossible.
func MustInt64ToUint32(v int64) uint32 {
	if v < 0 || v > math.MaxUint32 {
		panic("safeconv: int64 to uint32 out of bounds")
	}

	return uint32(v)
}
