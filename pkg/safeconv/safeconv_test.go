package safeconv_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Sumatoshi-tech/tuimigrate/pkg/safeconv"
)

func TestMustUintToInt(t *testing.T) {
	t.Parallel()

	t.Run("normal_value", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, 42, safeconv.MustUintToInt(42))
	})

	t.Run("max_int", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, safeconv.MaxInt, safeconv.MustUintToInt(uint(safeconv.MaxInt)))
	})

	t.Run("overflow_panics", func(t *testing.T) {
		t.Parallel()

		assert.PanicsWithValue(t, "safeconv: uint to int overflow", func() {
			safeconv.MustUintToInt(uint(safeconv.MaxInt) + 1)
		})
	})
}

func TestMustInt64ToUint64(t *testing.T) {
	t.Parallel()

	t.Run("normal_value", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, uint64(1024), safeconv.MustInt64ToUint64(1024))
	})

	t.Run("negative_panics", func(t *testing.T) {
		t.Parallel()

		assert.PanicsWithValue(t, "safeconv: negative int64 to uint64 conversion", func() {
			safeconv.MustInt64ToUint64(-1)
		})
	})
}

func TestMustInt64ToUint32(t *testing.T) {
	t.Parallel()

	t.Run("normal_value", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, uint32(0o644), safeconv.MustInt64ToUint32(0o644))
	})

	t.Run("max", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, uint32(math.MaxUint32), safeconv.MustInt64ToUint32(math.MaxUint32))
	})

	t.Run("negative_panics", func(t *testing.T) {
		t.Parallel()

		assert.PanicsWithValue(t, "safeconv: int64 to uint32 out of bounds", func() {
			safeconv.MustInt64ToUint32(-1)
		})
	})

	t.Run("overflow_panics", func(t *testing.T) {
		t.Parallel()

		assert.PanicsWithValue(t, "safeconv: int64 to uint32 out of bounds", func() {
			safeconv.MustInt64ToUint32(math.MaxUint32 + 1)
		})
	})
}
