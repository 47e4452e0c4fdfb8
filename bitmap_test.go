package nilmap

import (
	"math"
	"testing"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetBitmap(t *testing.T) {
	t.Run("ExportIntegerKeys", func(t *testing.T) {
		s := NewSet[uint64](0)
		for _, k := range []uint64{1, 5, 1 << 40} {
			s.Add(k)
		}
		s.AddNullKey() // not exportable, silently skipped

		rb := s.Bitmap()
		assert.Equal(t, uint64(3), rb.GetCardinality())
		assert.True(t, rb.Contains(1))
		assert.True(t, rb.Contains(5))
		assert.True(t, rb.Contains(1<<40))
	})

	t.Run("RoundTrip", func(t *testing.T) {
		s := NewSet[int32](0)
		for _, k := range []int32{-5, 0, 7, 1 << 20} {
			s.Add(k)
		}

		back := FromBitmap[int32](s.Bitmap())
		assert.Equal(t, s.Len(), back.Len())
		for _, k := range []int32{-5, 0, 7, 1 << 20} {
			assert.True(t, back.Contains(k), "key %d", k)
		}
	})

	t.Run("FloatKeysUseBitPatterns", func(t *testing.T) {
		s := NewSet[float64](0)
		nan := math.NaN()
		s.Add(nan)
		s.Add(1.5)

		rb := s.Bitmap()
		assert.True(t, rb.Contains(math.Float64bits(nan)))
		assert.True(t, rb.Contains(math.Float64bits(1.5)))

		back := FromBitmap[float64](rb)
		assert.True(t, back.Contains(nan))
		assert.True(t, back.Contains(1.5))
	})

	t.Run("AddBitmapMerges", func(t *testing.T) {
		s := NewSet[uint32](0)
		s.Add(1)

		rb := roaring64.New()
		rb.AddMany([]uint64{1, 2, 3})

		added := s.AddBitmap(rb)
		assert.Equal(t, 2, added) // 1 was already a member
		assert.Equal(t, 3, s.Len())
	})

	t.Run("BitmapSetOperations", func(t *testing.T) {
		a := NewSet[uint64](0)
		b := NewSet[uint64](0)
		for _, k := range []uint64{1, 2, 3} {
			a.Add(k)
		}
		for _, k := range []uint64{2, 3, 4} {
			b.Add(k)
		}

		union := a.Bitmap()
		union.Or(b.Bitmap())
		merged := FromBitmap[uint64](union)
		assert.Equal(t, 4, merged.Len())

		inter := a.Bitmap()
		inter.And(b.Bitmap())
		common := FromBitmap[uint64](inter)
		assert.Equal(t, 2, common.Len())
		assert.True(t, common.Contains(2))
		assert.True(t, common.Contains(3))
		assert.False(t, common.Contains(1))
	})

	t.Run("EmptySet", func(t *testing.T) {
		s := NewSet[uint64](0)
		rb := s.Bitmap()
		require.True(t, rb.IsEmpty())

		back := FromBitmap[uint64](rb)
		assert.True(t, back.IsEmpty())
	})
}
