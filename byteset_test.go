package nilmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestByteSet(t *testing.T) {
	t.Run("AddContainsRemove", func(t *testing.T) {
		s := NewByteSet()

		require.True(t, s.Add(0))
		require.True(t, s.Add(255))
		require.False(t, s.Add(0))
		assert.True(t, s.Contains(0))
		assert.True(t, s.Contains(255))
		assert.False(t, s.Contains(1))
		assert.Equal(t, 2, s.Len())

		require.True(t, s.Remove(0))
		require.False(t, s.Remove(0))
		assert.Equal(t, 1, s.Len())
	})

	t.Run("NullKey", func(t *testing.T) {
		s := NewByteSet()

		require.True(t, s.AddNullKey())
		require.False(t, s.AddNullKey())
		assert.Equal(t, 1, s.Len())
		assert.False(t, s.IsEmpty())

		tok := s.First()
		require.True(t, s.IsNullKey(tok))
		assert.Panics(t, func() { s.Key(tok) })

		require.True(t, s.RemoveNullKey())
		assert.True(t, s.IsEmpty())
		assert.Equal(t, Done, s.First())
	})

	t.Run("AscendingIteration", func(t *testing.T) {
		s := NewByteSet()
		for _, k := range []byte{200, 3, 97, 0, 255} {
			s.Add(k)
		}
		s.AddNullKey()

		got := []byte{}
		sawNullKey := false
		for tok := s.First(); tok != Done; tok = s.Next(tok) {
			if s.IsNullKey(tok) {
				sawNullKey = true
				continue
			}
			got = append(got, s.Key(tok))
		}
		assert.Equal(t, []byte{0, 3, 97, 200, 255}, got)
		assert.True(t, sawNullKey)

		got = got[:0]
		for k := range s.All() {
			got = append(got, k)
		}
		assert.Equal(t, []byte{0, 3, 97, 200, 255}, got)
	})

	t.Run("StaleToken", func(t *testing.T) {
		s := NewByteSet()
		s.Add(1)

		tok := s.First()
		s.Add(2)
		requirePanicsIs(t, ErrStaleToken, func() { s.Next(tok) })

		tok = s.First()
		s.Remove(2)
		requirePanicsIs(t, ErrStaleToken, func() { s.Key(tok) })

		tok = s.First()
		s.Add(1) // already present, not structural
		assert.NotPanics(t, func() { s.Next(tok) })
	})

	t.Run("CloneAndClear", func(t *testing.T) {
		s := NewByteSet()
		s.Add(5)
		s.AddNullKey()

		c := s.Clone()
		s.Remove(5)
		assert.True(t, c.Contains(5))
		assert.True(t, c.HasNullKey())

		c.Clear()
		assert.True(t, c.IsEmpty())
		assert.False(t, c.HasNullKey())
	})

	t.Run("FullDomain", func(t *testing.T) {
		s := NewByteSet()
		for k := 0; k < 256; k++ {
			require.True(t, s.Add(byte(k)))
		}
		assert.Equal(t, 256, s.Len())

		n := 0
		for range s.All() {
			n++
		}
		assert.Equal(t, 256, n)
	})
}
