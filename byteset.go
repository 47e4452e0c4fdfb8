package nilmap

import (
	"iter"

	"github.com/hupe1980/nilmap/internal/bitset"
)

// ByteSet is a membership container over the byte domain: 256 presence
// bits, a count and the optional null key. There is nothing to compress at
// this size, so it has a single layout and takes no options.
type ByteSet struct {
	present bitset.Words
	count   int
	version uint32

	hasNullKey bool
}

// NewByteSet creates an empty ByteSet.
func NewByteSet() *ByteSet {
	return &ByteSet{present: bitset.Make(byteDomain)}
}

// Add inserts k. Reports whether it was newly added.
func (s *ByteSet) Add(k byte) bool {
	idx := int(k)
	if s.present.Test(idx) {
		return false
	}
	s.present.Set(idx)
	s.count++
	s.version++
	return true
}

// AddNullKey inserts the null key. Reports whether it was newly added.
func (s *ByteSet) AddNullKey() bool {
	if s.hasNullKey {
		return false
	}
	s.hasNullKey = true
	s.version++
	return true
}

// Contains reports whether k is in the set.
func (s *ByteSet) Contains(k byte) bool {
	return s.present.Test(int(k))
}

// HasNullKey reports whether the null key is in the set.
func (s *ByteSet) HasNullKey() bool { return s.hasNullKey }

// Remove deletes k. Reports whether it was present.
func (s *ByteSet) Remove(k byte) bool {
	idx := int(k)
	if !s.present.Test(idx) {
		return false
	}
	s.present.Clear(idx)
	s.count--
	s.version++
	return true
}

// RemoveNullKey deletes the null key. Reports whether it was present.
func (s *ByteSet) RemoveNullKey() bool {
	if !s.hasNullKey {
		return false
	}
	s.hasNullKey = false
	s.version++
	return true
}

// Len returns the number of keys, the null key included.
func (s *ByteSet) Len() int {
	n := s.count
	if s.hasNullKey {
		n++
	}
	return n
}

// IsEmpty reports whether the set holds no keys.
func (s *ByteSet) IsEmpty() bool { return s.Len() == 0 }

// Clear removes every key.
func (s *ByteSet) Clear() {
	s.present.ClearAll()
	s.count = 0
	s.hasNullKey = false
	s.version++
}

// Clone returns a deep copy sharing no storage with s.
func (s *ByteSet) Clone() *ByteSet {
	c := *s
	c.present = s.present.Clone()
	return &c
}

// First returns a token for the first key, or Done when the set is empty.
// Keys iterate in ascending order with the null key last.
func (s *ByteSet) First() Token {
	i := s.present.NextSet(0)
	if i < 0 {
		if s.hasNullKey {
			return makeToken(s.version, byteNullKeySlot)
		}
		return Done
	}
	return makeToken(s.version, i)
}

// Next returns the token following t, or Done. It panics with an error
// wrapping ErrStaleToken after a structural mutation.
func (s *ByteSet) Next(t Token) Token {
	if t == Done {
		return Done
	}
	checkToken(t, s.version)
	return s.advance(t)
}

// UnsafeNext is Next without the stale-token check.
func (s *ByteSet) UnsafeNext(t Token) Token {
	if t == Done {
		return Done
	}
	return s.advance(t)
}

func (s *ByteSet) advance(t Token) Token {
	i := t.slot()
	if i == byteNullKeySlot {
		return Done
	}
	n := s.present.NextSet(i + 1)
	if n < 0 {
		if s.hasNullKey {
			return makeToken(t.version(), byteNullKeySlot)
		}
		return Done
	}
	return makeToken(t.version(), n)
}

// Key returns the key addressed by t. It panics on the null-key token;
// check IsNullKey first.
func (s *ByteSet) Key(t Token) byte {
	checkToken(t, s.version)
	i := t.slot()
	if i == byteNullKeySlot {
		panic("nilmap: Key called on the null-key token")
	}
	return byte(i)
}

// IsNullKey reports whether t addresses the null key.
func (s *ByteSet) IsNullKey(t Token) bool {
	checkToken(t, s.version)
	return t.slot() == byteNullKeySlot
}

// All returns an iterator over the keys in ascending order, excluding the
// null key.
func (s *ByteSet) All() iter.Seq[byte] {
	return func(yield func(byte) bool) {
		for t := s.First(); t != Done; t = s.Next(t) {
			if t.slot() == byteNullKeySlot {
				continue
			}
			if !yield(s.Key(t)) {
				return
			}
		}
	}
}
