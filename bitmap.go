package nilmap

import (
	"github.com/RoaringBitmap/roaring/v2/roaring64"
)

// Bitmap exports the set's members as a 64-bit Roaring Bitmap holding each
// key's bit pattern: the raw bits for integer keys, the IEEE-754 bits for
// float keys. The null key has no bit pattern and is not exported.
func (s *Set[K]) Bitmap() *roaring64.Bitmap {
	rb := roaring64.New()
	for k := range s.All() {
		rb.Add(s.m.codec.toBits(k))
	}
	return rb
}

// AddBitmap adds every bit pattern in rb as a key, decoded through the
// set's key type. It returns the number of keys newly added.
func (s *Set[K]) AddBitmap(rb *roaring64.Bitmap) int {
	added := 0
	it := rb.Iterator()
	for it.HasNext() {
		if s.Add(s.m.codec.fromBits(it.Next())) {
			added++
		}
	}
	return added
}

// FromBitmap builds a set holding one key per bit pattern in rb, decoded
// through K. Patterns that collapse under K's width map to the same key.
func FromBitmap[K Key](rb *roaring64.Bitmap, optFns ...Option) *Set[K] {
	s := NewSet[K](int(rb.GetCardinality()), optFns...)
	s.AddBitmap(rb)
	return s
}
