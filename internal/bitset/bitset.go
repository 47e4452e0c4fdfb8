package bitset

import "math/bits"

// Words is a fixed-size bitset backed by uint64 words.
// It is not safe for concurrent mutation; callers own the single-writer contract.
type Words []uint64

// Make returns a Words bitset able to hold nbits bits, all clear.
func Make(nbits int) Words {
	return make(Words, (nbits+63)/64)
}

// Test returns true if bit i is set. Out-of-range bits read as clear.
func (w Words) Test(i int) bool {
	wordIdx := i >> 6
	if wordIdx >= len(w) {
		return false
	}
	return w[wordIdx]&(uint64(1)<<(i&63)) != 0
}

// Set sets bit i. The bit must be within the size given to Make.
func (w Words) Set(i int) {
	w[i>>6] |= uint64(1) << (i & 63)
}

// Clear clears bit i. The bit must be within the size given to Make.
func (w Words) Clear(i int) {
	w[i>>6] &^= uint64(1) << (i & 63)
}

// SetTo sets bit i to v.
func (w Words) SetTo(i int, v bool) {
	if v {
		w.Set(i)
	} else {
		w.Clear(i)
	}
}

// Count returns the number of set bits.
func (w Words) Count() int {
	n := 0
	for _, word := range w {
		if word != 0 {
			n += bits.OnesCount64(word)
		}
	}
	return n
}

// NextSet returns the index of the first set bit at or after i, or -1 if
// no bit is set in the remainder of the set.
func (w Words) NextSet(i int) int {
	if i < 0 {
		i = 0
	}
	wordIdx := i >> 6
	if wordIdx >= len(w) {
		return -1
	}

	// Mask out bits below i in the first word.
	word := w[wordIdx] &^ ((uint64(1) << (i & 63)) - 1)
	for {
		if word != 0 {
			return wordIdx<<6 + bits.TrailingZeros64(word)
		}
		wordIdx++
		if wordIdx >= len(w) {
			return -1
		}
		word = w[wordIdx]
	}
}

// Rank returns the number of set bits in [0, i]. With bit i clear, Rank(i)
// is the insertion position that keeps a rank-ordered side array sorted;
// with bit i set, Rank(i)-1 is the element's position in that array.
func (w Words) Rank(i int) int {
	wordIdx := i >> 6
	n := 0
	for j := 0; j < wordIdx; j++ {
		n += bits.OnesCount64(w[j])
	}
	mask := ^uint64(0) >> (63 - uint(i&63))
	return n + bits.OnesCount64(w[wordIdx]&mask)
}

// ClearAll clears every bit without releasing the backing words.
func (w Words) ClearAll() {
	for i := range w {
		w[i] = 0
	}
}

// Clone returns an independent copy.
func (w Words) Clone() Words {
	c := make(Words, len(w))
	copy(c, w)
	return c
}

// Any returns true if at least one bit is set.
func (w Words) Any() bool {
	for _, word := range w {
		if word != 0 {
			return true
		}
	}
	return false
}
