package nilmap

import "github.com/hupe1980/nilmap/internal/bitset"

// flatDomain is the slot count of the dense store: the whole 16-bit key
// domain, addressed directly by key bits.
const flatDomain = 1 << 16

// flatStore backs 16-bit-keyed containers after the flat switch. Values
// are indexed by key bits, presence and null flags live in bitsets, and no
// hashing or chaining happens at all.
type flatStore[V any] struct {
	present bitset.Words
	hasBits bitset.Words
	values  []V
	count   int
}

func newFlatStore[V any]() *flatStore[V] {
	return &flatStore[V]{
		present: bitset.Make(flatDomain),
		hasBits: bitset.Make(flatDomain),
		values:  make([]V, flatDomain),
	}
}

// put stores a real (has=true) or null value at idx. Reports whether idx
// was previously absent.
func (f *flatStore[V]) put(idx int, v V, has bool) bool {
	inserted := !f.present.Test(idx)
	if inserted {
		f.present.Set(idx)
		f.count++
	}
	if has {
		f.values[idx] = v
		f.hasBits.Set(idx)
		return inserted
	}
	var zero V
	f.values[idx] = zero
	f.hasBits.Clear(idx)
	return inserted
}

func (f *flatStore[V]) contains(idx int) bool {
	return f.present.Test(idx)
}

// value returns the value at a present idx and whether it is real.
func (f *flatStore[V]) value(idx int) (V, bool) {
	if !f.hasBits.Test(idx) {
		var zero V
		return zero, false
	}
	return f.values[idx], true
}

func (f *flatStore[V]) remove(idx int) bool {
	if !f.present.Test(idx) {
		return false
	}
	f.present.Clear(idx)
	f.hasBits.Clear(idx)
	var zero V
	f.values[idx] = zero
	f.count--
	return true
}

// firstSlot and nextSlot iterate present slots in ascending key-bit order.
func (f *flatStore[V]) firstSlot() int32 {
	return int32(f.present.NextSet(0))
}

func (f *flatStore[V]) nextSlot(i int32) int32 {
	return int32(f.present.NextSet(int(i) + 1))
}

func (f *flatStore[V]) clear() {
	f.present.ClearAll()
	f.hasBits.ClearAll()
	clear(f.values)
	f.count = 0
}

func (f *flatStore[V]) clone() *flatStore[V] {
	c := &flatStore[V]{
		present: f.present.Clone(),
		hasBits: f.hasBits.Clone(),
		values:  make([]V, len(f.values)),
		count:   f.count,
	}
	copy(c.values, f.values)
	return c
}
