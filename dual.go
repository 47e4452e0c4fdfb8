package nilmap

import (
	"fmt"
	"math/bits"
	"slices"

	"github.com/hupe1980/nilmap/internal/bitset"
)

// putResult reports what a dual.put call did. putNeedsMigration means the
// insert would grow past maxCap; the owning container must switch storage
// strategy and retry there.
type putResult uint8

const (
	putInserted putResult = iota
	putUpdated
	putNeedsMigration
)

// dual is the dual-region hash engine shared by the sparse containers.
//
// Slots live in one flat array split into two hole-free regions. The lo
// region [0, loSize) holds keys that collided on insert; each lo slot has a
// chain link to the next slot of its bucket. The hi region
// [cap-hiSize, cap) grows downward and holds keys that claimed an empty
// bucket; hi slots are always chain terminals and carry no link. A bucket
// stores a 1-based slot index (0 = empty) pointing at the chain head, so
// every chain is zero or more lo slots ending in exactly one hi slot.
//
// Inserting into an occupied bucket prepends a lo slot; inserting into an
// empty bucket claims the next hi slot. Removal keeps both regions
// hole-free by moving the region's last logical entry into the vacated slot
// and repairing the one pointer that referenced it. loSize+hiSize always
// equals the entry count, so the engine has no tombstones and iteration
// touches occupied slots only.
//
// Keys, equality and hashing are injected at construction; the engine never
// compares keys itself. With packed=true the value array holds only real
// values, rank-addressed through hasBits; otherwise values is a direct
// slot-indexed array and hasBits flags which slots hold a real value.
type dual[K any, V any] struct {
	hash func(K) uint64
	eq   func(K, K) bool

	keys    []K
	links   []int32 // chain links, defined for lo slots only
	buckets []int32 // 1-based chain heads, 0 = empty
	mask    uint64

	values  []V
	hasBits bitset.Words
	packed  bool

	loSize int
	hiSize int

	// maxCap, when non-zero, bounds growth: put reports putNeedsMigration
	// instead of resizing past it.
	maxCap int
}

func newDual[K any, V any](capacity int, packed bool, maxCap int, hash func(K) uint64, eq func(K, K) bool) *dual[K, V] {
	d := &dual[K, V]{
		hash:   hash,
		eq:     eq,
		packed: packed,
		maxCap: maxCap,
	}
	if capacity > 0 {
		d.alloc(capacity)
	}
	return d
}

func (d *dual[K, V]) size() int     { return d.loSize + d.hiSize }
func (d *dual[K, V]) capacity() int { return len(d.keys) }

// bucketCount returns the bucket-table size for a slot capacity: the next
// power of two at or above it, so bucket selection can mask the hash.
func bucketCount(capacity int) int {
	if capacity <= 1 {
		return 1
	}
	return 1 << bits.Len64(uint64(capacity-1))
}

func grownCapacity(capacity int) int { return capacity*2 + 1 }

func (d *dual[K, V]) alloc(capacity int) {
	d.keys = make([]K, capacity)
	d.links = make([]int32, capacity)
	d.buckets = make([]int32, bucketCount(capacity))
	d.mask = uint64(len(d.buckets) - 1)
	d.hasBits = bitset.Make(capacity)
	if d.packed {
		d.values = nil
	} else {
		d.values = make([]V, capacity)
	}
	d.loSize, d.hiSize = 0, 0
}

func (d *dual[K, V]) bucketIdx(k K) uint64 { return d.hash(k) & d.mask }

func (d *dual[K, V]) chainFault(b uint64, steps int) error {
	return fmt.Errorf("%w: walked %d nodes in bucket %d (lo region holds %d)",
		ErrCorruptChain, steps, b, d.loSize)
}

// findSlot returns the slot holding k, or -1. The walk is bounded: a chain
// can hold at most loSize lo slots plus one terminal, so a longer walk
// means the links are corrupt and the engine fails fast instead of looping.
func (d *dual[K, V]) findSlot(k K) int32 {
	if d.size() == 0 {
		return -1
	}
	b := d.bucketIdx(k)
	i := d.buckets[b] - 1
	if i < 0 {
		return -1
	}
	lo := int32(d.loSize)
	steps := 0
	for {
		if d.eq(d.keys[i], k) {
			return i
		}
		if i >= lo {
			return -1 // hi terminal reached, chain exhausted
		}
		steps++
		if steps > d.loSize {
			panic(d.chainFault(b, steps))
		}
		i = d.links[i]
	}
}

// slotValue returns the value of an occupied slot and whether it is real.
func (d *dual[K, V]) slotValue(i int32) (V, bool) {
	idx := int(i)
	if !d.hasBits.Test(idx) {
		var zero V
		return zero, false
	}
	if d.packed {
		return d.values[d.hasBits.Rank(idx)-1], true
	}
	return d.values[idx], true
}

// setSlotValue stores a real (has=true) or null value at an occupied slot.
func (d *dual[K, V]) setSlotValue(i int32, v V, has bool) {
	idx := int(i)
	had := d.hasBits.Test(idx)
	if d.packed {
		switch {
		case has && had:
			d.values[d.hasBits.Rank(idx)-1] = v
		case has && !had:
			// With the bit still clear, Rank is the insertion position.
			d.values = slices.Insert(d.values, d.hasBits.Rank(idx), v)
			d.hasBits.Set(idx)
		case !has && had:
			pos := d.hasBits.Rank(idx) - 1
			d.values = slices.Delete(d.values, pos, pos+1)
			d.hasBits.Clear(idx)
		}
		return
	}
	if has {
		d.values[idx] = v
		d.hasBits.Set(idx)
		return
	}
	var zero V
	d.values[idx] = zero // release anything the old value referenced
	d.hasBits.Clear(idx)
}

// moveSlot relocates the entry in src to the vacated slot dst. dst must
// hold no value bit. Chain links and pointers are the caller's business.
func (d *dual[K, V]) moveSlot(src, dst int32) {
	d.keys[dst] = d.keys[src]
	v, has := d.slotValue(src)
	var zeroV V
	d.setSlotValue(src, zeroV, false)
	d.setSlotValue(dst, v, has)
	var zeroK K
	d.keys[src] = zeroK
}

// put inserts k or overwrites its value. has=false stores the null value.
func (d *dual[K, V]) put(k K, v V, has bool) putResult {
	if i := d.findSlot(k); i >= 0 {
		d.setSlotValue(i, v, has)
		return putUpdated
	}
	if d.size() == len(d.keys) {
		newCap := grownCapacity(len(d.keys))
		if d.maxCap > 0 && newCap > d.maxCap {
			return putNeedsMigration
		}
		d.resize(newCap)
	}
	dst := d.insertKeyOnly(k)
	d.setSlotValue(dst, v, has)
	return putInserted
}

// insertKeyOnly links a key known to be absent and returns its slot: the
// next hi slot when its bucket is empty, otherwise a prepended lo slot.
func (d *dual[K, V]) insertKeyOnly(k K) int32 {
	b := d.bucketIdx(k)
	head := d.buckets[b] - 1
	var dst int32
	if head < 0 {
		d.hiSize++
		dst = int32(len(d.keys) - d.hiSize)
	} else {
		dst = int32(d.loSize)
		d.links[dst] = head
		d.loSize++
	}
	d.keys[dst] = k
	d.buckets[b] = dst + 1
	return dst
}

// resize rebuilds all regions at the new capacity, re-inserting the lo
// range and then the hi range. Keys are already unique, so duplicate
// checks are skipped.
func (d *dual[K, V]) resize(newCapacity int) {
	oldKeys := d.keys
	oldValues := d.values
	oldHas := d.hasBits
	oldLo := d.loSize
	oldHiStart := len(oldKeys) - d.hiSize

	oldValue := func(i int) (V, bool) {
		if !oldHas.Test(i) {
			var zero V
			return zero, false
		}
		if d.packed {
			return oldValues[oldHas.Rank(i)-1], true
		}
		return oldValues[i], true
	}

	d.alloc(newCapacity)

	// Packed values must end up ordered by new slot index; staging them in
	// a direct array first keeps the rebuild linear.
	var tmp []V
	var tmpHas bitset.Words
	if d.packed {
		tmp = make([]V, newCapacity)
		tmpHas = bitset.Make(newCapacity)
	}
	place := func(i int) {
		dst := d.insertKeyOnly(oldKeys[i])
		v, has := oldValue(i)
		if !has {
			return
		}
		if d.packed {
			tmp[dst] = v
			tmpHas.Set(int(dst))
		} else {
			d.values[dst] = v
			d.hasBits.Set(int(dst))
		}
	}
	for i := 0; i < oldLo; i++ {
		place(i)
	}
	for i := oldHiStart; i < len(oldKeys); i++ {
		place(i)
	}
	if d.packed {
		d.hasBits = tmpHas
		d.values = make([]V, 0, tmpHas.Count())
		for i := tmpHas.NextSet(0); i >= 0; i = tmpHas.NextSet(i + 1) {
			d.values = append(d.values, tmp[i])
		}
	}
}

// remove deletes k, compacting whichever region held it. Reports whether
// the key was present.
func (d *dual[K, V]) remove(k K) bool {
	if d.size() == 0 {
		return false
	}
	b := d.bucketIdx(k)
	head := d.buckets[b] - 1
	if head < 0 {
		return false
	}
	lo := int32(d.loSize)
	var zeroV V

	if head >= lo {
		// Chain of a single hi slot.
		if !d.eq(d.keys[head], k) {
			return false
		}
		d.buckets[b] = 0
		d.setSlotValue(head, zeroV, false)
		d.removeHi(head)
		return true
	}

	if d.eq(d.keys[head], k) {
		// Lo head: the next node becomes the chain head.
		d.buckets[b] = d.links[head] + 1
		d.setSlotValue(head, zeroV, false)
		d.removeLo(head)
		return true
	}

	// Walk with two trailing pointers; the hi-terminal case repairs the
	// predecessor's incoming pointer.
	prevPrev := int32(-1)
	prev := head
	i := d.links[head]
	steps := 1
	for {
		if d.eq(d.keys[i], k) {
			if i < lo {
				d.links[prev] = d.links[i]
				d.setSlotValue(i, zeroV, false)
				d.removeLo(i)
				return true
			}
			// Hi terminal with a lo predecessor: the hi slot must stay the
			// terminal, so the predecessor's entry moves into it and the
			// predecessor's lo slot is compacted instead.
			d.keys[i] = d.keys[prev]
			pv, pHas := d.slotValue(prev)
			d.setSlotValue(i, zeroV, false)
			d.setSlotValue(prev, zeroV, false)
			d.setSlotValue(i, pv, pHas)
			if prevPrev < 0 {
				d.buckets[b] = i + 1
			} else {
				d.links[prevPrev] = i
			}
			var zeroK K
			d.keys[prev] = zeroK
			d.removeLo(prev)
			return true
		}
		if i >= lo {
			return false
		}
		steps++
		if steps > d.loSize {
			panic(d.chainFault(b, steps))
		}
		prevPrev = prev
		prev = i
		i = d.links[i]
	}
}

// removeLo vacates a lo slot, moving the region's last logical entry into
// it so the region stays hole-free.
func (d *dual[K, V]) removeLo(slot int32) {
	src := int32(d.loSize - 1)
	if src != slot {
		d.links[slot] = d.links[src]
		d.repointTo(src, slot)
		d.moveSlot(src, slot)
	} else {
		var zeroK K
		d.keys[slot] = zeroK
	}
	d.loSize--
}

// removeHi vacates a hi slot. The region grows downward, so its last
// logical entry sits at the lowest hi index.
func (d *dual[K, V]) removeHi(slot int32) {
	src := int32(len(d.keys) - d.hiSize)
	if src != slot {
		d.repointTo(src, slot)
		d.moveSlot(src, slot)
	} else {
		var zeroK K
		d.keys[slot] = zeroK
	}
	d.hiSize--
}

// repointTo redirects the single pointer referencing slot src (a bucket
// head or a lo link) to dst. src must still hold its key.
func (d *dual[K, V]) repointTo(src, dst int32) {
	b := d.bucketIdx(d.keys[src])
	j := d.buckets[b] - 1
	if j == src {
		d.buckets[b] = dst + 1
		return
	}
	steps := 0
	for {
		steps++
		if steps > d.loSize {
			panic(d.chainFault(b, steps))
		}
		next := d.links[j]
		if next == src {
			d.links[j] = dst
			return
		}
		j = next
	}
}

// firstSlot returns the first occupied slot in region order (lo ascending,
// then hi ascending), or -1 when empty.
func (d *dual[K, V]) firstSlot() int32 {
	if d.loSize > 0 {
		return 0
	}
	if d.hiSize > 0 {
		return int32(len(d.keys) - d.hiSize)
	}
	return -1
}

// nextSlot returns the occupied slot after i in region order, or -1.
// i must be an occupied slot.
func (d *dual[K, V]) nextSlot(i int32) int32 {
	if i < int32(d.loSize) {
		if i+1 < int32(d.loSize) {
			return i + 1
		}
		if d.hiSize > 0 {
			return int32(len(d.keys) - d.hiSize)
		}
		return -1
	}
	if i+1 < int32(len(d.keys)) {
		return i + 1
	}
	return -1
}

func (d *dual[K, V]) clear() {
	clear(d.buckets)
	clear(d.keys)
	clear(d.values)
	if d.packed {
		d.values = d.values[:0]
	}
	d.hasBits.ClearAll()
	d.loSize, d.hiSize = 0, 0
}

func (d *dual[K, V]) clone() *dual[K, V] {
	c := *d
	c.keys = slices.Clone(d.keys)
	c.links = slices.Clone(d.links)
	c.buckets = slices.Clone(d.buckets)
	c.values = slices.Clone(d.values)
	c.hasBits = d.hasBits.Clone()
	return &c
}

// checkInvariants validates the region and chain structure. Tests call it
// after mutations; it is not wired into the hot path.
func (d *dual[K, V]) checkInvariants() error {
	capacity := len(d.keys)
	if d.loSize < 0 || d.hiSize < 0 || d.size() > capacity {
		return fmt.Errorf("region sizes out of range: lo=%d hi=%d cap=%d", d.loSize, d.hiSize, capacity)
	}
	hiStart := capacity - d.hiSize

	seen := bitset.Make(capacity)
	nodes := 0
	for b, head := range d.buckets {
		i := head - 1
		if i < 0 {
			continue
		}
		steps := 0
		for {
			if i < 0 || int(i) >= capacity || (i >= int32(d.loSize) && int(i) < hiStart) {
				return fmt.Errorf("bucket %d: slot %d outside both regions", b, i)
			}
			if seen.Test(int(i)) {
				return fmt.Errorf("bucket %d: slot %d referenced twice", b, i)
			}
			seen.Set(int(i))
			nodes++
			if i >= int32(d.loSize) {
				break // hi terminal
			}
			steps++
			if steps > d.loSize {
				return fmt.Errorf("bucket %d: chain exceeds lo region size %d", b, d.loSize)
			}
			i = d.links[i]
		}
	}
	if nodes != d.size() {
		return fmt.Errorf("chains cover %d slots, regions hold %d", nodes, d.size())
	}
	for i := 0; i < capacity; i++ {
		occupied := i < d.loSize || i >= hiStart
		if occupied && !seen.Test(i) {
			return fmt.Errorf("slot %d occupied but unreachable", i)
		}
		if !occupied && d.hasBits.Test(i) {
			return fmt.Errorf("slot %d vacant but flagged as holding a value", i)
		}
	}
	if d.packed && len(d.values) != d.hasBits.Count() {
		return fmt.Errorf("packed values hold %d entries, bitset says %d", len(d.values), d.hasBits.Count())
	}
	return nil
}
