package nilmap

import (
	"hash/maphash"
	"iter"
)

// HashedMap is an associative container for arbitrary key types, with the
// same null-value and null-key semantics as Map. The caller injects the
// key capability pair — an equality function and a seeded hash function —
// since arbitrary types carry no usable identity of their own.
//
// Values are stored packed: only real values consume value slots,
// rank-addressed through the null-overlay bitset, so maps whose entries
// are mostly null-valued hold no value array slack. The engine is always
// the sparse dual-region layout; there is no flat strategy for an
// unbounded key domain.
//
// Like Map, a HashedMap is single-writer with checked token iteration.
type HashedMap[K, V any] struct {
	seed maphash.Seed
	d    *dual[K, V]

	version uint32

	hasNullKey bool
	nullKeyVal V
	nullKeyHas bool

	logger  *Logger
	metrics MetricsCollector
}

// NewHashedMap creates a HashedMap from the key capability pair. equal
// must be an equivalence relation and hash must agree with it: keys that
// are equal must hash identically under the same seed. The map draws and
// owns its maphash.Seed; WithSeed has no effect here.
//
// Example with uuid keys:
//
//	m := nilmap.NewHashedMap[uuid.UUID, string](
//	    func(a, b uuid.UUID) bool { return a == b },
//	    func(seed maphash.Seed, k uuid.UUID) uint64 { return maphash.Bytes(seed, k[:]) },
//	    0,
//	)
func NewHashedMap[K, V any](
	equal func(K, K) bool,
	hash func(maphash.Seed, K) uint64,
	capacity int,
	optFns ...Option,
) *HashedMap[K, V] {
	o := applyOptions(optFns)
	seed := maphash.MakeSeed()
	m := &HashedMap[K, V]{
		seed:    seed,
		logger:  o.logger.WithContainer("hashedmap"),
		metrics: o.metricsCollector,
	}
	m.d = newDual[K, V](capacity, true, 0, func(k K) uint64 { return hash(seed, k) }, equal)
	return m
}

// Put maps k to v. Reports whether k was newly inserted; overwriting an
// existing entry keeps tokens valid.
func (m *HashedMap[K, V]) Put(k K, v V) bool {
	return m.putKey(k, v, true)
}

// PutNull maps k to the null value.
func (m *HashedMap[K, V]) PutNull(k K) bool {
	var zero V
	return m.putKey(k, zero, false)
}

func (m *HashedMap[K, V]) putKey(k K, v V, has bool) bool {
	oldCap := m.d.capacity()
	if m.d.put(k, v, has) != putInserted {
		return false
	}
	m.version++
	if c := m.d.capacity(); c != oldCap {
		m.logger.LogResize(oldCap, c, m.d.size())
		m.metrics.RecordResize(oldCap, c)
	}
	return true
}

// Lookup returns k's value and its Presence.
func (m *HashedMap[K, V]) Lookup(k K) (V, Presence) {
	i := m.d.findSlot(k)
	if i < 0 {
		var zero V
		return zero, Absent
	}
	v, has := m.d.slotValue(i)
	if !has {
		return v, Null
	}
	return v, Present
}

// Get returns k's real value. ok is false when k is absent or null-valued.
func (m *HashedMap[K, V]) Get(k K) (V, bool) {
	v, p := m.Lookup(k)
	return v, p == Present
}

// Contains reports whether k is present.
func (m *HashedMap[K, V]) Contains(k K) bool {
	return m.d.findSlot(k) >= 0
}

// Remove deletes k. Reports whether it was present.
func (m *HashedMap[K, V]) Remove(k K) bool {
	if !m.d.remove(k) {
		return false
	}
	m.version++
	return true
}

// PutNullKey maps the null key to v. Reports whether it was newly added.
func (m *HashedMap[K, V]) PutNullKey(v V) bool {
	return m.putNullKey(v, true)
}

// PutNullKeyNull maps the null key to the null value.
func (m *HashedMap[K, V]) PutNullKeyNull() bool {
	var zero V
	return m.putNullKey(zero, false)
}

func (m *HashedMap[K, V]) putNullKey(v V, has bool) bool {
	added := !m.hasNullKey
	m.hasNullKey = true
	m.nullKeyVal = v
	m.nullKeyHas = has
	if added {
		m.version++
	}
	return added
}

// RemoveNullKey deletes the null key. Reports whether it was present.
func (m *HashedMap[K, V]) RemoveNullKey() bool {
	if !m.hasNullKey {
		return false
	}
	m.hasNullKey = false
	var zero V
	m.nullKeyVal = zero
	m.nullKeyHas = false
	m.version++
	return true
}

// HasNullKey reports whether the null key is present.
func (m *HashedMap[K, V]) HasNullKey() bool { return m.hasNullKey }

// LookupNullKey returns the null key's value and Presence.
func (m *HashedMap[K, V]) LookupNullKey() (V, Presence) {
	if !m.hasNullKey {
		var zero V
		return zero, Absent
	}
	if !m.nullKeyHas {
		var zero V
		return zero, Null
	}
	return m.nullKeyVal, Present
}

// Len returns the number of present keys, the null key included.
func (m *HashedMap[K, V]) Len() int {
	n := m.d.size()
	if m.hasNullKey {
		n++
	}
	return n
}

// IsEmpty reports whether the container holds no entries.
func (m *HashedMap[K, V]) IsEmpty() bool { return m.Len() == 0 }

// EnsureCapacity grows storage to hold at least n entries without further
// resizing. Growing is structural and invalidates outstanding tokens.
func (m *HashedMap[K, V]) EnsureCapacity(n int) {
	if n <= m.d.capacity() {
		return
	}
	oldCap := m.d.capacity()
	m.d.resize(n)
	m.version++
	m.logger.LogResize(oldCap, n, m.d.size())
	m.metrics.RecordResize(oldCap, n)
}

// Trim rebuilds storage at capacity n, releasing slack. n must cover the
// present non-null-key entries or an error wrapping ErrInvalidCapacity is
// returned.
func (m *HashedMap[K, V]) Trim(n int) error {
	if n < m.d.size() {
		return &ErrCapacityTooSmall{Requested: n, Size: m.d.size()}
	}
	oldCap := m.d.capacity()
	if n == oldCap {
		return nil
	}
	m.d.resize(n)
	m.version++
	m.logger.LogTrim(n, m.d.size())
	m.metrics.RecordResize(oldCap, n)
	return nil
}

// Clear removes every entry, keeping the current capacity.
func (m *HashedMap[K, V]) Clear() {
	n := m.Len()
	m.d.clear()
	m.hasNullKey = false
	var zero V
	m.nullKeyVal = zero
	m.nullKeyHas = false
	m.version++
	m.logger.LogClear(n)
	m.metrics.RecordClear(n)
}

// Clone returns a deep copy sharing no storage with m.
func (m *HashedMap[K, V]) Clone() *HashedMap[K, V] {
	c := *m
	c.d = m.d.clone()
	return &c
}

// First returns a token for the first entry, or Done when the container is
// empty. Iteration order is storage order with the null key last.
func (m *HashedMap[K, V]) First() Token {
	i := m.d.firstSlot()
	if i < 0 {
		if m.hasNullKey {
			return makeToken(m.version, nullKeySlot)
		}
		return Done
	}
	return makeToken(m.version, int(i))
}

// Next returns the token following t, or Done. It panics with an error
// wrapping ErrStaleToken after a structural mutation.
func (m *HashedMap[K, V]) Next(t Token) Token {
	if t == Done {
		return Done
	}
	checkToken(t, m.version)
	return m.advance(t)
}

// UnsafeNext is Next without the stale-token check; using it across a
// structural mutation is undefined behavior.
func (m *HashedMap[K, V]) UnsafeNext(t Token) Token {
	if t == Done {
		return Done
	}
	return m.advance(t)
}

func (m *HashedMap[K, V]) advance(t Token) Token {
	i := t.slot()
	if i == nullKeySlot {
		return Done
	}
	n := m.d.nextSlot(int32(i))
	if n < 0 {
		if m.hasNullKey {
			return makeToken(t.version(), nullKeySlot)
		}
		return Done
	}
	return makeToken(t.version(), int(n))
}

// Key returns the key addressed by t. It panics on the null-key token;
// check IsNullKey first.
func (m *HashedMap[K, V]) Key(t Token) K {
	checkToken(t, m.version)
	i := t.slot()
	if i == nullKeySlot {
		panic("nilmap: Key called on the null-key token")
	}
	return m.d.keys[i]
}

// Value returns the value addressed by t, the zero V when the entry is
// null-valued.
func (m *HashedMap[K, V]) Value(t Token) V {
	checkToken(t, m.version)
	v, _ := m.tokenValue(t.slot())
	return v
}

// HasValue reports whether t's entry holds a real value.
func (m *HashedMap[K, V]) HasValue(t Token) bool {
	checkToken(t, m.version)
	_, has := m.tokenValue(t.slot())
	return has
}

// IsNullKey reports whether t addresses the null key.
func (m *HashedMap[K, V]) IsNullKey(t Token) bool {
	checkToken(t, m.version)
	return t.slot() == nullKeySlot
}

func (m *HashedMap[K, V]) tokenValue(i int) (V, bool) {
	if i == nullKeySlot {
		return m.nullKeyVal, m.nullKeyHas
	}
	return m.d.slotValue(int32(i))
}

// All returns an iterator over the entries holding real values. The null
// key is excluded; read it via LookupNullKey.
func (m *HashedMap[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for t := m.First(); t != Done; t = m.Next(t) {
			if t.slot() == nullKeySlot {
				continue
			}
			v, has := m.tokenValue(t.slot())
			if !has {
				continue
			}
			if !yield(m.Key(t), v) {
				return
			}
		}
	}
}

// Keys returns an iterator over all present keys, real- and null-valued,
// excluding the null key.
func (m *HashedMap[K, V]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		for t := m.First(); t != Done; t = m.Next(t) {
			if t.slot() == nullKeySlot {
				continue
			}
			if !yield(m.Key(t)) {
				return
			}
		}
	}
}

// ContainsValueFunc reports whether any entry, the null key included,
// holds a real value accepted by eq.
func (m *HashedMap[K, V]) ContainsValueFunc(eq func(V) bool) bool {
	for t := m.First(); t != Done; t = m.Next(t) {
		if v, has := m.tokenValue(t.slot()); has && eq(v) {
			return true
		}
	}
	return false
}

// ContainsNullValue reports whether any present key, the null key
// included, maps to the null value.
func (m *HashedMap[K, V]) ContainsNullValue() bool {
	if m.hasNullKey && !m.nullKeyHas {
		return true
	}
	return m.d.size() > m.d.hasBits.Count()
}
