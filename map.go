package nilmap

import (
	"iter"
	"math"
	"reflect"

	"github.com/hupe1980/nilmap/internal/hashmix"
)

// Key is the constraint for fixed-width integer and float key types.
// Named types with one of these underlying types work too. For 8-bit keys
// use ByteMap and ByteSet; for arbitrary key types use HashedMap.
type Key interface {
	~int16 | ~uint16 | ~int32 | ~uint32 | ~int64 | ~uint64 |
		~int | ~uint | ~uintptr | ~float32 | ~float64
}

// keyCodec translates keys to and from their canonical 64-bit patterns.
// Floats map to their IEEE-754 bits, so NaN keys equal themselves and +0
// and -0 are distinct keys; integers sign-extend.
type keyCodec[K Key] struct {
	toBits   func(K) uint64
	fromBits func(uint64) K
	dense    bool // 16-bit domain, eligible for the flat strategy
}

func makeKeyCodec[K Key]() keyCodec[K] {
	var zero K
	switch reflect.TypeOf(zero).Kind() {
	case reflect.Float32:
		return keyCodec[K]{
			toBits:   func(k K) uint64 { return uint64(math.Float32bits(float32(k))) },
			fromBits: func(b uint64) K { return K(math.Float32frombits(uint32(b))) },
		}
	case reflect.Float64:
		return keyCodec[K]{
			toBits:   func(k K) uint64 { return uint64(math.Float64bits(float64(k))) },
			fromBits: func(b uint64) K { return K(math.Float64frombits(b)) },
		}
	case reflect.Int16, reflect.Uint16:
		return keyCodec[K]{
			toBits:   func(k K) uint64 { return uint64(k) },
			fromBits: func(b uint64) K { return K(b) },
			dense:    true,
		}
	default:
		return keyCodec[K]{
			toBits:   func(k K) uint64 { return uint64(k) },
			fromBits: func(b uint64) K { return K(b) },
		}
	}
}

// Map is an associative container keyed by a fixed-width integer or float
// type. Every key can map to a real value or to the conceptual null value,
// and one out-of-band null key is available besides; a key being absent,
// null-valued and real-valued are three distinct states (see Presence).
//
// Storage starts on the sparse dual-region hash engine. Maps with 16-bit
// keys switch permanently to direct flat indexing when growth crosses the
// flat threshold; Trim below the threshold is the only way back.
//
// A Map is single-writer: concurrent reads are safe, any concurrent write
// is not. Checked token operations detect structural mutation and panic
// with an error wrapping ErrStaleToken rather than iterate corrupt state.
type Map[K Key, V any] struct {
	codec keyCodec[K]
	hash  func(K) uint64
	eq    func(K, K) bool
	seed  uint64

	sparse *dual[K, V]
	flat   *flatStore[V] // non-nil once the flat strategy is active

	version uint32

	hasNullKey bool
	nullKeyVal V
	nullKeyHas bool

	logger  *Logger
	metrics MetricsCollector
}

// New creates a Map with room for capacity entries before the first
// resize. A 16-bit-keyed Map asked for more than the flat threshold starts
// on the flat strategy directly.
func New[K Key, V any](capacity int, optFns ...Option) *Map[K, V] {
	return newMap[K, V]("map", capacity, optFns)
}

func newMap[K Key, V any](kind string, capacity int, optFns []Option) *Map[K, V] {
	o := applyOptions(optFns)
	seed := o.seed
	if !o.hasSeed {
		seed = hashmix.Seed()
	}
	codec := makeKeyCodec[K]()
	m := &Map[K, V]{
		codec:   codec,
		seed:    seed,
		logger:  o.logger.WithContainer(kind),
		metrics: o.metricsCollector,
	}
	m.hash = func(k K) uint64 { return hashmix.Mix64(codec.toBits(k), seed) }
	m.eq = func(a, b K) bool { return codec.toBits(a) == codec.toBits(b) }

	if codec.dense && capacity > flatThreshold {
		m.flat = newFlatStore[V]()
		return m
	}
	maxCap := 0
	if codec.dense {
		maxCap = flatThreshold
	}
	m.sparse = newDual[K, V](capacity, false, maxCap, m.hash, m.eq)
	return m
}

func (m *Map[K, V]) denseIdx(k K) int { return int(uint16(m.codec.toBits(k))) }

// Put maps k to v. Reports whether k was newly inserted; overwriting an
// existing entry is not a structural mutation and keeps tokens valid.
func (m *Map[K, V]) Put(k K, v V) bool {
	return m.putKey(k, v, true)
}

// PutNull maps k to the null value: the key is present, Lookup reports
// Null, and Get reports no value.
func (m *Map[K, V]) PutNull(k K) bool {
	var zero V
	return m.putKey(k, zero, false)
}

func (m *Map[K, V]) putKey(k K, v V, has bool) bool {
	if m.flat != nil {
		if m.flat.put(m.denseIdx(k), v, has) {
			m.version++
			return true
		}
		return false
	}
	oldCap := m.sparse.capacity()
	switch m.sparse.put(k, v, has) {
	case putInserted:
		m.version++
		if c := m.sparse.capacity(); c != oldCap {
			m.logger.LogResize(oldCap, c, m.sparse.size())
			m.metrics.RecordResize(oldCap, c)
		}
		return true
	case putNeedsMigration:
		m.switchToFlat()
		m.flat.put(m.denseIdx(k), v, has)
		m.version++
		return true
	default:
		return false
	}
}

// switchToFlat migrates every entry to direct indexing. It runs inline
// inside the mutation that crossed the threshold; that mutation bumps the
// version once for the whole operation.
func (m *Map[K, V]) switchToFlat() {
	f := newFlatStore[V]()
	d := m.sparse
	for i := d.firstSlot(); i >= 0; i = d.nextSlot(i) {
		v, has := d.slotValue(i)
		f.put(int(uint16(m.codec.toBits(d.keys[i]))), v, has)
	}
	m.flat = f
	m.sparse = nil
	m.logger.LogStrategySwitch(StrategySparse, StrategyFlat, f.count)
	m.metrics.RecordStrategySwitch(StrategySparse, StrategyFlat)
}

// Lookup returns k's value and its Presence. A null-valued key returns the
// zero V and Null; an absent key the zero V and Absent.
func (m *Map[K, V]) Lookup(k K) (V, Presence) {
	if m.flat != nil {
		idx := m.denseIdx(k)
		if !m.flat.contains(idx) {
			var zero V
			return zero, Absent
		}
		v, has := m.flat.value(idx)
		if !has {
			return v, Null
		}
		return v, Present
	}
	i := m.sparse.findSlot(k)
	if i < 0 {
		var zero V
		return zero, Absent
	}
	v, has := m.sparse.slotValue(i)
	if !has {
		return v, Null
	}
	return v, Present
}

// Get returns k's real value. ok is false when k is absent or null-valued.
func (m *Map[K, V]) Get(k K) (V, bool) {
	v, p := m.Lookup(k)
	return v, p == Present
}

// Contains reports whether k is present, with either a real or the null
// value.
func (m *Map[K, V]) Contains(k K) bool {
	if m.flat != nil {
		return m.flat.contains(m.denseIdx(k))
	}
	return m.sparse.findSlot(k) >= 0
}

// Remove deletes k. Reports whether it was present.
func (m *Map[K, V]) Remove(k K) bool {
	var removed bool
	if m.flat != nil {
		removed = m.flat.remove(m.denseIdx(k))
	} else {
		removed = m.sparse.remove(k)
	}
	if removed {
		m.version++
	}
	return removed
}

// PutNullKey maps the null key to v. Reports whether the null key was
// newly added.
func (m *Map[K, V]) PutNullKey(v V) bool {
	return m.putNullKey(v, true)
}

// PutNullKeyNull maps the null key to the null value.
func (m *Map[K, V]) PutNullKeyNull() bool {
	var zero V
	return m.putNullKey(zero, false)
}

func (m *Map[K, V]) putNullKey(v V, has bool) bool {
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
func (m *Map[K, V]) RemoveNullKey() bool {
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
func (m *Map[K, V]) HasNullKey() bool { return m.hasNullKey }

// LookupNullKey returns the null key's value and Presence.
func (m *Map[K, V]) LookupNullKey() (V, Presence) {
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
func (m *Map[K, V]) Len() int {
	var n int
	if m.flat != nil {
		n = m.flat.count
	} else {
		n = m.sparse.size()
	}
	if m.hasNullKey {
		n++
	}
	return n
}

// IsEmpty reports whether the container holds no entries.
func (m *Map[K, V]) IsEmpty() bool { return m.Len() == 0 }

// EnsureCapacity grows storage to hold at least n entries without further
// resizing. Growing is structural and invalidates outstanding tokens. A
// 16-bit-keyed Map asked to grow past the flat threshold switches to the
// flat strategy here.
func (m *Map[K, V]) EnsureCapacity(n int) {
	if m.flat != nil {
		return // direct indexing already covers the whole key domain
	}
	if n <= m.sparse.capacity() {
		return
	}
	if m.codec.dense && n > flatThreshold {
		m.switchToFlat()
		m.version++
		return
	}
	oldCap := m.sparse.capacity()
	m.sparse.resize(n)
	m.version++
	m.logger.LogResize(oldCap, n, m.sparse.size())
	m.metrics.RecordResize(oldCap, n)
}

// Trim rebuilds storage at capacity n, releasing slack. n must cover the
// present non-null-key entries or an error wrapping ErrInvalidCapacity is
// returned. Trimming a flat Map to the threshold or below rebuilds the
// sparse engine; this is the only way back from the flat strategy.
func (m *Map[K, V]) Trim(n int) error {
	if m.flat != nil {
		if n < m.flat.count {
			return &ErrCapacityTooSmall{Requested: n, Size: m.flat.count}
		}
		if n > flatThreshold {
			return nil // still flat; nothing to release
		}
		m.rebuildSparseFromFlat(n)
		m.version++
		return nil
	}
	if n < m.sparse.size() {
		return &ErrCapacityTooSmall{Requested: n, Size: m.sparse.size()}
	}
	oldCap := m.sparse.capacity()
	if n == oldCap {
		return nil
	}
	m.sparse.resize(n)
	m.version++
	m.logger.LogTrim(n, m.sparse.size())
	m.metrics.RecordResize(oldCap, n)
	return nil
}

func (m *Map[K, V]) rebuildSparseFromFlat(n int) {
	d := newDual[K, V](n, false, flatThreshold, m.hash, m.eq)
	f := m.flat
	for i := f.firstSlot(); i >= 0; i = f.nextSlot(i) {
		dst := d.insertKeyOnly(m.codec.fromBits(uint64(i)))
		if v, has := f.value(int(i)); has {
			d.setSlotValue(dst, v, has)
		}
	}
	m.sparse = d
	m.flat = nil
	m.logger.LogStrategySwitch(StrategyFlat, StrategySparse, d.size())
	m.metrics.RecordStrategySwitch(StrategyFlat, StrategySparse)
}

// Clear removes every entry, keeping the current strategy and capacity.
func (m *Map[K, V]) Clear() {
	n := m.Len()
	if m.flat != nil {
		m.flat.clear()
	} else {
		m.sparse.clear()
	}
	m.hasNullKey = false
	var zero V
	m.nullKeyVal = zero
	m.nullKeyHas = false
	m.version++
	m.logger.LogClear(n)
	m.metrics.RecordClear(n)
}

// Clone returns a deep copy sharing no storage with m. Tokens belong to
// the container that issued them, never to its clones.
func (m *Map[K, V]) Clone() *Map[K, V] {
	c := *m
	if m.flat != nil {
		c.flat = m.flat.clone()
	} else {
		c.sparse = m.sparse.clone()
	}
	return &c
}

// Strategy returns the storage strategy currently in use.
func (m *Map[K, V]) Strategy() Strategy {
	if m.flat != nil {
		return StrategyFlat
	}
	return StrategySparse
}

// First returns a token for the first entry, or Done when the container is
// empty. Iteration order is storage order with the null key last; it is
// not insertion order and changes across structural mutations.
func (m *Map[K, V]) First() Token {
	var i int32
	if m.flat != nil {
		i = m.flat.firstSlot()
	} else {
		i = m.sparse.firstSlot()
	}
	if i < 0 {
		if m.hasNullKey {
			return makeToken(m.version, nullKeySlot)
		}
		return Done
	}
	return makeToken(m.version, int(i))
}

// Next returns the token following t, or Done. It panics with an error
// wrapping ErrStaleToken if the container was structurally modified after
// t was issued.
func (m *Map[K, V]) Next(t Token) Token {
	if t == Done {
		return Done
	}
	checkToken(t, m.version)
	return m.advance(t)
}

// UnsafeNext is Next without the stale-token check. Calling it across a
// structural mutation is undefined behavior; it may skip or repeat
// entries, but stays memory-safe.
func (m *Map[K, V]) UnsafeNext(t Token) Token {
	if t == Done {
		return Done
	}
	return m.advance(t)
}

func (m *Map[K, V]) advance(t Token) Token {
	i := t.slot()
	if i == nullKeySlot {
		return Done
	}
	var n int32
	if m.flat != nil {
		n = m.flat.nextSlot(int32(i))
	} else {
		n = m.sparse.nextSlot(int32(i))
	}
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
func (m *Map[K, V]) Key(t Token) K {
	checkToken(t, m.version)
	i := t.slot()
	if i == nullKeySlot {
		panic("nilmap: Key called on the null-key token")
	}
	if m.flat != nil {
		return m.codec.fromBits(uint64(i))
	}
	return m.sparse.keys[i]
}

// Value returns the value addressed by t, the zero V when the entry is
// null-valued. Use HasValue to tell a real zero value from null.
func (m *Map[K, V]) Value(t Token) V {
	checkToken(t, m.version)
	v, _ := m.tokenValue(t.slot())
	return v
}

// HasValue reports whether t's entry holds a real value.
func (m *Map[K, V]) HasValue(t Token) bool {
	checkToken(t, m.version)
	_, has := m.tokenValue(t.slot())
	return has
}

// IsNullKey reports whether t addresses the null key.
func (m *Map[K, V]) IsNullKey(t Token) bool {
	checkToken(t, m.version)
	return t.slot() == nullKeySlot
}

func (m *Map[K, V]) tokenValue(i int) (V, bool) {
	if i == nullKeySlot {
		return m.nullKeyVal, m.nullKeyHas
	}
	if m.flat != nil {
		return m.flat.value(i)
	}
	return m.sparse.slotValue(int32(i))
}

// All returns an iterator over the entries holding real values. The null
// key is excluded (it has no key to yield); read it via LookupNullKey.
// Structural mutation during iteration panics via the token checks.
func (m *Map[K, V]) All() iter.Seq2[K, V] {
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
func (m *Map[K, V]) Keys() iter.Seq[K] {
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
// holds a real value accepted by eq. Null values never match; see
// ContainsNullValue.
func (m *Map[K, V]) ContainsValueFunc(eq func(V) bool) bool {
	for t := m.First(); t != Done; t = m.Next(t) {
		if v, has := m.tokenValue(t.slot()); has && eq(v) {
			return true
		}
	}
	return false
}

// ContainsNullValue reports whether any present key, the null key
// included, maps to the null value.
func (m *Map[K, V]) ContainsNullValue() bool {
	if m.hasNullKey && !m.nullKeyHas {
		return true
	}
	if m.flat != nil {
		return m.flat.count > m.flat.hasBits.Count()
	}
	return m.sparse.size() > m.sparse.hasBits.Count()
}

// ContainsValue reports whether the container holds v as a real value. It
// works for any container in this package with comparable values.
func ContainsValue[V comparable](c interface {
	ContainsValueFunc(func(V) bool) bool
}, v V) bool {
	return c.ContainsValueFunc(func(x V) bool { return x == v })
}
