package nilmap

import (
	"iter"
	"slices"

	"github.com/hupe1980/nilmap/internal/bitset"
)

// byteDomain is the whole 8-bit key domain.
const byteDomain = 256

// ByteMap is an associative container keyed by byte, with the same
// null-value and null-key semantics as Map.
//
// Storage starts rank-compressed: a 256-bit presence bitset plus a value
// array holding one slot per present key, ordered by key, addressed as
// values[Rank(k)-1]. Inserts and removals shift at most 255 elements. The
// insertion that reaches 128 keys switches permanently to a direct
// 256-slot array; the compact layout has lost its size advantage by then.
// Clear resets to the compressed layout, Trim never changes layout.
type ByteMap[V any] struct {
	present bitset.Words
	hasBits bitset.Words
	values  []V
	flat    bool
	count   int

	version uint32

	hasNullKey bool
	nullKeyVal V
	nullKeyHas bool

	logger  *Logger
	metrics MetricsCollector
}

// NewByteMap creates a ByteMap. capacity pre-sizes the compressed value
// array and is clamped to the 256-key domain.
func NewByteMap[V any](capacity int, optFns ...Option) *ByteMap[V] {
	o := applyOptions(optFns)
	capacity = min(max(capacity, 0), byteDomain)
	return &ByteMap[V]{
		present: bitset.Make(byteDomain),
		hasBits: bitset.Make(byteDomain),
		values:  make([]V, 0, capacity),
		logger:  o.logger.WithContainer("bytemap"),
		metrics: o.metricsCollector,
	}
}

// Put maps k to v. Reports whether k was newly inserted.
func (m *ByteMap[V]) Put(k byte, v V) bool {
	return m.putKey(k, v, true)
}

// PutNull maps k to the null value.
func (m *ByteMap[V]) PutNull(k byte) bool {
	var zero V
	return m.putKey(k, zero, false)
}

func (m *ByteMap[V]) putKey(k byte, v V, has bool) bool {
	idx := int(k)
	if m.present.Test(idx) {
		pos := idx
		if !m.flat {
			pos = m.present.Rank(idx) - 1
		}
		if has {
			m.values[pos] = v
		} else {
			var zero V
			m.values[pos] = zero
		}
		m.hasBits.SetTo(idx, has)
		return false
	}

	if m.flat {
		m.values[idx] = v
	} else {
		// With the bit still clear, Rank is the insertion position.
		m.values = slices.Insert(m.values, m.present.Rank(idx), v)
	}
	m.present.Set(idx)
	m.hasBits.SetTo(idx, has)
	m.count++
	if !m.flat && m.count == byteFlatThreshold {
		m.switchToFlat()
	}
	m.version++
	return true
}

// switchToFlat spreads the compressed values into a direct 256-slot array.
// It runs inline inside the insert that reached the threshold; that insert
// bumps the version once for the whole operation.
func (m *ByteMap[V]) switchToFlat() {
	direct := make([]V, byteDomain)
	j := 0
	for i := m.present.NextSet(0); i >= 0; i = m.present.NextSet(i + 1) {
		direct[i] = m.values[j]
		j++
	}
	m.values = direct
	m.flat = true
	m.logger.LogStrategySwitch(StrategyCompressed, StrategyFlat, m.count)
	m.metrics.RecordStrategySwitch(StrategyCompressed, StrategyFlat)
}

// valueAt reads the value of a present key index.
func (m *ByteMap[V]) valueAt(idx int) (V, bool) {
	if !m.hasBits.Test(idx) {
		var zero V
		return zero, false
	}
	if m.flat {
		return m.values[idx], true
	}
	return m.values[m.present.Rank(idx)-1], true
}

// Lookup returns k's value and its Presence.
func (m *ByteMap[V]) Lookup(k byte) (V, Presence) {
	idx := int(k)
	if !m.present.Test(idx) {
		var zero V
		return zero, Absent
	}
	v, has := m.valueAt(idx)
	if !has {
		return v, Null
	}
	return v, Present
}

// Get returns k's real value. ok is false when k is absent or null-valued.
func (m *ByteMap[V]) Get(k byte) (V, bool) {
	v, p := m.Lookup(k)
	return v, p == Present
}

// Contains reports whether k is present.
func (m *ByteMap[V]) Contains(k byte) bool {
	return m.present.Test(int(k))
}

// Remove deletes k. Reports whether it was present.
func (m *ByteMap[V]) Remove(k byte) bool {
	idx := int(k)
	if !m.present.Test(idx) {
		return false
	}
	if m.flat {
		var zero V
		m.values[idx] = zero
	} else {
		pos := m.present.Rank(idx) - 1
		m.values = slices.Delete(m.values, pos, pos+1)
	}
	m.present.Clear(idx)
	m.hasBits.Clear(idx)
	m.count--
	m.version++
	return true
}

// PutNullKey maps the null key to v. Reports whether it was newly added.
func (m *ByteMap[V]) PutNullKey(v V) bool {
	return m.putNullKey(v, true)
}

// PutNullKeyNull maps the null key to the null value.
func (m *ByteMap[V]) PutNullKeyNull() bool {
	var zero V
	return m.putNullKey(zero, false)
}

func (m *ByteMap[V]) putNullKey(v V, has bool) bool {
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
func (m *ByteMap[V]) RemoveNullKey() bool {
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
func (m *ByteMap[V]) HasNullKey() bool { return m.hasNullKey }

// LookupNullKey returns the null key's value and Presence.
func (m *ByteMap[V]) LookupNullKey() (V, Presence) {
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
func (m *ByteMap[V]) Len() int {
	n := m.count
	if m.hasNullKey {
		n++
	}
	return n
}

// IsEmpty reports whether the container holds no entries.
func (m *ByteMap[V]) IsEmpty() bool { return m.Len() == 0 }

// EnsureCapacity grows the compressed value array to hold at least n
// entries. A flat ByteMap already covers the whole domain.
func (m *ByteMap[V]) EnsureCapacity(n int) {
	if m.flat {
		return
	}
	n = min(n, byteDomain)
	if n <= cap(m.values) {
		return
	}
	m.values = slices.Grow(m.values, n-len(m.values))
	m.version++
}

// Trim releases compressed-array slack down to capacity n. n must cover
// the present non-null-key entries or an error wrapping ErrInvalidCapacity
// is returned. Trim never changes the storage layout.
func (m *ByteMap[V]) Trim(n int) error {
	if n < m.count {
		return &ErrCapacityTooSmall{Requested: n, Size: m.count}
	}
	if m.flat {
		return nil
	}
	n = min(n, byteDomain)
	if cap(m.values) <= n {
		return nil
	}
	trimmed := make([]V, len(m.values), n)
	copy(trimmed, m.values)
	m.values = trimmed
	m.version++
	m.logger.LogTrim(n, m.count)
	return nil
}

// Clear removes every entry and resets a flat ByteMap to the compressed
// layout.
func (m *ByteMap[V]) Clear() {
	n := m.Len()
	m.present.ClearAll()
	m.hasBits.ClearAll()
	if m.flat {
		m.flat = false
		m.values = nil
		m.logger.LogStrategySwitch(StrategyFlat, StrategyCompressed, 0)
		m.metrics.RecordStrategySwitch(StrategyFlat, StrategyCompressed)
	} else {
		clear(m.values)
		m.values = m.values[:0]
	}
	m.count = 0
	m.hasNullKey = false
	var zero V
	m.nullKeyVal = zero
	m.nullKeyHas = false
	m.version++
	m.logger.LogClear(n)
	m.metrics.RecordClear(n)
}

// Clone returns a deep copy sharing no storage with m.
func (m *ByteMap[V]) Clone() *ByteMap[V] {
	c := *m
	c.present = m.present.Clone()
	c.hasBits = m.hasBits.Clone()
	c.values = slices.Clone(m.values)
	return &c
}

// Strategy returns the storage strategy currently in use.
func (m *ByteMap[V]) Strategy() Strategy {
	if m.flat {
		return StrategyFlat
	}
	return StrategyCompressed
}

// First returns a token for the first entry, or Done when the container is
// empty. Keys iterate in ascending order with the null key last.
func (m *ByteMap[V]) First() Token {
	i := m.present.NextSet(0)
	if i < 0 {
		if m.hasNullKey {
			return makeToken(m.version, byteNullKeySlot)
		}
		return Done
	}
	return makeToken(m.version, i)
}

// Next returns the token following t, or Done. It panics with an error
// wrapping ErrStaleToken after a structural mutation.
func (m *ByteMap[V]) Next(t Token) Token {
	if t == Done {
		return Done
	}
	checkToken(t, m.version)
	return m.advance(t)
}

// UnsafeNext is Next without the stale-token check; using it across a
// structural mutation is undefined behavior.
func (m *ByteMap[V]) UnsafeNext(t Token) Token {
	if t == Done {
		return Done
	}
	return m.advance(t)
}

func (m *ByteMap[V]) advance(t Token) Token {
	i := t.slot()
	if i == byteNullKeySlot {
		return Done
	}
	n := m.present.NextSet(i + 1)
	if n < 0 {
		if m.hasNullKey {
			return makeToken(t.version(), byteNullKeySlot)
		}
		return Done
	}
	return makeToken(t.version(), n)
}

// Key returns the key addressed by t. It panics on the null-key token;
// check IsNullKey first.
func (m *ByteMap[V]) Key(t Token) byte {
	checkToken(t, m.version)
	i := t.slot()
	if i == byteNullKeySlot {
		panic("nilmap: Key called on the null-key token")
	}
	return byte(i)
}

// Value returns the value addressed by t, the zero V when the entry is
// null-valued.
func (m *ByteMap[V]) Value(t Token) V {
	checkToken(t, m.version)
	v, _ := m.tokenValue(t.slot())
	return v
}

// HasValue reports whether t's entry holds a real value.
func (m *ByteMap[V]) HasValue(t Token) bool {
	checkToken(t, m.version)
	_, has := m.tokenValue(t.slot())
	return has
}

// IsNullKey reports whether t addresses the null key.
func (m *ByteMap[V]) IsNullKey(t Token) bool {
	checkToken(t, m.version)
	return t.slot() == byteNullKeySlot
}

func (m *ByteMap[V]) tokenValue(i int) (V, bool) {
	if i == byteNullKeySlot {
		return m.nullKeyVal, m.nullKeyHas
	}
	return m.valueAt(i)
}

// All returns an iterator over the entries holding real values, in
// ascending key order. The null key is excluded; read it via
// LookupNullKey.
func (m *ByteMap[V]) All() iter.Seq2[byte, V] {
	return func(yield func(byte, V) bool) {
		for t := m.First(); t != Done; t = m.Next(t) {
			if t.slot() == byteNullKeySlot {
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
func (m *ByteMap[V]) Keys() iter.Seq[byte] {
	return func(yield func(byte) bool) {
		for t := m.First(); t != Done; t = m.Next(t) {
			if t.slot() == byteNullKeySlot {
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
func (m *ByteMap[V]) ContainsValueFunc(eq func(V) bool) bool {
	for t := m.First(); t != Done; t = m.Next(t) {
		if v, has := m.tokenValue(t.slot()); has && eq(v) {
			return true
		}
	}
	return false
}

// ContainsNullValue reports whether any present key, the null key
// included, maps to the null value.
func (m *ByteMap[V]) ContainsNullValue() bool {
	if m.hasNullKey && !m.nullKeyHas {
		return true
	}
	return m.count > m.hasBits.Count()
}
