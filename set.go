package nilmap

import "iter"

// Set is a membership container over fixed-width integer and float keys,
// with the same optional null key as Map. It runs on the Map engines, so
// 16-bit key types get the flat strategy and everything else the sparse
// dual-region layout; it just never stores values.
type Set[K Key] struct {
	m Map[K, struct{}]
}

// NewSet creates a Set with room for capacity keys before the first
// resize.
func NewSet[K Key](capacity int, optFns ...Option) *Set[K] {
	return &Set[K]{m: *newMap[K, struct{}]("set", capacity, optFns)}
}

// Add inserts k. Reports whether it was newly added.
func (s *Set[K]) Add(k K) bool {
	return s.m.PutNull(k)
}

// AddNullKey inserts the null key. Reports whether it was newly added.
func (s *Set[K]) AddNullKey() bool {
	return s.m.PutNullKeyNull()
}

// Contains reports whether k is in the set.
func (s *Set[K]) Contains(k K) bool { return s.m.Contains(k) }

// HasNullKey reports whether the null key is in the set.
func (s *Set[K]) HasNullKey() bool { return s.m.HasNullKey() }

// Remove deletes k. Reports whether it was present.
func (s *Set[K]) Remove(k K) bool { return s.m.Remove(k) }

// RemoveNullKey deletes the null key. Reports whether it was present.
func (s *Set[K]) RemoveNullKey() bool { return s.m.RemoveNullKey() }

// Len returns the number of keys, the null key included.
func (s *Set[K]) Len() int { return s.m.Len() }

// IsEmpty reports whether the set holds no keys.
func (s *Set[K]) IsEmpty() bool { return s.m.IsEmpty() }

// EnsureCapacity grows storage to hold at least n keys without further
// resizing.
func (s *Set[K]) EnsureCapacity(n int) { s.m.EnsureCapacity(n) }

// Trim rebuilds storage at capacity n; see Map.Trim.
func (s *Set[K]) Trim(n int) error { return s.m.Trim(n) }

// Clear removes every key, keeping strategy and capacity.
func (s *Set[K]) Clear() { s.m.Clear() }

// Clone returns a deep copy sharing no storage with s.
func (s *Set[K]) Clone() *Set[K] {
	return &Set[K]{m: *s.m.Clone()}
}

// Strategy returns the storage strategy currently in use.
func (s *Set[K]) Strategy() Strategy { return s.m.Strategy() }

// First returns a token for the first key, or Done when the set is empty.
func (s *Set[K]) First() Token { return s.m.First() }

// Next returns the token following t; it panics with an error wrapping
// ErrStaleToken after a structural mutation.
func (s *Set[K]) Next(t Token) Token { return s.m.Next(t) }

// UnsafeNext is Next without the stale-token check.
func (s *Set[K]) UnsafeNext(t Token) Token { return s.m.UnsafeNext(t) }

// Key returns the key addressed by t. It panics on the null-key token.
func (s *Set[K]) Key(t Token) K { return s.m.Key(t) }

// IsNullKey reports whether t addresses the null key.
func (s *Set[K]) IsNullKey(t Token) bool { return s.m.IsNullKey(t) }

// All returns an iterator over the keys, excluding the null key.
func (s *Set[K]) All() iter.Seq[K] { return s.m.Keys() }
