// Package nilmap provides maps and sets with explicit null semantics for Go.
//
// Every container distinguishes three states per key: absent, present with
// a real value, and present with the null value. An optional null key sits
// outside the keyed storage. Lookups report the state instead of collapsing
// null and absent into one zero value.
//
// # Quick Start
//
//	m := nilmap.New[int64, string](0)
//	m.Put(42, "answer")
//	m.PutNull(7) // present, but explicitly valueless
//
//	if v, p := m.Lookup(42); p == nilmap.Present {
//	    fmt.Println(v)
//	}
//	_, p := m.Lookup(7)  // p == nilmap.Null
//	_, p = m.Lookup(99)  // p == nilmap.Absent
//
// # Containers
//
//   - Map[K, V] — fixed-width integer and float keys
//   - Set[K] — membership only, same key types, Roaring Bitmap interop
//   - ByteMap[V] / ByteSet — byte keys, rank-compressed until dense
//   - HashedMap[K, V] — arbitrary key types via injected equal and hash
//
// # Storage Strategies
//
// Containers adapt their layout to the data:
//
//	m := nilmap.New[uint16, int](0) // sparse dual-region hash storage
//	for i := range 40_000 {
//	    m.Put(uint16(i), i) // crosses into flat array storage
//	}
//	m.Strategy() // StrategyFlat
//
// Sparse storage is a dual-region hash layout: colliding entries chain
// through the lo region and every chain terminates in the hi region, so
// both regions stay hole-free and iteration is a linear scan. 16-bit key
// types switch to a flat 65536-slot array once they outgrow the sparse
// layout; byte keys start rank-compressed and switch to a flat 256-slot
// array when dense. Switching is one-way on the insert path; Trim can
// rebuild a smaller layout.
//
// # Iteration Tokens
//
// Iteration hands out opaque tokens instead of pointers:
//
//	for t := m.First(); t != nilmap.Done; t = m.Next(t) {
//	    if m.IsNullKey(t) {
//	        continue
//	    }
//	    fmt.Println(m.Key(t), m.Value(t), m.HasValue(t))
//	}
//
// Structural mutations (insert of a new key, removal, resize, clear,
// strategy switch) invalidate outstanding tokens; checked accessors then
// panic with an error wrapping ErrStaleToken. Overwriting an existing
// key's value keeps tokens valid. UnsafeNext skips the check for hot
// loops; range-over-func iterators are available via All and Keys.
//
// # Float Keys
//
// Float keys are identified by their IEEE-754 bit pattern: NaN equals
// itself and can be stored and found, while +0 and -0 are distinct keys.
// This differs from the == operator on floats.
//
// # Concurrency
//
// Containers are unsynchronized: one writer, or any number of concurrent
// readers, never both. Wrap with a mutex for mixed access.
//
// # Key Features
//
//   - Absent / null / present tri-state lookups, plus a null key
//   - Adaptive sparse, flat, and rank-compressed storage
//   - O(1) token-based iteration with stale-token detection
//   - Bit-pattern float keys (NaN-safe)
//   - roaring64 bitmap import and export for sets
//   - Pluggable logging and metrics, noop by default
package nilmap
