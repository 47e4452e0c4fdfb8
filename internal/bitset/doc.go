// Package bitset provides a plain word-array bitset for single-writer use.
//
// Architecture:
//   - Flat design: one uint64 word per 64 bits, fixed size at Make
//   - No atomics: containers in this module are single-writer by contract
//   - Rank support: popcount prefix sums address rank-compacted side arrays
//
// Used internally for:
//   - Slot presence tracking (dense and byte-domain stores)
//   - Null-value overlays (which present keys map to a null value)
//   - Rank addressing of compacted value arrays
package bitset
