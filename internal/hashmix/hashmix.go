// Package hashmix provides the 64-bit integer hash finalizer used by the
// sparse container engines. Sequential or otherwise correlated keys must
// scatter across buckets, so raw key bits are never used for bucket
// selection directly.
package hashmix

import "math/rand/v2"

// Mix64 finalizes x with the given seed using the splitmix64 avalanche
// rounds. Every input bit affects every output bit, so masking the result
// down to a power-of-two bucket count stays well distributed.
func Mix64(x, seed uint64) uint64 {
	x ^= seed
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}

// Seed returns a random per-container seed. Randomizing the seed keeps
// bucket layouts from being predictable across runs.
func Seed() uint64 {
	return rand.Uint64()
}
