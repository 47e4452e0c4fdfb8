package nilmap

import "fmt"

// Strategy identifies the storage layout a container currently uses.
// Containers switch layout inline inside the mutation that crosses the
// relevant threshold; the switch costs O(n), preserves all entries and
// bumps the version exactly once for the whole mutation.
type Strategy uint8

const (
	// StrategySparse is the dual-region collision-chained hash layout.
	StrategySparse Strategy = iota
	// StrategyCompressed is the rank-indexed compact layout of byte-keyed
	// maps below the flat threshold.
	StrategyCompressed
	// StrategyFlat is direct indexing by key bits with a presence bitset.
	StrategyFlat
)

// String implements fmt.Stringer.
func (s Strategy) String() string {
	switch s {
	case StrategySparse:
		return "sparse"
	case StrategyCompressed:
		return "compressed"
	case StrategyFlat:
		return "flat"
	default:
		return fmt.Sprintf("strategy(%d)", uint8(s))
	}
}

// flatThreshold is the capacity bound above which 16-bit-keyed sparse
// containers switch to the flat layout: chain links are int32 slot indexes,
// and a 16-bit key domain outgrows hashing long before it outgrows direct
// indexing.
const flatThreshold = 32767

// byteFlatThreshold is the entry count at which byte-keyed maps leave the
// rank-compressed layout. At 128 of 256 possible keys the compact value
// array has lost its size advantage over a direct 256-slot array.
const byteFlatThreshold = 128
