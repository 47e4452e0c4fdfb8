package nilmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newIdentityDual builds an engine whose bucket index is the key itself,
// so collision patterns are fully scripted: keys k and k+8 share a bucket
// at capacity 8.
func newIdentityDual(capacity int) *dual[uint64, string] {
	return newDual[uint64, string](capacity, false, 0,
		func(k uint64) uint64 { return k },
		func(a, b uint64) bool { return a == b },
	)
}

func TestDualRegions(t *testing.T) {
	d := newIdentityDual(8)

	// 0 claims a hi terminal; 8 and 16 chain in front of it as lo slots.
	require.Equal(t, putInserted, d.put(0, "zero", true))
	require.Equal(t, putInserted, d.put(8, "eight", true))
	require.Equal(t, putInserted, d.put(16, "sixteen", true))
	// 1 opens its own bucket, another hi terminal.
	require.Equal(t, putInserted, d.put(1, "one", true))
	require.NoError(t, d.checkInvariants())

	assert.Equal(t, 2, d.loSize)
	assert.Equal(t, 2, d.hiSize)
	assert.Equal(t, 4, d.size())

	// Iteration covers the lo region ascending, then the hi region.
	var keys []uint64
	for i := d.firstSlot(); i >= 0; i = d.nextSlot(i) {
		keys = append(keys, d.keys[i])
	}
	assert.Equal(t, []uint64{8, 16, 1, 0}, keys)

	require.Equal(t, putUpdated, d.put(8, "EIGHT", true))
	v, has := d.slotValue(d.findSlot(8))
	assert.True(t, has)
	assert.Equal(t, "EIGHT", v)
}

func TestDualRemoveTerminalWithPredecessors(t *testing.T) {
	d := newIdentityDual(8)
	d.put(0, "zero", true)
	d.put(8, "eight", true)
	d.put(16, "sixteen", true)

	// The terminal's entry is replaced by its lo predecessor, which is
	// then compacted out of the lo region.
	require.True(t, d.remove(0))
	require.NoError(t, d.checkInvariants())
	assert.Equal(t, 2, d.size())
	assert.Equal(t, 1, d.loSize)
	assert.Equal(t, 1, d.hiSize)

	assert.True(t, d.findSlot(0) < 0)
	for _, k := range []uint64{8, 16} {
		i := d.findSlot(k)
		require.GreaterOrEqual(t, i, int32(0), "key %d", k)
		_, has := d.slotValue(i)
		assert.True(t, has)
	}
}

func TestDualRemoveLoCompaction(t *testing.T) {
	d := newIdentityDual(16)
	// Two independent chains with lo slots: 0,16,32 and 1,17,33.
	for _, k := range []uint64{0, 16, 32, 1, 17, 33} {
		d.put(k, "", true)
	}
	require.Equal(t, 4, d.loSize)

	// Removing a lo slot of one chain moves the last lo entry, which
	// belongs to the other chain; its chain pointer must follow.
	require.True(t, d.remove(16))
	require.NoError(t, d.checkInvariants())
	for _, k := range []uint64{0, 32, 1, 17, 33} {
		assert.GreaterOrEqual(t, d.findSlot(k), int32(0), "key %d", k)
	}
	assert.True(t, d.findSlot(16) < 0)
}

func TestDualCorruptChainFault(t *testing.T) {
	d := newIdentityDual(8)
	d.put(0, "", true)
	d.put(8, "", true)
	d.put(16, "", true)

	// Scripted corruption: a lo slot linking to itself makes the chain
	// walk exceed its bound.
	head := d.buckets[0] - 1
	d.links[head] = head

	requirePanicsIs(t, ErrCorruptChain, func() { d.findSlot(0) })
}

func TestDualGrowthRebuild(t *testing.T) {
	d := newIdentityDual(2)
	for k := uint64(0); k < 200; k++ {
		has := k%3 != 0
		require.Equal(t, putInserted, d.put(k, "v", has))
	}
	require.NoError(t, d.checkInvariants())
	require.Equal(t, 200, d.size())

	for k := uint64(0); k < 200; k++ {
		i := d.findSlot(k)
		require.GreaterOrEqual(t, i, int32(0), "key %d", k)
		_, has := d.slotValue(i)
		assert.Equal(t, k%3 != 0, has, "key %d", k)
	}
}

func TestDualPackedResize(t *testing.T) {
	d := newDual[uint64, string](2, true, 0,
		func(k uint64) uint64 { return k },
		func(a, b uint64) bool { return a == b },
	)

	// Alternate real and null values across enough inserts to force
	// several rebuilds; packed values must recompact each time.
	for k := uint64(0); k < 100; k++ {
		if k%2 == 0 {
			d.put(k, "real", true)
		} else {
			d.put(k, "", false)
		}
	}
	require.NoError(t, d.checkInvariants())
	assert.Len(t, d.values, 50)

	for k := uint64(0); k < 100; k++ {
		i := d.findSlot(k)
		require.GreaterOrEqual(t, i, int32(0))
		v, has := d.slotValue(i)
		if k%2 == 0 {
			require.True(t, has, "key %d", k)
			require.Equal(t, "real", v)
		} else {
			require.False(t, has, "key %d", k)
		}
	}
}

func TestDualClearAndClone(t *testing.T) {
	d := newIdentityDual(8)
	d.put(0, "a", true)
	d.put(8, "b", false)

	c := d.clone()
	d.clear()

	assert.Equal(t, 0, d.size())
	assert.Equal(t, 8, d.capacity())
	assert.Equal(t, 2, c.size())
	require.NoError(t, c.checkInvariants())

	i := c.findSlot(0)
	v, has := c.slotValue(i)
	assert.True(t, has)
	assert.Equal(t, "a", v)

	// The cleared engine accepts fresh inserts.
	require.Equal(t, putInserted, d.put(3, "c", true))
	require.NoError(t, d.checkInvariants())
}

func TestDualMigrationSignal(t *testing.T) {
	d := newDual[uint64, string](3, false, 3,
		func(k uint64) uint64 { return k },
		func(a, b uint64) bool { return a == b },
	)
	d.put(0, "", true)
	d.put(1, "", true)
	d.put(2, "", true)

	// Full at maxCap: inserting signals migration instead of growing.
	assert.Equal(t, putNeedsMigration, d.put(3, "", true))
	assert.Equal(t, 3, d.size())

	// Overwrites still work at the bound.
	assert.Equal(t, putUpdated, d.put(2, "x", true))
}
