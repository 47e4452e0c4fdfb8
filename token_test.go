package nilmap

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenLayout(t *testing.T) {
	tok := makeToken(7, 42)
	assert.Equal(t, uint32(7), tok.version())
	assert.Equal(t, 42, tok.slot())

	// Done can never collide with a real token: real slots stay below the
	// null-key sentinel, which is below the all-ones slot field.
	assert.NotEqual(t, Done, makeToken(^uint32(0), nullKeySlot))
	assert.NotEqual(t, Done, makeToken(0, 0))
}

func TestCheckToken(t *testing.T) {
	assert.NotPanics(t, func() { checkToken(makeToken(3, 0), 3) })

	defer func() {
		r := recover()
		require.NotNil(t, r)
		err, ok := r.(error)
		require.True(t, ok)
		assert.ErrorIs(t, err, ErrStaleToken)
		assert.Contains(t, err.Error(), "token version 3")
		assert.Contains(t, err.Error(), "container version 5")
	}()
	checkToken(makeToken(3, 0), 5)
}

func TestPresenceString(t *testing.T) {
	assert.Equal(t, "absent", Absent.String())
	assert.Equal(t, "null", Null.String())
	assert.Equal(t, "present", Present.String())
	assert.Equal(t, "presence(9)", Presence(9).String())
}

func TestStrategyString(t *testing.T) {
	assert.Equal(t, "sparse", StrategySparse.String())
	assert.Equal(t, "compressed", StrategyCompressed.String())
	assert.Equal(t, "flat", StrategyFlat.String())
	assert.Equal(t, "strategy(9)", Strategy(9).String())
}

func TestErrors(t *testing.T) {
	t.Run("CapacityTooSmall", func(t *testing.T) {
		err := &ErrCapacityTooSmall{Requested: 3, Size: 8}
		assert.Equal(t, "cannot trim to capacity 3: 8 entries present", err.Error())
		assert.ErrorIs(t, err, ErrInvalidCapacity)

		wrapped := fmt.Errorf("trimming: %w", err)
		var target *ErrCapacityTooSmall
		require.True(t, errors.As(wrapped, &target))
		assert.Equal(t, 3, target.Requested)
	})

	t.Run("Sentinels", func(t *testing.T) {
		assert.EqualError(t, ErrStaleToken, "stale token: container was structurally modified")
		assert.EqualError(t, ErrCorruptChain, "corrupt collision chain")
		assert.EqualError(t, ErrInvalidCapacity, "invalid capacity")
	})
}
