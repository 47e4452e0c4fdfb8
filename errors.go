package nilmap

import (
	"errors"
	"fmt"
)

var (
	// ErrStaleToken is wrapped by the panic raised when a checked token
	// operation observes a token issued before a structural mutation.
	ErrStaleToken = errors.New("stale token: container was structurally modified")

	// ErrCorruptChain is wrapped by the panic raised when a collision-chain
	// walk exceeds its bound. It indicates internal state corruption,
	// typically caused by unsynchronized concurrent writes.
	ErrCorruptChain = errors.New("corrupt collision chain")

	// ErrInvalidCapacity is returned (wrapped) by Trim when the requested
	// capacity cannot hold the entries already present.
	ErrInvalidCapacity = errors.New("invalid capacity")
)

// ErrCapacityTooSmall reports a Trim request below the current entry count.
//
// errors.Is(err, ErrInvalidCapacity) reports true for this error.
type ErrCapacityTooSmall struct {
	Requested int
	Size      int
}

func (e *ErrCapacityTooSmall) Error() string {
	return fmt.Sprintf("cannot trim to capacity %d: %d entries present", e.Requested, e.Size)
}

func (e *ErrCapacityTooSmall) Unwrap() error { return ErrInvalidCapacity }
