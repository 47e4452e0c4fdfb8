package nilmap

import "fmt"

// Token addresses a single entry of a container at a specific structural
// version. The upper 32 bits carry the container version the token was
// issued at, the lower 32 bits the slot index (or a null-key sentinel).
//
// Tokens stay valid across value overwrites, including flipping an existing
// entry between a real and a null value. Any structural mutation — inserting
// a new key, removing a key, adding or removing the null key, resizing,
// trimming, clearing, or a storage-strategy switch — bumps the container
// version and invalidates all previously issued tokens.
//
// Checked operations (First, Next, Key, Value, HasValue, IsNullKey) panic
// with an error wrapping ErrStaleToken when handed an invalidated token.
// UnsafeNext skips the check; using it across a structural mutation is
// undefined behavior.
//
// Tokens are only meaningful on the container that issued them.
type Token uint64

// Done marks an exhausted iteration.
const Done Token = ^Token(0)

// Null-key sentinel slot indexes, one per index domain. Both sit outside
// the range real slots can occupy.
const (
	nullKeySlot     = 0x7fffffff // sparse and dense engines (int32 slot space)
	byteNullKeySlot = 0x100      // byte-domain engines (slots 0..255)
)

func makeToken(version uint32, slot int) Token {
	return Token(uint64(version)<<32 | uint64(uint32(slot)))
}

func (t Token) slot() int       { return int(uint32(t)) }
func (t Token) version() uint32 { return uint32(t >> 32) }

// checkToken validates a token against the current container version.
func checkToken(t Token, version uint32) {
	if t.version() != version {
		panic(fmt.Errorf("%w: token version %d, container version %d",
			ErrStaleToken, t.version(), version))
	}
}

// Presence classifies a key lookup. The three states distinguish a missing
// key from a present key whose value is conceptually null.
type Presence uint8

const (
	// Absent means the key is not in the container.
	Absent Presence = iota
	// Null means the key is present and maps to the null value.
	Null
	// Present means the key is present with a real value.
	Present
)

// String implements fmt.Stringer.
func (p Presence) String() string {
	switch p {
	case Absent:
		return "absent"
	case Null:
		return "null"
	case Present:
		return "present"
	default:
		return fmt.Sprintf("presence(%d)", uint8(p))
	}
}
