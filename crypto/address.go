package crypto

import (
	"fmt"

	"github.com/btcsuite/btcutil/bech32"
)

// LikePrefix is the human-readable part of every likechain account address.
const LikePrefix = "like"

// Address represents a 20-byte account address rendered as bech32.
type Address struct {
	bytes [20]byte
}

// NewAddress wraps raw address bytes.
func NewAddress(b [20]byte) Address {
	return Address{bytes: b}
}

// AddressFromBytes validates the length of b and wraps it.
func AddressFromBytes(b []byte) (Address, error) {
	if len(b) != 20 {
		return Address{}, fmt.Errorf("address must be 20 bytes long (got %d)", len(b))
	}
	var out [20]byte
	copy(out[:], b)
	return Address{bytes: out}, nil
}

func (a Address) String() string {
	conv, err := bech32.ConvertBits(a.bytes[:], 8, 5, true)
	if err != nil {
		panic(err)
	}
	encoded, err := bech32.Encode(LikePrefix, conv)
	if err != nil {
		panic(err)
	}
	return encoded
}

// Bytes returns the raw 20-byte form.
func (a Address) Bytes() [20]byte {
	return a.bytes
}

// DecodeAddress parses a bech32 account address.
func DecodeAddress(addrStr string) (Address, error) {
	prefix, decoded, err := bech32.Decode(addrStr)
	if err != nil {
		return Address{}, fmt.Errorf("invalid bech32 string: %w", err)
	}
	if prefix != LikePrefix {
		return Address{}, fmt.Errorf("unexpected address prefix %q", prefix)
	}
	conv, err := bech32.ConvertBits(decoded, 5, 8, false)
	if err != nil {
		return Address{}, fmt.Errorf("error converting bits: %w", err)
	}
	return AddressFromBytes(conv)
}
