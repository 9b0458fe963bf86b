package crypto

import (
	"strings"
	"testing"
)

func TestAddressRoundTrip(t *testing.T) {
	var raw [20]byte
	for i := range raw {
		raw[i] = byte(i + 1)
	}
	addr := NewAddress(raw)
	encoded := addr.String()
	if !strings.HasPrefix(encoded, LikePrefix+"1") {
		t.Fatalf("encoded address missing prefix: %s", encoded)
	}
	decoded, err := DecodeAddress(encoded)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if decoded.Bytes() != raw {
		t.Fatalf("round trip mismatch: %x != %x", decoded.Bytes(), raw)
	}
}

func TestDecodeAddressRejectsForeignPrefix(t *testing.T) {
	if _, err := DecodeAddress("nhb1qqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqq5a2g0v"); err == nil {
		t.Fatal("expected foreign prefix to be rejected")
	}
}

func TestAddressFromBytesLength(t *testing.T) {
	if _, err := AddressFromBytes(make([]byte, 19)); err == nil {
		t.Fatal("expected short address to be rejected")
	}
}
