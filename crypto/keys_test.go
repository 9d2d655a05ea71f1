package crypto

import (
	"bytes"
	"strings"
	"testing"
)

func TestAddressRoundTrip(t *testing.T) {
	raw := make([]byte, IdentityLength)
	for i := range raw {
		raw[i] = byte(i)
	}
	addr := NewAddress(raw)
	encoded := addr.String()
	if !strings.HasPrefix(encoded, AddressPrefix+"1") {
		t.Fatalf("unexpected prefix: %s", encoded)
	}

	decoded, err := DecodeAddress(encoded)
	if err != nil {
		t.Fatalf("decode address: %v", err)
	}
	if !bytes.Equal(decoded.Bytes(), raw) {
		t.Fatalf("round trip mismatch: %x vs %x", decoded.Bytes(), raw)
	}
}

func TestDecodeAddressRejectsBadInput(t *testing.T) {
	if _, err := DecodeAddress("not-bech32"); err == nil {
		t.Fatalf("expected error for invalid bech32")
	}
	// A valid bech32 string with the wrong prefix is still rejected.
	other := NewAddress(make([]byte, IdentityLength)).String()
	swapped := "xx" + other[len(AddressPrefix):]
	if _, err := DecodeAddress(swapped); err == nil {
		t.Fatalf("expected error for wrong prefix")
	}
}

func TestNewAddressPanicsOnWrongLength(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for short input")
		}
	}()
	NewAddress([]byte{1, 2, 3})
}

func TestKeyDerivesStableAddress(t *testing.T) {
	key, err := GeneratePrivateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	restored, err := PrivateKeyFromBytes(key.Bytes())
	if err != nil {
		t.Fatalf("restore key: %v", err)
	}
	if key.PubKey().Address() != restored.PubKey().Address() {
		t.Fatalf("address changed across serialization")
	}
}
