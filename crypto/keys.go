package crypto

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/btcsuite/btcutil/bech32"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// AddressPrefix is the human-readable part used when rendering identities.
const AddressPrefix = "lp"

// IdentityLength is the byte length of a ledger identity.
const IdentityLength = 32

// Address represents a 32-byte ledger identity. Identities are derived from a
// keypair but compared purely by value; the ledger never verifies signatures
// itself (the transport layer authenticates callers).
type Address struct {
	bytes [IdentityLength]byte
}

// NewAddress wraps raw identity bytes. It panics when the slice is not exactly
// IdentityLength bytes, mirroring the strictness of on-chain account keys.
func NewAddress(b []byte) Address {
	if len(b) != IdentityLength {
		panic("address must be 32 bytes long")
	}
	var a Address
	copy(a.bytes[:], b)
	return a
}

func (a Address) String() string {
	conv, err := bech32.ConvertBits(a.bytes[:], 8, 5, true)
	if err != nil {
		panic(err)
	}
	encoded, err := bech32.Encode(AddressPrefix, conv)
	if err != nil {
		panic(err)
	}
	return encoded
}

func (a Address) Bytes() []byte {
	return append([]byte(nil), a.bytes[:]...)
}

// Array returns the identity as a fixed-size array for use as a map key.
func (a Address) Array() [IdentityLength]byte {
	return a.bytes
}

// DecodeAddress parses a bech32-encoded identity string.
func DecodeAddress(addrStr string) (Address, error) {
	prefix, decoded, err := bech32.Decode(addrStr)
	if err != nil {
		return Address{}, fmt.Errorf("invalid bech32 string: %w", err)
	}
	if prefix != AddressPrefix {
		return Address{}, fmt.Errorf("unexpected address prefix %q", prefix)
	}
	conv, err := bech32.ConvertBits(decoded, 5, 8, false)
	if err != nil {
		return Address{}, fmt.Errorf("invalid address payload: %w", err)
	}
	if len(conv) != IdentityLength {
		return Address{}, fmt.Errorf("address must decode to %d bytes, got %d", IdentityLength, len(conv))
	}
	return NewAddress(conv), nil
}

// PrivateKey wraps an ECDSA private key on the secp256k1 curve.
type PrivateKey struct {
	PrivateKey *ecdsa.PrivateKey
}

// GeneratePrivateKey creates a new random keypair.
func GeneratePrivateKey() (*PrivateKey, error) {
	key, err := ethcrypto.GenerateKey()
	if err != nil {
		return nil, err
	}
	return &PrivateKey{PrivateKey: key}, nil
}

// PrivateKeyFromBytes reconstructs a key from its raw scalar bytes.
func PrivateKeyFromBytes(b []byte) (*PrivateKey, error) {
	key, err := ethcrypto.ToECDSA(b)
	if err != nil {
		return nil, err
	}
	return &PrivateKey{PrivateKey: key}, nil
}

func (k *PrivateKey) Bytes() []byte {
	return ethcrypto.FromECDSA(k.PrivateKey)
}

// PubKey returns the public half of the keypair.
func (k *PrivateKey) PubKey() *PublicKey {
	return &PublicKey{PublicKey: &k.PrivateKey.PublicKey}
}

// PublicKey wraps an ECDSA public key.
type PublicKey struct {
	PublicKey *ecdsa.PublicKey
}

func (p *PublicKey) Bytes() []byte {
	return ethcrypto.FromECDSAPub(p.PublicKey)
}

// Address derives the 32-byte ledger identity as the keccak256 hash of the
// uncompressed public key.
func (p *PublicKey) Address() Address {
	hash := ethcrypto.Keccak256(p.Bytes()[1:])
	return NewAddress(hash)
}
