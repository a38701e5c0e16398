package keys

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/minio/sha256-simd"
)

// Signer holds an unlocked ed25519 key and signs ledger operations
// on behalf of its address.
type Signer struct {
	privateKey ed25519.PrivateKey
}

// NewSigner wraps a 32-byte ed25519 seed.
func NewSigner(seed []byte) (*Signer, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("seed must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}
	return &Signer{privateKey: ed25519.NewKeyFromSeed(seed)}, nil
}

// GenerateSigner creates a signer with a fresh key read from rand.
func GenerateSigner(rand io.Reader) (*Signer, error) {
	_, privateKey, err := ed25519.GenerateKey(rand)
	if err != nil {
		return nil, fmt.Errorf("generating key: %w", err)
	}
	return &Signer{privateKey: privateKey}, nil
}

// Address returns the ledger address for this signer.
func (s *Signer) Address() string {
	return AddressFromPublicKey(s.PublicKey())
}

func (s *Signer) PublicKey() []byte {
	return []byte(s.privateKey.Public().(ed25519.PublicKey))
}

func (s *Signer) Sign(message []byte) ([]byte, error) {
	return ed25519.Sign(s.privateKey, message), nil
}

func (s *Signer) seed() []byte {
	return s.privateKey.Seed()
}

// AddressFromPublicKey derives a ledger address: 0x followed by the
// hex of the first 20 bytes of sha256(publicKey).
func AddressFromPublicKey(publicKey []byte) string {
	sum := sha256.Sum256(publicKey)
	return "0x" + hex.EncodeToString(sum[:20])
}
