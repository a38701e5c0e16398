package ledger

import (
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"math/bits"
	"strings"

	"github.com/minio/sha256-simd"
	"github.com/workledger/registry-services/keys"
)

// WorkParams are the registration arguments, independent of who
// submits them or what they pay.
type WorkParams struct {
	WorkID      string `json:"work_id"`
	Title       string `json:"title"`
	WorkType    string `json:"work_type"`
	ContentHash string `json:"content_hash"`
	Metadata    string `json:"metadata"`
}

// Validate returns an error describing the first required field
// that is missing.
func (p WorkParams) Validate() error {
	if strings.TrimSpace(p.WorkID) == "" {
		return fmt.Errorf("work id is required")
	}
	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if strings.TrimSpace(p.ContentHash) == "" {
		return fmt.Errorf("content hash is required")
	}
	return nil
}

// Size returns the number of payload bytes the ledger charges for.
func (p WorkParams) Size() int {
	return len(p.WorkID) + len(p.Title) + len(p.WorkType) + len(p.ContentHash) + len(p.Metadata)
}

// Operation is a registration bound to a signer, a sequence number,
// a resource budget and a network.
type Operation struct {
	WorkParams
	From          string `json:"from"`
	Sequence      uint64 `json:"sequence"`
	ResourceLimit uint64 `json:"resource_limit"`
	ResourcePrice uint64 `json:"resource_price"`
	NetworkID     int64  `json:"network_id"`
}

// MaxCost is the most this operation can spend. A product too large
// for a uint64 is reported as math.MaxUint64, which no balance covers.
func (op *Operation) MaxCost() uint64 {
	hi, lo := bits.Mul64(op.ResourceLimit, op.ResourcePrice)
	if hi != 0 {
		return math.MaxUint64
	}
	return lo
}

// SigningBytes returns the bytes that get signed. Field order is
// fixed by the struct, so the encoding is deterministic.
func (op *Operation) SigningBytes() ([]byte, error) {
	return json.Marshal(op)
}

// Signer is anything that can sign operations on behalf of an address.
type Signer interface {
	Address() string
	PublicKey() []byte
	Sign(message []byte) ([]byte, error)
}

// SignedOperation is an operation ready for submission.
type SignedOperation struct {
	Operation *Operation `json:"operation"`
	PublicKey []byte     `json:"public_key"`
	Signature []byte     `json:"signature"`
}

// Sign binds op to signer. The operation's From field must match the
// signer's address.
func Sign(op *Operation, signer Signer) (*SignedOperation, error) {
	if op.From != signer.Address() {
		return nil, fmt.Errorf("operation is from %s but signer is %s", op.From, signer.Address())
	}
	message, err := op.SigningBytes()
	if err != nil {
		return nil, err
	}
	signature, err := signer.Sign(message)
	if err != nil {
		return nil, fmt.Errorf("signing operation: %w", err)
	}
	return &SignedOperation{
		Operation: op,
		PublicKey: signer.PublicKey(),
		Signature: signature,
	}, nil
}

// Verify checks that the signature is valid and that the public key
// belongs to the operation's From address.
func (s *SignedOperation) Verify() error {
	if s.Operation == nil {
		return fmt.Errorf("missing operation")
	}
	if len(s.PublicKey) != ed25519.PublicKeySize {
		return fmt.Errorf("bad public key length %d", len(s.PublicKey))
	}
	if keys.AddressFromPublicKey(s.PublicKey) != s.Operation.From {
		return fmt.Errorf("public key does not belong to %s", s.Operation.From)
	}
	message, err := s.Operation.SigningBytes()
	if err != nil {
		return err
	}
	if !ed25519.Verify(ed25519.PublicKey(s.PublicKey), message, s.Signature) {
		return fmt.Errorf("bad signature")
	}
	return nil
}

// Handle returns the submission handle the ledger will assign to
// this operation: the hex sha256 of its signature.
func (s *SignedOperation) Handle() SubmissionHandle {
	sum := sha256.Sum256(s.Signature)
	return SubmissionHandle("0x" + hex.EncodeToString(sum[:]))
}

// SubmissionHandle identifies a broadcast operation.
type SubmissionHandle string

// Receipt describes how a submitted operation settled. Failed
// operations still consume resources.
type Receipt struct {
	Handle            SubmissionHandle `json:"handle"`
	Success           bool             `json:"success"`
	ResourcesConsumed uint64           `json:"resources_consumed"`
	BlockRef          uint64           `json:"block_ref"`
}
