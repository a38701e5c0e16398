// Package ledger describes the append-only store of work registrations
// as the engines see it. The store itself lives elsewhere; this package
// defines the operations we drive it through and the values that
// cross that boundary.
package ledger

import (
	"context"
	"time"

	"github.com/workledger/registry-services/models/registry"
)

// Reader holds the query side of the ledger. All calls read ledger
// state as of the moment they're made.
type Reader interface {
	// ExistsByContent returns the id of the work registered under
	// this exact hash string, or an empty string if there is none.
	ExistsByContent(ctx context.Context, contentHash string) (string, error)

	// GetDetails returns the work record for workID. It returns an
	// error wrapping ErrNotFound if there is no such work.
	GetDetails(ctx context.Context, workID string) (*registry.WorkRecord, error)

	// VerifyMatch returns true if the record for workID carries
	// exactly this content hash.
	VerifyMatch(ctx context.Context, workID, contentHash string) (bool, error)

	// ListByCreator returns the ids of all works registered by creator.
	// Order is up to the ledger.
	ListByCreator(ctx context.Context, creator string) ([]string, error)
}

// Writer holds the registration side of the ledger.
type Writer interface {
	// EstimateResources returns the number of resource units the
	// registration would consume if submitted now by from.
	EstimateResources(ctx context.Context, params WorkParams, from string) (uint64, error)

	// SequenceNumber returns the next sequence number the ledger
	// will accept from signer.
	SequenceNumber(ctx context.Context, signer string) (uint64, error)

	// ResourcePrice returns the current price per resource unit.
	ResourcePrice(ctx context.Context) (uint64, error)

	// Balance returns signer's available funds.
	Balance(ctx context.Context, signer string) (uint64, error)

	// NetworkID identifies the ledger network operations are bound to.
	NetworkID() int64

	// Submit broadcasts a signed operation. Malformed operations,
	// bad signatures, stale sequence numbers and insufficient funds
	// are rejected before broadcast with an error wrapping ErrRejected.
	Submit(ctx context.Context, op *SignedOperation) (SubmissionHandle, error)

	// AwaitConfirmation waits up to timeout for the operation to settle.
	// It returns an error wrapping ErrTimeout if it doesn't.
	AwaitConfirmation(ctx context.Context, handle SubmissionHandle, timeout time.Duration) (*Receipt, error)
}

// Gateway is the full ledger interface used by the registration engine.
type Gateway interface {
	Reader
	Writer
}
