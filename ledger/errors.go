package ledger

import "errors"

var (
	// ErrNotFound means the ledger has no work with the requested id.
	ErrNotFound = errors.New("work not found")

	// ErrRejected means the ledger refused an operation before
	// broadcasting it. Nothing was spent.
	ErrRejected = errors.New("operation rejected")

	// ErrEstimation means the ledger could not price an operation.
	ErrEstimation = errors.New("resource estimation failed")

	// ErrTimeout means an operation did not settle in time. It may
	// still settle later.
	ErrTimeout = errors.New("timed out waiting for settlement")
)
