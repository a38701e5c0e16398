package service

import (
	"github.com/workledger/registry-services/models/registry"
)

// ResolutionResult is the answer to a lookup by work id, content
// hash or file.
type ResolutionResult struct {
	Outcome    Outcome
	ResolvedBy ResolvedBy

	// ContentHash is the canonical hash we looked up, or the one
	// computed from an uploaded file.
	ContentHash string

	// Record is the resolved work. It is set only when Outcome
	// is found.
	Record *registry.WorkRecord

	// Verdict is set when a second identifier was checked against
	// Record.
	Verdict Verdict

	// SecondaryHash is the canonical hash that Verdict was computed
	// for.
	SecondaryHash string
}

func (r *ResolutionResult) Found() bool {
	return r.Outcome == OutcomeFound && r.Record != nil
}

func (r *ResolutionResult) Matched() bool {
	return r.Verdict == VerdictMatched
}
