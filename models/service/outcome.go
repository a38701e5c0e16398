package service

// Outcome is the business answer to a registration or resolution.
// An outcome is never an error: a duplicate or an unregistered hash
// means the system worked and the answer is no.
type Outcome string

const (
	OutcomeNone          Outcome = ""
	OutcomeCommitted     Outcome = "committed"
	OutcomeDuplicate     Outcome = "duplicate"
	OutcomeFailed        Outcome = "failed"
	OutcomeFound         Outcome = "found"
	OutcomeMissingInput  Outcome = "missing_input"
	OutcomeNotFound      Outcome = "not_found"
	OutcomeNotRegistered Outcome = "not_registered"
)

// Verdict is the result of checking a second identifier against a
// resolved work.
type Verdict string

const (
	VerdictNone      Verdict = ""
	VerdictMatched   Verdict = "matched"
	VerdictUnmatched Verdict = "unmatched"
)

// ResolvedBy describes which identifier a resolution started from.
type ResolvedBy string

const (
	ResolvedByNothing     ResolvedBy = ""
	ResolvedByWorkID      ResolvedBy = "work_id"
	ResolvedByContentHash ResolvedBy = "content_hash"
	ResolvedByFile        ResolvedBy = "file"
)
