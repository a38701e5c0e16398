// Package resolution answers "is this registered?" for a work id, a
// content hash or a file.
//
// When a query carries more than one identifier, the work id wins,
// then the hash text, then the file. Whatever is left over after the
// winner is picked is checked against the resolved work and
// reported as a verdict, never as an error.
package resolution

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/op/go-logging"
	"github.com/workledger/registry-services/constants"
	"github.com/workledger/registry-services/digest"
	"github.com/workledger/registry-services/ledger"
	"github.com/workledger/registry-services/models/common"
	"github.com/workledger/registry-services/models/registry"
	"github.com/workledger/registry-services/models/service"
	"github.com/workledger/registry-services/util/logger"
)

// Query holds the identifiers a caller has for a work. Any of them
// may be empty.
type Query struct {
	WorkID   string
	HashText string
	File     io.Reader
}

// Engine resolves queries against the ledger. It only reads.
type Engine struct {
	reader   ledger.Reader
	digester *digest.Digester
	logger   *logging.Logger
}

func NewEngine(reader ledger.Reader, digester *digest.Digester, _logger *logging.Logger) *Engine {
	if _logger == nil {
		_logger = logger.DiscardLogger("resolution")
	}
	if digester == nil {
		digester = digest.NewDigester(constants.DefaultChunkSize)
	}
	return &Engine{
		reader:   reader,
		digester: digester,
		logger:   _logger,
	}
}

// Resolve runs exactly one lookup for q. Not found, not registered,
// unmatched and missing input are outcomes in the result. The error
// is non-nil only when something broke: an unreadable file or a
// ledger that won't answer.
func (e *Engine) Resolve(ctx context.Context, q *Query) (*service.ResolutionResult, error) {
	workID := strings.TrimSpace(q.WorkID)
	hash := digest.Canonicalize(q.HashText)

	if workID != "" {
		return e.resolveByID(ctx, workID, hash, q.File)
	}
	if !hash.IsEmpty() {
		return e.resolveByContent(ctx, hash, service.ResolvedByContentHash)
	}
	if q.File != nil {
		fileHash, err := e.digestFile(ctx, q.File)
		if err != nil {
			return nil, err
		}
		return e.resolveByContent(ctx, fileHash, service.ResolvedByFile)
	}
	return &service.ResolutionResult{Outcome: service.OutcomeMissingInput}, nil
}

// resolveByID looks up workID. If the caller also gave us a hash or
// a file, we check it against the record. Hash text takes precedence
// over the file here too.
func (e *Engine) resolveByID(ctx context.Context, workID string, hash digest.HashString, file io.Reader) (*service.ResolutionResult, error) {
	result, err := e.lookup(ctx, workID)
	if err != nil || !result.Found() {
		return result, err
	}
	secondary := hash
	if secondary.IsEmpty() && file != nil {
		secondary, err = e.digestFile(ctx, file)
		if err != nil {
			return nil, err
		}
	}
	if !secondary.IsEmpty() {
		result.SecondaryHash = secondary.String()
		result.Verdict = e.verify(ctx, workID, secondary)
	}
	return result, nil
}

func (e *Engine) lookup(ctx context.Context, workID string) (*service.ResolutionResult, error) {
	result := &service.ResolutionResult{ResolvedBy: service.ResolvedByWorkID}
	record, err := e.reader.GetDetails(ctx, workID)
	if errors.Is(err, ledger.ErrNotFound) {
		result.Outcome = service.OutcomeNotFound
		return result, nil
	}
	if err != nil {
		return nil, common.NewStepError(constants.StepLookupByID, fmt.Sprintf("could not look up %s", workID), err)
	}
	result.Outcome = service.OutcomeFound
	result.Record = record
	result.ContentHash = digest.Canonicalize(record.ContentHash).String()
	return result, nil
}

// verify asks the ledger whether workID carries hash, in each of the
// encodings the ledger might have stored. A probe that errors counts
// as no match.
func (e *Engine) verify(ctx context.Context, workID string, hash digest.HashString) service.Verdict {
	for _, variant := range digest.ProbeVariants(hash) {
		matched, err := e.reader.VerifyMatch(ctx, workID, variant)
		if err != nil {
			e.logger.Warningf("VerifyMatch %s against %s: %v", workID, variant, err)
			continue
		}
		if matched {
			return service.VerdictMatched
		}
	}
	return service.VerdictUnmatched
}

// resolveByContent finds the work registered under hash, then looks
// it up by id so callers get the same answer either way.
func (e *Engine) resolveByContent(ctx context.Context, hash digest.HashString, resolvedBy service.ResolvedBy) (*service.ResolutionResult, error) {
	result := &service.ResolutionResult{
		ResolvedBy:  resolvedBy,
		ContentHash: hash.String(),
	}
	if !hash.Valid() {
		e.logger.Infof("%s does not look like a sha256 digest", hash)
	}
	probes := digest.ProbeVariants(hash)
	var lastErr error
	failures := 0
	for _, variant := range probes {
		workID, err := e.reader.ExistsByContent(ctx, variant)
		if err != nil {
			e.logger.Warningf("ExistsByContent %s: %v", variant, err)
			lastErr = err
			failures++
			continue
		}
		if workID == "" {
			continue
		}
		found, err := e.lookup(ctx, workID)
		if err != nil {
			return nil, err
		}
		found.ResolvedBy = resolvedBy
		if found.ContentHash == "" {
			found.ContentHash = hash.String()
		}
		return found, nil
	}
	if failures == len(probes) {
		return nil, common.NewStepError(constants.StepLookupByContent,
			fmt.Sprintf("could not look up content %s", hash), lastErr)
	}
	result.Outcome = service.OutcomeNotRegistered
	return result, nil
}

func (e *Engine) digestFile(ctx context.Context, file io.Reader) (digest.HashString, error) {
	contentDigest, err := e.digester.Digest(ctx, file)
	if err != nil {
		return "", common.NewStepError(constants.StageDigesting, "could not read file", err)
	}
	return digest.FromDigest(contentDigest), nil
}

// ListByCreator returns the records of every work creator has
// registered. Ids the ledger lists but can't describe are skipped.
func (e *Engine) ListByCreator(ctx context.Context, creator string) ([]*registry.WorkRecord, error) {
	creator = strings.TrimSpace(creator)
	if creator == "" {
		return nil, common.NewStepError(constants.StepListByCreator, "creator is required", nil)
	}
	ids, err := e.reader.ListByCreator(ctx, creator)
	if err != nil {
		return nil, common.NewStepError(constants.StepListByCreator,
			fmt.Sprintf("could not list works by %s", creator), err)
	}
	records := make([]*registry.WorkRecord, 0, len(ids))
	for _, id := range ids {
		record, err := e.reader.GetDetails(ctx, id)
		if errors.Is(err, ledger.ErrNotFound) {
			e.logger.Warningf("Ledger lists %s for %s but has no record of it", id, creator)
			continue
		}
		if err != nil {
			return nil, common.NewStepError(constants.StepListByCreator,
				fmt.Sprintf("could not look up %s", id), err)
		}
		records = append(records, record)
	}
	return records, nil
}
