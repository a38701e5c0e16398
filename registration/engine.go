// Package registration records new works on the ledger.
//
// A registration runs as one sequential pipeline:
//
//	Idle → Digesting → DuplicateCheck → Estimating → Submitting → Confirming → Committed | Failed
//
// Only two failures are recovered locally. A duplicate pre-check that
// errors is logged and skipped, and a failed resource estimate falls
// back to a fixed ceiling. Nothing else is retried, because a retried
// submission can spend resources twice.
package registration

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
	"github.com/workledger/registry-services/models/service"
	"github.com/workledger/registry-services/network"
	"github.com/workledger/registry-services/util/logger"
)

// maxWorkIDAttempts bounds how many ids we'll generate looking for
// one the ledger hasn't used.
const maxWorkIDAttempts = 5

// Request describes one work to register.
type Request struct {
	Content  io.Reader
	Title    string
	WorkType string
	Metadata string
	Signer   ledger.Signer
}

// Engine registers works. It keeps no state between calls, so one
// engine can serve many goroutines.
type Engine struct {
	gateway  ledger.Gateway
	digester *digest.Digester
	settings Settings
	logger   *logging.Logger

	// Publisher, if set, receives a copy of every committed
	// registration on constants.TopicRegistered.
	Publisher network.Publisher

	newWorkID func() string
}

func NewEngine(gateway ledger.Gateway, digester *digest.Digester, settings Settings, _logger *logging.Logger) *Engine {
	if _logger == nil {
		_logger = logger.DiscardLogger("registration")
	}
	if digester == nil {
		digester = digest.NewDigester(constants.DefaultChunkSize)
	}
	return &Engine{
		gateway:   gateway,
		digester:  digester,
		settings:  settings,
		logger:    _logger,
		newWorkID: NewWorkID,
	}
}

// Register runs a registration to completion. The result is never
// nil: it records how far the registration got and what it cost.
//
// A duplicate is a normal outcome, reported in the result with a nil
// error. Any other failure returns a *common.StepError naming the
// stage that failed. Failures after submission carry the resources
// the ledger says were consumed.
func (e *Engine) Register(ctx context.Context, req *Request) (*service.RegistrationResult, error) {
	workType := strings.TrimSpace(req.WorkType)
	if workType == "" {
		workType = constants.DefaultWorkType
	}
	result := service.NewRegistrationResult(strings.TrimSpace(req.Title), workType)
	result.Metadata = req.Metadata
	result.Start()
	defer result.Finish()

	if result.Title == "" {
		return e.fail(result, common.NewStepError(constants.StageIdle, "title is required", nil))
	}
	if req.Signer == nil {
		return e.fail(result, common.NewStepError(constants.StageIdle, "no signer", nil))
	}
	result.Creator = req.Signer.Address()

	// Digesting
	result.Stage = constants.StageDigesting
	contentDigest, err := e.digester.Digest(ctx, req.Content)
	if err != nil {
		return e.fail(result, common.NewStepError(constants.StageDigesting, "could not read content", err))
	}
	contentHash := digest.FromDigest(contentDigest)
	result.ContentHash = contentHash.String()

	// DuplicateCheck
	result.Stage = constants.StageDuplicateCheck
	if e.isDuplicate(ctx, result) {
		return result, nil
	}

	// Estimating
	result.Stage = constants.StageEstimating
	result.WorkID = e.unusedWorkID(ctx)
	params := ledger.WorkParams{
		WorkID:      result.WorkID,
		Title:       result.Title,
		WorkType:    result.WorkType,
		ContentHash: result.ContentHash,
		Metadata:    req.Metadata,
	}
	e.estimate(ctx, result, params)

	// Submitting
	result.Stage = constants.StageSubmitting
	handle, err := e.submit(ctx, result, params, req.Signer)
	if err != nil {
		return e.fail(result, err)
	}

	// Confirming
	result.Stage = constants.StageConfirming
	if err = e.confirm(ctx, result, handle); err != nil {
		return e.fail(result, err)
	}

	result.Stage = constants.StageCommitted
	result.Outcome = service.OutcomeCommitted
	e.logger.Infof("Registered %s (%s) as %s in block %d, consumed %d",
		result.Title, result.ContentHash, result.WorkID, result.BlockRef, result.ResourcesConsumed)
	result.Finish()
	e.publish(result)
	return result, nil
}

// isDuplicate returns true if the ledger already has this content. An
// error from the ledger is logged and treated as "not a duplicate":
// the check is advisory, and the ledger is the final authority.
func (e *Engine) isDuplicate(ctx context.Context, result *service.RegistrationResult) bool {
	existingID, err := e.gateway.ExistsByContent(ctx, result.ContentHash)
	if err != nil {
		e.logger.Warningf("Duplicate check for %s failed, continuing without it: %v", result.ContentHash, err)
		result.DuplicateCheckSkipped = true
		return false
	}
	if existingID == "" {
		return false
	}
	result.WorkID = existingID
	result.Outcome = service.OutcomeDuplicate
	result.FailedStage = constants.StageDuplicateCheck
	result.Stage = constants.StageFailed
	record, err := e.gateway.GetDetails(ctx, existingID)
	if err != nil {
		e.logger.Warningf("Content %s is registered as %s, but details are unavailable: %v",
			result.ContentHash, existingID, err)
	} else {
		result.ExistingRecord = record
	}
	e.logger.Infof("Content %s is already registered as %s", result.ContentHash, existingID)
	return true
}

// unusedWorkID returns a fresh work id that the ledger doesn't
// already hold. Ids carry only 32 random bits, so collisions are rare
// but possible, and a colliding submission would settle as a paid
// failure. If the ledger can't answer, the id is used as is and the
// ledger's own check at settlement applies.
func (e *Engine) unusedWorkID(ctx context.Context) string {
	var workID string
	for i := 0; i < maxWorkIDAttempts; i++ {
		workID = e.newWorkID()
		_, err := e.gateway.GetDetails(ctx, workID)
		if errors.Is(err, ledger.ErrNotFound) {
			return workID
		}
		if err != nil {
			e.logger.Warningf("Could not check whether %s is taken, using it anyway: %v", workID, err)
			return workID
		}
		e.logger.Infof("Work id %s is taken, generating another", workID)
	}
	return workID
}

func (e *Engine) estimate(ctx context.Context, result *service.RegistrationResult, params ledger.WorkParams) {
	estimate, err := e.gateway.EstimateResources(ctx, params, result.Creator)
	if err != nil || estimate == 0 {
		e.logger.Warningf("Resource estimate for %s failed, using fallback limit %d: %v",
			params.WorkID, e.settings.FallbackLimit, err)
		result.ResourceLimit = e.settings.FallbackLimit
		result.UsedFallbackLimit = true
		return
	}
	result.ResourceEstimate = estimate
	result.ResourceLimit = e.settings.WithMargin(estimate)
}

// submit reads the signer's sequence number and the resource price,
// signs the operation and hands it to the ledger.
func (e *Engine) submit(ctx context.Context, result *service.RegistrationResult, params ledger.WorkParams, signer ledger.Signer) (ledger.SubmissionHandle, error) {
	stage := constants.StageSubmitting
	sequence, err := e.gateway.SequenceNumber(ctx, result.Creator)
	if err != nil {
		return "", common.NewStepError(stage, "could not read sequence number", err)
	}
	result.Sequence = sequence
	price, err := e.gateway.ResourcePrice(ctx)
	if err != nil {
		return "", common.NewStepError(stage, "could not read resource price", err)
	}
	result.ResourcePrice = price

	op := &ledger.Operation{
		WorkParams:    params,
		From:          result.Creator,
		Sequence:      sequence,
		ResourceLimit: result.ResourceLimit,
		ResourcePrice: price,
		NetworkID:     e.gateway.NetworkID(),
	}
	if e.settings.CheckBalance {
		if err = e.checkBalance(ctx, op); err != nil {
			return "", err
		}
	}
	signed, err := ledger.Sign(op, signer)
	if err != nil {
		return "", common.NewStepError(stage, "could not sign operation", err)
	}
	handle, err := e.gateway.Submit(ctx, signed)
	if err != nil {
		return "", common.NewStepError(stage, "ledger did not accept operation", err)
	}
	result.Handle = string(handle)
	e.logger.Infof("Submitted %s from %s with sequence %d, limit %d, price %d: %s",
		op.WorkID, op.From, op.Sequence, op.ResourceLimit, op.ResourcePrice, handle)
	return handle, nil
}

// checkBalance refuses operations the signer can't pay for.
func (e *Engine) checkBalance(ctx context.Context, op *ledger.Operation) error {
	stage := constants.StageSubmitting
	balance, err := e.gateway.Balance(ctx, op.From)
	if err != nil {
		return common.NewStepError(stage, "could not read balance", err)
	}
	if balance == 0 {
		return common.NewStepError(stage, fmt.Sprintf("account %s has no funds", op.From), ledger.ErrRejected)
	}
	if op.MaxCost() > balance {
		return common.NewStepError(stage,
			fmt.Sprintf("account %s has %d, operation may cost up to %d", op.From, balance, op.MaxCost()),
			ledger.ErrRejected)
	}
	return nil
}

// confirm waits for the operation to settle and records what it cost.
func (e *Engine) confirm(ctx context.Context, result *service.RegistrationResult, handle ledger.SubmissionHandle) error {
	stage := constants.StageConfirming
	receipt, err := e.gateway.AwaitConfirmation(ctx, handle, e.settings.ConfirmationTimeout)
	if err != nil {
		if !errors.Is(err, ledger.ErrTimeout) && ctx.Err() != nil {
			err = fmt.Errorf("%w: %v", ledger.ErrTimeout, err)
		}
		return common.NewStepError(stage, fmt.Sprintf("operation %s did not settle", handle), err)
	}
	result.Settled = true
	result.ResourcesConsumed = receipt.ResourcesConsumed
	result.BlockRef = receipt.BlockRef
	if !receipt.Success {
		stepErr := common.NewStepError(stage,
			fmt.Sprintf("operation %s failed in block %d", handle, receipt.BlockRef),
			common.ErrSettlement)
		stepErr.Settled = true
		stepErr.ResourcesConsumed = receipt.ResourcesConsumed
		stepErr.BlockRef = receipt.BlockRef
		return stepErr
	}
	return nil
}

// fail marks result as failed in the stage it had reached.
func (e *Engine) fail(result *service.RegistrationResult, err error) (*service.RegistrationResult, error) {
	if step, ok := common.StepOf(err); ok {
		result.FailedStage = step
	} else {
		result.FailedStage = result.Stage
	}
	result.Stage = constants.StageFailed
	result.Outcome = service.OutcomeFailed
	result.ErrorMessage = err.Error()
	var detailed common.DetailedError
	if errors.As(err, &detailed) {
		e.logger.Error(detailed.Detail())
	} else {
		e.logger.Error(err.Error())
	}
	return result, err
}

func (e *Engine) publish(result *service.RegistrationResult) {
	if e.Publisher == nil {
		return
	}
	data, err := result.ToJson()
	if err == nil {
		err = e.Publisher.Publish(constants.TopicRegistered, data)
	}
	if err != nil {
		e.logger.Warningf("Could not publish registration of %s: %v", result.WorkID, err)
	}
}
