package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/workledger/registry-services/ledger"
	"github.com/workledger/registry-services/models/registry"
)

// FakeLedger is an in-memory ledger.Gateway for engine tests. It
// records every call and lets tests force failures at each step.
// Set the *Err fields to make the matching method fail.
type FakeLedger struct {
	mutex sync.Mutex

	records   map[string]*registry.WorkRecord
	content   map[string]string
	creators  map[string][]string
	sequences map[string]uint64
	balances  map[string]uint64
	receipts  map[ledger.SubmissionHandle]*ledger.Receipt
	block     uint64

	Network int64
	Price   uint64

	// Cost is what each registration consumes when it settles.
	Cost uint64

	ExistsErr      error
	GetDetailsErr  error
	VerifyErr      error
	ListErr        error
	EstimateErr    error
	SequenceErr    error
	PriceErr       error
	BalanceErr     error
	SubmitErr      error
	AwaitErr       error
	SettleFailure  bool
	NeverSettle    bool
	PrefixedHashes bool

	ExistsProbes []string
	VerifyProbes []string
	Estimates    []ledger.WorkParams
	Submitted    []*ledger.SignedOperation
}

func NewFakeLedger() *FakeLedger {
	return &FakeLedger{
		records:   make(map[string]*registry.WorkRecord),
		content:   make(map[string]string),
		creators:  make(map[string][]string),
		sequences: make(map[string]uint64),
		balances:  make(map[string]uint64),
		receipts:  make(map[ledger.SubmissionHandle]*ledger.Receipt),
		Network:   TestNetworkID,
		Price:     1,
		Cost:      30000,
	}
}

// storedHash is how the fake stores content hashes. With
// PrefixedHashes set, it stores them 0x-prefixed, the way some
// ledgers do.
func (f *FakeLedger) storedHash(hash string) string {
	if f.PrefixedHashes && len(hash) > 1 && hash[:2] != "0x" {
		return "0x" + hash
	}
	return hash
}

// AddRecord puts a record straight onto the ledger.
func (f *FakeLedger) AddRecord(record *registry.WorkRecord) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	stored := *record
	stored.ContentHash = f.storedHash(record.ContentHash)
	f.records[record.WorkID] = &stored
	f.content[stored.ContentHash] = record.WorkID
	f.creators[record.Creator] = append(f.creators[record.Creator], record.WorkID)
}

// Fund sets address's balance.
func (f *FakeLedger) Fund(address string, amount uint64) {
	f.mutex.Lock()
	f.balances[address] = amount
	f.mutex.Unlock()
}

func (f *FakeLedger) SubmitCount() int {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return len(f.Submitted)
}

func (f *FakeLedger) ExistsByContent(ctx context.Context, contentHash string) (string, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.ExistsProbes = append(f.ExistsProbes, contentHash)
	if f.ExistsErr != nil {
		return "", f.ExistsErr
	}
	return f.content[contentHash], nil
}

func (f *FakeLedger) GetDetails(ctx context.Context, workID string) (*registry.WorkRecord, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	if f.GetDetailsErr != nil {
		return nil, f.GetDetailsErr
	}
	record, ok := f.records[workID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ledger.ErrNotFound, workID)
	}
	copied := *record
	return &copied, nil
}

func (f *FakeLedger) VerifyMatch(ctx context.Context, workID, contentHash string) (bool, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.VerifyProbes = append(f.VerifyProbes, contentHash)
	if f.VerifyErr != nil {
		return false, f.VerifyErr
	}
	record, ok := f.records[workID]
	return ok && record.ContentHash == contentHash, nil
}

func (f *FakeLedger) ListByCreator(ctx context.Context, creator string) ([]string, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	return append([]string(nil), f.creators[creator]...), nil
}

func (f *FakeLedger) EstimateResources(ctx context.Context, params ledger.WorkParams, from string) (uint64, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.Estimates = append(f.Estimates, params)
	if f.EstimateErr != nil {
		return 0, f.EstimateErr
	}
	return f.Cost, nil
}

func (f *FakeLedger) SequenceNumber(ctx context.Context, signer string) (uint64, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	if f.SequenceErr != nil {
		return 0, f.SequenceErr
	}
	return f.sequences[signer], nil
}

func (f *FakeLedger) ResourcePrice(ctx context.Context) (uint64, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	if f.PriceErr != nil {
		return 0, f.PriceErr
	}
	return f.Price, nil
}

func (f *FakeLedger) Balance(ctx context.Context, signer string) (uint64, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	if f.BalanceErr != nil {
		return 0, f.BalanceErr
	}
	return f.balances[signer], nil
}

func (f *FakeLedger) NetworkID() int64 {
	return f.Network
}

func (f *FakeLedger) Submit(ctx context.Context, signed *ledger.SignedOperation) (ledger.SubmissionHandle, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.Submitted = append(f.Submitted, signed)
	if f.SubmitErr != nil {
		return "", f.SubmitErr
	}
	if err := signed.Verify(); err != nil {
		return "", fmt.Errorf("%w: %v", ledger.ErrRejected, err)
	}
	op := signed.Operation
	if op.Sequence != f.sequences[op.From] {
		return "", fmt.Errorf("%w: bad sequence %d", ledger.ErrRejected, op.Sequence)
	}
	handle := signed.Handle()
	if f.NeverSettle {
		return handle, nil
	}
	f.sequences[op.From]++
	f.block++
	consumed := f.Cost
	success := !f.SettleFailure
	if consumed > op.ResourceLimit {
		consumed = op.ResourceLimit
		success = false
	}
	if _, exists := f.records[op.WorkID]; exists {
		success = false
	}
	if success {
		record := &registry.WorkRecord{
			ContentHash:  f.storedHash(op.ContentHash),
			Creator:      op.From,
			Metadata:     op.Metadata,
			RegisteredAt: time.Now().UTC().Truncate(time.Second),
			Title:        op.Title,
			WorkID:       op.WorkID,
			WorkType:     op.WorkType,
		}
		f.records[op.WorkID] = record
		f.content[record.ContentHash] = op.WorkID
		f.creators[op.From] = append(f.creators[op.From], op.WorkID)
	}
	f.receipts[handle] = &ledger.Receipt{
		Handle:            handle,
		Success:           success,
		ResourcesConsumed: consumed,
		BlockRef:          f.block,
	}
	return handle, nil
}

func (f *FakeLedger) AwaitConfirmation(ctx context.Context, handle ledger.SubmissionHandle, timeout time.Duration) (*ledger.Receipt, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	if f.AwaitErr != nil {
		return nil, f.AwaitErr
	}
	receipt, ok := f.receipts[handle]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ledger.ErrTimeout, handle)
	}
	copied := *receipt
	return &copied, nil
}
