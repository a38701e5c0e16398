package network

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis/v7"
	"github.com/op/go-logging"
	"github.com/workledger/registry-services/ledger"
	"github.com/workledger/registry-services/models/registry"
)

// Resource costs charged for a registration. A registration pays a
// flat base, a per-byte charge on its payload, and a storage charge
// for each of the three entries it writes (work record, content
// index, creator list).
const (
	BaseResourceCost    uint64 = 21000
	PerByteResourceCost uint64 = 68
	StorageResourceCost uint64 = 20000
	StorageSlotsWritten uint64 = 3
)

// DefaultResourcePrice applies when no price has been set on the ledger.
const DefaultResourcePrice uint64 = 1

// DefaultPollInterval is how often AwaitConfirmation checks for a receipt.
const DefaultPollInterval = 250 * time.Millisecond

// ResourceCost returns the resource units a registration of params
// consumes when it runs to completion.
func ResourceCost(params ledger.WorkParams) uint64 {
	return BaseResourceCost +
		PerByteResourceCost*uint64(params.Size()) +
		StorageResourceCost*StorageSlotsWritten
}

// submitScript checks and settles a submission in one step, so that
// the sequence check, the funds check, the debit and the record write
// cannot interleave with another submission.
//
// KEYS: seq, balance, work, content, creator, block, receipt
// ARGV: sequence, maxCost, consumed, debit, outOfResources, work_id,
//
//	title, work_type, content_hash, creator, registered_at, metadata
var submitScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[7]) == 1 then
  return {'rejected', 'operation already submitted'}
end
local expected = tonumber(redis.call('GET', KEYS[1]) or '0')
if tonumber(ARGV[1]) ~= expected then
  return {'rejected', 'sequence ' .. ARGV[1] .. ' does not match expected ' .. tostring(expected)}
end
local balance = tonumber(redis.call('GET', KEYS[2]) or '0')
if tonumber(ARGV[2]) > balance then
  return {'rejected', 'insufficient funds'}
end
redis.call('INCR', KEYS[1])
local block = redis.call('INCR', KEYS[6])
redis.call('DECRBY', KEYS[2], ARGV[4])
local status = '1'
local reason = ''
if ARGV[5] == '1' then
  status = '0'
  reason = 'out of resources'
elseif redis.call('EXISTS', KEYS[3]) == 1 then
  status = '0'
  reason = 'work id already registered'
elseif redis.call('EXISTS', KEYS[4]) == 1 then
  status = '0'
  reason = 'content already registered'
end
if status == '1' then
  redis.call('HSET', KEYS[3], 'work_id', ARGV[6], 'title', ARGV[7], 'work_type', ARGV[8], 'content_hash', ARGV[9], 'creator', ARGV[10], 'registered_at', ARGV[11], 'metadata', ARGV[12])
  redis.call('SET', KEYS[4], ARGV[6])
  redis.call('RPUSH', KEYS[5], ARGV[6])
end
redis.call('HSET', KEYS[7], 'status', status, 'resources_consumed', ARGV[3], 'block', tostring(block), 'reason', reason)
return {'settled', status}
`)

// LedgerClient is a ledger.Gateway backed by Redis. All keys live
// under "ledger:<network id>:", so several networks can share one
// Redis database.
type LedgerClient struct {
	client       *redis.Client
	logger       *logging.Logger
	networkID    int64
	PollInterval time.Duration
	now          func() time.Time
}

// NewLedgerClient returns a client for the ledger at address.
func NewLedgerClient(address, password string, db int, networkID int64, logger *logging.Logger) *LedgerClient {
	return &LedgerClient{
		client: redis.NewClient(&redis.Options{
			Addr:     address,
			Password: password,
			DB:       db,
		}),
		logger:       logger,
		networkID:    networkID,
		PollInterval: DefaultPollInterval,
		now:          time.Now,
	}
}

func (c *LedgerClient) Ping() (string, error) {
	return c.client.Ping().Result()
}

func (c *LedgerClient) Close() error {
	return c.client.Close()
}

func (c *LedgerClient) NetworkID() int64 {
	return c.networkID
}

func (c *LedgerClient) key(parts ...string) string {
	return fmt.Sprintf("ledger:%d:%s", c.networkID, strings.Join(parts, ":"))
}

func (c *LedgerClient) with(ctx context.Context) *redis.Client {
	return c.client.WithContext(ctx)
}

func normalizeAddress(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

// ExistsByContent returns the work id stored under contentHash. The
// ledger compares hash strings exactly, so "abc" and "0xabc" are
// different keys.
func (c *LedgerClient) ExistsByContent(ctx context.Context, contentHash string) (string, error) {
	workID, err := c.with(ctx).Get(c.key("content", contentHash)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("ExistsByContent (%s): %w", contentHash, err)
	}
	return workID, nil
}

func (c *LedgerClient) GetDetails(ctx context.Context, workID string) (*registry.WorkRecord, error) {
	fields, err := c.with(ctx).HGetAll(c.key("work", workID)).Result()
	if err != nil {
		return nil, fmt.Errorf("GetDetails (%s): %w", workID, err)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: %s", ledger.ErrNotFound, workID)
	}
	registeredAt, err := strconv.ParseInt(fields["registered_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("GetDetails (%s): bad registration time %q", workID, fields["registered_at"])
	}
	return &registry.WorkRecord{
		ContentHash:  fields["content_hash"],
		Creator:      fields["creator"],
		Metadata:     fields["metadata"],
		RegisteredAt: time.Unix(registeredAt, 0).UTC(),
		Title:        fields["title"],
		WorkID:       fields["work_id"],
		WorkType:     fields["work_type"],
	}, nil
}

// VerifyMatch returns false, not an error, for unknown work ids.
func (c *LedgerClient) VerifyMatch(ctx context.Context, workID, contentHash string) (bool, error) {
	stored, err := c.with(ctx).HGet(c.key("work", workID), "content_hash").Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("VerifyMatch (%s): %w", workID, err)
	}
	return stored == contentHash, nil
}

func (c *LedgerClient) ListByCreator(ctx context.Context, creator string) ([]string, error) {
	ids, err := c.with(ctx).LRange(c.key("creator", normalizeAddress(creator)), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("ListByCreator (%s): %w", creator, err)
	}
	return ids, nil
}

// EstimateResources fails for operations that would not succeed,
// such as a work id or content hash that is already registered.
func (c *LedgerClient) EstimateResources(ctx context.Context, params ledger.WorkParams, from string) (uint64, error) {
	if err := params.Validate(); err != nil {
		return 0, fmt.Errorf("%w: %v", ledger.ErrEstimation, err)
	}
	if from == "" {
		return 0, fmt.Errorf("%w: missing sender", ledger.ErrEstimation)
	}
	existing, err := c.with(ctx).Exists(c.key("work", params.WorkID), c.key("content", params.ContentHash)).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ledger.ErrEstimation, err)
	}
	if existing > 0 {
		return 0, fmt.Errorf("%w: operation would fail: work or content already registered", ledger.ErrEstimation)
	}
	return ResourceCost(params), nil
}

func (c *LedgerClient) SequenceNumber(ctx context.Context, signer string) (uint64, error) {
	return c.getUint(ctx, c.key("seq", normalizeAddress(signer)), 0)
}

func (c *LedgerClient) ResourcePrice(ctx context.Context) (uint64, error) {
	return c.getUint(ctx, c.key("price"), DefaultResourcePrice)
}

func (c *LedgerClient) Balance(ctx context.Context, signer string) (uint64, error) {
	return c.getUint(ctx, c.key("balance", normalizeAddress(signer)), 0)
}

// SetResourcePrice sets the price per resource unit.
func (c *LedgerClient) SetResourcePrice(ctx context.Context, price uint64) error {
	return c.with(ctx).Set(c.key("price"), strconv.FormatUint(price, 10), 0).Err()
}

// Fund adds amount to address's balance.
func (c *LedgerClient) Fund(ctx context.Context, address string, amount uint64) error {
	return c.with(ctx).IncrBy(c.key("balance", normalizeAddress(address)), int64(amount)).Err()
}

func (c *LedgerClient) getUint(ctx context.Context, key string, defaultValue uint64) (uint64, error) {
	value, err := c.with(ctx).Get(key).Result()
	if err == redis.Nil {
		return defaultValue, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", key, err)
	}
	return strconv.ParseUint(value, 10, 64)
}

// Submit verifies the signed operation and hands it to the ledger,
// which settles it immediately. Pre-broadcast checks that fail come
// back wrapping ledger.ErrRejected.
func (c *LedgerClient) Submit(ctx context.Context, signed *ledger.SignedOperation) (ledger.SubmissionHandle, error) {
	if err := signed.Verify(); err != nil {
		return "", fmt.Errorf("%w: %v", ledger.ErrRejected, err)
	}
	op := signed.Operation
	if op.NetworkID != c.networkID {
		return "", fmt.Errorf("%w: operation is for network %d, this is network %d", ledger.ErrRejected, op.NetworkID, c.networkID)
	}
	if err := op.Validate(); err != nil {
		return "", fmt.Errorf("%w: %v", ledger.ErrRejected, err)
	}
	if op.ResourceLimit == 0 || op.ResourcePrice == 0 {
		return "", fmt.Errorf("%w: resource limit and price must be non-zero", ledger.ErrRejected)
	}
	// Balances are Redis integers.
	if op.MaxCost() > math.MaxInt64 {
		return "", fmt.Errorf("%w: limit %d at price %d is more than any account can hold",
			ledger.ErrRejected, op.ResourceLimit, op.ResourcePrice)
	}

	from := normalizeAddress(op.From)
	cost := ResourceCost(op.WorkParams)
	consumed := cost
	outOfResources := "0"
	if cost > op.ResourceLimit {
		consumed = op.ResourceLimit
		outOfResources = "1"
	}
	handle := signed.Handle()
	keys := []string{
		c.key("seq", from),
		c.key("balance", from),
		c.key("work", op.WorkID),
		c.key("content", op.ContentHash),
		c.key("creator", from),
		c.key("block"),
		c.key("receipt", string(handle)),
	}
	args := []interface{}{
		strconv.FormatUint(op.Sequence, 10),
		strconv.FormatUint(op.MaxCost(), 10),
		strconv.FormatUint(consumed, 10),
		strconv.FormatUint(consumed*op.ResourcePrice, 10),
		outOfResources,
		op.WorkID,
		op.Title,
		op.WorkType,
		op.ContentHash,
		from,
		strconv.FormatInt(c.now().Unix(), 10),
		op.Metadata,
	}
	raw, err := submitScript.Run(c.with(ctx), keys, args...).Result()
	if err != nil {
		return "", fmt.Errorf("submitting %s: %w", op.WorkID, err)
	}
	reply, ok := raw.([]interface{})
	if !ok || len(reply) != 2 {
		return "", fmt.Errorf("submitting %s: unexpected ledger reply %v", op.WorkID, raw)
	}
	if reply[0] == "rejected" {
		return "", fmt.Errorf("%w: %v", ledger.ErrRejected, reply[1])
	}
	if c.logger != nil {
		c.logger.Debugf("Ledger accepted %s for %s as %s", op.WorkID, from, handle)
	}
	return handle, nil
}

// AwaitConfirmation polls for the receipt of handle until it appears,
// timeout elapses, or ctx is done.
func (c *LedgerClient) AwaitConfirmation(ctx context.Context, handle ledger.SubmissionHandle, timeout time.Duration) (*ledger.Receipt, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	ticker := time.NewTicker(c.PollInterval)
	defer ticker.Stop()
	for {
		receipt, err := c.receipt(ctx, handle)
		if err != nil {
			return nil, err
		}
		if receipt != nil {
			return receipt, nil
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %s: %v", ledger.ErrTimeout, handle, ctx.Err())
		case <-timer.C:
			return nil, fmt.Errorf("%w: %s not settled after %s", ledger.ErrTimeout, handle, timeout)
		case <-ticker.C:
		}
	}
}

func (c *LedgerClient) receipt(ctx context.Context, handle ledger.SubmissionHandle) (*ledger.Receipt, error) {
	fields, err := c.with(ctx).HGetAll(c.key("receipt", string(handle))).Result()
	if err != nil {
		return nil, fmt.Errorf("reading receipt %s: %w", handle, err)
	}
	if len(fields) == 0 {
		return nil, nil
	}
	consumed, err := strconv.ParseUint(fields["resources_consumed"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("receipt %s: bad resources_consumed %q", handle, fields["resources_consumed"])
	}
	block, err := strconv.ParseUint(fields["block"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("receipt %s: bad block %q", handle, fields["block"])
	}
	if fields["status"] != "1" && c.logger != nil {
		c.logger.Warningf("Operation %s failed in block %d: %s", handle, block, fields["reason"])
	}
	return &ledger.Receipt{
		Handle:            handle,
		Success:           fields["status"] == "1",
		ResourcesConsumed: consumed,
		BlockRef:          block,
	}, nil
}
