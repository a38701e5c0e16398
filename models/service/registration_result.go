package service

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/workledger/registry-services/constants"
	"github.com/workledger/registry-services/models/registry"
)

// RegistrationResult describes one registration attempt. It is
// returned for every attempt, including failed ones, so callers can
// see what was spent even when the registration did not go through.
type RegistrationResult struct {
	// Stage is the last stage the registration reached. When the
	// registration is done, this is Committed or Failed.
	Stage string `json:"stage"`

	// FailedStage is the stage in which a failed registration
	// stopped. Empty unless Stage is Failed.
	FailedStage string `json:"failed_stage,omitempty"`

	Outcome     Outcome `json:"outcome"`
	WorkID      string  `json:"work_id,omitempty"`
	Title       string  `json:"title"`
	WorkType    string  `json:"work_type"`
	ContentHash string  `json:"content_hash,omitempty"`
	Creator     string  `json:"creator,omitempty"`
	Metadata    string  `json:"metadata,omitempty"`

	// ExistingRecord is the already-registered work when Outcome
	// is duplicate. It may be nil if the ledger would not give us
	// details.
	ExistingRecord *registry.WorkRecord `json:"existing_record,omitempty"`

	// DuplicateCheckSkipped is true if the duplicate pre-check
	// could not run and we went ahead without it.
	DuplicateCheckSkipped bool `json:"duplicate_check_skipped,omitempty"`

	ResourceEstimate  uint64 `json:"resource_estimate,omitempty"`
	ResourceLimit     uint64 `json:"resource_limit,omitempty"`
	ResourcePrice     uint64 `json:"resource_price,omitempty"`
	UsedFallbackLimit bool   `json:"used_fallback_limit,omitempty"`
	Sequence          uint64 `json:"sequence,omitempty"`

	// Handle, ResourcesConsumed and BlockRef are set once the
	// operation has been submitted and, for the last two, settled.
	Handle            string `json:"handle,omitempty"`
	ResourcesConsumed uint64 `json:"resources_consumed,omitempty"`
	BlockRef          uint64 `json:"block_ref,omitempty"`
	Settled           bool   `json:"settled"`

	ErrorMessage string    `json:"error_message,omitempty"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
}

func NewRegistrationResult(title, workType string) *RegistrationResult {
	return &RegistrationResult{
		Stage:    constants.StageIdle,
		Title:    title,
		WorkType: workType,
	}
}

func (result *RegistrationResult) Start() {
	result.StartedAt = time.Now().UTC()
}

func (result *RegistrationResult) Finish() {
	result.FinishedAt = time.Now().UTC()
}

func (result *RegistrationResult) Finished() bool {
	return !result.FinishedAt.IsZero()
}

func (result *RegistrationResult) RunTime() time.Duration {
	if result.StartedAt.IsZero() {
		return time.Duration(0)
	}
	endTime := result.FinishedAt
	if endTime.IsZero() {
		endTime = time.Now()
	}
	return endTime.Sub(result.StartedAt)
}

// Committed returns true if the work was registered.
func (result *RegistrationResult) Committed() bool {
	return result.Stage == constants.StageCommitted
}

// Cost is the total spent on resources, as far as we know.
func (result *RegistrationResult) Cost() uint64 {
	return result.ResourcesConsumed * result.ResourcePrice
}

func (result *RegistrationResult) ToJson() ([]byte, error) {
	return json.MarshalIndent(result, "", "  ")
}

func RegistrationResultFromJson(jsonData []byte) (*RegistrationResult, error) {
	result := &RegistrationResult{}
	err := json.Unmarshal(jsonData, result)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ReceiptFileName returns the name of the receipt file for this
// registration, like registration_WORK-1A2B3C4D.json.
func (result *RegistrationResult) ReceiptFileName() string {
	return constants.ReceiptFilePrefix + result.WorkID + ".json"
}

// WriteReceipt saves this result as JSON in dir and returns the path
// of the file it wrote.
func (result *RegistrationResult) WriteReceipt(dir string) (string, error) {
	if result.WorkID == "" {
		return "", fmt.Errorf("cannot write receipt without a work id")
	}
	data, err := result.ToJson()
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, result.ReceiptFileName())
	return path, os.WriteFile(path, data, 0644)
}
