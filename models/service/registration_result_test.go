package service_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/workledger/registry-services/constants"
	"github.com/workledger/registry-services/models/service"
)

func TestNewRegistrationResult(t *testing.T) {
	result := service.NewRegistrationResult("T", "text")
	assert.Equal(t, constants.StageIdle, result.Stage)
	assert.Equal(t, "T", result.Title)
	assert.Equal(t, "text", result.WorkType)
	assert.Equal(t, service.OutcomeNone, result.Outcome)
	assert.False(t, result.Committed())
	assert.False(t, result.Finished())
	assert.EqualValues(t, 0, result.RunTime())
}

func TestRegistrationResultTiming(t *testing.T) {
	result := service.NewRegistrationResult("T", "text")
	result.Start()
	assert.False(t, result.StartedAt.IsZero())
	result.Finish()
	assert.True(t, result.Finished())

	now := time.Now()
	result.StartedAt = now.Add(-5 * time.Minute)
	result.FinishedAt = now
	assert.EqualValues(t, 5*time.Minute, result.RunTime())
}

func TestRegistrationResultCost(t *testing.T) {
	result := service.NewRegistrationResult("T", "text")
	result.ResourcesConsumed = 21000
	result.ResourcePrice = 3
	assert.EqualValues(t, 63000, result.Cost())
}

func TestRegistrationResultJson(t *testing.T) {
	result := service.NewRegistrationResult("T", "text")
	result.Stage = constants.StageCommitted
	result.Outcome = service.OutcomeCommitted
	result.WorkID = "WORK-ABCDEF12"
	result.ResourcesConsumed = 30000
	result.BlockRef = 7
	result.Settled = true

	data, err := result.ToJson()
	require.Nil(t, err)
	assert.Contains(t, string(data), `"work_id": "WORK-ABCDEF12"`)

	copied, err := service.RegistrationResultFromJson(data)
	require.Nil(t, err)
	assert.True(t, copied.Committed())
	assert.Equal(t, result.WorkID, copied.WorkID)
	assert.EqualValues(t, 7, copied.BlockRef)

	_, err = service.RegistrationResultFromJson([]byte("]"))
	assert.NotNil(t, err)
}

func TestResolutionResult(t *testing.T) {
	result := &service.ResolutionResult{Outcome: service.OutcomeFound}
	assert.False(t, result.Found())
	result.Verdict = service.VerdictMatched
	assert.True(t, result.Matched())
	result.Verdict = service.VerdictUnmatched
	assert.False(t, result.Matched())
}

func TestRegistrationResultWriteReceipt(t *testing.T) {
	dir := t.TempDir()
	result := service.NewRegistrationResult("T", "text")
	_, err := result.WriteReceipt(dir)
	assert.NotNil(t, err)

	result.WorkID = "WORK-1A2B3C4D"
	result.Outcome = service.OutcomeCommitted
	assert.Equal(t, "registration_WORK-1A2B3C4D.json", result.ReceiptFileName())
	path, err := result.WriteReceipt(dir)
	require.Nil(t, err)
	assert.Equal(t, filepath.Join(dir, "registration_WORK-1A2B3C4D.json"), path)

	data, err := os.ReadFile(path)
	require.Nil(t, err)
	saved, err := service.RegistrationResultFromJson(data)
	require.Nil(t, err)
	assert.Equal(t, "WORK-1A2B3C4D", saved.WorkID)
	assert.Equal(t, service.OutcomeCommitted, saved.Outcome)
}
