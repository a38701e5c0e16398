package common_test

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/workledger/registry-services/constants"
	"github.com/workledger/registry-services/ledger"
	"github.com/workledger/registry-services/models/common"
)

var msg = "Something went wrong"
var innerError = fmt.Errorf("This is the inner error")

func TestNewStepError(t *testing.T) {
	err := common.NewStepError(constants.StageSubmitting, msg, nil)
	assert.Nil(t, err.Err)
	assert.Equal(t, msg, err.Message)
	assert.Equal(t, "Submitting: "+msg, err.Error())
	assert.True(t, err.IsFatal)
	assert.NotEqual(t, 0, err.Line)
	assert.True(t, strings.HasSuffix(err.File, "errors_test.go"))
}

func TestStepErrorUnwrap(t *testing.T) {
	wrapped := fmt.Errorf("%w: bad nonce", ledger.ErrRejected)
	err := common.NewStepError(constants.StageSubmitting, msg, wrapped)
	assert.Equal(t, wrapped, err.Unwrap())
	assert.True(t, errors.Is(err, ledger.ErrRejected))
	assert.False(t, errors.Is(err, ledger.ErrTimeout))
	assert.Contains(t, err.Error(), "bad nonce")
}

func TestStepErrorDetail(t *testing.T) {
	err := common.NewStepError(constants.StageConfirming, msg, innerError)
	err.Settled = true
	err.ResourcesConsumed = 21000
	err.BlockRef = 12
	detail := err.Detail()
	assert.True(t, strings.HasPrefix(detail, "FATAL"))
	assert.Contains(t, detail, err.Message)
	assert.Contains(t, detail, err.File)
	assert.Contains(t, detail, strconv.Itoa(err.Line))
	assert.Contains(t, detail, "Underlying error")
	assert.Contains(t, detail, innerError.Error())
	assert.Contains(t, detail, "Resources consumed: 21000 in block 12")

	err.Settled = false
	assert.NotContains(t, err.Detail(), "Resources consumed")
}

func TestStepOf(t *testing.T) {
	err := common.NewStepError(constants.StageDigesting, msg, innerError)
	wrapped := fmt.Errorf("registering: %w", err)
	step, ok := common.StepOf(wrapped)
	assert.True(t, ok)
	assert.Equal(t, constants.StageDigesting, step)

	_, ok = common.StepOf(innerError)
	assert.False(t, ok)
}

func TestDetailedError(t *testing.T) {
	err := common.NewStepError(constants.StageEstimating, msg, nil)
	assert.Equal(t, err.Detail(), testfunc(err))
}

func testfunc(err common.DetailedError) string {
	return err.Detail()
}
