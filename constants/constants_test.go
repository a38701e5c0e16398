package constants_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/workledger/registry-services/constants"
)

func TestStageOrder(t *testing.T) {
	assert.EqualValues(t, 0, constants.StageOrder(constants.StageIdle))
	assert.EqualValues(t, 1, constants.StageOrder(constants.StageDigesting))
	assert.EqualValues(t, 2, constants.StageOrder(constants.StageDuplicateCheck))
	assert.EqualValues(t, 3, constants.StageOrder(constants.StageEstimating))
	assert.EqualValues(t, 4, constants.StageOrder(constants.StageSubmitting))
	assert.EqualValues(t, 5, constants.StageOrder(constants.StageConfirming))
	assert.EqualValues(t, 6, constants.StageOrder(constants.StageCommitted))
	assert.EqualValues(t, 6, constants.StageOrder(constants.StageFailed))
	assert.EqualValues(t, -1, constants.StageOrder("Bogus"))
}

func TestIsTerminalStage(t *testing.T) {
	assert.True(t, constants.IsTerminalStage(constants.StageCommitted))
	assert.True(t, constants.IsTerminalStage(constants.StageFailed))
	assert.False(t, constants.IsTerminalStage(constants.StageSubmitting))
	assert.False(t, constants.IsTerminalStage("Bogus"))
}
