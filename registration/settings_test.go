package registration_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/workledger/registry-services/constants"
	"github.com/workledger/registry-services/models/common"
	"github.com/workledger/registry-services/registration"
)

func TestWithMargin(t *testing.T) {
	settings := registration.DefaultSettings()
	assert.EqualValues(t, 120000, settings.WithMargin(100000))
	for _, estimate := range []uint64{0, 1, 7, 21000, 81413, 123457} {
		assert.Equal(t, estimate*12/10, settings.WithMargin(estimate))
	}

	// Large estimates keep full precision up to the cap.
	assert.Equal(t, uint64(12000000000000000000), settings.WithMargin(10000000000000000000))
	assert.Equal(t, uint64(math.MaxUint64), settings.WithMargin(math.MaxUint64))
	assert.Equal(t, uint64(math.MaxUint64), settings.WithMargin(math.MaxUint64/10*9))

	settings.MarginPercent = math.MaxUint64
	assert.Equal(t, uint64(math.MaxUint64), settings.WithMargin(2))
	settings.MarginPercent = 0
	assert.Equal(t, uint64(math.MaxUint64), settings.WithMargin(math.MaxUint64))
}

func TestSettingsFromConfig(t *testing.T) {
	settings := registration.SettingsFromConfig(&common.Config{})
	assert.Equal(t, registration.DefaultSettings(), settings)

	settings = registration.SettingsFromConfig(&common.Config{
		ResourceMarginPercent: 50,
		FallbackResourceLimit: 900000,
		ConfirmationTimeout:   10 * time.Second,
	})
	assert.EqualValues(t, 50, settings.MarginPercent)
	assert.EqualValues(t, 900000, settings.FallbackLimit)
	assert.Equal(t, 10*time.Second, settings.ConfirmationTimeout)
	assert.True(t, settings.CheckBalance)
	assert.NotEqual(t, constants.FallbackResourceLimit, settings.FallbackLimit)
}
