package registration

import (
	"math"
	"math/bits"
	"time"

	"github.com/workledger/registry-services/constants"
	"github.com/workledger/registry-services/models/common"
)

// Settings control how a registration budgets and waits.
type Settings struct {
	// MarginPercent is added on top of the ledger's resource
	// estimate, to absorb state changes between estimation and
	// submission.
	MarginPercent uint64

	// FallbackLimit is the resource limit used when the ledger
	// can't estimate.
	FallbackLimit uint64

	// ConfirmationTimeout is how long to wait for a submitted
	// operation to settle.
	ConfirmationTimeout time.Duration

	// CheckBalance makes the engine refuse to submit when the
	// signer's balance can't cover the resource limit.
	CheckBalance bool
}

func DefaultSettings() Settings {
	return Settings{
		MarginPercent:       constants.ResourceMarginPercent,
		FallbackLimit:       constants.FallbackResourceLimit,
		ConfirmationTimeout: constants.ConfirmationTimeout,
		CheckBalance:        true,
	}
}

// SettingsFromConfig returns settings from config, with defaults for
// anything config leaves at zero.
func SettingsFromConfig(config *common.Config) Settings {
	settings := DefaultSettings()
	if config.ResourceMarginPercent > 0 {
		settings.MarginPercent = config.ResourceMarginPercent
	}
	if config.FallbackResourceLimit > 0 {
		settings.FallbackLimit = config.FallbackResourceLimit
	}
	if config.ConfirmationTimeout > 0 {
		settings.ConfirmationTimeout = config.ConfirmationTimeout
	}
	return settings
}

// WithMargin returns estimate plus the safety margin, in whole
// resource units. Results past math.MaxUint64 are capped there.
func (s Settings) WithMargin(estimate uint64) uint64 {
	multiplier, carry := bits.Add64(100, s.MarginPercent, 0)
	if carry != 0 {
		return math.MaxUint64
	}
	hi, lo := bits.Mul64(estimate, multiplier)
	if hi >= 100 {
		return math.MaxUint64
	}
	quotient, _ := bits.Div64(hi, lo, 100)
	return quotient
}
