package registration

import (
	"strings"

	"github.com/google/uuid"
	"github.com/workledger/registry-services/constants"
)

// NewWorkID returns a fresh registration id, like WORK-1A2B3C4D.
// The suffix is the first eight hex digits of a random UUID, so ids
// don't depend on anything the ledger knows.
func NewWorkID() string {
	return constants.WorkIDPrefix + strings.ToUpper(uuid.New().String()[:8])
}

// IsWorkID returns true if s looks like a registration id.
func IsWorkID(s string) bool {
	if !strings.HasPrefix(s, constants.WorkIDPrefix) {
		return false
	}
	suffix := s[len(constants.WorkIDPrefix):]
	if len(suffix) != 8 {
		return false
	}
	for _, c := range suffix {
		if !((c >= '0' && c <= '9') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return true
}
