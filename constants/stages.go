package constants

const (
	StageIdle           = "Idle"
	StageDigesting      = "Digesting"
	StageDuplicateCheck = "DuplicateCheck"
	StageEstimating     = "Estimating"
	StageSubmitting     = "Submitting"
	StageConfirming     = "Confirming"
	StageCommitted      = "Committed"
	StageFailed         = "Failed"
)

// Steps a resolution can fail in. Resolutions don't have a
// pipeline, only these.
const (
	StepLookupByID      = "LookupByID"
	StepLookupByContent = "LookupByContent"
	StepListByCreator   = "ListByCreator"
)

type Stage struct {
	Name     string
	Order    int64
	Terminal bool
}

// RegistrationStages lists the states a registration passes through,
// in order. Committed and Failed are both terminal.
var RegistrationStages = []Stage{
	{Name: StageIdle, Order: 0},
	{Name: StageDigesting, Order: 1},
	{Name: StageDuplicateCheck, Order: 2},
	{Name: StageEstimating, Order: 3},
	{Name: StageSubmitting, Order: 4},
	{Name: StageConfirming, Order: 5},
	{Name: StageCommitted, Order: 6, Terminal: true},
	{Name: StageFailed, Order: 6, Terminal: true},
}

// StageOrder returns the position of the named stage in the
// registration pipeline, or -1 if there is no such stage.
func StageOrder(name string) int64 {
	for _, stage := range RegistrationStages {
		if stage.Name == name {
			return stage.Order
		}
	}
	return -1
}

// IsTerminalStage returns true if a registration in this stage
// is finished, successfully or otherwise.
func IsTerminalStage(name string) bool {
	for _, stage := range RegistrationStages {
		if stage.Name == name {
			return stage.Terminal
		}
	}
	return false
}
