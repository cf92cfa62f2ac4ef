package shared

import "fmt"

// ApplyStatus classifies the effect of one side adjustment inside a batched write.
type ApplyStatus string

const (
	// StatusApplied means the adjustment was performed.
	StatusApplied ApplyStatus = "applied"
	// StatusSkipped means the target could not be resolved and the adjustment
	// was left out. Skips are reported to the caller, never swallowed.
	StatusSkipped ApplyStatus = "skipped"
	// StatusFailed means the adjustment was attempted and errored; the
	// surrounding transaction rolls back.
	StatusFailed ApplyStatus = "failed"
)

// ApplyOutcome records what happened to a single stock or balance adjustment.
type ApplyOutcome struct {
	Target string      `json:"target"`
	Status ApplyStatus `json:"status"`
	Reason string      `json:"reason,omitempty"`
}

// Applied builds an applied outcome.
func Applied(target string) ApplyOutcome {
	return ApplyOutcome{Target: target, Status: StatusApplied}
}

// Skipped builds a skipped outcome with the resolution failure reason.
func Skipped(target, reason string) ApplyOutcome {
	return ApplyOutcome{Target: target, Status: StatusSkipped, Reason: reason}
}

// Failed builds a failed outcome.
func Failed(target string, err error) ApplyOutcome {
	return ApplyOutcome{Target: target, Status: StatusFailed, Reason: fmt.Sprintf("%v", err)}
}

// AnySkipped reports whether at least one adjustment was skipped.
func AnySkipped(outcomes []ApplyOutcome) bool {
	for _, o := range outcomes {
		if o.Status == StatusSkipped {
			return true
		}
	}
	return false
}
