// Package badge maps classification labels to moderation badge identifiers.
package badge

// Badge identifiers understood by the labeling service.
const (
	NormalScience   = "normal-science"
	ModelDrift      = "model-drift"
	ModelCrisis     = "model-crisis"
	ModelRevolution = "model-revolution"
	ParadigmShift   = "paradigm-shift"
)

// labels lists the known classification labels in display order.
var labels = []string{
	"Normal Science",
	"Model Drift",
	"Model Crisis",
	"Model Revolution",
	"Paradigm Shift",
}

var byLabel = map[string]string{
	"Normal Science":   NormalScience,
	"Model Drift":      ModelDrift,
	"Model Crisis":     ModelCrisis,
	"Model Revolution": ModelRevolution,
	"Paradigm Shift":   ParadigmShift,
}

// ForLabel returns the badge for a classification label.
// Matching is exact and case-sensitive; unknown labels return ("", false).
func ForLabel(label string) (string, bool) {
	id, ok := byLabel[label]
	return id, ok
}

// Labels returns the known classification labels.
func Labels() []string {
	out := make([]string, len(labels))
	copy(out, labels)
	return out
}

// IsBadge reports whether id is one of the badge identifiers.
func IsBadge(id string) bool {
	for _, v := range byLabel {
		if v == id {
			return true
		}
	}
	return false
}
