package settlement

import "strings"

// visitKeywords identify expenses that are really visit charges booked under
// the wrong category. The calculator drops them from the expense sum and the
// validation checks flag them; both read this list.
var visitKeywords = []string{
	"visit fee",
	"visit charge",
	"hourly charge",
	"property visit",
}

// VisitKeywords returns a copy of the visit-related keyword list.
func VisitKeywords() []string {
	out := make([]string, len(visitKeywords))
	copy(out, visitKeywords)
	return out
}

// IsVisitRelated reports whether description contains any visit keyword, ignoring case.
func IsVisitRelated(description string) bool {
	lower := strings.ToLower(description)
	for _, kw := range visitKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func isCleaningFee(description string) bool {
	return strings.Contains(strings.ToLower(description), "cleaning")
}

func isPetFee(description string) bool {
	return strings.Contains(strings.ToLower(description), "pet")
}
