package matching

import "github.com/vn6295337/intelligent-model-selector/internal/models"

// DefaultUnmatchedLimit is how many unmatched models are listed for review
const DefaultUnmatchedLimit = 10

// UnmatchedSummary is the human-review view of unmatched models
type UnmatchedSummary struct {
	Shown     []string
	Remaining int
	Total     int
}

// SummarizeUnmatched lists the first limit pairs as provider:slug and counts the rest
func SummarizeUnmatched(unmatched []models.ProviderModel, limit int) UnmatchedSummary {
	if limit < 0 {
		limit = 0
	}

	summary := UnmatchedSummary{Total: len(unmatched)}
	for i, pair := range unmatched {
		if i >= limit {
			summary.Remaining = len(unmatched) - limit
			break
		}
		summary.Shown = append(summary.Shown, pair.String())
	}
	return summary
}
