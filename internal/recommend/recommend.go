// Package recommend turns the delta and remediation outcome into a
// prioritized, human-actionable remediation plan.
package recommend

import (
	"fmt"
	"strings"

	"github.com/karim/freezone-audit/internal/delta"
	"github.com/karim/freezone-audit/internal/remediate"
	"github.com/karim/freezone-audit/internal/taxonomy"
)

// Priority levels for recommendations.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Action identifies the kind of follow-up a recommendation calls for.
type Action string

const (
	ActionManualDataCollection Action = "manual_data_collection"
	ActionDataReconciliation   Action = "data_reconciliation"
	ActionCrawlerImprovement   Action = "crawler_improvement"
	ActionManualDataEntry      Action = "manual_data_entry"
)

// Importance-weight cutoffs for missing-field priority.
const (
	highWeightMin   = 8
	mediumWeightMin = 5
)

// Recommendation is one entry of the remediation plan. Ordering within the
// list is significant.
type Recommendation struct {
	Priority Priority       `json:"priority"`
	Action   Action         `json:"action"`
	Field    taxonomy.Field `json:"field,omitempty"`
	Details  string         `json:"details"`
}

// Synthesize builds the ordered recommendation list from a delta and a
// remediation outcome. A field can legitimately appear in more than one
// recommendation: once for its own missing-data entry and again inside the
// aggregate crawler note.
func Synthesize(d *delta.Delta, outcome *remediate.Outcome) []Recommendation {
	recs := make([]Recommendation, 0)

	for _, f := range outcome.FieldsStillMissing.Values() {
		recs = append(recs, Recommendation{
			Priority: weightPriority(taxonomy.Weight(f)),
			Action:   ActionManualDataCollection,
			Field:    f,
			Details:  fmt.Sprintf("No reliable local data for %q; collect it manually from the free zone.", f),
		})
	}

	for _, inc := range d.Inconsistent {
		if outcome.FieldsImproved.Has(inc.Field) {
			continue
		}
		recs = append(recs, Recommendation{
			Priority: PriorityMedium,
			Action:   ActionDataReconciliation,
			Field:    inc.Field,
			Details: fmt.Sprintf("Local data for %q (%s, confidence %.1f) may disagree with the live site; reconcile.",
				inc.Field, inc.DBEvidence, inc.Confidence),
		})
	}

	if outcome.Attempted {
		stillMissing := outcome.FieldsStillMissing.Values()
		if !outcome.Succeeded || len(stillMissing) > 0 {
			recs = append(recs, Recommendation{
				Priority: PriorityHigh,
				Action:   ActionCrawlerImprovement,
				Details:  fmt.Sprintf("Targeted crawl left fields uncovered: %s. Improve crawler extraction for these sections.", joinFields(stillMissing)),
			})
		}
		if outcome.Succeeded && len(stillMissing) > 0 {
			recs = append(recs, Recommendation{
				Priority: PriorityMedium,
				Action:   ActionManualDataEntry,
				Details:  fmt.Sprintf("Crawl succeeded but gaps remain (%s); enter the missing data manually.", joinFields(stillMissing)),
			})
		}
	}

	return recs
}

// weightPriority maps an importance weight to a recommendation priority.
func weightPriority(weight int) Priority {
	switch {
	case weight >= highWeightMin:
		return PriorityHigh
	case weight >= mediumWeightMin:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

func joinFields(fields []taxonomy.Field) string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}
