// Package coverage measures how completely the local knowledge base covers
// the field taxonomy for one free zone.
package coverage

import (
	"context"
	"fmt"
	"math"

	"github.com/karim/freezone-audit/internal/store"
	"github.com/karim/freezone-audit/internal/taxonomy"
)

// Record-count thresholds for bucketing a field.
const (
	// PresentMin is the minimum record count for a field to count as present.
	PresentMin = 3
)

// RecordSource lists the stored knowledge records for a free zone.
type RecordSource interface {
	ListRecords(ctx context.Context, entityID int64) ([]store.Record, error)
}

// Report is a point-in-time view of knowledge-base coverage for one free
// zone. The three field sets partition the full taxonomy.
type Report struct {
	EntityID          int64                  `json:"entity_id"`
	TotalRecords      int                    `json:"total_records"`
	RecordsByCategory map[string]int         `json:"records_by_category"`
	FieldsPresent     taxonomy.Set           `json:"fields_present"`
	FieldsIncomplete  taxonomy.Set           `json:"fields_incomplete"`
	FieldsMissing     taxonomy.Set           `json:"fields_missing"`
	RecordsByField    map[taxonomy.Field]int `json:"records_by_field"`
	CompletenessScore int                    `json:"completeness_score"`
}

// Analyze builds a fresh coverage report for one free zone. Storage failure
// is the only error path and is propagated to the caller.
func Analyze(ctx context.Context, src RecordSource, entityID int64) (*Report, error) {
	records, err := src.ListRecords(ctx, entityID)
	if err != nil {
		return nil, fmt.Errorf("coverage analysis for free zone %d: %w", entityID, err)
	}

	report := &Report{
		EntityID:          entityID,
		TotalRecords:      len(records),
		RecordsByCategory: make(map[string]int),
		FieldsPresent:     taxonomy.NewSet(),
		FieldsIncomplete:  taxonomy.NewSet(),
		FieldsMissing:     taxonomy.NewSet(),
		RecordsByField:    make(map[taxonomy.Field]int, taxonomy.Size()),
	}

	for _, f := range taxonomy.Fields() {
		report.RecordsByField[f] = 0
	}

	// Group raw categories, then resolve each through the synonym table. A
	// single record may evidence more than one field.
	for _, rec := range records {
		label := taxonomy.NormalizeCategory(rec.Category)
		report.RecordsByCategory[label]++
		for _, f := range taxonomy.FieldsForCategory(rec.Category) {
			report.RecordsByField[f]++
		}
	}

	covered := 0
	for _, f := range taxonomy.Fields() {
		switch n := report.RecordsByField[f]; {
		case n >= PresentMin:
			report.FieldsPresent.Add(f)
			covered++
		case n > 0:
			report.FieldsIncomplete.Add(f)
			covered++
		default:
			report.FieldsMissing.Add(f)
		}
	}

	report.CompletenessScore = int(math.Round(100 * float64(covered) / float64(taxonomy.Size())))
	return report, nil
}
