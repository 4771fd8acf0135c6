// Package delta computes the structured comparison between local knowledge
// coverage and a live website snapshot. Pure functions, no I/O.
package delta

import (
	"fmt"

	"github.com/karim/freezone-audit/internal/coverage"
	"github.com/karim/freezone-audit/internal/extract"
	"github.com/karim/freezone-audit/internal/taxonomy"
)

// Thresholds are the record-count buckets mapping to confidence scores.
// These are provisional tuning values carried as configuration rather than
// hard-coded constants.
type Thresholds struct {
	HighCount   int     `json:"high_count" validate:"min=1"`
	MediumCount int     `json:"medium_count" validate:"min=1"`
	HighConf    float64 `json:"high_conf" validate:"min=0,max=1"`
	MediumConf  float64 `json:"medium_conf" validate:"min=0,max=1"`
	ZeroConf    float64 `json:"zero_conf" validate:"min=0,max=1"`
	DefaultConf float64 `json:"default_conf" validate:"min=0,max=1"`
	// InconsistentBelow is the confidence under which a field is flagged.
	InconsistentBelow float64 `json:"inconsistent_below" validate:"min=0,max=1"`
}

// DefaultThresholds returns the standard confidence configuration.
func DefaultThresholds() Thresholds {
	return Thresholds{
		HighCount:         5,
		MediumCount:       3,
		HighConf:          0.9,
		MediumConf:        0.7,
		ZeroConf:          0.2,
		DefaultConf:       0.5,
		InconsistentBelow: 0.7,
	}
}

// Confidence maps a local record count to a 0-1 trust score.
func (t Thresholds) Confidence(recordCount int) float64 {
	switch {
	case recordCount >= t.HighCount:
		return t.HighConf
	case recordCount >= t.MediumCount:
		return t.MediumConf
	case recordCount == 0:
		return t.ZeroConf
	default:
		return t.DefaultConf
	}
}

// Inconsistency flags a field whose local data may disagree with live
// evidence. Advisory data, not an error.
type Inconsistency struct {
	Field       taxonomy.Field `json:"field"`
	DBEvidence  string         `json:"db_evidence"`
	WebEvidence string         `json:"web_evidence"`
	Confidence  float64        `json:"confidence"`
}

// Delta is the structured comparison of one coverage report against one
// website snapshot.
type Delta struct {
	BothFields    taxonomy.Set    `json:"both_fields"`
	DBOnlyFields  taxonomy.Set    `json:"db_only_fields"`
	WebOnlyFields taxonomy.Set    `json:"web_only_fields"`
	Inconsistent  []Inconsistency `json:"inconsistent"`
}

// GapFields returns the union of web-only fields and inconsistent fields,
// the set the remediation scraper targets.
func (d *Delta) GapFields() taxonomy.Set {
	gaps := taxonomy.NewSet()
	for f := range d.WebOnlyFields {
		gaps.Add(f)
	}
	for _, inc := range d.Inconsistent {
		gaps.Add(inc.Field)
	}
	return gaps
}

// Compute derives the delta between a coverage report and a snapshot.
// webOnlyFields excludes fields the database covers even partially; the
// inconsistent list preserves the canonical field order of bothFields.
func Compute(report *coverage.Report, snap *extract.Snapshot, th Thresholds) *Delta {
	d := &Delta{
		BothFields:    taxonomy.NewSet(),
		DBOnlyFields:  taxonomy.NewSet(),
		WebOnlyFields: taxonomy.NewSet(),
	}

	for _, f := range taxonomy.Fields() {
		inDB := report.FieldsPresent.Has(f)
		onWeb := snap.FieldsFound.Has(f)
		switch {
		case inDB && onWeb:
			d.BothFields.Add(f)
		case inDB:
			d.DBOnlyFields.Add(f)
		case onWeb && !report.FieldsIncomplete.Has(f):
			d.WebOnlyFields.Add(f)
		}
	}

	for _, f := range d.BothFields.Values() {
		webEvidence := snap.ContentByField[f]
		if webEvidence == "" {
			continue
		}
		count := report.RecordsByField[f]
		conf := th.Confidence(count)
		if conf >= th.InconsistentBelow {
			continue
		}
		d.Inconsistent = append(d.Inconsistent, Inconsistency{
			Field:       f,
			DBEvidence:  fmt.Sprintf("based on %d records", count),
			WebEvidence: webEvidence,
			Confidence:  conf,
		})
	}

	return d
}
