package extract

import "github.com/karim/freezone-audit/internal/taxonomy"

// Snapshot is a point-in-time extraction of taxonomy-field evidence from a
// free zone's public website.
type Snapshot struct {
	SourceURL      string                    `json:"source_url,omitempty"`
	FieldsFound    taxonomy.Set              `json:"fields_found"`
	ContentByField map[taxonomy.Field]string `json:"content_by_field"`
	CaptureRef     string                    `json:"capture_ref,omitempty"`
	Mock           bool                      `json:"mock,omitempty"`
}

// EmptySnapshot returns a snapshot with no fields found. This is the correct
// result for an entity with no source URL, not an error.
func EmptySnapshot(sourceURL string) *Snapshot {
	return &Snapshot{
		SourceURL:      sourceURL,
		FieldsFound:    taxonomy.NewSet(),
		ContentByField: make(map[taxonomy.Field]string),
	}
}

// MockSnapshot returns the static fallback snapshot used when the live site
// cannot be reached. It carries a fixed set of plausible fields with
// placeholder text so the rest of the audit can still run.
func MockSnapshot(sourceURL string) *Snapshot {
	snap := &Snapshot{
		SourceURL: sourceURL,
		FieldsFound: taxonomy.NewSet(
			taxonomy.FieldSetupProcess,
			taxonomy.FieldFeeStructure,
			taxonomy.FieldLicenseTypes,
		),
		ContentByField: map[taxonomy.Field]string{
			taxonomy.FieldSetupProcess: "Placeholder: company setup information was not reachable during this audit.",
			taxonomy.FieldFeeStructure: "Placeholder: fee information was not reachable during this audit.",
			taxonomy.FieldLicenseTypes: "Placeholder: licensing information was not reachable during this audit.",
		},
		Mock: true,
	}
	return snap
}
