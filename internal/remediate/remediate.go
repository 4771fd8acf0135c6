// Package remediate runs targeted, gap-scoped crawl jobs to close holes the
// delta identified, then re-measures local coverage to record improvement.
package remediate

import (
	"context"
	"log"

	"github.com/karim/freezone-audit/internal/coverage"
	"github.com/karim/freezone-audit/internal/delta"
	"github.com/karim/freezone-audit/internal/taxonomy"
)

// CrawlResult is the opaque outcome of an external targeted-crawl job.
type CrawlResult struct {
	Success bool   `json:"success"`
	Summary string `json:"updated_content_summary,omitempty"`
}

// CrawlJob invokes the external targeted scraper for a specific field set.
// The job is opaque and may retry internally; it may also fail outright.
type CrawlJob interface {
	Run(ctx context.Context, entityID int64, targetFields []taxonomy.Field, sourceURL string) (*CrawlResult, error)
}

// UnavailableJob is a CrawlJob used when no scraper service is configured.
// It always fails, which the scraper absorbs into a failed outcome.
type UnavailableJob struct{}

// Run implements CrawlJob.
func (UnavailableJob) Run(context.Context, int64, []taxonomy.Field, string) (*CrawlResult, error) {
	return nil, &JobError{Message: "no crawl job configured"}
}

// Outcome records a single remediation attempt. Produced once per audit run;
// never retried by this pipeline.
type Outcome struct {
	Attempted            bool         `json:"attempted"`
	Succeeded            bool         `json:"succeeded"`
	FieldsImproved       taxonomy.Set `json:"fields_improved"`
	FieldsStillMissing   taxonomy.Set `json:"fields_still_missing"`
	NewCompletenessScore int          `json:"new_completeness_score"`
}

// Scraper wires the external crawl job to the coverage analyzer.
type Scraper struct {
	Job     CrawlJob
	Records coverage.RecordSource
	Verbose bool
}

// Remediate closes delta-identified gaps for one free zone. It is triggered
// only when the gap field set is non-empty; the external job's failure is
// absorbed into the outcome and never aborts the audit.
func (s *Scraper) Remediate(ctx context.Context, entityID int64, sourceURL string, d *delta.Delta, before *coverage.Report) *Outcome {
	gaps := d.GapFields()
	if gaps.Len() == 0 {
		return &Outcome{
			Attempted:          false,
			Succeeded:          false,
			FieldsImproved:     taxonomy.NewSet(),
			FieldsStillMissing: d.WebOnlyFields,
		}
	}

	targets := gaps.Values()
	if s.Verbose {
		log.Printf("[REMEDIATE] Free zone %d: targeting %d gap fields", entityID, len(targets))
	}

	failed := func() *Outcome {
		return &Outcome{
			Attempted:          true,
			Succeeded:          false,
			FieldsImproved:     taxonomy.NewSet(),
			FieldsStillMissing: gaps,
		}
	}

	result, err := s.Job.Run(ctx, entityID, targets, sourceURL)
	if err != nil {
		log.Printf("[REMEDIATE] Crawl job failed for free zone %d: %v", entityID, err)
		return failed()
	}

	// Re-run the coverage analyzer regardless of job success to measure any
	// records the crawl managed to add.
	after, err := coverage.Analyze(ctx, s.Records, entityID)
	if err != nil {
		log.Printf("[REMEDIATE] Post-crawl coverage analysis failed for free zone %d: %v", entityID, err)
		return failed()
	}

	outcome := &Outcome{
		Attempted:            true,
		Succeeded:            result.Success,
		FieldsImproved:       taxonomy.NewSet(),
		FieldsStillMissing:   taxonomy.NewSet(),
		NewCompletenessScore: after.CompletenessScore,
	}

	inconsistent := taxonomy.NewSet()
	for _, inc := range d.Inconsistent {
		inconsistent.Add(inc.Field)
	}

	for _, f := range targets {
		improved := false
		switch {
		case d.WebOnlyFields.Has(f):
			// A web-only gap improved if the field now has any coverage.
			improved = after.FieldsPresent.Has(f) || after.FieldsIncomplete.Has(f)
		case inconsistent.Has(f):
			// An inconsistent field improved if its record count grew.
			improved = after.RecordsByField[f] > before.RecordsByField[f]
		}
		if improved {
			outcome.FieldsImproved.Add(f)
		} else {
			outcome.FieldsStillMissing.Add(f)
		}
	}

	if s.Verbose {
		log.Printf("[REMEDIATE] Free zone %d: improved %d fields, %d still missing, score %d -> %d",
			entityID, outcome.FieldsImproved.Len(), outcome.FieldsStillMissing.Len(),
			before.CompletenessScore, after.CompletenessScore)
	}
	return outcome
}
