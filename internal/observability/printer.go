// Package observability provides human-readable rendering of audit reports
// for verbose CLI output.
package observability

import (
	"fmt"
	"io"

	"github.com/karim/freezone-audit/internal/audit"
	"github.com/karim/freezone-audit/internal/coverage"
	"github.com/karim/freezone-audit/internal/delta"
	"github.com/karim/freezone-audit/internal/extract"
	"github.com/karim/freezone-audit/internal/recommend"
	"github.com/karim/freezone-audit/internal/remediate"
	"github.com/karim/freezone-audit/internal/taxonomy"
)

// Printer writes formatted audit output to a writer.
type Printer struct {
	w io.Writer
}

// NewPrinter creates a printer targeting w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// PrintResult renders the full audit report.
func (p *Printer) PrintResult(res *audit.Result) {
	fmt.Fprintf(p.w, "\n=== Deep Audit: %s (zone %d) ===\n", res.EntityName, res.EntityID)
	fmt.Fprintf(p.w, "Run:   %s\n", res.RunID)
	fmt.Fprintf(p.w, "State: %s\n", res.State)
	if res.Error != "" {
		fmt.Fprintf(p.w, "Error: %s\n", res.Error)
		return
	}

	p.PrintCoverage(res.Coverage)
	p.PrintSnapshot(res.Snapshot)
	p.PrintDelta(res.Delta)
	p.PrintOutcome(res.Remediation)
	p.PrintRecommendations(res.Recommendations)
}

// PrintCoverage renders a coverage report.
func (p *Printer) PrintCoverage(r *coverage.Report) {
	if r == nil {
		return
	}
	fmt.Fprintf(p.w, "\nLocal coverage: %d%% (%d records)\n", r.CompletenessScore, r.TotalRecords)
	fmt.Fprintf(p.w, "  present:    %s\n", fieldList(r.FieldsPresent))
	fmt.Fprintf(p.w, "  incomplete: %s\n", fieldList(r.FieldsIncomplete))
	fmt.Fprintf(p.w, "  missing:    %s\n", fieldList(r.FieldsMissing))
}

// PrintSnapshot renders a website snapshot summary.
func (p *Printer) PrintSnapshot(s *extract.Snapshot) {
	if s == nil {
		return
	}
	label := s.SourceURL
	if label == "" {
		label = "(no source URL)"
	}
	fmt.Fprintf(p.w, "\nWebsite snapshot: %s", label)
	if s.Mock {
		fmt.Fprintf(p.w, " [mock fallback]")
	}
	fmt.Fprintln(p.w)
	fmt.Fprintf(p.w, "  fields found: %s\n", fieldList(s.FieldsFound))
	if s.CaptureRef != "" {
		fmt.Fprintf(p.w, "  capture:      %s\n", s.CaptureRef)
	}
}

// PrintDelta renders the comparison between local and live data.
func (p *Printer) PrintDelta(d *delta.Delta) {
	if d == nil {
		return
	}
	fmt.Fprintf(p.w, "\nDelta:\n")
	fmt.Fprintf(p.w, "  both:     %s\n", fieldList(d.BothFields))
	fmt.Fprintf(p.w, "  db only:  %s\n", fieldList(d.DBOnlyFields))
	fmt.Fprintf(p.w, "  web only: %s\n", fieldList(d.WebOnlyFields))
	for _, inc := range d.Inconsistent {
		fmt.Fprintf(p.w, "  suspect:  %s (%.1f) %s\n", inc.Field, inc.Confidence, inc.DBEvidence)
	}
}

// PrintOutcome renders the remediation outcome.
func (p *Printer) PrintOutcome(o *remediate.Outcome) {
	if o == nil {
		return
	}
	if !o.Attempted {
		fmt.Fprintf(p.w, "\nRemediation: not needed\n")
		return
	}
	status := "failed"
	if o.Succeeded {
		status = "succeeded"
	}
	fmt.Fprintf(p.w, "\nRemediation: %s (new score %d%%)\n", status, o.NewCompletenessScore)
	fmt.Fprintf(p.w, "  improved:      %s\n", fieldList(o.FieldsImproved))
	fmt.Fprintf(p.w, "  still missing: %s\n", fieldList(o.FieldsStillMissing))
}

// PrintRecommendations renders the prioritized action list.
func (p *Printer) PrintRecommendations(recs []recommend.Recommendation) {
	fmt.Fprintf(p.w, "\nRecommendations (%d):\n", len(recs))
	for i, rec := range recs {
		fmt.Fprintf(p.w, "  %d. [%s] %s: %s\n", i+1, rec.Priority, rec.Action, rec.Details)
	}
}

func fieldList(s taxonomy.Set) string {
	if s.Len() == 0 {
		return "-"
	}
	out := ""
	for i, f := range s.Values() {
		if i > 0 {
			out += ", "
		}
		out += string(f)
	}
	return out
}
