package audit

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/karim/freezone-audit/internal/coverage"
	"github.com/karim/freezone-audit/internal/delta"
	"github.com/karim/freezone-audit/internal/extract"
	"github.com/karim/freezone-audit/internal/recommend"
	"github.com/karim/freezone-audit/internal/remediate"
	"github.com/karim/freezone-audit/internal/store"
)

// DefaultWatchdog bounds the total wall-clock time of one audit run. It must
// exceed the sum of per-stage network timeouts.
const DefaultWatchdog = 5 * time.Minute

// Store is the knowledge-base surface the audit consumes.
type Store interface {
	GetEntity(ctx context.Context, id int64) (*store.Entity, error)
	ListRecords(ctx context.Context, entityID int64) ([]store.Record, error)
}

// ReportSaver persists completed audit reports. Optional; persistence
// failures are logged and never fail a run.
type ReportSaver interface {
	SaveAuditReport(ctx context.Context, runID uuid.UUID, entityID int64, state string, report any) error
}

// Runner executes the deep-audit pipeline. Each Run call is a pure function
// of its inputs plus the current store/website state; no cross-call cache is
// retained, so concurrent runs for different zones are safe.
type Runner struct {
	Store      Store
	Extractor  *extract.Extractor
	Job        remediate.CrawlJob
	Thresholds delta.Thresholds
	Saver      ReportSaver
	Watchdog   time.Duration
	Verbose    bool
}

// Run audits one free zone end to end and returns the assembled report.
// It returns an error only when the entity cannot be fetched or the store is
// unreachable; every other failure degrades into the report itself.
func (r *Runner) Run(ctx context.Context, entityID int64) (result *Result, err error) {
	watchdog := r.Watchdog
	if watchdog <= 0 {
		watchdog = DefaultWatchdog
	}
	ctx, cancel := context.WithTimeout(ctx, watchdog)
	defer cancel()

	runID := uuid.New()
	started := time.Now().UTC()

	// Callers never see a partial result shape: anything unexpected becomes
	// a FAILED-state report with an error message.
	defer func() {
		if rec := recover(); rec != nil {
			result = &Result{
				RunID:       runID,
				EntityID:    entityID,
				State:       StateFailed,
				Error:       fmt.Sprintf("audit panicked: %v", rec),
				StartedAt:   started,
				CompletedAt: time.Now().UTC(),
			}
			err = nil
		}
	}()

	r.logf("[AUDIT] %s: run %s for free zone %d", StateFetchEntity, runID, entityID)
	entity, err := r.Store.GetEntity(ctx, entityID)
	if err != nil {
		return nil, fmt.Errorf("audit %s: %w", StateFetchEntity, err)
	}

	r.logf("[AUDIT] %s: %s", StateAnalyzeLocal, entity.Name)
	report, err := coverage.Analyze(ctx, r.Store, entityID)
	if err != nil {
		// Storage unavailability is the one other fatal path.
		return nil, fmt.Errorf("audit %s: %w", StateAnalyzeLocal, err)
	}

	r.logf("[AUDIT] %s: source %q", StateExtractLive, entity.SourceURL)
	extractor := r.Extractor
	if extractor == nil {
		extractor = &extract.Extractor{}
	}
	snap := extractor.Extract(ctx, entity.Name, entity.SourceURL)

	r.logf("[AUDIT] %s", StateComputeDelta)
	thresholds := r.Thresholds
	if thresholds == (delta.Thresholds{}) {
		thresholds = delta.DefaultThresholds()
	}
	d := delta.Compute(report, snap, thresholds)

	r.logf("[AUDIT] %s: %d gap fields", StateRemediate, d.GapFields().Len())
	job := r.Job
	if job == nil {
		job = remediate.UnavailableJob{}
	}
	scraper := &remediate.Scraper{Job: job, Records: r.Store, Verbose: r.Verbose}
	outcome := scraper.Remediate(ctx, entityID, entity.SourceURL, d, report)

	r.logf("[AUDIT] %s", StateSynthesize)
	recs := recommend.Synthesize(d, outcome)

	result = &Result{
		RunID:           runID,
		EntityID:        entityID,
		EntityName:      entity.Name,
		State:           StateDone,
		Coverage:        report,
		Snapshot:        snap,
		Delta:           d,
		Remediation:     outcome,
		Recommendations: recs,
		StartedAt:       started,
		CompletedAt:     time.Now().UTC(),
	}

	if r.Saver != nil {
		if saveErr := r.Saver.SaveAuditReport(ctx, runID, entityID, string(result.State), result); saveErr != nil {
			log.Printf("[AUDIT] Failed to persist report %s: %v", runID, saveErr)
		}
	}

	r.logf("[AUDIT] %s: free zone %d, %d recommendations", StateDone, entityID, len(recs))
	return result, nil
}

func (r *Runner) logf(format string, args ...any) {
	if r.Verbose {
		log.Printf(format, args...)
	}
}
