// Package audit sequences the deep-audit pipeline for one free zone and
// assembles the final report.
package audit

import (
	"time"

	"github.com/google/uuid"

	"github.com/karim/freezone-audit/internal/coverage"
	"github.com/karim/freezone-audit/internal/delta"
	"github.com/karim/freezone-audit/internal/extract"
	"github.com/karim/freezone-audit/internal/recommend"
	"github.com/karim/freezone-audit/internal/remediate"
)

// State identifies a stage of the audit state machine.
type State string

// Audit pipeline states. The machine runs strictly in order; only
// FETCH_ENTITY failure reaches FAILED, every other stage degrades and the
// run still terminates in DONE.
const (
	StateFetchEntity  State = "FETCH_ENTITY"
	StateAnalyzeLocal State = "ANALYZE_LOCAL"
	StateExtractLive  State = "EXTRACT_LIVE"
	StateComputeDelta State = "COMPUTE_DELTA"
	StateRemediate    State = "REMEDIATE"
	StateSynthesize   State = "SYNTHESIZE"
	StateDone         State = "DONE"
	StateFailed       State = "FAILED"
)

// Result is the aggregate audit report for one free zone. It is handed to
// the caller as an immutable value; no state is shared across invocations.
type Result struct {
	RunID           uuid.UUID                  `json:"run_id"`
	EntityID        int64                      `json:"entity_id"`
	EntityName      string                     `json:"entity_name"`
	State           State                      `json:"state"`
	Error           string                     `json:"error,omitempty"`
	Coverage        *coverage.Report           `json:"coverage"`
	Snapshot        *extract.Snapshot          `json:"snapshot"`
	Delta           *delta.Delta               `json:"delta"`
	Remediation     *remediate.Outcome         `json:"remediation"`
	Recommendations []recommend.Recommendation `json:"recommendations"`
	StartedAt       time.Time                  `json:"started_at"`
	CompletedAt     time.Time                  `json:"completed_at"`
}
