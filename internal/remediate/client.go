package remediate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/karim/freezone-audit/internal/taxonomy"
)

// DefaultJobTimeout bounds one crawl job invocation. The remote job performs
// its own retries, so this stays generous.
const DefaultJobTimeout = 120 * time.Second

// HTTPCrawlJob invokes the external targeted-scraper service over HTTP.
type HTTPCrawlJob struct {
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// JobError represents a crawl job invocation failure.
type JobError struct {
	Message string
	Cause   error
}

func (e *JobError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("crawl job error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("crawl job error: %s", e.Message)
}

func (e *JobError) Unwrap() error {
	return e.Cause
}

type crawlRequest struct {
	FreezoneID   int64            `json:"freezone_id"`
	TargetFields []taxonomy.Field `json:"target_fields"`
	SourceURL    string           `json:"source_url,omitempty"`
}

// Run posts a gap-scoped scrape request to the external service and decodes
// its outcome.
func (j *HTTPCrawlJob) Run(ctx context.Context, entityID int64, targetFields []taxonomy.Field, sourceURL string) (*CrawlResult, error) {
	if j.BaseURL == "" {
		return nil, &JobError{Message: "scraper base URL is not configured"}
	}

	timeout := j.Timeout
	if timeout <= 0 {
		timeout = DefaultJobTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	body, err := json.Marshal(crawlRequest{
		FreezoneID:   entityID,
		TargetFields: targetFields,
		SourceURL:    sourceURL,
	})
	if err != nil {
		return nil, &JobError{Message: "failed to marshal request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, j.BaseURL+"/api/scrape-freezone", bytes.NewReader(body))
	if err != nil {
		return nil, &JobError{Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	client := j.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, &JobError{Message: "scraper request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &JobError{Message: "failed to read scraper response", Cause: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &JobError{Message: fmt.Sprintf("scraper returned HTTP %d", resp.StatusCode)}
	}

	var result CrawlResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, &JobError{Message: "failed to decode scraper response", Cause: err}
	}

	return &result, nil
}
