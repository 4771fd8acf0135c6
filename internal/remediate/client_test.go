package remediate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karim/freezone-audit/internal/taxonomy"
)

func TestHTTPCrawlJobRun(t *testing.T) {
	var gotReq crawlRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/scrape-freezone", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		fmt.Fprint(w, `{"success": true, "updated_content_summary": "added 3 records"}`)
	}))
	defer srv.Close()

	job := &HTTPCrawlJob{BaseURL: srv.URL}
	targets := []taxonomy.Field{taxonomy.FieldFacilities, taxonomy.FieldTimelines}

	result, err := job.Run(context.Background(), 7, targets, "https://ajmanfz.example")
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, "added 3 records", result.Summary)
	assert.Equal(t, int64(7), gotReq.FreezoneID)
	assert.Equal(t, targets, gotReq.TargetFields)
	assert.Equal(t, "https://ajmanfz.example", gotReq.SourceURL)
}

func TestHTTPCrawlJobReportsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"success": false}`)
	}))
	defer srv.Close()

	job := &HTTPCrawlJob{BaseURL: srv.URL}

	result, err := job.Run(context.Background(), 7, nil, "")
	require.NoError(t, err)
	assert.False(t, result.Success)
}

func TestHTTPCrawlJobNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	job := &HTTPCrawlJob{BaseURL: srv.URL}

	_, err := job.Run(context.Background(), 7, nil, "")
	require.Error(t, err)

	var jobErr *JobError
	require.ErrorAs(t, err, &jobErr)
	assert.Contains(t, jobErr.Message, "500")
}

func TestHTTPCrawlJobMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `not json`)
	}))
	defer srv.Close()

	job := &HTTPCrawlJob{BaseURL: srv.URL}

	_, err := job.Run(context.Background(), 7, nil, "")
	require.Error(t, err)

	var jobErr *JobError
	assert.ErrorAs(t, err, &jobErr)
}

func TestHTTPCrawlJobRequiresBaseURL(t *testing.T) {
	job := &HTTPCrawlJob{}
	_, err := job.Run(context.Background(), 7, nil, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestHTTPCrawlJobUnreachable(t *testing.T) {
	job := &HTTPCrawlJob{BaseURL: "http://127.0.0.1:1"}
	_, err := job.Run(context.Background(), 7, nil, "")
	require.Error(t, err)

	var jobErr *JobError
	require.ErrorAs(t, err, &jobErr)
	assert.Error(t, jobErr.Unwrap())
}
