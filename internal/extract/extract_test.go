package extract

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karim/freezone-audit/internal/taxonomy"
)

// fakeClassifier returns canned fields for any page text. Safe for the
// concurrent subpage fan-out.
type fakeClassifier struct {
	fields  []taxonomy.Field
	summary string
	err     error

	mu    sync.Mutex
	calls int
}

func (f *fakeClassifier) ClassifyFields(_ context.Context, _ string) ([]taxonomy.Field, string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return f.fields, f.summary, f.err
}

func (f *fakeClassifier) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeCapturer records the URL it was asked to capture.
type fakeCapturer struct {
	ref string
	err error
	url string
}

func (f *fakeCapturer) Capture(_ context.Context, url string) (string, error) {
	f.url = url
	return f.ref, f.err
}

func TestExtractEmptySnapshotWithoutSourceURL(t *testing.T) {
	e := &Extractor{}

	snap := e.Extract(context.Background(), "Ajman Free Zone", "")

	require.NotNil(t, snap)
	assert.False(t, snap.Mock)
	assert.Equal(t, 0, snap.FieldsFound.Len())
	assert.Empty(t, snap.ContentByField)
}

func TestExtractMockSnapshotOnUnreachableRoot(t *testing.T) {
	e := &Extractor{}

	// Port 1 refuses connections immediately.
	snap := e.Extract(context.Background(), "Ajman Free Zone", "http://127.0.0.1:1/")

	require.NotNil(t, snap)
	assert.True(t, snap.Mock)
	assert.True(t, snap.FieldsFound.Has(taxonomy.FieldSetupProcess))
	assert.True(t, snap.FieldsFound.Has(taxonomy.FieldFeeStructure))
	assert.True(t, snap.FieldsFound.Has(taxonomy.FieldLicenseTypes))
	assert.Equal(t, 3, snap.FieldsFound.Len())
}

func TestExtractScansRootHeadings(t *testing.T) {
	page := `<html><body>
		<h2>Our Fees</h2><p>Packages start at AED 11,900 per year.</p>
		<h3>Visa Services</h3><p>Apply for residence visas online.</p>
		<h2>About the Emirate</h2><p>General background.</p>
	</body></html>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			fmt.Fprint(w, page)
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	e := &Extractor{}
	snap := e.Extract(context.Background(), "Test Zone", srv.URL)

	require.NotNil(t, snap)
	assert.False(t, snap.Mock)
	assert.True(t, snap.FieldsFound.Has(taxonomy.FieldFeeStructure))
	assert.True(t, snap.FieldsFound.Has(taxonomy.FieldVisaInformation))
	assert.False(t, snap.FieldsFound.Has(taxonomy.FieldSetupProcess))
	assert.Contains(t, snap.ContentByField[taxonomy.FieldFeeStructure], "AED 11,900")
}

func TestExtractCapturesScreenshotOpportunistically(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><body><h1>Welcome</h1></body></html>`)
	}))
	defer srv.Close()

	capturer := &fakeCapturer{ref: "capture_abc123.png"}
	e := &Extractor{Capturer: capturer}

	snap := e.Extract(context.Background(), "Test Zone", srv.URL)
	assert.Equal(t, "capture_abc123.png", snap.CaptureRef)
	assert.Equal(t, srv.URL, capturer.url)
}

func TestExtractCaptureFailureIsNonFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><body><h2>License Types</h2><p>Commercial.</p></body></html>`)
	}))
	defer srv.Close()

	e := &Extractor{Capturer: &fakeCapturer{err: errors.New("browser missing")}}

	snap := e.Extract(context.Background(), "Test Zone", srv.URL)
	assert.Empty(t, snap.CaptureRef)
	assert.True(t, snap.FieldsFound.Has(taxonomy.FieldLicenseTypes))
}

func TestExtractMergesClassifiedSubpages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/":
			fmt.Fprint(w, `<html><body><h2>Trade License Options</h2><p>Commercial and service.</p></body></html>`)
		default:
			fmt.Fprint(w, `<html><body><main>Residence visa quotas and processing details.</main></body></html>`)
		}
	}))
	defer srv.Close()

	cls := &fakeClassifier{
		fields:  []taxonomy.Field{taxonomy.FieldVisaInformation, taxonomy.FieldLicenseTypes},
		summary: "Visa quotas per license package.",
	}
	e := &Extractor{Classifier: cls, MaxSubpages: 2}

	snap := e.Extract(context.Background(), "Test Zone", srv.URL)

	// license_types came from the root scan and keeps its root excerpt;
	// visa_information is new and carries the classifier summary.
	assert.True(t, snap.FieldsFound.Has(taxonomy.FieldLicenseTypes))
	assert.True(t, snap.FieldsFound.Has(taxonomy.FieldVisaInformation))
	assert.Contains(t, snap.ContentByField[taxonomy.FieldLicenseTypes], "Commercial and service")
	assert.Equal(t, "Visa quotas per license package.", snap.ContentByField[taxonomy.FieldVisaInformation])
	assert.Positive(t, cls.callCount())
	assert.LessOrEqual(t, cls.callCount(), 2)
}

func TestExtractClassifierFailureSkipsSubpage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			fmt.Fprint(w, `<html><body><h2>Setup Guide</h2><p>How to start.</p></body></html>`)
			return
		}
		fmt.Fprint(w, `<html><body><main>Some content here.</main></body></html>`)
	}))
	defer srv.Close()

	e := &Extractor{
		Classifier:  &fakeClassifier{err: errors.New("model unavailable")},
		MaxSubpages: 1,
	}

	snap := e.Extract(context.Background(), "Test Zone", srv.URL)

	// The root scan result survives; the failed subpage contributes nothing.
	assert.False(t, snap.Mock)
	assert.True(t, snap.FieldsFound.Has(taxonomy.FieldSetupProcess))
	assert.Equal(t, 1, snap.FieldsFound.Len())
}

func TestExtractSubpageCapRespected(t *testing.T) {
	var mu sync.Mutex
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			mu.Lock()
			paths = append(paths, r.URL.Path)
			mu.Unlock()
		}
		fmt.Fprint(w, `<html><body><main>Generic page text for classification.</main></body></html>`)
	}))
	defer srv.Close()

	e := &Extractor{
		Classifier:  &fakeClassifier{},
		MaxSubpages: 3,
	}
	e.Extract(context.Background(), "Test Zone", srv.URL)

	mu.Lock()
	defer mu.Unlock()
	assert.LessOrEqual(t, len(paths), 3)
	for _, p := range paths {
		assert.True(t, strings.HasPrefix(p, "/"))
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 10))
	assert.Equal(t, "ab", truncate("abcdef", 2))
	assert.Equal(t, "", truncate("", 5))
}
