// Package extract builds point-in-time snapshots of taxonomy-field evidence
// from a free zone's live public website.
package extract

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"

	"github.com/karim/freezone-audit/internal/fetch"
	"github.com/karim/freezone-audit/internal/taxonomy"
)

const (
	// ExcerptLimit bounds a per-field content excerpt.
	ExcerptLimit = 500
	// DefaultMaxSubpages caps the guessed subpages visited per audit.
	DefaultMaxSubpages = 6
	// maxInFlight bounds concurrent subpage fetches.
	maxInFlight = 6
)

// Classifier detects which taxonomy fields a page of text evidences.
// Implementations must return an empty result rather than an error on
// ambiguous or malformed model output.
type Classifier interface {
	ClassifyFields(ctx context.Context, pageText string) ([]taxonomy.Field, string, error)
}

// Capturer produces an opaque reference to a visual capture of a page.
type Capturer interface {
	Capture(ctx context.Context, url string) (string, error)
}

// Extractor fetches a free zone's website and detects which taxonomy fields
// it evidences. Its contract is "always returns a snapshot": every failure
// degrades to an empty or mock snapshot instead of an error.
type Extractor struct {
	Classifier   Classifier
	Capturer     Capturer
	FetchOptions *fetch.Options
	MaxSubpages  int
	Verbose      bool
}

// Extract builds a website snapshot for one free zone. A missing sourceURL
// returns an empty snapshot; an unreachable root page returns the static mock
// snapshot. Subpage or classification failures are logged and skipped.
func (e *Extractor) Extract(ctx context.Context, entityName, sourceURL string) *Snapshot {
	if sourceURL == "" {
		if e.Verbose {
			log.Printf("[EXTRACT] No source URL for %s, returning empty snapshot", entityName)
		}
		return EmptySnapshot("")
	}

	root, err := fetch.URL(ctx, sourceURL, e.FetchOptions)
	if err != nil {
		log.Printf("[EXTRACT] Root fetch failed for %s: %v, falling back to mock snapshot", sourceURL, err)
		return MockSnapshot(sourceURL)
	}

	snap := EmptySnapshot(sourceURL)

	// Rule-based pass over the root page: scan headings and emphasized text
	// for field keywords and pull the nearest enclosing content block.
	if found, scanErr := scanFields(root.HTML); scanErr != nil {
		log.Printf("[EXTRACT] Root page scan failed for %s: %v", sourceURL, scanErr)
	} else {
		for f, excerpt := range found {
			snap.FieldsFound.Add(f)
			snap.ContentByField[f] = excerpt
		}
	}

	// Opportunistic visual capture; absence never fails the stage.
	if e.Capturer != nil {
		if ref, capErr := e.Capturer.Capture(ctx, sourceURL); capErr != nil {
			if e.Verbose {
				log.Printf("[EXTRACT] Visual capture failed for %s: %v", sourceURL, capErr)
			}
		} else {
			snap.CaptureRef = ref
		}
	}

	e.mergeSubpages(ctx, root.FinalURL, snap)

	if e.Verbose {
		log.Printf("[EXTRACT] %s: found %d fields", sourceURL, snap.FieldsFound.Len())
	}
	return snap
}

// subpageResult carries one classified subpage back to the merge step.
type subpageResult struct {
	path    string
	fields  []taxonomy.Field
	summary string
}

// mergeSubpages visits the guessed subpage list concurrently (bounded), runs
// AI classification over each page's main text, and merges newly evidenced
// fields into the snapshot. Merge order follows the subpath list so results
// are deterministic regardless of fetch completion order.
func (e *Extractor) mergeSubpages(ctx context.Context, rootURL string, snap *Snapshot) {
	if e.Classifier == nil {
		return
	}

	base, err := url.Parse(rootURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		log.Printf("[EXTRACT] Cannot derive host from %s, skipping subpages", rootURL)
		return
	}

	paths := taxonomy.SubpagePaths()
	maxPages := e.MaxSubpages
	if maxPages <= 0 || maxPages > DefaultMaxSubpages {
		maxPages = DefaultMaxSubpages
	}
	if len(paths) > maxPages {
		paths = paths[:maxPages]
	}

	var mu sync.Mutex
	results := make(map[string]subpageResult, len(paths))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(maxInFlight)
	for _, path := range paths {
		path := path
		g.Go(func() error {
			target := fmt.Sprintf("%s://%s/%s", base.Scheme, base.Host, path)

			page, err := fetch.URL(gCtx, target, e.FetchOptions)
			if err != nil {
				if e.Verbose {
					log.Printf("[EXTRACT] Subpage fetch failed for %s: %v", target, err)
				}
				return nil
			}

			text, err := fetch.ExtractMainText(page.HTML, fetch.FreezonePageSelectors())
			if err != nil || strings.TrimSpace(text) == "" {
				return nil
			}

			fields, summary, err := e.Classifier.ClassifyFields(gCtx, text)
			if err != nil {
				log.Printf("[EXTRACT] Classification failed for %s: %v", target, err)
				return nil
			}
			if len(fields) == 0 {
				return nil
			}

			mu.Lock()
			results[path] = subpageResult{path: path, fields: fields, summary: summary}
			mu.Unlock()
			return nil
		})
	}
	// Goroutines absorb their own failures; Wait only propagates context
	// cancellation, which leaves the snapshot with whatever merged so far.
	_ = g.Wait()

	for _, path := range paths {
		res, ok := results[path]
		if !ok {
			continue
		}
		for _, f := range res.fields {
			if snap.FieldsFound.Has(f) {
				continue
			}
			snap.FieldsFound.Add(f)
			snap.ContentByField[f] = truncate(res.summary, ExcerptLimit)
		}
	}
}

// scanFields runs the rule-based keyword scan over a page's headings and
// emphasized text. Returns a field-to-excerpt map.
func scanFields(html string) (map[taxonomy.Field]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	found := make(map[taxonomy.Field]string)
	doc.Find("h1, h2, h3, h4, strong, b, em, th, dt").Each(func(_ int, sel *goquery.Selection) {
		heading := strings.ToLower(strings.TrimSpace(sel.Text()))
		if heading == "" {
			return
		}
		for _, f := range taxonomy.Fields() {
			if _, ok := found[f]; ok {
				continue
			}
			if !matchesKeyword(heading, taxonomy.Keywords(f)) {
				continue
			}
			found[f] = truncate(blockText(sel), ExcerptLimit)
		}
	})

	return found, nil
}

// matchesKeyword reports whether text contains any of the terms.
func matchesKeyword(text string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}

// blockText returns the nearest enclosing content block for a matched
// heading, falling back to the heading's own text.
func blockText(sel *goquery.Selection) string {
	parent := sel.Parent()
	if parent.Length() > 0 {
		if text := normalizeSpace(parent.Text()); text != "" {
			return text
		}
	}
	return normalizeSpace(sel.Text())
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
