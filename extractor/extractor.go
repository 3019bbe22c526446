// Package extractor turns a retailer product page into a best-effort
// {title, image, price, source, url} record.
//
// Each field is resolved by an ordered chain of independent strategies. A
// strategy that finds nothing, or finds something unparseable, simply yields
// to the next one; extraction itself never fails.
package extractor

import (
	"context"
	"log/slog"
	"net/url"
	"time"

	"github.com/lightning66/GiftMe/models"
	"github.com/lightning66/GiftMe/scraper"
)

// Extract resolves all fields of req from rawHTML. It never fails and never
// modifies req.
func Extract(rawHTML string, req models.ExtractRequest) *models.ExtractResult {
	return extract(rawHTML, req, nil)
}

// ExtractWithTrace is Extract plus a record of every strategy consulted.
func ExtractWithTrace(rawHTML string, req models.ExtractRequest) (*models.ExtractResult, *Trace) {
	tr := &Trace{}
	res := extract(rawHTML, req, tr)
	return res, tr
}

func extract(rawHTML string, req models.ExtractRequest, tr *Trace) *models.ExtractResult {
	doc := Parse(rawHTML)
	sd := findProduct(doc.JSONLD())
	if tr != nil {
		tr.JSONLDBlocks = len(doc.JSONLD())
		tr.HasStructuredData = sd != nil
	}

	title := resolveTitle(doc, sd, tr)
	if title == "" {
		title = models.UntitledItem
	}

	return &models.ExtractResult{
		Title:  title,
		Image:  resolveImage(doc, sd, req.URL, tr),
		Price:  resolvePrice(doc, sd, req, tr),
		Source: SourceOf(req.URL),
		URL:    req.URL,
	}
}

// PageFetcher retrieves the raw HTML of a page.
type PageFetcher interface {
	Fetch(ctx context.Context, targetURL string, timeout time.Duration) (*scraper.RawPage, error)
}

// Engine runs fetch then extract for one request.
type Engine struct {
	fetcher PageFetcher
	timeout time.Duration
}

// NewEngine creates an Engine. A timeout <= 0 defers to the fetcher default.
func NewEngine(fetcher PageFetcher, timeout time.Duration) *Engine {
	return &Engine{fetcher: fetcher, timeout: timeout}
}

// Run validates req.URL, fetches the page and extracts it. Fetch failures
// are returned as *models.FetchError.
func (e *Engine) Run(ctx context.Context, req models.ExtractRequest) (*models.ExtractResult, error) {
	res, _, err := e.run(ctx, req, false)
	return res, err
}

// RunWithTrace is Run plus the strategy trace.
func (e *Engine) RunWithTrace(ctx context.Context, req models.ExtractRequest) (*models.ExtractResult, *Trace, error) {
	return e.run(ctx, req, true)
}

func (e *Engine) run(ctx context.Context, req models.ExtractRequest, trace bool) (*models.ExtractResult, *Trace, error) {
	if err := ValidateURL(req.URL); err != nil {
		return nil, nil, err
	}

	start := time.Now()
	page, err := e.fetcher.Fetch(ctx, req.URL, e.timeout)
	if err != nil {
		slog.Warn("fetch failed", "url", req.URL, "error", err)
		return nil, nil, err
	}

	var (
		res *models.ExtractResult
		tr  *Trace
	)
	if trace {
		res, tr = ExtractWithTrace(page.HTML, req)
	} else {
		res = Extract(page.HTML, req)
	}

	slog.Info("item extracted",
		"url", req.URL,
		"finalURL", page.FinalURL,
		"source", res.Source,
		"price", res.Price,
		"hasImage", res.Image != "",
		"elapsed", time.Since(start),
	)
	return res, tr, nil
}

// ValidateURL accepts absolute http and https URLs with a host.
func ValidateURL(raw string) error {
	if raw == "" {
		return models.NewFetchError(models.ErrCodeInvalidInput, "URL is required", nil)
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return models.NewFetchError(models.ErrCodeInvalidInput, "URL must be an absolute http or https URL", err)
	}
	return nil
}
