package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/lightning66/GiftMe/config"
	"github.com/lightning66/GiftMe/models"
	"golang.org/x/net/html/charset"
)

// Fetcher retrieves product pages and images. It is safe for concurrent use.
type Fetcher struct {
	client  *http.Client
	timeout time.Duration
	maxBody int64
}

// NewFetcher creates a Fetcher from the fetch configuration.
func NewFetcher(cfg config.FetchConfig) *Fetcher {
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 10 << 20
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 12 * time.Second
	}
	var tlsDialer *chromeDialer
	if cfg.TLSFingerprint {
		tlsDialer = &chromeDialer{}
	}
	return &Fetcher{
		client: &http.Client{
			Transport:     newTransport(tlsDialer),
			CheckRedirect: checkRedirect,
		},
		timeout: timeout,
		maxBody: maxBody,
	}
}

// Timeout returns the default per-fetch budget.
func (f *Fetcher) Timeout() time.Duration { return f.timeout }

// Fetch performs a single GET of targetURL bounded by timeout (the configured
// default when timeout <= 0). Failures are returned as *models.FetchError.
func (f *Fetcher) Fetch(ctx context.Context, targetURL string, timeout time.Duration) (*RawPage, error) {
	if timeout <= 0 {
		timeout = f.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, models.NewFetchError(models.ErrCodeNetwork, "build request", err)
	}
	setBrowserHeaders(req)

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, classify(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a little so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return nil, models.NewUpstreamError(resp.StatusCode, targetURL)
	}

	contentType := resp.Header.Get("Content-Type")
	body, err := readBody(io.LimitReader(resp.Body, f.maxBody), contentType)
	if err != nil {
		return nil, classify(ctx, err)
	}

	slog.Debug("page fetched",
		"url", targetURL,
		"status", resp.StatusCode,
		"bytes", len(body),
		"elapsed", time.Since(start),
	)

	return &RawPage{
		HTML:        body,
		ContentType: contentType,
		StatusCode:  resp.StatusCode,
		FinalURL:    resp.Request.URL.String(),
	}, nil
}

// Stream opens targetURL for relaying. The caller must close the returned
// body. The request is bounded only by ctx.
func (f *Fetcher) Stream(ctx context.Context, targetURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, models.NewFetchError(models.ErrCodeNetwork, "build request", err)
	}
	setBrowserHeaders(req)
	req.Header.Set("Accept", "image/avif,image/webp,image/apng,image/*,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, classify(ctx, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, models.NewUpstreamError(resp.StatusCode, targetURL)
	}
	return resp, nil
}

// readBody reads r and transcodes it to UTF-8 according to the declared
// charset, falling back to sniffing the document.
func readBody(r io.Reader, contentType string) (string, error) {
	utf8Reader, err := charset.NewReader(r, contentType)
	if err != nil {
		return "", fmt.Errorf("scraper: detect charset: %w", err)
	}
	b, err := io.ReadAll(utf8Reader)
	if err != nil {
		return "", fmt.Errorf("scraper: read body: %w", err)
	}
	return string(b), nil
}

// classify maps a transport error to a FetchError code.
func classify(ctx context.Context, err error) *models.FetchError {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return models.NewFetchError(models.ErrCodeTimeout, "page load timed out", err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return models.NewFetchError(models.ErrCodeTimeout, "page load timed out", err)
	}
	return models.NewFetchError(models.ErrCodeNetwork, "request failed", err)
}
