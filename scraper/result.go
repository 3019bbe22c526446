package scraper

// RawPage is the outcome of a successful fetch.
type RawPage struct {
	// HTML is the response body transcoded to UTF-8.
	HTML string

	// ContentType is the upstream Content-Type header.
	ContentType string

	StatusCode int

	// FinalURL is the URL after redirects.
	FinalURL string
}
