package extractor

import (
	"net/url"
	"strings"
)

// SourceOf returns the retailer label for rawURL: its lower-cased hostname
// without a leading "www.". An unparseable URL is returned unchanged.
func SourceOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return rawURL
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}
