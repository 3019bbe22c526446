package extractor

import (
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// Selectors used by the resolvers, compiled once.
var (
	selOGTitle       = cascadia.MustCompile(`meta[property="og:title"]`)
	selMetaTitle     = cascadia.MustCompile(`meta[name="title"]`)
	selTitle         = cascadia.MustCompile(`title`)
	selOGImage       = cascadia.MustCompile(`meta[property="og:image"]`)
	selImageSrcLink  = cascadia.MustCompile(`link[rel="image_src"]`)
	selMetaImage     = cascadia.MustCompile(`meta[name="image"]`)
	selTwitterImage  = cascadia.MustCompile(`meta[property="twitter:image"], meta[name="twitter:image"]`)
	selTwitterImgSrc = cascadia.MustCompile(`meta[property="twitter:image:src"], meta[name="twitter:image:src"]`)
	selItempropImg   = cascadia.MustCompile(`img[itemprop="image"]`)
	selImg           = cascadia.MustCompile(`img`)
	selProductPrice  = cascadia.MustCompile(`meta[property="product:price:amount"]`)
	selMetaItemprop  = cascadia.MustCompile(`meta[itemprop="price"]`)
	selMetaPrice     = cascadia.MustCompile(`meta[name="price"]`)
	selItempropPrice = cascadia.MustCompile(`[itemprop="price"]`)
	selScript        = cascadia.MustCompile(`script`)
	selJSONLD        = cascadia.MustCompile(`script[type="application/ld+json"]`)
)

// Document is a parsed page. It is built once per extraction and only read
// afterwards.
type Document struct {
	doc     *goquery.Document
	raw     string
	scripts string
	jsonLD  []any
}

// Parse builds a Document from raw HTML. It never fails: the HTML parser is
// permissive, and if it errors anyway an empty document is used.
func Parse(rawHTML string) *Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		slog.Debug("html parse failed, using empty document", "error", err)
		doc = goquery.NewDocumentFromNode(&html.Node{Type: html.DocumentNode})
	}

	d := &Document{doc: doc, raw: rawHTML}
	d.scripts = joinScripts(doc)
	d.jsonLD = decodeJSONLD(doc)
	return d
}

// Raw returns the unparsed HTML text.
func (d *Document) Raw() string { return d.raw }

// Scripts returns the bodies of all <script> elements in document order,
// joined by "\n".
func (d *Document) Scripts() string { return d.scripts }

// JSONLD returns the successfully decoded ld+json blocks in document order.
func (d *Document) JSONLD() []any { return d.jsonLD }

// Attr returns the trimmed attribute of the first element matching sel, or
// "" when there is no match or the attribute is missing.
func (d *Document) Attr(sel cascadia.Selector, attr string) string {
	v, _ := d.doc.FindMatcher(sel).First().Attr(attr)
	return strings.TrimSpace(v)
}

// Text returns the trimmed text of the first element matching sel.
func (d *Document) Text(sel cascadia.Selector) string {
	return strings.TrimSpace(d.doc.FindMatcher(sel).First().Text())
}

// First returns the first element matching sel. The selection may be empty.
func (d *Document) First(sel cascadia.Selector) *goquery.Selection {
	return d.doc.FindMatcher(sel).First()
}

func joinScripts(doc *goquery.Document) string {
	var parts []string
	doc.FindMatcher(selScript).Each(func(_ int, s *goquery.Selection) {
		parts = append(parts, s.Text())
	})
	return strings.Join(parts, "\n")
}

// decodeJSONLD decodes every ld+json block on its own. A block that does not
// decode is logged and skipped; it never affects its neighbours.
func decodeJSONLD(doc *goquery.Document) []any {
	var blocks []any
	doc.FindMatcher(selJSONLD).Each(func(i int, s *goquery.Selection) {
		raw := strings.TrimSpace(s.Text())
		if raw == "" {
			return
		}
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			slog.Debug("skipping malformed ld+json block", "index", i, "error", err)
			return
		}
		blocks = append(blocks, v)
	})
	return blocks
}
