package extractor

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/lightning66/GiftMe/models"
)

var (
	reNonNumeric   = regexp.MustCompile(`[^0-9.]`)
	reNumberPrefix = regexp.MustCompile(`^(?:[0-9]+(?:\.[0-9]*)?|\.[0-9]+)`)

	// Retailer keys embedded in inline state. Keys may be bare, quoted or
	// backslash-escaped inside a JSON string.
	reCurrentRetail  = regexp.MustCompile(`(?i)(?:\\?")?current_retail(?:\\?")?\s*:\s*([0-9]+(?:\.[0-9]+)?)`)
	reFormattedPrice = regexp.MustCompile(`(?i)(?:\\?")?formatted_current_price(?:\\?")?\s*:\s*\\?"\$([0-9,]+(?:\.[0-9]+)?)\\?"`)

	reDollarLiteral = regexp.MustCompile(`\$[0-9]{1,3}(?:,[0-9]{3})*(?:\.[0-9]{2})?`)
)

type priceSource struct {
	name string
	fn   func(*Document, StructuredData) (float64, bool)
}

// metaPriceSources are tried in order; the first parseable one wins.
var metaPriceSources = []priceSource{
	{"meta:product:price:amount", attrPrice(selProductPrice, "content")},
	{"meta:itemprop=price", attrPrice(selMetaItemprop, "content")},
	{"meta:name=price", attrPrice(selMetaPrice, "content")},
}

// scriptPriceSources scan inline scripts before the raw page text.
var scriptPriceSources = []priceSource{
	{"script:current_retail", regexPrice(reCurrentRetail, (*Document).Scripts)},
	{"script:formatted_current_price", regexPrice(reFormattedPrice, (*Document).Scripts)},
	{"raw:current_retail", regexPrice(reCurrentRetail, (*Document).Raw)},
	{"raw:formatted_current_price", regexPrice(reFormattedPrice, (*Document).Raw)},
}

// offerPrice is the price carried by a structured-data offer.
type offerPrice struct {
	amount   float64
	currency string
}

// resolvePrice applies the price precedence and returns a display string.
func resolvePrice(d *Document, sd StructuredData, req models.ExtractRequest, tr *Trace) string {
	if req.Price != nil {
		tr.record("price", "override:price", formatUSD(*req.Price), true)
		return formatUSD(*req.Price)
	}
	if req.OriginalPrice != nil && req.Savings != nil {
		v := math.Max(0, *req.OriginalPrice-*req.Savings)
		tr.record("price", "override:original-savings", formatUSD(v), true)
		return formatUSD(v)
	}

	var display string

	structured, hasStructured := structuredOffer(sd)
	if hasStructured {
		display = structured.display()
		tr.record("price", "jsonld:offers", display, true)
	} else {
		tr.record("price", "jsonld:offers", "", false)
	}

	if v, name, ok := firstPrice(metaPriceSources, d, sd); ok {
		display = formatUSD(v)
		tr.record("price", name, display, true)
	}

	if display == "" {
		if v, ok := itempropPrice(d); ok {
			display = formatUSD(v)
			tr.record("price", "itemprop=price", display, true)
		}
	}

	if script, name, ok := firstPrice(scriptPriceSources, d, sd); ok {
		v := script
		if hasStructured && structured.amount > 0 {
			v = math.Max(structured.amount, script)
		}
		display = formatUSD(v)
		tr.record("price", name, display, true)
	}

	if display == "" {
		if v, ok := smallestLiteral(d.Raw()); ok {
			display = formatUSD(v)
			tr.record("price", "literal:min", display, true)
		}
	}

	if display == "" {
		return models.PriceNotAvailable
	}
	return display
}

// firstPrice returns the first source yielding a value.
func firstPrice(sources []priceSource, d *Document, sd StructuredData) (float64, string, bool) {
	for _, s := range sources {
		if v, ok := s.fn(d, sd); ok {
			return v, s.name, true
		}
	}
	return 0, "", false
}

// structuredOffer reads offers (object, or first array element): price,
// else priceSpecification.price.
func structuredOffer(sd StructuredData) (offerPrice, bool) {
	offer := firstObject(sd["offers"])
	if offer == nil {
		return offerPrice{}, false
	}

	raw := offer["price"]
	if !truthy(raw) {
		if spec := firstObject(offer["priceSpecification"]); spec != nil {
			raw = spec["price"]
		}
	}
	if !truthy(raw) {
		return offerPrice{}, false
	}

	v, ok := parseLoose(scalarString(raw))
	if !ok {
		return offerPrice{}, false
	}
	cur, _ := offer["priceCurrency"].(string)
	return offerPrice{amount: v, currency: strings.TrimSpace(cur)}, true
}

func (o offerPrice) display() string {
	if o.currency != "" {
		return o.currency + " " + formatUSD(o.amount)
	}
	return formatUSD(o.amount)
}

func attrPrice(sel cascadia.Selector, attr string) func(*Document, StructuredData) (float64, bool) {
	return func(d *Document, _ StructuredData) (float64, bool) {
		v := d.Attr(sel, attr)
		if v == "" {
			return 0, false
		}
		return parseLoose(v)
	}
}

// itempropPrice reads the first [itemprop=price] element: content attribute,
// else its text.
func itempropPrice(d *Document) (float64, bool) {
	el := d.First(selItempropPrice)
	if el.Length() == 0 {
		return 0, false
	}
	raw, _ := el.Attr("content")
	if strings.TrimSpace(raw) == "" {
		raw = el.Text()
	}
	return parseLoose(raw)
}

func regexPrice(re *regexp.Regexp, text func(*Document) string) func(*Document, StructuredData) (float64, bool) {
	return func(d *Document, _ StructuredData) (float64, bool) {
		m := re.FindStringSubmatch(text(d))
		if m == nil {
			return 0, false
		}
		v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
		if err != nil || v <= 0 || math.IsInf(v, 0) {
			return 0, false
		}
		return v, true
	}
}

// smallestLiteral returns the smallest distinct "$1,234.56"-style literal
// in text.
func smallestLiteral(text string) (float64, bool) {
	matches := reDollarLiteral.FindAllString(text, -1)
	if len(matches) == 0 {
		return 0, false
	}
	seen := make(map[string]struct{}, len(matches))
	var values []float64
	for _, m := range matches {
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		if v, ok := parseLoose(m); ok {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return 0, false
	}
	sort.Float64s(values)
	return values[0], true
}

// parseLoose strips everything except digits and dots, then parses the
// longest numeric prefix. "USD 1,299.00" gives 1299.
func parseLoose(s string) (float64, bool) {
	cleaned := reNonNumeric.ReplaceAllString(s, "")
	prefix := reNumberPrefix.FindString(cleaned)
	if prefix == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(prefix, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func formatUSD(v float64) string {
	return "$" + strconv.FormatFloat(v, 'f', 2, 64)
}
