package extractor

import (
	"strings"
)

const maxTitleRunes = 200

type textStrategy struct {
	name string
	fn   func(*Document, StructuredData) string
}

var titleStrategies = []textStrategy{
	{"og:title", func(d *Document, _ StructuredData) string { return d.Attr(selOGTitle, "content") }},
	{"meta:title", func(d *Document, _ StructuredData) string { return d.Attr(selMetaTitle, "content") }},
	{"<title>", func(d *Document, _ StructuredData) string { return truncateRunes(d.Text(selTitle), maxTitleRunes) }},
	{"jsonld:name", func(_ *Document, sd StructuredData) string { return strings.TrimSpace(sd.String("name")) }},
	{"jsonld:title", func(_ *Document, sd StructuredData) string { return strings.TrimSpace(sd.String("title")) }},
}

// resolveTitle returns the first non-empty title, or "".
func resolveTitle(d *Document, sd StructuredData, tr *Trace) string {
	return firstText("title", titleStrategies, d, sd, tr)
}

func firstText(field string, strategies []textStrategy, d *Document, sd StructuredData, tr *Trace) string {
	for _, s := range strategies {
		v := s.fn(d, sd)
		if v != "" {
			tr.record(field, s.name, v, true)
			return v
		}
		tr.record(field, s.name, "", false)
	}
	return ""
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
