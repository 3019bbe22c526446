package extractor

import (
	"net/url"
	"strings"
)

var imageStrategies = []textStrategy{
	{"og:image", func(d *Document, _ StructuredData) string { return d.Attr(selOGImage, "content") }},
	{"link:image_src", func(d *Document, _ StructuredData) string { return d.Attr(selImageSrcLink, "href") }},
	{"meta:image", func(d *Document, _ StructuredData) string { return d.Attr(selMetaImage, "content") }},
	{"twitter:image", func(d *Document, _ StructuredData) string { return d.Attr(selTwitterImage, "content") }},
	{"twitter:image:src", func(d *Document, _ StructuredData) string { return d.Attr(selTwitterImgSrc, "content") }},
	{"jsonld:image", structuredImage},
	{"<img>", imgElement},
}

// resolveImage returns the first image candidate made absolute against
// pageURL, or "".
func resolveImage(d *Document, sd StructuredData, pageURL string, tr *Trace) string {
	raw := firstText("image", imageStrategies, d, sd, tr)
	if raw == "" {
		return ""
	}
	return absoluteImageURL(raw, pageURL)
}

// structuredImage reads image as a string, an array (first element) or an
// object (its url).
func structuredImage(_ *Document, sd StructuredData) string {
	v := sd["image"]
	if arr, ok := v.([]any); ok {
		if len(arr) == 0 {
			return ""
		}
		v = arr[0]
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case map[string]any:
		if s, ok := t["url"].(string); ok {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

// imgElement prefers an itemprop image, else the first <img>, and reads its
// lazy-load attributes before src. srcset is the last resort.
func imgElement(d *Document, _ StructuredData) string {
	img := d.First(selItempropImg)
	if img.Length() == 0 {
		img = d.First(selImg)
	}
	if img.Length() == 0 {
		return ""
	}
	for _, attr := range []string{"data-src", "data-lazy-src", "src"} {
		if v, ok := img.Attr(attr); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	srcset, _ := img.Attr("srcset")
	return lastSrcsetCandidate(srcset)
}

// lastSrcsetCandidate returns the URL of the last entry in a srcset list,
// which is conventionally the largest.
func lastSrcsetCandidate(srcset string) string {
	parts := strings.Split(srcset, ",")
	for i := len(parts) - 1; i >= 0; i-- {
		fields := strings.Fields(parts[i])
		if len(fields) > 0 {
			return fields[0]
		}
	}
	return ""
}

// absoluteImageURL upgrades protocol-relative URLs to https and resolves
// anything else not starting with "http" against pageURL. The result is
// either an absolute http(s) URL or "".
func absoluteImageURL(raw, pageURL string) string {
	img := strings.TrimSpace(raw)
	if strings.HasPrefix(img, "//") {
		img = "https:" + img
	}
	if !strings.HasPrefix(img, "http") {
		base, err := url.Parse(pageURL)
		if err != nil {
			return ""
		}
		ref, err := base.Parse(img)
		if err != nil {
			return ""
		}
		img = ref.String()
	}
	u, err := url.Parse(img)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ""
	}
	return img
}
