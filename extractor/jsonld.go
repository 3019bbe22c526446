package extractor

import (
	"strconv"
)

// StructuredData is the product object chosen from the page's ld+json
// blocks. It is nil when no block qualifies.
type StructuredData map[string]any

// findProduct returns the first qualifying object across blocks. Array
// entries qualify when they are typed Product or carry a product field;
// top-level objects additionally qualify when they carry offers.
func findProduct(blocks []any) StructuredData {
	for _, block := range blocks {
		switch v := block.(type) {
		case []any:
			if m := firstProductEntry(v); m != nil {
				return m
			}
		case map[string]any:
			if isProductType(v["@type"]) || truthy(v["product"]) || truthy(v["offers"]) {
				return v
			}
			if graph, ok := v["@graph"].([]any); ok {
				if m := firstProductEntry(graph); m != nil {
					return m
				}
			}
		}
	}
	return nil
}

func firstProductEntry(entries []any) StructuredData {
	for _, e := range entries {
		m, ok := e.(map[string]any)
		if !ok {
			continue
		}
		if isProductType(m["@type"]) || truthy(m["product"]) {
			return m
		}
	}
	return nil
}

// isProductType accepts "Product" or an array containing it.
func isProductType(t any) bool {
	switch v := t.(type) {
	case string:
		return v == "Product"
	case []any:
		for _, e := range v {
			if s, ok := e.(string); ok && s == "Product" {
				return true
			}
		}
	}
	return false
}

// truthy reports whether a decoded JSON value would count as set: not null,
// not false, not zero and not the empty string.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	default:
		return true
	}
}

// String returns the value at key when it is a non-empty string.
func (sd StructuredData) String(key string) string {
	if s, ok := sd[key].(string); ok {
		return s
	}
	return ""
}

// scalarString renders a string or number the way it appeared in the source.
// Other types yield "".
func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	return ""
}

// firstObject returns v itself when it is an object, or its first element
// when it is an array whose first element is an object.
func firstObject(v any) map[string]any {
	switch t := v.(type) {
	case map[string]any:
		return t
	case []any:
		if len(t) > 0 {
			if m, ok := t[0].(map[string]any); ok {
				return m
			}
		}
	}
	return nil
}
