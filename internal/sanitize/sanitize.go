// Package sanitize cleans user supplied input before it reaches handlers.
package sanitize

import (
	"strings"

	"golang.org/x/net/html"
)

// String trims whitespace and removes markup. Text between tags is kept as
// written, so character references such as &lt; are not decoded.
func String(s string) string {
	if !strings.Contains(s, "<") {
		return strings.TrimSpace(s)
	}

	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			// io.EOF or a malformed tail; either way keep what was read.
			return strings.TrimSpace(b.String())
		case html.TextToken:
			b.Write(z.Raw())
		}
	}
}

// Value cleans v recursively. Strings are cleaned with String, maps and
// slices are walked, anything else is returned unchanged.
func Value(v any) any {
	switch t := v.(type) {
	case string:
		return String(t)
	case []string:
		out := make([]string, len(t))
		for i, s := range t {
			out[i] = String(s)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = Value(item)
		}
		return out
	case map[string]any:
		return Map(t)
	case map[string][]string:
		out := make(map[string][]string, len(t))
		for k, vals := range t {
			out[k] = Value(vals).([]string)
		}
		return out
	default:
		return v
	}
}

// Map cleans every value of m into a new map.
func Map(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = Value(v)
	}
	return out
}
