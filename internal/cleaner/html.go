// Package cleaner normalises the messy text fields coming back from
// the shopping API: HTML fragments, shouty ingredient lists, stray
// whitespace.
package cleaner

import (
	"strings"

	"golang.org/x/net/html"
)

// Text converts an HTML fragment to plain text. Tags are dropped,
// entities decoded and all whitespace runs collapsed to single spaces.
// Plain strings pass through with just the whitespace normalised.
func Text(raw string) string {
	if raw == "" {
		return ""
	}
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(raw))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		if tt == html.TextToken {
			b.Write(z.Text())
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
