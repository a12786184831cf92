package cleaner

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	// Title casing capitalises connector words too; these get lowered
	// again afterwards. Matched against the title-cased text, so the
	// patterns are the capitalised forms only.
	connectorRe = regexp.MustCompile(`\b(And|Or|Of|In|The|With|From|To|As|By|For|On|At|Is|A|An)\b`)

	multiCommaRe = regexp.MustCompile(`,\s*,+`)
	commaSpaceRe = regexp.MustCompile(`\s*,\s*`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// Ingredients rewrites a raw ingredients blob into a tidy comma
// separated list: HTML stripped, title cased, periods between entries
// turned into commas while decimals like "1.5%" survive.
//
//	"AQUA, GLYCERIN, SODIUM LAURYL SULFATE. FRAGRANCE."
//	            -> "Aqua, Glycerin, Sodium Lauryl Sulfate, Fragrance"
//	"GLYCERIN (1.5%), WATER. SODIUM CHLORIDE."
//	            -> "Glycerin (1.5%), Water, Sodium Chloride"
//
// Empty input and the "N/A" placeholder pass through unchanged.
func Ingredients(raw string) string {
	if raw == "" || raw == "N/A" {
		return raw
	}

	s := Text(raw)
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}

	// A period ends a list entry unless it starts a decimal. The usual
	// regex for this needs lookahead, which RE2 lacks, so scan runes.
	rs := []rune(s)
	var b strings.Builder
	b.Grow(len(s))
	for i, r := range rs {
		if r == '.' && (i+1 >= len(rs) || !unicode.IsDigit(rs[i+1])) {
			b.WriteRune(',')
			continue
		}
		b.WriteRune(r)
	}

	// Casers are stateful, so build one per call instead of sharing.
	s = cases.Title(language.English).String(b.String())
	s = connectorRe.ReplaceAllStringFunc(s, strings.ToLower)

	s = multiCommaRe.ReplaceAllString(s, ",")
	s = commaSpaceRe.ReplaceAllString(s, ", ")
	s = whitespaceRe.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	return strings.TrimRight(s, ", ")
}
