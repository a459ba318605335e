package match

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	disallowed     = regexp.MustCompile(`[^a-z0-9\s\-_/]`)
	whitespaceRuns = regexp.MustCompile(`\s+`)
	tokenSeparator = regexp.MustCompile(`[\s\-/_,;]+`)
)

// foldDiacritics strips combining marks so "Müller" and "Muller" compare equal.
// A transformer is not safe for concurrent use, so one is built per call.
func foldDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return folded
}

// Normalize lowercases text, folds diacritics, replaces every character other
// than ASCII letters, digits, whitespace, '-', '_' and '/' with a space, then
// collapses whitespace runs and trims.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	s := foldDiacritics(strings.ToLower(text))
	s = disallowed.ReplaceAllString(s, " ")
	s = whitespaceRuns.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Tokenize normalizes text and splits it on whitespace, '-', '/', '_', ','
// and ';'. Tokens shorter than two characters are dropped.
func Tokenize(text string) []string {
	normalized := Normalize(text)
	if normalized == "" {
		return nil
	}
	parts := tokenSeparator.Split(normalized, -1)
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		if len(p) >= 2 {
			tokens = append(tokens, p)
		}
	}
	return tokens
}
