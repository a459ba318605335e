package openai

import (
	"regexp"
	"strings"
)

var (
	// A key that lost one or both of its quotes: {topics": or {topics:
	bareKey = regexp.MustCompile(`([{,]\s*)"?([A-Za-z_][A-Za-z0-9_]*)"?\s*:`)
	// A comma right before a closing bracket or brace.
	trailingComma = regexp.MustCompile(`,\s*([\]}])`)
)

// repairJSON cuts model output down to its outermost JSON object and fixes
// the quoting and comma mistakes small models tend to make. Text with no
// object is returned trimmed and unchanged.
func repairJSON(s string) string {
	s = strings.TrimSpace(s)
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end < start {
		return s
	}

	s = s[start : end+1]
	s = bareKey.ReplaceAllString(s, `$1"$2":`)
	return trailingComma.ReplaceAllString(s, "$1")
}
