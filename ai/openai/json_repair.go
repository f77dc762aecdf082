package openai

import (
	"regexp"
	"strings"
)

var (
	// `{labels":` or `, entities":` where the opening quote went missing.
	halfQuotedKey = regexp.MustCompile(`([{,]\s*)([A-Za-z_][A-Za-z0-9_]*)":`)
	// `{labels:` with no quotes at all.
	bareKey = regexp.MustCompile(`([{,]\s*)([A-Za-z_][A-Za-z0-9_]*)\s*:`)
	// `,]` and `,}` left behind by chatty models.
	trailingComma = regexp.MustCompile(`,\s*([\]}])`)
)

// stripCodeFence removes a surrounding markdown code fence, if present.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// objectSpan trims any prose around the outermost JSON object.
func objectSpan(s string) string {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end <= start {
		return s
	}
	return s[start : end+1]
}

// repairJSON fixes the key quoting and trailing comma mistakes small models
// make when asked for a single JSON object. Well-formed input is returned
// unchanged.
func repairJSON(s string) string {
	s = objectSpan(s)
	s = halfQuotedKey.ReplaceAllString(s, `$1"$2":`)
	s = bareKey.ReplaceAllString(s, `$1"$2":`)
	return trailingComma.ReplaceAllString(s, "$1")
}
