package keyword

import (
	"context"
	"strings"
	"unicode"

	"github.com/poiesic/newsroom/ai"
)

// leadingStopwords are capitalised only because they open a sentence.
var leadingStopwords = map[string]bool{
	"a": true, "an": true, "the": true, "in": true, "on": true, "at": true,
	"for": true, "with": true, "after": true, "as": true,
	"this": true, "that": true, "it": true, "its": true, "he": true, "she": true,
	"they": true, "we": true, "i": true, "but": true, "and": true, "or": true,
	"how": true, "why": true, "what": true, "when": true, "local": true,
}

// EntityExtractor implements ai.EntityExtractor by tagging runs of
// capitalised words. It emits IOB tokens with the MISC type.
type EntityExtractor struct{}

var _ ai.EntityExtractor = (*EntityExtractor)(nil)

// Tag returns B-MISC/I-MISC tokens for every run of capitalised words.
// Punctuation at the end of a word closes the run.
func (e *EntityExtractor) Tag(ctx context.Context, text string) ([]ai.Token, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tokens := []ai.Token{}
	inside := false
	sentenceStart := true
	offset := 0

	for _, field := range strings.Fields(text) {
		start := strings.Index(text[offset:], field) + offset
		offset = start + len(field)

		word := strings.TrimFunc(field, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		word = strings.TrimSuffix(strings.TrimSuffix(word, "'s"), "’s")

		capitalised := word != "" && unicode.IsUpper(firstRune(word))
		if capitalised && sentenceStart && leadingStopwords[strings.ToLower(word)] {
			capitalised = false
		}

		if capitalised {
			label := "B-MISC"
			if inside {
				label = "I-MISC"
			}
			tokens = append(tokens, ai.Token{
				Word:   word,
				Entity: label,
				Score:  1,
				Start:  start,
				End:    start + len(field),
			})
			inside = true
		} else {
			inside = false
		}

		last := lastRune(field)
		if last != 0 && !unicode.IsLetter(last) && !unicode.IsDigit(last) {
			inside = false
		}
		sentenceStart = last == '.' || last == '!' || last == '?' || last == ':'
	}

	return tokens, nil
}

func firstRune(s string) rune {
	for _, r := range s {
		return r
	}
	return 0
}

func lastRune(s string) rune {
	r := []rune(s)
	if len(r) == 0 {
		return 0
	}
	return r[len(r)-1]
}
