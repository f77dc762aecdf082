package ai

import "strings"

// GroupTokens merges contiguous tokens that belong to the same entity and
// returns the entity surface forms in encounter order.
//
// Tokens carrying an EntityGroup are already complete spans and pass through.
// Otherwise IOB labels drive grouping: "B-" starts an entity, "I-" of the same
// type continues it, and "##" word pieces are glued to the previous token.
// Repeated mentions are kept. Spans that normalize to "" are dropped.
func GroupTokens(tokens []Token) []string {
	entities := make([]string, 0, len(tokens))

	var (
		current     strings.Builder
		currentType string
	)

	flush := func() {
		if surface := normalizeSurface(current.String()); surface != "" {
			entities = append(entities, surface)
		}
		current.Reset()
		currentType = ""
	}

	for _, tok := range tokens {
		if tok.EntityGroup != "" {
			flush()
			if surface := normalizeSurface(tok.Word); surface != "" {
				entities = append(entities, surface)
			}
			continue
		}

		prefix, typ := splitLabel(tok.Entity)
		if typ == "" || typ == "O" {
			flush()
			continue
		}

		piece := strings.HasPrefix(tok.Word, "##")
		continues := current.Len() > 0 && typ == currentType && (prefix != "B" || piece)

		if !continues {
			flush()
			currentType = typ
			current.WriteString(strings.TrimPrefix(tok.Word, "##"))
			continue
		}

		if piece {
			current.WriteString(strings.TrimPrefix(tok.Word, "##"))
		} else {
			current.WriteByte(' ')
			current.WriteString(tok.Word)
		}
	}
	flush()

	return entities
}

// splitLabel splits an IOB label like "B-PER" into ("B", "PER").
// Labels without a prefix are treated as inside tokens.
func splitLabel(label string) (prefix, typ string) {
	label = strings.TrimSpace(label)
	if len(label) > 2 && label[1] == '-' && (label[0] == 'B' || label[0] == 'I') {
		return label[:1], label[2:]
	}
	return "I", label
}

func normalizeSurface(s string) string {
	s = strings.ReplaceAll(s, "##", "")
	return strings.Join(strings.Fields(s), " ")
}
