package similarity

import (
	"strings"
	"unicode"
)

// Tokens carrying no genre signal in free-text prompts.
var noiseTokens = map[string]struct{}{
	"a":        {},
	"and":      {},
	"for":      {},
	"me":       {},
	"music":    {},
	"of":       {},
	"playlist": {},
	"some":     {},
	"song":     {},
	"songs":    {},
	"the":      {},
	"to":       {},
	"tracks":   {},
	"with":     {},
}

func normalizeText(input string) []string {
	if input == "" {
		return nil
	}

	lower := strings.ToLower(input)
	filtered := stripBracketedSegments(lower)
	tokens := strings.Fields(cleanSeparators(filtered))

	cleaned := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if _, drop := noiseTokens[token]; drop {
			continue
		}
		cleaned = append(cleaned, token)
	}

	return cleaned
}

func stripBracketedSegments(input string) string {
	var out strings.Builder
	depth := 0
	for _, r := range input {
		switch r {
		case '(', '[':
			depth++
		case ')', ']':
			if depth > 0 {
				depth--
			}
		default:
			if depth == 0 {
				out.WriteRune(r)
			}
		}
	}

	return out.String()
}

func cleanSeparators(input string) string {
	var out strings.Builder
	lastSpace := false
	for _, r := range input {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			out.WriteRune(r)
			lastSpace = false
			continue
		}
		if !lastSpace {
			out.WriteRune(' ')
			lastSpace = true
		}
	}

	return out.String()
}
