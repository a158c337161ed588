// Package similarity provides a lexical text-similarity scorer used to rank
// the genre vocabulary against a free-text prompt.
package similarity

import "github.com/moodika/moodika/internal/core/ports"

// scoreScale expresses scores in the raw units the cohesion cutoff is tuned
// in: a perfect match scores 10, no lexical overlap scores 0.
const scoreScale = 10.0

// LexicalScorer scores a genre against a prompt by edit-distance similarity
// between their normalized tokens. Each genre token contributes its best
// match among the prompt tokens; the score is the scaled mean contribution.
type LexicalScorer struct{}

var _ ports.GenreScorer = (*LexicalScorer)(nil)

// NewLexicalScorer constructs a scorer. It is stateless and safe for
// concurrent use.
func NewLexicalScorer() *LexicalScorer {
	return &LexicalScorer{}
}

func (s *LexicalScorer) Score(prompt, genre string) float64 {
	promptTokens := normalizeText(prompt)
	genreTokens := normalizeText(genre)
	if len(promptTokens) == 0 || len(genreTokens) == 0 {
		return 0
	}

	var sum float64
	for _, gt := range genreTokens {
		best := 0.0
		for _, pt := range promptTokens {
			if sim := tokenSimilarity(gt, pt); sim > best {
				best = sim
			}
		}
		sum += best
	}

	return scoreScale * sum / float64(len(genreTokens))
}

func tokenSimilarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	maxLen := max(len([]rune(a)), len([]rune(b)))
	if maxLen == 0 {
		return 1.0
	}

	distance := levenshteinDistance(a, b)
	return 1.0 - float64(distance)/float64(maxLen)
}

func levenshteinDistance(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := 0; j <= len(rb); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 0
			if ra[i-1] != rb[j-1] {
				cost = 1
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		copy(prev, curr)
	}

	return prev[len(rb)]
}
