package ports

// GenreScorer scores how well a candidate genre matches a free-text prompt.
// Higher is better; the scale is model-defined but must be consistent across
// candidates so that gap-based truncation is meaningful.
type GenreScorer interface {
	Score(prompt, genre string) float64
}
