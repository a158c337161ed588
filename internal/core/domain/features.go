package domain

// Audio feature names understood by the catalog's recommendation query. The
// vocabulary is fixed; every feature vector is keyed by these names plus
// FeaturePopularity.
const (
	FeatureAcousticness     = "acousticness"
	FeatureDanceability     = "danceability"
	FeatureEnergy           = "energy"
	FeatureInstrumentalness = "instrumentalness"
	FeatureKey              = "key"
	FeatureLiveness         = "liveness"
	FeatureLoudness         = "loudness"
	FeatureMode             = "mode"
	FeatureSpeechiness      = "speechiness"
	FeatureTempo            = "tempo"
	FeatureTimeSignature    = "time_signature"
	FeatureValence          = "valence"

	FeaturePopularity = "popularity"
)

// FeatureNames lists the audio feature vocabulary in a stable order, without
// the popularity entry.
func FeatureNames() []string {
	return []string{
		FeatureAcousticness,
		FeatureDanceability,
		FeatureEnergy,
		FeatureInstrumentalness,
		FeatureKey,
		FeatureLiveness,
		FeatureLoudness,
		FeatureMode,
		FeatureSpeechiness,
		FeatureTempo,
		FeatureTimeSignature,
		FeatureValence,
	}
}

// IsFeatureName reports whether name belongs to the audio feature vocabulary
// (popularity excluded).
func IsFeatureName(name string) bool {
	switch name {
	case FeatureAcousticness, FeatureDanceability, FeatureEnergy,
		FeatureInstrumentalness, FeatureKey, FeatureLiveness,
		FeatureLoudness, FeatureMode, FeatureSpeechiness,
		FeatureTempo, FeatureTimeSignature, FeatureValence:
		return true
	}
	return false
}

// AudioFeatureVector maps feature names to numeric target values used to steer
// the recommendation query.
type AudioFeatureVector map[string]float64

// MeanFeatureVector averages the given vectors key-wise over the feature
// vocabulary. Keys absent from a vector do not contribute to that key's mean.
// Returns nil when no vector carries any known feature.
func MeanFeatureVector(vectors []AudioFeatureVector) AudioFeatureVector {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, v := range vectors {
		for _, name := range FeatureNames() {
			value, ok := v[name]
			if !ok {
				continue
			}
			sums[name] += value
			counts[name]++
		}
	}
	if len(counts) == 0 {
		return nil
	}

	mean := make(AudioFeatureVector, len(counts))
	for name, sum := range sums {
		mean[name] = sum / float64(counts[name])
	}
	return mean
}
