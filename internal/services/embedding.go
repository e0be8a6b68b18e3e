package services

// EmbeddingDim is the fixed length of a derived embedding vector.
const EmbeddingDim = 12

// Embedding derives the fixed-dimension feature vector from one audio-features
// record. It is a pure function of its input.
//
// The element order and normalization formulas are consumed by a downstream
// similarity-search service and must not change:
//
//	[acousticness, danceability, energy, instrumentalness, key_norm, liveness,
//	 loudness_norm, mode_norm, speechiness, tempo_norm, time_signature_norm, valence]
func Embedding(f *AudioFeatures) []float64 {
	keyNorm := (float64(f.Key) + 1) / 12            // key is -1 (undetected) through 11
	loudnessNorm := clamp01((f.Loudness + 60) / 60) // loudness is roughly -60..0 dB
	modeNorm := float64(f.Mode)                     // already 0 or 1, passed through
	tempoNorm := clamp01(f.Tempo / 250)
	timeSignatureNorm := (float64(f.TimeSignature) - 3) / 4 // 3..7 beats per bar

	return []float64{
		clamp01(f.Acousticness),
		clamp01(f.Danceability),
		clamp01(f.Energy),
		clamp01(f.Instrumentalness),
		keyNorm,
		clamp01(f.Liveness),
		loudnessNorm,
		modeNorm,
		clamp01(f.Speechiness),
		tempoNorm,
		timeSignatureNorm,
		clamp01(f.Valence),
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
