package nimbus

import "math"

// TokenEstimator approximates the token usage of a prompt, used when
// consuming from a rate limiter before a backend call.
type TokenEstimator interface {
	EstimateTokens(text string) int
}

// SimpleTokenEstimator is a fast character-count approximation with a
// safety margin. It overestimates by design so limits are hit early rather
// than at the provider.
type SimpleTokenEstimator struct {
	SafetyMargin float64
}

// NewSimpleTokenEstimator returns an estimator with a 20% safety margin.
func NewSimpleTokenEstimator() *SimpleTokenEstimator {
	return &SimpleTokenEstimator{SafetyMargin: 1.2}
}

func (e *SimpleTokenEstimator) EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	charCount := len([]rune(text))
	estimate := float64(charCount) / 4.0 * e.SafetyMargin
	return int(math.Ceil(estimate)) + 3
}
