package playlist

import (
	"fmt"
	"math"

	"github.com/euphonyfm/euphony/internal/models"
	"github.com/euphonyfm/euphony/internal/shared"
)

// DistanceMetric measures dissimilarity between two feature vectors.
// Implementations must be symmetric and non-negative.
type DistanceMetric func(a, b models.FeatureVector) float64

// Euclidean is the straight-line distance in feature space.
func Euclidean(a, b models.FeatureVector) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// Cosine is one minus the cosine similarity of the two vectors. Two vectors
// pointing the same way score 0 regardless of magnitude.
func Cosine(a, b models.FeatureVector) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}

// MetricByName resolves a metric from its CLI/config name.
func MetricByName(name string) (DistanceMetric, error) {
	switch name {
	case "", "euclidean":
		return Euclidean, nil
	case "cosine":
		return Cosine, nil
	default:
		return nil, fmt.Errorf("%w: unknown distance metric %q", shared.ErrInvalidFlag, name)
	}
}
