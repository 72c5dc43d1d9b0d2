package core

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/dmitryikh/leaves"

	"hdb_service/internal/domain/model"
)

// priceBucket is the granularity predictions are rounded to. The model
// is not precise enough to warrant finer output, and the bucketing
// signals that the number is an estimate.
const priceBucket = 1000.0

// InferenceEngine wraps the trained LightGBM ensemble. It is loaded
// once at startup and safe for concurrent use.
type InferenceEngine struct {
	ensemble *leaves.Ensemble
}

// NewInferenceEngine loads the model artifact and validates its feature
// schema against model.FeatureNames. Any mismatch is fatal: a drifted
// schema would not fail at predict time, it would silently mispredict.
func NewInferenceEngine(modelPath string) (*InferenceEngine, error) {
	ensemble, err := leaves.LGEnsembleFromFile(modelPath, true)
	if err != nil {
		return nil, fmt.Errorf("failed to load model from %s: %w", modelPath, err)
	}

	names, err := artifactFeatureNames(modelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read model feature names: %w", err)
	}
	if err := validateSchema(names); err != nil {
		return nil, err
	}

	return &InferenceEngine{ensemble: ensemble}, nil
}

// Predict runs the model on a single feature vector and de-transforms
// the output. The model was fit on a log1p-transformed price, so the
// raw score is inverted with expm1 before bucketing. Deterministic for
// a fixed artifact.
func (e *InferenceEngine) Predict(v model.FeatureVector) float64 {
	// nEstimators 0 means every saved tree; an early-stopped artifact
	// only contains trees up to the best iteration.
	logPrice := e.ensemble.PredictSingle(v.Row(), 0)
	return roundPrice(math.Expm1(logPrice))
}

// roundPrice buckets a raw price to the nearest thousand, half away
// from zero.
func roundPrice(raw float64) float64 {
	return math.Round(raw/priceBucket) * priceBucket
}

// artifactFeatureNames extracts the feature_names header from a
// LightGBM text model file.
func artifactFeatureNames(modelPath string) ([]string, error) {
	f, err := os.Open(modelPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if rest, ok := strings.CutPrefix(line, "feature_names="); ok {
			return strings.Fields(rest), nil
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("no feature_names header in model file")
}

func validateSchema(names []string) error {
	if len(names) != len(model.FeatureNames) {
		return fmt.Errorf("model expects %d features, service assembles %d", len(names), len(model.FeatureNames))
	}
	for i, name := range model.FeatureNames {
		if names[i] != name {
			return fmt.Errorf("feature schema mismatch at position %d: model has %q, service assembles %q", i, names[i], name)
		}
	}
	return nil
}
