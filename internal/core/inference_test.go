package core

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hdb_service/internal/domain/model"
)

// testModelPath is a one-tree regression artifact with the canonical
// schema. The tree splits on Distance_MRT at 1000m: log-price 12.8
// below, 13.1 above, with NaN routed to the low leaf.
const testModelPath = "testdata/lgbm_model.txt"

func TestNewInferenceEngine_LoadsArtifact(t *testing.T) {
	engine, err := NewInferenceEngine(testModelPath)
	require.NoError(t, err)
	require.NotNil(t, engine)
}

func TestNewInferenceEngine_RejectsDriftedSchema(t *testing.T) {
	content, err := os.ReadFile(testModelPath)
	require.NoError(t, err)

	drifted := strings.Replace(string(content), " RPI ", " CPI ", 1)
	path := filepath.Join(t.TempDir(), "drifted.txt")
	require.NoError(t, os.WriteFile(path, []byte(drifted), 0o644))

	_, err = NewInferenceEngine(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CPI")
}

func TestNewInferenceEngine_ArtifactAbsentIsFatal(t *testing.T) {
	_, err := NewInferenceEngine(filepath.Join(t.TempDir(), "nope.txt"))
	assert.Error(t, err)
}

func engineVector() model.FeatureVector {
	return model.FeatureVector{
		FlatType:       3,
		Storey:         10,
		FloorArea:      90,
		RemainingLease: 70.5,
		RPI:            197.9,
		DistanceMRT:    floatPtr(450),
		DistanceMall:   floatPtr(820),
		Within1kmOfPri: boolPtr(true),
		Mature:         true,
	}
}

func TestPredict_AppliesExpm1AndBucketing(t *testing.T) {
	engine, err := NewInferenceEngine(testModelPath)
	require.NoError(t, err)

	// Near MRT: raw score 12.8, expm1 ~= 362216, bucketed to 362000.
	price := engine.Predict(engineVector())
	assert.Equal(t, 362000.0, price)

	// Far from MRT: raw score 13.1, expm1 ~= 488940, bucketed to 489000.
	far := engineVector()
	far.DistanceMRT = floatPtr(2500)
	assert.Equal(t, 489000.0, engine.Predict(far))
}

func TestPredict_Deterministic(t *testing.T) {
	engine, err := NewInferenceEngine(testModelPath)
	require.NoError(t, err)

	v := engineVector()
	first := engine.Predict(v)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, engine.Predict(v))
	}
}

func TestPredict_MissingGeoFeatures(t *testing.T) {
	engine, err := NewInferenceEngine(testModelPath)
	require.NoError(t, err)

	v := engineVector()
	v.DistanceMRT = nil
	v.DistanceMall = nil
	v.Within1kmOfPri = nil

	// A NaN distance takes the tree's missing-value branch; the engine
	// still returns a bucketed price.
	price := engine.Predict(v)
	assert.Equal(t, 362000.0, price)
}

func TestRoundPrice(t *testing.T) {
	tests := []struct {
		raw  float64
		want float64
	}{
		{532430, 532000},
		{532500, 533000}, // half rounds up
		{532499.99, 532000},
		{999, 1000},
		{400, 0},
		{0, 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, roundPrice(tt.raw), "raw %v", tt.raw)
	}
}

func TestArtifactFeatureNames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.txt")
	content := "tree\nversion=v3\nnum_class=1\n" +
		"feature_names=Flat_Type Storey Floor_Area Remaining_Lease RPI Distance_MRT Distance_Mall Within_1km_of_Pri Mature\n" +
		"tree_sizes=100\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	names, err := artifactFeatureNames(path)
	require.NoError(t, err)
	assert.Equal(t, model.FeatureNames, names)
}

func TestArtifactFeatureNames_MissingHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.txt")
	require.NoError(t, os.WriteFile(path, []byte("tree\nversion=v3\n"), 0o644))

	_, err := artifactFeatureNames(path)
	assert.Error(t, err)
}

func TestValidateSchema(t *testing.T) {
	assert.NoError(t, validateSchema(model.FeatureNames))

	// Wrong count.
	assert.Error(t, validateSchema(model.FeatureNames[:8]))

	// Same count, drifted name.
	drifted := append([]string{}, model.FeatureNames...)
	drifted[4] = "CPI"
	err := validateSchema(drifted)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CPI")
}

func TestFeatureVectorRow_UnknownsBecomeNaN(t *testing.T) {
	v := model.FeatureVector{
		FlatType:       3,
		Storey:         10,
		FloorArea:      90,
		RemainingLease: 70.5,
		RPI:            197.9,
		Mature:         true,
	}

	row := v.Row()
	require.Len(t, row, len(model.FeatureNames))
	assert.Equal(t, 3.0, row[0])
	assert.True(t, math.IsNaN(row[5]), "unknown MRT distance")
	assert.True(t, math.IsNaN(row[6]), "unknown mall distance")
	assert.True(t, math.IsNaN(row[7]), "unknown school flag")
	assert.Equal(t, 1.0, row[8])
}

func TestFeatureVectorRow_KnownOptionals(t *testing.T) {
	v := model.FeatureVector{
		DistanceMRT:    floatPtr(450),
		DistanceMall:   floatPtr(820),
		Within1kmOfPri: boolPtr(false),
	}

	row := v.Row()
	assert.Equal(t, 450.0, row[5])
	assert.Equal(t, 820.0, row[6])
	assert.Equal(t, 0.0, row[7])
}
