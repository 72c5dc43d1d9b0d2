package model

import (
	"math"
	"strings"
)

// Coordinate is a WGS84 latitude/longitude pair.
type Coordinate struct {
	Lat  float64 `json:"lat"`
	Long float64 `json:"long"`
}

// IsZero reports whether c is the (0,0) sentinel returned by a failed
// geocode lookup. Callers must treat it as "not found", never as a real
// location.
func (c Coordinate) IsZero() bool {
	return c.Lat == 0 && c.Long == 0
}

// ReferencePoint is a named member of one of the fixed reference sets
// (MRT stations, malls, oversubscribed primary schools). Reference sets
// are loaded once at startup and never mutated.
type ReferencePoint struct {
	Name string
	Coordinate
}

// AddressFeatures holds the location-derived features for one address.
// Nil fields mean "unknown": routing failed, or the address could not be
// geocoded. Unknown is distinct from zero and from false.
type AddressFeatures struct {
	DistanceMRT    *float64 `json:"distance_mrt"`
	DistanceMall   *float64 `json:"distance_mall"`
	Within1kmOfPri *bool    `json:"within_1km_of_pri"`
}

// PredictionInput carries the user-supplied attributes of one flat.
type PredictionInput struct {
	FlatType       string
	Storey         int
	FloorArea      float64
	RemainingLease float64
	RPI            float64
	Address        string
	Town           string
}

// FeatureNames is the schema the model was trained on, in training
// column order. The assembled feature vector must match it exactly;
// the inference engine checks the model artifact against this list at
// startup.
var FeatureNames = []string{
	"Flat_Type",
	"Storey",
	"Floor_Area",
	"Remaining_Lease",
	"RPI",
	"Distance_MRT",
	"Distance_Mall",
	"Within_1km_of_Pri",
	"Mature",
}

// FeatureVector is the full feature set in the model's schema.
type FeatureVector struct {
	FlatType       int
	Storey         int
	FloorArea      float64
	RemainingLease float64
	RPI            float64
	DistanceMRT    *float64
	DistanceMall   *float64
	Within1kmOfPri *bool
	Mature         bool
}

// Row flattens the vector into the numeric row the model consumes, in
// FeatureNames order. Unknown optional features become NaN, which
// LightGBM treats as a missing value.
func (v FeatureVector) Row() []float64 {
	return []float64{
		float64(v.FlatType),
		float64(v.Storey),
		v.FloorArea,
		v.RemainingLease,
		v.RPI,
		optFloat(v.DistanceMRT),
		optFloat(v.DistanceMall),
		optBool(v.Within1kmOfPri),
		boolToFloat(v.Mature),
	}
}

func optFloat(f *float64) float64 {
	if f == nil {
		return math.NaN()
	}
	return *f
}

func optBool(b *bool) float64 {
	if b == nil {
		return math.NaN()
	}
	return boolToFloat(*b)
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// NormalizeAddress canonicalizes an address for feature-table lookups.
// The same normalization is applied when the precomputed table is
// loaded, so the two sides cannot drift apart.
func NormalizeAddress(address string) string {
	s := strings.ToUpper(address)
	s = strings.ReplaceAll(s, "BLOCK", "")
	s = strings.ReplaceAll(s, "BLK", "")
	return strings.TrimSpace(s)
}
