package core

import (
	"context"

	"hdb_service/internal/domain/model"
)

type fakeGeocoder struct {
	coord model.Coordinate
	ok    bool
	calls int
}

func (g *fakeGeocoder) Geocode(ctx context.Context, address string) (model.Coordinate, bool) {
	g.calls++
	return g.coord, g.ok
}

type fakeRouter struct {
	distance *float64
	calls    int
}

func (r *fakeRouter) WalkingDistance(ctx context.Context, origin, dest model.Coordinate) *float64 {
	r.calls++
	return r.distance
}

type fakeTable struct {
	records map[string]model.AddressFeatures
	calls   int
}

func (t *fakeTable) Lookup(address string) (model.AddressFeatures, bool) {
	t.calls++
	features, ok := t.records[address]
	return features, ok
}

type fakePredictor struct {
	price  float64
	vector model.FeatureVector
	calls  int
}

func (p *fakePredictor) Predict(v model.FeatureVector) float64 {
	p.calls++
	p.vector = v
	return p.price
}

func floatPtr(v float64) *float64 { return &v }

func boolPtr(v bool) *bool { return &v }
