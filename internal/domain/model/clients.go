package model

import "context"

// Geocoder resolves a free-text address to a coordinate. The second
// return value is false when the address could not be resolved; both
// upstream failures and empty result sets are folded into it, so a
// prediction degrades instead of aborting.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (Coordinate, bool)
}

// RouteClient returns the walking distance between two coordinates in
// meters, or nil when the routing service failed. The model tolerates
// missing distances, so failures are soft.
type RouteClient interface {
	WalkingDistance(ctx context.Context, origin, dest Coordinate) *float64
}

// FeatureLookup is the read side of the precomputed address-feature
// table. Keys are normalized addresses.
type FeatureLookup interface {
	Lookup(address string) (AddressFeatures, bool)
}

// Predictor runs the trained regression model on one assembled feature
// vector and returns the final price in SGD.
type Predictor interface {
	Predict(v FeatureVector) float64
}
