package core

import (
	"context"

	"go.uber.org/zap"

	"hdb_service/internal/domain/model"
)

// FeatureResolver turns an address into its location features. It
// consults the precomputed table first and only falls back to live
// geocode/routing calls on a miss. It never fails: an unresolvable
// address yields a record with every field unknown, trading precision
// for availability.
type FeatureResolver struct {
	table    model.FeatureLookup
	geocoder model.Geocoder
	router   model.RouteClient
	mrts     []model.ReferencePoint
	malls    []model.ReferencePoint
	schools  []model.ReferencePoint
	log      *zap.Logger
}

func NewFeatureResolver(
	table model.FeatureLookup,
	geocoder model.Geocoder,
	router model.RouteClient,
	mrts, malls, schools []model.ReferencePoint,
	log *zap.Logger,
) *FeatureResolver {
	return &FeatureResolver{
		table:    table,
		geocoder: geocoder,
		router:   router,
		mrts:     mrts,
		malls:    malls,
		schools:  schools,
		log:      log,
	}
}

// Resolve returns the address's feature record. Records computed on a
// table miss are not written back to the table; the table stays
// immutable for the process lifetime.
func (r *FeatureResolver) Resolve(ctx context.Context, address string) model.AddressFeatures {
	normalized := model.NormalizeAddress(address)

	if r.table != nil {
		if features, ok := r.table.Lookup(normalized); ok {
			return features
		}
	}

	point, ok := r.geocoder.Geocode(ctx, normalized)
	if !ok {
		// Distances from the sentinel coordinate would be nonsense,
		// so every field stays unknown.
		r.log.Warn("address not geocodable, using unknown features",
			zap.String("address", normalized))
		return model.AddressFeatures{}
	}

	features := model.AddressFeatures{}

	mrt, _, _ := Nearest(point, r.mrts)
	features.DistanceMRT = r.router.WalkingDistance(ctx, point, mrt.Coordinate)

	mall, _, _ := Nearest(point, r.malls)
	features.DistanceMall = r.router.WalkingDistance(ctx, point, mall.Coordinate)

	_, _, within := Nearest(point, r.schools)
	features.Within1kmOfPri = within

	return features
}
