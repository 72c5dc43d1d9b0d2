package core

import (
	"math"

	"hdb_service/internal/domain/model"
)

// SchoolRadiusKm is the radius of the oversubscribed-primary-school
// proximity check.
const SchoolRadiusKm = 1.0

// Nearest scans candidates for the reference point closest to p by
// great-circle distance. Ties keep the first minimum in load order.
// The returned flag reports whether the nearest point lies within
// SchoolRadiusKm; it is nil when the minimum distance is exactly zero,
// because a coinciding candidate almost always means the query
// coordinate itself is degenerate.
func Nearest(p model.Coordinate, candidates []model.ReferencePoint) (model.ReferencePoint, float64, *bool) {
	if len(candidates) == 0 {
		return model.ReferencePoint{}, math.Inf(1), nil
	}

	nearest := candidates[0]
	minDist := haversine(p.Lat, p.Long, nearest.Lat, nearest.Long)
	for _, ref := range candidates[1:] {
		dist := haversine(p.Lat, p.Long, ref.Lat, ref.Long)
		if dist < minDist {
			minDist = dist
			nearest = ref
		}
	}

	if minDist == 0 {
		return nearest, minDist, nil
	}
	within := minDist <= SchoolRadiusKm
	return nearest, minDist, &within
}

// haversine returns the great-circle distance between two coordinates
// in kilometers.
func haversine(lat1, lon1, lat2, lon2 float64) float64 {
	const R = 6371 // Earth radius in km
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return R * c
}
