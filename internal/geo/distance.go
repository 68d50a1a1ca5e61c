// Package geo holds the one distance primitive the rest of the service uses.
// Distance logic must never be reimplemented elsewhere.
package geo

import (
	"math"

	"github.com/riverwatch/go-flood-routes/internal/models"
)

// EarthRadiusKm is the mean radius of a spherical-earth model.
const EarthRadiusKm = 6371.0

// KmPerDegreeLat approximates kilometers per degree of latitude. Used to turn
// a radius into a bounding box for area queries; it is a deliberate cheap
// filter, tightened by exact haversine distance afterwards.
const KmPerDegreeLat = 111.0

// DistanceKm returns the great-circle distance between two points using the
// haversine formula.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := degToRad(lat2 - lat1)
	dLon := degToRad(lon2 - lon1)

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)

	a := sinLat*sinLat +
		math.Cos(degToRad(lat1))*math.Cos(degToRad(lat2))*sinLon*sinLon
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

// Between is DistanceKm over coordinate values.
func Between(a, b models.Coordinate) float64 {
	return DistanceKm(a.Latitude, a.Longitude, b.Latitude, b.Longitude)
}

// BoundingDegrees converts a km radius at the given latitude into latitude
// and longitude half-spans in degrees. The longitude span widens toward the
// poles; latitude 90 would divide by zero, so the cosine is floored.
func BoundingDegrees(lat, radiusKm float64) (dLat, dLon float64) {
	dLat = radiusKm / KmPerDegreeLat
	cos := math.Cos(degToRad(lat))
	if cos < 0.01 {
		cos = 0.01
	}
	dLon = radiusKm / (KmPerDegreeLat * cos)
	return dLat, dLon
}

func degToRad(deg float64) float64 {
	return deg * (math.Pi / 180.0)
}
