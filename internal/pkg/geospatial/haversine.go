// Package geospatial holds the small amount of spherical math the issue
// search needs; PostGIS does the heavy lifting in SQL.
package geospatial

import "math"

const (
	earthRadiusM    = 6371000.0
	metersPerDegLat = 111320.0
)

// Haversine returns the great-circle distance in meters between two points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	sinLat := math.Sin(toRad(lat2-lat1) / 2)
	sinLon := math.Sin(toRad(lon2-lon1) / 2)
	a := sinLat*sinLat + math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*sinLon*sinLon
	return 2 * earthRadiusM * math.Asin(math.Min(1, math.Sqrt(a)))
}

// BoundingBox returns the lat/lon box enclosing a circle of radiusMeters.
// Latitudes are clamped to the poles; near a pole the box spans every
// longitude.
func BoundingBox(lat, lon, radiusMeters float64) (minLat, minLon, maxLat, maxLon float64) {
	dLat := radiusMeters / metersPerDegLat
	minLat = math.Max(lat-dLat, -90)
	maxLat = math.Min(lat+dLat, 90)

	cos := math.Cos(toRad(lat))
	if cos < 1e-6 || minLat == -90 || maxLat == 90 {
		return minLat, -180, maxLat, 180
	}
	dLon := radiusMeters / (metersPerDegLat * cos)
	return minLat, math.Max(lon-dLon, -180), maxLat, math.Min(lon+dLon, 180)
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
