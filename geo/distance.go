package geo

import "math"

// earthRadiusMeters is the mean Earth radius used for the spherical
// approximation. No ellipsoidal correction is applied; admission radii are
// tens of metres, where the error is negligible.
const earthRadiusMeters = 6371000.0

// Coordinates is a WGS84 lat/lon pair in decimal degrees.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// DistanceMeters returns the great-circle distance between two points using
// the haversine formula.
func DistanceMeters(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

// Distance is DistanceMeters over Coordinates values.
func Distance(from, to Coordinates) float64 {
	return DistanceMeters(from.Latitude, from.Longitude, to.Latitude, to.Longitude)
}
