package geo

import (
	"math"

	"github.com/umahmood/haversine"
)

// EarthRadiusKm is the mean Earth radius used by every distance in this package.
const EarthRadiusKm = 6371.0

// kmPerDegree is the arc length of one degree on the EarthRadiusKm sphere.
const kmPerDegree = EarthRadiusKm * math.Pi / 180

// DistanceKm returns the haversine great-circle distance between a and b.
// Inputs are not validated; NaN or Inf propagate into the result.
func DistanceKm(a, b Coordinate) float64 {
	_, km := haversine.Distance(
		haversine.Coord{Lat: a.Lat, Lon: a.Lng},
		haversine.Coord{Lat: b.Lat, Lon: b.Lng},
	)
	return km
}

// Destination returns the point reached by travelling km along the initial
// bearing (degrees clockwise from north) from origin.
func Destination(origin Coordinate, bearingDeg, km float64) Coordinate {
	delta := km / EarthRadiusKm
	theta := toRadians(bearingDeg)
	phi1 := toRadians(origin.Lat)
	lambda1 := toRadians(origin.Lng)

	phi2 := math.Asin(math.Sin(phi1)*math.Cos(delta) +
		math.Cos(phi1)*math.Sin(delta)*math.Cos(theta))
	lambda2 := lambda1 + math.Atan2(
		math.Sin(theta)*math.Sin(delta)*math.Cos(phi1),
		math.Cos(delta)-math.Sin(phi1)*math.Sin(phi2),
	)

	lng := toDegrees(lambda2)
	// normalise to [-180, 180)
	lng = math.Mod(lng+540, 360) - 180
	return Coordinate{Lat: toDegrees(phi2), Lng: lng}
}

// DegreesForKm returns the latitude and longitude spans (degrees) that fully
// contain a circle of radius km around center. The longitude span is 180 when
// the circle reaches a pole.
func DegreesForKm(center Coordinate, km float64) (dLat, dLng float64) {
	dLat = km / kmPerDegree
	edge := math.Abs(center.Lat) + dLat
	if edge >= 90 {
		return dLat, 180
	}
	dLng = dLat / math.Cos(toRadians(edge))
	if dLng > 180 {
		dLng = 180
	}
	return dLat, dLng
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

func toDegrees(rad float64) float64 {
	return rad * 180.0 / math.Pi
}
