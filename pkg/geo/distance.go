package geo

import "math"

const EarthRadiusKm = 6371.0

func degreesToRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}

// HaversineKm returns the great-circle distance between two points in kilometers.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := degreesToRadians(lat1)
	lat2Rad := degreesToRadians(lat2)
	deltaLat := lat2Rad - lat1Rad
	deltaLon := degreesToRadians(lon2 - lon1)

	a := math.Pow(math.Sin(deltaLat/2), 2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Pow(math.Sin(deltaLon/2), 2)

	return EarthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// TravelMinutes converts a distance into minutes at the given average speed.
func TravelMinutes(distanceKm, avgSpeedKmh float64) float64 {
	if avgSpeedKmh <= 0 {
		return 0
	}
	return distanceKm / avgSpeedKmh * 60
}

// Midpoint is a planar midpoint, good enough for city-scale routes.
func Midpoint(lat1, lon1, lat2, lon2 float64) (float64, float64) {
	return (lat1 + lat2) / 2, (lon1 + lon2) / 2
}

// OffsetNorthKm moves a latitude north by km kilometers.
func OffsetNorthKm(lat, km float64) float64 {
	return lat + km/EarthRadiusKm*180/math.Pi
}
