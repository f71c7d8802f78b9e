package geo

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// EarthRadiusKm is the mean Earth radius used for great-circle distances.
const EarthRadiusKm = 6371

var ErrOutOfRange = errors.New("coordinate out of range")

// Haversine returns the great-circle distance in km between two lon/lat points.
func Haversine(lon1, lat1, lon2, lat2 float64) float64 {
	toRad := func(x float64) float64 { return x * math.Pi / 180 }

	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusKm * c
}

// ParsePoint parses and range-checks a longitude/latitude pair.
func ParsePoint(lonStr, latStr string) (lon, lat float64, err error) {
	lon, err = strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid lon: %w", err)
	}
	lat, err = strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid lat: %w", err)
	}
	if math.IsNaN(lon) || lon < -180 || lon > 180 {
		return 0, 0, fmt.Errorf("longitude %v not in [-180, 180]: %w", lon, ErrOutOfRange)
	}
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return 0, 0, fmt.Errorf("latitude %v not in [-90, 90]: %w", lat, ErrOutOfRange)
	}
	return lon, lat, nil
}
