// Package geo implements great-circle distance and search-area helpers on a spherical Earth.
package geo

import "math"

// EarthRadiusMeters is the mean Earth radius (IUGG).
const EarthRadiusMeters = 6371008.8

// boxPaddingDegrees widens bounding boxes so float rounding never drops a point
// that is exactly on the search radius.
const boxPaddingDegrees = 1e-9

// Point is a coordinate in decimal degrees.
type Point struct {
	Latitude  float64
	Longitude float64
}

// Valid reports whether p is inside the latitude/longitude ranges.
func (p Point) Valid() bool {
	return p.Latitude >= -90 && p.Latitude <= 90 && p.Longitude >= -180 && p.Longitude <= 180
}

// Distance returns the haversine distance between a and b in meters.
func Distance(a, b Point) float64 {
	lat1 := toRadians(a.Latitude)
	lat2 := toRadians(b.Latitude)
	dLat := lat2 - lat1
	dLon := toRadians(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	h = math.Min(1, h)

	return 2 * EarthRadiusMeters * math.Asin(math.Sqrt(h))
}

// Box is a latitude/longitude rectangle that contains every point within a
// radius of its center. When WrapsAntimeridian is set the longitude range is
// MinLongitude..180 plus -180..MaxLongitude.
type Box struct {
	MinLatitude       float64
	MaxLatitude       float64
	MinLongitude      float64
	MaxLongitude      float64
	WrapsAntimeridian bool
}

// BoundingBox returns the smallest box enclosing the circle of radiusMeters
// around center.
func BoundingBox(center Point, radiusMeters float64) Box {
	angular := radiusMeters / EarthRadiusMeters
	if angular >= math.Pi {
		return Box{MinLatitude: -90, MaxLatitude: 90, MinLongitude: -180, MaxLongitude: 180}
	}

	lat := toRadians(center.Latitude)
	lon := toRadians(center.Longitude)

	minLat := lat - angular
	maxLat := lat + angular

	var minLon, maxLon float64
	wraps := false
	if minLat > -math.Pi/2 && maxLat < math.Pi/2 {
		dLon := math.Asin(math.Min(1, math.Sin(angular)/math.Cos(lat)))
		minLon = lon - dLon
		maxLon = lon + dLon
		if minLon < -math.Pi {
			minLon += 2 * math.Pi
			wraps = true
		}
		if maxLon > math.Pi {
			maxLon -= 2 * math.Pi
			wraps = true
		}
	} else {
		// A pole is inside the circle: every longitude qualifies.
		minLat = math.Max(minLat, -math.Pi/2)
		maxLat = math.Min(maxLat, math.Pi/2)
		minLon = -math.Pi
		maxLon = math.Pi
	}

	box := Box{
		MinLatitude:       math.Max(-90, toDegrees(minLat)-boxPaddingDegrees),
		MaxLatitude:       math.Min(90, toDegrees(maxLat)+boxPaddingDegrees),
		MinLongitude:      math.Max(-180, toDegrees(minLon)-boxPaddingDegrees),
		MaxLongitude:      math.Min(180, toDegrees(maxLon)+boxPaddingDegrees),
		WrapsAntimeridian: wraps,
	}
	if wraps && box.MinLongitude <= box.MaxLongitude {
		// The circle reaches all the way around.
		box.MinLongitude, box.MaxLongitude, box.WrapsAntimeridian = -180, 180, false
	}
	return box
}

// Contains reports whether p lies inside the box.
func (b Box) Contains(p Point) bool {
	if p.Latitude < b.MinLatitude || p.Latitude > b.MaxLatitude {
		return false
	}
	if b.WrapsAntimeridian {
		return p.Longitude >= b.MinLongitude || p.Longitude <= b.MaxLongitude
	}
	return p.Longitude >= b.MinLongitude && p.Longitude <= b.MaxLongitude
}

func toRadians(deg float64) float64 { return deg * math.Pi / 180 }

func toDegrees(rad float64) float64 { return rad * 180 / math.Pi }
