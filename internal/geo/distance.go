// Package geo holds the distance math used by the rental vicinity check and
// the route geometry codec.
package geo

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const earthRadiusKM = 6371.0

// Point is a WGS84 coordinate in degrees.
type Point struct {
	Lat float64
	Lng float64
}

func (p Point) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// DistanceKM is the haversine great-circle distance between two points.
func DistanceKM(a, b Point) float64 {
	dLat := toRadians(b.Lat - a.Lat)
	dLon := toRadians(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(a.Lat))*math.Cos(toRadians(b.Lat))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKM * c
}

// NearestKM returns the distance from p to the closest candidate, or false
// when there are no candidates.
func NearestKM(p Point, candidates []Point) (float64, bool) {
	if len(candidates) == 0 {
		return 0, false
	}
	best := math.Inf(1)
	for _, c := range candidates {
		if d := DistanceKM(p, c); d < best {
			best = d
		}
	}
	return best, true
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Box is a latitude/longitude rectangle.
type Box struct {
	MinLat, MinLng, MaxLat, MaxLng float64
}

func (b Box) Contains(p Point) bool {
	return p.Lat >= b.MinLat && p.Lat <= b.MaxLat && p.Lng >= b.MinLng && p.Lng <= b.MaxLng
}

// DefaultWaterBoxes roughly covers Manila Bay and Laguna de Bay, the two
// bodies of water inside the service area.
var DefaultWaterBoxes = []Box{
	{MinLat: 14.38, MinLng: 120.62, MaxLat: 14.72, MaxLng: 120.93},
	{MinLat: 14.18, MinLng: 121.12, MaxLat: 14.52, MaxLng: 121.45},
}

// InWater is a crude check that p falls inside one of the boxes.
func InWater(p Point, boxes []Box) bool {
	for _, b := range boxes {
		if b.Contains(p) {
			return true
		}
	}
	return false
}

// ParseBoxes reads "minLat,minLng,maxLat,maxLng;..." into boxes.
func ParseBoxes(raw string) ([]Box, error) {
	var boxes []Box
	for _, part := range strings.Split(raw, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		fields := strings.Split(part, ",")
		if len(fields) != 4 {
			return nil, fmt.Errorf("box %q: want 4 numbers", part)
		}
		var v [4]float64
		for i, f := range fields {
			n, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
			if err != nil {
				return nil, fmt.Errorf("box %q: %w", part, err)
			}
			v[i] = n
		}
		if v[0] > v[2] || v[1] > v[3] {
			return nil, fmt.Errorf("box %q: min exceeds max", part)
		}
		boxes = append(boxes, Box{MinLat: v[0], MinLng: v[1], MaxLat: v[2], MaxLng: v[3]})
	}
	return boxes, nil
}
