package geo

import (
	"encoding/binary"
	"fmt"

	"github.com/twpayne/go-geom"
	gjson "github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-geom/encoding/wkb"
)

// GeoJSONToWKB parses a GeoJSON LineString and returns WKB bytes. An empty
// string yields nil.
func GeoJSONToWKB(raw string) ([]byte, error) {
	if raw == "" {
		return nil, nil
	}
	var g geom.T
	if err := gjson.Unmarshal([]byte(raw), &g); err != nil {
		return nil, err
	}
	if _, ok := g.(*geom.LineString); !ok {
		return nil, fmt.Errorf("geometry must be a LineString, got %T", g)
	}
	return wkb.Marshal(g, binary.LittleEndian)
}

// WKBToGeoJSON converts stored WKB back into a GeoJSON string.
func WKBToGeoJSON(b []byte) (string, error) {
	if len(b) == 0 {
		return "", nil
	}
	g, err := wkb.Unmarshal(b)
	if err != nil {
		return "", err
	}
	out, err := gjson.Marshal(g)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// LineLengthKM sums the haversine length of a stored LineString.
func LineLengthKM(b []byte) (float64, error) {
	if len(b) == 0 {
		return 0, nil
	}
	g, err := wkb.Unmarshal(b)
	if err != nil {
		return 0, err
	}
	ls, ok := g.(*geom.LineString)
	if !ok {
		return 0, fmt.Errorf("geometry must be a LineString, got %T", g)
	}
	var total float64
	for i := 1; i < ls.NumCoords(); i++ {
		prev, cur := ls.Coord(i-1), ls.Coord(i)
		total += DistanceKM(Point{Lat: prev.Y(), Lng: prev.X()}, Point{Lat: cur.Y(), Lng: cur.X()})
	}
	return total, nil
}
