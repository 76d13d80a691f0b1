package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistanceKM(t *testing.T) {
	manila := Point{Lat: 14.5995, Lng: 120.9842}
	quezon := Point{Lat: 14.6760, Lng: 121.0437}

	d := DistanceKM(manila, quezon)
	assert.InDelta(t, 10.6, d, 0.5)
	assert.InDelta(t, 0, DistanceKM(manila, manila), 1e-9)
}

func TestNearestKM(t *testing.T) {
	_, ok := NearestKM(Point{}, nil)
	assert.False(t, ok)

	d, ok := NearestKM(Point{Lat: 0, Lng: 0}, []Point{{Lat: 0, Lng: 2}, {Lat: 0, Lng: 1}})
	require.True(t, ok)
	assert.InDelta(t, 111.19, d, 0.1)
}

func TestInWater(t *testing.T) {
	assert.True(t, InWater(Point{Lat: 14.55, Lng: 120.80}, DefaultWaterBoxes))
	assert.False(t, InWater(Point{Lat: 14.60, Lng: 121.00}, DefaultWaterBoxes))
}

func TestParseBoxes(t *testing.T) {
	boxes, err := ParseBoxes("1,2,3,4; 10,20,30,40")
	require.NoError(t, err)
	assert.Equal(t, []Box{{1, 2, 3, 4}, {10, 20, 30, 40}}, boxes)

	_, err = ParseBoxes("1,2,3")
	assert.Error(t, err)
	_, err = ParseBoxes("5,2,3,4")
	assert.Error(t, err)
}

func TestGeometryRoundTrip(t *testing.T) {
	raw := `{"type":"LineString","coordinates":[[120.98,14.59],[121.04,14.67]]}`
	b, err := GeoJSONToWKB(raw)
	require.NoError(t, err)
	require.NotEmpty(t, b)

	out, err := WKBToGeoJSON(b)
	require.NoError(t, err)
	assert.JSONEq(t, raw, out)

	km, err := LineLengthKM(b)
	require.NoError(t, err)
	assert.Greater(t, km, 5.0)

	_, err = GeoJSONToWKB(`{"type":"Point","coordinates":[1,2]}`)
	assert.Error(t, err)
}
