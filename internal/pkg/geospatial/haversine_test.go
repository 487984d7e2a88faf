package geospatial

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversine(t *testing.T) {
	// Shivajinagar to Kothrud, Pune.
	d := Haversine(18.5308, 73.8475, 18.5074, 73.8077)
	assert.InDelta(t, 4937, d, 50)

	assert.Zero(t, Haversine(18.5, 73.8, 18.5, 73.8))
}

func TestBoundingBox(t *testing.T) {
	minLat, minLon, maxLat, maxLon := BoundingBox(18.5, 73.8, 1000)

	assert.Less(t, minLat, 18.5)
	assert.Greater(t, maxLat, 18.5)
	assert.Less(t, minLon, 73.8)
	assert.Greater(t, maxLon, 73.8)
	// A point 1 km north sits on the box edge.
	assert.InDelta(t, 1000, Haversine(18.5, 73.8, maxLat, 73.8), 5)
}

func TestBoundingBoxNearPole(t *testing.T) {
	minLat, minLon, maxLat, maxLon := BoundingBox(89.999, 10, 5000)

	assert.Equal(t, 90.0, maxLat)
	assert.Less(t, minLat, 89.999)
	assert.Equal(t, -180.0, minLon)
	assert.Equal(t, 180.0, maxLon)
}
