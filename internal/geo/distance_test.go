package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceKmSamePoint(t *testing.T) {
	assert.Equal(t, 0.0, DistanceKm(-33.4489, -70.6693, -33.4489, -70.6693))
}

func TestDistanceKmSymmetric(t *testing.T) {
	a := DistanceKm(-33.4489, -70.6693, -33.4006, -70.6075)
	b := DistanceKm(-33.4006, -70.6075, -33.4489, -70.6693)
	assert.InDelta(t, a, b, 1e-9)
}

func TestDistanceKmKnownDistance(t *testing.T) {
	// Santiago to Valparaíso is roughly 100 km in a straight line.
	d := DistanceKm(-33.4489, -70.6693, -33.0472, -71.6127)
	assert.InDelta(t, 98, d, 8)
}

func TestDistanceKmShortHop(t *testing.T) {
	// Parque Bicentenario to Ciclovía Providencia, a few km apart.
	d := DistanceKm(-33.4006, -70.6075, -33.4251, -70.6159)
	assert.Greater(t, d, 1.0)
	assert.Less(t, d, 5.0)
}
