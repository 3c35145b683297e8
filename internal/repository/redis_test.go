package repository

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shenikar/fleet_location_core/internal/geo"
	"github.com/shenikar/fleet_location_core/internal/models"
)

func TestRedisKeys(t *testing.T) {
	ref := models.EntityRef{EntityID: "v42", EntityType: models.EntityVehicle}
	gid := uuid.MustParse("6f1c2a9e-3b7d-4c1e-9a0f-2d5b8e7c4a10")

	assert.Equal(t, "position:vehicle:v42", positionKey("v42", models.EntityVehicle))
	assert.Equal(t, "geofence_state:vehicle:v42:6f1c2a9e-3b7d-4c1e-9a0f-2d5b8e7c4a10", stateKey(ref, gid))
	assert.Equal(t, "geofence_inside:vehicle:v42", insideKey(ref))
	assert.Equal(t, "driver_behavior:v42", driverBehaviorKey("v42"))
}

func TestETAKey_RoundsDestination(t *testing.T) {
	ref := models.EntityRef{EntityID: "d1", EntityType: models.EntityDriver}

	a := etaKey(ref, geo.LatLng{Lat: 34.05012, Lon: -118.24049}, false)
	b := etaKey(ref, geo.LatLng{Lat: 34.04981, Lon: -118.24021}, false)

	assert.Equal(t, "eta:driver:d1:34.050:-118.240:direct", a)
	assert.Equal(t, a, b)
	assert.Equal(t, "eta:driver:d1:34.050:-118.240:route", etaKey(ref, geo.LatLng{Lat: 34.05, Lon: -118.24}, true))
	assert.Contains(t, a, etaKeyPrefix(ref))
}

func TestParseBehaviorFactor(t *testing.T) {
	f, err := parseBehaviorFactor("1.15")
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, 1.15, *f)

	f, err = parseBehaviorFactor("0")
	require.NoError(t, err)
	assert.Nil(t, f)

	_, err = parseBehaviorFactor("fast")
	assert.Error(t, err)
}

func TestParseGeofenceIDs_SkipsGarbage(t *testing.T) {
	id := uuid.New()

	ids := parseGeofenceIDs([]string{id.String(), "garbage"})

	assert.Equal(t, []uuid.UUID{id}, ids)
}

func TestCachedIsNewer_OutOfOrderSet(t *testing.T) {
	t1 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Second)
	older := &models.Position{EntityID: "d1", EntityType: models.EntityDriver, Timestamp: t1}
	newer := &models.Position{EntityID: "d1", EntityType: models.EntityDriver, Timestamp: t2}

	// Запись B(t2) успела раньше A(t1): A не должна затереть B
	assert.True(t, cachedIsNewer(newer, older))
	assert.False(t, cachedIsNewer(older, newer))
	// Равное время перезаписывает
	assert.False(t, cachedIsNewer(newer, &models.Position{Timestamp: t2}))
}
