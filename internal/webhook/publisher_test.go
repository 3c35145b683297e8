package webhook

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/shenikar/fleet_location_core/internal/models"
)

func TestNewGeofenceWebhookEvent(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	e := &models.GeofenceEvent{
		ID:         uuid.New(),
		GeofenceID: uuid.New(),
		EntityID:   "truck-7",
		EntityType: models.EntityVehicle,
		EventType:  models.GeofenceExit,
		Latitude:   34.05,
		Longitude:  -118.24,
		Timestamp:  ts,
		Metadata:   map[string]any{"geofence_name": "Yard"},
	}

	got := NewGeofenceWebhookEvent(e, ts.Add(time.Second))

	assert.Equal(t, EventTypeGeofence, got.Type)
	assert.Equal(t, e.ID.String(), got.EventID)
	assert.Equal(t, e.GeofenceID.String(), got.GeofenceID)
	assert.Equal(t, models.GeofenceExit, got.EventType)
	assert.Equal(t, ts, got.Timestamp)
	assert.Equal(t, "Yard", got.Metadata["geofence_name"])
}
