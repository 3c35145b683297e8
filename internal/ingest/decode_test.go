package ingest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shenikar/fleet_location_core/internal/models"
)

func TestDecodePositionMessage_Defaults(t *testing.T) {
	data := []byte(`{"entity_id":"d1","entity_type":"driver","latitude":34.05,"longitude":-118.24}`)

	u, err := DecodePositionMessage(data, models.SourceMobileApp)

	require.NoError(t, err)
	assert.Equal(t, "d1", u.EntityID)
	assert.Equal(t, models.EntityDriver, u.EntityType)
	assert.Equal(t, models.SourceMobileApp, u.Source)
	assert.Nil(t, u.Timestamp)
	assert.Nil(t, u.Speed)
}

func TestDecodePositionMessage_Timestamps(t *testing.T) {
	want := time.Date(2026, 3, 1, 12, 0, 0, 500_000_000, time.UTC)
	tests := []struct {
		name string
		ts   string
	}{
		{"rfc3339", `"2026-03-01T12:00:00.5Z"`},
		{"unix seconds", `1772366400.5`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := []byte(`{"entity_id":"v1","entity_type":"vehicle","latitude":1,"longitude":2,"source":"eld","timestamp":` + tt.ts + `}`)

			u, err := DecodePositionMessage(data, models.SourceMobileApp)

			require.NoError(t, err)
			require.NotNil(t, u.Timestamp)
			assert.True(t, want.Equal(*u.Timestamp), "got %s", u.Timestamp)
			assert.Equal(t, models.SourceELD, u.Source)
		})
	}
}

func TestDecodePositionMessage_Rejects(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `{"entity_id":`},
		{"missing latitude", `{"entity_id":"d1","entity_type":"driver","longitude":2}`},
		{"latitude out of range", `{"entity_id":"d1","entity_type":"driver","latitude":91,"longitude":2}`},
		{"unknown type", `{"entity_id":"d1","entity_type":"boat","latitude":1,"longitude":2}`},
		{"bad timestamp", `{"entity_id":"d1","entity_type":"driver","latitude":1,"longitude":2,"timestamp":"yesterday"}`},
		{"bad source", `{"entity_id":"d1","entity_type":"driver","latitude":1,"longitude":2,"source":"pigeon"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodePositionMessage([]byte(tt.data), models.SourceMobileApp)

			assert.ErrorIs(t, err, models.ErrValidation)
		})
	}
}

func TestRefFromTopic(t *testing.T) {
	assert.Equal(t, models.EntityRef{EntityID: "v-7", EntityType: models.EntityVehicle}, refFromTopic("fleet/vehicle/v-7/position"))
	assert.Equal(t, models.EntityRef{}, refFromTopic("fleet/vehicle/v-7/status"))
	assert.Equal(t, models.EntityRef{}, refFromTopic("other"))
}
