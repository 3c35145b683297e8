package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/shenikar/fleet_location_core/internal/config"
	"github.com/shenikar/fleet_location_core/internal/geo"
	"github.com/shenikar/fleet_location_core/internal/models"
	"github.com/shenikar/fleet_location_core/internal/service/mocks"
)

type testMocks struct {
	positions *mocks.MockPositionService
	eta       *mocks.MockETAService
	geofences *mocks.MockGeofenceService
}

type fakeProbe bool

func (p fakeProbe) Ready() bool { return bool(p) }

var withKey = map[string]string{"X-API-Key": "test-api-key"}

// newTestHandler создает новый экземпляр Handler с мокированными сервисами
func newTestHandler(t *testing.T, probes map[string]ReadinessProbe) (*testMocks, *gin.Engine) {
	ctrl := gomock.NewController(t)
	m := &testMocks{
		positions: mocks.NewMockPositionService(ctrl),
		eta:       mocks.NewMockETAService(ctrl),
		geofences: mocks.NewMockGeofenceService(ctrl),
	}

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах

	cfg := &config.Config{
		APIKeys: []string{"test-api-key"},
		Tuning:  config.DefaultTuning(),
	}

	handler := NewHandler(m.positions, m.eta, m.geofences, probes, logger, cfg)

	// Настройка Gin роутера для тестов
	gin.SetMode(gin.TestMode)
	router := gin.New()
	api := router.Group("/api/v1")
	handler.RegisterSystemRoutes(api)
	protected := api.Group("")
	protected.Use(APIKeyAuthMiddleware(cfg, logger))
	handler.RegisterRoutes(protected)

	return m, router
}

// makeRequest - вспомогательная функция для выполнения HTTP-запросов
func makeRequest(router *gin.Engine, method, url string, body io.Reader, headers ...map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, url, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, h := range headers {
		for key, value := range h {
			req.Header.Set(key, value)
		}
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func ptr[T any](v T) *T { return &v }

func samplePosition() *models.Position {
	return &models.Position{
		EntityID:   "truck-1",
		EntityType: models.EntityVehicle,
		Latitude:   34.05,
		Longitude:  -118.24,
		Speed:      60,
		Source:     models.SourceGPSDevice,
		Timestamp:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestUpdatePosition_Success(t *testing.T) {
	m, router := newTestHandler(t, nil)
	pos := samplePosition()
	event := &models.GeofenceEvent{
		ID:         uuid.New(),
		GeofenceID: uuid.New(),
		EntityID:   pos.EntityID,
		EntityType: pos.EntityType,
		EventType:  models.GeofenceEnter,
		Timestamp:  pos.Timestamp,
	}

	m.positions.EXPECT().
		UpdatePosition(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, u *models.PositionUpdate) (*models.PositionUpdateResult, error) {
			assert.Equal(t, "truck-1", u.EntityID)
			assert.Equal(t, models.SourceGPSDevice, u.Source)
			require.NotNil(t, u.Latitude)
			assert.Equal(t, 34.05, *u.Latitude)
			return &models.PositionUpdateResult{Position: pos, Archived: true, Events: []*models.GeofenceEvent{event}}, nil
		})

	body := jsonBody(t, PositionUpdateRequest{
		EntityID:   "truck-1",
		EntityType: "vehicle",
		Latitude:   ptr(34.05),
		Longitude:  ptr(-118.24),
		Source:     "gps_device",
	})
	w := makeRequest(router, "POST", "/api/v1/positions", body, withKey)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp PositionUpdateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Archived)
	assert.Equal(t, "truck-1", resp.Position.EntityID)
	require.Len(t, resp.Events, 1)
	assert.Equal(t, "enter", resp.Events[0].EventType)
}

func TestUpdatePosition_InvalidJSON(t *testing.T) {
	m, router := newTestHandler(t, nil)

	m.positions.EXPECT().UpdatePosition(gomock.Any(), gomock.Any()).Times(0) // Сервис не должен вызываться

	w := makeRequest(router, "POST", "/api/v1/positions", bytes.NewBufferString(`{"entity_id": "x"`), withKey)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid request body")
}

func TestUpdatePosition_ValidationError(t *testing.T) {
	m, router := newTestHandler(t, nil)

	m.positions.EXPECT().UpdatePosition(gomock.Any(), gomock.Any()).Times(0)

	// Широта отсутствует
	body := jsonBody(t, PositionUpdateRequest{EntityID: "truck-1", EntityType: "vehicle", Longitude: ptr(10.0)})
	w := makeRequest(router, "POST", "/api/v1/positions", body, withKey)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Error:Field validation for 'Latitude' failed on the 'required' tag")
}

func TestUpdatePosition_StaleIsConflict(t *testing.T) {
	m, router := newTestHandler(t, nil)

	m.positions.EXPECT().
		UpdatePosition(gomock.Any(), gomock.Any()).
		Return(nil, fmt.Errorf("service: %w", models.ErrStaleUpdate))

	body := jsonBody(t, PositionUpdateRequest{EntityID: "truck-1", EntityType: "vehicle", Latitude: ptr(1.0), Longitude: ptr(2.0)})
	w := makeRequest(router, "POST", "/api/v1/positions", body, withKey)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestUpdatePosition_ServiceError(t *testing.T) {
	m, router := newTestHandler(t, nil)

	m.positions.EXPECT().
		UpdatePosition(gomock.Any(), gomock.Any()).
		Return(nil, errors.New("connection refused"))

	body := jsonBody(t, PositionUpdateRequest{EntityID: "truck-1", EntityType: "vehicle", Latitude: ptr(1.0), Longitude: ptr(2.0)})
	w := makeRequest(router, "POST", "/api/v1/positions", body, withKey)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "internal server error")
	assert.NotContains(t, w.Body.String(), "connection refused")
}

func TestUpdatePosition_RequiresAPIKey(t *testing.T) {
	m, router := newTestHandler(t, nil)

	m.positions.EXPECT().UpdatePosition(gomock.Any(), gomock.Any()).Times(0)

	body := jsonBody(t, PositionUpdateRequest{EntityID: "truck-1", EntityType: "vehicle", Latitude: ptr(1.0), Longitude: ptr(2.0)})
	w := makeRequest(router, "POST", "/api/v1/positions", body)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBulkUpdatePositions_Success(t *testing.T) {
	m, router := newTestHandler(t, nil)
	pos := samplePosition()

	m.positions.EXPECT().
		BulkUpdatePositions(gomock.Any(), gomock.Len(2)).
		Return([]*models.PositionUpdateResult{{Position: pos}, {Position: pos}}, nil)

	body := jsonBody(t, BulkPositionUpdateRequest{Updates: []PositionUpdateRequest{
		{EntityID: "a", EntityType: "driver", Latitude: ptr(1.0), Longitude: ptr(2.0)},
		{EntityID: "b", EntityType: "load", Latitude: ptr(3.0), Longitude: ptr(4.0)},
	}})
	w := makeRequest(router, "POST", "/api/v1/positions/bulk", body, withKey)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp []PositionUpdateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp, 2)
}

func TestBulkUpdatePositions_Empty(t *testing.T) {
	m, router := newTestHandler(t, nil)

	m.positions.EXPECT().BulkUpdatePositions(gomock.Any(), gomock.Any()).Times(0)

	w := makeRequest(router, "POST", "/api/v1/positions/bulk", bytes.NewBufferString(`{"updates": []}`), withKey)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEnsurePosition_Created(t *testing.T) {
	m, router := newTestHandler(t, nil)

	m.positions.EXPECT().
		EnsurePosition(gomock.Any(), gomock.Any()).
		Return(samplePosition(), true, nil)

	body := jsonBody(t, PositionUpdateRequest{EntityID: "truck-1", EntityType: "vehicle", Latitude: ptr(34.05), Longitude: ptr(-118.24)})
	w := makeRequest(router, "POST", "/api/v1/positions/ensure", body, withKey)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp EnsurePositionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Created)
}

func TestGetPosition_Success(t *testing.T) {
	m, router := newTestHandler(t, nil)

	m.positions.EXPECT().
		GetCurrentPosition(gomock.Any(), "truck-1", models.EntityVehicle).
		Return(samplePosition(), nil)

	w := makeRequest(router, "GET", "/api/v1/positions/vehicle/truck-1", nil, withKey)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp PositionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 34.05, resp.Latitude)
	assert.Equal(t, "gps_device", resp.Source)
}

func TestGetPosition_NotFound(t *testing.T) {
	m, router := newTestHandler(t, nil)

	m.positions.EXPECT().
		GetCurrentPosition(gomock.Any(), "ghost", models.EntityDriver).
		Return(nil, nil)

	w := makeRequest(router, "GET", "/api/v1/positions/driver/ghost", nil, withKey)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetPosition_UnknownType(t *testing.T) {
	m, router := newTestHandler(t, nil)

	m.positions.EXPECT().GetCurrentPosition(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	w := makeRequest(router, "GET", "/api/v1/positions/boat/b-1", nil, withKey)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid entity reference")
}

func TestDeletePosition(t *testing.T) {
	m, router := newTestHandler(t, nil)

	m.positions.EXPECT().DeletePosition(gomock.Any(), "truck-1", models.EntityVehicle).Return(true, nil)
	m.positions.EXPECT().DeletePosition(gomock.Any(), "truck-2", models.EntityVehicle).Return(false, nil)

	w := makeRequest(router, "DELETE", "/api/v1/positions/vehicle/truck-1", nil, withKey)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = makeRequest(router, "DELETE", "/api/v1/positions/vehicle/truck-2", nil, withKey)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetPositionHistory_ParsesQuery(t *testing.T) {
	m, router := newTestHandler(t, nil)

	m.positions.EXPECT().
		GetPositionHistory(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, q models.HistoryQuery) ([]*models.Position, error) {
			assert.Equal(t, "truck-1", q.EntityID)
			assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), q.Start.UTC())
			assert.True(t, q.End.IsZero())
			assert.Equal(t, 50, q.Limit)
			assert.Equal(t, 10, q.Offset)
			return []*models.Position{samplePosition()}, nil
		})

	w := makeRequest(router, "GET", "/api/v1/positions/vehicle/truck-1/history?start=2026-03-01T00:00:00Z&limit=50&offset=10", nil, withKey)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetPositionHistory_InvalidStart(t *testing.T) {
	m, router := newTestHandler(t, nil)

	m.positions.EXPECT().GetPositionHistory(gomock.Any(), gomock.Any()).Times(0)

	w := makeRequest(router, "GET", "/api/v1/positions/vehicle/truck-1/history?start=yesterday", nil, withKey)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid start")
}

func TestGetNearbyEntities_Success(t *testing.T) {
	m, router := newTestHandler(t, nil)

	m.positions.EXPECT().
		GetNearbyEntities(gomock.Any(), models.NearbyQuery{
			Latitude:    34.05,
			Longitude:   -118.24,
			RadiusMiles: 10,
			EntityType:  models.EntityDriver,
		}).
		Return([]*models.EntityPosition{{Position: *samplePosition(), DistanceMiles: 1.5}}, nil)

	w := makeRequest(router, "GET", "/api/v1/positions/nearby?latitude=34.05&longitude=-118.24&radius_miles=10&entity_type=driver", nil, withKey)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp []NearbyEntityResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, 1.5, resp[0].DistanceMiles)
}

func TestGetNearbyEntities_MissingRadius(t *testing.T) {
	m, router := newTestHandler(t, nil)

	m.positions.EXPECT().GetNearbyEntities(gomock.Any(), gomock.Any()).Times(0)

	w := makeRequest(router, "GET", "/api/v1/positions/nearby?latitude=34.05&longitude=-118.24", nil, withKey)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid radius_miles")
}

func TestGetNearbyEntities_ServiceValidation(t *testing.T) {
	m, router := newTestHandler(t, nil)

	m.positions.EXPECT().
		GetNearbyEntities(gomock.Any(), gomock.Any()).
		Return(nil, fmt.Errorf("service: %w: radius must be positive", models.ErrValidation))

	w := makeRequest(router, "GET", "/api/v1/positions/nearby?latitude=1&longitude=2&radius_miles=-1", nil, withKey)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "radius must be positive")
}

func TestGetDistance(t *testing.T) {
	m, router := newTestHandler(t, nil)
	from := models.EntityRef{EntityID: "d-1", EntityType: models.EntityDriver}
	to := models.EntityRef{EntityID: "l-1", EntityType: models.EntityLoad}

	m.positions.EXPECT().CalculateDistance(gomock.Any(), from, to).Return(ptr(12.5), nil)

	w := makeRequest(router, "GET", "/api/v1/positions/distance?from_type=driver&from_id=d-1&to_type=load&to_id=l-1", nil, withKey)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"distance_km": 12.5}`, w.Body.String())
}

func TestGetAverageSpeed(t *testing.T) {
	m, router := newTestHandler(t, nil)
	ref := models.EntityRef{EntityID: "truck-1", EntityType: models.EntityVehicle}

	m.positions.EXPECT().CalculateAverageSpeed(gomock.Any(), ref, 2*time.Hour).Return(ptr(55.0), nil)

	w := makeRequest(router, "GET", "/api/v1/positions/vehicle/truck-1/average-speed?window=2h", nil, withKey)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"speed_kmh": 55, "window_seconds": 7200}`, w.Body.String())
}

func TestGetAverageSpeed_NoHistory(t *testing.T) {
	m, router := newTestHandler(t, nil)

	m.positions.EXPECT().CalculateAverageSpeed(gomock.Any(), gomock.Any(), time.Hour).Return(nil, nil)

	w := makeRequest(router, "GET", "/api/v1/positions/vehicle/truck-1/average-speed", nil, withKey)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetETA_Success(t *testing.T) {
	m, router := newTestHandler(t, nil)
	dest := geo.LatLng{Lat: 36.17, Lon: -115.14}

	m.eta.EXPECT().
		GetETA(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req models.ETARequest) (*models.ETAResult, error) {
			assert.Equal(t, "truck-1", req.EntityID)
			assert.Equal(t, dest, req.Destination)
			return &models.ETAResult{EntityID: req.EntityID, Destination: dest, RemainingDistanceKm: 370, EstimatedDurationMinutes: 277.5}, nil
		})

	body := jsonBody(t, ETARequest{EntityID: "truck-1", EntityType: "vehicle", Destination: dest})
	w := makeRequest(router, "POST", "/api/v1/eta", body, withKey)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp models.ETAResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 370.0, resp.RemainingDistanceKm)
}

func TestGetETA_UnknownPosition(t *testing.T) {
	m, router := newTestHandler(t, nil)

	m.eta.EXPECT().GetETA(gomock.Any(), gomock.Any()).Return(nil, nil)

	body := jsonBody(t, ETARequest{EntityID: "ghost", EntityType: "driver"})
	w := makeRequest(router, "POST", "/api/v1/eta", body, withKey)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetETAWithRoute_RouteRequired(t *testing.T) {
	m, router := newTestHandler(t, nil)

	m.eta.EXPECT().
		GetETAWithRouteInfo(gomock.Any(), gomock.Any()).
		Return(nil, fmt.Errorf("service: %w: route is required", models.ErrValidation))

	body := jsonBody(t, ETARequest{EntityID: "truck-1", EntityType: "vehicle"})
	w := makeRequest(router, "POST", "/api/v1/eta/route", body, withKey)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "route is required")
}

func TestGetETAForEntities(t *testing.T) {
	m, router := newTestHandler(t, nil)
	refs := []models.EntityRef{
		{EntityID: "d-1", EntityType: models.EntityDriver},
		{EntityID: "d-2", EntityType: models.EntityDriver},
	}
	dest := geo.LatLng{Lat: 1, Lon: 2}

	m.eta.EXPECT().
		GetETAForMultipleEntities(gomock.Any(), refs, dest).
		Return([]*models.EntityETA{{EntityRef: refs[0]}, {EntityRef: refs[1]}}, nil)

	body := jsonBody(t, MultiEntityETARequest{Entities: refs, Destination: dest})
	w := makeRequest(router, "POST", "/api/v1/eta/entities", body, withKey)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetETAToDestinations_UnknownPosition(t *testing.T) {
	m, router := newTestHandler(t, nil)

	m.eta.EXPECT().GetETAToMultipleDestinations(gomock.Any(), gomock.Any(), gomock.Len(1)).Return(nil, nil)

	body := jsonBody(t, MultiDestinationETARequest{EntityID: "ghost", EntityType: "driver", Destinations: []geo.LatLng{{Lat: 1, Lon: 2}}})
	w := makeRequest(router, "POST", "/api/v1/eta/destinations", body, withKey)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetRemainingDistance(t *testing.T) {
	m, router := newTestHandler(t, nil)
	route := []geo.LatLng{{Lat: 1, Lon: 1}}

	m.eta.EXPECT().
		GetRemainingDistance(gomock.Any(), models.EntityRef{EntityID: "truck-1", EntityType: models.EntityVehicle}, gomock.Any(), route).
		Return(ptr(42.0), nil)

	body := jsonBody(t, ETARequest{EntityID: "truck-1", EntityType: "vehicle", Destination: geo.LatLng{Lat: 2, Lon: 2}, Route: route})
	w := makeRequest(router, "POST", "/api/v1/eta/remaining-distance", body, withKey)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"distance_km": 42}`, w.Body.String())
}

func TestInvalidateETACache(t *testing.T) {
	m, router := newTestHandler(t, nil)

	m.eta.EXPECT().
		InvalidateETACache(gomock.Any(), models.EntityRef{EntityID: "truck-1", EntityType: models.EntityVehicle}).
		Return(3, nil)

	w := makeRequest(router, "DELETE", "/api/v1/eta/vehicle/truck-1/cache", nil, withKey)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"deleted": 3}`, w.Body.String())
}

func TestCreateGeofence_Success(t *testing.T) {
	m, router := newTestHandler(t, nil)
	geofenceID := uuid.New()

	m.geofences.EXPECT().
		CreateGeofence(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, g *models.Geofence) error {
			assert.Equal(t, models.GeofenceCircle, g.Type())
			g.ID = geofenceID
			g.IsActive = true
			return nil
		})

	body := jsonBody(t, CreateGeofenceRequest{
		Name:         "Depot",
		GeofenceType: "circle",
		EntityType:   "vehicle",
		Center:       &geo.LatLng{Lat: 34.05, Lon: -118.24},
		RadiusMeters: 500,
	})
	w := makeRequest(router, "POST", "/api/v1/geofences", body, withKey)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp GeofenceResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, geofenceID, resp.ID)
	assert.Equal(t, "circle", resp.GeofenceType)
	require.NotNil(t, resp.Center)
	assert.Equal(t, 500.0, resp.RadiusMeters)
	assert.True(t, resp.IsActive)
}

func TestCreateGeofence_CircleWithoutCenter(t *testing.T) {
	m, router := newTestHandler(t, nil)

	m.geofences.EXPECT().CreateGeofence(gomock.Any(), gomock.Any()).Times(0)

	body := jsonBody(t, CreateGeofenceRequest{Name: "Depot", GeofenceType: "circle", EntityType: "vehicle", RadiusMeters: 500})
	w := makeRequest(router, "POST", "/api/v1/geofences", body, withKey)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "requires a center")
}

func TestCreateGeofence_ValidationError(t *testing.T) {
	m, router := newTestHandler(t, nil)

	m.geofences.EXPECT().CreateGeofence(gomock.Any(), gomock.Any()).Times(0)

	body := jsonBody(t, CreateGeofenceRequest{Name: "Zone", GeofenceType: "ellipse", EntityType: "vehicle"})
	w := makeRequest(router, "POST", "/api/v1/geofences", body, withKey)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Error:Field validation for 'GeofenceType' failed on the 'oneof' tag")
}

func TestListGeofences_DefaultPaging(t *testing.T) {
	m, router := newTestHandler(t, nil)

	m.geofences.EXPECT().ListGeofences(gomock.Any(), 1, 20).Return([]*models.Geofence{}, nil)

	w := makeRequest(router, "GET", "/api/v1/geofences", nil, withKey)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestListGeofences_ServiceError(t *testing.T) {
	m, router := newTestHandler(t, nil)

	m.geofences.EXPECT().ListGeofences(gomock.Any(), 2, 5).Return(nil, errors.New("db down"))

	w := makeRequest(router, "GET", "/api/v1/geofences?page=2&pageSize=5", nil, withKey)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestGetGeofence(t *testing.T) {
	m, router := newTestHandler(t, nil)
	id := uuid.New()

	m.geofences.EXPECT().GetGeofence(gomock.Any(), id).Return(nil, nil)

	w := makeRequest(router, "GET", "/api/v1/geofences/"+id.String(), nil, withKey)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = makeRequest(router, "GET", "/api/v1/geofences/not-a-uuid", nil, withKey)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid geofence ID")
}

func TestDeactivateGeofence(t *testing.T) {
	m, router := newTestHandler(t, nil)
	id := uuid.New()
	missing := uuid.New()

	m.geofences.EXPECT().DeactivateGeofence(gomock.Any(), id).Return(nil)
	m.geofences.EXPECT().DeactivateGeofence(gomock.Any(), missing).Return(fmt.Errorf("service: %w", models.ErrNotFound))

	w := makeRequest(router, "DELETE", "/api/v1/geofences/"+id.String(), nil, withKey)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = makeRequest(router, "DELETE", "/api/v1/geofences/"+missing.String(), nil, withKey)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCheckGeofences(t *testing.T) {
	m, router := newTestHandler(t, nil)
	zone := &models.Geofence{
		ID:         uuid.New(),
		Name:       "Yard",
		EntityType: models.EntityVehicle,
		Geometry:   models.CircleGeometry{Center: geo.LatLng{Lat: 1, Lon: 2}, RadiusMeters: 100},
		IsActive:   true,
	}

	m.geofences.EXPECT().
		ContainingGeofences(gomock.Any(), 1.0, 2.0, models.EntityVehicle, "truck-1").
		Return([]*models.Geofence{zone}, nil)

	body := jsonBody(t, GeofenceCheckRequest{Latitude: 1, Longitude: 2, EntityType: "vehicle", EntityID: "truck-1"})
	w := makeRequest(router, "POST", "/api/v1/geofences/check", body, withKey)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp []GeofenceResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, zone.ID, resp[0].ID)
}

func TestListEntityEvents(t *testing.T) {
	m, router := newTestHandler(t, nil)
	ref := models.EntityRef{EntityID: "truck-1", EntityType: models.EntityVehicle}

	m.geofences.EXPECT().
		ListEntityEvents(gomock.Any(), ref, 5).
		Return([]*models.GeofenceEvent{{ID: uuid.New(), EntityID: "truck-1", EventType: models.GeofenceDwell}}, nil)

	w := makeRequest(router, "GET", "/api/v1/positions/vehicle/truck-1/geofence-events?limit=5", nil, withKey)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp []GeofenceEventResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, "dwell", resp[0].EventType)
}

func TestHealthCheck_Success(t *testing.T) {
	_, router := newTestHandler(t, map[string]ReadinessProbe{"kafka": fakeProbe(true)})

	w := makeRequest(router, "GET", "/api/v1/system/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status": "ok", "components": {"kafka": true}}`, w.Body.String())
}

func TestHealthCheck_ConsumerNotReady(t *testing.T) {
	_, router := newTestHandler(t, map[string]ReadinessProbe{"kafka": fakeProbe(true), "mqtt": fakeProbe(false)})

	w := makeRequest(router, "GET", "/api/v1/system/health", nil)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"status": "degraded", "components": {"kafka": true, "mqtt": false}}`, w.Body.String())
}

func TestAPIKeyAuthMiddleware_Success(t *testing.T) {
	// Создаем Gin-роутер и добавляем middleware
	gin.SetMode(gin.TestMode)
	router := gin.New()
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})

	cfg := &config.Config{
		APIKeys: []string{"other-key", "valid-key"},
	}

	router.Use(APIKeyAuthMiddleware(cfg, logger))
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := makeRequest(router, "GET", "/test", nil, map[string]string{"X-API-Key": "valid-key"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = makeRequest(router, "GET", "/test", nil, map[string]string{"Authorization": "Bearer other-key"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAPIKeyAuthMiddleware_MissingKey(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})

	cfg := &config.Config{
		APIKeys: []string{"valid-key"},
	}

	router.Use(APIKeyAuthMiddleware(cfg, logger))
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := makeRequest(router, "GET", "/test", nil) // Нет API ключа
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "API key required")
}

func TestAPIKeyAuthMiddleware_InvalidKey(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	logger := logrus.New()
	logBuf := &bytes.Buffer{}
	logger.SetOutput(logBuf)

	cfg := &config.Config{
		APIKeys: []string{"valid-key"},
	}

	router.Use(APIKeyAuthMiddleware(cfg, logger))
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := makeRequest(router, "GET", "/test", nil, map[string]string{"X-API-Key": "invalid-key"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid API key")
	assert.NotContains(t, logBuf.String(), "invalid-key")
}
