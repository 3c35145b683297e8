package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/shenikar/fleet_location_core/internal/geo"
	"github.com/shenikar/fleet_location_core/internal/models"
	"github.com/shenikar/fleet_location_core/internal/service/mocks"
	"github.com/shenikar/fleet_location_core/internal/softfail"
)

type etaMocks struct {
	positions *mocks.MockCurrentPositionReader
	speeds    *mocks.MockSpeedHistory
	cache     *mocks.MockETACache
	traffic   *mocks.MockTrafficProvider
	drivers   *mocks.MockDriverBehaviorSource
	sink      *softfail.Recorder
}

func newTestETAService(t *testing.T) (*etaService, *etaMocks) {
	ctrl := gomock.NewController(t)
	m := &etaMocks{
		positions: mocks.NewMockCurrentPositionReader(ctrl),
		speeds:    mocks.NewMockSpeedHistory(ctrl),
		cache:     mocks.NewMockETACache(ctrl),
		traffic:   mocks.NewMockTrafficProvider(ctrl),
		drivers:   mocks.NewMockDriverBehaviorSource(ctrl),
		sink:      &softfail.Recorder{},
	}

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах

	svc := NewETAService(m.positions, m.speeds, m.cache, m.traffic, m.drivers, logger, m.sink, testConfig()).(*etaService)
	svc.now = func() time.Time { return fixedNow }
	return svc, m
}

func ptr(v float64) *float64 { return &v }

func TestGetETA_DefaultSpeedWithoutSignals(t *testing.T) {
	// Подготовка
	svc, m := newTestETAService(t)
	ctx := context.Background()
	ref := models.EntityRef{EntityID: "d1", EntityType: models.EntityDriver}
	dest := geo.LatLng{Lat: 0, Lon: 1}
	pos := &models.Position{EntityID: "d1", EntityType: models.EntityDriver, Latitude: 0, Longitude: 0}

	// Ожидания
	m.cache.EXPECT().Get(ctx, ref, dest, false).Return(nil, nil).Times(1)
	m.positions.EXPECT().GetCurrentPosition(ctx, "d1", models.EntityDriver).Return(pos, nil).Times(1)
	m.speeds.EXPECT().AverageReportedSpeed(ctx, "d1", models.EntityDriver, fixedNow.Add(-30*24*time.Hour)).Return(nil, nil).Times(1)
	m.traffic.EXPECT().Factor(ctx, gomock.Any(), gomock.Any()).Return(nil, nil).Times(1)
	m.drivers.EXPECT().Factor(ctx, "d1").Return(nil, nil).Times(1)
	m.cache.EXPECT().Set(ctx, ref, dest, false, gomock.Any()).Return(nil).Times(1)

	// Действие
	res, err := svc.GetETA(ctx, models.ETARequest{EntityID: "d1", EntityType: models.EntityDriver, Destination: dest})

	// Проверки
	require.NoError(t, err)
	require.NotNil(t, res)
	km := geo.DistanceKm(0, 0, 0, 1)
	assert.InDelta(t, km, res.RemainingDistanceKm, 1e-9)
	assert.InDelta(t, km/80*60, res.EstimatedDurationMinutes, 1e-9)
	assert.True(t, res.Factors.UsedDefaultSpeed)
	assert.Empty(t, res.Segments)
	// 111 км: без поправок на короткую или длинную поездку
	assert.InDelta(t, 0.5, res.Confidence, 1e-9)
	assert.Equal(t, fixedNow, res.CalculatedAt)
}

func TestGetETA_CacheHit(t *testing.T) {
	svc, m := newTestETAService(t)
	ctx := context.Background()
	ref := models.EntityRef{EntityID: "d1", EntityType: models.EntityDriver}
	dest := geo.LatLng{Lat: 1, Lon: 1}
	cached := &models.ETAResult{EntityID: "d1", Confidence: 0.8}

	m.cache.EXPECT().Get(ctx, ref, dest, false).Return(cached, nil).Times(1)

	res, err := svc.GetETA(ctx, models.ETARequest{EntityID: "d1", EntityType: models.EntityDriver, Destination: dest})

	require.NoError(t, err)
	assert.Same(t, cached, res)
}

func TestGetETA_UnknownPosition(t *testing.T) {
	svc, m := newTestETAService(t)
	svc.cache = nil
	ctx := context.Background()

	m.positions.EXPECT().GetCurrentPosition(ctx, "ghost", models.EntityLoad).Return(nil, nil).Times(1)

	res, err := svc.GetETA(ctx, models.ETARequest{EntityID: "ghost", EntityType: models.EntityLoad, Destination: geo.LatLng{Lat: 1, Lon: 1}})

	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestGetETA_InvalidDestination(t *testing.T) {
	svc, _ := newTestETAService(t)

	_, err := svc.GetETA(context.Background(), models.ETARequest{EntityID: "d1", EntityType: models.EntityDriver, Destination: geo.LatLng{Lat: 95, Lon: 0}})

	assert.True(t, IsValidation(err))
}

func TestGetETAWithRouteInfo_AllSignals(t *testing.T) {
	svc, m := newTestETAService(t)
	svc.cache = nil
	ctx := context.Background()
	pos := &models.Position{EntityID: "v1", EntityType: models.EntityVehicle, Latitude: 0, Longitude: 0, Speed: 60}
	route := []geo.LatLng{{Lat: 0, Lon: 0.1}, {Lat: 0, Lon: 0.2}}
	dest := geo.LatLng{Lat: 0, Lon: 0.3}

	m.positions.EXPECT().GetCurrentPosition(ctx, "v1", models.EntityVehicle).Return(pos, nil).Times(1)
	m.speeds.EXPECT().AverageReportedSpeed(ctx, "v1", models.EntityVehicle, gomock.Any()).Return(ptr(60), nil).Times(1)
	// Коэффициент за пределами диапазона обрезается до 2
	m.traffic.EXPECT().Factor(ctx, gomock.Any(), gomock.Any()).Return(ptr(3), nil).Times(3)
	m.drivers.EXPECT().Factor(ctx, "v1").Return(ptr(1.5), nil).Times(1)

	res, err := svc.GetETAWithRouteInfo(ctx, models.ETARequest{
		EntityID: "v1", EntityType: models.EntityVehicle, Destination: dest, Route: route, LoadStatus: models.LoadInTransit,
	})

	require.NoError(t, err)
	require.Len(t, res.Segments, 3)
	for _, seg := range res.Segments {
		assert.Equal(t, 2.0, seg.TrafficFactor)
	}
	km := geo.PathLengthKm([]geo.LatLng{{Lat: 0, Lon: 0}, route[0], route[1], dest})
	assert.InDelta(t, km, res.RemainingDistanceKm, 1e-9)
	// 60 км/ч, пробки x2, водитель x1.5
	assert.InDelta(t, km/30*1.5*60, res.EstimatedDurationMinutes, 1e-6)
	assert.Equal(t, 0.95, res.Confidence)
	require.NotNil(t, res.Factors.TrafficFactor)
	assert.Equal(t, 2.0, *res.Factors.TrafficFactor)
	assert.True(t, res.Factors.UsedRoute)
	assert.False(t, res.Factors.UsedDefaultSpeed)
}

func TestGetETAWithRouteInfo_RequiresRoute(t *testing.T) {
	svc, _ := newTestETAService(t)

	_, err := svc.GetETAWithRouteInfo(context.Background(), models.ETARequest{EntityID: "v1", EntityType: models.EntityVehicle})

	assert.True(t, IsValidation(err))
}

func TestGetETA_OptionalSignalFailuresAreSoft(t *testing.T) {
	svc, m := newTestETAService(t)
	ctx := context.Background()
	pos := &models.Position{EntityID: "v1", EntityType: models.EntityVehicle, Latitude: 0, Longitude: 0, Speed: 50}

	m.cache.EXPECT().Get(ctx, gomock.Any(), gomock.Any(), false).Return(nil, errors.New("redis down")).Times(1)
	m.positions.EXPECT().GetCurrentPosition(ctx, "v1", models.EntityVehicle).Return(pos, nil).Times(1)
	m.speeds.EXPECT().AverageReportedSpeed(ctx, "v1", models.EntityVehicle, gomock.Any()).Return(nil, errors.New("timeout")).Times(1)
	m.traffic.EXPECT().Factor(ctx, gomock.Any(), gomock.Any()).Return(nil, errors.New("503")).Times(1)
	m.drivers.EXPECT().Factor(ctx, "v1").Return(nil, errors.New("redis down")).Times(1)
	m.cache.EXPECT().Set(ctx, gomock.Any(), gomock.Any(), false, gomock.Any()).Return(errors.New("redis down")).Times(1)

	res, err := svc.GetETA(ctx, models.ETARequest{EntityID: "v1", EntityType: models.EntityVehicle, Destination: geo.LatLng{Lat: 0, Lon: 0.1}})

	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, []string{"eta_cache.get", "eta.historical_speed", "eta.traffic", "eta.driver_behavior", "eta_cache.set"}, m.sink.Ops())
	// Текущая скорость плюс короткая поездка
	assert.InDelta(t, 0.65, res.Confidence, 1e-9)
}

func TestGetETAForMultipleEntities_ReportsErrorsInline(t *testing.T) {
	svc, m := newTestETAService(t)
	svc.cache = nil
	svc.speeds = nil
	svc.traffic = nil
	svc.drivers = nil
	ctx := context.Background()
	dest := geo.LatLng{Lat: 0, Lon: 0.5}

	m.positions.EXPECT().GetCurrentPosition(gomock.Any(), "a", models.EntityDriver).
		Return(&models.Position{EntityID: "a", EntityType: models.EntityDriver}, nil).Times(1)
	m.positions.EXPECT().GetCurrentPosition(gomock.Any(), "b", models.EntityDriver).Return(nil, nil).Times(1)
	m.positions.EXPECT().GetCurrentPosition(gomock.Any(), "c", models.EntityDriver).Return(nil, errors.New("db gone")).Times(1)

	out, err := svc.GetETAForMultipleEntities(ctx, []models.EntityRef{
		{EntityID: "a", EntityType: models.EntityDriver},
		{EntityID: "b", EntityType: models.EntityDriver},
		{EntityID: "c", EntityType: models.EntityDriver},
	}, dest)

	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.NotNil(t, out[0].Result)
	assert.Equal(t, "position not found", out[1].Error)
	assert.Contains(t, out[2].Error, "db gone")
}

func TestGetRemainingDistance_FollowsRouteFromClosestPoint(t *testing.T) {
	svc, m := newTestETAService(t)
	ctx := context.Background()
	pos := &models.Position{EntityID: "v1", EntityType: models.EntityVehicle, Latitude: 0, Longitude: 0.21}
	route := []geo.LatLng{{Lat: 0, Lon: 0}, {Lat: 0, Lon: 0.1}, {Lat: 0, Lon: 0.2}, {Lat: 0, Lon: 0.3}}
	dest := geo.LatLng{Lat: 0, Lon: 0.3}

	m.positions.EXPECT().GetCurrentPosition(ctx, "v1", models.EntityVehicle).Return(pos, nil).Times(1)

	d, err := svc.GetRemainingDistance(ctx, models.EntityRef{EntityID: "v1", EntityType: models.EntityVehicle}, dest, route)

	require.NoError(t, err)
	require.NotNil(t, d)
	expected := geo.PathLengthKm([]geo.LatLng{{Lat: 0, Lon: 0.21}, {Lat: 0, Lon: 0.2}, {Lat: 0, Lon: 0.3}})
	assert.InDelta(t, expected, *d, 1e-9)
}

func TestInvalidateETACache(t *testing.T) {
	svc, m := newTestETAService(t)
	ctx := context.Background()
	ref := models.EntityRef{EntityID: "v1", EntityType: models.EntityVehicle}

	m.cache.EXPECT().Invalidate(ctx, ref).Return(4, nil).Times(1)

	n, err := svc.InvalidateETACache(ctx, ref)

	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestBlendSpeed(t *testing.T) {
	speed, usedDefault := BlendSpeed(50, ptr(80), 60)
	assert.InDelta(t, (50*0.3+80*0.4)/0.7, speed, 1e-9)
	assert.False(t, usedDefault)

	speed, usedDefault = BlendSpeed(0, ptr(70), 60)
	assert.Equal(t, 70.0, speed)
	assert.False(t, usedDefault)

	speed, usedDefault = BlendSpeed(40, nil, 60)
	assert.Equal(t, 40.0, speed)
	assert.False(t, usedDefault)

	speed, usedDefault = BlendSpeed(0, nil, 60)
	assert.Equal(t, 60.0, speed)
	assert.True(t, usedDefault)
}

func TestRoutePath(t *testing.T) {
	start := geo.LatLng{Lat: 0, Lon: 0}
	dest := geo.LatLng{Lat: 0, Lon: 1}

	assert.Equal(t, []geo.LatLng{start, dest}, RoutePath(start, nil, dest))

	route := []geo.LatLng{{Lat: 0, Lon: 0.5}, dest}
	assert.Equal(t, []geo.LatLng{start, {Lat: 0, Lon: 0.5}, dest}, RoutePath(start, route, dest))
}

func TestConfidence_StaysInBounds(t *testing.T) {
	all := etaSignals{currentSpeed: true, historicalSpeed: true, traffic: true, route: true, driverBehavior: true}

	assert.Equal(t, 0.95, confidence(all, 10, models.LoadInTransit))
	assert.Equal(t, 0.5, confidence(etaSignals{}, 1000, models.LoadException))
	assert.InDelta(t, 0.62, confidence(etaSignals{}, 10, models.LoadAtPickup), 1e-9)
	assert.InDelta(t, 0.75, confidence(etaSignals{historicalSpeed: true, traffic: true, route: true}, 100, ""), 1e-9)

	for _, km := range []float64{0, 49, 50, 500, 501, 5000} {
		for _, status := range []models.LoadStatus{"", models.LoadLoaded, models.LoadAtDropoff, models.LoadDelayed} {
			c := confidence(all, km, status)
			assert.GreaterOrEqual(t, c, 0.5)
			assert.LessOrEqual(t, c, 0.95)
		}
	}
}
