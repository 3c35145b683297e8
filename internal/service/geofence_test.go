package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/shenikar/fleet_location_core/internal/geo"
	"github.com/shenikar/fleet_location_core/internal/models"
	"github.com/shenikar/fleet_location_core/internal/service/mocks"
)

func newTestGeofenceService(t *testing.T) (*geofenceService, *mocks.MockGeofenceRepository) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockGeofenceRepository(ctrl)

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах

	svc := NewGeofenceService(repo, logger).(*geofenceService)
	svc.now = func() time.Time { return fixedNow }
	return svc, repo
}

func squareZone() *models.Geofence {
	return &models.Geofence{
		ID:         uuid.New(),
		Name:       "depot",
		EntityType: models.EntityDriver,
		Geometry: models.PolygonGeometry{Vertices: []geo.LatLng{
			{Lat: 0, Lon: 0}, {Lat: 0, Lon: 1}, {Lat: 1, Lon: 1}, {Lat: 1, Lon: 0},
		}},
	}
}

func TestCreateGeofence_Success(t *testing.T) {
	svc, repo := newTestGeofenceService(t)
	ctx := context.Background()
	g := squareZone()

	repo.EXPECT().Create(ctx, g).Return(nil).Times(1)

	require.NoError(t, svc.CreateGeofence(ctx, g))
	assert.True(t, g.IsActive)
}

func TestCreateGeofence_InvalidRejectedBeforeRepository(t *testing.T) {
	svc, repo := newTestGeofenceService(t)
	g := squareZone()
	g.Name = ""

	repo.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)

	err := svc.CreateGeofence(context.Background(), g)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestCreateGeofence_RepositoryError(t *testing.T) {
	svc, repo := newTestGeofenceService(t)
	repoErr := errors.New("db down")

	repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(repoErr)

	err := svc.CreateGeofence(context.Background(), squareZone())
	assert.ErrorIs(t, err, repoErr)
}

func TestListGeofences_NormalizesPaging(t *testing.T) {
	svc, repo := newTestGeofenceService(t)

	repo.EXPECT().List(gomock.Any(), 1, 20).Return([]*models.Geofence{squareZone()}, nil)

	out, err := svc.ListGeofences(context.Background(), 0, 500)
	require.NoError(t, err)
	assert.Len(t, out, 1)
}

func TestDeactivateGeofence_PropagatesNotFound(t *testing.T) {
	svc, repo := newTestGeofenceService(t)
	id := uuid.New()

	repo.EXPECT().Deactivate(gomock.Any(), id).Return(models.ErrNotFound)

	err := svc.DeactivateGeofence(context.Background(), id)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestContainingGeofences(t *testing.T) {
	svc, repo := newTestGeofenceService(t)
	ctx := context.Background()

	polygon := squareZone()
	circle := &models.Geofence{
		ID:         uuid.New(),
		Name:       "yard",
		EntityType: models.EntityDriver,
		Geometry:   models.CircleGeometry{Center: geo.LatLng{Lat: 0.5, Lon: 0.5}, RadiusMeters: 100},
	}
	broken := &models.Geofence{
		ID:          uuid.New(),
		Name:        "broken",
		EntityType:  models.EntityDriver,
		GeometryErr: models.ErrValidation,
	}
	farPolygon := squareZone()
	farPolygon.Geometry = models.PolygonGeometry{Vertices: []geo.LatLng{
		{Lat: 10, Lon: 10}, {Lat: 10, Lon: 11}, {Lat: 11, Lon: 11},
	}}

	filter := models.GeofenceFilter{EntityType: models.EntityDriver, EntityID: "d1", At: fixedNow}
	repo.EXPECT().FindNearby(ctx, 0.5, 0.5, 0.0, filter).
		Return([]*models.Geofence{polygon, circle, broken, farPolygon}, nil)
	// Не полигональные зоны проверяет хранилище
	repo.EXPECT().ContainsPoint(ctx, circle.ID, 0.5, 0.5).Return(true, nil)

	out, err := svc.ContainingGeofences(ctx, 0.5, 0.5, models.EntityDriver, "d1")
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, polygon.ID, out[0].ID)
	assert.Equal(t, circle.ID, out[1].ID)
}

func TestContainingGeofences_UnknownEntityType(t *testing.T) {
	svc, repo := newTestGeofenceService(t)

	repo.EXPECT().FindNearby(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	_, err := svc.ContainingGeofences(context.Background(), 0, 0, models.EntityType("boat"), "")
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestListEntityEvents_DefaultLimit(t *testing.T) {
	svc, repo := newTestGeofenceService(t)
	ref := models.EntityRef{EntityID: "d1", EntityType: models.EntityDriver}

	repo.EXPECT().ListEvents(gomock.Any(), ref, defaultHistoryLimit).Return(nil, nil)

	_, err := svc.ListEntityEvents(context.Background(), ref, 0)
	require.NoError(t, err)
}
