package v1

import (
	"github.com/shenikar/fleet_location_core/internal/models"
)

// DTOToPositionUpdate преобразует DTO в доменное обновление
func DTOToPositionUpdate(dto PositionUpdateRequest) *models.PositionUpdate {
	return &models.PositionUpdate{
		EntityID:   dto.EntityID,
		EntityType: models.EntityType(dto.EntityType),
		Latitude:   dto.Latitude,
		Longitude:  dto.Longitude,
		Heading:    dto.Heading,
		Speed:      dto.Speed,
		Accuracy:   dto.Accuracy,
		Source:     models.Source(dto.Source),
		Timestamp:  dto.Timestamp,
	}
}

func ModelToPositionResponse(p *models.Position) PositionResponse {
	return PositionResponse{
		EntityID:   p.EntityID,
		EntityType: string(p.EntityType),
		Latitude:   p.Latitude,
		Longitude:  p.Longitude,
		Heading:    p.Heading,
		Speed:      p.Speed,
		Accuracy:   p.Accuracy,
		Source:     string(p.Source),
		Timestamp:  p.Timestamp,
	}
}

func ModelsToPositionResponses(positions []*models.Position) []PositionResponse {
	out := make([]PositionResponse, len(positions))
	for i, p := range positions {
		out[i] = ModelToPositionResponse(p)
	}
	return out
}

func ModelsToNearbyResponses(found []*models.EntityPosition) []NearbyEntityResponse {
	out := make([]NearbyEntityResponse, len(found))
	for i, p := range found {
		out[i] = NearbyEntityResponse{PositionResponse: ModelToPositionResponse(&p.Position), DistanceMiles: p.DistanceMiles}
	}
	return out
}

func ModelToEventResponse(e *models.GeofenceEvent) GeofenceEventResponse {
	return GeofenceEventResponse{
		EventID:    e.ID,
		GeofenceID: e.GeofenceID,
		EntityID:   e.EntityID,
		EntityType: string(e.EntityType),
		EventType:  string(e.EventType),
		Latitude:   e.Latitude,
		Longitude:  e.Longitude,
		Timestamp:  e.Timestamp,
		Metadata:   e.Metadata,
	}
}

func ModelsToEventResponses(events []*models.GeofenceEvent) []GeofenceEventResponse {
	out := make([]GeofenceEventResponse, len(events))
	for i, e := range events {
		out[i] = ModelToEventResponse(e)
	}
	return out
}

func ModelToUpdateResponse(r *models.PositionUpdateResult) PositionUpdateResponse {
	return PositionUpdateResponse{
		Position: ModelToPositionResponse(r.Position),
		Archived: r.Archived,
		Events:   ModelsToEventResponses(r.Events),
	}
}

// DTOToETARequest - точка назначения и маршрут передаются как есть
func DTOToETARequest(dto ETARequest) models.ETARequest {
	return models.ETARequest{
		EntityID:    dto.EntityID,
		EntityType:  models.EntityType(dto.EntityType),
		Destination: dto.Destination,
		Route:       dto.Route,
		LoadStatus:  models.LoadStatus(dto.LoadStatus),
	}
}

// DTOToGeofenceModel собирает геозону; геометрия проверяется сразу
func DTOToGeofenceModel(dto CreateGeofenceRequest) (*models.Geofence, error) {
	geometry, err := models.NewGeometry(models.GeofenceType(dto.GeofenceType), dto.Center, dto.RadiusMeters, dto.Vertices, dto.Centerline, dto.WidthMeters)
	if err != nil {
		return nil, err
	}
	return &models.Geofence{
		Name:       dto.Name,
		EntityType: models.EntityType(dto.EntityType),
		EntityID:   dto.EntityID,
		Geometry:   geometry,
		StartsAt:   dto.StartsAt,
		EndsAt:     dto.EndsAt,
	}, nil
}

// ModelToGeofenceResponse раскладывает геометрию по плоским полям
func ModelToGeofenceResponse(g *models.Geofence) *GeofenceResponse {
	resp := &GeofenceResponse{
		ID:           g.ID,
		Name:         g.Name,
		GeofenceType: string(g.Type()),
		EntityType:   string(g.EntityType),
		EntityID:     g.EntityID,
		IsActive:     g.IsActive,
		StartsAt:     g.StartsAt,
		EndsAt:       g.EndsAt,
		CreatedAt:    g.CreatedAt,
		UpdatedAt:    g.UpdatedAt,
	}
	switch v := g.Geometry.(type) {
	case models.CircleGeometry:
		center := v.Center
		resp.Center = &center
		resp.RadiusMeters = v.RadiusMeters
	case models.PolygonGeometry:
		resp.Vertices = v.Vertices
	case models.CorridorGeometry:
		resp.Centerline = v.Centerline
		resp.WidthMeters = v.WidthMeters
	}
	return resp
}

func ModelsToGeofenceResponses(geofences []*models.Geofence) []*GeofenceResponse {
	responses := make([]*GeofenceResponse, len(geofences))
	for i, g := range geofences {
		responses[i] = ModelToGeofenceResponse(g)
	}
	return responses
}
