package v1

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/shenikar/fleet_location_core/internal/models"
)

// @Summary Update entity position
// @Description Store the current position of an entity, archive the previous one when the move is significant and run geofence detection. Requires API key.
// @Tags Positions
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param position body PositionUpdateRequest true "Position update"
// @Success 200 {object} PositionUpdateResponse
// @Failure 400 {object} map[string]string "Invalid request body or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "Position is older than the stored one"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /positions [post]
func (h *Handler) updatePosition(c *gin.Context) {
	log := h.logger.WithField("method", "updatePosition")

	var input PositionUpdateRequest
	if !h.bindJSON(c, log, &input) {
		return
	}

	result, err := h.positionService.UpdatePosition(c.Request.Context(), DTOToPositionUpdate(input))
	if err != nil {
		respondError(c, log.WithField("entity_id", input.EntityID), err, "update position")
		return
	}
	c.JSON(http.StatusOK, ModelToUpdateResponse(result))
}

// @Summary Bulk update positions
// @Description Store up to 1000 positions at once. The batch is all or nothing. Requires API key.
// @Tags Positions
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param positions body BulkPositionUpdateRequest true "Position updates"
// @Success 200 {array} PositionUpdateResponse
// @Failure 400 {object} map[string]string "Invalid request body or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /positions/bulk [post]
func (h *Handler) bulkUpdatePositions(c *gin.Context) {
	log := h.logger.WithField("method", "bulkUpdatePositions")

	var input BulkPositionUpdateRequest
	if !h.bindJSON(c, log, &input) {
		return
	}
	updates := make([]*models.PositionUpdate, len(input.Updates))
	for i, u := range input.Updates {
		updates[i] = DTOToPositionUpdate(u)
	}

	results, err := h.positionService.BulkUpdatePositions(c.Request.Context(), updates)
	if err != nil {
		respondError(c, log.WithField("size", len(updates)), err, "bulk update positions")
		return
	}
	out := make([]PositionUpdateResponse, len(results))
	for i, r := range results {
		out[i] = ModelToUpdateResponse(r)
	}
	c.JSON(http.StatusOK, out)
}

// @Summary Ensure a position exists
// @Description Create the position from the request when the entity has none, otherwise return the stored one untouched. Requires API key.
// @Tags Positions
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param position body PositionUpdateRequest true "Default position"
// @Success 200 {object} EnsurePositionResponse
// @Failure 400 {object} map[string]string "Invalid request body or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /positions/ensure [post]
func (h *Handler) ensurePosition(c *gin.Context) {
	log := h.logger.WithField("method", "ensurePosition")

	var input PositionUpdateRequest
	if !h.bindJSON(c, log, &input) {
		return
	}

	pos, created, err := h.positionService.EnsurePosition(c.Request.Context(), DTOToPositionUpdate(input))
	if err != nil {
		respondError(c, log, err, "ensure position")
		return
	}
	c.JSON(http.StatusOK, EnsurePositionResponse{Position: ModelToPositionResponse(pos), Created: created})
}

// @Summary Current positions of several entities
// @Description Entities without a known position are omitted. A reference without entity_type matches every type. Requires API key.
// @Tags Positions
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param entities body EntityRefsRequest true "Entities"
// @Success 200 {array} PositionResponse
// @Failure 400 {object} map[string]string "Invalid request body or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /positions/current [post]
func (h *Handler) getCurrentPositions(c *gin.Context) {
	log := h.logger.WithField("method", "getCurrentPositions")

	var input EntityRefsRequest
	if !h.bindJSON(c, log, &input) {
		return
	}

	positions, err := h.positionService.GetCurrentPositions(c.Request.Context(), input.Entities)
	if err != nil {
		respondError(c, log, err, "get current positions")
		return
	}
	c.JSON(http.StatusOK, ModelsToPositionResponses(positions))
}

// @Summary Get current position
// @Description Get the current position of an entity. Requires API key.
// @Tags Positions
// @Produce json
// @Security ApiKeyAuth
// @Param type path string true "Entity type" Enums(driver, vehicle, load, smart_hub)
// @Param id path string true "Entity ID"
// @Success 200 {object} PositionResponse
// @Failure 400 {object} map[string]string "Invalid entity reference"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Position not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /positions/{type}/{id} [get]
func (h *Handler) getPosition(c *gin.Context) {
	ref, ok := entityRefParam(c)
	if !ok {
		return
	}
	log := h.logger.WithFields(logrus.Fields{"method": "getPosition", "entity_id": ref.EntityID, "entity_type": ref.EntityType})

	pos, err := h.positionService.GetCurrentPosition(c.Request.Context(), ref.EntityID, ref.EntityType)
	if err != nil {
		respondError(c, log, err, "get position")
		return
	}
	if pos == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "position not found"})
		return
	}
	c.JSON(http.StatusOK, ModelToPositionResponse(pos))
}

// @Summary Delete current position
// @Description Remove the current position of an entity. History is kept. Requires API key.
// @Tags Positions
// @Security ApiKeyAuth
// @Param type path string true "Entity type" Enums(driver, vehicle, load, smart_hub)
// @Param id path string true "Entity ID"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]string "Invalid entity reference"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Position not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /positions/{type}/{id} [delete]
func (h *Handler) deletePosition(c *gin.Context) {
	ref, ok := entityRefParam(c)
	if !ok {
		return
	}
	log := h.logger.WithFields(logrus.Fields{"method": "deletePosition", "entity_id": ref.EntityID, "entity_type": ref.EntityType})

	deleted, err := h.positionService.DeletePosition(c.Request.Context(), ref.EntityID, ref.EntityType)
	if err != nil {
		respondError(c, log, err, "delete position")
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "position not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Position history
// @Description Archived positions of an entity, newest first. Requires API key.
// @Tags Positions
// @Produce json
// @Security ApiKeyAuth
// @Param type path string true "Entity type" Enums(driver, vehicle, load, smart_hub)
// @Param id path string true "Entity ID"
// @Param start query string false "Start of the range, RFC3339"
// @Param end query string false "End of the range, RFC3339"
// @Param limit query int false "Max records" default(100)
// @Param offset query int false "Offset" default(0)
// @Success 200 {array} PositionResponse
// @Failure 400 {object} map[string]string "Invalid parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /positions/{type}/{id}/history [get]
func (h *Handler) getPositionHistory(c *gin.Context) {
	ref, ok := entityRefParam(c)
	if !ok {
		return
	}
	log := h.logger.WithFields(logrus.Fields{"method": "getPositionHistory", "entity_id": ref.EntityID})

	q := models.HistoryQuery{EntityID: ref.EntityID, EntityType: ref.EntityType}
	for name, dst := range map[string]*time.Time{"start": &q.Start, "end": &q.End} {
		raw := c.Query(name)
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
			return
		}
		*dst = t
	}
	q.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "100"))
	q.Offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))

	history, err := h.positionService.GetPositionHistory(c.Request.Context(), q)
	if err != nil {
		respondError(c, log, err, "get position history")
		return
	}
	c.JSON(http.StatusOK, ModelsToPositionResponses(history))
}

// @Summary Nearby entities
// @Description Entities within radius_miles of a point, nearest first. Requires API key.
// @Tags Positions
// @Produce json
// @Security ApiKeyAuth
// @Param latitude query number true "Latitude"
// @Param longitude query number true "Longitude"
// @Param radius_miles query number true "Radius in miles"
// @Param entity_type query string false "Entity type filter" Enums(driver, vehicle, load, smart_hub)
// @Param limit query int false "Max results" default(100)
// @Success 200 {array} NearbyEntityResponse
// @Failure 400 {object} map[string]string "Invalid parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /positions/nearby [get]
func (h *Handler) getNearbyEntities(c *gin.Context) {
	log := h.logger.WithField("method", "getNearbyEntities")

	lat, ok := floatQuery(c, "latitude")
	if !ok {
		return
	}
	lon, ok := floatQuery(c, "longitude")
	if !ok {
		return
	}
	radius, ok := floatQuery(c, "radius_miles")
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	found, err := h.positionService.GetNearbyEntities(c.Request.Context(), models.NearbyQuery{
		Latitude:    lat,
		Longitude:   lon,
		RadiusMiles: radius,
		EntityType:  models.EntityType(c.Query("entity_type")),
		Limit:       limit,
	})
	if err != nil {
		respondError(c, log, err, "query nearby entities")
		return
	}
	c.JSON(http.StatusOK, ModelsToNearbyResponses(found))
}

// @Summary Distance between two entities
// @Description Great-circle distance between current positions in kilometres. Requires API key.
// @Tags Positions
// @Produce json
// @Security ApiKeyAuth
// @Param from_type query string true "First entity type"
// @Param from_id query string true "First entity ID"
// @Param to_type query string true "Second entity type"
// @Param to_id query string true "Second entity ID"
// @Success 200 {object} DistanceResponse
// @Failure 400 {object} map[string]string "Invalid parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "A position is unknown"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /positions/distance [get]
func (h *Handler) getDistance(c *gin.Context) {
	log := h.logger.WithField("method", "getDistance")
	from := models.EntityRef{EntityID: c.Query("from_id"), EntityType: models.EntityType(c.Query("from_type"))}
	to := models.EntityRef{EntityID: c.Query("to_id"), EntityType: models.EntityType(c.Query("to_type"))}

	d, err := h.positionService.CalculateDistance(c.Request.Context(), from, to)
	if err != nil {
		respondError(c, log, err, "calculate distance")
		return
	}
	if d == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "position not found"})
		return
	}
	c.JSON(http.StatusOK, DistanceResponse{DistanceKm: *d})
}

// @Summary Average speed
// @Description Distance travelled over the window divided by elapsed time, km/h. Requires API key.
// @Tags Positions
// @Produce json
// @Security ApiKeyAuth
// @Param type path string true "Entity type" Enums(driver, vehicle, load, smart_hub)
// @Param id path string true "Entity ID"
// @Param window query string false "Window as Go duration" default(1h)
// @Success 200 {object} AverageSpeedResponse
// @Failure 400 {object} map[string]string "Invalid parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Not enough history"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /positions/{type}/{id}/average-speed [get]
func (h *Handler) getAverageSpeed(c *gin.Context) {
	ref, ok := entityRefParam(c)
	if !ok {
		return
	}
	log := h.logger.WithFields(logrus.Fields{"method": "getAverageSpeed", "entity_id": ref.EntityID})

	window, err := time.ParseDuration(c.DefaultQuery("window", "1h"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid window"})
		return
	}

	speed, err := h.positionService.CalculateAverageSpeed(c.Request.Context(), ref, window)
	if err != nil {
		respondError(c, log, err, "calculate average speed")
		return
	}
	if speed == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not enough history"})
		return
	}
	c.JSON(http.StatusOK, AverageSpeedResponse{SpeedKmh: *speed, WindowSeconds: window.Seconds()})
}
