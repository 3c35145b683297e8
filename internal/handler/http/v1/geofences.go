package v1

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/shenikar/fleet_location_core/internal/models"
)

// @Summary Create a geofence
// @Description Create a circle, polygon or corridor geofence. Requires API key.
// @Tags Geofences
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param geofence body CreateGeofenceRequest true "Geofence creation request"
// @Success 201 {object} GeofenceResponse
// @Failure 400 {object} map[string]string "Invalid request body or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /geofences [post]
func (h *Handler) createGeofence(c *gin.Context) {
	log := h.logger.WithField("method", "createGeofence")

	var input CreateGeofenceRequest
	if !h.bindJSON(c, log, &input) {
		return
	}
	model, err := DTOToGeofenceModel(input)
	if err != nil {
		log.WithError(err).Warn("Invalid geometry")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.geofenceService.CreateGeofence(c.Request.Context(), model); err != nil {
		respondError(c, log, err, "create geofence")
		return
	}
	c.JSON(http.StatusCreated, ModelToGeofenceResponse(model))
}

// @Summary Get a list of geofences
// @Description Get a paginated list of geofences, newest first. Requires API key.
// @Tags Geofences
// @Produce json
// @Security ApiKeyAuth
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Number of items per page" default(20)
// @Success 200 {array} GeofenceResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /geofences [get]
func (h *Handler) listGeofences(c *gin.Context) {
	log := h.logger.WithField("method", "listGeofences")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))

	geofences, err := h.geofenceService.ListGeofences(c.Request.Context(), page, pageSize)
	if err != nil {
		respondError(c, log, err, "list geofences")
		return
	}
	c.JSON(http.StatusOK, ModelsToGeofenceResponses(geofences))
}

// @Summary Get geofence by ID
// @Description Get a single geofence by its ID. Requires API key.
// @Tags Geofences
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Geofence ID"
// @Success 200 {object} GeofenceResponse
// @Failure 400 {object} map[string]string "Invalid geofence ID"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Geofence not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /geofences/{id} [get]
func (h *Handler) getGeofence(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid geofence ID"})
		return
	}
	log := h.logger.WithField("method", "getGeofence").WithField("id", id)

	g, err := h.geofenceService.GetGeofence(c.Request.Context(), id)
	if err != nil {
		respondError(c, log, err, "get geofence")
		return
	}
	if g == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "geofence not found"})
		return
	}
	c.JSON(http.StatusOK, ModelToGeofenceResponse(g))
}

// @Summary Deactivate a geofence
// @Description Deactivate a geofence. Entities inside receive EXIT on their next position. Requires API key.
// @Tags Geofences
// @Security ApiKeyAuth
// @Param id path string true "Geofence ID"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]string "Invalid geofence ID"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Geofence not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /geofences/{id} [delete]
func (h *Handler) deactivateGeofence(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid geofence ID"})
		return
	}
	log := h.logger.WithField("method", "deactivateGeofence").WithField("id", id)

	if err := h.geofenceService.DeactivateGeofence(c.Request.Context(), id); err != nil {
		respondError(c, log, err, "deactivate geofence")
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Check a point against geofences
// @Description Active geofences of the entity type that contain the point. Requires API key.
// @Tags Geofences
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body GeofenceCheckRequest true "Point and entity"
// @Success 200 {array} GeofenceResponse
// @Failure 400 {object} map[string]string "Invalid request body or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /geofences/check [post]
func (h *Handler) checkGeofences(c *gin.Context) {
	log := h.logger.WithField("method", "checkGeofences")

	var input GeofenceCheckRequest
	if !h.bindJSON(c, log, &input) {
		return
	}

	found, err := h.geofenceService.ContainingGeofences(c.Request.Context(), input.Latitude, input.Longitude, models.EntityType(input.EntityType), input.EntityID)
	if err != nil {
		respondError(c, log, err, "check geofences")
		return
	}
	c.JSON(http.StatusOK, ModelsToGeofenceResponses(found))
}

// @Summary Geofence events of an entity
// @Description Recorded ENTER, EXIT and DWELL transitions of the entity, newest first. Requires API key.
// @Tags Geofences
// @Produce json
// @Security ApiKeyAuth
// @Param type path string true "Entity type" Enums(driver, vehicle, load, smart_hub)
// @Param id path string true "Entity ID"
// @Param limit query int false "Max records" default(100)
// @Success 200 {array} GeofenceEventResponse
// @Failure 400 {object} map[string]string "Invalid entity reference"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /positions/{type}/{id}/geofence-events [get]
func (h *Handler) listEntityEvents(c *gin.Context) {
	ref, ok := entityRefParam(c)
	if !ok {
		return
	}
	log := h.logger.WithFields(logrus.Fields{"method": "listEntityEvents", "entity_id": ref.EntityID})
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	events, err := h.geofenceService.ListEntityEvents(c.Request.Context(), ref, limit)
	if err != nil {
		respondError(c, log, err, "list geofence events")
		return
	}
	c.JSON(http.StatusOK, ModelsToEventResponses(events))
}
