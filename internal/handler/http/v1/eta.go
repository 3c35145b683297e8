package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/shenikar/fleet_location_core/internal/models"
)

// @Summary Estimate arrival time
// @Description Straight-line ETA from the current position to a destination. Requires API key.
// @Tags ETA
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body ETARequest true "ETA request"
// @Success 200 {object} models.ETAResult
// @Failure 400 {object} map[string]string "Invalid request body or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Position not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /eta [post]
func (h *Handler) getETA(c *gin.Context) {
	h.estimate(c, "getETA", false)
}

// @Summary Estimate arrival time along a route
// @Description ETA along the given waypoints with per-segment breakdown. Requires API key.
// @Tags ETA
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body ETARequest true "ETA request with route"
// @Success 200 {object} models.ETAResult
// @Failure 400 {object} map[string]string "Invalid request body or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Position not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /eta/route [post]
func (h *Handler) getETAWithRoute(c *gin.Context) {
	h.estimate(c, "getETAWithRoute", true)
}

func (h *Handler) estimate(c *gin.Context, method string, withRoute bool) {
	log := h.logger.WithField("method", method)

	var input ETARequest
	if !h.bindJSON(c, log, &input) {
		return
	}
	req := DTOToETARequest(input)
	log = log.WithFields(logrus.Fields{"entity_id": req.EntityID, "entity_type": req.EntityType})

	var (
		result *models.ETAResult
		err    error
	)
	if withRoute {
		result, err = h.etaService.GetETAWithRouteInfo(c.Request.Context(), req)
	} else {
		result, err = h.etaService.GetETA(c.Request.Context(), req)
	}
	if err != nil {
		respondError(c, log, err, "estimate arrival")
		return
	}
	if result == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "position not found"})
		return
	}
	c.JSON(http.StatusOK, result)
}

// @Summary ETA for several entities
// @Description ETA of each entity to one destination. Per-entity failures are reported inline. Requires API key.
// @Tags ETA
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body MultiEntityETARequest true "Entities and destination"
// @Success 200 {array} models.EntityETA
// @Failure 400 {object} map[string]string "Invalid request body or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /eta/entities [post]
func (h *Handler) getETAForEntities(c *gin.Context) {
	log := h.logger.WithField("method", "getETAForEntities")

	var input MultiEntityETARequest
	if !h.bindJSON(c, log, &input) {
		return
	}

	results, err := h.etaService.GetETAForMultipleEntities(c.Request.Context(), input.Entities, input.Destination)
	if err != nil {
		respondError(c, log, err, "estimate arrivals")
		return
	}
	c.JSON(http.StatusOK, results)
}

// @Summary ETA to several destinations
// @Description ETA of one entity to each destination. Requires API key.
// @Tags ETA
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body MultiDestinationETARequest true "Entity and destinations"
// @Success 200 {array} models.DestinationETA
// @Failure 400 {object} map[string]string "Invalid request body or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Position not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /eta/destinations [post]
func (h *Handler) getETAToDestinations(c *gin.Context) {
	log := h.logger.WithField("method", "getETAToDestinations")

	var input MultiDestinationETARequest
	if !h.bindJSON(c, log, &input) {
		return
	}
	ref := models.EntityRef{EntityID: input.EntityID, EntityType: models.EntityType(input.EntityType)}

	results, err := h.etaService.GetETAToMultipleDestinations(c.Request.Context(), ref, input.Destinations)
	if err != nil {
		respondError(c, log, err, "estimate arrivals")
		return
	}
	if results == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "position not found"})
		return
	}
	c.JSON(http.StatusOK, results)
}

// @Summary Remaining distance
// @Description Distance left to the destination in kilometres, along the route when one is given. Requires API key.
// @Tags ETA
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body ETARequest true "Entity, destination and optional route"
// @Success 200 {object} RemainingDistanceResponse
// @Failure 400 {object} map[string]string "Invalid request body or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Position not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /eta/remaining-distance [post]
func (h *Handler) getRemainingDistance(c *gin.Context) {
	log := h.logger.WithField("method", "getRemainingDistance")

	var input ETARequest
	if !h.bindJSON(c, log, &input) {
		return
	}
	ref := models.EntityRef{EntityID: input.EntityID, EntityType: models.EntityType(input.EntityType)}

	d, err := h.etaService.GetRemainingDistance(c.Request.Context(), ref, input.Destination, input.Route)
	if err != nil {
		respondError(c, log, err, "calculate remaining distance")
		return
	}
	if d == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "position not found"})
		return
	}
	c.JSON(http.StatusOK, RemainingDistanceResponse{DistanceKm: *d})
}

// @Summary Invalidate cached ETAs
// @Description Drop every cached ETA of the entity. Requires API key.
// @Tags ETA
// @Produce json
// @Security ApiKeyAuth
// @Param type path string true "Entity type" Enums(driver, vehicle, load, smart_hub)
// @Param id path string true "Entity ID"
// @Success 200 {object} InvalidateResponse
// @Failure 400 {object} map[string]string "Invalid entity reference"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /eta/{type}/{id}/cache [delete]
func (h *Handler) invalidateETACache(c *gin.Context) {
	ref, ok := entityRefParam(c)
	if !ok {
		return
	}
	log := h.logger.WithFields(logrus.Fields{"method": "invalidateETACache", "entity_id": ref.EntityID})

	n, err := h.etaService.InvalidateETACache(c.Request.Context(), ref)
	if err != nil {
		respondError(c, log, err, "invalidate eta cache")
		return
	}
	c.JSON(http.StatusOK, InvalidateResponse{Deleted: n})
}
