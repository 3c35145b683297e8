package v1

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes регистрирует все маршруты API v1
func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	positions := api.Group("/positions")
	{
		positions.POST("", h.updatePosition)
		positions.POST("/bulk", h.bulkUpdatePositions)
		positions.POST("/ensure", h.ensurePosition)
		positions.POST("/current", h.getCurrentPositions)
		positions.GET("/nearby", h.getNearbyEntities)
		positions.GET("/distance", h.getDistance)
		positions.GET("/:type/:id", h.getPosition)
		positions.DELETE("/:type/:id", h.deletePosition)
		positions.GET("/:type/:id/history", h.getPositionHistory)
		positions.GET("/:type/:id/average-speed", h.getAverageSpeed)
		positions.GET("/:type/:id/geofence-events", h.listEntityEvents)
	}

	eta := api.Group("/eta")
	{
		eta.POST("", h.getETA)
		eta.POST("/route", h.getETAWithRoute)
		eta.POST("/entities", h.getETAForEntities)
		eta.POST("/destinations", h.getETAToDestinations)
		eta.POST("/remaining-distance", h.getRemainingDistance)
		eta.DELETE("/:type/:id/cache", h.invalidateETACache)
	}

	geofences := api.Group("/geofences")
	{
		geofences.POST("", h.createGeofence)
		geofences.GET("", h.listGeofences)
		geofences.POST("/check", h.checkGeofences)
		geofences.GET("/:id", h.getGeofence)
		geofences.DELETE("/:id", h.deactivateGeofence)
	}
}

// RegisterSystemRoutes - маршруты без аутентификации
func (h *Handler) RegisterSystemRoutes(api *gin.RouterGroup) {
	api.GET("/system/health", h.healthCheck)
}
