package v1

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/shenikar/fleet_location_core/internal/config"
	"github.com/shenikar/fleet_location_core/internal/models"
	"github.com/shenikar/fleet_location_core/internal/service"
)

// ReadinessProbe - компонент, который может быть не готов (потребители потоков)
type ReadinessProbe interface {
	Ready() bool
}

type Handler struct {
	positionService service.PositionService
	etaService      service.ETAService
	geofenceService service.GeofenceService
	probes          map[string]ReadinessProbe
	logger          *logrus.Logger
	validate        *validator.Validate
	cfg             *config.Config
}

func NewHandler(
	positionService service.PositionService,
	etaService service.ETAService,
	geofenceService service.GeofenceService,
	probes map[string]ReadinessProbe,
	logger *logrus.Logger,
	cfg *config.Config,
) *Handler {
	return &Handler{
		positionService: positionService,
		etaService:      etaService,
		geofenceService: geofenceService,
		probes:          probes,
		logger:          logger,
		validate:        validator.New(),
		cfg:             cfg,
	}
}

// bindJSON разбирает и валидирует тело. При ошибке ответ уже отправлен.
func (h *Handler) bindJSON(c *gin.Context, log *logrus.Entry, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

// respondError переводит ошибку сервиса в HTTP-статус
func respondError(c *gin.Context, log *logrus.Entry, err error, action string) {
	switch {
	case errors.Is(err, models.ErrStaleUpdate):
		log.WithError(err).Info("Stale position rejected")
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrValidation):
		log.WithError(err).Warn("Request rejected by service")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		log.WithError(err).Errorf("Failed to %s in service", action)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// entityRefParam читает :type и :id из пути
func entityRefParam(c *gin.Context) (models.EntityRef, bool) {
	ref := models.EntityRef{EntityID: c.Param("id"), EntityType: models.EntityType(c.Param("type"))}
	if ref.EntityID == "" || !ref.EntityType.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid entity reference"})
		return ref, false
	}
	return ref, true
}

// floatQuery - обязательный числовой параметр запроса
func floatQuery(c *gin.Context, name string) (float64, bool) {
	v, err := strconv.ParseFloat(c.Query(name), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return v, true
}

// @Summary Get application health status
// @Description Get health status of the application and readiness of stream consumers
// @Tags System
// @Accept json
// @Produce json
// @Success 200 {object} HealthResponse "Status OK"
// @Failure 503 {object} HealthResponse "A consumer is not ready"
// @Router /system/health [get]
func (h *Handler) healthCheck(c *gin.Context) {
	resp := HealthResponse{Status: "ok"}
	code := http.StatusOK
	if len(h.probes) > 0 {
		resp.Components = make(map[string]bool, len(h.probes))
		for name, p := range h.probes {
			ready := p.Ready()
			resp.Components[name] = ready
			if !ready {
				resp.Status = "degraded"
				code = http.StatusServiceUnavailable
			}
		}
	}
	c.JSON(code, resp)
}
