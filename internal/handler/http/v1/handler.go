package v1

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shenikar/sos_detection_system/internal/config"
	"github.com/shenikar/sos_detection_system/internal/models"
	"github.com/shenikar/sos_detection_system/internal/service"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	detectionService service.DetectionService
	logger           *logrus.Logger
	validate         *validator.Validate
	cfg              *config.Config
}

func NewHandler(detectionService service.DetectionService, logger *logrus.Logger, cfg *config.Config) *Handler {
	return &Handler{
		detectionService: detectionService,
		logger:           logger,
		validate:         validator.New(),
		cfg:              cfg,
	}
}

// @Summary Report an SOS signal
// @Description Report a single SOS signal. The signal is always persisted; a mass incident is triggered when enough signals cluster in space and time. Requires API key and X-Reporter-ID.
// @Tags SOS
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param signal body ReportSOSRequest true "SOS signal payload"
// @Success 201 {object} SOSResponse
// @Failure 400 {object} map[string]string "Invalid request body or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /sos [post]
func (h *Handler) reportSOS(c *gin.Context) {
	var input ReportSOSRequest
	log := h.logger.WithField("method", "reportSOS")

	if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reporterID := c.GetHeader("X-Reporter-ID")

	outcome, err := h.detectionService.ReportSOS(c.Request.Context(), reporterID, DTOToSOSPayload(input))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnauthenticated):
			log.Warn("SOS request without reporter identity")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "reporter identity required"})
		case errors.Is(err, service.ErrValidation):
			log.WithError(err).Warn("SOS payload rejected")
			c.JSON(http.StatusBadRequest, gin.H{"error": "signal must carry coordinates or location text"})
		default:
			log.WithError(err).Error("Failed to process SOS signal")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}

	// Частичный успех (кластеризация пропущена) все равно 201: сигнал сохранен
	c.JSON(http.StatusCreated, OutcomeToSOSResponse(outcome))
}

// @Summary Get a list of signals
// @Description Get signals sorted by capture time ascending. Requires API key.
// @Tags Signals
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param reporter_id query string false "Filter by reporter"
// @Param unread_only query bool false "Only unread signals"
// @Param skip query int false "Number of records to skip" default(0)
// @Param limit query int false "Max records to return (cap 500)" default(100)
// @Success 200 {array} SignalResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /signals [get]
func (h *Handler) listSignals(c *gin.Context) {
	log := h.logger.WithField("method", "listSignals")
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	unreadOnly, _ := strconv.ParseBool(c.DefaultQuery("unread_only", "false"))

	filter := models.SignalFilter{
		ReporterID: c.Query("reporter_id"),
		UnreadOnly: unreadOnly,
	}

	signals, err := h.detectionService.ListSignals(c.Request.Context(), filter, skip, limit)
	if err != nil {
		log.WithError(err).Error("Failed to list signals from service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, ModelsToSignalResponses(signals))
}

// @Summary Mark signals as read
// @Description Mark a set of signals as read. Returns the number of updated records. Requires API key.
// @Tags Signals
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param ids body MarkSignalsReadRequest true "Signal IDs"
// @Success 200 {object} MarkSignalsReadResponse
// @Failure 400 {object} map[string]string "Invalid request body"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /signals/mark-read [post]
func (h *Handler) markSignalsRead(c *gin.Context) {
	var input MarkSignalsReadRequest
	log := h.logger.WithField("method", "markSignalsRead")

	if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.detectionService.MarkSignalsRead(c.Request.Context(), input.IDs)
	if err != nil {
		log.WithError(err).Error("Failed to mark signals read in service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, MarkSignalsReadResponse{Updated: updated})
}

// @Summary Delete a signal
// @Description Delete a signal record by its ID. Requires API key.
// @Tags Signals
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Signal ID"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]string "Invalid signal ID"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Signal not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /signals/{id} [delete]
func (h *Handler) deleteSignal(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signal ID"})
		return
	}
	log := h.logger.WithField("method", "deleteSignal").WithField("id", id)

	if err := h.detectionService.DeleteSignal(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "signal not found"})
			return
		}
		log.WithError(err).Error("Failed to delete signal in service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete signal"})
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary Get a list of incidents
// @Description Get a paginated list of mass incidents, newest first. Requires API key.
// @Tags Incidents
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Number of items per page" default(20)
// @Success 200 {array} IncidentResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /incidents [get]
func (h *Handler) listIncidents(c *gin.Context) {
	log := h.logger.WithField("method", "listIncidents")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))

	incidents, err := h.detectionService.ListIncidents(c.Request.Context(), page, pageSize)
	if err != nil {
		log.WithError(err).Error("Failed to list incidents from service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, ModelsToIncidentResponses(incidents))
}

// @Summary Get incident by ID
// @Description Get a single mass incident by its ID. Requires API key.
// @Tags Incidents
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Incident ID"
// @Success 200 {object} IncidentResponse
// @Failure 400 {object} map[string]string "Invalid incident ID"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Incident not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /incidents/{id} [get]
func (h *Handler) getIncident(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid incident ID"})
		return
	}
	log := h.logger.WithField("method", "getIncident").WithField("id", id)

	incident, err := h.detectionService.GetIncident(c.Request.Context(), id)
	if err != nil {
		log.WithError(err).Warn("Failed to get incident from service")
		c.JSON(http.StatusNotFound, gin.H{"error": "incident not found"})
		return
	}
	c.JSON(http.StatusOK, ModelToIncidentResponse(incident))
}

// @Summary Resolve an incident
// @Description Resolve an active incident by its ID. This is the only way an incident leaves the active state. Requires API key.
// @Tags Incidents
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Incident ID"
// @Success 200 "OK"
// @Failure 400 {object} map[string]string "Invalid incident ID"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Incident not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /incidents/{id}/resolve [put]
func (h *Handler) resolveIncident(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid incident ID"})
		return
	}
	log := h.logger.WithField("method", "resolveIncident").WithField("id", id)

	if err := h.detectionService.ResolveIncident(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "incident not found"})
			return
		}
		log.WithError(err).Error("Failed to resolve incident in service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve incident"})
		return
	}

	c.Status(http.StatusOK)
}

// @Summary Get reporter statistics
// @Description Get the count of distinct reporters within the stats window. Requires API key.
// @Tags Admin
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} StatsResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /signals/stats [get]
func (h *Handler) getStats(c *gin.Context) {
	log := h.logger.WithField("method", "getStats")

	reporterCount, err := h.detectionService.GetStats(c.Request.Context())
	if err != nil {
		log.WithError(err).Error("Failed to get stats from service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, StatsResponse{ReporterCount: reporterCount})
}

// @Summary Get application health status
// @Description Get health status of the application
// @Tags System
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string "Status OK"
// @Router /system/health [get]
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
