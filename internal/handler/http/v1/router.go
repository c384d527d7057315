package v1

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes регистрирует маршруты API v1, требующие API-ключ
func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	// Прием сигналов SOS
	api.POST("/sos", h.reportSOS)

	// Маршруты для работы с записями сигналов
	signals := api.Group("/signals")
	{
		signals.GET("", h.listSignals)
		signals.POST("/mark-read", h.markSignalsRead)
		signals.DELETE("/:id", h.deleteSignal)
		signals.GET("/stats", h.getStats)
	}

	// Маршруты для работы с массовыми инцидентами
	incidents := api.Group("/incidents")
	{
		incidents.GET("", h.listIncidents)
		incidents.GET("/:id", h.getIncident)
		incidents.PUT("/:id/resolve", h.resolveIncident)
	}

}

// RegisterSystemRoutes регистрирует служебные маршруты. Health-check доступен
// без API-ключа: его опрашивают балансировщики и оркестраторы.
func (h *Handler) RegisterSystemRoutes(api *gin.RouterGroup) {
	api.GET("/system/health", h.healthCheck)
}
