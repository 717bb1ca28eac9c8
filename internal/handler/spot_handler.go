package handler

import (
	"net/http"

	"parking-system/internal/service"
	"parking-system/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type SpotUri struct {
	ID int `uri:"id" binding:"required,min=1"`
}

type SpotHandler struct {
	spots service.SpotAllocator
	log   *zap.Logger
}

func NewSpotHandler(spots service.SpotAllocator, log *zap.Logger) *SpotHandler {
	return &SpotHandler{spots: spots, log: logger.WithComponent(log, "handler")}
}

func (h *SpotHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1")
	{
		router.GET("spots", h.GetSpots)
		router.GET("spots/availability", h.GetAvailability)
		router.GET("spots/:id", h.GetSpot)
	}
}

func (h *SpotHandler) GetSpots(c *gin.Context) {
	spots, err := h.spots.ListSpots(c.Request.Context())
	if err != nil {
		handleError(c, h.log, err, "GetSpots")
		return
	}
	handleSuccess(c, spots, http.StatusOK)
}

func (h *SpotHandler) GetSpot(c *gin.Context) {
	var uri SpotUri
	if err := BindUri(c, &uri); err != nil {
		return
	}

	spot, err := h.spots.GetSpot(c.Request.Context(), uri.ID)
	if err != nil {
		handleError(c, h.log, err, "GetSpot")
		return
	}
	handleSuccess(c, spot, http.StatusOK)
}

func (h *SpotHandler) GetAvailability(c *gin.Context) {
	availability, err := h.spots.Availability(c.Request.Context())
	if err != nil {
		handleError(c, h.log, err, "GetAvailability")
		return
	}
	handleSuccess(c, availability, http.StatusOK)
}
