package handler

import (
	"net/http"

	"parking-system/internal/model"
	"parking-system/internal/service"
	"parking-system/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type TicketHandler struct {
	tickets service.TicketLedger
	log     *zap.Logger
}

func NewTicketHandler(tickets service.TicketLedger, log *zap.Logger) *TicketHandler {
	return &TicketHandler{tickets: tickets, log: logger.WithComponent(log, "handler")}
}

func (h *TicketHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1")
	{
		router.GET("tickets/:plate", h.GetHistory)
		router.GET("tickets/:plate/latest", h.GetLatest)
	}
}

func (h *TicketHandler) GetHistory(c *gin.Context) {
	plate, err := service.NormalizePlate(c.Param("plate"))
	if err != nil {
		handleError(c, h.log, err, "GetHistory")
		return
	}

	tickets, err := h.tickets.History(c.Request.Context(), plate)
	if err != nil {
		handleError(c, h.log, err, "GetHistory")
		return
	}

	resp := make([]model.TicketResponse, 0, len(tickets))
	for _, t := range tickets {
		resp = append(resp, t.ToResponse())
	}
	handleSuccess(c, resp, http.StatusOK)
}

func (h *TicketHandler) GetLatest(c *gin.Context) {
	plate, err := service.NormalizePlate(c.Param("plate"))
	if err != nil {
		handleError(c, h.log, err, "GetLatest")
		return
	}

	ticket, err := h.tickets.FindOpenOrLatestTicket(c.Request.Context(), plate)
	if err != nil {
		handleError(c, h.log, err, "GetLatest")
		return
	}
	handleSuccess(c, ticket.ToResponse(), http.StatusOK)
}
