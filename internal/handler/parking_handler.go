package handler

import (
	"net/http"
	"time"

	"parking-system/internal/clock"
	"parking-system/internal/input"
	"parking-system/internal/model"
	"parking-system/internal/service"
	"parking-system/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CreateEntryRequest struct {
	// 1 CAR, 2 BIKE
	VehicleType int    `json:"vehicle_type" binding:"required"`
	Plate       string `json:"plate" binding:"required"`
}

type CreateExitRequest struct {
	Plate   string     `json:"plate" binding:"required"`
	OutTime *time.Time `json:"out_time"`
}

type EntryResponse struct {
	TicketID    int    `json:"ticket_id"`
	SpotID      int    `json:"spot_id"`
	VehicleType string `json:"vehicle_type"`
	Plate       string `json:"plate"`
	InTime      string `json:"in_time"`
}

type ExitResponse struct {
	TicketID    int    `json:"ticket_id"`
	SpotID      int    `json:"spot_id"`
	VehicleType string `json:"vehicle_type"`
	Plate       string `json:"plate"`
	Price       string `json:"price"`
	Loyalty     bool   `json:"loyalty"`
	InTime      string `json:"in_time"`
	OutTime     string `json:"out_time"`
}

func newEntryResponse(r *model.EntryReceipt) EntryResponse {
	return EntryResponse{
		TicketID:    r.TicketID,
		SpotID:      r.SpotID,
		VehicleType: r.VehicleClass.String(),
		Plate:       r.Plate,
		InTime:      r.InTime.UTC().Format(time.RFC3339),
	}
}

func newExitResponse(r *model.ExitReceipt) ExitResponse {
	return ExitResponse{
		TicketID:    r.TicketID,
		SpotID:      r.SpotID,
		VehicleType: r.VehicleClass.String(),
		Plate:       r.Plate,
		Price:       r.Price.StringFixed(2),
		Loyalty:     r.Loyalty,
		InTime:      r.InTime.UTC().Format(time.RFC3339),
		OutTime:     r.OutTime.UTC().Format(time.RFC3339),
	}
}

type ParkingHandler struct {
	service service.ParkingService
	clock   clock.Clock
	log     *zap.Logger
}

func NewParkingHandler(service service.ParkingService, clk clock.Clock, log *zap.Logger) *ParkingHandler {
	if clk == nil {
		clk = clock.SystemClock{}
	}
	return &ParkingHandler{service: service, clock: clk, log: logger.WithComponent(log, "handler")}
}

func (h *ParkingHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1/parking")
	{
		router.POST("entries", h.CreateEntry)
		router.POST("exits", h.CreateExit)
	}
}

func (h *ParkingHandler) CreateEntry(c *gin.Context) {
	var req CreateEntryRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	// 先檢查車牌，避免空白車牌占用車位
	plate, err := service.NormalizePlate(req.Plate)
	if err != nil {
		handleError(c, h.log, err, "CreateEntry")
		return
	}

	receipt, err := h.service.ProcessIncomingVehicle(c.Request.Context(), input.NewStaticReader(req.VehicleType, plate))
	if err != nil {
		handleError(c, h.log, err, "CreateEntry")
		return
	}

	handleSuccess(c, newEntryResponse(receipt), http.StatusCreated)
}

func (h *ParkingHandler) CreateExit(c *gin.Context) {
	var req CreateExitRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	outTime := h.clock.Now()
	if req.OutTime != nil {
		outTime = req.OutTime.UTC()
	}

	receipt, err := h.service.ProcessExitingVehicle(c.Request.Context(), input.NewStaticReader(0, req.Plate), outTime)
	if err != nil {
		handleError(c, h.log, err, "CreateExit")
		return
	}

	handleSuccess(c, newExitResponse(receipt), http.StatusOK)
}
