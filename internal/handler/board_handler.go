package handler

import (
	"net/http"

	"parking-system/internal/cache"
	"parking-system/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type BoardHandler struct {
	board cache.OccupancyBoard
	log   *zap.Logger
}

func NewBoardHandler(board cache.OccupancyBoard, log *zap.Logger) *BoardHandler {
	return &BoardHandler{board: board, log: logger.WithComponent(log, "handler")}
}

func (h *BoardHandler) RegisterRoutes(r *gin.Engine) {
	r.GET("/api/v1/board", h.GetBoard)
}

func (h *BoardHandler) GetBoard(c *gin.Context) {
	snapshot, err := h.board.Snapshot(c.Request.Context())
	if err != nil {
		handleError(c, h.log, err, "GetBoard")
		return
	}
	handleSuccess(c, gin.H{
		"date":    snapshot.Date,
		"classes": snapshot.Classes,
		"revenue": snapshot.Revenue.StringFixed(2),
		"exits":   snapshot.Exits,
	}, http.StatusOK)
}
