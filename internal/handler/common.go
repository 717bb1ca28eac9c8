package handler

import (
	"errors"
	"net/http"

	apperrors "parking-system/pkg/app_errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func BindJson(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return err
	}
	return nil
}

func BindUri(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindUri(obj); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return err
	}
	return nil
}

type errorMapping struct {
	target  error
	status  int
	message string
}

// 依序比對，ErrPartialExitFailure 需排在 ErrStoreWrite 之前
var errorMappings = []errorMapping{
	{apperrors.ErrInvalidSelection, http.StatusBadRequest, "Invalid vehicle type selection"},
	{apperrors.ErrInvalidPlate, http.StatusBadRequest, "Invalid vehicle registration number"},
	{apperrors.ErrInvalidInterval, http.StatusBadRequest, "Invalid parking interval"},
	{apperrors.ErrNoSpotAvailable, http.StatusConflict, "No parking spot available"},
	{apperrors.ErrSpotStateConflict, http.StatusConflict, "Parking spot state changed, please retry"},
	{apperrors.ErrNoTicketFound, http.StatusNotFound, "No open ticket found"},
	{apperrors.ErrSpotNotFound, http.StatusNotFound, "Parking spot not found"},
	{apperrors.ErrNonPositiveFare, http.StatusUnprocessableEntity, "Computed fare is not positive"},
	{apperrors.ErrBoardNotWarmed, http.StatusServiceUnavailable, "Occupancy board not ready"},
	{apperrors.ErrPartialExitFailure, http.StatusInternalServerError, "Ticket closed but spot was not released"},
}

func handleError(c *gin.Context, log *zap.Logger, err error, operation string) {
	log = log.With(zap.String("operation", operation), zap.Error(err))

	body := gin.H{}
	var stepErr *apperrors.StepError
	if errors.As(err, &stepErr) {
		body["step"] = stepErr.Step
	}

	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			if m.status >= http.StatusInternalServerError {
				log.Error(m.message)
			} else {
				log.Warn(m.message)
			}
			body["error"] = m.message
			c.JSON(m.status, body)
			return
		}
	}

	log.Error("Unexpected error")
	body["error"] = "Internal server error"
	c.JSON(http.StatusInternalServerError, body)
}

func handleSuccess(c *gin.Context, data interface{}, statusCode int) {
	if data != nil {
		c.JSON(statusCode, data)
	} else {
		c.Status(statusCode)
	}
}
