package handler_test

import (
	"net/http"
	"testing"
	"time"

	"parking-system/internal/cache"
	"parking-system/internal/model"
	apperrors "parking-system/pkg/app_errors"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSpotHandler(t *testing.T) {
	t.Run("GetSpots", func(t *testing.T) {
		router, deps := setupRouter()
		deps.spots.On("ListSpots", mock.Anything).Return([]*model.Spot{
			{ID: 1, VehicleClass: model.VehicleClassCar, Available: true},
			{ID: 4, VehicleClass: model.VehicleClassBike, Available: false},
		}, nil)

		w := doRequest(router, http.MethodGet, "/api/v1/spots", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[{"id":1,"vehicle_type":"CAR","available":true},{"id":4,"vehicle_type":"BIKE","available":false}]`, w.Body.String())
	})

	t.Run("GetSpot", func(t *testing.T) {
		router, deps := setupRouter()
		deps.spots.On("GetSpot", mock.Anything, 4).Return(&model.Spot{ID: 4, VehicleClass: model.VehicleClassBike, Available: true}, nil)

		w := doRequest(router, http.MethodGet, "/api/v1/spots/4", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "BIKE", decode(t, w)["vehicle_type"])
	})

	t.Run("GetSpot - NotFound", func(t *testing.T) {
		router, deps := setupRouter()
		deps.spots.On("GetSpot", mock.Anything, 99).Return(nil, apperrors.ErrSpotNotFound)

		w := doRequest(router, http.MethodGet, "/api/v1/spots/99", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("GetSpot - InvalidID", func(t *testing.T) {
		router, deps := setupRouter()
		w := doRequest(router, http.MethodGet, "/api/v1/spots/abc", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		deps.spots.AssertNotCalled(t, "GetSpot", mock.Anything, mock.Anything)
	})

	t.Run("GetAvailability", func(t *testing.T) {
		router, deps := setupRouter()
		deps.spots.On("Availability", mock.Anything).Return([]model.SpotAvailability{
			{VehicleClass: model.VehicleClassCar, Total: 3, Available: 1},
		}, nil)

		w := doRequest(router, http.MethodGet, "/api/v1/spots/availability", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[{"vehicle_type":"CAR","total":3,"available":1}]`, w.Body.String())
	})
}

func TestTicketHandler(t *testing.T) {
	out := now
	closed := &model.Ticket{
		ID: 2, Spot: &model.Spot{ID: 1, VehicleClass: model.VehicleClassCar},
		Plate: "AB123CD", Price: decimal.RequireFromString("1.5"), InTime: now.Add(-time.Hour), OutTime: &out,
	}

	t.Run("GetHistory", func(t *testing.T) {
		router, deps := setupRouter()
		deps.tickets.On("History", mock.Anything, "AB123CD").Return([]*model.Ticket{closed}, nil)

		w := doRequest(router, http.MethodGet, "/api/v1/tickets/ab123cd", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[{"id":2,"spot_id":1,"vehicle_type":"CAR","plate":"AB123CD","price":"1.50",
			"in_time":"2024-03-01T11:30:00Z","out_time":"2024-03-01T12:30:00Z","open":false}]`, w.Body.String())
	})

	t.Run("GetLatest - NotFound", func(t *testing.T) {
		router, deps := setupRouter()
		deps.tickets.On("FindOpenOrLatestTicket", mock.Anything, "NOPE").Return(nil, apperrors.ErrNoTicketFound)

		w := doRequest(router, http.MethodGet, "/api/v1/tickets/NOPE/latest", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("GetLatest", func(t *testing.T) {
		router, deps := setupRouter()
		deps.tickets.On("FindOpenOrLatestTicket", mock.Anything, "AB123CD").Return(closed, nil)

		w := doRequest(router, http.MethodGet, "/api/v1/tickets/AB123CD/latest", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "1.50", decode(t, w)["price"])
	})
}

func TestBoardHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		router, deps := setupRouter()
		deps.board.On("Snapshot", mock.Anything).Return(&cache.BoardSnapshot{
			Date:    "2024-03-01",
			Classes: []cache.ClassOccupancy{{VehicleClass: model.VehicleClassCar, Total: 3, Occupied: 1, Free: 2}},
			Revenue: decimal.RequireFromString("5.18"),
			Exits:   2,
		}, nil)

		w := doRequest(router, http.MethodGet, "/api/v1/board", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"date":"2024-03-01","classes":[{"vehicle_type":"CAR","total":3,"occupied":1,"free":2}],"revenue":"5.18","exits":2}`, w.Body.String())
	})

	t.Run("NotWarmed", func(t *testing.T) {
		router, deps := setupRouter()
		deps.board.On("Snapshot", mock.Anything).Return(nil, apperrors.ErrBoardNotWarmed)

		w := doRequest(router, http.MethodGet, "/api/v1/board", nil)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}
