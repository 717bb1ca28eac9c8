package mocks

import (
	"context"

	"parking-system/internal/cache"
	"parking-system/internal/model"

	"github.com/stretchr/testify/mock"
)

var _ cache.OccupancyBoard = (*OccupancyBoardMock)(nil)

type OccupancyBoardMock struct {
	mock.Mock
}

func NewOccupancyBoardMock() *OccupancyBoardMock {
	return &OccupancyBoardMock{}
}

func (m *OccupancyBoardMock) WarmUp(ctx context.Context, class model.VehicleClass, total, occupied int) error {
	args := m.Called(ctx, class, total, occupied)
	return args.Error(0)
}

func (m *OccupancyBoardMock) Apply(ctx context.Context, event *model.ParkingEvent) (bool, error) {
	args := m.Called(ctx, event)
	return args.Bool(0), args.Error(1)
}

func (m *OccupancyBoardMock) Snapshot(ctx context.Context) (*cache.BoardSnapshot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cache.BoardSnapshot), args.Error(1)
}
