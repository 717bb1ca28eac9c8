package mocks

import (
	"context"
	"time"

	"parking-system/internal/model"
	"parking-system/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

var (
	_ repository.SpotRepository   = (*SpotRepositoryMock)(nil)
	_ repository.TicketRepository = (*TicketRepositoryMock)(nil)
)

type SpotRepositoryMock struct {
	mock.Mock
}

func NewSpotRepositoryMock() *SpotRepositoryMock {
	return &SpotRepositoryMock{}
}

func (m *SpotRepositoryMock) FindByID(ctx context.Context, id int) (*model.Spot, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Spot), args.Error(1)
}

func (m *SpotRepositoryMock) FindFirstAvailable(ctx context.Context, class model.VehicleClass) (*model.Spot, error) {
	args := m.Called(ctx, class)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Spot), args.Error(1)
}

func (m *SpotRepositoryMock) SetAvailability(ctx context.Context, id int, available bool) error {
	args := m.Called(ctx, id, available)
	return args.Error(0)
}

func (m *SpotRepositoryMock) List(ctx context.Context) ([]*model.Spot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Spot), args.Error(1)
}

func (m *SpotRepositoryMock) CountAvailableByClass(ctx context.Context) ([]model.SpotAvailability, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.SpotAvailability), args.Error(1)
}

type TicketRepositoryMock struct {
	mock.Mock
}

func NewTicketRepositoryMock() *TicketRepositoryMock {
	return &TicketRepositoryMock{}
}

func (m *TicketRepositoryMock) Create(ctx context.Context, ticket *model.Ticket) (*model.Ticket, error) {
	args := m.Called(ctx, ticket)
	if fn, ok := args.Get(0).(func(context.Context, *model.Ticket) *model.Ticket); ok {
		return fn(ctx, ticket), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Ticket), args.Error(1)
}

func (m *TicketRepositoryMock) FindLatestByPlate(ctx context.Context, plate string) (*model.Ticket, error) {
	args := m.Called(ctx, plate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Ticket), args.Error(1)
}

func (m *TicketRepositoryMock) UpdateExit(ctx context.Context, id int, price decimal.Decimal, outTime time.Time) error {
	args := m.Called(ctx, id, price, outTime)
	return args.Error(0)
}

func (m *TicketRepositoryMock) CountByPlate(ctx context.Context, plate string) (int, error) {
	args := m.Called(ctx, plate)
	return args.Int(0), args.Error(1)
}

func (m *TicketRepositoryMock) ListByPlate(ctx context.Context, plate string) ([]*model.Ticket, error) {
	args := m.Called(ctx, plate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Ticket), args.Error(1)
}
