package mocks

import (
	"context"
	"time"

	"parking-system/internal/input"
	"parking-system/internal/model"

	"github.com/stretchr/testify/mock"
)

// ParkingServiceMock 給 handler 與 shell 測試使用
type ParkingServiceMock struct {
	mock.Mock
}

func NewParkingServiceMock() *ParkingServiceMock {
	return &ParkingServiceMock{}
}

func (m *ParkingServiceMock) ProcessIncomingVehicle(ctx context.Context, in input.Reader) (*model.EntryReceipt, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.EntryReceipt), args.Error(1)
}

func (m *ParkingServiceMock) ProcessExitingVehicle(ctx context.Context, in input.Reader, outTime time.Time) (*model.ExitReceipt, error) {
	args := m.Called(ctx, in, outTime)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ExitReceipt), args.Error(1)
}

type SpotAllocatorMock struct {
	mock.Mock
}

func NewSpotAllocatorMock() *SpotAllocatorMock {
	return &SpotAllocatorMock{}
}

func (m *SpotAllocatorMock) FindFreeSpot(ctx context.Context, class model.VehicleClass) (*model.Spot, error) {
	args := m.Called(ctx, class)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Spot), args.Error(1)
}

func (m *SpotAllocatorMock) MarkOccupied(ctx context.Context, spot *model.Spot) error {
	args := m.Called(ctx, spot)
	return args.Error(0)
}

func (m *SpotAllocatorMock) MarkFree(ctx context.Context, spot *model.Spot) error {
	args := m.Called(ctx, spot)
	return args.Error(0)
}

func (m *SpotAllocatorMock) GetSpot(ctx context.Context, id int) (*model.Spot, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Spot), args.Error(1)
}

func (m *SpotAllocatorMock) ListSpots(ctx context.Context) ([]*model.Spot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Spot), args.Error(1)
}

func (m *SpotAllocatorMock) Availability(ctx context.Context) ([]model.SpotAvailability, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.SpotAvailability), args.Error(1)
}

type TicketLedgerMock struct {
	mock.Mock
}

func NewTicketLedgerMock() *TicketLedgerMock {
	return &TicketLedgerMock{}
}

func (m *TicketLedgerMock) CreateOpenTicket(ctx context.Context, spot *model.Spot, plate string, inTime time.Time) (*model.Ticket, error) {
	args := m.Called(ctx, spot, plate, inTime)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Ticket), args.Error(1)
}

func (m *TicketLedgerMock) FindOpenOrLatestTicket(ctx context.Context, plate string) (*model.Ticket, error) {
	args := m.Called(ctx, plate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Ticket), args.Error(1)
}

func (m *TicketLedgerMock) CloseTicket(ctx context.Context, ticket *model.Ticket) error {
	args := m.Called(ctx, ticket)
	return args.Error(0)
}

func (m *TicketLedgerMock) CountTicketsFor(ctx context.Context, plate string) (int, error) {
	args := m.Called(ctx, plate)
	return args.Int(0), args.Error(1)
}

func (m *TicketLedgerMock) IsLoyaltyCustomer(count int) bool {
	args := m.Called(count)
	return args.Bool(0)
}

func (m *TicketLedgerMock) History(ctx context.Context, plate string) ([]*model.Ticket, error) {
	args := m.Called(ctx, plate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Ticket), args.Error(1)
}
