package mocks

import (
	"context"

	"parking-system/internal/model"
	"parking-system/internal/queue"

	"github.com/stretchr/testify/mock"
)

var _ queue.EventQueue = (*EventQueueMock)(nil)

type EventQueueMock struct {
	mock.Mock
}

func NewEventQueueMock() *EventQueueMock {
	return &EventQueueMock{}
}

func (m *EventQueueMock) Publish(ctx context.Context, event *model.ParkingEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *EventQueueMock) Subscribe(ctx context.Context) (<-chan queue.Delivery, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(<-chan queue.Delivery), args.Error(1)
}
