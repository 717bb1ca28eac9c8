package shell_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"parking-system/internal/clock"
	"parking-system/internal/mocks"
	"parking-system/internal/model"
	"parking-system/internal/shell"
	apperrors "parking-system/pkg/app_errors"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var now = time.Date(2024, 3, 1, 11, 0, 0, 0, time.UTC)

func newShell(svc *mocks.ParkingServiceMock, in string) (*shell.Shell, *bytes.Buffer) {
	var out bytes.Buffer
	return shell.NewShell(svc, strings.NewReader(in), &out, clock.FixedClock{At: now}, zap.NewNop()), &out
}

func TestShell_Shutdown(t *testing.T) {
	svc := mocks.NewParkingServiceMock()
	sh, out := newShell(svc, "3\n")

	require.NoError(t, sh.Run(context.Background()))
	assert.Contains(t, out.String(), "Welcome to Parking System!")
	assert.Contains(t, out.String(), "Exiting from the system!")
	svc.AssertNotCalled(t, "ProcessIncomingVehicle", mock.Anything, mock.Anything)
}

func TestShell_UnknownOptionReprompts(t *testing.T) {
	svc := mocks.NewParkingServiceMock()
	sh, out := newShell(svc, "7\nabc\n3\n")

	require.NoError(t, sh.Run(context.Background()))
	assert.Equal(t, 2, strings.Count(out.String(), "Unsupported option"))
	assert.Equal(t, 3, strings.Count(out.String(), "3 Shutdown System"))
}

func TestShell_InputClosed(t *testing.T) {
	svc := mocks.NewParkingServiceMock()
	sh, _ := newShell(svc, "")

	assert.NoError(t, sh.Run(context.Background()))
}

func TestShell_CanceledContext(t *testing.T) {
	svc := mocks.NewParkingServiceMock()
	sh, _ := newShell(svc, "1\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sh.Run(ctx), context.Canceled)
}

func TestShell_Incoming(t *testing.T) {
	svc := mocks.NewParkingServiceMock()
	svc.On("ProcessIncomingVehicle", mock.Anything, mock.Anything).Return(&model.EntryReceipt{
		TicketID: 1, SpotID: 2, VehicleClass: model.VehicleClassCar, Plate: "AB123CD", InTime: now,
	}, nil).Once()
	sh, out := newShell(svc, "1\n3\n")

	require.NoError(t, sh.Run(context.Background()))
	assert.Contains(t, out.String(), "Please park your vehicle in spot number: 2")
	assert.Contains(t, out.String(), "Recorded in-time for vehicle number: AB123CD is: 2024-03-01 11:00:00")
	svc.AssertExpectations(t)
}

func TestShell_IncomingFailure(t *testing.T) {
	svc := mocks.NewParkingServiceMock()
	svc.On("ProcessIncomingVehicle", mock.Anything, mock.Anything).
		Return(nil, apperrors.NewStepError("find parking spot", "", 0, apperrors.ErrNoSpotAvailable)).Once()
	sh, out := newShell(svc, "1\n3\n")

	require.NoError(t, sh.Run(context.Background()))
	assert.Contains(t, out.String(), "Unable to process incoming vehicle")
	assert.Contains(t, out.String(), "Exiting from the system!")
}

func TestShell_Exiting(t *testing.T) {
	svc := mocks.NewParkingServiceMock()
	svc.On("ProcessExitingVehicle", mock.Anything, mock.Anything, now).Return(&model.ExitReceipt{
		TicketID: 1, SpotID: 2, VehicleClass: model.VehicleClassCar, Plate: "AB123CD",
		Price: decimal.RequireFromString("1.43"), Loyalty: true, InTime: now.Add(-time.Hour), OutTime: now,
	}, nil).Once()
	sh, out := newShell(svc, "2\n3\n")

	require.NoError(t, sh.Run(context.Background()))
	assert.Contains(t, out.String(), "5% discount")
	assert.Contains(t, out.String(), "Please pay the parking fare: 1.43")
	svc.AssertExpectations(t)
}

func TestShell_ExitingFailure(t *testing.T) {
	svc := mocks.NewParkingServiceMock()
	svc.On("ProcessExitingVehicle", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, apperrors.ErrNoTicketFound).Once()
	sh, out := newShell(svc, "2\n3\n")

	require.NoError(t, sh.Run(context.Background()))
	assert.Contains(t, out.String(), "Unable to process exiting vehicle")
}
