package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"parking-system/internal/clock"
	"parking-system/internal/input"
	"parking-system/internal/model"
	"parking-system/internal/queue"
	apperrors "parking-system/pkg/app_errors"
	"parking-system/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// 工作流程步驟名稱，出現在 StepError 與日誌中
const (
	StepReadSelection = "read vehicle type"
	StepFindSpot      = "find parking spot"
	StepReserveSpot   = "reserve parking spot"
	StepReadPlate     = "read registration number"
	StepOpenTicket    = "open ticket"
	StepFindTicket    = "find ticket"
	StepCountTickets  = "count tickets"
	StepComputeFare   = "compute fare"
	StepCloseTicket   = "close ticket"
	StepReleaseSpot   = "release parking spot"
)

type ParkingService interface {
	// 車輛進場：選車種、占用車位、讀車牌、開票
	ProcessIncomingVehicle(ctx context.Context, in input.Reader) (*model.EntryReceipt, error)
	// 車輛出場：讀車牌、計費、關票、釋放車位
	ProcessExitingVehicle(ctx context.Context, in input.Reader, outTime time.Time) (*model.ExitReceipt, error)
}

type ParkingServiceImpl struct {
	// 同一時間只處理一筆交易
	mu      sync.Mutex
	spots   SpotAllocator
	tickets TicketLedger
	fares   FareCalculator
	clock   clock.Clock
	events  queue.EventQueue
	log     *zap.Logger
}

// NewParkingService events 可為 nil，表示不發送事件
func NewParkingService(
	spots SpotAllocator,
	tickets TicketLedger,
	fares FareCalculator,
	clk clock.Clock,
	events queue.EventQueue,
	log *zap.Logger,
) ParkingService {
	if clk == nil {
		clk = clock.SystemClock{}
	}
	return &ParkingServiceImpl{
		spots:   spots,
		tickets: tickets,
		fares:   fares,
		clock:   clk,
		events:  events,
		log:     logger.WithComponent(log, "parking"),
	}
}

// workflow 追蹤單筆交易的狀態，失敗時停在目前狀態
type workflow struct {
	state model.WorkflowState
	log   *zap.Logger
}

func (w *workflow) advance(next model.WorkflowState) error {
	if !w.state.CanTransitionTo(next) {
		return apperrors.Invariant("illegal transition %s -> %s", w.state, next)
	}
	w.state = next
	return nil
}

// abort 記錄失敗並組出 StepError
func (w *workflow) abort(step, plate string, spotID int, err error) error {
	log := w.log.With(
		zap.String("step", step),
		zap.String("state", string(w.state)),
		zap.String("plate", plate),
		zap.Int("spot_id", spotID),
		zap.Error(err),
	)
	switch {
	case errors.Is(err, apperrors.ErrStoreWrite),
		errors.Is(err, apperrors.ErrPartialExitFailure),
		errors.Is(err, apperrors.ErrInvariantViolation):
		log.Error("Workflow aborted")
	default:
		log.Warn("Workflow aborted")
	}
	return apperrors.NewStepError(step, plate, spotID, err)
}

// NormalizePlate 去除前後空白並轉大寫，空字串回傳 ErrInvalidPlate
func NormalizePlate(raw string) (string, error) {
	plate := strings.ToUpper(strings.TrimSpace(raw))
	if plate == "" {
		return "", apperrors.ErrInvalidPlate
	}
	return plate, nil
}

func (s *ParkingServiceImpl) ProcessIncomingVehicle(ctx context.Context, in input.Reader) (*model.EntryReceipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wf := &workflow{state: model.StateAwaitingSpot, log: s.log.With(zap.String("workflow", "vehicle_in"))}
	if err := ctx.Err(); err != nil {
		return nil, wf.abort(StepReadSelection, "", 0, err)
	}

	// 1. 讀取車種
	selection, err := in.ReadVehicleClassSelection()
	if err != nil {
		return nil, wf.abort(StepReadSelection, "", 0, err)
	}
	class, err := model.ParseVehicleClassSelection(selection)
	if err != nil {
		return nil, wf.abort(StepReadSelection, "", 0, fmt.Errorf("%w: %d", err, selection))
	}

	// 2. 找空位，沒有空位時不做任何修改
	spot, err := s.spots.FindFreeSpot(ctx, class)
	if err != nil {
		return nil, wf.abort(StepFindSpot, "", 0, err)
	}

	// 3. 先占用車位再讀車牌
	if err := s.spots.MarkOccupied(ctx, spot); err != nil {
		return nil, wf.abort(StepReserveSpot, "", spot.ID, err)
	}
	if err := wf.advance(model.StateSpotReserved); err != nil {
		return nil, wf.abort(StepReserveSpot, "", spot.ID, err)
	}

	// 4. 讀車牌
	raw, err := in.ReadPlate()
	if err != nil {
		return nil, wf.abort(StepReadPlate, "", spot.ID, err)
	}
	plate, err := NormalizePlate(raw)
	if err != nil {
		return nil, wf.abort(StepReadPlate, "", spot.ID, err)
	}

	// 5. 開票
	ticket, err := s.tickets.CreateOpenTicket(ctx, spot, plate, s.clock.Now())
	if err != nil {
		return nil, wf.abort(StepOpenTicket, plate, spot.ID, err)
	}
	if err := wf.advance(model.StateTicketOpen); err != nil {
		return nil, wf.abort(StepOpenTicket, plate, spot.ID, err)
	}

	wf.log.Info("Vehicle parked",
		zap.Int("ticket_id", ticket.ID),
		zap.Int("spot_id", spot.ID),
		zap.String("vehicle_type", class.String()),
		zap.String("plate", plate),
		zap.Time("in_time", ticket.InTime))

	s.publish(ctx, &model.ParkingEvent{
		Type:         model.EventVehicleIn,
		TicketID:     ticket.ID,
		SpotID:       spot.ID,
		VehicleClass: class,
		Plate:        plate,
		OccurredAt:   ticket.InTime,
	})

	return &model.EntryReceipt{
		TicketID:     ticket.ID,
		SpotID:       spot.ID,
		VehicleClass: class,
		Plate:        plate,
		InTime:       ticket.InTime,
	}, nil
}

func (s *ParkingServiceImpl) ProcessExitingVehicle(ctx context.Context, in input.Reader, outTime time.Time) (*model.ExitReceipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wf := &workflow{state: model.StateTicketOpen, log: s.log.With(zap.String("workflow", "vehicle_out"))}
	if err := ctx.Err(); err != nil {
		return nil, wf.abort(StepReadPlate, "", 0, err)
	}

	// 1. 讀車牌
	raw, err := in.ReadPlate()
	if err != nil {
		return nil, wf.abort(StepReadPlate, "", 0, err)
	}
	plate, err := NormalizePlate(raw)
	if err != nil {
		return nil, wf.abort(StepReadPlate, "", 0, err)
	}

	// 2. 取得最新票券，已關閉的票券視為找不到
	ticket, err := s.tickets.FindOpenOrLatestTicket(ctx, plate)
	if err != nil {
		return nil, wf.abort(StepFindTicket, plate, 0, err)
	}
	if !ticket.IsOpen() {
		return nil, wf.abort(StepFindTicket, plate, ticket.SpotID(),
			fmt.Errorf("%w: latest ticket %d is already closed", apperrors.ErrNoTicketFound, ticket.ID))
	}

	// 3~4. 常客判斷，票券總數包含本次
	count, err := s.tickets.CountTicketsFor(ctx, plate)
	if err != nil {
		return nil, wf.abort(StepCountTickets, plate, ticket.SpotID(), err)
	}
	loyal := s.tickets.IsLoyaltyCustomer(count)

	// 5. 計費
	class := model.VehicleClass("")
	if ticket.Spot != nil {
		class = ticket.Spot.VehicleClass
	}
	price, err := s.fares.CalculateFare(&ticket.InTime, &outTime, class, loyal)
	if err != nil {
		return nil, wf.abort(StepComputeFare, plate, ticket.SpotID(), err)
	}

	// 6. 只有免費時段允許 0 元
	if !price.IsPositive() && !s.fares.IsFreeStay(ticket.InTime, outTime) {
		return nil, wf.abort(StepComputeFare, plate, ticket.SpotID(),
			fmt.Errorf("%w: %s for %s", apperrors.ErrNonPositiveFare, price.StringFixed(2), outTime.Sub(ticket.InTime)))
	}
	ticket.Close(outTime, price)
	if err := wf.advance(model.StateFareComputed); err != nil {
		return nil, wf.abort(StepComputeFare, plate, ticket.SpotID(), err)
	}

	// 7. 關票失敗時不釋放車位
	if err := s.tickets.CloseTicket(ctx, ticket); err != nil {
		return nil, wf.abort(StepCloseTicket, plate, ticket.SpotID(), err)
	}
	if err := wf.advance(model.StateTicketClosed); err != nil {
		return nil, wf.abort(StepCloseTicket, plate, ticket.SpotID(), err)
	}

	// 8. 釋放車位
	if err := s.spots.MarkFree(ctx, ticket.Spot); err != nil {
		return nil, wf.abort(StepReleaseSpot, plate, ticket.SpotID(),
			fmt.Errorf("%w: %w", apperrors.ErrPartialExitFailure, err))
	}
	if err := wf.advance(model.StateSpotReleased); err != nil {
		return nil, wf.abort(StepReleaseSpot, plate, ticket.SpotID(), err)
	}

	wf.log.Info("Vehicle exited",
		zap.Int("ticket_id", ticket.ID),
		zap.Int("spot_id", ticket.SpotID()),
		zap.String("plate", plate),
		zap.String("price", price.StringFixed(2)),
		zap.Bool("loyalty", loyal),
		zap.Duration("duration", ticket.Duration()))

	s.publish(ctx, &model.ParkingEvent{
		Type:         model.EventVehicleOut,
		TicketID:     ticket.ID,
		SpotID:       ticket.SpotID(),
		VehicleClass: class,
		Plate:        plate,
		Price:        price,
		OccurredAt:   outTime,
	})

	return &model.ExitReceipt{
		TicketID:     ticket.ID,
		SpotID:       ticket.SpotID(),
		VehicleClass: class,
		Plate:        plate,
		Price:        price,
		Loyalty:      loyal,
		InTime:       ticket.InTime,
		OutTime:      outTime,
	}, nil
}

// publish 事件發送失敗只記錄，不影響已完成的交易
func (s *ParkingServiceImpl) publish(ctx context.Context, event *model.ParkingEvent) {
	if s.events == nil {
		return
	}
	event.ID = uuid.New().String()
	if err := s.events.Publish(ctx, event); err != nil {
		s.log.Warn("Failed to publish parking event",
			zap.String("event_id", event.ID),
			zap.String("type", string(event.Type)),
			zap.Int("ticket_id", event.TicketID),
			zap.Error(err))
	}
}
