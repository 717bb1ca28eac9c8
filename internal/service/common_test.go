package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"parking-system/internal/model"
	apperrors "parking-system/pkg/app_errors"

	"github.com/shopspring/decimal"
)

// memStore 同時實作 SpotRepository 與 TicketRepository 的記憶體版，行為與資料庫版一致
type memStore struct {
	mu      sync.Mutex
	spots   map[int]model.Spot
	tickets []model.Ticket
}

// newMemStore 預設車位：1~3 CAR、4~5 BIKE
func newMemStore() *memStore {
	s := &memStore{spots: make(map[int]model.Spot)}
	for id := 1; id <= 5; id++ {
		class := model.VehicleClassCar
		if id > 3 {
			class = model.VehicleClassBike
		}
		s.spots[id] = model.Spot{ID: id, VehicleClass: class, Available: true}
	}
	return s
}

func (s *memStore) spot(id int) model.Spot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.spots[id]
}

func (s *memStore) ticketCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tickets)
}

func (s *memStore) FindByID(ctx context.Context, id int) (*model.Spot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	spot, ok := s.spots[id]
	if !ok {
		return nil, apperrors.ErrSpotNotFound
	}
	return &spot, nil
}

func (s *memStore) FindFirstAvailable(ctx context.Context, class model.VehicleClass) (*model.Spot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]int, 0, len(s.spots))
	for id := range s.spots {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		spot := s.spots[id]
		if spot.VehicleClass == class && spot.Available {
			return &spot, nil
		}
	}
	return nil, apperrors.ErrNoSpotAvailable
}

func (s *memStore) SetAvailability(ctx context.Context, id int, available bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	spot, ok := s.spots[id]
	if !ok {
		return apperrors.ErrSpotNotFound
	}
	if spot.Available == available {
		return apperrors.ErrSpotStateConflict
	}
	spot.Available = available
	s.spots[id] = spot
	return nil
}

func (s *memStore) List(ctx context.Context) ([]*model.Spot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	spots := make([]*model.Spot, 0, len(s.spots))
	for id := 1; id <= len(s.spots); id++ {
		spot := s.spots[id]
		spots = append(spots, &spot)
	}
	return spots, nil
}

func (s *memStore) CountAvailableByClass(ctx context.Context) ([]model.SpotAvailability, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]model.SpotAvailability, 0, 2)
	for _, class := range model.VehicleClasses() {
		a := model.SpotAvailability{VehicleClass: class}
		for _, spot := range s.spots {
			if spot.VehicleClass != class {
				continue
			}
			a.Total++
			if spot.Available {
				a.Available++
			}
		}
		result = append(result, a)
	}
	return result, nil
}

func (s *memStore) Create(ctx context.Context, ticket *model.Ticket) (*model.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ticket.ID = len(s.tickets) + 1
	stored := *ticket
	spot := *ticket.Spot
	stored.Spot = &spot
	s.tickets = append(s.tickets, stored)
	return ticket, nil
}

func (s *memStore) latest(plate string) int {
	idx := -1
	for i, t := range s.tickets {
		if t.Plate != plate {
			continue
		}
		if idx < 0 || !t.InTime.Before(s.tickets[idx].InTime) {
			idx = i
		}
	}
	return idx
}

func (s *memStore) FindLatestByPlate(ctx context.Context, plate string) (*model.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.latest(plate)
	if idx < 0 {
		return nil, apperrors.ErrNoTicketFound
	}
	t := s.tickets[idx]
	spot := s.spots[t.Spot.ID]
	t.Spot = &spot
	return &t, nil
}

func (s *memStore) UpdateExit(ctx context.Context, id int, price decimal.Decimal, outTime time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id <= 0 || id > len(s.tickets) {
		return apperrors.ErrNoTicketFound
	}
	s.tickets[id-1].Price = price
	s.tickets[id-1].OutTime = &outTime
	return nil
}

func (s *memStore) CountByPlate(ctx context.Context, plate string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.tickets {
		if t.Plate == plate {
			n++
		}
	}
	return n, nil
}

func (s *memStore) ListByPlate(ctx context.Context, plate string) ([]*model.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]*model.Ticket, 0)
	for i := len(s.tickets) - 1; i >= 0; i-- {
		if s.tickets[i].Plate == plate {
			t := s.tickets[i]
			result = append(result, &t)
		}
	}
	return result, nil
}

var testInTime = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
