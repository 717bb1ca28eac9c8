package service

import (
	"context"
	"errors"
	"fmt"

	"parking-system/internal/model"
	"parking-system/internal/repository"
	apperrors "parking-system/pkg/app_errors"
)

type SpotAllocator interface {
	// 找出該車種編號最小的空位，不改變狀態
	FindFreeSpot(ctx context.Context, class model.VehicleClass) (*model.Spot, error)
	MarkOccupied(ctx context.Context, spot *model.Spot) error
	MarkFree(ctx context.Context, spot *model.Spot) error
	GetSpot(ctx context.Context, id int) (*model.Spot, error)
	ListSpots(ctx context.Context) ([]*model.Spot, error)
	Availability(ctx context.Context) ([]model.SpotAvailability, error)
}

type SpotAllocatorImpl struct {
	repo repository.SpotRepository
}

func NewSpotAllocator(repo repository.SpotRepository) SpotAllocator {
	return &SpotAllocatorImpl{repo: repo}
}

func (a *SpotAllocatorImpl) FindFreeSpot(ctx context.Context, class model.VehicleClass) (*model.Spot, error) {
	if !class.IsValid() {
		return nil, fmt.Errorf("%w: %q", apperrors.ErrUnknownVehicleClass, class)
	}

	spot, err := a.repo.FindFirstAvailable(ctx, class)
	if err != nil {
		if errors.Is(err, apperrors.ErrNoSpotAvailable) {
			return nil, err
		}
		return nil, fmt.Errorf("find free %s spot: %w", class, err)
	}
	return spot, nil
}

func (a *SpotAllocatorImpl) MarkOccupied(ctx context.Context, spot *model.Spot) error {
	return a.setAvailability(ctx, spot, false)
}

func (a *SpotAllocatorImpl) MarkFree(ctx context.Context, spot *model.Spot) error {
	return a.setAvailability(ctx, spot, true)
}

// setAvailability 寫入失敗一律包成 ErrStoreWrite，不重試
func (a *SpotAllocatorImpl) setAvailability(ctx context.Context, spot *model.Spot, available bool) error {
	if spot == nil || spot.ID <= 0 {
		return apperrors.Invariant("spot must be persisted before changing availability")
	}

	if err := a.repo.SetAvailability(ctx, spot.ID, available); err != nil {
		return apperrors.StoreWrite(fmt.Sprintf("set spot %d available=%t", spot.ID, available), err)
	}

	spot.Available = available
	return nil
}

func (a *SpotAllocatorImpl) GetSpot(ctx context.Context, id int) (*model.Spot, error) {
	return a.repo.FindByID(ctx, id)
}

func (a *SpotAllocatorImpl) ListSpots(ctx context.Context) ([]*model.Spot, error) {
	return a.repo.List(ctx)
}

func (a *SpotAllocatorImpl) Availability(ctx context.Context) ([]model.SpotAvailability, error) {
	return a.repo.CountAvailableByClass(ctx)
}
