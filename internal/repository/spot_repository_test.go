package repository_test

import (
	"context"
	"testing"

	"parking-system/internal/model"
	"parking-system/internal/repository"
	apperrors "parking-system/pkg/app_errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpotRepository_FindByID(t *testing.T) {
	repo := repository.NewSpotRepository(getTestDB(t))
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		spot, err := repo.FindByID(ctx, 4)
		require.NoError(t, err)
		assert.Equal(t, 4, spot.ID)
		assert.Equal(t, model.VehicleClassBike, spot.VehicleClass)
		assert.True(t, spot.Available)
	})

	t.Run("Failed - NotFound", func(t *testing.T) {
		spot, err := repo.FindByID(ctx, 99)
		assert.ErrorIs(t, err, apperrors.ErrSpotNotFound)
		assert.Nil(t, spot)
	})
}

func TestSpotRepository_FindFirstAvailable(t *testing.T) {
	repo := repository.NewSpotRepository(getTestDB(t))
	ctx := context.Background()

	t.Run("LowestIDFirst", func(t *testing.T) {
		spot, err := repo.FindFirstAvailable(ctx, model.VehicleClassCar)
		require.NoError(t, err)
		assert.Equal(t, 1, spot.ID)

		occupySpot(t, 1)
		spot, err = repo.FindFirstAvailable(ctx, model.VehicleClassCar)
		require.NoError(t, err)
		assert.Equal(t, 2, spot.ID)
	})

	t.Run("Failed - NoSpotAvailable", func(t *testing.T) {
		occupySpot(t, 4)
		occupySpot(t, 5)
		spot, err := repo.FindFirstAvailable(ctx, model.VehicleClassBike)
		assert.ErrorIs(t, err, apperrors.ErrNoSpotAvailable)
		assert.Nil(t, spot)
	})
}

func TestSpotRepository_SetAvailability(t *testing.T) {
	repo := repository.NewSpotRepository(getTestDB(t))
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		require.NoError(t, repo.SetAvailability(ctx, 2, false))
		spot, err := repo.FindByID(ctx, 2)
		require.NoError(t, err)
		assert.False(t, spot.Available)

		require.NoError(t, repo.SetAvailability(ctx, 2, true))
		spot, err = repo.FindByID(ctx, 2)
		require.NoError(t, err)
		assert.True(t, spot.Available)
	})

	t.Run("Failed - AlreadyOccupied", func(t *testing.T) {
		require.NoError(t, repo.SetAvailability(ctx, 3, false))
		err := repo.SetAvailability(ctx, 3, false)
		assert.ErrorIs(t, err, apperrors.ErrSpotStateConflict)
	})

	t.Run("Failed - NotFound", func(t *testing.T) {
		err := repo.SetAvailability(ctx, 99, false)
		assert.ErrorIs(t, err, apperrors.ErrSpotNotFound)
	})
}

func TestSpotRepository_ListAndCount(t *testing.T) {
	repo := repository.NewSpotRepository(getTestDB(t))
	ctx := context.Background()
	occupySpot(t, 1)

	spots, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, spots, 5)
	for i, spot := range spots {
		assert.Equal(t, i+1, spot.ID)
	}
	assert.False(t, spots[0].Available)

	counts, err := repo.CountAvailableByClass(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.SpotAvailability{
		{VehicleClass: model.VehicleClassCar, Total: 3, Available: 2},
		{VehicleClass: model.VehicleClassBike, Total: 2, Available: 2},
	}, counts)
}
