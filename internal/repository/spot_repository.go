package repository

import (
	"context"
	"errors"

	"parking-system/internal/database"
	"parking-system/internal/model"
	apperrors "parking-system/pkg/app_errors"

	"github.com/jackc/pgx/v5"
)

type SpotRepository interface {
	FindByID(ctx context.Context, id int) (*model.Spot, error)
	// 取得該車種編號最小的空位
	FindFirstAvailable(ctx context.Context, class model.VehicleClass) (*model.Spot, error)
	// 以 compare-and-set 更新可用狀態
	SetAvailability(ctx context.Context, id int, available bool) error
	List(ctx context.Context) ([]*model.Spot, error)
	CountAvailableByClass(ctx context.Context) ([]model.SpotAvailability, error)
}

type SpotRepositoryImpl struct {
	db database.Querier
}

func NewSpotRepository(db database.Querier) SpotRepository {
	return &SpotRepositoryImpl{db: db}
}

func scanSpot(row pgx.Row) (*model.Spot, error) {
	var (
		spot  model.Spot
		class string
	)
	if err := row.Scan(&spot.ID, &class, &spot.Available); err != nil {
		return nil, err
	}
	vc, err := model.ParseVehicleClass(class)
	if err != nil {
		return nil, err
	}
	spot.VehicleClass = vc
	return &spot, nil
}

func (r *SpotRepositoryImpl) FindByID(ctx context.Context, id int) (*model.Spot, error) {
	query := `
		SELECT id, vehicle_type, available
		FROM parking_spots
		WHERE id = $1
	`

	spot, err := scanSpot(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrSpotNotFound
		}
		return nil, err
	}
	return spot, nil
}

func (r *SpotRepositoryImpl) FindFirstAvailable(ctx context.Context, class model.VehicleClass) (*model.Spot, error) {
	query := `
		SELECT id, vehicle_type, available
		FROM parking_spots
		WHERE vehicle_type = $1 AND available = TRUE
		ORDER BY id
		LIMIT 1
	`

	spot, err := scanSpot(r.db.QueryRow(ctx, query, class.String()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNoSpotAvailable
		}
		return nil, err
	}
	return spot, nil
}

func (r *SpotRepositoryImpl) SetAvailability(ctx context.Context, id int, available bool) error {
	query := `
		UPDATE parking_spots
		SET available = $1
		WHERE id = $2 AND available <> $1
	`

	result, err := r.db.Exec(ctx, query, available, id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		// 沒有更新：車位不存在，或狀態已被其他交易改變
		if _, err := r.FindByID(ctx, id); err != nil {
			return err
		}
		return apperrors.ErrSpotStateConflict
	}

	return nil
}

func (r *SpotRepositoryImpl) List(ctx context.Context) ([]*model.Spot, error) {
	query := `
		SELECT id, vehicle_type, available
		FROM parking_spots
		ORDER BY id
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	spots := make([]*model.Spot, 0)
	for rows.Next() {
		spot, err := scanSpot(rows)
		if err != nil {
			return nil, err
		}
		spots = append(spots, spot)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return spots, nil
}

func (r *SpotRepositoryImpl) CountAvailableByClass(ctx context.Context) ([]model.SpotAvailability, error) {
	query := `
		SELECT vehicle_type,
			COUNT(*),
			COUNT(*) FILTER (WHERE available)
		FROM parking_spots
		GROUP BY vehicle_type
		ORDER BY vehicle_type DESC
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]model.SpotAvailability, 0, 2)
	for rows.Next() {
		var (
			a     model.SpotAvailability
			class string
		)
		if err := rows.Scan(&class, &a.Total, &a.Available); err != nil {
			return nil, err
		}
		vc, err := model.ParseVehicleClass(class)
		if err != nil {
			return nil, err
		}
		a.VehicleClass = vc
		result = append(result, a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}
