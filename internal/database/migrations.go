package database

import (
	"context"
	"fmt"

	"parking-system/internal/model"
)

const schema = `
	CREATE TABLE IF NOT EXISTS parking_spots (
		id           INT PRIMARY KEY CHECK (id > 0),
		vehicle_type VARCHAR(10) NOT NULL CHECK (vehicle_type IN ('CAR', 'BIKE')),
		available    BOOLEAN NOT NULL DEFAULT TRUE
	);

	CREATE TABLE IF NOT EXISTS tickets (
		id                 SERIAL PRIMARY KEY,
		parking_spot_id    INT NOT NULL REFERENCES parking_spots(id),
		vehicle_reg_number VARCHAR(20) NOT NULL,
		price              NUMERIC(10, 2) NOT NULL DEFAULT 0 CHECK (price >= 0),
		in_time            TIMESTAMPTZ NOT NULL,
		out_time           TIMESTAMPTZ,
		CHECK (out_time IS NULL OR out_time >= in_time)
	);

	CREATE INDEX IF NOT EXISTS idx_tickets_plate_in_time
		ON tickets (vehicle_reg_number, in_time DESC);
`

// SpotSeed 預設車位配置
type SpotSeed struct {
	ID           int
	VehicleClass model.VehicleClass
}

// DefaultLot 1~3 號汽車位，4~5 號機車位
func DefaultLot() []SpotSeed {
	return []SpotSeed{
		{ID: 1, VehicleClass: model.VehicleClassCar},
		{ID: 2, VehicleClass: model.VehicleClassCar},
		{ID: 3, VehicleClass: model.VehicleClassCar},
		{ID: 4, VehicleClass: model.VehicleClassBike},
		{ID: 5, VehicleClass: model.VehicleClassBike},
	}
}

// Migrate 建立資料表，可重複執行
func Migrate(ctx context.Context, q Querier) error {
	if _, err := q.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}

// SeedSpots 補齊缺少的車位，已存在的車位狀態不變
func SeedSpots(ctx context.Context, q Querier, seeds []SpotSeed) error {
	query := `
		INSERT INTO parking_spots (id, vehicle_type, available)
		VALUES ($1, $2, TRUE)
		ON CONFLICT (id) DO NOTHING
	`
	for _, s := range seeds {
		if !s.VehicleClass.IsValid() {
			return fmt.Errorf("seed spot %d: unknown vehicle class %q", s.ID, s.VehicleClass)
		}
		if _, err := q.Exec(ctx, query, s.ID, s.VehicleClass.String()); err != nil {
			return fmt.Errorf("seed spot %d: %w", s.ID, err)
		}
	}
	return nil
}

// ResetForTest 清空票券並釋放所有車位
func ResetForTest(ctx context.Context, q Querier) error {
	if _, err := q.Exec(ctx, "TRUNCATE tickets RESTART IDENTITY"); err != nil {
		return fmt.Errorf("truncate tickets: %w", err)
	}
	if _, err := q.Exec(ctx, "UPDATE parking_spots SET available = TRUE"); err != nil {
		return fmt.Errorf("free spots: %w", err)
	}
	return nil
}
