package repository

import (
	"context"
	"errors"
	"time"

	"parking-system/internal/database"
	"parking-system/internal/model"
	apperrors "parking-system/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type TicketRepository interface {
	// 寫入新票券並回填 ID
	Create(ctx context.Context, ticket *model.Ticket) (*model.Ticket, error)
	// 依進場時間取得該車牌最新一張票券
	FindLatestByPlate(ctx context.Context, plate string) (*model.Ticket, error)
	UpdateExit(ctx context.Context, id int, price decimal.Decimal, outTime time.Time) error
	CountByPlate(ctx context.Context, plate string) (int, error)
	ListByPlate(ctx context.Context, plate string) ([]*model.Ticket, error)
}

type TicketRepositoryImpl struct {
	db database.Querier
}

func NewTicketRepository(db database.Querier) TicketRepository {
	return &TicketRepositoryImpl{db: db}
}

// price 以 text 往返，避免經過浮點數
const ticketColumns = `
	t.id, t.parking_spot_id, p.vehicle_type, p.available,
	t.vehicle_reg_number, t.price::text, t.in_time, t.out_time
`

func scanTicket(row pgx.Row) (*model.Ticket, error) {
	var (
		ticket model.Ticket
		spot   model.Spot
		class  string
		price  string
	)
	err := row.Scan(
		&ticket.ID,
		&spot.ID,
		&class,
		&spot.Available,
		&ticket.Plate,
		&price,
		&ticket.InTime,
		&ticket.OutTime,
	)
	if err != nil {
		return nil, err
	}

	vc, err := model.ParseVehicleClass(class)
	if err != nil {
		return nil, err
	}
	spot.VehicleClass = vc
	ticket.Spot = &spot

	ticket.Price, err = decimal.NewFromString(price)
	if err != nil {
		return nil, err
	}

	ticket.InTime = ticket.InTime.UTC()
	if ticket.OutTime != nil {
		out := ticket.OutTime.UTC()
		ticket.OutTime = &out
	}
	return &ticket, nil
}

func (r *TicketRepositoryImpl) Create(ctx context.Context, ticket *model.Ticket) (*model.Ticket, error) {
	query := `
		INSERT INTO tickets (parking_spot_id, vehicle_reg_number, price, in_time, out_time)
		VALUES ($1, $2, $3::numeric, $4, $5)
		RETURNING id
	`

	err := r.db.QueryRow(ctx, query,
		ticket.SpotID(), ticket.Plate, ticket.Price.String(), ticket.InTime, ticket.OutTime,
	).Scan(&ticket.ID)

	if err != nil {
		return nil, err
	}

	return ticket, nil
}

func (r *TicketRepositoryImpl) FindLatestByPlate(ctx context.Context, plate string) (*model.Ticket, error) {
	query := `
		SELECT ` + ticketColumns + `
		FROM tickets t
		JOIN parking_spots p ON p.id = t.parking_spot_id
		WHERE t.vehicle_reg_number = $1
		ORDER BY t.in_time DESC, t.id DESC
		LIMIT 1
	`

	ticket, err := scanTicket(r.db.QueryRow(ctx, query, plate))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNoTicketFound
		}
		return nil, err
	}
	return ticket, nil
}

func (r *TicketRepositoryImpl) UpdateExit(ctx context.Context, id int, price decimal.Decimal, outTime time.Time) error {
	query := `
		UPDATE tickets
		SET price = $1::numeric, out_time = $2
		WHERE id = $3
	`

	result, err := r.db.Exec(ctx, query, price.String(), outTime, id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrNoTicketFound
	}

	return nil
}

func (r *TicketRepositoryImpl) CountByPlate(ctx context.Context, plate string) (int, error) {
	query := `SELECT COUNT(*) FROM tickets WHERE vehicle_reg_number = $1`

	var count int
	if err := r.db.QueryRow(ctx, query, plate).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *TicketRepositoryImpl) ListByPlate(ctx context.Context, plate string) ([]*model.Ticket, error) {
	query := `
		SELECT ` + ticketColumns + `
		FROM tickets t
		JOIN parking_spots p ON p.id = t.parking_spot_id
		WHERE t.vehicle_reg_number = $1
		ORDER BY t.in_time DESC, t.id DESC
	`

	rows, err := r.db.Query(ctx, query, plate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets := make([]*model.Ticket, 0)
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, ticket)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tickets, nil
}
