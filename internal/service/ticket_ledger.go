package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"parking-system/internal/model"
	"parking-system/internal/repository"
	apperrors "parking-system/pkg/app_errors"
)

// LoyaltyMinTickets 票券總數超過此值即為常客（總數包含本次票券）
const LoyaltyMinTickets = 1

type TicketLedger interface {
	// 建立並寫入開啟中的票券，回傳帶 ID 的票券
	CreateOpenTicket(ctx context.Context, spot *model.Spot, plate string, inTime time.Time) (*model.Ticket, error)
	// 取得該車牌最新一張票券，是否仍開啟由呼叫端判斷
	FindOpenOrLatestTicket(ctx context.Context, plate string) (*model.Ticket, error)
	// 寫入出場時間與票價
	CloseTicket(ctx context.Context, ticket *model.Ticket) error
	CountTicketsFor(ctx context.Context, plate string) (int, error)
	IsLoyaltyCustomer(count int) bool
	History(ctx context.Context, plate string) ([]*model.Ticket, error)
}

type TicketLedgerImpl struct {
	repo repository.TicketRepository
}

func NewTicketLedger(repo repository.TicketRepository) TicketLedger {
	return &TicketLedgerImpl{repo: repo}
}

func (l *TicketLedgerImpl) CreateOpenTicket(ctx context.Context, spot *model.Spot, plate string, inTime time.Time) (*model.Ticket, error) {
	if spot == nil || spot.ID <= 0 {
		return nil, apperrors.Invariant("ticket requires a persisted spot")
	}
	if plate == "" {
		return nil, apperrors.ErrInvalidPlate
	}

	ticket, err := l.repo.Create(ctx, model.NewOpenTicket(spot, plate, inTime))
	if err != nil {
		return nil, apperrors.StoreWrite("insert ticket", err)
	}
	return ticket, nil
}

func (l *TicketLedgerImpl) FindOpenOrLatestTicket(ctx context.Context, plate string) (*model.Ticket, error) {
	ticket, err := l.repo.FindLatestByPlate(ctx, plate)
	if err != nil {
		if errors.Is(err, apperrors.ErrNoTicketFound) {
			return nil, err
		}
		return nil, fmt.Errorf("find latest ticket: %w", err)
	}
	return ticket, nil
}

func (l *TicketLedgerImpl) CloseTicket(ctx context.Context, ticket *model.Ticket) error {
	switch {
	case ticket == nil:
		return apperrors.Invariant("ticket is nil")
	case !ticket.IsPersisted():
		return apperrors.Invariant("ticket has not been persisted")
	case ticket.OutTime == nil:
		return apperrors.Invariant("ticket %d has no out time", ticket.ID)
	case ticket.OutTime.Before(ticket.InTime):
		return apperrors.Invariant("ticket %d out time before in time", ticket.ID)
	case ticket.Price.IsNegative():
		return apperrors.Invariant("ticket %d has negative price %s", ticket.ID, ticket.Price)
	}

	if err := l.repo.UpdateExit(ctx, ticket.ID, ticket.Price, *ticket.OutTime); err != nil {
		return apperrors.StoreWrite(fmt.Sprintf("update ticket %d", ticket.ID), err)
	}
	return nil
}

func (l *TicketLedgerImpl) CountTicketsFor(ctx context.Context, plate string) (int, error) {
	count, err := l.repo.CountByPlate(ctx, plate)
	if err != nil {
		return 0, fmt.Errorf("count tickets: %w", err)
	}
	return count, nil
}

func (l *TicketLedgerImpl) IsLoyaltyCustomer(count int) bool {
	return count > LoyaltyMinTickets
}

func (l *TicketLedgerImpl) History(ctx context.Context, plate string) ([]*model.Ticket, error) {
	return l.repo.ListByPlate(ctx, plate)
}
