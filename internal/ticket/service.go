// Package ticket はチケット台帳と購入の取引ルールを提供する。
package ticket

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/ticketman/internal/clock"
	"github.com/hitoshi/ticketman/internal/model"
	"github.com/hitoshi/ticketman/internal/repository"
)

// Service はチケット台帳のビジネスロジックを提供する。
type Service struct {
	repo  repository.TicketRepository
	clock clock.Clock
}

// NewService はServiceを生成する。
func NewService(repo repository.TicketRepository, clk clock.Clock) *Service {
	if clk == nil {
		clk = clock.NewSystem()
	}
	return &Service{repo: repo, clock: clk}
}

// GetTicket は指定名のチケットを取得する。見つからない場合はnilを返す。
func (s *Service) GetTicket(ctx context.Context, name string) (*model.Ticket, error) {
	return s.repo.FindByName(ctx, name)
}

// TicketExists は指定名のチケットが存在するかを返す。
func (s *Service) TicketExists(ctx context.Context, name string) (bool, error) {
	ticket, err := s.repo.FindByName(ctx, name)
	if err != nil {
		return false, err
	}
	return ticket != nil, nil
}

// CreateTicket はチケットを新規登録する。
// 枚数・価格・有効期限の解析に失敗した場合はストレージに触れず、
// 登録失敗と同じ汎用エラーを返す。
func (s *Service) CreateTicket(ctx context.Context, name, quantity, price, date string) error {
	qty, priceVal, expiration, err := parseTicketFields(quantity, price, date)
	if err != nil {
		slog.Warn("ticket creation rejected",
			slog.String("name", name),
			slog.String("error", err.Error()),
		)
		return model.NewTicketCreateFailedError()
	}

	now := time.Now()
	ticket := &model.Ticket{
		ID:             uuid.New().String(),
		Name:           name,
		Quantity:       qty,
		Price:          priceVal,
		ExpirationDate: expiration,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Create(ctx, ticket); err != nil {
		slog.Error("failed to create ticket",
			slog.String("name", name),
			slog.String("error", err.Error()),
		)
		return model.NewTicketCreateFailedError()
	}

	slog.Info("ticket created",
		slog.String("ticket_id", ticket.ID),
		slog.String("name", name),
		slog.Int("quantity", qty),
	)
	return nil
}

// UpdateTicket は既存チケットの枚数・価格・有効期限を更新する。
// 全フィールドの解析が成功した場合のみ単一のUPDATEを発行するため、
// 一部のみ反映された中途半端な状態にはならない。
func (s *Service) UpdateTicket(ctx context.Context, name, quantity, price, date string) error {
	qty, priceVal, expiration, err := parseTicketFields(quantity, price, date)
	if err != nil {
		slog.Warn("ticket update rejected",
			slog.String("name", name),
			slog.String("error", err.Error()),
		)
		return model.NewTicketUpdateFailedError()
	}

	if err := s.repo.UpdateFields(ctx, name, qty, priceVal, expiration); err != nil {
		slog.Error("failed to update ticket",
			slog.String("name", name),
			slog.String("error", err.Error()),
		)
		return model.NewTicketUpdateFailedError()
	}

	slog.Info("ticket updated",
		slog.String("name", name),
		slog.Int("quantity", qty),
	)
	return nil
}

// ListAvailable は有効期限が本日以降のチケット一覧を返す。
// 残枚数0のチケットも一覧に含める（売り切れ表示のため）。
func (s *Service) ListAvailable(ctx context.Context) ([]*model.Ticket, error) {
	today := s.clock.Now().Truncate(24 * time.Hour)
	tickets, err := s.repo.ListNotExpiredBefore(ctx, today)
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	return tickets, nil
}

// parseTicketFields は文字列フィールドを一括で解析する。
// 枚数と価格は検証器と同様に前後の空白を許容する。
// いずれかの解析に失敗した場合は何も返さずエラーとする。
func parseTicketFields(quantity, price, date string) (int, float64, time.Time, error) {
	qty, err := strconv.Atoi(strings.TrimSpace(quantity))
	if err != nil {
		return 0, 0, time.Time{}, fmt.Errorf("invalid quantity %q: %w", quantity, err)
	}
	priceVal, err := strconv.ParseFloat(strings.TrimSpace(price), 64)
	if err != nil {
		return 0, 0, time.Time{}, fmt.Errorf("invalid price %q: %w", price, err)
	}
	expiration, err := time.Parse(model.DateLayout, date)
	if err != nil {
		return 0, 0, time.Time{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return qty, priceVal, expiration, nil
}
