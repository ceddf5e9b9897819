package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/ticketman/internal/model"
)

// PostgresTicketRepo はPostgreSQLを使用したチケットリポジトリ。
type PostgresTicketRepo struct {
	db *sql.DB
}

// NewPostgresTicketRepo はPostgresTicketRepoを生成する。
func NewPostgresTicketRepo(db *sql.DB) *PostgresTicketRepo {
	return &PostgresTicketRepo{db: db}
}

// FindByName は指定名のチケットを取得する。見つからない場合はnilを返す。
func (r *PostgresTicketRepo) FindByName(ctx context.Context, name string) (*model.Ticket, error) {
	ticket := &model.Ticket{}
	err := executorFor(ctx, r.db).QueryRowContext(ctx,
		`SELECT id, name, quantity, price, expiration_date, created_at, updated_at
		 FROM tickets WHERE name = $1`,
		name,
	).Scan(&ticket.ID, &ticket.Name, &ticket.Quantity, &ticket.Price,
		&ticket.ExpirationDate, &ticket.CreatedAt, &ticket.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find ticket by name: %w", err)
	}

	return ticket, nil
}

// Create はチケットを作成する。名前の一意制約違反もエラーとして返す。
func (r *PostgresTicketRepo) Create(ctx context.Context, ticket *model.Ticket) error {
	_, err := executorFor(ctx, r.db).ExecContext(ctx,
		`INSERT INTO tickets (id, name, quantity, price, expiration_date, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		ticket.ID, ticket.Name, ticket.Quantity, ticket.Price, ticket.ExpirationDate,
		ticket.CreatedAt, ticket.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert ticket: %w", err)
	}
	return nil
}

// UpdateFields は指定名のチケットの枚数・価格・有効期限を
// 単一のUPDATE文でまとめて更新する。部分的な更新は発生しない。
func (r *PostgresTicketRepo) UpdateFields(ctx context.Context, name string, quantity int, price float64, expiration time.Time) error {
	result, err := executorFor(ctx, r.db).ExecContext(ctx,
		`UPDATE tickets
		 SET quantity = $2, price = $3, expiration_date = $4, updated_at = $5
		 WHERE name = $1`,
		name, quantity, price, expiration, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to update ticket: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("ticket not found: %s", name)
	}
	return nil
}

// ListNotExpiredBefore は有効期限がdate以降のチケット一覧を
// 有効期限の昇順で返す。
func (r *PostgresTicketRepo) ListNotExpiredBefore(ctx context.Context, date time.Time) ([]*model.Ticket, error) {
	rows, err := executorFor(ctx, r.db).QueryContext(ctx,
		`SELECT id, name, quantity, price, expiration_date, created_at, updated_at
		 FROM tickets
		 WHERE expiration_date >= $1
		 ORDER BY expiration_date ASC, name ASC`,
		date,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	defer rows.Close()

	var tickets []*model.Ticket
	for rows.Next() {
		ticket := &model.Ticket{}
		if err := rows.Scan(&ticket.ID, &ticket.Name, &ticket.Quantity, &ticket.Price,
			&ticket.ExpirationDate, &ticket.CreatedAt, &ticket.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ticket: %w", err)
		}
		tickets = append(tickets, ticket)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tickets: %w", err)
	}

	return tickets, nil
}

// compile-time interface check
var _ TicketRepository = (*PostgresTicketRepo)(nil)
