package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/ticketman/internal/model"
)

// PostgresPurchaseRepo はPostgreSQLを使用した購入トランザクションリポジトリ。
// WithTxで開始したトランザクションをコンテキスト経由で引き回し、
// FOR UPDATEの行ロックにより在庫確認から更新までを原子的に実行する。
type PostgresPurchaseRepo struct {
	db *sql.DB
}

// NewPostgresPurchaseRepo はPostgresPurchaseRepoを生成する。
func NewPostgresPurchaseRepo(db *sql.DB) *PostgresPurchaseRepo {
	return &PostgresPurchaseRepo{db: db}
}

// WithTx はfnを単一のDBトランザクション内で実行する。
func (r *PostgresPurchaseRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.db, fn)
}

// FindTicketForUpdate は指定名のチケットを行ロック付きで取得する。
// 見つからない場合はnilを返す。WithTx内でのみ使用する。
func (r *PostgresPurchaseRepo) FindTicketForUpdate(ctx context.Context, name string) (*model.Ticket, error) {
	ticket := &model.Ticket{}
	err := executorFor(ctx, r.db).QueryRowContext(ctx,
		`SELECT id, name, quantity, price, expiration_date, created_at, updated_at
		 FROM tickets WHERE name = $1
		 FOR UPDATE`,
		name,
	).Scan(&ticket.ID, &ticket.Name, &ticket.Quantity, &ticket.Price,
		&ticket.ExpirationDate, &ticket.CreatedAt, &ticket.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock ticket: %w", err)
	}

	return ticket, nil
}

// FindUserForUpdate は指定IDのユーザーを行ロック付きで取得する。
// 見つからない場合はnilを返す。WithTx内でのみ使用する。
func (r *PostgresPurchaseRepo) FindUserForUpdate(ctx context.Context, id string) (*model.User, error) {
	user := &model.User{}
	err := executorFor(ctx, r.db).QueryRowContext(ctx,
		`SELECT id, email, name, password_hash, balance, created_at, updated_at
		 FROM users WHERE id = $1
		 FOR UPDATE`,
		id,
	).Scan(&user.ID, &user.Email, &user.Name, &user.PasswordHash, &user.Balance,
		&user.CreatedAt, &user.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock user: %w", err)
	}

	return user, nil
}

// UpdateTicketQuantity は指定チケットの残枚数を更新する。
func (r *PostgresPurchaseRepo) UpdateTicketQuantity(ctx context.Context, ticketID string, quantity int) error {
	result, err := executorFor(ctx, r.db).ExecContext(ctx,
		`UPDATE tickets SET quantity = $2, updated_at = $3 WHERE id = $1`,
		ticketID, quantity, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to update ticket quantity: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("ticket not found: %s", ticketID)
	}
	return nil
}

// UpdateUserBalance は指定ユーザーの残高を更新する。
func (r *PostgresPurchaseRepo) UpdateUserBalance(ctx context.Context, userID string, balance float64) error {
	result, err := executorFor(ctx, r.db).ExecContext(ctx,
		`UPDATE users SET balance = $2, updated_at = $3 WHERE id = $1`,
		userID, balance, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to update user balance: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("user not found: %s", userID)
	}
	return nil
}

// compile-time interface check
var _ PurchaseRepository = (*PostgresPurchaseRepo)(nil)
