package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// txKey はコンテキストにトランザクションを格納するためのキー。
type txKey struct{}

// withTx はfnを単一トランザクション内で実行する。
// すでにトランザクション内の場合はそのまま続行する（ネスト開始はしない）。
func withTx(ctx context.Context, db *sql.DB, fn func(ctx context.Context) error) error {
	if txFromContext(ctx) != nil {
		return fn(ctx)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	txCtx := context.WithValue(ctx, txKey{}, tx)
	if err := fn(txCtx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// txFromContext はコンテキストからトランザクションを取り出す。なければnil。
func txFromContext(ctx context.Context) *sql.Tx {
	tx, _ := ctx.Value(txKey{}).(*sql.Tx)
	return tx
}

// executor は*sql.DBと*sql.Txに共通のクエリ実行インターフェース。
type executor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// executorFor はコンテキストにトランザクションがあればそれを、なければdbを返す。
func executorFor(ctx context.Context, db *sql.DB) executor {
	if tx := txFromContext(ctx); tx != nil {
		return tx
	}
	return db
}

// IsUniqueViolation はPostgreSQLの一意制約違反（SQLSTATE 23505）かどうかを判定する。
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
