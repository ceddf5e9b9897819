// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"time"

	"github.com/hitoshi/ticketman/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByEmail は指定メールアドレスのユーザーを取得する。見つからない場合はnilを返す。
	// メールアドレスは保存された表記のまま完全一致で照合する。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// Create はユーザーを作成する。メールアドレスの一意制約違反を含め、
	// 失敗はそのままエラーとして返す。
	Create(ctx context.Context, user *model.User) error

	// UpdateBalance は指定ユーザーの残高を更新する。
	UpdateBalance(ctx context.Context, id string, balance float64) error
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
	// DeleteByUserID は指定ユーザーの全セッションを削除する。
	DeleteByUserID(ctx context.Context, userID string) error
	// DeleteExpired は期限切れセッションを削除し、削除件数を返す。
	DeleteExpired(ctx context.Context) (int64, error)
}

// TicketRepository はチケットデータの永続化インターフェース。
type TicketRepository interface {
	// FindByName は指定名のチケットを取得する。見つからない場合はnilを返す。
	FindByName(ctx context.Context, name string) (*model.Ticket, error)

	// Create はチケットを作成する。
	Create(ctx context.Context, ticket *model.Ticket) error

	// UpdateFields は指定名のチケットの枚数・価格・有効期限を
	// 単一のUPDATE文でまとめて更新する。部分的な更新は発生しない。
	UpdateFields(ctx context.Context, name string, quantity int, price float64, expiration time.Time) error

	// ListNotExpiredBefore は有効期限がdate以降のチケット一覧を返す。
	ListNotExpiredBefore(ctx context.Context, date time.Time) ([]*model.Ticket, error)
}

// PurchaseRepository は購入トランザクションの永続化インターフェース。
// WithTxの中でFor Update系の取得と更新を組み合わせることで、
// 在庫確認から減算・残高引き落としまでを原子的に実行する。
type PurchaseRepository interface {
	// WithTx はfnを単一のDBトランザクション内で実行する。
	// fnがエラーを返した場合はロールバックする。
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error

	// FindTicketForUpdate は指定名のチケットを行ロック付きで取得する。
	// 見つからない場合はnilを返す。WithTx内でのみ使用する。
	FindTicketForUpdate(ctx context.Context, name string) (*model.Ticket, error)

	// FindUserForUpdate は指定IDのユーザーを行ロック付きで取得する。
	// 見つからない場合はnilを返す。WithTx内でのみ使用する。
	FindUserForUpdate(ctx context.Context, id string) (*model.User, error)

	// UpdateTicketQuantity は指定チケットの残枚数を更新する。
	UpdateTicketQuantity(ctx context.Context, ticketID string, quantity int) error

	// UpdateUserBalance は指定ユーザーの残高を更新する。
	UpdateUserBalance(ctx context.Context, userID string, balance float64) error
}
