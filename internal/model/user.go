// Package model はドメインモデルを定義する。
package model

import "time"

// DefaultBalance は新規登録ユーザーに付与される初期残高。
const DefaultBalance = 5000.0

// User はチケット売買サービスの利用ユーザーを表す。
// Emailは一意（保存された表記のまま大文字小文字を区別する）。
// Balanceは購入トランザクションによってのみ変動し、負になることはない。
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string // bcryptハッシュ。平文パスワードは保持しない
	Balance      float64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Session はユーザーのログインセッションを表す。
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}
