// Package model はドメインモデルを定義する。
package model

import "time"

// Ticket は販売中のチケット出品を表す。
// Nameが業務上の一意キーとなる（英数字のみ、60文字以下）。
// Quantityはどの操作の後も[0,100]の範囲に収まる。0は売り切れを意味するが、
// レコードは削除されず照会可能なまま残る。
// ExpirationDateが現在日より過去になった出品は一覧から除外される。
type Ticket struct {
	ID             string
	Name           string
	Quantity       int
	Price          float64
	ExpirationDate time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// DateLayout はチケット有効期限の入出力形式（YYYYMMDD）。
const DateLayout = "20060102"

// Expired はチケットがtodayの時点で期限切れかどうかを返す。
// 有効期限当日はまだ有効として扱う。
func (t *Ticket) Expired(today time.Time) bool {
	y1, m1, d1 := t.ExpirationDate.Date()
	y2, m2, d2 := today.Date()
	exp := time.Date(y1, m1, d1, 0, 0, 0, 0, time.UTC)
	cur := time.Date(y2, m2, d2, 0, 0, 0, 0, time.UTC)
	return exp.Before(cur)
}
