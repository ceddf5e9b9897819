// Package clock は注入可能な時刻源を提供する。
// 有効期限の判定をテストで固定時刻により検証できるようにする。
package clock

import "time"

// Clock は現在時刻の取得を抽象化するインターフェース。
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

// NewSystem はtime.Nowを返すClockを生成する。
func NewSystem() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

type fixedClock struct {
	now time.Time
}

// NewFixed は常に同じ時刻を返すClockを生成する。テスト用。
func NewFixed(t time.Time) Clock {
	return fixedClock{now: t.UTC()}
}

func (f fixedClock) Now() time.Time {
	return f.now
}
