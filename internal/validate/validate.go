// Package validate は入力フィールドの検証器を提供する。
// 各検証器は副作用を持たない純関数で、妥当な場合はnilを、
// 不正な場合は表示文言を含む*model.APIErrorを返す。
// 文言は画面にそのまま表示されるため一字一句変更しないこと。
package validate

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/hitoshi/ticketman/internal/model"
)

// emailPattern はメールアドレスの形式を定める。
// 英数字の並び、任意の単一の「.」または「_」、英数字の並び、「@」、
// ドメイン、「.」、2〜3文字のTLDのみを許可する（小文字のみ）。
var emailPattern = regexp.MustCompile(`^[a-z0-9]+[._]?[a-z0-9]+@\w+\.\w{2,3}$`)

// Email はメールアドレスを検証する。
func Email(s string) *model.APIError {
	if len(s) < 1 {
		return model.NewValidationError("Email must not be empty.")
	}
	if !emailPattern.MatchString(s) {
		return model.NewValidationError("Email format invalid.")
	}
	return nil
}

// Name は表示名を検証する。
// 2〜20文字、英数字とスペースのみ、先頭・末尾のスペース禁止。
// チケット名と異なり内部のスペースは許可される。
func Name(s string) *model.APIError {
	n := utf8.RuneCountInString(s)
	if n < 2 || n > 20 {
		return model.NewValidationError("Name must be between 2 and 20 characters.")
	}
	stripped := strings.ReplaceAll(s, " ", "")
	if !isAlnum(stripped) {
		return model.NewValidationError("Name must only contain alphanumeric characters or spaces.")
	}
	if strings.HasPrefix(s, " ") || strings.HasSuffix(s, " ") {
		return model.NewValidationError("First and last characters can't be spaces.")
	}
	return nil
}

// Password はパスワードの強度を検証する。
// 長さ判定はlen < 7で失敗するが文言は「at least 6 characters」のまま。
// 参照実装の文言と閾値をそのまま保存している。
func Password(s string) *model.APIError {
	if utf8.RuneCountInString(s) < 7 {
		return model.NewValidationError("Password must be at least 6 characters long.")
	}
	var hasUpper, hasLower, hasSpecial bool
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		}
		if !unicode.IsLetter(r) {
			hasSpecial = true
		}
	}
	if !hasUpper {
		return model.NewValidationError("Password must have at least one uppercase character.")
	}
	if !hasLower {
		return model.NewValidationError("Password must have at least one lowercase character.")
	}
	if !hasSpecial {
		return model.NewValidationError("Password must have at least one special character.")
	}
	return nil
}

// TicketName はチケット名を検証する。
// 英数字のみ（スペース不可）、60文字以下。空文字列は英数字エラーになる。
func TicketName(s string) *model.APIError {
	if !isAlnum(s) {
		return model.NewValidationError("Name must have alphanumeric characters only.")
	}
	if utf8.RuneCountInString(s) > 60 {
		return model.NewValidationError("Name must be less than 60 characters.")
	}
	return nil
}

// TicketQuantity はチケット枚数の文字列表現を検証する。
// 前後の空白は許容する。
func TicketQuantity(s string) *model.APIError {
	q, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return model.NewValidationError("Quantity must be an integer.")
	}
	if q < 1 || q > 100 {
		return model.NewValidationError("Quantity must be between 1 and 100.")
	}
	return nil
}

// TicketPrice はチケット価格の文字列表現を検証する。
// 前後の空白は許容する。パース失敗時の文言に終端ピリオドがない。
func TicketPrice(s string) *model.APIError {
	p, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return model.NewValidationError("Price must be an integer")
	}
	if p < 10 || p > 100 {
		return model.NewValidationError("Price must be between 10 and 100 inclusive.")
	}
	return nil
}

// TicketDate はチケット有効期限の文字列表現を検証する。
// YYYYMMDD形式の実在する暦日のみ許可する。
func TicketDate(s string) *model.APIError {
	if _, err := time.Parse(model.DateLayout, s); err != nil {
		return model.NewValidationError("Date must be in the format YYYYMMDD.")
	}
	return nil
}

// Ticket はチケットの全フィールドを名前→枚数→価格→日付の固定順で検証し、
// 最初の失敗を返す。すべて妥当な場合はnilを返す。
func Ticket(name, quantity, price, date string) *model.APIError {
	if err := TicketName(name); err != nil {
		return err
	}
	if err := TicketQuantity(quantity); err != nil {
		return err
	}
	if err := TicketPrice(price); err != nil {
		return err
	}
	return TicketDate(date)
}

// isAlnum は空でなく、全文字が英数字かどうかを返す。
func isAlnum(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
