// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// Messageはそのまま画面に表示される文言のため、一字一句変更しないこと。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ（ユーザー向け表示文言）
	Category string // カテゴリ: auth, validation, conflict, funds, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeValidation          = "VALIDATION_FAILED"
	ErrCodeUserExists          = "USER_EXISTS"
	ErrCodePasswordMismatch    = "PASSWORD_MISMATCH"
	ErrCodeRegisterFailed      = "REGISTER_FAILED"
	ErrCodeLoginFailed         = "LOGIN_FAILED"
	ErrCodeLoginFormatInvalid  = "LOGIN_FORMAT_INVALID"
	ErrCodeLoginNoMatch        = "LOGIN_NO_MATCH"
	ErrCodeTicketNotFound      = "TICKET_NOT_FOUND"
	ErrCodeInvalidTicket       = "INVALID_TICKET"
	ErrCodeQuantityUnavailable = "QUANTITY_UNAVAILABLE"
	ErrCodeInsufficientBalance = "INSUFFICIENT_BALANCE"
	ErrCodeTicketCreateFailed  = "TICKET_CREATE_FAILED"
	ErrCodeTicketUpdateFailed  = "TICKET_UPDATE_FAILED"
)

// NewValidationError はフィールド検証エラーを生成する。
// messageには検証器が定める表示文言をそのまま渡す。
func NewValidationError(message string) *APIError {
	return &APIError{
		Code:     ErrCodeValidation,
		Message:  message,
		Category: "validation",
		Action:   "Correct the highlighted field and try again.",
	}
}

// NewUserExistsError は登録済みメールアドレスの重複登録エラーを生成する。
func NewUserExistsError() *APIError {
	return &APIError{
		Code:     ErrCodeUserExists,
		Message:  "User exists",
		Category: "conflict",
		Action:   "Log in with this email or register with a different one.",
	}
}

// NewPasswordMismatchError はパスワード確認入力の不一致エラーを生成する。
func NewPasswordMismatchError() *APIError {
	return &APIError{
		Code:     ErrCodePasswordMismatch,
		Message:  "The passwords do not match",
		Category: "validation",
		Action:   "Enter the same password in both fields.",
	}
}

// NewRegisterFailedError はユーザー登録の永続化失敗エラーを生成する。
// ストレージ内部の詳細はユーザーに公開しない。
func NewRegisterFailedError() *APIError {
	return &APIError{
		Code:     ErrCodeRegisterFailed,
		Message:  "Failed to store user info.",
		Category: "system",
		Action:   "Please wait a moment and try again.",
	}
}

// NewLoginFailedError は空入力によるログイン失敗エラーを生成する。
func NewLoginFailedError() *APIError {
	return &APIError{
		Code:     ErrCodeLoginFailed,
		Message:  "login failed",
		Category: "auth",
		Action:   "Enter your email and password.",
	}
}

// NewLoginFormatInvalidError はログイン入力の形式不正エラーを生成する。
func NewLoginFormatInvalidError() *APIError {
	return &APIError{
		Code:     ErrCodeLoginFormatInvalid,
		Message:  "email/password format is incorrect.",
		Category: "auth",
		Action:   "Check the email and password format.",
	}
}

// NewLoginNoMatchError は認証情報不一致エラーを生成する。
// ユーザー不在とパスワード不一致を区別しない文言を返す。
func NewLoginNoMatchError() *APIError {
	return &APIError{
		Code:     ErrCodeLoginNoMatch,
		Message:  "email/password combination incorrect",
		Category: "auth",
		Action:   "Check your email and password.",
	}
}

// NewTicketNotFoundError はチケット不存在エラーを生成する。
func NewTicketNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeTicketNotFound,
		Message:  "Ticket does not exist.",
		Category: "conflict",
		Action:   "Check the ticket name.",
	}
}

// NewInvalidTicketError は購入時のチケット名不正エラーを生成する。
func NewInvalidTicketError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidTicket,
		Message:  "Invalid ticket.",
		Category: "validation",
		Action:   "Check the ticket name.",
	}
}

// NewQuantityUnavailableError は在庫不足エラーを生成する。
func NewQuantityUnavailableError() *APIError {
	return &APIError{
		Code:     ErrCodeQuantityUnavailable,
		Message:  "The request quantity is not available.",
		Category: "funds",
		Action:   "Reduce the quantity and try again.",
	}
}

// NewInsufficientBalanceError は残高不足エラーを生成する。
func NewInsufficientBalanceError() *APIError {
	return &APIError{
		Code:     ErrCodeInsufficientBalance,
		Message:  "Insufficient balance",
		Category: "funds",
		Action:   "The total including service fee and tax exceeds your balance.",
	}
}

// NewTicketCreateFailedError はチケット作成の失敗エラーを生成する。
// パース失敗と永続化失敗の双方でこの汎用文言に集約する。
func NewTicketCreateFailedError() *APIError {
	return &APIError{
		Code:     ErrCodeTicketCreateFailed,
		Message:  "Unable to create ticket.",
		Category: "system",
		Action:   "Check the ticket fields and try again.",
	}
}

// NewTicketUpdateFailedError はチケット更新の失敗エラーを生成する。
func NewTicketUpdateFailedError() *APIError {
	return &APIError{
		Code:     ErrCodeTicketUpdateFailed,
		Message:  "Unable to update ticket.",
		Category: "system",
		Action:   "Check the ticket fields and try again.",
	}
}
