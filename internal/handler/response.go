// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/ticketman/internal/model"
)

// apiErrorResponse は統一エラーフォーマットのレスポンス。
type apiErrorResponse struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// apiErrorListResponse は複数の検証エラーをまとめたレスポンス。
// 出品フォームのように全フィールドの検証結果を一度に返す場合に使用する。
type apiErrorListResponse struct {
	Errors []apiErrorResponse `json:"errors"`
}

func toAPIErrorResponse(apiErr *model.APIError) apiErrorResponse {
	return apiErrorResponse{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	}
}

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	writeJSON(w, statusCode, toAPIErrorResponse(apiErr))
}

// writeAPIErrorListResponse は複数の検証エラーをまとめて書き込む。
func writeAPIErrorListResponse(w http.ResponseWriter, statusCode int, apiErrs []*model.APIError) {
	body := apiErrorListResponse{Errors: make([]apiErrorResponse, len(apiErrs))}
	for i, apiErr := range apiErrs {
		body.Errors[i] = toAPIErrorResponse(apiErr)
	}
	writeJSON(w, statusCode, body)
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		writeAPIErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeAPIErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "An internal error occurred.",
		Category: "system",
		Action:   "Wait a moment and try again.",
	})
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeValidation, model.ErrCodePasswordMismatch, model.ErrCodeInvalidTicket:
		return http.StatusBadRequest
	case model.ErrCodeUserExists:
		return http.StatusConflict
	case model.ErrCodeLoginFailed, model.ErrCodeLoginFormatInvalid, model.ErrCodeLoginNoMatch:
		return http.StatusUnauthorized
	case model.ErrCodeTicketNotFound:
		return http.StatusNotFound
	case model.ErrCodeQuantityUnavailable:
		return http.StatusConflict
	case model.ErrCodeInsufficientBalance:
		return http.StatusPaymentRequired
	case model.ErrCodeRegisterFailed, model.ErrCodeTicketCreateFailed, model.ErrCodeTicketUpdateFailed:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
