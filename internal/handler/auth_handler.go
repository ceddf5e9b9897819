package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/hitoshi/ticketman/internal/model"
	"github.com/hitoshi/ticketman/internal/validate"
)

const sessionCookieName = "session_id"

// AccountServiceInterface は登録処理に必要なアカウントサービスのインターフェース。
type AccountServiceInterface interface {
	// GetUser は指定メールアドレスのユーザーを返す。見つからない場合はnil。
	GetUser(ctx context.Context, email string) (*model.User, error)
	// Register はユーザーを新規登録する。
	Register(ctx context.Context, email, name, password string) error
}

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	// Login は認証に成功した場合ユーザーとセッションを返す。不一致ならどちらもnil。
	Login(ctx context.Context, email, password string) (*model.User, *model.Session, error)
	// Logout はセッションを破棄する。
	Logout(ctx context.Context, sessionID string) error
	// GetCurrentUser はセッションIDから現在のユーザーを返す。
	GetCurrentUser(ctx context.Context, sessionID string) (*model.User, error)
}

// LoginRecorder はログイン結果の計測フック。nilの場合は何も記録しない。
type LoginRecorder interface {
	RecordRegistration()
	RecordLoginSuccess()
	RecordLoginFailure()
}

// AuthHandlerConfig は認証ハンドラーの設定。
type AuthHandlerConfig struct {
	CookieDomain  string
	CookieSecure  bool
	SessionMaxAge int // セッションCookieの有効期間（秒）
}

// AuthHandler はパスワード認証関連のHTTPハンドラー。
type AuthHandler struct {
	accounts AccountServiceInterface
	auth     AuthServiceInterface
	recorder LoginRecorder
	config   AuthHandlerConfig
}

// NewAuthHandler はAuthHandlerを生成する。recorderはnil可。
func NewAuthHandler(accounts AccountServiceInterface, auth AuthServiceInterface, recorder LoginRecorder, config AuthHandlerConfig) *AuthHandler {
	return &AuthHandler{
		accounts: accounts,
		auth:     auth,
		recorder: recorder,
		config:   config,
	}
}

// registerRequest はユーザー登録リクエストのボディ。
type registerRequest struct {
	Email     string `json:"email"`
	Name      string `json:"name"`
	Password  string `json:"password"`
	Password2 string `json:"password2"`
}

// loginRequest はログインリクエストのボディ。
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// userResponse はユーザー情報のAPIレスポンス。
type userResponse struct {
	ID      string  `json:"id"`
	Email   string  `json:"email"`
	Name    string  `json:"name"`
	Balance float64 `json:"balance"`
}

func toUserResponse(user *model.User) userResponse {
	return userResponse{
		ID:      user.ID,
		Email:   user.Email,
		Name:    user.Name,
		Balance: user.Balance,
	}
}

// Register はユーザー登録を処理する。
// POST /auth/register
//
// 検証は確認入力→名前→メールアドレス→パスワードの順に行い、
// 最初の失敗をそのまま返す。
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, invalidRequestBodyError())
		return
	}

	// 確認入力の照合は各フィールドの検証より先に行う
	if req.Password != req.Password2 {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewPasswordMismatchError())
		return
	}
	if apiErr := validate.Name(req.Name); apiErr != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}
	if apiErr := validate.Email(req.Email); apiErr != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}
	if apiErr := validate.Password(req.Password); apiErr != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}

	// 登録済みメールアドレスの事前チェック
	existing, err := h.accounts.GetUser(r.Context(), req.Email)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if existing != nil {
		writeAPIErrorResponse(w, http.StatusConflict, model.NewUserExistsError())
		return
	}

	if err := h.accounts.Register(r.Context(), req.Email, req.Name, req.Password); err != nil {
		writeAPIErrorResponse(w, http.StatusInternalServerError, model.NewRegisterFailedError())
		return
	}

	if h.recorder != nil {
		h.recorder.RecordRegistration()
	}

	writeJSON(w, http.StatusCreated, map[string]string{"status": "registered"})
}

// Login はパスワード認証を処理し、成功時にセッションCookieを設定する。
// POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, invalidRequestBodyError())
		return
	}

	// 両方空の場合は形式チェックより先に失敗させる
	if req.Email == "" && req.Password == "" {
		h.recordLoginFailure()
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewLoginFailedError())
		return
	}

	// 形式チェック。どちらが不正かは区別しない
	if validate.Email(req.Email) != nil || validate.Password(req.Password) != nil {
		h.recordLoginFailure()
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewLoginFormatInvalidError())
		return
	}

	user, session, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if user == nil {
		h.recordLoginFailure()
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewLoginNoMatchError())
		return
	}

	// セッションCookieを設定（HTTP Only）
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    session.ID,
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   h.config.SessionMaxAge,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	if h.recorder != nil {
		h.recorder.RecordLoginSuccess()
	}

	writeJSON(w, http.StatusOK, toUserResponse(user))
}

// Logout はセッションを破棄する。
// POST /auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	// セッションCookieの取得
	cookie, err := r.Cookie(sessionCookieName)
	if err == nil && cookie.Value != "" {
		// セッションをDBから削除
		if logoutErr := h.auth.Logout(r.Context(), cookie.Value); logoutErr != nil {
			slog.Error("failed to logout", slog.String("error", logoutErr.Error()))
			// ログアウト失敗してもCookieはクリアする
		}
	}

	// セッションCookieをクリア
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	w.WriteHeader(http.StatusNoContent)
}

// Me は現在のログインユーザー情報を返す。
// GET /auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		writeAPIErrorResponse(w, http.StatusUnauthorized, unauthorizedError())
		return
	}

	user, err := h.auth.GetCurrentUser(r.Context(), cookie.Value)
	if err != nil {
		slog.Error("failed to get current user", slog.String("error", err.Error()))
		writeAPIErrorResponse(w, http.StatusUnauthorized, unauthorizedError())
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (h *AuthHandler) recordLoginFailure() {
	if h.recorder != nil {
		h.recorder.RecordLoginFailure()
	}
}

func invalidRequestBodyError() *model.APIError {
	return &model.APIError{
		Code:     "INVALID_REQUEST",
		Message:  "Failed to parse the request body.",
		Category: "validation",
		Action:   "Send a well-formed JSON body.",
	}
}

func unauthorizedError() *model.APIError {
	return &model.APIError{
		Code:     "UNAUTHORIZED",
		Message:  "Authentication required.",
		Category: "auth",
		Action:   "Log in and try again.",
	}
}
