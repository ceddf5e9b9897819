package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/ticketman/internal/model"
)

// --- モック ---

type mockAccountService struct {
	getUserFn  func(ctx context.Context, email string) (*model.User, error)
	registerFn func(ctx context.Context, email, name, password string) error
}

func (m *mockAccountService) GetUser(ctx context.Context, email string) (*model.User, error) {
	if m.getUserFn != nil {
		return m.getUserFn(ctx, email)
	}
	return nil, nil
}

func (m *mockAccountService) Register(ctx context.Context, email, name, password string) error {
	if m.registerFn != nil {
		return m.registerFn(ctx, email, name, password)
	}
	return nil
}

type mockAuthService struct {
	loginFn          func(ctx context.Context, email, password string) (*model.User, *model.Session, error)
	logoutFn         func(ctx context.Context, sessionID string) error
	getCurrentUserFn func(ctx context.Context, sessionID string) (*model.User, error)
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (*model.User, *model.Session, error) {
	if m.loginFn != nil {
		return m.loginFn(ctx, email, password)
	}
	return nil, nil, nil
}

func (m *mockAuthService) Logout(ctx context.Context, sessionID string) error {
	if m.logoutFn != nil {
		return m.logoutFn(ctx, sessionID)
	}
	return nil
}

func (m *mockAuthService) GetCurrentUser(ctx context.Context, sessionID string) (*model.User, error) {
	if m.getCurrentUserFn != nil {
		return m.getCurrentUserFn(ctx, sessionID)
	}
	return nil, errors.New("no session")
}

func newAuthHandler(accounts *mockAccountService, auth *mockAuthService) *AuthHandler {
	return NewAuthHandler(accounts, auth, nil, AuthHandlerConfig{SessionMaxAge: 3600})
}

func postJSON(t *testing.T, handler http.HandlerFunc, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal request body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

func decodeAPIError(t *testing.T, w *httptest.ResponseRecorder) apiErrorResponse {
	t.Helper()
	var body apiErrorResponse
	if err := json.NewDecoder(w.Result().Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return body
}

// --- Register のテスト ---

func TestRegister_Succeeds(t *testing.T) {
	var registered bool
	accounts := &mockAccountService{
		registerFn: func(ctx context.Context, email, name, password string) error {
			registered = true
			if email != "tester0@gmail.com" || name != "Tester Zero" {
				t.Errorf("register called with (%q, %q)", email, name)
			}
			return nil
		},
	}
	h := newAuthHandler(accounts, &mockAuthService{})

	w := postJSON(t, h.Register, "/auth/register", registerRequest{
		Email:     "tester0@gmail.com",
		Name:      "Tester Zero",
		Password:  "Password123",
		Password2: "Password123",
	})

	if w.Result().StatusCode != http.StatusCreated {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusCreated)
	}
	if !registered {
		t.Error("expected Register to be called")
	}
}

func TestRegister_ValidationFailures(t *testing.T) {
	tests := []struct {
		name        string
		req         registerRequest
		wantMessage string
	}{
		{
			name:        "メール形式不正",
			req:         registerRequest{Email: "not-an-email", Name: "Tester Zero", Password: "Password123", Password2: "Password123"},
			wantMessage: "Email format invalid.",
		},
		{
			name:        "名前が短すぎる",
			req:         registerRequest{Email: "tester0@gmail.com", Name: "a", Password: "Password123", Password2: "Password123"},
			wantMessage: "Name must be between 2 and 20 characters.",
		},
		{
			name:        "名前の先頭スペース",
			req:         registerRequest{Email: "tester0@gmail.com", Name: " Tester", Password: "Password123", Password2: "Password123"},
			wantMessage: "First and last characters can't be spaces.",
		},
		{
			name:        "パスワードが短い",
			req:         registerRequest{Email: "tester0@gmail.com", Name: "Tester Zero", Password: "Pass1!", Password2: "Pass1!"},
			wantMessage: "Password must be at least 6 characters long.",
		},
		{
			name:        "確認入力の不一致",
			req:         registerRequest{Email: "tester0@gmail.com", Name: "Tester Zero", Password: "Password123", Password2: "Password124"},
			wantMessage: "The passwords do not match",
		},
		{
			// 確認入力の照合はフィールド検証より優先される
			name:        "名前不正かつ確認入力の不一致",
			req:         registerRequest{Email: "tester0@gmail.com", Name: "x", Password: "Password123", Password2: "Password124"},
			wantMessage: "The passwords do not match",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := newAuthHandler(&mockAccountService{
				registerFn: func(ctx context.Context, email, name, password string) error {
					t.Error("Register must not be called on validation failure")
					return nil
				},
			}, &mockAuthService{})

			w := postJSON(t, h.Register, "/auth/register", tc.req)

			if w.Result().StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusBadRequest)
			}
			if got := decodeAPIError(t, w).Message; got != tc.wantMessage {
				t.Errorf("message = %q, want %q", got, tc.wantMessage)
			}
		})
	}
}

func TestRegister_DuplicateEmail_ReturnsUserExists(t *testing.T) {
	accounts := &mockAccountService{
		getUserFn: func(ctx context.Context, email string) (*model.User, error) {
			return &model.User{ID: "user-1", Email: email}, nil
		},
		registerFn: func(ctx context.Context, email, name, password string) error {
			t.Error("Register must not be called for an existing email")
			return nil
		},
	}
	h := newAuthHandler(accounts, &mockAuthService{})

	w := postJSON(t, h.Register, "/auth/register", registerRequest{
		Email:     "tester0@gmail.com",
		Name:      "Tester Zero",
		Password:  "Password123",
		Password2: "Password123",
	})

	if w.Result().StatusCode != http.StatusConflict {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusConflict)
	}
	if got := decodeAPIError(t, w).Message; got != "User exists" {
		t.Errorf("message = %q, want %q", got, "User exists")
	}
}

func TestRegister_PersistenceFailure_ReturnsGenericMessage(t *testing.T) {
	accounts := &mockAccountService{
		registerFn: func(ctx context.Context, email, name, password string) error {
			return errors.New("connection refused")
		},
	}
	h := newAuthHandler(accounts, &mockAuthService{})

	w := postJSON(t, h.Register, "/auth/register", registerRequest{
		Email:     "tester0@gmail.com",
		Name:      "Tester Zero",
		Password:  "Password123",
		Password2: "Password123",
	})

	if w.Result().StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusInternalServerError)
	}
	if got := decodeAPIError(t, w).Message; got != "Failed to store user info." {
		t.Errorf("message = %q, want %q", got, "Failed to store user info.")
	}
}

// --- Login のテスト ---

func TestLogin_Succeeds_SetsSessionCookie(t *testing.T) {
	auth := &mockAuthService{
		loginFn: func(ctx context.Context, email, password string) (*model.User, *model.Session, error) {
			return &model.User{ID: "user-1", Email: email, Name: "Tester Zero", Balance: 5000},
				&model.Session{ID: "session-abc", UserID: "user-1"}, nil
		},
	}
	h := newAuthHandler(&mockAccountService{}, auth)

	w := postJSON(t, h.Login, "/auth/login", loginRequest{
		Email:    "tester0@gmail.com",
		Password: "Password123",
	})

	if w.Result().StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}

	var sessionCookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == sessionCookieName {
			sessionCookie = c
		}
	}
	if sessionCookie == nil {
		t.Fatal("expected session cookie to be set")
	}
	if sessionCookie.Value != "session-abc" {
		t.Errorf("cookie value = %q, want session-abc", sessionCookie.Value)
	}
	if !sessionCookie.HttpOnly {
		t.Error("session cookie must be HTTP only")
	}

	var body userResponse
	if err := json.NewDecoder(w.Result().Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Email != "tester0@gmail.com" || body.Balance != 5000 {
		t.Errorf("body = %+v", body)
	}
}

func TestLogin_Failures(t *testing.T) {
	tests := []struct {
		name        string
		req         loginRequest
		wantMessage string
	}{
		{
			name:        "両フィールドが空",
			req:         loginRequest{},
			wantMessage: "login failed",
		},
		{
			name:        "メール形式不正",
			req:         loginRequest{Email: "bad email", Password: "Password123"},
			wantMessage: "email/password format is incorrect.",
		},
		{
			name:        "パスワード形式不正",
			req:         loginRequest{Email: "tester0@gmail.com", Password: "weak"},
			wantMessage: "email/password format is incorrect.",
		},
		{
			name:        "認証情報不一致",
			req:         loginRequest{Email: "tester0@gmail.com", Password: "Password999"},
			wantMessage: "email/password combination incorrect",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := newAuthHandler(&mockAccountService{}, &mockAuthService{})

			w := postJSON(t, h.Login, "/auth/login", tc.req)

			if w.Result().StatusCode != http.StatusUnauthorized {
				t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusUnauthorized)
			}
			if got := decodeAPIError(t, w).Message; got != tc.wantMessage {
				t.Errorf("message = %q, want %q", got, tc.wantMessage)
			}
		})
	}
}

// --- Logout のテスト ---

func TestLogout_DeletesSessionAndClearsCookie(t *testing.T) {
	var deleted string
	auth := &mockAuthService{
		logoutFn: func(ctx context.Context, sessionID string) error {
			deleted = sessionID
			return nil
		},
	}
	h := newAuthHandler(&mockAccountService{}, auth)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "session-abc"})
	w := httptest.NewRecorder()

	h.Logout(w, req)

	if w.Result().StatusCode != http.StatusNoContent {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusNoContent)
	}
	if deleted != "session-abc" {
		t.Errorf("deleted session = %q, want session-abc", deleted)
	}

	var cleared bool
	for _, c := range w.Result().Cookies() {
		if c.Name == sessionCookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("expected session cookie to be cleared")
	}
}

// --- Me のテスト ---

func TestMe_ReturnsCurrentUser(t *testing.T) {
	auth := &mockAuthService{
		getCurrentUserFn: func(ctx context.Context, sessionID string) (*model.User, error) {
			if sessionID == "session-abc" {
				return &model.User{ID: "user-1", Email: "tester0@gmail.com", Name: "Tester Zero", Balance: 4500}, nil
			}
			return nil, errors.New("session not found")
		},
	}
	h := newAuthHandler(&mockAccountService{}, auth)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "session-abc"})
	w := httptest.NewRecorder()

	h.Me(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}
	var body userResponse
	if err := json.NewDecoder(w.Result().Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.ID != "user-1" || body.Balance != 4500 {
		t.Errorf("body = %+v", body)
	}
}

func TestMe_WithoutCookie_Returns401(t *testing.T) {
	h := newAuthHandler(&mockAccountService{}, &mockAuthService{})

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	w := httptest.NewRecorder()

	h.Me(w, req)

	if w.Result().StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusUnauthorized)
	}
}
