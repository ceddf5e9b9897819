package account

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/ticketman/internal/model"
)

// --- モック ---

type mockUserRepo struct {
	findByEmailFn   func(ctx context.Context, email string) (*model.User, error)
	createFn        func(ctx context.Context, user *model.User) error
	updateBalanceFn func(ctx context.Context, id string, balance float64) error
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.findByEmailFn != nil {
		return m.findByEmailFn(ctx, email)
	}
	return nil, nil
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	return nil, nil
}

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return nil
}

func (m *mockUserRepo) UpdateBalance(ctx context.Context, id string, balance float64) error {
	if m.updateBalanceFn != nil {
		return m.updateBalanceFn(ctx, id, balance)
	}
	return nil
}

func newTestService(repo *mockUserRepo) *Service {
	// テストはbcrypt.MinCostで高速化する
	return NewService(repo, ServiceConfig{StartingBalance: 5000, BcryptCost: bcrypt.MinCost})
}

// --- テスト ---

// Registerはbcryptハッシュと初期残高付きでユーザーを保存することを検証
func TestService_Register_StoresHashedPasswordAndBalance(t *testing.T) {
	var stored *model.User
	repo := &mockUserRepo{
		createFn: func(ctx context.Context, user *model.User) error {
			stored = user
			return nil
		},
	}
	svc := newTestService(repo)

	err := svc.Register(context.Background(), "tester0@gmail.com", "Tester Zero", "Password123")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if stored == nil {
		t.Fatal("expected user to be stored")
	}
	if stored.Email != "tester0@gmail.com" {
		t.Errorf("email = %q, want %q", stored.Email, "tester0@gmail.com")
	}
	if stored.Balance != 5000 {
		t.Errorf("balance = %f, want 5000", stored.Balance)
	}
	if stored.PasswordHash == "Password123" {
		t.Error("password must not be stored as plaintext")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("Password123")); err != nil {
		t.Errorf("stored hash does not verify against the original password: %v", err)
	}
	if stored.ID == "" {
		t.Error("expected a generated user ID")
	}
}

// Registerは永続化失敗を汎用エラーに集約することを検証
func TestService_Register_CollapsesPersistenceFailure(t *testing.T) {
	repo := &mockUserRepo{
		createFn: func(ctx context.Context, user *model.User) error {
			return errors.New("connection reset by peer")
		},
	}
	svc := newTestService(repo)

	err := svc.Register(context.Background(), "tester0@gmail.com", "Tester Zero", "Password123")
	if !errors.Is(err, ErrUnableToRegister) {
		t.Errorf("Register error = %v, want ErrUnableToRegister", err)
	}
}

// Loginは正しいパスワードでユーザーを返すことを検証
func TestService_Login_Succeeds(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("Password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	repo := &mockUserRepo{
		findByEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			if email == "tester0@gmail.com" {
				return &model.User{
					ID:           "user-1",
					Email:        email,
					PasswordHash: string(hash),
					Balance:      5000,
				}, nil
			}
			return nil, nil
		},
	}
	svc := newTestService(repo)

	user, err := svc.Login(context.Background(), "tester0@gmail.com", "Password123")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if user == nil {
		t.Fatal("expected user, got nil")
	}
	if user.ID != "user-1" {
		t.Errorf("user ID = %q, want %q", user.ID, "user-1")
	}
}

// Loginはユーザー不在とパスワード不一致をどちらもnilで返すことを検証
func TestService_Login_NoMatch(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("Password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	repo := &mockUserRepo{
		findByEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			if email == "tester0@gmail.com" {
				return &model.User{ID: "user-1", Email: email, PasswordHash: string(hash)}, nil
			}
			return nil, nil
		},
	}
	svc := newTestService(repo)

	// ユーザー不在
	user, err := svc.Login(context.Background(), "nobody@gmail.com", "Password123")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if user != nil {
		t.Error("expected nil user for unknown email")
	}

	// パスワード不一致
	user, err = svc.Login(context.Background(), "tester0@gmail.com", "WrongPass1!")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if user != nil {
		t.Error("expected nil user for wrong password")
	}
}

// GetUserはリポジトリの結果をそのまま返すことを検証
func TestService_GetUser(t *testing.T) {
	repo := &mockUserRepo{
		findByEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			if email == "tester0@gmail.com" {
				return &model.User{ID: "user-1", Email: email}, nil
			}
			return nil, nil
		},
	}
	svc := newTestService(repo)

	user, err := svc.GetUser(context.Background(), "tester0@gmail.com")
	if err != nil {
		t.Fatalf("GetUser returned error: %v", err)
	}
	if user == nil || user.ID != "user-1" {
		t.Errorf("user = %+v, want ID user-1", user)
	}

	user, err = svc.GetUser(context.Background(), "nobody@gmail.com")
	if err != nil {
		t.Fatalf("GetUser returned error: %v", err)
	}
	if user != nil {
		t.Errorf("user = %+v, want nil", user)
	}
}
