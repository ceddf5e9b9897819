// Package account はユーザーアカウントの照会・登録・認証を提供する。
package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/ticketman/internal/model"
	"github.com/hitoshi/ticketman/internal/repository"
)

// ErrUnableToRegister は登録の永続化失敗を表す。
// 一意制約違反（同時登録の競合）を含め、ストレージ起因の失敗は
// すべてこのエラーに集約し、内部詳細は公開しない。
var ErrUnableToRegister = errors.New("unable to register user")

// ServiceConfig はアカウントサービスの設定。
type ServiceConfig struct {
	StartingBalance float64 // 新規登録ユーザーの初期残高
	BcryptCost      int     // bcryptのコストパラメータ
}

// Service はアカウントディレクトリのサービス層。
// パスワードはbcrypt（ソルト付き一方向ハッシュ）で保存する。
type Service struct {
	userRepo repository.UserRepository
	config   ServiceConfig
}

// NewService はServiceを生成する。
// BcryptCostが0の場合はbcrypt.DefaultCostを使用する。
func NewService(userRepo repository.UserRepository, config ServiceConfig) *Service {
	if config.BcryptCost == 0 {
		config.BcryptCost = bcrypt.DefaultCost
	}
	if config.StartingBalance == 0 {
		config.StartingBalance = model.DefaultBalance
	}
	return &Service{
		userRepo: userRepo,
		config:   config,
	}
}

// GetUser は指定メールアドレスのユーザーを取得する。見つからない場合はnilを返す。
func (s *Service) GetUser(ctx context.Context, email string) (*model.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// Register は新規ユーザーを登録する。
// パスワードはbcryptでハッシュ化して保存し、初期残高を付与する。
// フィールド検証とパスワード確認入力の照合は呼び出し側の責務。
// 永続化に失敗した場合（一意制約の競合を含む）はErrUnableToRegisterを返す。
func (s *Service) Register(ctx context.Context, email, name, password string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.config.BcryptCost)
	if err != nil {
		slog.Error("failed to hash password", slog.String("error", err.Error()))
		return ErrUnableToRegister
	}

	now := time.Now()
	user := &model.User{
		ID:           uuid.New().String(),
		Email:        email,
		Name:         name,
		PasswordHash: string(hashed),
		Balance:      s.config.StartingBalance,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if repository.IsUniqueViolation(err) {
			slog.Warn("registration lost uniqueness race", slog.String("email", email))
		} else {
			slog.Error("failed to store user", slog.String("error", err.Error()))
		}
		return ErrUnableToRegister
	}

	slog.Info("new user registered",
		slog.String("user_id", user.ID),
		slog.String("email", email),
	)

	return nil
}

// Login はメールアドレスとパスワードでユーザーを認証する。
// ユーザー不在・パスワード不一致のいずれもnilを返し、両者を区別しない。
// パスワードの照合はbcryptのVerifyに委譲する（タイミング攻撃耐性のため
// 独自比較は行わない）。
func (s *Service) Login(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, nil
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil
	}

	return user, nil
}
