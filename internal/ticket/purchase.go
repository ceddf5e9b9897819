package ticket

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/hitoshi/ticketman/internal/model"
	"github.com/hitoshi/ticketman/internal/repository"
	"github.com/hitoshi/ticketman/internal/validate"
)

// 購入代金の計算に使う料率。サービス手数料35%の上に税5%が乗算される。
const (
	serviceFeeRate = 1.35
	taxRate        = 1.05
)

// PurchaseRecorder は購入の計測フック。nilの場合は何も記録しない。
type PurchaseRecorder interface {
	RecordPurchase(amount float64, quantity int)
}

// PurchaseService はチケット購入の取引ルールを提供する。
// 在庫確認から残高引き落としまでを単一トランザクション内の
// 行ロックで保護し、同時購入による売り越しを防ぐ。
type PurchaseService struct {
	repo     repository.PurchaseRepository
	recorder PurchaseRecorder
}

// NewPurchaseService はPurchaseServiceを生成する。recorderはnil可。
func NewPurchaseService(repo repository.PurchaseRepository, recorder PurchaseRecorder) *PurchaseService {
	return &PurchaseService{repo: repo, recorder: recorder}
}

// TotalCost は手数料と税を含む購入総額を返す。
func TotalCost(price float64, quantity int) float64 {
	return price * float64(quantity) * serviceFeeRate * taxRate
}

// EnoughBalance は残高が購入総額以上かを返す。
func EnoughBalance(balance, price float64, quantity int) bool {
	return balance >= TotalCost(price, quantity)
}

// EnoughTickets は要求枚数が購入可能かを返す。
// 枚数が解析できない場合、チケットが存在しない場合、
// 残枚数を超える場合はいずれもfalseを返す。
func (s *PurchaseService) EnoughTickets(ctx context.Context, name, quantity string) (bool, error) {
	qty, err := strconv.Atoi(strings.TrimSpace(quantity))
	if err != nil {
		return false, nil
	}

	ticket, err := s.repo.FindTicketForUpdate(ctx, name)
	if err != nil {
		return false, fmt.Errorf("failed to find ticket: %w", err)
	}
	if ticket == nil {
		return false, nil
	}

	return qty <= ticket.Quantity, nil
}

// Buy はチケットを購入する。チケットの残枚数を減らし、
// ユーザーの残高から購入総額を引き落とす。
// 業務ルール違反は*model.APIErrorとして返す。
// 判定は名前の妥当性→チケットの存在→枚数の順に行うため、
// 存在しないチケットへの不正な枚数指定は存在エラーとして報告される。
func (s *PurchaseService) Buy(ctx context.Context, userID, name, quantity string) error {
	if apiErr := validate.TicketName(name); apiErr != nil {
		return model.NewInvalidTicketError()
	}

	return s.repo.WithTx(ctx, func(ctx context.Context) error {
		ticket, err := s.repo.FindTicketForUpdate(ctx, name)
		if err != nil {
			return fmt.Errorf("failed to lock ticket: %w", err)
		}
		if ticket == nil {
			return model.NewTicketNotFoundError()
		}

		qty, qtyErr := strconv.Atoi(strings.TrimSpace(quantity))
		if qtyErr != nil || qty < 1 || qty > ticket.Quantity {
			return model.NewQuantityUnavailableError()
		}

		user, err := s.repo.FindUserForUpdate(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to lock user: %w", err)
		}
		if user == nil {
			return fmt.Errorf("user not found: %s", userID)
		}

		cost := TotalCost(ticket.Price, qty)
		if user.Balance < cost {
			return model.NewInsufficientBalanceError()
		}

		if err := s.repo.UpdateTicketQuantity(ctx, ticket.ID, ticket.Quantity-qty); err != nil {
			return fmt.Errorf("failed to decrement ticket quantity: %w", err)
		}
		if err := s.repo.UpdateUserBalance(ctx, user.ID, user.Balance-cost); err != nil {
			return fmt.Errorf("failed to debit user balance: %w", err)
		}

		if s.recorder != nil {
			s.recorder.RecordPurchase(cost, qty)
		}

		slog.Info("ticket purchased",
			slog.String("user_id", user.ID),
			slog.String("ticket_id", ticket.ID),
			slog.Int("quantity", qty),
			slog.Float64("amount", cost),
		)
		return nil
	})
}
