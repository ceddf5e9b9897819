package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/ticketman/internal/middleware"
	"github.com/hitoshi/ticketman/internal/model"
	"github.com/hitoshi/ticketman/internal/validate"
)

// TicketServiceInterface はチケットハンドラーが必要とする台帳サービスのインターフェース。
type TicketServiceInterface interface {
	// GetTicket は指定名のチケットを返す。見つからない場合はnil。
	GetTicket(ctx context.Context, name string) (*model.Ticket, error)
	// TicketExists は指定名のチケットが存在するかを返す。
	TicketExists(ctx context.Context, name string) (bool, error)
	// CreateTicket はチケットを新規登録する。
	CreateTicket(ctx context.Context, name, quantity, price, date string) error
	// UpdateTicket は既存チケットを更新する。
	UpdateTicket(ctx context.Context, name, quantity, price, date string) error
	// ListAvailable は有効期限内のチケット一覧を返す。
	ListAvailable(ctx context.Context) ([]*model.Ticket, error)
}

// PurchaseServiceInterface は購入ハンドラーが必要とするサービスインターフェース。
type PurchaseServiceInterface interface {
	// Buy はチケットを購入する。
	Buy(ctx context.Context, userID, name, quantity string) error
}

// TicketRecorder はチケット操作の計測フック。nilの場合は何も記録しない。
type TicketRecorder interface {
	RecordTicketCreated()
	RecordTicketUpdated()
}

// TicketHandler はチケット管理のHTTPハンドラー。
type TicketHandler struct {
	tickets  TicketServiceInterface
	purchase PurchaseServiceInterface
	recorder TicketRecorder
}

// NewTicketHandler はTicketHandlerを生成する。recorderはnil可。
func NewTicketHandler(tickets TicketServiceInterface, purchase PurchaseServiceInterface, recorder TicketRecorder) *TicketHandler {
	return &TicketHandler{
		tickets:  tickets,
		purchase: purchase,
		recorder: recorder,
	}
}

// ticketFormRequest は出品・更新リクエストのボディ。
// 全フィールドを文字列で受け取り、検証器にそのまま渡す。
type ticketFormRequest struct {
	Name           string `json:"name"`
	Quantity       string `json:"quantity"`
	Price          string `json:"price"`
	ExpirationDate string `json:"expiration_date"`
}

// buyRequest は購入リクエストのボディ。
type buyRequest struct {
	Quantity string `json:"quantity"`
}

// ticketResponse はチケット情報のAPIレスポンス。
type ticketResponse struct {
	Name           string  `json:"name"`
	Quantity       int     `json:"quantity"`
	Price          float64 `json:"price"`
	ExpirationDate string  `json:"expiration_date"`
}

func toTicketResponse(ticket *model.Ticket) ticketResponse {
	return ticketResponse{
		Name:           ticket.Name,
		Quantity:       ticket.Quantity,
		Price:          ticket.Price,
		ExpirationDate: ticket.ExpirationDate.Format(model.DateLayout),
	}
}

// List は販売中のチケット一覧を返す。
// GET /api/tickets
func (h *TicketHandler) List(w http.ResponseWriter, r *http.Request) {
	tickets, err := h.tickets.ListAvailable(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	results := make([]ticketResponse, len(tickets))
	for i, ticket := range tickets {
		results[i] = toTicketResponse(ticket)
	}
	writeJSON(w, http.StatusOK, results)
}

// Sell はチケットの出品を処理する。
// POST /api/tickets
//
// 4フィールドすべてを検証し、失敗をまとめて返す。
func (h *TicketHandler) Sell(w http.ResponseWriter, r *http.Request) {
	var req ticketFormRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, invalidRequestBodyError())
		return
	}

	var failures []*model.APIError
	if apiErr := validate.TicketName(req.Name); apiErr != nil {
		failures = append(failures, apiErr)
	}
	if apiErr := validate.TicketQuantity(req.Quantity); apiErr != nil {
		failures = append(failures, apiErr)
	}
	if apiErr := validate.TicketPrice(req.Price); apiErr != nil {
		failures = append(failures, apiErr)
	}
	if apiErr := validate.TicketDate(req.ExpirationDate); apiErr != nil {
		failures = append(failures, apiErr)
	}
	if len(failures) > 0 {
		writeAPIErrorListResponse(w, http.StatusBadRequest, failures)
		return
	}

	if err := h.tickets.CreateTicket(r.Context(), req.Name, req.Quantity, req.Price, req.ExpirationDate); err != nil {
		handleServiceError(w, err)
		return
	}

	if h.recorder != nil {
		h.recorder.RecordTicketCreated()
	}

	writeJSON(w, http.StatusCreated, map[string]string{"status": "created"})
}

// Update は既存チケットの更新を処理する。
// PUT /api/tickets/{name}
//
// 検証は名前→枚数→価格→日付の順で最初の失敗を返し、
// その後に存在チェックを行う。
func (h *TicketHandler) Update(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var req ticketFormRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, invalidRequestBodyError())
		return
	}

	if apiErr := validate.Ticket(name, req.Quantity, req.Price, req.ExpirationDate); apiErr != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}

	exists, err := h.tickets.TicketExists(r.Context(), name)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if !exists {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewTicketNotFoundError())
		return
	}

	if err := h.tickets.UpdateTicket(r.Context(), name, req.Quantity, req.Price, req.ExpirationDate); err != nil {
		handleServiceError(w, err)
		return
	}

	if h.recorder != nil {
		h.recorder.RecordTicketUpdated()
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// Buy はチケットの購入を処理する。
// POST /api/tickets/{name}/buy
func (h *TicketHandler) Buy(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, unauthorizedError())
		return
	}

	name := chi.URLParam(r, "name")

	var req buyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, invalidRequestBodyError())
		return
	}

	if err := h.purchase.Buy(r.Context(), userID, name, req.Quantity); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "purchased"})
}
