package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"regionx/internal/currency/models"
	"regionx/pkg/domain"
	dErrors "regionx/pkg/domain-errors"
	"regionx/pkg/platform/httputil"
	"regionx/pkg/platform/middleware/admin"
	request "regionx/pkg/platform/middleware/request"
	"regionx/pkg/platform/tx"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Ledger

type Ledger interface {
	Balance(ctx context.Context, who domain.AccountID) (models.Account, error)
	Deposit(ctx context.Context, who domain.AccountID, amount domain.Balance) error
}

// Handler exposes balances and the operator faucet.
type Handler struct {
	ledger     Ledger
	runner     tx.Runner
	logger     *slog.Logger
	adminToken string
}

func New(ledger Ledger, runner tx.Runner, logger *slog.Logger, adminToken string) *Handler {
	return &Handler{ledger: ledger, runner: runner, logger: logger, adminToken: adminToken}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/accounts/{accountID}/balance", h.handleBalance)

	r.Group(func(r chi.Router) {
		r.Use(admin.RequireAdminToken(h.adminToken, h.logger))
		r.Post("/admin/accounts/{accountID}/deposit", h.handleDeposit)
	})
}

func (h *Handler) handleBalance(w http.ResponseWriter, r *http.Request) {
	who, ok := httputil.PathParam(w, r, "accountID", domain.ParseAccountID)
	if !ok {
		return
	}
	h.writeBalance(w, r.Context(), who)
}

func (h *Handler) handleDeposit(w http.ResponseWriter, r *http.Request) {
	who, ok := httputil.PathParam(w, r, "accountID", domain.ParseAccountID)
	if !ok {
		return
	}
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)
	req, ok := httputil.DecodeAndPrepare[DepositRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	err := h.runner.RunInTx(ctx, func(ctx context.Context) error {
		return h.ledger.Deposit(ctx, who, req.Amount)
	})
	if err != nil {
		h.logger.WarnContext(ctx, "deposit failed",
			"account", who.String(),
			"error", err,
			"request_id", requestID,
		)
		httputil.WriteError(w, err)
		return
	}
	h.logger.InfoContext(ctx, "deposit",
		"account", who.String(),
		"amount", uint64(req.Amount),
		"request_id", requestID,
	)
	h.writeBalance(w, ctx, who)
}

func (h *Handler) writeBalance(w http.ResponseWriter, ctx context.Context, who domain.AccountID) {
	balance, err := h.ledger.Balance(ctx, who)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to read balance",
			"account", who.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, BalanceResponse{
		Account:  who,
		Free:     balance.Free,
		Reserved: balance.Reserved,
	})
}

type DepositRequest struct {
	Amount domain.Balance `json:"amount"`
}

func (r *DepositRequest) Validate() error {
	if r.Amount == 0 {
		return dErrors.New(dErrors.CodeValidation, "amount must be positive")
	}
	return nil
}

type BalanceResponse struct {
	Account  domain.AccountID `json:"account"`
	Free     domain.Balance   `json:"free"`
	Reserved domain.Balance   `json:"reserved"`
}
