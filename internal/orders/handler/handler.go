package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"regionx/internal/orders/models"
	"regionx/pkg/domain"
	"regionx/pkg/platform/httputil"
	"regionx/pkg/platform/middleware/auth"
	request "regionx/pkg/platform/middleware/request"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

type Service interface {
	CreateOrder(ctx context.Context, caller domain.AccountID, paraID domain.ParaID, requirements models.Requirements) (domain.OrderID, error)
	CancelOrder(ctx context.Context, caller domain.AccountID, id domain.OrderID) error
	Contribute(ctx context.Context, caller domain.AccountID, id domain.OrderID, amount domain.Balance) error
	RemoveContribution(ctx context.Context, caller domain.AccountID, id domain.OrderID) error
	Order(ctx context.Context, id domain.OrderID) (*models.Order, error)
	Orders(ctx context.Context) ([]domain.OrderID, error)
	Contributions(ctx context.Context, id domain.OrderID) ([]models.Contribution, error)
	TotalContributions(ctx context.Context, id domain.OrderID) (domain.Balance, error)
}

// Handler serves order creation and crowdfunding.
type Handler struct {
	orders Service
	logger *slog.Logger
	jwt    auth.JWTValidator
}

func New(orders Service, logger *slog.Logger, jwt auth.JWTValidator) *Handler {
	return &Handler{orders: orders, logger: logger, jwt: jwt}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/orders", h.handleListOrders)
	r.Get("/orders/{orderID}", h.handleGetOrder)
	r.Get("/orders/{orderID}/contributions", h.handleListContributions)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(h.jwt, h.logger))
		r.Post("/orders", h.handleCreateOrder)
		r.Delete("/orders/{orderID}", h.handleCancelOrder)
		r.Post("/orders/{orderID}/contributions", h.handleContribute)
		r.Delete("/orders/{orderID}/contributions", h.handleRemoveContribution)
	})
}

func (h *Handler) orderID(w http.ResponseWriter, r *http.Request) (domain.OrderID, bool) {
	return httputil.PathParam(w, r, "orderID", httputil.ParseOrderID)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	ctx := r.Context()
	h.logger.WarnContext(ctx, msg,
		"error", err,
		"request_id", request.GetRequestID(ctx),
	)
	httputil.WriteError(w, err)
}

func (h *Handler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	caller, ok := httputil.Caller(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[CreateOrderRequest](w, r, h.logger, ctx, request.GetRequestID(ctx))
	if !ok {
		return
	}
	id, err := h.orders.CreateOrder(ctx, caller, req.ParaID, req.Requirements)
	if err != nil {
		h.fail(w, r, "create order failed", err)
		return
	}
	h.logger.InfoContext(ctx, "order created",
		"order_id", id,
		"para_id", req.ParaID,
		"request_id", request.GetRequestID(ctx),
	)
	httputil.WriteJSON(w, http.StatusCreated, CreateOrderResponse{OrderID: id})
}

func (h *Handler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	ids, err := h.orders.Orders(r.Context())
	if err != nil {
		h.fail(w, r, "list orders failed", err)
		return
	}
	if ids == nil {
		ids = []domain.OrderID{}
	}
	httputil.WriteJSON(w, http.StatusOK, OrderListResponse{Orders: ids})
}

func (h *Handler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	order, err := h.orders.Order(ctx, id)
	if err != nil {
		h.fail(w, r, "get order failed", err)
		return
	}
	total, err := h.orders.TotalContributions(ctx, id)
	if err != nil {
		h.fail(w, r, "get order total failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, OrderResponse{ID: id, Order: *order, TotalContributions: total})
}

func (h *Handler) handleListContributions(w http.ResponseWriter, r *http.Request) {
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}
	list, err := h.orders.Contributions(r.Context(), id)
	if err != nil {
		h.fail(w, r, "list contributions failed", err)
		return
	}
	if list == nil {
		list = []models.Contribution{}
	}
	httputil.WriteJSON(w, http.StatusOK, ContributionsResponse{OrderID: id, Contributions: list})
}

func (h *Handler) handleCancelOrder(w http.ResponseWriter, r *http.Request) {
	caller, ok := httputil.Caller(w, r)
	if !ok {
		return
	}
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}
	if err := h.orders.CancelOrder(r.Context(), caller, id); err != nil {
		h.fail(w, r, "cancel order failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleContribute(w http.ResponseWriter, r *http.Request) {
	caller, ok := httputil.Caller(w, r)
	if !ok {
		return
	}
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[ContributeRequest](w, r, h.logger, ctx, request.GetRequestID(ctx))
	if !ok {
		return
	}
	if err := h.orders.Contribute(ctx, caller, id, *req.Amount); err != nil {
		h.fail(w, r, "contribute failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleRemoveContribution(w http.ResponseWriter, r *http.Request) {
	caller, ok := httputil.Caller(w, r)
	if !ok {
		return
	}
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}
	if err := h.orders.RemoveContribution(r.Context(), caller, id); err != nil {
		h.fail(w, r, "remove contribution failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
