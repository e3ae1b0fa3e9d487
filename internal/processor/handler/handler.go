package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"regionx/internal/processor/models"
	regionmodels "regionx/internal/regions/models"
	"regionx/pkg/domain"
	dErrors "regionx/pkg/domain-errors"
	"regionx/pkg/platform/httputil"
	"regionx/pkg/platform/middleware/auth"
	request "regionx/pkg/platform/middleware/request"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

type Service interface {
	FulfillOrder(ctx context.Context, caller domain.AccountID, orderID domain.OrderID, regionID regionmodels.RegionID) error
	Assign(ctx context.Context, caller domain.AccountID, regionID regionmodels.RegionID) error
	Assignment(ctx context.Context, id regionmodels.RegionID) (*models.Assignment, error)
	PendingAssignments(ctx context.Context) ([]models.Assignment, error)
}

// Handler serves order fulfillment and coretime assignment.
type Handler struct {
	processor Service
	logger    *slog.Logger
	jwt       auth.JWTValidator
}

func New(processor Service, logger *slog.Logger, jwt auth.JWTValidator) *Handler {
	return &Handler{processor: processor, logger: logger, jwt: jwt}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/assignments/pending", h.handlePending)
	r.Get("/assignments/{regionID}", h.handleGetAssignment)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(h.jwt, h.logger))
		r.Post("/orders/{orderID}/fulfill", h.handleFulfill)
		r.Post("/assignments/{regionID}/assign", h.handleAssign)
	})
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	ctx := r.Context()
	h.logger.WarnContext(ctx, msg,
		"error", err,
		"request_id", request.GetRequestID(ctx),
	)
	httputil.WriteError(w, err)
}

func (h *Handler) handleFulfill(w http.ResponseWriter, r *http.Request) {
	caller, ok := httputil.Caller(w, r)
	if !ok {
		return
	}
	orderID, ok := httputil.PathParam(w, r, "orderID", httputil.ParseOrderID)
	if !ok {
		return
	}
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[FulfillRequest](w, r, h.logger, ctx, request.GetRequestID(ctx))
	if !ok {
		return
	}
	if err := h.processor.FulfillOrder(ctx, caller, orderID, req.regionID); err != nil {
		h.fail(w, r, "fulfill order failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleAssign re-sends the assignment call. Anyone may pay for the retry.
func (h *Handler) handleAssign(w http.ResponseWriter, r *http.Request) {
	caller, ok := httputil.Caller(w, r)
	if !ok {
		return
	}
	id, ok := httputil.PathParam(w, r, "regionID", regionmodels.ParseRegionID)
	if !ok {
		return
	}
	if err := h.processor.Assign(r.Context(), caller, id); err != nil {
		h.fail(w, r, "assign failed", err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *Handler) handleGetAssignment(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.PathParam(w, r, "regionID", regionmodels.ParseRegionID)
	if !ok {
		return
	}
	a, err := h.processor.Assignment(r.Context(), id)
	if err != nil {
		h.fail(w, r, "get assignment failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toAssignmentResponse(*a))
}

func (h *Handler) handlePending(w http.ResponseWriter, r *http.Request) {
	pending, err := h.processor.PendingAssignments(r.Context())
	if err != nil {
		h.fail(w, r, "list pending assignments failed", err)
		return
	}
	resp := PendingResponse{Assignments: make([]AssignmentResponse, 0, len(pending))}
	for _, a := range pending {
		resp.Assignments = append(resp.Assignments, toAssignmentResponse(a))
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

type FulfillRequest struct {
	RegionID string `json:"region_id"`

	regionID regionmodels.RegionID
}

func (r *FulfillRequest) Validate() error {
	id, err := regionmodels.ParseRegionID(r.RegionID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeValidation, "region_id is invalid")
	}
	r.regionID = id
	return nil
}

type AssignmentResponse struct {
	RegionID string        `json:"region_id"`
	ParaID   domain.ParaID `json:"para_id"`
	Sent     bool          `json:"sent"`
}

type PendingResponse struct {
	Assignments []AssignmentResponse `json:"assignments"`
}

func toAssignmentResponse(a models.Assignment) AssignmentResponse {
	return AssignmentResponse{RegionID: a.RegionID.String(), ParaID: a.ParaID, Sent: a.Sent}
}
