package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"regionx/internal/regions/models"
	"regionx/pkg/domain"
	"regionx/pkg/platform/httputil"
	"regionx/pkg/platform/middleware/admin"
	"regionx/pkg/platform/middleware/auth"
	request "regionx/pkg/platform/middleware/request"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

// Service is the slice of the region registry exposed over HTTP.
type Service interface {
	Mint(ctx context.Context, id models.RegionID, owner domain.AccountID) error
	Burn(ctx context.Context, id models.RegionID, expectedOwner *domain.AccountID) error
	Transfer(ctx context.Context, caller domain.AccountID, id models.RegionID, newOwner domain.AccountID) error
	RequestRegionRecord(ctx context.Context, caller domain.AccountID, id models.RegionID) error
	DropRegion(ctx context.Context, caller domain.AccountID, id models.RegionID) error
	Region(ctx context.Context, id models.RegionID) (*models.Region, error)
	Attribute(ctx context.Context, id models.RegionID, key string) ([]byte, error)
}

// Handler serves region queries and the owner-signed region extrinsics.
type Handler struct {
	regions    Service
	logger     *slog.Logger
	jwt        auth.JWTValidator
	adminToken string
}

func New(regions Service, logger *slog.Logger, jwt auth.JWTValidator, adminToken string) *Handler {
	return &Handler{regions: regions, logger: logger, jwt: jwt, adminToken: adminToken}
}

// Register mounts the region routes.
func (h *Handler) Register(r chi.Router) {
	r.Get("/regions/{regionID}", h.handleGetRegion)
	r.Get("/regions/{regionID}/attributes/{key}", h.handleGetAttribute)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(h.jwt, h.logger))
		r.Post("/regions/{regionID}/transfer", h.handleTransfer)
		r.Post("/regions/{regionID}/request-record", h.handleRequestRecord)
		r.Post("/regions/{regionID}/drop", h.handleDrop)
		r.Post("/regions/{regionID}/burn", h.handleBurn)
	})

	// Regions arrive through the cross-chain reserve transfer; the operator
	// relays the mint.
	r.Group(func(r chi.Router) {
		r.Use(admin.RequireAdminToken(h.adminToken, h.logger))
		r.Post("/admin/regions", h.handleMint)
	})
}

func (h *Handler) regionID(w http.ResponseWriter, r *http.Request) (models.RegionID, bool) {
	return httputil.PathParam(w, r, "regionID", models.ParseRegionID)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	ctx := r.Context()
	h.logger.WarnContext(ctx, msg,
		"error", err,
		"request_id", request.GetRequestID(ctx),
	)
	httputil.WriteError(w, err)
}

func (h *Handler) handleGetRegion(w http.ResponseWriter, r *http.Request) {
	id, ok := h.regionID(w, r)
	if !ok {
		return
	}
	region, err := h.regions.Region(r.Context(), id)
	if err != nil {
		h.fail(w, r, "get region failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toRegionResponse(id, region))
}

func (h *Handler) handleGetAttribute(w http.ResponseWriter, r *http.Request) {
	id, ok := h.regionID(w, r)
	if !ok {
		return
	}
	key := chi.URLParam(r, "key")
	value, err := h.regions.Attribute(r.Context(), id, key)
	if err != nil {
		h.fail(w, r, "get attribute failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, AttributeResponse{Key: key, Value: hexBytes(value)})
}

func (h *Handler) handleTransfer(w http.ResponseWriter, r *http.Request) {
	caller, ok := httputil.Caller(w, r)
	if !ok {
		return
	}
	id, ok := h.regionID(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[TransferRequest](w, r, h.logger, ctx, request.GetRequestID(ctx))
	if !ok {
		return
	}
	if err := h.regions.Transfer(ctx, caller, id, *req.NewOwner); err != nil {
		h.fail(w, r, "transfer failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleRequestRecord(w http.ResponseWriter, r *http.Request) {
	caller, ok := httputil.Caller(w, r)
	if !ok {
		return
	}
	id, ok := h.regionID(w, r)
	if !ok {
		return
	}
	if err := h.regions.RequestRegionRecord(r.Context(), caller, id); err != nil {
		h.fail(w, r, "request record failed", err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *Handler) handleDrop(w http.ResponseWriter, r *http.Request) {
	caller, ok := httputil.Caller(w, r)
	if !ok {
		return
	}
	id, ok := h.regionID(w, r)
	if !ok {
		return
	}
	if err := h.regions.DropRegion(r.Context(), caller, id); err != nil {
		h.fail(w, r, "drop region failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleBurn(w http.ResponseWriter, r *http.Request) {
	caller, ok := httputil.Caller(w, r)
	if !ok {
		return
	}
	id, ok := h.regionID(w, r)
	if !ok {
		return
	}
	if err := h.regions.Burn(r.Context(), id, &caller); err != nil {
		h.fail(w, r, "burn failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleMint(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[MintRequest](w, r, h.logger, ctx, request.GetRequestID(ctx))
	if !ok {
		return
	}
	id := req.RegionID()
	if err := h.regions.Mint(ctx, id, *req.Owner); err != nil {
		h.fail(w, r, "mint failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, MintResponse{RegionID: id.String()})
}
