package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"regionx/internal/market/models"
	regionmodels "regionx/internal/regions/models"
	"regionx/pkg/domain"
	"regionx/pkg/platform/httputil"
	"regionx/pkg/platform/middleware/auth"
	request "regionx/pkg/platform/middleware/request"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

type Service interface {
	ListRegion(ctx context.Context, caller domain.AccountID, id regionmodels.RegionID, timeslicePrice domain.Balance, recipient *domain.AccountID) error
	UnlistRegion(ctx context.Context, caller domain.AccountID, id regionmodels.RegionID) error
	UpdateRegionPrice(ctx context.Context, caller domain.AccountID, id regionmodels.RegionID, newPrice domain.Balance) error
	PurchaseRegion(ctx context.Context, caller domain.AccountID, id regionmodels.RegionID, maxPrice domain.Balance) (domain.Balance, error)
	CalculateRegionPrice(ctx context.Context, id regionmodels.RegionID) (domain.Balance, error)
	Listing(ctx context.Context, id regionmodels.RegionID) (*models.Listing, error)
}

// Handler serves the marketplace.
type Handler struct {
	market Service
	logger *slog.Logger
	jwt    auth.JWTValidator
}

func New(market Service, logger *slog.Logger, jwt auth.JWTValidator) *Handler {
	return &Handler{market: market, logger: logger, jwt: jwt}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/market/listings/{regionID}", h.handleGetListing)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(h.jwt, h.logger))
		r.Post("/market/listings", h.handleList)
		r.Delete("/market/listings/{regionID}", h.handleUnlist)
		r.Post("/market/listings/{regionID}/price", h.handleUpdatePrice)
		r.Post("/market/listings/{regionID}/purchase", h.handlePurchase)
	})
}

func (h *Handler) regionID(w http.ResponseWriter, r *http.Request) (regionmodels.RegionID, bool) {
	return httputil.PathParam(w, r, "regionID", regionmodels.ParseRegionID)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	ctx := r.Context()
	h.logger.WarnContext(ctx, msg,
		"error", err,
		"request_id", request.GetRequestID(ctx),
	)
	httputil.WriteError(w, err)
}

// handleGetListing answers with the listing and the price a purchase made
// now would pay.
func (h *Handler) handleGetListing(w http.ResponseWriter, r *http.Request) {
	id, ok := h.regionID(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	listing, err := h.market.Listing(ctx, id)
	if err != nil {
		h.fail(w, r, "get listing failed", err)
		return
	}
	price, err := h.market.CalculateRegionPrice(ctx, id)
	if err != nil {
		h.fail(w, r, "price calculation failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ListingResponse{
		RegionID:       id.String(),
		Seller:         listing.Seller,
		TimeslicePrice: listing.TimeslicePrice,
		SaleRecipient:  listing.SaleRecipient,
		CurrentPrice:   price,
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	caller, ok := httputil.Caller(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[ListRequest](w, r, h.logger, ctx, request.GetRequestID(ctx))
	if !ok {
		return
	}
	if err := h.market.ListRegion(ctx, caller, req.regionID, *req.TimeslicePrice, req.SaleRecipient); err != nil {
		h.fail(w, r, "list region failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, ListedResponse{RegionID: req.regionID.String()})
}

func (h *Handler) handleUnlist(w http.ResponseWriter, r *http.Request) {
	caller, ok := httputil.Caller(w, r)
	if !ok {
		return
	}
	id, ok := h.regionID(w, r)
	if !ok {
		return
	}
	if err := h.market.UnlistRegion(r.Context(), caller, id); err != nil {
		h.fail(w, r, "unlist region failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleUpdatePrice(w http.ResponseWriter, r *http.Request) {
	caller, ok := httputil.Caller(w, r)
	if !ok {
		return
	}
	id, ok := h.regionID(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[UpdatePriceRequest](w, r, h.logger, ctx, request.GetRequestID(ctx))
	if !ok {
		return
	}
	if err := h.market.UpdateRegionPrice(ctx, caller, id, *req.TimeslicePrice); err != nil {
		h.fail(w, r, "update price failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handlePurchase(w http.ResponseWriter, r *http.Request) {
	caller, ok := httputil.Caller(w, r)
	if !ok {
		return
	}
	id, ok := h.regionID(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[PurchaseRequest](w, r, h.logger, ctx, request.GetRequestID(ctx))
	if !ok {
		return
	}
	price, err := h.market.PurchaseRegion(ctx, caller, id, *req.MaxPrice)
	if err != nil {
		h.fail(w, r, "purchase failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, PurchaseResponse{RegionID: id.String(), Price: price})
}
