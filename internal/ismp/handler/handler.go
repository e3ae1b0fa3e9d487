// Package handler exposes the relayer side of the ISMP host over HTTP. The
// relayer posts GET responses, request timeouts and finalized heights of the
// coretime chain; all routes require the operator token.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"regionx/internal/ismp"
	"regionx/internal/ismp/wire"
	dErrors "regionx/pkg/domain-errors"
	"regionx/pkg/platform/httputil"
	"regionx/pkg/platform/middleware/admin"
	request "regionx/pkg/platform/middleware/request"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks HeightSetter
//go:generate mockgen -source=../ismp.go -destination=mocks/relayer.go -package=mocks Relayer

// HeightSetter records finalized state machine heights.
type HeightSetter interface {
	SetHeight(id ismp.StateMachineID, height uint64)
}

type Handler struct {
	relayer    ismp.Relayer
	heights    HeightSetter
	logger     *slog.Logger
	adminToken string
}

func New(relayer ismp.Relayer, heights HeightSetter, logger *slog.Logger, adminToken string) *Handler {
	return &Handler{relayer: relayer, heights: heights, logger: logger, adminToken: adminToken}
}

func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(admin.RequireAdminToken(h.adminToken, h.logger))
		r.Post("/ismp/responses", h.handleResponse)
		r.Post("/ismp/timeouts", h.handleTimeout)
		r.Post("/ismp/heights", h.handleHeight)
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

func (h *Handler) handleResponse(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	body, ok := httputil.DecodeAndPrepare[ResponseBody](w, r, h.logger, ctx, request.GetRequestID(ctx))
	if !ok {
		return
	}
	if err := h.relayer.DeliverResponse(ctx, body.response); err != nil {
		h.fail(w, r, "ismp response rejected", err)
		return
	}
	h.logger.InfoContext(ctx, "ismp response delivered",
		"commitment", body.response.Get.Commitment().String(),
		"request_id", request.GetRequestID(ctx),
	)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleTimeout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	body, ok := httputil.DecodeAndPrepare[TimeoutBody](w, r, h.logger, ctx, request.GetRequestID(ctx))
	if !ok {
		return
	}
	get := body.Request.ToISMP()
	if err := h.relayer.DeliverTimeout(ctx, get); err != nil {
		h.fail(w, r, "ismp timeout rejected", err)
		return
	}
	h.logger.InfoContext(ctx, "ismp timeout delivered",
		"commitment", get.Commitment().String(),
		"request_id", request.GetRequestID(ctx),
	)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleHeight(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	body, ok := httputil.DecodeAndPrepare[HeightBody](w, r, h.logger, ctx, request.GetRequestID(ctx))
	if !ok {
		return
	}
	h.heights.SetHeight(body.id, body.Height)
	w.WriteHeader(http.StatusNoContent)
}

type ResponseBody struct {
	wire.GetResponse

	response ismp.GetResponse
}

func (b *ResponseBody) Validate() error {
	resp, err := b.ToISMP()
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeValidation, "invalid response values")
	}
	b.response = resp
	return nil
}

type TimeoutBody struct {
	wire.Timeout
}

func (b *TimeoutBody) Validate() error {
	if len(b.Request.Keys) == 0 {
		return dErrors.New(dErrors.CodeValidation, "request keys are required")
	}
	return nil
}

type HeightBody struct {
	wire.HeightUpdate

	id ismp.StateMachineID
}

func (b *HeightBody) Validate() error {
	id, err := b.ID()
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeValidation, "invalid state machine id")
	}
	b.id = id
	return nil
}
