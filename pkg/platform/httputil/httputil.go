package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	dErrors "regionx/pkg/domain-errors"
)

// Validatable is implemented by request bodies that normalize and check themselves.
type Validatable interface {
	Validate() error
}

type errorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps a domain error to a status and a JSON body. Internal errors
// never leak their description.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	status := StatusFor(code)

	resp := errorResponse{Error: string(code)}
	var de *dErrors.Error
	if code != dErrors.CodeInternal && errors.As(err, &de) {
		resp.ErrorDescription = de.Message
	}
	WriteJSON(w, status, resp)
}

// StatusFor returns the HTTP status used for a domain code.
func StatusFor(code dErrors.Code) int {
	switch code {
	case dErrors.CodeBadRequest, dErrors.CodeValidation, dErrors.CodeInvalidInput:
		return http.StatusBadRequest
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case dErrors.CodeForbidden:
		return http.StatusForbidden
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeConflict:
		return http.StatusConflict
	case dErrors.CodeInvariantViolation:
		return http.StatusUnprocessableEntity
	case dErrors.CodeTimeout:
		return http.StatusGatewayTimeout
	case dErrors.CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// DecodeAndPrepare decodes a JSON body into T and validates it. On failure it
// writes the error response and returns false.
func DecodeAndPrepare[T any, PT interface {
	*T
	Validatable
}](w http.ResponseWriter, r *http.Request, logger *slog.Logger, ctx context.Context, requestID string) (*T, bool) {
	req := PT(new(T))
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		logger.WarnContext(ctx, "failed to decode request body",
			"error", err,
			"request_id", requestID,
		)
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid json payload"))
		return nil, false
	}
	if err := req.Validate(); err != nil {
		logger.WarnContext(ctx, "invalid request",
			"error", err,
			"request_id", requestID,
		)
		WriteError(w, err)
		return nil, false
	}
	return (*T)(req), true
}
