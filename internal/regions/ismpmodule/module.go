// Package ismpmodule applies the responses and timeouts of region record
// requests to the registry.
package ismpmodule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"regionx/internal/ismp"
	"regionx/internal/regions/models"
	"regionx/internal/regions/storagekey"
	dErrors "regionx/pkg/domain-errors"
	"regionx/pkg/platform/tx"
)

var (
	ErrNotSupported         = dErrors.New(dErrors.CodeBadRequest, "not_supported")
	ErrKeyDecodeFailed      = dErrors.New(dErrors.CodeInvalidInput, "key_decode_failed")
	ErrResponseDecodeFailed = dErrors.New(dErrors.CodeInvalidInput, "response_decode_failed")
	ErrRegionNotFound       = dErrors.New(dErrors.CodeNotFound, "region_not_found")
	ErrValueNotFound        = dErrors.New(dErrors.CodeInvalidInput, "value_not_found")
	ErrEmptyValue           = dErrors.New(dErrors.CodeInvalidInput, "empty_value")
)

// Registry is the part of the region registry the module writes to.
type Registry interface {
	CompleteRecordRequest(ctx context.Context, id models.RegionID, commitment models.Commitment, record models.RegionRecord) error
	ExpireRecordRequest(ctx context.Context, id models.RegionID, commitment models.Commitment) error
}

// Module implements ismp.Module for region record requests.
type Module struct {
	registry Registry
	runner   tx.Runner
	logger   *slog.Logger
	tracer   trace.Tracer
}

type Option func(*Module)

func WithLogger(logger *slog.Logger) Option {
	return func(m *Module) {
		m.logger = logger
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(m *Module) {
		m.tracer = tracer
	}
}

func New(registry Registry, runner tx.Runner, opts ...Option) (*Module, error) {
	if registry == nil {
		return nil, fmt.Errorf("region registry is required")
	}
	if runner == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	m := &Module{
		registry: registry,
		runner:   runner,
		logger:   slog.Default(),
		tracer:   otel.Tracer("regionx/regions/ismpmodule"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

var _ ismp.Module = (*Module)(nil)

// OnAccept rejects incoming POST requests; the module only issues GETs.
func (m *Module) OnAccept(ctx context.Context, _ ismp.PostRequest) error {
	_, span := m.tracer.Start(ctx, "regions.ismp.on_accept")
	defer span.End()
	return ErrNotSupported
}

type decodedEntry struct {
	id     models.RegionID
	record models.RegionRecord
}

// OnResponse decodes every key and value of a GET response and applies all
// records in one transaction. Any failure applies nothing.
func (m *Module) OnResponse(ctx context.Context, response ismp.Response) (err error) {
	ctx, span := m.tracer.Start(ctx, "regions.ismp.on_response")
	defer func() { endSpan(span, err) }()

	get, ok := response.(ismp.GetResponse)
	if !ok {
		return ErrNotSupported
	}
	commitment := models.Commitment(get.Get.Commitment())
	span.SetAttributes(
		attribute.String("ismp.commitment", commitment.String()),
		attribute.Int("ismp.keys", len(get.Get.Keys)),
	)

	entries := make([]decodedEntry, 0, len(get.Get.Keys))
	for _, key := range get.Get.Keys {
		value, err := readValue(get.Values, key)
		if err != nil {
			return err
		}
		id, err := storagekey.RegionIDFromKey(key)
		if err != nil {
			return dErrors.Wrap(err, ErrKeyDecodeFailed.Code, ErrKeyDecodeFailed.Message)
		}
		record, err := models.DecodeRegionRecord(value)
		if err != nil {
			return dErrors.Wrap(err, ErrResponseDecodeFailed.Code, ErrResponseDecodeFailed.Message)
		}
		entries = append(entries, decodedEntry{id: id, record: record})
	}

	err = m.runner.RunInTx(ctx, func(ctx context.Context) error {
		for _, e := range entries {
			if err := m.registry.CompleteRecordRequest(ctx, e.id, commitment, e.record); err != nil {
				return fmt.Errorf("region %s: %w", e.id, err)
			}
		}
		return nil
	})
	if err != nil {
		m.logger.WarnContext(ctx, "region record response rejected",
			"commitment", commitment.String(),
			"error", err,
		)
		return err
	}
	return nil
}

// OnTimeout marks the regions of a timed-out GET request unavailable when they
// are still pending on that request. Other timeouts carry no region ids and
// are ignored.
func (m *Module) OnTimeout(ctx context.Context, timeout ismp.Timeout) (err error) {
	ctx, span := m.tracer.Start(ctx, "regions.ismp.on_timeout")
	defer func() { endSpan(span, err) }()

	rt, ok := timeout.(ismp.RequestTimeout)
	if !ok {
		return nil
	}
	get, ok := rt.Request.(ismp.GetRequest)
	if !ok {
		return nil
	}

	commitment := models.Commitment(get.Commitment())
	span.SetAttributes(attribute.String("ismp.commitment", commitment.String()))

	ids := make([]models.RegionID, 0, len(get.Keys))
	for _, key := range get.Keys {
		id, err := storagekey.RegionIDFromKey(key)
		if err != nil {
			return dErrors.Wrap(err, ErrKeyDecodeFailed.Code, ErrKeyDecodeFailed.Message)
		}
		ids = append(ids, id)
	}

	err = m.runner.RunInTx(ctx, func(ctx context.Context) error {
		for _, id := range ids {
			if err := m.registry.ExpireRecordRequest(ctx, id, commitment); err != nil {
				if errors.Is(err, models.ErrUnknownRegion) {
					return ErrRegionNotFound
				}
				return fmt.Errorf("region %s: %w", id, err)
			}
		}
		return nil
	})
	if err != nil {
		m.logger.WarnContext(ctx, "region record timeout rejected",
			"commitment", commitment.String(),
			"error", err,
		)
		return err
	}
	return nil
}

// readValue distinguishes a key the response omitted from a key whose
// storage entry is empty.
func readValue(values map[string][]byte, key []byte) ([]byte, error) {
	value, ok := values[string(key)]
	if !ok {
		return nil, ErrValueNotFound
	}
	if value == nil {
		return nil, ErrEmptyValue
	}
	return value, nil
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
