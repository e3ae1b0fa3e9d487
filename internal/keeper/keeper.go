// Package keeper runs the background retries the marketplace relies on:
// re-sending assignment calls that never reached the transport and
// re-requesting region records whose earlier request failed or timed out.
package keeper

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	processormodels "regionx/internal/processor/models"
	regionmodels "regionx/internal/regions/models"
	"regionx/pkg/domain"
)

type Assignments interface {
	PendingAssignments(ctx context.Context) ([]processormodels.Assignment, error)
	Assign(ctx context.Context, caller domain.AccountID, regionID regionmodels.RegionID) error
}

type Records interface {
	ListByStatus(ctx context.Context, status regionmodels.RecordStatus) ([]regionmodels.RegionID, error)
	RequestRegionRecord(ctx context.Context, caller domain.AccountID, id regionmodels.RegionID) error
}

// Report counts what one pass did.
type Report struct {
	Skipped          bool
	AssignmentsSent  int
	AssignmentErrors int
	RecordsRequested int
	RecordErrors     int
}

type Keeper struct {
	assignments Assignments
	records     Records
	lease       Lease
	ttl         time.Duration
	// payer is charged as the caller of the retried extrinsics.
	payer  domain.AccountID
	logger *slog.Logger
	cron   *cron.Cron
}

type Option func(*Keeper)

func WithLogger(logger *slog.Logger) Option {
	return func(k *Keeper) {
		k.logger = logger
	}
}

func WithLease(lease Lease, ttl time.Duration) Option {
	return func(k *Keeper) {
		k.lease = lease
		k.ttl = ttl
	}
}

func New(assignments Assignments, records Records, payer domain.AccountID, opts ...Option) (*Keeper, error) {
	if assignments == nil {
		return nil, fmt.Errorf("assignment service is required")
	}
	if records == nil {
		return nil, fmt.Errorf("region registry is required")
	}
	k := &Keeper{
		assignments: assignments,
		records:     records,
		lease:       &MemoryLease{},
		ttl:         25 * time.Second,
		payer:       payer,
		logger:      slog.Default(),
		cron:        cron.New(cron.WithSeconds()),
	}
	for _, opt := range opts {
		opt(k)
	}
	return k, nil
}

// RunOnce performs one pass if this instance holds the lease. Individual
// retry failures are logged and counted, not returned.
func (k *Keeper) RunOnce(ctx context.Context) (Report, error) {
	held, err := k.lease.Acquire(ctx, k.ttl)
	if err != nil {
		return Report{}, err
	}
	if !held {
		return Report{Skipped: true}, nil
	}

	var report Report
	pending, err := k.assignments.PendingAssignments(ctx)
	if err != nil {
		return report, err
	}
	for _, a := range pending {
		if err := k.assignments.Assign(ctx, k.payer, a.RegionID); err != nil {
			report.AssignmentErrors++
			k.logger.WarnContext(ctx, "assignment retry failed",
				"region_id", a.RegionID.String(),
				"para_id", a.ParaID,
				"error", err,
			)
			continue
		}
		report.AssignmentsSent++
	}

	unavailable, err := k.records.ListByStatus(ctx, regionmodels.RecordUnavailable)
	if err != nil {
		return report, err
	}
	for _, id := range unavailable {
		if err := k.records.RequestRegionRecord(ctx, k.payer, id); err != nil {
			report.RecordErrors++
			k.logger.WarnContext(ctx, "record re-request failed",
				"region_id", id.String(),
				"error", err,
			)
			continue
		}
		report.RecordsRequested++
	}
	return report, nil
}

// Run executes RunOnce on schedule until ctx is cancelled, then releases the
// lease.
func (k *Keeper) Run(ctx context.Context, schedule string) error {
	_, err := k.cron.AddFunc(schedule, func() {
		report, err := k.RunOnce(ctx)
		if err != nil {
			k.logger.WarnContext(ctx, "keeper pass failed", "error", err)
			return
		}
		if report.Skipped {
			return
		}
		k.logger.InfoContext(ctx, "keeper pass",
			"assignments_sent", report.AssignmentsSent,
			"assignment_errors", report.AssignmentErrors,
			"records_requested", report.RecordsRequested,
			"record_errors", report.RecordErrors,
		)
	})
	if err != nil {
		return fmt.Errorf("schedule keeper: %w", err)
	}
	k.cron.Start()
	<-ctx.Done()
	<-k.cron.Stop().Done()

	releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := k.lease.Release(releaseCtx); err != nil {
		k.logger.Warn("failed to release keeper lease", "error", err)
	}
	return nil
}
