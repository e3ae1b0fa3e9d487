package chain

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Poller copies the relay chain's best block number into a BlockCache on a
// cron schedule.
type Poller struct {
	source HeaderSource
	cache  BlockCache
	logger *slog.Logger
	cron   *cron.Cron
}

func NewPoller(source HeaderSource, cache BlockCache, logger *slog.Logger) *Poller {
	return &Poller{
		source: source,
		cache:  cache,
		logger: logger,
		cron:   cron.New(cron.WithSeconds()),
	}
}

// PollOnce fetches the best block and advances the cache.
func (p *Poller) PollOnce(ctx context.Context) error {
	block, err := p.source.BestBlockNumber(ctx)
	if err != nil {
		return err
	}
	return p.cache.Advance(ctx, block)
}

// Run polls on schedule (six-field cron syntax, e.g. "*/6 * * * * *") until
// ctx is cancelled.
func (p *Poller) Run(ctx context.Context, schedule string) error {
	if err := p.PollOnce(ctx); err != nil {
		p.logger.WarnContext(ctx, "initial relay block poll failed", "error", err)
	}
	_, err := p.cron.AddFunc(schedule, func() {
		if err := p.PollOnce(ctx); err != nil {
			p.logger.WarnContext(ctx, "relay block poll failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule relay poller: %w", err)
	}
	p.cron.Start()
	<-ctx.Done()
	<-p.cron.Stop().Done()
	return nil
}
