package app

import (
	"context"
	"time"

	"github.com/folioapp/folio/internal/common"
	"github.com/folioapp/folio/internal/interfaces"
	"github.com/folioapp/folio/internal/pricecache"
)

// runScheduler records the portfolio value on a fixed interval and
// purges stale cache entries between cycles. It runs until the context
// is cancelled.
func runScheduler(ctx context.Context, analytics interfaces.AnalyticsService, cache *pricecache.Cache, logger *common.Logger, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("Refresh scheduler: stopped")
			return
		case <-ticker.C:
			refreshCycle(ctx, analytics, cache, logger)
		}
	}
}

func refreshCycle(ctx context.Context, analytics interfaces.AnalyticsService, cache *pricecache.Cache, logger *common.Logger) {
	start := time.Now()

	if err := analytics.RecordValue(ctx); err != nil {
		logger.Warn().Err(err).Msg("Refresh cycle: failed to record portfolio value")
		return
	}
	cache.PurgeExpired(ctx)

	logger.Info().Dur("elapsed", time.Since(start)).Msg("Refresh cycle: complete")
}
