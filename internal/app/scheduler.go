package app

import (
	"context"
	"time"

	"github.com/omercanyy/investrack/internal/common"
	"github.com/omercanyy/investrack/internal/interfaces"
)

// startRefreshScheduler re-fetches market data on a fixed interval so the
// portfolio view stays current without any request triggering a fetch.
func startRefreshScheduler(ctx context.Context, analyticsService interfaces.AnalyticsService, logger *common.Logger, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info().Dur("interval", interval).Msg("Market refresh scheduler: started")

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("Market refresh scheduler: stopped")
			return
		case <-ticker.C:
			refreshMarketData(ctx, analyticsService, logger)
		}
	}
}

func refreshMarketData(ctx context.Context, analyticsService interfaces.AnalyticsService, logger *common.Logger) {
	start := time.Now()

	if err := analyticsService.RefreshMarketData(ctx); err != nil {
		logger.Warn().Err(err).Msg("Market refresh: failed")
		return
	}

	logger.Info().Dur("elapsed", time.Since(start)).Msg("Market refresh: complete")
}
