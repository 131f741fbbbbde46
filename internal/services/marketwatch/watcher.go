package marketwatch

import (
	"context"
	"time"

	"go.uber.org/zap"
	"papersim/internal/domain"
)

// Quote is one raw price reading for a base asset, exactly as the data
// provider saw it.
type Quote struct {
	Asset domain.Asset
	Text  string
}

// Provider supplies raw text price snapshots. Implementations own the
// scraping or transport mechanics; the watcher only cares about the text.
type Provider interface {
	Quotes(ctx context.Context) ([]Quote, error)
}

// Watcher feeds provider snapshots into the cache on a fixed-period timer.
type Watcher struct {
	cache    *Cache
	provider Provider
	interval time.Duration
	logger   *zap.Logger
}

// NewWatcher creates a watcher polling provider every interval.
func NewWatcher(cache *Cache, provider Provider, interval time.Duration, logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = time.Second
	}
	return &Watcher{cache: cache, provider: provider, interval: interval, logger: logger}
}

// Run polls the provider until ctx is cancelled. Provider errors are logged
// and the previous cached prices keep serving reads.
func (w *Watcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	// observe immediately so cold starts do not sit on fallback prices
	// for a full interval
	w.observeOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.observeOnce(ctx)
		}
	}
}

func (w *Watcher) observeOnce(ctx context.Context) {
	quotes, err := w.provider.Quotes(ctx)
	if err != nil {
		w.logger.Warn("market data provider failed", zap.Error(err))
		return
	}

	for _, q := range quotes {
		if w.cache.Observe(q.Asset, q.Text) {
			w.logger.Debug("price observed",
				zap.String("asset", q.Asset.String()),
				zap.String("raw", q.Text))
		}
	}
}
