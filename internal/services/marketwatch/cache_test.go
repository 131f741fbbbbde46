package marketwatch

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"papersim/internal/domain"
)

func TestCacheFallbackBeforeFirstObservation(t *testing.T) {
	cache := NewCache()

	assert.False(t, cache.Observed(domain.AssetSOL))
	assert.False(t, cache.Observed(domain.AssetBNB))
	assert.True(t, cache.PriceOf(domain.AssetSOL).Equal(decimal.NewFromInt(150)))
	assert.True(t, cache.PriceOf(domain.AssetBNB).Equal(decimal.NewFromInt(600)))
}

func TestCacheObserve(t *testing.T) {
	cache := NewCache()

	require.True(t, cache.Observe(domain.AssetSOL, "$142.37"))
	assert.True(t, cache.Observed(domain.AssetSOL))
	assert.True(t, cache.PriceOf(domain.AssetSOL).Equal(decimal.NewFromFloat(142.37)))

	// other asset still on fallback
	assert.False(t, cache.Observed(domain.AssetBNB))
	assert.True(t, cache.PriceOf(domain.AssetBNB).Equal(decimal.NewFromInt(600)))
}

func TestCacheDiscardsNoise(t *testing.T) {
	cache := NewCache()
	require.True(t, cache.Observe(domain.AssetBNB, "$612.40"))

	// blank, zero and garbage readings must not clear the good price
	assert.False(t, cache.Observe(domain.AssetBNB, ""))
	assert.False(t, cache.Observe(domain.AssetBNB, "$0"))
	assert.False(t, cache.Observe(domain.AssetBNB, "loading..."))

	assert.True(t, cache.PriceOf(domain.AssetBNB).Equal(decimal.NewFromFloat(612.40)))
}

type staticProvider struct {
	quotes []Quote
}

func (p *staticProvider) Quotes(_ context.Context) ([]Quote, error) {
	return p.quotes, nil
}

func TestWatcherFeedsCache(t *testing.T) {
	cache := NewCache()
	provider := &staticProvider{quotes: []Quote{
		{Asset: domain.AssetSOL, Text: "$151.2"},
		{Asset: domain.AssetBNB, Text: "not a price"},
	}}

	watcher := NewWatcher(cache, provider, 5*time.Millisecond, zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	err := watcher.Run(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	assert.True(t, cache.Observed(domain.AssetSOL))
	assert.True(t, cache.PriceOf(domain.AssetSOL).Equal(decimal.NewFromFloat(151.2)))
	assert.False(t, cache.Observed(domain.AssetBNB))
}

func TestWatcherObservesBeforeFirstTick(t *testing.T) {
	cache := NewCache()
	provider := &staticProvider{quotes: []Quote{
		{Asset: domain.AssetSOL, Text: "$149.9"},
	}}

	// interval far longer than the test: only the startup observation fires
	watcher := NewWatcher(cache, provider, time.Hour, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- watcher.Run(ctx) }()

	require.Eventually(t, func() bool {
		return cache.Observed(domain.AssetSOL)
	}, time.Second, 5*time.Millisecond)
	assert.True(t, cache.PriceOf(domain.AssetSOL).Equal(decimal.NewFromFloat(149.9)))

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}
