// Package marketwatch maintains the latest observed USD price of each base
// asset. Observations arrive as raw scraped text on a fixed-period timer;
// the cache keeps the last good value per asset and serves it lock-free of
// the observation loop.
package marketwatch

import (
	"sync"

	"github.com/shopspring/decimal"
	"papersim/internal/domain"
	"papersim/internal/services/numfmt"
)

// Fallback prices used when no observation for an asset has ever succeeded.
// They exist only to keep trading from stalling on a cold start and are
// deliberately conservative static values.
var fallbackPrices = map[domain.Asset]decimal.Decimal{
	domain.AssetSOL: decimal.NewFromInt(150),
	domain.AssetBNB: decimal.NewFromInt(600),
}

// Cache holds the most recent USD price per base asset.
type Cache struct {
	mu     sync.RWMutex
	prices map[domain.Asset]decimal.Decimal
}

// NewCache creates an empty cache; PriceOf serves fallbacks until the first
// successful observation per asset.
func NewCache() *Cache {
	return &Cache{prices: make(map[domain.Asset]decimal.Decimal, len(fallbackPrices))}
}

// Observe parses rawText and, when it yields a positive price, overwrites
// the cached value for asset. Zero or unparseable observations are silently
// discarded so a transient blank reading never clears a previously good
// price. Returns true when the cache was updated.
func (c *Cache) Observe(asset domain.Asset, rawText string) bool {
	value := numfmt.ParseQuantity(rawText)
	if value <= 0 {
		return false
	}

	c.mu.Lock()
	c.prices[asset] = decimal.NewFromFloat(value)
	c.mu.Unlock()
	return true
}

// PriceOf returns the cached USD price for asset, or the static fallback if
// no observation has ever succeeded.
func (c *Cache) PriceOf(asset domain.Asset) decimal.Decimal {
	c.mu.RLock()
	price, ok := c.prices[asset]
	c.mu.RUnlock()
	if ok {
		return price
	}
	return fallbackPrices[asset]
}

// Observed reports whether a genuine observation has been recorded for
// asset, distinguishing real prices from fallbacks.
func (c *Cache) Observed(asset domain.Asset) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.prices[asset]
	return ok
}
