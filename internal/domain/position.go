package domain

import "github.com/shopspring/decimal"

// Position represents a simulated holding of a single token, tracked by
// quantity and USD-value-weighted average cost. A record whose Amount is zero
// is treated as "no holding" regardless of the stale AvgPriceUSD it may keep.
type Position struct {
	Amount      decimal.Decimal `json:"amount"`
	AvgPriceUSD decimal.Decimal `json:"avgPrice"`
}

// IsOpen reports whether there is an actual holding. Amount is the sole
// source of truth; AvgPriceUSD may be stale after a full sell.
func (p Position) IsOpen() bool {
	return p.Amount.IsPositive()
}

// ApplyBuy adds tokens bought for investUSD and recomputes the weighted
// average cost. When the position was empty the average degenerates to the
// effective purchase price.
func (p *Position) ApplyBuy(tokens, investUSD decimal.Decimal) {
	newAmount := p.Amount.Add(tokens)
	if !newAmount.IsPositive() {
		return
	}

	prevCost := p.Amount.Mul(p.AvgPriceUSD)
	p.AvgPriceUSD = prevCost.Add(investUSD).Div(newAmount)
	p.Amount = newAmount
}

// Reduce removes sold tokens from the position, flooring at zero to absorb
// decimal drift from percentage-based sells. Average cost is untouched:
// remaining tokens keep the same cost basis.
func (p *Position) Reduce(tokens decimal.Decimal) {
	p.Amount = p.Amount.Sub(tokens)
	if p.Amount.IsNegative() {
		p.Amount = decimal.Zero
	}
}

// UnrealizedPnLUSD returns the profit implied by the current token price
// versus the average cost for the held amount.
func (p Position) UnrealizedPnLUSD(tokenPriceUSD decimal.Decimal) decimal.Decimal {
	if !p.IsOpen() {
		return decimal.Zero
	}
	return tokenPriceUSD.Sub(p.AvgPriceUSD).Mul(p.Amount)
}

// UnrealizedPnLPercent returns the unrealized profit as a percentage of the
// average cost. Zero when there is no holding or no cost basis.
func (p Position) UnrealizedPnLPercent(tokenPriceUSD decimal.Decimal) decimal.Decimal {
	if !p.IsOpen() || !p.AvgPriceUSD.IsPositive() {
		return decimal.Zero
	}
	return tokenPriceUSD.Sub(p.AvgPriceUSD).Div(p.AvgPriceUSD).Mul(decimal.NewFromInt(100))
}
