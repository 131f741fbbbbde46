package domain

import "github.com/shopspring/decimal"

// Wallet holds the virtual base-asset balances funding simulated trades.
type Wallet struct {
	SOL decimal.Decimal `json:"sol"`
	BNB decimal.Decimal `json:"bnb"`
}

// DefaultWallet returns the balances a fresh wallet starts with.
func DefaultWallet() Wallet {
	return Wallet{
		SOL: decimal.NewFromInt(10),
		BNB: decimal.NewFromInt(5),
	}
}

// Balance returns the balance of the given base asset.
func (w Wallet) Balance(asset Asset) decimal.Decimal {
	if asset == AssetBNB {
		return w.BNB
	}
	return w.SOL
}

// Debit subtracts amount from the asset balance. Callers must check the
// balance beforehand; Debit itself does not reject overdrafts.
func (w *Wallet) Debit(asset Asset, amount decimal.Decimal) {
	if asset == AssetBNB {
		w.BNB = w.BNB.Sub(amount)
		return
	}
	w.SOL = w.SOL.Sub(amount)
}

// Credit adds amount to the asset balance.
func (w *Wallet) Credit(asset Asset, amount decimal.Decimal) {
	if asset == AssetBNB {
		w.BNB = w.BNB.Add(amount)
		return
	}
	w.SOL = w.SOL.Add(amount)
}
