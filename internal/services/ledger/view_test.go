package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"papersim/internal/domain"
)

func TestTokenViewWithoutHolding(t *testing.T) {
	l, _, _ := newTestLedger(t)

	view, err := l.TokenView(domain.ChainSol, solMint, "$1,000,000")
	require.NoError(t, err)

	assert.Equal(t, "$0.001", view.PriceUSD)
	assert.Equal(t, "10.00", view.WalletBalance)
	assert.Equal(t, "0", view.Holding)
	assert.Equal(t, "--", view.PnLPercent)
	assert.False(t, view.HasEntry)
}

func TestTokenViewWithHolding(t *testing.T) {
	l, _, _ := newTestLedger(t)

	_, err := l.ExecuteTrade(buyReq(1, "$1,000,000"))
	require.NoError(t, err)

	// price doubled: 150000 tokens at 0.002, cost basis 0.001
	view, err := l.TokenView(domain.ChainSol, solMint, "$2,000,000")
	require.NoError(t, err)

	assert.Equal(t, "$0.002", view.PriceUSD)
	assert.Equal(t, "9.00", view.WalletBalance)
	assert.Equal(t, "150.00K", view.Holding)
	// value = 300 USD = 2 SOL
	assert.Equal(t, "2.00", view.ValueBase)
	assert.Equal(t, "300", view.ValueUSD)
	// pnl = +150 USD = +1 SOL = +100%
	assert.Equal(t, "+100.00%", view.PnLPercent)
	assert.Equal(t, "+1.00", view.PnLBase)
	assert.Equal(t, "+$150", view.PnLUSD)
	assert.True(t, view.Positive)
	assert.True(t, view.HasEntry)
}

func TestTokenViewLoss(t *testing.T) {
	l, _, _ := newTestLedger(t)

	_, err := l.ExecuteTrade(buyReq(1, "$1,000,000"))
	require.NoError(t, err)

	view, err := l.TokenView(domain.ChainSol, solMint, "$500,000")
	require.NoError(t, err)

	assert.Equal(t, "-50.00%", view.PnLPercent)
	assert.Equal(t, "-0.50", view.PnLBase)
	assert.False(t, view.Positive)
}

func TestPnLSummary(t *testing.T) {
	l, _, _ := newTestLedger(t)

	_, err := l.ExecuteTrade(buyReq(1, "$1,000,000"))
	require.NoError(t, err)
	_, err = l.ExecuteTrade(sellReq(50, "$2,000,000"))
	require.NoError(t, err)

	summaries, err := l.PnLSummary()
	require.NoError(t, err)
	require.Len(t, summaries, 1)

	s := summaries[0]
	assert.Equal(t, "WIF", s.Ticker)
	assert.Equal(t, domain.AssetSOL, s.Currency)
	assert.Equal(t, "0.5", s.RealizedPnL)
	assert.Equal(t, "75.00K", s.HoldingAmount)
	assert.Len(t, s.Trades, 2)
	assert.Equal(t, "https://gmgn.ai/sol/token/"+solMint, s.PageURL)
}

func TestPnLSummaryAccumulatesRealizedAcrossSells(t *testing.T) {
	l, _, _ := newTestLedger(t)

	_, err := l.ExecuteTrade(buyReq(1, "$1,000,000"))
	require.NoError(t, err)
	// 75000 tokens at 0.002: profit 0.5 SOL
	_, err = l.ExecuteTrade(sellReq(50, "$2,000,000"))
	require.NoError(t, err)
	// 37500 tokens at 0.003: profit 0.5 SOL again
	_, err = l.ExecuteTrade(sellReq(50, "$3,000,000"))
	require.NoError(t, err)

	summaries, err := l.PnLSummary()
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "1", summaries[0].RealizedPnL)
}

func TestHoldingsSkipsClosedPositions(t *testing.T) {
	l, _, _ := newTestLedger(t)

	_, err := l.ExecuteTrade(buyReq(1, "$1,000,000"))
	require.NoError(t, err)
	_, err = l.ExecuteTrade(sellReq(100, "$1,000,000"))
	require.NoError(t, err)

	holdings, err := l.Holdings()
	require.NoError(t, err)
	assert.Empty(t, holdings)
}

func TestHoldings(t *testing.T) {
	l, _, _ := newTestLedger(t)

	_, err := l.ExecuteTrade(buyReq(1, "$1,000,000"))
	require.NoError(t, err)

	holdings, err := l.Holdings()
	require.NoError(t, err)
	require.Len(t, holdings, 1)
	assert.Equal(t, "WIF", holdings[0].Ticker)
	assert.Equal(t, "150.00K", holdings[0].Amount)
}

func TestActivityNewestFirst(t *testing.T) {
	l, _, _ := newTestLedger(t)

	_, err := l.ExecuteTrade(buyReq(1, "$1,000,000"))
	require.NoError(t, err)
	_, err = l.ExecuteTrade(sellReq(25, "$2,000,000"))
	require.NoError(t, err)

	records, err := l.Activity()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, domain.TradeSell, records[0].Kind())
	assert.Equal(t, domain.TradeBuy, records[1].Kind())
}
