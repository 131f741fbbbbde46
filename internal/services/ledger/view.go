package ledger

import (
	"fmt"
	"sort"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"papersim/internal/domain"
)

// TokenView is the per-token display state consumed by the presentation
// layer: current price, holding, value and unrealized PnL, pre-formatted.
type TokenView struct {
	Token         domain.TokenID `json:"token"`
	PriceUSD      string         `json:"price"`
	WalletBalance string         `json:"walletBalance"`
	Holding       string         `json:"holding"`
	ValueBase     string         `json:"valueBase"`
	ValueUSD      string         `json:"valueUSD"`
	PnLPercent    string         `json:"pnlPercent"`
	PnLBase       string         `json:"pnlBase"`
	PnLUSD        string         `json:"pnlUSD"`
	// Positive drives the semantic coloring of the PnL fields.
	Positive bool `json:"positive"`
	HasEntry bool `json:"hasEntry"`
}

// TokenView computes the display state for one token from the current
// position, wallet and market data.
func (l *Ledger) TokenView(chain domain.Chain, contractAddress, marketCapText string) (*TokenView, error) {
	token, err := domain.NewTokenID(chain, contractAddress)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	st, err := l.loadState()
	if err != nil {
		return nil, err
	}

	tokenPriceUSD := l.tokenPriceUSD(marketCapText)
	basePriceUSD := l.prices.PriceOf(chain.Asset())

	view := &TokenView{
		Token:         token,
		PriceUSD:      formatUSD(tokenPriceUSD),
		WalletBalance: st.wallet.Balance(chain.Asset()).StringFixed(2),
		Holding:       "0",
		ValueBase:     "0",
		ValueUSD:      "0",
		PnLPercent:    "--",
		PnLBase:       "--",
		PnLUSD:        "--",
	}

	pos := st.positions[token.Key()]
	if !pos.IsOpen() {
		return view, nil
	}

	valueUSD := pos.Amount.Mul(tokenPriceUSD)
	valueBase := decimal.Zero
	if basePriceUSD.IsPositive() {
		valueBase = valueUSD.Div(basePriceUSD)
	}

	pnlUSD := pos.UnrealizedPnLUSD(tokenPriceUSD)
	pnlBase := decimal.Zero
	if basePriceUSD.IsPositive() {
		pnlBase = pnlUSD.Div(basePriceUSD)
	}
	pnlPct := pos.UnrealizedPnLPercent(tokenPriceUSD)

	sign := ""
	if !pnlUSD.IsNegative() {
		sign = "+"
	}

	view.Holding = formatQty(pos.Amount)
	view.ValueBase = valueBase.StringFixed(2)
	view.ValueUSD = formatQty(valueUSD)
	view.PnLPercent = fmt.Sprintf("%s%s%%", sign, pnlPct.StringFixed(2))
	view.PnLBase = fmt.Sprintf("%s%s", sign, pnlBase.StringFixed(2))
	view.PnLUSD = fmt.Sprintf("%s$%s", sign, pnlUSD.StringFixed(0))
	view.Positive = !pnlUSD.IsNegative()
	view.HasEntry = true

	return view, nil
}

// TokenSummary aggregates the trade history and position of one token for
// the PnL overview: realized profit from sells plus the open holding.
type TokenSummary struct {
	Token          domain.TokenID       `json:"token"`
	Ticker         string               `json:"ticker"`
	Currency       domain.Asset         `json:"currency"`
	RealizedPnL    string               `json:"realizedPnl"`
	HoldingAmount  string               `json:"holding,omitempty"`
	AvgPriceUSD    string               `json:"avgPrice,omitempty"`
	Trades         []domain.TradeRecord `json:"trades"`
	LastActivityID int64                `json:"-"`
	PageURL        string               `json:"url"`

	realized decimal.Decimal
}

// HoldingView is one open position in the holdings overview.
type HoldingView struct {
	Token   domain.TokenID `json:"token"`
	Ticker  string         `json:"ticker"`
	Amount  string         `json:"amount"`
	PageURL string         `json:"url"`
}

// PnLSummary groups the history by token, sums realized sell profits and
// attaches the open holding, sorted by most recent activity first.
func (l *Ledger) PnLSummary() ([]TokenSummary, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	st, err := l.loadState()
	if err != nil {
		return nil, err
	}

	grouped := make(map[string]*TokenSummary)
	for _, record := range st.trades {
		header := record.Header()
		key := header.Token.Key()
		summary, ok := grouped[key]
		if !ok {
			summary = &TokenSummary{
				Token:    header.Token,
				Ticker:   header.Ticker,
				Currency: header.Currency,
				PageURL:  TokenPageURL(header.Token),
			}
			grouped[key] = summary
		}
		summary.Trades = append(summary.Trades, record)
		if header.ID > summary.LastActivityID {
			summary.LastActivityID = header.ID
		}
		if record.Sell != nil {
			profit, err := decimal.NewFromString(record.Sell.ProfitBase)
			if err != nil {
				return nil, errors.Wrapf(err, "decode profit of trade %d", header.ID)
			}
			summary.realized = summary.realized.Add(profit)
		}
	}

	for key, pos := range st.positions {
		if !pos.IsOpen() {
			continue
		}
		summary, ok := grouped[key]
		if !ok {
			token, err := domain.ParseTokenKey(key)
			if err != nil {
				return nil, err
			}
			summary = &TokenSummary{
				Token:    token,
				Currency: token.Chain.Asset(),
				PageURL:  TokenPageURL(token),
			}
			grouped[key] = summary
		}
		summary.HoldingAmount = formatQty(pos.Amount)
		summary.AvgPriceUSD = formatUSD(pos.AvgPriceUSD)
	}

	summaries := make([]TokenSummary, 0, len(grouped))
	for _, summary := range grouped {
		summary.RealizedPnL = summary.realized.String()
		summaries = append(summaries, *summary)
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].LastActivityID > summaries[j].LastActivityID
	})
	return summaries, nil
}

// Holdings lists all open positions with their tickers resolved from the
// trade history.
func (l *Ledger) Holdings() ([]HoldingView, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	st, err := l.loadState()
	if err != nil {
		return nil, err
	}

	tickers := make(map[string]string)
	for _, record := range st.trades {
		header := record.Header()
		if _, ok := tickers[header.Token.Key()]; !ok && header.Ticker != "" {
			tickers[header.Token.Key()] = header.Ticker
		}
	}

	holdings := make([]HoldingView, 0, len(st.positions))
	for key, pos := range st.positions {
		if !pos.IsOpen() {
			continue
		}
		token, err := domain.ParseTokenKey(key)
		if err != nil {
			return nil, err
		}
		holdings = append(holdings, HoldingView{
			Token:   token,
			Ticker:  tickers[key],
			Amount:  formatQty(pos.Amount),
			PageURL: TokenPageURL(token),
		})
	}
	sort.Slice(holdings, func(i, j int) bool {
		return holdings[i].Token.Key() < holdings[j].Token.Key()
	})
	return holdings, nil
}

// Activity returns the full trade history, newest first.
func (l *Ledger) Activity() ([]domain.TradeRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	st, err := l.loadState()
	if err != nil {
		return nil, err
	}

	records := make([]domain.TradeRecord, len(st.trades))
	copy(records, st.trades)
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Header().ID > records[j].Header().ID
	})
	return records, nil
}

// TokenPageURL builds the public token page link for a token identity.
func TokenPageURL(token domain.TokenID) string {
	return fmt.Sprintf("https://gmgn.ai/%s/token/%s", token.Chain, token.ContractAddress)
}
