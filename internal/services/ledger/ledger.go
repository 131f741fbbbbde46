// Package ledger implements the simulated trading core: it converts trade
// requests into wallet, position and history mutations under cost-basis
// accounting rules and persists the result as one atomic-intent write.
package ledger

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"papersim/internal/domain"
	"papersim/internal/services/numfmt"
	"papersim/internal/storage/state"
)

// Expected, user-facing trade rejections. They guarantee zero state
// mutation and are surfaced through the notifier, not treated as defects.
var (
	ErrNoPriceData         = errors.New("no price data for token")
	ErrInsufficientBalance = errors.New("insufficient wallet balance")
	ErrNoHolding           = errors.New("no holding to sell")
)

// DefaultTokenSupply is the fully-diluted supply assumed when deriving a
// token price from its market cap. It misprices tokens with a different
// effective supply, which is why it is configurable rather than hard-coded.
var DefaultTokenSupply = decimal.NewFromInt(1_000_000_000)

// StateStore is the persistence gateway contract the ledger writes through.
// Callers must read-modify-write whole buckets; a trade is durable only once
// Write returns.
type StateStore interface {
	Read(keys ...string) (map[string][]byte, error)
	Write(buckets map[string][]byte) error
}

// PriceSource supplies the current USD price of a base asset.
type PriceSource interface {
	PriceOf(asset domain.Asset) decimal.Decimal
}

// Notifier is the transient user-notification sink for trade outcomes.
type Notifier interface {
	Notify(message string, ok bool)
}

// TradeRequest is a buy or sell action from the presentation layer. Amount
// is an absolute base-asset quantity for buys and a percentage of the
// current holding (0-100] for sells.
type TradeRequest struct {
	Kind            domain.TradeKind
	Chain           domain.Chain
	ContractAddress string
	Ticker          string
	Amount          decimal.Decimal
	MarketCapText   string
}

// TradeResult is the state produced by an accepted trade.
type TradeResult struct {
	Record   domain.TradeRecord
	Wallet   domain.Wallet
	Position domain.Position
}

// Ledger owns all mutation of wallet, positions and trade history. Trades
// are serialized behind a single mutex: each one is a full read-compute-
// write cycle against the store, and interleaving two of them would lose
// updates.
type Ledger struct {
	mu       sync.Mutex
	store    StateStore
	prices   PriceSource
	notifier Notifier
	supply   decimal.Decimal
	logger   *zap.Logger
	now      func() time.Time
}

// New creates a ledger over the given gateway and price source. A zero or
// negative supply falls back to DefaultTokenSupply.
func New(logger *zap.Logger, store StateStore, prices PriceSource, notifier Notifier, supply decimal.Decimal) *Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !supply.IsPositive() {
		supply = DefaultTokenSupply
	}
	return &Ledger{
		store:    store,
		prices:   prices,
		notifier: notifier,
		supply:   supply,
		logger:   logger,
		now:      time.Now,
	}
}

// ledgerState is the in-memory image of the persisted trading buckets.
type ledgerState struct {
	wallet    domain.Wallet
	positions map[string]domain.Position
	trades    []domain.TradeRecord
}

// ExecuteTrade validates and applies a trade request. All preconditions are
// checked before any mutation; a rejected trade leaves every bucket exactly
// as it was. On success the new wallet, positions and history are persisted
// in one write before the result is returned.
func (l *Ledger) ExecuteTrade(req TradeRequest) (*TradeResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !req.Kind.IsValid() {
		return nil, errors.Errorf("unknown trade kind: %q", req.Kind)
	}

	token, err := domain.NewTokenID(req.Chain, req.ContractAddress)
	if err != nil {
		return nil, err
	}

	tokenPriceUSD := l.tokenPriceUSD(req.MarketCapText)
	if !tokenPriceUSD.IsPositive() {
		l.notify(fmt.Sprintf("cannot price %s: no market cap data", req.Ticker), false)
		return nil, errors.Wrapf(ErrNoPriceData, "market cap text %q", req.MarketCapText)
	}

	basePriceUSD := l.prices.PriceOf(token.Chain.Asset())

	st, err := l.loadState()
	if err != nil {
		return nil, err
	}

	var result *TradeResult
	switch req.Kind {
	case domain.TradeBuy:
		result, err = l.executeBuy(st, req, token, tokenPriceUSD, basePriceUSD)
	case domain.TradeSell:
		result, err = l.executeSell(st, req, token, tokenPriceUSD, basePriceUSD)
	}
	if err != nil {
		return nil, err
	}

	if err := l.saveState(st); err != nil {
		l.notify("trade not saved, state unchanged", false)
		return nil, errors.Wrap(err, "persist trade")
	}

	l.logger.Info("trade executed",
		zap.String("kind", req.Kind.String()),
		zap.String("token", token.Key()),
		zap.String("ticker", req.Ticker),
		zap.String("token_price_usd", tokenPriceUSD.String()),
		zap.String("base_price_usd", basePriceUSD.String()))

	l.announce(req, result)
	return result, nil
}

func (l *Ledger) executeBuy(st *ledgerState, req TradeRequest, token domain.TokenID,
	tokenPriceUSD, basePriceUSD decimal.Decimal) (*TradeResult, error) {
	if !req.Amount.IsPositive() {
		return nil, errors.Errorf("buy amount must be positive, got %s", req.Amount)
	}

	asset := token.Chain.Asset()
	balance := st.wallet.Balance(asset)
	if balance.LessThan(req.Amount) {
		l.notify(fmt.Sprintf("insufficient balance: %s %s available", balance.StringFixed(2), asset), false)
		return nil, errors.Wrapf(ErrInsufficientBalance, "have %s %s, need %s", balance, asset, req.Amount)
	}

	investUSD := req.Amount.Mul(basePriceUSD)
	tokensBought := investUSD.Div(tokenPriceUSD)

	st.wallet.Debit(asset, req.Amount)

	pos := st.positions[token.Key()]
	pos.ApplyBuy(tokensBought, investUSD)
	st.positions[token.Key()] = pos

	header := domain.NewTradeHeader(l.now(), token, req.Ticker, numfmt.FormatPrice(tokenPriceUSD.InexactFloat64()))
	record := domain.NewBuyRecord(header, req.Amount, tokensBought)
	st.trades = append(st.trades, record)

	return &TradeResult{Record: record, Wallet: st.wallet, Position: pos}, nil
}

func (l *Ledger) executeSell(st *ledgerState, req TradeRequest, token domain.TokenID,
	tokenPriceUSD, basePriceUSD decimal.Decimal) (*TradeResult, error) {
	hundred := decimal.NewFromInt(100)
	if !req.Amount.IsPositive() || req.Amount.GreaterThan(hundred) {
		return nil, errors.Errorf("sell percent must be in (0, 100], got %s", req.Amount)
	}

	pos := st.positions[token.Key()]
	if !pos.IsOpen() {
		l.notify(fmt.Sprintf("no %s holding to sell", req.Ticker), false)
		return nil, errors.Wrapf(ErrNoHolding, "token %s", token.Key())
	}

	tokensSold := pos.Amount.Mul(req.Amount).Div(hundred)
	receiveUSD := tokensSold.Mul(tokenPriceUSD)
	receiveBase := receiveUSD.Div(basePriceUSD)

	// weighted-average-cost sell rule: selling consumes cost proportionally,
	// the remaining tokens keep the same average
	profitUSD := tokenPriceUSD.Sub(pos.AvgPriceUSD).Mul(tokensSold)
	profitBase := profitUSD.Div(basePriceUSD)

	asset := token.Chain.Asset()
	st.wallet.Credit(asset, receiveBase)

	pos.Reduce(tokensSold)
	st.positions[token.Key()] = pos

	header := domain.NewTradeHeader(l.now(), token, req.Ticker, numfmt.FormatPrice(tokenPriceUSD.InexactFloat64()))
	record := domain.NewSellRecord(header, req.Amount, tokensSold, profitBase.StringFixed(4))
	st.trades = append(st.trades, record)

	return &TradeResult{Record: record, Wallet: st.wallet, Position: pos}, nil
}

func (l *Ledger) announce(req TradeRequest, result *TradeResult) {
	asset := req.Chain.Asset()
	switch req.Kind {
	case domain.TradeBuy:
		l.notify(fmt.Sprintf("bought +%s %s",
			numfmt.FormatAmount(result.Record.Buy.TokensBought.InexactFloat64()), req.Ticker), true)
	case domain.TradeSell:
		sell := result.Record.Sell
		profit, err := decimal.NewFromString(sell.ProfitBase)
		won := err == nil && profit.IsPositive()
		l.notify(fmt.Sprintf("sold %s%%: %s %s", sell.SellPercent, sell.ProfitBase, asset), won)
	}
}

func (l *Ledger) notify(message string, ok bool) {
	if l.notifier == nil {
		return
	}
	l.notifier.Notify(message, ok)
}

// tokenPriceUSD derives the token USD price from scraped market-cap text
// under the configured supply assumption.
func (l *Ledger) tokenPriceUSD(marketCapText string) decimal.Decimal {
	mc := numfmt.ParseQuantity(marketCapText)
	if mc <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromFloat(mc).Div(l.supply)
}

func (l *Ledger) loadState() (*ledgerState, error) {
	buckets, err := l.store.Read(state.BucketWallet, state.BucketPositions, state.BucketTradeHistory)
	if err != nil {
		return nil, errors.Wrap(err, "read state buckets")
	}

	st := &ledgerState{
		wallet:    domain.DefaultWallet(),
		positions: make(map[string]domain.Position),
		trades:    make([]domain.TradeRecord, 0),
	}

	if raw, ok := buckets[state.BucketWallet]; ok {
		if err := json.Unmarshal(raw, &st.wallet); err != nil {
			return nil, errors.Wrap(err, "decode wallet bucket")
		}
	}
	if raw, ok := buckets[state.BucketPositions]; ok {
		if err := json.Unmarshal(raw, &st.positions); err != nil {
			return nil, errors.Wrap(err, "decode positions bucket")
		}
	}
	if raw, ok := buckets[state.BucketTradeHistory]; ok {
		if err := json.Unmarshal(raw, &st.trades); err != nil {
			return nil, errors.Wrap(err, "decode trade history bucket")
		}
	}

	return st, nil
}

func (l *Ledger) saveState(st *ledgerState) error {
	walletRaw, err := json.Marshal(st.wallet)
	if err != nil {
		return errors.Wrap(err, "encode wallet bucket")
	}
	positionsRaw, err := json.Marshal(st.positions)
	if err != nil {
		return errors.Wrap(err, "encode positions bucket")
	}
	tradesRaw, err := json.Marshal(st.trades)
	if err != nil {
		return errors.Wrap(err, "encode trade history bucket")
	}

	return l.store.Write(map[string][]byte{
		state.BucketWallet:       walletRaw,
		state.BucketPositions:    positionsRaw,
		state.BucketTradeHistory: tradesRaw,
	})
}

// Snapshot returns the current persisted wallet, positions and history.
func (l *Ledger) Snapshot() (domain.Wallet, map[string]domain.Position, []domain.TradeRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	st, err := l.loadState()
	if err != nil {
		return domain.Wallet{}, nil, nil, err
	}
	return st.wallet, st.positions, st.trades, nil
}

// Reset clears the trade history and all positions. The wallet is preserved.
func (l *Ledger) Reset() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	positionsRaw, _ := json.Marshal(map[string]domain.Position{})
	tradesRaw, _ := json.Marshal([]domain.TradeRecord{})

	err := l.store.Write(map[string][]byte{
		state.BucketPositions:    positionsRaw,
		state.BucketTradeHistory: tradesRaw,
	})
	if err != nil {
		return errors.Wrap(err, "reset state")
	}

	l.logger.Info("positions and history cleared")
	return nil
}

// SetWallet overwrites the wallet balances. Used by the settings flow.
func (l *Ledger) SetWallet(sol, bnb decimal.Decimal) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	raw, err := json.Marshal(domain.Wallet{SOL: sol, BNB: bnb})
	if err != nil {
		return errors.Wrap(err, "encode wallet bucket")
	}
	return l.store.Write(map[string][]byte{state.BucketWallet: raw})
}

// Settings returns the persisted UI settings, or defaults when absent.
func (l *Ledger) Settings() (domain.UISettings, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	buckets, err := l.store.Read(state.BucketUISettings)
	if err != nil {
		return domain.UISettings{}, errors.Wrap(err, "read settings bucket")
	}

	settings := domain.DefaultUISettings()
	if raw, ok := buckets[state.BucketUISettings]; ok {
		if err := json.Unmarshal(raw, &settings); err != nil {
			return domain.UISettings{}, errors.Wrap(err, "decode settings bucket")
		}
	}
	return settings, nil
}

// SaveSettings persists the UI settings bucket.
func (l *Ledger) SaveSettings(settings domain.UISettings) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	raw, err := json.Marshal(settings)
	if err != nil {
		return errors.Wrap(err, "encode settings bucket")
	}
	return l.store.Write(map[string][]byte{state.BucketUISettings: raw})
}

// TradesAfter returns history records with index greater than after, where
// index is the record's ordinal position in the append-only history. The
// dashboard stream uses it to pick up where it left off.
func (l *Ledger) TradesAfter(after int) ([]domain.TradeRecord, int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	st, err := l.loadState()
	if err != nil {
		return nil, after, err
	}
	if after < 0 {
		after = 0
	}
	if after >= len(st.trades) {
		return nil, len(st.trades), nil
	}
	out := make([]domain.TradeRecord, len(st.trades)-after)
	copy(out, st.trades[after:])
	return out, len(st.trades), nil
}
