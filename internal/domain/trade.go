package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeKind represents the direction of a simulated trade.
type TradeKind string

const (
	// TradeBuy spends base asset to acquire tokens.
	TradeBuy TradeKind = "buy"
	// TradeSell liquidates a percentage of a held position.
	TradeSell TradeKind = "sell"
)

// String returns the string representation.
func (k TradeKind) String() string {
	return string(k)
}

// IsValid checks if the TradeKind value is valid.
func (k TradeKind) IsValid() bool {
	return k == TradeBuy || k == TradeSell
}

// TradeHeader carries the fields shared by buy and sell records.
type TradeHeader struct {
	// ID is the trade timestamp in unix milliseconds; insertion order in the
	// history is chronological.
	ID int64 `json:"id"`
	// Token identifies the traded token.
	Token TokenID `json:"token"`
	// Currency is the base asset the trade was funded with.
	Currency Asset `json:"currency"`
	// Ticker is the token symbol as scraped from the page.
	Ticker string `json:"ticker"`
	// EntryPriceUSD is the token USD price at execution, display-formatted.
	EntryPriceUSD string `json:"entryPrice"`
	// TimeDisplay is the wall-clock time of the trade for the activity feed.
	TimeDisplay string `json:"time"`
}

// BuyRecord is an immutable record of an executed simulated buy.
type BuyRecord struct {
	TradeHeader
	// SpentBase is the base-asset quantity spent.
	SpentBase decimal.Decimal `json:"buyAmount"`
	// TokensBought is the token quantity acquired.
	TokensBought decimal.Decimal `json:"tokenAmount"`
}

// SellRecord is an immutable record of an executed simulated sell.
type SellRecord struct {
	TradeHeader
	// SellPercent is the percentage of the holding liquidated.
	SellPercent decimal.Decimal `json:"sellPercent"`
	// TokensSold is the token quantity liquidated.
	TokensSold decimal.Decimal `json:"tokenAmount"`
	// ProfitBase is the realized profit in base-asset units, fixed to four
	// decimal places.
	ProfitBase string `json:"profit"`
}

// TradeRecord is a tagged variant holding exactly one of a buy or sell
// record. Records are append-only: never mutated or removed except by an
// explicit bulk clear.
type TradeRecord struct {
	Buy  *BuyRecord  `json:"buy,omitempty"`
	Sell *SellRecord `json:"sell,omitempty"`
}

// NewBuyRecord constructs a buy trade record.
func NewBuyRecord(header TradeHeader, spentBase, tokensBought decimal.Decimal) TradeRecord {
	return TradeRecord{Buy: &BuyRecord{
		TradeHeader:  header,
		SpentBase:    spentBase,
		TokensBought: tokensBought,
	}}
}

// NewSellRecord constructs a sell trade record.
func NewSellRecord(header TradeHeader, sellPercent, tokensSold decimal.Decimal, profitBase string) TradeRecord {
	return TradeRecord{Sell: &SellRecord{
		TradeHeader: header,
		SellPercent: sellPercent,
		TokensSold:  tokensSold,
		ProfitBase:  profitBase,
	}}
}

// Kind returns the direction of the record.
func (r TradeRecord) Kind() TradeKind {
	if r.Sell != nil {
		return TradeSell
	}
	return TradeBuy
}

// Header returns the shared header of whichever variant is set.
func (r TradeRecord) Header() TradeHeader {
	if r.Sell != nil {
		return r.Sell.TradeHeader
	}
	if r.Buy != nil {
		return r.Buy.TradeHeader
	}
	return TradeHeader{}
}

// NewTradeHeader builds the shared header for a trade executed at ts.
func NewTradeHeader(ts time.Time, token TokenID, ticker, entryPriceUSD string) TradeHeader {
	return TradeHeader{
		ID:            ts.UnixMilli(),
		Token:         token,
		Currency:      token.Chain.Asset(),
		Ticker:        ticker,
		EntryPriceUSD: entryPriceUSD,
		TimeDisplay:   ts.Format("15:04:05"),
	}
}
