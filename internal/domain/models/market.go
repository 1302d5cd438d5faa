package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MarketSnapshot is one symbol's 24h ticker state at fetch time.
type MarketSnapshot struct {
	Symbol           string          `json:"symbol"`
	Price            decimal.Decimal `json:"price"`
	Volume24h        decimal.Decimal `json:"volume24h"`
	ChangePercent24h decimal.Decimal `json:"changePercent24h"`
}

// SnapshotSet is the ordered result of one fetch cycle.
// Sequence increases with fetch start order and decides which set wins.
type SnapshotSet struct {
	Sequence  uint64           `json:"sequence"`
	FetchedAt time.Time        `json:"fetchedAt"`
	Snapshots []MarketSnapshot `json:"snapshots"`
}

// HistoricalBar is one candle.
type HistoricalBar struct {
	OpenTime  time.Time       `json:"openTime"`
	Open      decimal.Decimal `json:"open"`
	High      decimal.Decimal `json:"high"`
	Low       decimal.Decimal `json:"low"`
	Close     decimal.Decimal `json:"close"`
	Volume    decimal.Decimal `json:"volume"`
	CloseTime time.Time       `json:"closeTime"`
}
