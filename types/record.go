package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeRecord is one executed trade. Records are append-only and never
// mutated after creation.
type TradeRecord struct {
	ID        string
	Symbol    string
	Side      Side
	Amount    int64
	Price     decimal.Decimal
	Fee       decimal.Decimal
	TotalBuy  decimal.Decimal
	TotalSell decimal.Decimal
	Timestamp time.Time
}

// Delta is the signed holdings change of the trade.
func (r TradeRecord) Delta() int64 {
	if r.Side == SideTypeSell {
		return -r.Amount
	}
	return r.Amount
}

// SellAmount returns the sell-side share count, zero for buys.
func (r TradeRecord) SellAmount() int64 {
	if r.Side == SideTypeSell {
		return r.Amount
	}
	return 0
}

// BuyAmount returns the buy-side share count, zero for sells.
func (r TradeRecord) BuyAmount() int64 {
	if r.Side == SideTypeBuy {
		return r.Amount
	}
	return 0
}
