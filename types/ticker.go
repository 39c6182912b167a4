package types

import "github.com/shopspring/decimal"

// TickerInfo is the resolved market data for a symbol.
type TickerInfo struct {
	Symbol   string
	Name     string
	Exchange string
	Currency string
	Price    decimal.Decimal
}
