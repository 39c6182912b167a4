package engine

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/wiccy46/stockmanager/types"
)

// Report is a read-only view over the engine's tables. It never mutates them.
type Report struct {
	p *Portfolio
}

func (p *Portfolio) Report() Report {
	return Report{p: p}
}

// BySymbol returns the summary row for a symbol.
func (r Report) BySymbol(symbol string) (types.SummaryRow, error) {
	symbol = normalizeSymbol(symbol)
	row, ok := r.p.summary[symbol]
	if !ok {
		return types.SummaryRow{}, fmt.Errorf("%w: %s", SymbolNotFoundErr, symbol)
	}
	return *row, nil
}

// Holdings returns all summary rows in registration order, not alphabetic.
func (r Report) Holdings() []types.SummaryRow {
	return r.p.SummaryRows()
}

// RecordFilter narrows the trade records returned by Records.
type RecordFilter struct {
	Symbol string
	Limit  int
}

// Records returns trade records matching the filter, in (symbol, timestamp)
// order. A zero filter returns everything.
func (r Report) Records(filter RecordFilter) []types.TradeRecord {
	symbol := normalizeSymbol(filter.Symbol)
	out := make([]types.TradeRecord, 0, len(r.p.records))
	for _, rec := range r.p.records {
		if symbol != "" && rec.Symbol != symbol {
			continue
		}
		out = append(out, rec)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out
}

// Totals aggregates the trade record. TotalBuy and TotalSell are net of fees,
// matching the per-record totals.
type Totals struct {
	Trades    int
	TotalBuy  decimal.Decimal
	TotalSell decimal.Decimal
	TotalFees decimal.Decimal
}

func (r Report) Totals() Totals {
	totals := Totals{
		Trades:    len(r.p.records),
		TotalBuy:  decimal.Zero,
		TotalSell: decimal.Zero,
		TotalFees: decimal.Zero,
	}
	for _, rec := range r.p.records {
		totals.TotalBuy = totals.TotalBuy.Add(rec.TotalBuy)
		totals.TotalSell = totals.TotalSell.Add(rec.TotalSell)
		totals.TotalFees = totals.TotalFees.Add(rec.Fee)
	}
	return totals
}
