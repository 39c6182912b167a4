package engine

import (
	"context"

	"github.com/wiccy46/stockmanager/types"
)

type marketData interface {
	Resolve(ctx context.Context, symbol string) (types.TickerInfo, error)
}

type ledgerStore interface {
	LoadSummary(path string) ([]types.SummaryRow, error)
	LoadRecords(path string) ([]types.TradeRecord, error)
	SaveSummary(path string, rows []types.SummaryRow) error
	SaveRecords(path string, records []types.TradeRecord) error
}
