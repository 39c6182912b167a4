// Package marketdata resolves ticker symbols to live price and company
// fundamentals. The engine consumes only the Client interface; the Yahoo
// Finance implementation lives in yahoo.go.
package marketdata

import (
	"context"
	"errors"

	"github.com/wiccy46/stockmanager/types"
)

var (
	UnknownSymbolErr = errors.New("symbol not recognized by market data source")
	UnavailableErr   = errors.New("market data source unavailable")
)

type Client interface {
	// Resolve returns current price, company name, exchange and currency
	// for the given symbol. Fails with UnknownSymbolErr for an unknown
	// ticker and UnavailableErr on transient transport problems.
	Resolve(ctx context.Context, symbol string) (types.TickerInfo, error)
}
