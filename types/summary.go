package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// SummaryRow is the holdings snapshot for a single symbol. Exactly one row
// exists per symbol; Holdings is the running sum of all trade deltas since
// inception and may legitimately reach zero or go negative.
type SummaryRow struct {
	Symbol              string
	Name                string
	Exchange            string
	Holdings            int64
	PriceAtRegistration decimal.Decimal
	Currency            string
	LastUpdated         time.Time
}
