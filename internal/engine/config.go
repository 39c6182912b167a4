package engine

import "time"

type Format string

const FormatCSV Format = "csv"

// PortfolioConfig carries the engine behavior options. Defaults are applied
// in the constructor, there are no sentinel values.
type PortfolioConfig struct {
	now                 func() time.Time
	autoRegisterOnTrade bool
	format              Format
}

// NewPortfolioConfig builds the engine configuration. autoRegisterOnTrade
// controls whether a trade against a symbol missing from the summary creates
// a row (true) or is logged and skipped (false). A nil clock defaults to
// time.Now; an empty format defaults to CSV.
func NewPortfolioConfig(autoRegisterOnTrade bool, clock func() time.Time, format Format) *PortfolioConfig {
	if clock == nil {
		clock = time.Now
	}
	if format == "" {
		format = FormatCSV
	}
	return &PortfolioConfig{
		now:                 clock,
		autoRegisterOnTrade: autoRegisterOnTrade,
		format:              format,
	}
}
