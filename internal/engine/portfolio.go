// Package engine maintains an investor's holdings summary and trade record,
// keeping the two consistent under repeated buy/sell operations.
package engine

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/wiccy46/stockmanager/types"
)

var (
	InvalidArgumentErr = errors.New("invalid argument")
	SymbolNotFoundErr  = errors.New("symbol not found in summary")
	DuplicateSymbolErr = errors.New("duplicate symbol in summary file")
)

// Portfolio is the ledger engine. It exclusively owns the holdings summary
// (one row per symbol, kept in registration order) and the append-only trade
// record. It is not safe for concurrent use; a caller exposing it as a shared
// service must serialize access with a single lock.
type Portfolio struct {
	market marketData
	store  ledgerStore
	logger *zap.Logger
	config *PortfolioConfig

	summary map[string]*types.SummaryRow
	order   []string
	records []types.TradeRecord

	removed []types.SummaryRow
}

func NewPortfolio(market marketData, store ledgerStore, logger *zap.Logger, config *PortfolioConfig) *Portfolio {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config == nil {
		config = NewPortfolioConfig(false, nil, FormatCSV)
	}
	return &Portfolio{
		market:  market,
		store:   store,
		logger:  logger,
		config:  config,
		summary: make(map[string]*types.SummaryRow),
	}
}

func normalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// Add registers holdings for a symbol, resolving name, exchange, currency and
// current price from market data. Calling Add on an already registered symbol
// tops up its holdings rather than overwriting them. Add never produces a
// trade record.
func (p *Portfolio) Add(ctx context.Context, symbol string, holdings int64) error {
	symbol = normalizeSymbol(symbol)
	if symbol == "" {
		return fmt.Errorf("%w: symbol must be a non-empty string", InvalidArgumentErr)
	}

	info, err := p.market.Resolve(ctx, symbol)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", symbol, err)
	}

	now := p.config.now()
	if row, ok := p.summary[symbol]; ok {
		row.Holdings += holdings
		row.Name = info.Name
		row.Exchange = info.Exchange
		row.Currency = info.Currency
		row.PriceAtRegistration = info.Price
		row.LastUpdated = now
		p.logger.Info("topped up holdings",
			zap.String("symbol", symbol),
			zap.Int64("delta", holdings),
			zap.Int64("holdings", row.Holdings))
		return nil
	}

	p.summary[symbol] = &types.SummaryRow{
		Symbol:              symbol,
		Name:                info.Name,
		Exchange:            info.Exchange,
		Holdings:            holdings,
		PriceAtRegistration: info.Price,
		Currency:            info.Currency,
		LastUpdated:         now,
	}
	p.order = append(p.order, symbol)
	p.logger.Info("registered symbol",
		zap.String("symbol", symbol),
		zap.Int64("holdings", holdings))
	return nil
}

// Order describes a trade to execute. A nil Price means the execution price
// is resolved live from market data. SkipSummaryUpdate appends the record
// without touching the holdings summary.
type Order struct {
	Side              types.Side
	Symbol            string
	Amount            int64
	Fee               decimal.Decimal
	Price             *decimal.Decimal
	SkipSummaryUpdate bool
}

// Trade appends a trade record and, unless disabled, applies the trade to the
// holdings summary. The trade record stays sorted by (symbol, timestamp)
// after every append. Validation and price resolution happen before any
// mutation, so a failed trade leaves both tables untouched.
func (p *Portfolio) Trade(ctx context.Context, order Order) (types.TradeRecord, error) {
	if order.Side != types.SideTypeBuy && order.Side != types.SideTypeSell {
		return types.TradeRecord{}, fmt.Errorf("%w: %v", InvalidArgumentErr, types.UnknownSideErr)
	}
	symbol := normalizeSymbol(order.Symbol)
	if symbol == "" {
		return types.TradeRecord{}, fmt.Errorf("%w: symbol must be a non-empty string", InvalidArgumentErr)
	}
	if order.Amount <= 0 {
		return types.TradeRecord{}, fmt.Errorf("%w: amount must be positive", InvalidArgumentErr)
	}
	if order.Fee.IsNegative() {
		return types.TradeRecord{}, fmt.Errorf("%w: fee must not be negative", InvalidArgumentErr)
	}

	var price decimal.Decimal
	var info *types.TickerInfo
	if order.Price != nil {
		price = *order.Price
	} else {
		resolved, err := p.market.Resolve(ctx, symbol)
		if err != nil {
			return types.TradeRecord{}, fmt.Errorf("resolve %s: %w", symbol, err)
		}
		info = &resolved
		price = resolved.Price
	}

	now := p.config.now()
	gross := decimal.NewFromInt(order.Amount).Mul(price)
	record := types.TradeRecord{
		ID:        uuid.NewString(),
		Symbol:    symbol,
		Side:      order.Side,
		Amount:    order.Amount,
		Price:     price,
		Fee:       order.Fee,
		Timestamp: now,
	}
	// The fee is charged on whichever side is active.
	if order.Side == types.SideTypeBuy {
		record.TotalBuy = gross.Sub(order.Fee)
		record.TotalSell = decimal.Zero
	} else {
		record.TotalSell = gross.Sub(order.Fee)
		record.TotalBuy = decimal.Zero
	}

	p.records = append(p.records, record)
	p.sortRecords()

	if !order.SkipSummaryUpdate {
		p.applyToSummary(ctx, record, info)
	}
	return record, nil
}

func (p *Portfolio) applyToSummary(ctx context.Context, record types.TradeRecord, info *types.TickerInfo) {
	now := record.Timestamp
	if row, ok := p.summary[record.Symbol]; ok {
		row.Holdings += record.Delta()
		row.PriceAtRegistration = record.Price
		row.LastUpdated = now
		p.logger.Info("updated summary from trade",
			zap.String("symbol", record.Symbol),
			zap.Int64("delta", record.Delta()),
			zap.Int64("holdings", row.Holdings))
		return
	}

	if !p.config.autoRegisterOnTrade {
		p.logger.Warn("symbol not in summary, trade recorded without summary update",
			zap.String("symbol", record.Symbol))
		return
	}

	if info == nil {
		resolved, err := p.market.Resolve(ctx, record.Symbol)
		if err != nil {
			p.logger.Warn("auto-register failed, trade recorded without summary row",
				zap.String("symbol", record.Symbol),
				zap.Error(err))
			return
		}
		info = &resolved
	}
	p.summary[record.Symbol] = &types.SummaryRow{
		Symbol:              record.Symbol,
		Name:                info.Name,
		Exchange:            info.Exchange,
		Holdings:            record.Delta(),
		PriceAtRegistration: record.Price,
		Currency:            info.Currency,
		LastUpdated:         now,
	}
	p.order = append(p.order, record.Symbol)
	p.logger.Info("auto-registered symbol from trade",
		zap.String("symbol", record.Symbol),
		zap.Int64("holdings", record.Delta()))
}

func (p *Portfolio) sortRecords() {
	sort.SliceStable(p.records, func(i, j int) bool {
		if p.records[i].Symbol != p.records[j].Symbol {
			return p.records[i].Symbol < p.records[j].Symbol
		}
		return p.records[i].Timestamp.Before(p.records[j].Timestamp)
	})
}

// Remove deletes the summary rows for the given symbols and returns how many
// were removed. Absent symbols are silent no-ops. Historical trade records
// are untouched. Removed rows are kept in a recovery buffer until the next
// Remove call; the buffer is persisted by Save and read back by Load, see
// RestoreRemoved.
func (p *Portfolio) Remove(symbols ...string) int {
	if len(symbols) == 0 {
		return 0
	}
	drop := make(map[string]bool, len(symbols))
	for _, s := range symbols {
		drop[normalizeSymbol(s)] = true
	}

	var removed []types.SummaryRow
	kept := p.order[:0]
	for _, symbol := range p.order {
		if drop[symbol] {
			removed = append(removed, *p.summary[symbol])
			delete(p.summary, symbol)
			continue
		}
		kept = append(kept, symbol)
	}
	p.order = kept
	if len(removed) > 0 {
		p.removed = removed
		p.logger.Info("removed symbols from summary", zap.Int("count", len(removed)))
	}
	return len(removed)
}

// RestoreRemoved reinstates the rows deleted by the most recent Remove call
// and returns how many came back. A symbol re-registered since its removal is
// left alone. The buffer only survives until the next Remove.
func (p *Portfolio) RestoreRemoved() int {
	restored := 0
	for _, row := range p.removed {
		if _, ok := p.summary[row.Symbol]; ok {
			continue
		}
		restoredRow := row
		p.summary[row.Symbol] = &restoredRow
		p.order = append(p.order, row.Symbol)
		restored++
	}
	p.removed = nil
	return restored
}

// LoadOptions names the files to read. Paths are independent: any may be
// empty, but not all of them.
type LoadOptions struct {
	SummaryPath string
	RecordPath  string
	RemovedPath string
}

// Load reads the summary and/or trade record from disk. Each table loads
// independently; a failure on one leaves only that table unmodified, and all
// failures are reported together.
func (p *Portfolio) Load(opts LoadOptions) error {
	if opts.SummaryPath == "" && opts.RecordPath == "" && opts.RemovedPath == "" {
		return fmt.Errorf("%w: at least one path is required", InvalidArgumentErr)
	}

	var summaryErr, recordErr, removedErr error
	if opts.SummaryPath != "" {
		rows, err := p.store.LoadSummary(opts.SummaryPath)
		if err != nil {
			summaryErr = fmt.Errorf("load summary: %w", err)
		} else {
			summaryErr = p.replaceSummary(rows)
		}
	}
	if opts.RecordPath != "" {
		records, err := p.store.LoadRecords(opts.RecordPath)
		if err != nil {
			recordErr = fmt.Errorf("load records: %w", err)
		} else {
			p.records = records
			p.sortRecords()
		}
	}
	if opts.RemovedPath != "" {
		rows, err := p.store.LoadSummary(opts.RemovedPath)
		if err != nil {
			removedErr = fmt.Errorf("load removed buffer: %w", err)
		} else {
			p.removed = rows
		}
	}
	return errors.Join(summaryErr, recordErr, removedErr)
}

func (p *Portfolio) replaceSummary(rows []types.SummaryRow) error {
	summary := make(map[string]*types.SummaryRow, len(rows))
	order := make([]string, 0, len(rows))
	for _, row := range rows {
		symbol := normalizeSymbol(row.Symbol)
		if _, ok := summary[symbol]; ok {
			return fmt.Errorf("%w: %s", DuplicateSymbolErr, symbol)
		}
		row.Symbol = symbol
		rowCopy := row
		summary[symbol] = &rowCopy
		order = append(order, symbol)
	}
	p.summary = summary
	p.order = order
	return nil
}

// SaveOptions names the output directory and bare file names. Names must not
// carry an extension; the configured format decides it.
type SaveOptions struct {
	Dir         string
	SummaryName string
	RecordName  string
	RemovedName string
}

// Save writes both tables and the remove recovery buffer to the given
// directory, by default as portfolio.csv, records.csv and removed.csv. The
// buffer file is rewritten on every Save, so a spent or empty buffer persists
// as a header-only file. The writes are independent: a failure on one does
// not block the others, and all failures are reported together.
func (p *Portfolio) Save(opts SaveOptions) error {
	dir := opts.Dir
	if dir == "" {
		dir = "."
	}
	summaryName, err := resolveFileName(opts.SummaryName, "portfolio", p.config.format)
	if err != nil {
		return err
	}
	recordName, err := resolveFileName(opts.RecordName, "records", p.config.format)
	if err != nil {
		return err
	}
	removedName, err := resolveFileName(opts.RemovedName, "removed", p.config.format)
	if err != nil {
		return err
	}

	var summaryErr, recordErr, removedErr error
	if err := p.store.SaveSummary(filepath.Join(dir, summaryName), p.SummaryRows()); err != nil {
		summaryErr = fmt.Errorf("save summary: %w", err)
	}
	if err := p.store.SaveRecords(filepath.Join(dir, recordName), p.Records()); err != nil {
		recordErr = fmt.Errorf("save records: %w", err)
	}
	if err := p.store.SaveSummary(filepath.Join(dir, removedName), append([]types.SummaryRow(nil), p.removed...)); err != nil {
		removedErr = fmt.Errorf("save removed buffer: %w", err)
	}
	return errors.Join(summaryErr, recordErr, removedErr)
}

func resolveFileName(name, fallback string, format Format) (string, error) {
	if name == "" {
		name = fallback
	}
	if filepath.Ext(name) != "" {
		return "", fmt.Errorf("%w: file name %q must not carry an extension", InvalidArgumentErr, name)
	}
	return name + "." + string(format), nil
}

// SummaryRows returns a copy of the holdings summary in registration order.
func (p *Portfolio) SummaryRows() []types.SummaryRow {
	rows := make([]types.SummaryRow, 0, len(p.order))
	for _, symbol := range p.order {
		rows = append(rows, *p.summary[symbol])
	}
	return rows
}

// Records returns a copy of the trade record, sorted by (symbol, timestamp).
func (p *Portfolio) Records() []types.TradeRecord {
	return append([]types.TradeRecord(nil), p.records...)
}
