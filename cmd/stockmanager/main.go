package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/wiccy46/stockmanager/internal/config"
	"github.com/wiccy46/stockmanager/internal/engine"
	"github.com/wiccy46/stockmanager/internal/ledger"
	"github.com/wiccy46/stockmanager/internal/marketdata"
	"github.com/wiccy46/stockmanager/internal/repository"
	"github.com/wiccy46/stockmanager/types"
)

const usage = `usage: stockmanager [-config file] <command> [flags]

commands:
  add      -symbol MSFT -holdings 100        register or top up holdings
  trade    -side buy -symbol MSFT -amount 10 [-price 100] [-fee 1]
  remove   -symbols AAPL,MSFT                drop symbols from the summary
  restore                                    undo the last remove
  show     [-symbol MSFT]                    print the holdings summary
  records  [-symbol MSFT]                    print the trade record
  totals                                     print trade record aggregates
  syncdb                                     push the ledger into PostgreSQL
`

func main() {
	// Optional .env for DATABASE_URL and friends.
	_ = godotenv.Load()

	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.Log.Level)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger, flag.Arg(0), flag.Args()[1:]); err != nil {
		logger.Error("command failed", zap.String("command", flag.Arg(0)), zap.Error(err))
		os.Exit(1)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	zapCfg := zap.NewProductionConfig()
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level %q: %w", level, err)
	}
	zapCfg.Level = lvl
	return zapCfg.Build()
}

func run(cfg *config.Config, logger *zap.Logger, command string, args []string) error {
	market := marketdata.NewYahooClient(
		marketdata.WithTimeout(time.Duration(cfg.MarketData.TimeoutSeconds)*time.Second),
		marketdata.WithCacheTTL(time.Duration(cfg.MarketData.CacheTTLSeconds)*time.Second),
	)
	engineCfg := engine.NewPortfolioConfig(cfg.AutoRegisterOnTrade, nil, engine.FormatCSV)
	p := engine.NewPortfolio(market, ledger.NewFileStore(), logger, engineCfg)

	if err := loadExisting(p, cfg.DataDir); err != nil {
		return err
	}

	ctx := context.Background()
	switch command {
	case "add":
		return cmdAdd(ctx, p, cfg, args)
	case "trade":
		return cmdTrade(ctx, p, cfg, args)
	case "remove":
		return cmdRemove(p, cfg, args)
	case "restore":
		fmt.Printf("restored %d rows\n", p.RestoreRemoved())
		return p.Save(engine.SaveOptions{Dir: cfg.DataDir})
	case "show":
		return cmdShow(p, args)
	case "records":
		return cmdRecords(p, args)
	case "totals":
		return cmdTotals(p)
	case "syncdb":
		return cmdSyncDB(ctx, p, cfg)
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

// loadExisting pulls in whichever ledger files already exist; a fresh
// directory is not an error.
func loadExisting(p *engine.Portfolio, dir string) error {
	opts := engine.LoadOptions{}
	if path := filepath.Join(dir, "portfolio.csv"); fileExists(path) {
		opts.SummaryPath = path
	}
	if path := filepath.Join(dir, "records.csv"); fileExists(path) {
		opts.RecordPath = path
	}
	if path := filepath.Join(dir, "removed.csv"); fileExists(path) {
		opts.RemovedPath = path
	}
	if opts.SummaryPath == "" && opts.RecordPath == "" && opts.RemovedPath == "" {
		return nil
	}
	return p.Load(opts)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func cmdAdd(ctx context.Context, p *engine.Portfolio, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	symbol := fs.String("symbol", "", "ticker symbol")
	holdings := fs.Int64("holdings", 0, "amount of holdings to add")
	fs.Parse(args)

	if err := p.Add(ctx, *symbol, *holdings); err != nil {
		return err
	}
	return p.Save(engine.SaveOptions{Dir: cfg.DataDir})
}

func cmdTrade(ctx context.Context, p *engine.Portfolio, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("trade", flag.ExitOnError)
	sideArg := fs.String("side", "", "buy or sell")
	symbol := fs.String("symbol", "", "ticker symbol")
	amount := fs.Int64("amount", 0, "number of shares")
	fee := fs.Float64("fee", 0, "flat fee in the trade currency")
	price := fs.Float64("price", 0, "execution price; omit to use the live price")
	fs.Parse(args)

	side, err := types.ParseSide(*sideArg)
	if err != nil {
		return err
	}
	order := engine.Order{
		Side:   side,
		Symbol: *symbol,
		Amount: *amount,
		Fee:    decimal.NewFromFloat(*fee),
	}
	if *price > 0 {
		d := decimal.NewFromFloat(*price)
		order.Price = &d
	}

	record, err := p.Trade(ctx, order)
	if err != nil {
		return err
	}
	fmt.Printf("%s %d %s @ %s (fee %s)\n",
		record.Side, record.Amount, record.Symbol, record.Price, record.Fee)
	return p.Save(engine.SaveOptions{Dir: cfg.DataDir})
}

func cmdRemove(p *engine.Portfolio, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("remove", flag.ExitOnError)
	symbols := fs.String("symbols", "", "comma separated ticker symbols")
	fs.Parse(args)

	if *symbols == "" {
		return fmt.Errorf("remove requires -symbols")
	}
	removed := p.Remove(strings.Split(*symbols, ",")...)
	fmt.Printf("removed %d rows\n", removed)
	return p.Save(engine.SaveOptions{Dir: cfg.DataDir})
}

func cmdShow(p *engine.Portfolio, args []string) error {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	symbol := fs.String("symbol", "", "only show this symbol")
	fs.Parse(args)

	report := p.Report()
	if *symbol != "" {
		row, err := report.BySymbol(*symbol)
		if err != nil {
			return err
		}
		printSummaryRows([]types.SummaryRow{row})
		return nil
	}
	printSummaryRows(report.Holdings())
	return nil
}

func printSummaryRows(rows []types.SummaryRow) {
	fmt.Printf("%-8s %-30s %-12s %10s %12s %5s  %s\n",
		"Symbol", "Name", "Exchange", "Holdings", "Price", "Ccy", "Updated")
	for _, row := range rows {
		fmt.Printf("%-8s %-30s %-12s %10d %12s %5s  %s\n",
			row.Symbol, row.Name, row.Exchange, row.Holdings,
			row.PriceAtRegistration, row.Currency,
			row.LastUpdated.Format(ledger.DateLayout))
	}
}

func cmdRecords(p *engine.Portfolio, args []string) error {
	fs := flag.NewFlagSet("records", flag.ExitOnError)
	symbol := fs.String("symbol", "", "only show this symbol")
	fs.Parse(args)

	records := p.Report().Records(engine.RecordFilter{Symbol: *symbol})
	fmt.Printf("%-8s %-4s %8s %12s %12s %12s  %s\n",
		"Symbol", "Side", "Amount", "Price", "Total Buy", "Total Sell", "Date")
	for _, r := range records {
		fmt.Printf("%-8s %-4s %8d %12s %12s %12s  %s\n",
			r.Symbol, r.Side, r.Amount, r.Price, r.TotalBuy, r.TotalSell,
			r.Timestamp.Format(ledger.DateLayout))
	}
	return nil
}

func cmdTotals(p *engine.Portfolio) error {
	totals := p.Report().Totals()
	fmt.Println("===== Trade Record Totals =====")
	fmt.Printf("Trades:      %d\n", totals.Trades)
	fmt.Printf("Total Buy:   %s\n", totals.TotalBuy)
	fmt.Printf("Total Sell:  %s\n", totals.TotalSell)
	fmt.Printf("Total Fees:  %s\n", totals.TotalFees)
	fmt.Println("===============================")
	return nil
}

func cmdSyncDB(ctx context.Context, p *engine.Portfolio, cfg *config.Config) error {
	if cfg.Database.URL == "" {
		return fmt.Errorf("syncdb requires database.url in config or DATABASE_URL")
	}
	db, err := repository.NewDatabase(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Init(ctx); err != nil {
		return err
	}
	if err := db.SaveSummary(ctx, p.SummaryRows()); err != nil {
		return err
	}
	for _, record := range p.Records() {
		if err := db.InsertRecord(ctx, record); err != nil {
			return err
		}
	}
	fmt.Println("ledger synced to database")
	return nil
}
