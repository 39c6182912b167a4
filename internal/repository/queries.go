package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wiccy46/stockmanager/types"
)

// queries is the pgx-backed implementation of the repository interfaces.
// Monetary columns are NUMERIC; the registered decimal codec scans them
// straight into decimal.Decimal.
type queries struct {
	pool *pgxpool.Pool
}

func (q *queries) ReplaceSummary(ctx context.Context, rows []types.SummaryRow) error {
	tx, err := q.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM portfolio_summary`); err != nil {
		return fmt.Errorf("clear summary: %w", err)
	}
	for i, row := range rows {
		_, err := tx.Exec(ctx,
			`INSERT INTO portfolio_summary
			 (symbol, name, exchange, holdings, price_at_registration, currency, last_updated, ord)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			row.Symbol, row.Name, row.Exchange, row.Holdings,
			row.PriceAtRegistration, row.Currency, row.LastUpdated, i,
		)
		if err != nil {
			return fmt.Errorf("insert summary %s: %w", row.Symbol, err)
		}
	}
	return tx.Commit(ctx)
}

func (q *queries) ListSummary(ctx context.Context) ([]types.SummaryRow, error) {
	rows, err := q.pool.Query(ctx,
		`SELECT symbol, name, exchange, holdings, price_at_registration, currency, last_updated
		 FROM portfolio_summary ORDER BY ord`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []types.SummaryRow
	for rows.Next() {
		var row types.SummaryRow
		if err := rows.Scan(&row.Symbol, &row.Name, &row.Exchange, &row.Holdings,
			&row.PriceAtRegistration, &row.Currency, &row.LastUpdated); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (q *queries) InsertRecord(ctx context.Context, record types.TradeRecord) error {
	_, err := q.pool.Exec(ctx,
		`INSERT INTO trade_records
		 (id, symbol, side, amount, price, fee, total_buy, total_sell, ts)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (id) DO NOTHING`,
		record.ID, record.Symbol, string(record.Side), record.Amount,
		record.Price, record.Fee, record.TotalBuy, record.TotalSell, record.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert record %s: %w", record.ID, err)
	}
	return nil
}

func (q *queries) ListRecords(ctx context.Context, symbol string) ([]types.TradeRecord, error) {
	query := `SELECT id, symbol, side, amount, price, fee, total_buy, total_sell, ts
		 FROM trade_records ORDER BY symbol, ts`
	args := []any{}
	if symbol != "" {
		query = `SELECT id, symbol, side, amount, price, fee, total_buy, total_sell, ts
		 FROM trade_records WHERE symbol = $1 ORDER BY symbol, ts`
		args = append(args, symbol)
	}

	rows, err := q.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRecords(rows)
}

func scanRecords(rows pgx.Rows) ([]types.TradeRecord, error) {
	var out []types.TradeRecord
	for rows.Next() {
		var record types.TradeRecord
		var side string
		if err := rows.Scan(&record.ID, &record.Symbol, &side, &record.Amount,
			&record.Price, &record.Fee, &record.TotalBuy, &record.TotalSell, &record.Timestamp); err != nil {
			return nil, err
		}
		record.Side = types.Side(side)
		out = append(out, record)
	}
	return out, rows.Err()
}
