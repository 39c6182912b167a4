// Package repository persists the holdings summary and trade record in
// PostgreSQL, as an alternative to the CSV ledger files.
package repository

import (
	"context"
	"errors"
	"fmt"

	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wiccy46/stockmanager/types"
)

// Global error declarations.
var (
	ErrNoSummary = errors.New("no summary rows in datasource")
	ErrNoRecords = errors.New("no trade records in datasource")
)

type summaryRepository interface {
	ReplaceSummary(ctx context.Context, rows []types.SummaryRow) error
	ListSummary(ctx context.Context) ([]types.SummaryRow, error)
}

type recordsRepository interface {
	InsertRecord(ctx context.Context, record types.TradeRecord) error
	ListRecords(ctx context.Context, symbol string) ([]types.TradeRecord, error)
}

// Database holds the connection pool and the per-table repositories.
type Database struct {
	summary summaryRepository
	records recordsRepository
	conn    *pgxpool.Pool
}

// NewDatabase creates a new Database instance and verifies connectivity.
func NewDatabase(ctx context.Context, dbURL string) (Database, error) {
	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return Database{}, fmt.Errorf("parse config: %w", err)
	}
	// Register shopspring decimal
	config.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	conn, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return Database{}, err
	}
	// Ensure the connection is established.
	if err := conn.Ping(ctx); err != nil {
		return Database{}, err
	}

	q := &queries{pool: conn}
	return Database{
		summary: q,
		records: q,
		conn:    conn}, nil
}

// Init creates the tables if they do not exist yet.
func (db *Database) Init(ctx context.Context) error {
	_, err := db.conn.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS portfolio_summary (
			symbol                TEXT PRIMARY KEY,
			name                  TEXT NOT NULL,
			exchange              TEXT NOT NULL,
			holdings              BIGINT NOT NULL,
			price_at_registration NUMERIC NOT NULL,
			currency              TEXT NOT NULL,
			last_updated          TIMESTAMPTZ NOT NULL,
			ord                   INT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS trade_records (
			id         UUID PRIMARY KEY,
			symbol     TEXT NOT NULL,
			side       TEXT NOT NULL,
			amount     BIGINT NOT NULL,
			price      NUMERIC NOT NULL,
			fee        NUMERIC NOT NULL,
			total_buy  NUMERIC NOT NULL,
			total_sell NUMERIC NOT NULL,
			ts         TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS trade_records_symbol_ts ON trade_records (symbol, ts);`)
	return err
}

func (db *Database) Close() {
	db.conn.Close()
}

// SaveSummary replaces the persisted summary with the given rows, preserving
// their registration order.
func (db *Database) SaveSummary(ctx context.Context, rows []types.SummaryRow) error {
	return db.summary.ReplaceSummary(ctx, rows)
}

// LoadSummary returns all summary rows in registration order.
func (db *Database) LoadSummary(ctx context.Context) ([]types.SummaryRow, error) {
	rows, err := db.summary.ListSummary(ctx)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoSummary
	}
	return rows, nil
}

// InsertRecord appends one immutable trade record.
func (db *Database) InsertRecord(ctx context.Context, record types.TradeRecord) error {
	return db.records.InsertRecord(ctx, record)
}

// ListRecords returns trade records sorted by (symbol, timestamp). An empty
// symbol returns the whole record.
func (db *Database) ListRecords(ctx context.Context, symbol string) ([]types.TradeRecord, error) {
	records, err := db.records.ListRecords(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrNoRecords
	}
	return records, nil
}
