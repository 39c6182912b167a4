package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wiccy46/stockmanager/types"
)

type mockSummaryRepository struct {
	rows     []types.SummaryRow
	sqlError error
}

func (m mockSummaryRepository) ReplaceSummary(_ context.Context, rows []types.SummaryRow) error {
	return m.sqlError
}

func (m mockSummaryRepository) ListSummary(_ context.Context) ([]types.SummaryRow, error) {
	if m.sqlError != nil {
		return nil, m.sqlError
	}
	return m.rows, nil
}

type mockRecordsRepository struct {
	records  []types.TradeRecord
	sqlError error
}

func (m mockRecordsRepository) InsertRecord(_ context.Context, record types.TradeRecord) error {
	return m.sqlError
}

func (m mockRecordsRepository) ListRecords(_ context.Context, symbol string) ([]types.TradeRecord, error) {
	if m.sqlError != nil {
		return nil, m.sqlError
	}
	if symbol == "" {
		return m.records, nil
	}
	var out []types.TradeRecord
	for _, r := range m.records {
		if r.Symbol == symbol {
			out = append(out, r)
		}
	}
	return out, nil
}

func TestDatabaseLoadSummary(t *testing.T) {
	row := types.SummaryRow{
		Symbol:              "MSFT",
		Name:                "Microsoft Corporation",
		Holdings:            100,
		PriceAtRegistration: decimal.NewFromInt(100),
		Currency:            "USD",
		LastUpdated:         time.UnixMilli(1),
	}
	tests := []struct {
		name    string
		rows    []types.SummaryRow
		wantErr error
	}{
		{"should throw ErrNoSummary on empty table", nil, ErrNoSummary},
		{"should return rows", []types.SummaryRow{row}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := &Database{summary: mockSummaryRepository{rows: tt.rows}}
			got, err := db.LoadSummary(context.Background())
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("LoadSummary() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadSummary() unexpected error = %v", err)
			}
			if len(got) != 1 || got[0].Symbol != "MSFT" {
				t.Errorf("LoadSummary() = %v, want one MSFT row", got)
			}
		})
	}
}

func TestDatabaseListRecords(t *testing.T) {
	records := []types.TradeRecord{
		{ID: "r1", Symbol: "AAPL", Side: types.SideTypeBuy, Amount: 1, Timestamp: time.UnixMilli(1)},
		{ID: "r2", Symbol: "MSFT", Side: types.SideTypeSell, Amount: 2, Timestamp: time.UnixMilli(2)},
	}
	tests := []struct {
		name    string
		symbol  string
		records []types.TradeRecord
		want    int
		wantErr error
	}{
		{"should throw ErrNoRecords on empty table", "", nil, 0, ErrNoRecords},
		{"should return all records", "", records, 2, nil},
		{"should filter by symbol", "MSFT", records, 1, nil},
		{"should throw ErrNoRecords when filter matches nothing", "TSLA", records, 0, ErrNoRecords},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := &Database{records: mockRecordsRepository{records: tt.records}}
			got, err := db.ListRecords(context.Background(), tt.symbol)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("ListRecords() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ListRecords() unexpected error = %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("ListRecords() = %d records, want %d", len(got), tt.want)
			}
		})
	}
}
