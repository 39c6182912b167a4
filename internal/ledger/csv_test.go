package ledger

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wiccy46/stockmanager/types"
)

func sampleSummary() []types.SummaryRow {
	ts, _ := time.Parse(DateLayout, "02.06.2020 15:04")
	return []types.SummaryRow{
		{
			Symbol:              "MSFT",
			Name:                "Microsoft Corporation",
			Exchange:            "NasdaqGS",
			Holdings:            20000,
			PriceAtRegistration: decimal.NewFromFloat(182.51),
			Currency:            "USD",
			LastUpdated:         ts,
		},
		{
			Symbol:              "ZM",
			Name:                "Zoom Video Communications",
			Exchange:            "NasdaqGS",
			Holdings:            0,
			PriceAtRegistration: decimal.NewFromFloat(207.9),
			Currency:            "USD",
			LastUpdated:         ts,
		},
	}
}

func sampleRecords() []types.TradeRecord {
	ts, _ := time.Parse(DateLayout, "02.06.2020 15:04")
	return []types.TradeRecord{
		{
			ID:        "r1",
			Symbol:    "MSFT",
			Side:      types.SideTypeBuy,
			Amount:    10,
			Price:     decimal.NewFromInt(100),
			Fee:       decimal.NewFromInt(1),
			TotalBuy:  decimal.NewFromInt(999),
			TotalSell: decimal.Zero,
			Timestamp: ts,
		},
		{
			ID:        "r2",
			Symbol:    "ZM",
			Side:      types.SideTypeSell,
			Amount:    5,
			Price:     decimal.NewFromInt(200),
			TotalBuy:  decimal.Zero,
			TotalSell: decimal.NewFromInt(1000),
			Timestamp: ts.Add(time.Minute),
		},
	}
}

func TestSummaryRoundTrip(t *testing.T) {
	want := sampleSummary()

	var buf bytes.Buffer
	if err := SerializeSummary(&buf, want); err != nil {
		t.Fatalf("SerializeSummary() error = %v", err)
	}

	header := strings.SplitN(buf.String(), "\n", 2)[0]
	if header != "Symbol,Name,Exchange,Holdings,Price at Registration,Currency,Date" {
		t.Errorf("header = %q", header)
	}

	got, err := ParseSummary(&buf)
	if err != nil {
		t.Fatalf("ParseSummary() error = %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("rows = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Symbol != want[i].Symbol {
			t.Errorf("row %d symbol = %s, want %s", i, got[i].Symbol, want[i].Symbol)
		}
		if got[i].Holdings != want[i].Holdings {
			t.Errorf("row %d holdings = %d, want %d", i, got[i].Holdings, want[i].Holdings)
		}
		if !got[i].PriceAtRegistration.Equal(want[i].PriceAtRegistration) {
			t.Errorf("row %d price = %s, want %s", i, got[i].PriceAtRegistration, want[i].PriceAtRegistration)
		}
		if !got[i].LastUpdated.Equal(want[i].LastUpdated) {
			t.Errorf("row %d date = %v, want %v", i, got[i].LastUpdated, want[i].LastUpdated)
		}
	}
}

func TestRecordsRoundTrip(t *testing.T) {
	want := sampleRecords()

	var buf bytes.Buffer
	if err := SerializeRecords(&buf, want); err != nil {
		t.Fatalf("SerializeRecords() error = %v", err)
	}

	header := strings.SplitN(buf.String(), "\n", 2)[0]
	if header != "Symbol,Sell,Buy,Price,Date,Total Sell,Total Buy" {
		t.Errorf("header = %q", header)
	}

	got, err := ParseRecords(&buf)
	if err != nil {
		t.Fatalf("ParseRecords() error = %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("rows = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Side != want[i].Side {
			t.Errorf("row %d side = %s, want %s", i, got[i].Side, want[i].Side)
		}
		if got[i].Amount != want[i].Amount {
			t.Errorf("row %d amount = %d, want %d", i, got[i].Amount, want[i].Amount)
		}
		if !got[i].TotalBuy.Equal(want[i].TotalBuy) {
			t.Errorf("row %d total buy = %s, want %s", i, got[i].TotalBuy, want[i].TotalBuy)
		}
		if !got[i].TotalSell.Equal(want[i].TotalSell) {
			t.Errorf("row %d total sell = %s, want %s", i, got[i].TotalSell, want[i].TotalSell)
		}
		if got[i].ID == "" {
			t.Errorf("row %d missing id", i)
		}
	}
}

func TestParseSummaryErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"empty file", "", ErrBadHeader},
		{"wrong column order", "Name,Symbol,Exchange,Holdings,Price at Registration,Currency,Date\n", ErrBadHeader},
		{"missing column", "Symbol,Name,Exchange,Holdings,Price at Registration,Currency\n", ErrBadHeader},
		{"bad holdings", "Symbol,Name,Exchange,Holdings,Price at Registration,Currency,Date\nMSFT,Microsoft,NasdaqGS,ten,100,USD,02.06.2020 15:04\n", ErrParse},
		{"bad price", "Symbol,Name,Exchange,Holdings,Price at Registration,Currency,Date\nMSFT,Microsoft,NasdaqGS,10,abc,USD,02.06.2020 15:04\n", ErrParse},
		{"bad date", "Symbol,Name,Exchange,Holdings,Price at Registration,Currency,Date\nMSFT,Microsoft,NasdaqGS,10,100,USD,2020-06-02\n", ErrParse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSummary(strings.NewReader(tt.input))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ParseSummary() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseRecordsErrors(t *testing.T) {
	const header = "Symbol,Sell,Buy,Price,Date,Total Sell,Total Buy\n"
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"empty file", "", ErrBadHeader},
		{"wrong header", "Symbol,Buy,Sell,Price,Date,Total Sell,Total Buy\n", ErrBadHeader},
		{"both sides zero", header + "MSFT,0,0,100,02.06.2020 15:04,0,0\n", ErrParse},
		{"negative sell amount", header + "MSFT,-5,0,100,02.06.2020 15:04,500,0\n", ErrParse},
		{"negative buy amount", header + "MSFT,0,-5,100,02.06.2020 15:04,0,500\n", ErrParse},
		{"bad price", header + "MSFT,0,5,abc,02.06.2020 15:04,0,500\n", ErrParse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRecords(strings.NewReader(tt.input))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ParseRecords() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore()

	summaryPath := filepath.Join(dir, "portfolio.csv")
	recordPath := filepath.Join(dir, "records.csv")

	if err := store.SaveSummary(summaryPath, sampleSummary()); err != nil {
		t.Fatalf("SaveSummary() error = %v", err)
	}
	if err := store.SaveRecords(recordPath, sampleRecords()); err != nil {
		t.Fatalf("SaveRecords() error = %v", err)
	}

	rows, err := store.LoadSummary(summaryPath)
	if err != nil {
		t.Fatalf("LoadSummary() error = %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("summary rows = %d, want 2", len(rows))
	}

	records, err := store.LoadRecords(recordPath)
	if err != nil {
		t.Fatalf("LoadRecords() error = %v", err)
	}
	if len(records) != 2 {
		t.Errorf("records = %d, want 2", len(records))
	}
}

func TestFileStoreMissingFile(t *testing.T) {
	store := NewFileStore()
	if _, err := store.LoadSummary(filepath.Join(t.TempDir(), "nope.csv")); !errors.Is(err, ErrNotFound) {
		t.Errorf("LoadSummary() error = %v, want ErrNotFound", err)
	}
}

func TestAtomicWriteLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore()
	if err := store.SaveSummary(filepath.Join(dir, "portfolio.csv"), sampleSummary()); err != nil {
		t.Fatalf("SaveSummary() error = %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "portfolio.csv" {
		t.Errorf("dir entries = %v, want only portfolio.csv", entries)
	}
}
