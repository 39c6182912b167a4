// Package ledger is the tabular storage layer: a CSV codec for the holdings
// summary and the trade record, plus atomic file persistence. It carries no
// business logic; the engine owns both tables and only hands them over for
// (de)serialization.
package ledger

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wiccy46/stockmanager/types"
)

// DateLayout is the timestamp format used in persisted files, day first.
const DateLayout = "02.01.2006 15:04"

var (
	ErrNotFound  = errors.New("ledger file not found")
	ErrBadHeader = errors.New("unexpected column header")
	ErrParse     = errors.New("malformed ledger row")
)

var summaryColumns = []string{"Symbol", "Name", "Exchange", "Holdings", "Price at Registration", "Currency", "Date"}
var recordColumns = []string{"Symbol", "Sell", "Buy", "Price", "Date", "Total Sell", "Total Buy"}

func validateHeader(got, want []string) error {
	if len(got) != len(want) {
		return fmt.Errorf("%w: got %d columns, want %d", ErrBadHeader, len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			return fmt.Errorf("%w: column %d is %q, want %q", ErrBadHeader, i, got[i], want[i])
		}
	}
	return nil
}

// ParseSummary decodes holdings summary rows. The column order is fixed and
// validated against the header row.
func ParseSummary(r io.Reader) ([]types.SummaryRow, error) {
	rows, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrBadHeader)
	}
	if err := validateHeader(rows[0], summaryColumns); err != nil {
		return nil, err
	}

	out := make([]types.SummaryRow, 0, len(rows)-1)
	for _, row := range rows[1:] {
		holdings, err := strconv.ParseInt(row[3], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: holdings %q: %v", ErrParse, row[3], err)
		}
		price, err := decimal.NewFromString(row[4])
		if err != nil {
			return nil, fmt.Errorf("%w: price %q: %v", ErrParse, row[4], err)
		}
		updated, err := time.Parse(DateLayout, row[6])
		if err != nil {
			return nil, fmt.Errorf("%w: date %q: %v", ErrParse, row[6], err)
		}
		out = append(out, types.SummaryRow{
			Symbol:              row[0],
			Name:                row[1],
			Exchange:            row[2],
			Holdings:            holdings,
			PriceAtRegistration: price,
			Currency:            row[5],
			LastUpdated:         updated,
		})
	}
	return out, nil
}

// SerializeSummary encodes summary rows in the fixed column order, header first.
func SerializeSummary(w io.Writer, rows []types.SummaryRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(summaryColumns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range rows {
		record := []string{
			row.Symbol,
			row.Name,
			row.Exchange,
			strconv.FormatInt(row.Holdings, 10),
			row.PriceAtRegistration.String(),
			row.Currency,
			row.LastUpdated.Format(DateLayout),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ParseRecords decodes trade record rows. The side is derived from whichever
// of the Sell/Buy amount columns is non-zero. Fees are folded into the totals
// on write and are not recoverable, so Fee is zero on loaded records.
func ParseRecords(r io.Reader) ([]types.TradeRecord, error) {
	rows, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrBadHeader)
	}
	if err := validateHeader(rows[0], recordColumns); err != nil {
		return nil, err
	}

	out := make([]types.TradeRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		sell, err := strconv.ParseInt(row[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: sell amount %q: %v", ErrParse, row[1], err)
		}
		buy, err := strconv.ParseInt(row[2], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: buy amount %q: %v", ErrParse, row[2], err)
		}
		price, err := decimal.NewFromString(row[3])
		if err != nil {
			return nil, fmt.Errorf("%w: price %q: %v", ErrParse, row[3], err)
		}
		ts, err := time.Parse(DateLayout, row[4])
		if err != nil {
			return nil, fmt.Errorf("%w: date %q: %v", ErrParse, row[4], err)
		}
		totalSell, err := decimal.NewFromString(row[5])
		if err != nil {
			return nil, fmt.Errorf("%w: total sell %q: %v", ErrParse, row[5], err)
		}
		totalBuy, err := decimal.NewFromString(row[6])
		if err != nil {
			return nil, fmt.Errorf("%w: total buy %q: %v", ErrParse, row[6], err)
		}

		if sell < 0 || buy < 0 || (sell == 0 && buy == 0) {
			return nil, fmt.Errorf("%w: row for %s needs exactly one positive side amount", ErrParse, row[0])
		}

		side := types.SideTypeBuy
		amount := buy
		if sell > 0 {
			side = types.SideTypeSell
			amount = sell
		}
		out = append(out, types.TradeRecord{
			ID:        uuid.NewString(),
			Symbol:    row[0],
			Side:      side,
			Amount:    amount,
			Price:     price,
			TotalBuy:  totalBuy,
			TotalSell: totalSell,
			Timestamp: ts,
		})
	}
	return out, nil
}

// SerializeRecords encodes trade records in the fixed column order, header first.
func SerializeRecords(w io.Writer, records []types.TradeRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(recordColumns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, rec := range records {
		record := []string{
			rec.Symbol,
			strconv.FormatInt(rec.SellAmount(), 10),
			strconv.FormatInt(rec.BuyAmount(), 10),
			rec.Price.String(),
			rec.Timestamp.Format(DateLayout),
			rec.TotalSell.String(),
			rec.TotalBuy.String(),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
