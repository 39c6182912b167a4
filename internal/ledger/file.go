package ledger

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/wiccy46/stockmanager/types"
)

// FileStore persists both tables as CSV files. Writes go through a temp file
// and rename so a failed write never truncates an existing ledger.
type FileStore struct{}

func NewFileStore() FileStore { return FileStore{} }

func (FileStore) LoadSummary(path string) ([]types.SummaryRow, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, err
	}
	defer f.Close()
	return ParseSummary(f)
}

func (FileStore) LoadRecords(path string) ([]types.TradeRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, err
	}
	defer f.Close()
	return ParseRecords(f)
}

func (FileStore) SaveSummary(path string, rows []types.SummaryRow) error {
	return atomicWrite(path, func(f *os.File) error {
		return SerializeSummary(f, rows)
	})
}

func (FileStore) SaveRecords(path string, records []types.TradeRecord) error {
	return atomicWrite(path, func(f *os.File) error {
		return SerializeRecords(f, records)
	})
}

func atomicWrite(path string, write func(*os.File) error) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "tmp-*.csv")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if err := write(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, path)
}
