package history

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	corehistory "github.com/kilianp07/homeenergy/core/history"
)

// CSVSource reads energy readings from a CSV file with a header row.
//
// Expected format (extra columns are ignored, order is free):
//
//	timestamp,energy_consumption
//	2024-01-01 00:00:00,2.41
type CSVSource struct {
	Path     string
	Policy   corehistory.Policy
	Location *time.Location

	skipped int
}

// NewCSVSource returns a CSV source for path.
func NewCSVSource(path string, policy corehistory.Policy, loc *time.Location) *CSVSource {
	return &CSVSource{Path: path, Policy: policy, Location: loc}
}

// Name returns the file path.
func (s *CSVSource) Name() string { return s.Path }

// Skipped returns the number of malformed rows dropped by the last read.
func (s *CSVSource) Skipped() int { return s.skipped }

// Records reads the whole file.
func (s *CSVSource) Records(ctx context.Context) ([]corehistory.Record, error) {
	f, err := os.Open(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("open %s: %w", s.Path, corehistory.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	b := &corehistory.RowBuilder{Policy: s.Policy, Location: s.Location}
	if err := ReadCSV(ctx, f, b); err != nil {
		return nil, fmt.Errorf("%s: %w", s.Path, err)
	}
	s.skipped = b.Skipped()
	return b.Records(), nil
}

// ReadCSV feeds every data row of r into b. An input without a header row is
// treated as an empty dataset.
func ReadCSV(ctx context.Context, r io.Reader, b *corehistory.RowBuilder) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading CSV header: %w", err)
	}
	tsIdx, valIdx, err := columnIndexes(header)
	if err != nil {
		return err
	}

	lineNum := 1
	for {
		lineNum++
		if lineNum%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		rec, err := cr.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading CSV line %d: %w", lineNum, err)
		}
		if err := b.Add(lineNum, field(rec, tsIdx), field(rec, valIdx)); err != nil {
			return err
		}
	}
}

func columnIndexes(header []string) (int, int, error) {
	tsIdx, valIdx := -1, -1
	for i, col := range header {
		col = strings.TrimSpace(strings.TrimPrefix(col, "\ufeff"))
		switch col {
		case corehistory.ColumnTimestamp:
			tsIdx = i
		case corehistory.ColumnEnergy:
			valIdx = i
		}
	}
	if tsIdx < 0 {
		return 0, 0, fmt.Errorf("missing column %q", corehistory.ColumnTimestamp)
	}
	if valIdx < 0 {
		return 0, 0, fmt.Errorf("missing column %q", corehistory.ColumnEnergy)
	}
	return tsIdx, valIdx, nil
}

func field(rec []string, i int) string {
	if i >= len(rec) {
		return ""
	}
	return rec[i]
}
