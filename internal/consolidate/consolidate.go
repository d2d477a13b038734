// Package consolidate merges the raw per-partition CSV batches into one
// typed flat table restricted to the Xetra columns of interest.
package consolidate

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/quantgrid/xetrapulse/internal/domain/models"
)

// RequiredColumns is the fixed column contract a batch must satisfy.
// Batches may carry additional columns; those are projected away.
var RequiredColumns = []string{
	"ISIN",
	"Date",
	"Time",
	"StartPrice",
	"MaxPrice",
	"MinPrice",
	"EndPrice",
	"TradedVolume",
}

// ErrEmptyDataset is returned when no batch in the whole window carried a
// single data row, leaving nothing to aggregate.
var ErrEmptyDataset = errors.New("consolidate: no non-empty batches in window")

// SchemaError reports a batch that carries data rows but is missing one of
// the required columns.
type SchemaError struct {
	Column string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("consolidate: batch missing required column %q", e.Column)
}

// Consolidate parses all raw batches into one flat record table.
//
// Behavior:
//   - A batch with no data rows (empty, whitespace-only, or header-only) is
//     skipped; absent or placeholder partitions must not fail the run.
//   - A surviving batch missing a required column fails with *SchemaError.
//   - A row that cannot be converted to the typed schema fails the run.
//   - Surviving batches are concatenated in input order, preserving
//     within-batch row order. Duplicate rows from overlapping partitions are
//     kept as-is.
//   - If no batch survives, ErrEmptyDataset is returned.
func Consolidate(batches [][]byte) ([]models.IntradayRecord, error) {
	var out []models.IntradayRecord
	survived := 0

	for i, batch := range batches {
		records, ok, err := parseBatch(batch)
		if err != nil {
			return nil, fmt.Errorf("batch %d: %w", i, err)
		}
		if !ok {
			continue
		}
		survived++
		out = append(out, records...)
	}

	if survived == 0 {
		return nil, ErrEmptyDataset
	}
	return out, nil
}

// parseBatch decodes one raw CSV batch. The second return value is false
// when the batch held no data rows and was skipped.
func parseBatch(batch []byte) ([]models.IntradayRecord, bool, error) {
	if len(bytes.TrimSpace(batch)) == 0 {
		return nil, false, nil
	}

	r := csv.NewReader(bytes.NewReader(batch))
	r.FieldsPerRecord = -1 // lengths are checked against the header below

	header, err := r.Read()
	if err != nil {
		if err == io.EOF {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read header: %w", err)
	}

	var rows [][]string
	for {
		rec, err := r.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, false, fmt.Errorf("read line %d: %w", len(rows)+2, err)
		}
		rows = append(rows, rec)
	}

	// Header-only batches are placeholders for days without trading data.
	if len(rows) == 0 {
		return nil, false, nil
	}

	idx, err := columnIndex(header)
	if err != nil {
		return nil, false, err
	}

	out := make([]models.IntradayRecord, 0, len(rows))
	for n, rec := range rows {
		ir, err := recordToIntraday(rec, idx)
		if err != nil {
			return nil, false, fmt.Errorf("line %d: %w", n+2, err)
		}
		out = append(out, ir)
	}
	return out, true, nil
}

// columnIndex maps each required column name to its position in the header.
// Column order in the source does not matter; only presence does.
func columnIndex(header []string) (map[string]int, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		pos[strings.TrimSpace(h)] = i
	}

	idx := make(map[string]int, len(RequiredColumns))
	for _, col := range RequiredColumns {
		i, ok := pos[col]
		if !ok {
			return nil, &SchemaError{Column: col}
		}
		idx[col] = i
	}
	return idx, nil
}

// recordToIntraday converts a single CSV record into a typed IntradayRecord,
// projecting it down to the required columns. It is strict about types: a
// value that does not parse aborts the whole run.
func recordToIntraday(rec []string, idx map[string]int) (models.IntradayRecord, error) {
	var r models.IntradayRecord

	field := func(col string) (string, error) {
		i := idx[col]
		if i >= len(rec) {
			return "", fmt.Errorf("row too short for column %q", col)
		}
		return strings.TrimSpace(rec[i]), nil
	}

	s, err := field("ISIN")
	if err != nil {
		return r, err
	}
	r.ISIN = s

	if s, err = field("Date"); err != nil {
		return r, err
	}
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return r, fmt.Errorf("invalid Date: %v", err)
	}
	r.Date = d.UTC()

	if s, err = field("Time"); err != nil {
		return r, err
	}
	clock, err := parseClock(s)
	if err != nil {
		return r, fmt.Errorf("invalid Time: %v", err)
	}
	r.Time = clock

	if r.StartPrice, err = floatField(field, "StartPrice"); err != nil {
		return r, err
	}
	if r.MaxPrice, err = floatField(field, "MaxPrice"); err != nil {
		return r, err
	}
	if r.MinPrice, err = floatField(field, "MinPrice"); err != nil {
		return r, err
	}
	if r.EndPrice, err = floatField(field, "EndPrice"); err != nil {
		return r, err
	}

	if s, err = field("TradedVolume"); err != nil {
		return r, err
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return r, fmt.Errorf("invalid TradedVolume: %v", err)
	}
	r.TradedVolume = v

	return r, nil
}

func floatField(field func(string) (string, error), col string) (float64, error) {
	s, err := field(col)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %v", col, err)
	}
	return v, nil
}

// parseClock reads an intraday time-of-day; source files carry "HH:MM",
// sub-minute feeds "HH:MM:SS". The date part is zeroed.
func parseClock(s string) (time.Time, error) {
	t, err := time.Parse("15:04:05", s)
	if err != nil {
		t, err = time.Parse("15:04", s)
	}
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(0, 1, 1, t.Hour(), t.Minute(), t.Second(), 0, time.UTC), nil
}
