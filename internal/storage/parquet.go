package storage

import (
	"bytes"
	"fmt"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/quantgrid/xetrapulse/internal/domain/models"
)

// dailyStatRecord is the Parquet schema of the published report. Column
// names and types are the output contract; a read-back must reproduce the
// table bit-for-bit in numeric content.
type dailyStatRecord struct {
	InstrumentID         string   `parquet:"instrument_id"`
	Date                 int64    `parquet:"date,timestamp(millisecond)"` // Unix ms, midnight UTC
	OpeningPrice         float64  `parquet:"opening_price"`
	ClosingPrice         float64  `parquet:"closing_price"`
	MinimumPrice         float64  `parquet:"minimum_price"`
	MaximumPrice         float64  `parquet:"maximum_price"`
	DailyTradedVolume    int64    `parquet:"daily_traded_volume"`
	ChangePrevClosingPct *float64 `parquet:"change_prev_closing_pct,optional"`
}

// EncodeReport serializes the daily stats to an in-memory Parquet object.
// Row order is preserved exactly as produced by the aggregator.
func EncodeReport(stats []models.DailyStat) ([]byte, error) {
	records := make([]dailyStatRecord, 0, len(stats))
	for _, s := range stats {
		records = append(records, dailyStatRecord{
			InstrumentID:         s.ISIN,
			Date:                 s.Date.UnixMilli(),
			OpeningPrice:         s.OpeningPrice,
			ClosingPrice:         s.ClosingPrice,
			MinimumPrice:         s.MinimumPrice,
			MaximumPrice:         s.MaximumPrice,
			DailyTradedVolume:    s.DailyTradedVolume,
			ChangePrevClosingPct: s.ChangePrevClosingPct,
		})
	}

	var buf bytes.Buffer
	if err := parquet.Write(&buf, records); err != nil {
		return nil, fmt.Errorf("write parquet: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeReport reads a published report object back into daily stats.
func DecodeReport(b []byte) ([]models.DailyStat, error) {
	records, err := parquet.Read[dailyStatRecord](bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return nil, fmt.Errorf("read parquet: %w", err)
	}

	stats := make([]models.DailyStat, 0, len(records))
	for _, r := range records {
		stats = append(stats, models.DailyStat{
			ISIN:                 r.InstrumentID,
			Date:                 time.UnixMilli(r.Date).UTC(),
			OpeningPrice:         r.OpeningPrice,
			ClosingPrice:         r.ClosingPrice,
			MinimumPrice:         r.MinimumPrice,
			MaximumPrice:         r.MaximumPrice,
			DailyTradedVolume:    r.DailyTradedVolume,
			ChangePrevClosingPct: r.ChangePrevClosingPct,
		})
	}
	return stats, nil
}
