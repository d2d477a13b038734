package models

import "time"

// IntradayRecord represents a single row of a Xetra per-minute trading file.
// Each field matches one column of interest in the source CSV.
//
// Column order:
//  1. ISIN
//  2. Date
//  3. Time
//  4. StartPrice
//  5. MaxPrice
//  6. MinPrice
//  7. EndPrice
//  8. TradedVolume
//
// Multiple records share (ISIN, Date), one per intraday interval. The flat
// table keeps no uniqueness constraint: overlapping source partitions may
// produce duplicate (ISIN, Date, Time) tuples and they are carried as-is.
type IntradayRecord struct {
	ISIN         string
	Date         time.Time // calendar day, midnight UTC
	Time         time.Time // time-of-day only (zero date)
	StartPrice   float64
	MaxPrice     float64
	MinPrice     float64
	EndPrice     float64
	TradedVolume int64
}
