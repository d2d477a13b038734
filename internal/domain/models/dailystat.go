package models

import "time"

// DailyStat is one aggregated row per (ISIN, Date), the grain of the
// published report.
//
// Fields:
//   - OpeningPrice: start price of the chronologically first intraday record.
//   - ClosingPrice: start price of the chronologically last intraday record.
//     The source convention uses the last interval's *start* price here, not
//     its end price; that convention is reproduced unchanged.
//   - MinimumPrice / MaximumPrice: min/max over the day's interval prices.
//   - DailyTradedVolume: sum of traded volume over the day.
//   - ChangePrevClosingPct: day-over-day change of ClosingPrice against the
//     instrument's nearest earlier day in the window, in percent. Nil on the
//     first observed day of an instrument.
type DailyStat struct {
	ISIN                 string
	Date                 time.Time
	OpeningPrice         float64
	ClosingPrice         float64
	MinimumPrice         float64
	MaximumPrice         float64
	DailyTradedVolume    int64
	ChangePrevClosingPct *float64
}
