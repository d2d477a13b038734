// Package aggregate turns the flat intraday table into one statistics row
// per (instrument, day).
//
// The closing price intentionally follows the upstream convention of taking
// the *start* price of the day's last interval rather than its end price.
package aggregate

import (
	"errors"
	"sort"
	"time"

	"github.com/quantgrid/xetrapulse/internal/domain/models"
)

// ErrEmptyInput guards against an empty flat table. The consolidation step
// already fails an empty window, so hitting this indicates a caller bug.
var ErrEmptyInput = errors.New("aggregate: empty input table")

type groupKey struct {
	isin string
	date string
}

// dayAccum carries the running statistics of one (instrument, day) group.
type dayAccum struct {
	isin   string
	date   int64 // unix time of the calendar day, used only for sorting
	open   float64
	close  float64
	min    float64
	max    float64
	volume int64
}

// DailyStats computes the per-day statistics for every (instrument, day)
// group present in the input.
//
// Semantics:
//   - Rows are stable-sorted by time-of-day first; ties keep their original
//     arrival order. First/last per group is defined by that ordering, never
//     by input order, so shuffled input yields identical output.
//   - opening price = start price of the group's first sorted row, closing
//     price = start price of the group's last sorted row.
//   - minimum/maximum/volume are min/max/sum over the group's rows.
//   - Per instrument, days are ordered ascending and the previous day's
//     closing price feeds the percentage change. The instrument's earliest
//     day in the window has no previous value and its change stays nil. A
//     previous close of zero divides through as-is (IEEE ±Inf/NaN).
//
// The result is sorted by (instrument, date) ascending and has exactly one
// row per (instrument, date).
func DailyStats(records []models.IntradayRecord) ([]models.DailyStat, error) {
	if len(records) == 0 {
		return nil, ErrEmptyInput
	}

	sorted := make([]models.IntradayRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Time.Before(sorted[j].Time)
	})

	groups := make(map[groupKey]*dayAccum)
	for _, r := range sorted {
		k := groupKey{isin: r.ISIN, date: r.Date.Format("2006-01-02")}
		a, ok := groups[k]
		if !ok {
			a = &dayAccum{
				isin: r.ISIN,
				date: r.Date.Unix(),
				open: r.StartPrice,
				min:  r.MinPrice,
				max:  r.MaxPrice,
			}
			groups[k] = a
		}
		a.close = r.StartPrice // last sorted row of the group wins
		if r.MinPrice < a.min {
			a.min = r.MinPrice
		}
		if r.MaxPrice > a.max {
			a.max = r.MaxPrice
		}
		a.volume += r.TradedVolume
	}

	// Partition the groups per instrument so each instrument's day-over-day
	// chain is independent of every other instrument's date coverage.
	byISIN := make(map[string][]*dayAccum)
	for _, a := range groups {
		byISIN[a.isin] = append(byISIN[a.isin], a)
	}

	isins := make([]string, 0, len(byISIN))
	for isin := range byISIN {
		isins = append(isins, isin)
	}
	sort.Strings(isins)

	out := make([]models.DailyStat, 0, len(groups))
	for _, isin := range isins {
		days := byISIN[isin]
		sort.Slice(days, func(i, j int) bool { return days[i].date < days[j].date })

		for i, a := range days {
			stat := models.DailyStat{
				ISIN:              a.isin,
				Date:              dayFromUnix(a.date),
				OpeningPrice:      a.open,
				ClosingPrice:      a.close,
				MinimumPrice:      a.min,
				MaximumPrice:      a.max,
				DailyTradedVolume: a.volume,
			}
			if i > 0 {
				prev := days[i-1].close
				change := 100 * (a.close - prev) / prev
				stat.ChangePrevClosingPct = &change
			}
			out = append(out, stat)
		}
	}
	return out, nil
}

func dayFromUnix(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}
