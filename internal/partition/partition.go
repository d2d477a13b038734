// Package partition maps a calendar window onto the partition keys used by
// the upstream bucket, where every trading day is stored under a
// "YYYY-MM-DD" prefix.
package partition

import (
	"errors"
	"time"
)

// ErrInvalidRange is returned when the window's start date lies after its end date.
var ErrInvalidRange = errors.New("partition: start date after end date")

const keyLayout = "2006-01-02"

// Keys returns one partition key per calendar day from start to end,
// both inclusive, in ascending order. A single-day window (start == end)
// is valid and yields exactly one key.
func Keys(start, end time.Time) ([]string, error) {
	start = truncateToDate(start)
	end = truncateToDate(end)

	if start.After(end) {
		return nil, ErrInvalidRange
	}

	var keys []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		keys = append(keys, d.Format(keyLayout))
	}
	return keys, nil
}

func truncateToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
