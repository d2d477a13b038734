package service

import (
	"context"
	"time"

	"github.com/quantgrid/xetrapulse/internal/domain/models"
	"github.com/quantgrid/xetrapulse/internal/storage"
)

// ReportService defines business logic for querying the published report.
type ReportService interface {
	GetDailyStats(ctx context.Context, isin string, from *time.Time, to *time.Time) ([]models.DailyStat, error)
}

type reportService struct {
	source storage.ReportSource
}

func NewReportService(source storage.ReportSource) ReportService {
	return &reportService{source: source}
}

// GetDailyStats loads the published report and filters it to the requested
// instrument and optional inclusive date range. An empty result means the
// instrument has no rows in the current report.
func (s *reportService) GetDailyStats(ctx context.Context, isin string, from *time.Time, to *time.Time) ([]models.DailyStat, error) {
	body, err := s.source.FetchReport(ctx)
	if err != nil {
		return nil, err
	}
	stats, err := storage.DecodeReport(body)
	if err != nil {
		return nil, err
	}

	var out []models.DailyStat
	for _, st := range stats {
		if st.ISIN != isin {
			continue
		}
		if from != nil && st.Date.Before(*from) {
			continue
		}
		if to != nil && st.Date.After(*to) {
			continue
		}
		out = append(out, st)
	}
	return out, nil
}
