package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/quantgrid/xetrapulse/internal/domain/dto"
	"github.com/quantgrid/xetrapulse/internal/service"
)

// Handler provides HTTP handlers for the daily report endpoints.
//
// Responsibilities:
//   - Validate incoming HTTP query parameters
//   - Query the report service
//   - Translate results into response DTOs with appropriate status codes
type Handler struct {
	svc service.ReportService
}

// NewHandler constructs a new Handler instance.
func NewHandler(svc service.ReportService) *Handler {
	return &Handler{svc: svc}
}

// GetReport handles GET /api/v1/report requests.
//
// Query Parameters:
//   - isin (string, required): Instrument identifier (e.g., "DE0005190003").
//   - from (string, optional): Minimum date, YYYY-MM-DD, inclusive.
//   - to (string, optional): Maximum date, YYYY-MM-DD, inclusive.
//
// Responses:
//   - 200 OK: list of DailyStatResponse rows.
//   - 400 Bad Request: missing or invalid query parameters.
//   - 404 Not Found: no rows for the given instrument/range in the report.
//   - 500 Internal Server Error: report could not be fetched or decoded.
func (h *Handler) GetReport(c *gin.Context) {
	isin := strings.ToUpper(strings.TrimSpace(c.Query("isin")))
	if isin == "" {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse("isin is required", nil))
		return
	}

	var from, to *time.Time
	if s := c.Query("from"); s != "" {
		parsed, err := time.Parse("2006-01-02", s)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.NewErrorResponse("invalid from format, expected YYYY-MM-DD", err))
			return
		}
		parsed = parsed.UTC()
		from = &parsed
	}
	if s := c.Query("to"); s != "" {
		parsed, err := time.Parse("2006-01-02", s)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.NewErrorResponse("invalid to format, expected YYYY-MM-DD", err))
			return
		}
		parsed = parsed.UTC()
		to = &parsed
	}

	stats, err := h.svc.GetDailyStats(c.Request.Context(), isin, from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse("failed to fetch report", err))
		return
	}
	if len(stats) == 0 {
		c.JSON(http.StatusNotFound, dto.NewErrorResponse("no data found", nil))
		return
	}

	resp := make([]dto.DailyStatResponse, 0, len(stats))
	for _, s := range stats {
		resp = append(resp, dto.DailyStatResponse{
			InstrumentID:         s.ISIN,
			Date:                 s.Date.Format("2006-01-02"),
			OpeningPrice:         s.OpeningPrice,
			ClosingPrice:         s.ClosingPrice,
			MinimumPrice:         s.MinimumPrice,
			MaximumPrice:         s.MaximumPrice,
			DailyTradedVolume:    s.DailyTradedVolume,
			ChangePrevClosingPct: s.ChangePrevClosingPct,
		})
	}

	c.JSON(http.StatusOK, resp)
}
