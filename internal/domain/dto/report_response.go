package dto

// DailyStatResponse is one daily report row as returned by
// GET /api/v1/report.
//
// Fields mirror the published report's column contract; ChangePrevClosingPct
// is null for an instrument's first observed day in the window.
type DailyStatResponse struct {
	InstrumentID         string   `json:"instrument_id" example:"DE0005190003"`
	Date                 string   `json:"date" example:"2022-01-03"`
	OpeningPrice         float64  `json:"opening_price" example:"100.0"`
	ClosingPrice         float64  `json:"closing_price" example:"105.0"`
	MinimumPrice         float64  `json:"minimum_price" example:"98.0"`
	MaximumPrice         float64  `json:"maximum_price" example:"107.0"`
	DailyTradedVolume    int64    `json:"daily_traded_volume" example:"800"`
	ChangePrevClosingPct *float64 `json:"change_prev_closing_pct" example:"4.762"`
}
