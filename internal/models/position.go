package models

// Position represents the derived holding for one asset. It is recomputed
// from the operation ledger on every request and never persisted.
type Position struct {
	Asset         string  `json:"asset"`
	Quantity      float64 `json:"quantity"`
	AveragePrice  float64 `json:"average_price"`
	TotalInvested float64 `json:"total_invested"`
}

// EnrichedPosition is a Position joined with live market data.
type EnrichedPosition struct {
	Position
	CurrentPrice  float64 `json:"current_price"`
	CurrentValue  float64 `json:"current_value"`
	ResultValue   float64 `json:"result_value"`
	ResultPercent float64 `json:"result_percent"`
}

// PortfolioSummary aggregates the whole portfolio for the dashboard.
type PortfolioSummary struct {
	TotalInvested float64 `json:"total_invested"`
	CurrentValue  float64 `json:"current_value"`
	ResultValue   float64 `json:"result_value"`
	ResultPercent float64 `json:"result_percent"`
	PositionCount int     `json:"position_count"`
}
