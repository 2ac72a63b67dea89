package models

import "time"

// Quote represents a market quote for one symbol. The JSON field names match
// the upstream provider's shape, which the web client consumes directly.
type Quote struct {
	Symbol        string    `json:"symbol"`
	ShortName     string    `json:"shortName"`
	LongName      string    `json:"longName"`
	Price         float64   `json:"regularMarketPrice"`
	Change        float64   `json:"regularMarketChange"`
	ChangePercent float64   `json:"regularMarketChangePercent"`
	MarketTime    time.Time `json:"regularMarketTime"`
}

// ChartBar is a single daily candle in a historical series.
type ChartBar struct {
	Date   int64   `json:"date"` // unix seconds
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// ChartSeries is the historical price series for one symbol plus its
// latest quote.
type ChartSeries struct {
	Symbol string     `json:"symbol"`
	Price  float64    `json:"regularMarketPrice"`
	Change float64    `json:"regularMarketChange"`
	Bars   []ChartBar `json:"historicalDataPrice"`
}

// SearchResult is one hit from a symbol search.
type SearchResult struct {
	Symbol string `json:"stock"`
	Name   string `json:"name"`
}
