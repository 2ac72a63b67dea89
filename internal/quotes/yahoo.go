package quotes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/invest-tracker/internal/config"
	"github.com/invest-tracker/internal/models"
)

// YahooProvider talks to a Yahoo-Finance-compatible HTTP API. The base URL is
// configurable so tests can point it at a local server.
type YahooProvider struct {
	baseURL string
	client  *http.Client
}

// NewYahooProvider creates a provider from configuration
func NewYahooProvider(cfg *config.QuotesConfig) *YahooProvider {
	return &YahooProvider{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  &http.Client{Timeout: cfg.Timeout},
	}
}

func (p *YahooProvider) get(ctx context.Context, path string, query url.Values, dest interface{}) error {
	endpoint := p.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "invest-tracker/1.0")

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("quote provider returned status %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(dest)
}

// FetchQuotes implements Provider using the batch quote endpoint
func (p *YahooProvider) FetchQuotes(ctx context.Context, symbols []string) (map[string]models.Quote, error) {
	if len(symbols) == 0 {
		return map[string]models.Quote{}, nil
	}

	query := url.Values{}
	query.Set("symbols", strings.Join(symbols, ","))

	var raw struct {
		QuoteResponse struct {
			Result []struct {
				Symbol                     string  `json:"symbol"`
				ShortName                  string  `json:"shortName"`
				LongName                   string  `json:"longName"`
				RegularMarketPrice         float64 `json:"regularMarketPrice"`
				RegularMarketChange        float64 `json:"regularMarketChange"`
				RegularMarketChangePercent float64 `json:"regularMarketChangePercent"`
				RegularMarketTime          int64   `json:"regularMarketTime"`
			} `json:"result"`
			Error interface{} `json:"error"`
		} `json:"quoteResponse"`
	}

	if err := p.get(ctx, "/v7/finance/quote", query, &raw); err != nil {
		return nil, err
	}

	quotes := make(map[string]models.Quote, len(raw.QuoteResponse.Result))
	for _, r := range raw.QuoteResponse.Result {
		if r.Symbol == "" || r.RegularMarketPrice == 0 {
			continue
		}
		marketTime := time.Now()
		if r.RegularMarketTime > 0 {
			marketTime = time.Unix(r.RegularMarketTime, 0)
		}
		quotes[r.Symbol] = models.Quote{
			Symbol:        r.Symbol,
			ShortName:     r.ShortName,
			LongName:      r.LongName,
			Price:         r.RegularMarketPrice,
			Change:        r.RegularMarketChange,
			ChangePercent: r.RegularMarketChangePercent,
			MarketTime:    marketTime,
		}
	}

	return quotes, nil
}

// FetchChart implements Provider using the daily chart endpoint, three months
// of history.
func (p *YahooProvider) FetchChart(ctx context.Context, symbol string) ([]models.ChartBar, error) {
	query := url.Values{}
	query.Set("interval", "1d")
	query.Set("range", "3mo")

	var raw struct {
		Chart struct {
			Result []struct {
				Timestamp  []int64 `json:"timestamp"`
				Indicators struct {
					Quote []struct {
						Open   []float64 `json:"open"`
						High   []float64 `json:"high"`
						Low    []float64 `json:"low"`
						Close  []float64 `json:"close"`
						Volume []int64   `json:"volume"`
					} `json:"quote"`
				} `json:"indicators"`
			} `json:"result"`
			Error interface{} `json:"error"`
		} `json:"chart"`
	}

	if err := p.get(ctx, "/v8/finance/chart/"+url.PathEscape(symbol), query, &raw); err != nil {
		return nil, err
	}

	if len(raw.Chart.Result) == 0 {
		return nil, fmt.Errorf("no chart data for %s", symbol)
	}

	r := raw.Chart.Result[0]
	if len(r.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("no chart data for %s", symbol)
	}

	q := r.Indicators.Quote[0]
	bars := make([]models.ChartBar, 0, len(r.Timestamp))
	for i, ts := range r.Timestamp {
		bar := models.ChartBar{Date: ts}
		if i < len(q.Open) {
			bar.Open = q.Open[i]
		}
		if i < len(q.High) {
			bar.High = q.High[i]
		}
		if i < len(q.Low) {
			bar.Low = q.Low[i]
		}
		if i < len(q.Close) {
			bar.Close = q.Close[i]
		}
		if i < len(q.Volume) {
			bar.Volume = q.Volume[i]
		}
		bars = append(bars, bar)
	}

	return bars, nil
}

// Search implements Provider using the free-text search endpoint
func (p *YahooProvider) Search(ctx context.Context, term string) ([]models.SearchResult, error) {
	query := url.Values{}
	query.Set("q", term)

	var raw struct {
		Quotes []struct {
			Symbol    string `json:"symbol"`
			ShortName string `json:"shortname"`
			LongName  string `json:"longname"`
		} `json:"quotes"`
	}

	if err := p.get(ctx, "/v1/finance/search", query, &raw); err != nil {
		return nil, err
	}

	var results []models.SearchResult
	for _, q := range raw.Quotes {
		// Only local exchange listings are useful to the client
		if !strings.Contains(q.Symbol, ".SA") {
			continue
		}
		name := q.LongName
		if name == "" {
			name = q.ShortName
		}
		results = append(results, models.SearchResult{Symbol: DenormalizeSymbol(q.Symbol), Name: name})
	}

	return results, nil
}
