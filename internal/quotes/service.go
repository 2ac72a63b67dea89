package quotes

import (
	"context"
	"strings"
	"time"

	"github.com/invest-tracker/internal/config"
	"github.com/invest-tracker/internal/logging"
	"github.com/invest-tracker/internal/models"
)

// Service answers quote, chart and search lookups through the cache. Quote
// and chart reads never fail: provider trouble degrades to placeholder data
// so one bad ticker or a slow upstream cannot take down a whole response.
type Service struct {
	provider Provider
	cache    *Cache
	quoteTTL time.Duration
	chartTTL time.Duration
	logger   *logging.Logger
}

// NewService creates a quote service with its own cache instance
func NewService(provider Provider, cfg *config.CacheConfig, logger *logging.Logger) *Service {
	return &Service{
		provider: provider,
		cache:    NewCache(),
		quoteTTL: cfg.QuoteTTL,
		chartTTL: cfg.ChartTTL,
		logger:   logger,
	}
}

func cleanSymbols(symbols []string) []string {
	cleaned := make([]string, 0, len(symbols))
	for _, s := range symbols {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s != "" {
			cleaned = append(cleaned, s)
		}
	}
	return cleaned
}

func notFoundQuote(symbol string) models.Quote {
	return models.Quote{
		Symbol:     symbol,
		ShortName:  symbol + " (invalid)",
		LongName:   "Asset not found",
		MarketTime: time.Now(),
	}
}

func errorQuote(symbol string) models.Quote {
	return models.Quote{
		Symbol:     symbol,
		ShortName:  symbol + " (error)",
		LongName:   "Quote lookup failed",
		MarketTime: time.Now(),
	}
}

// GetQuotes returns one quote per requested symbol, in request order.
// Unresolved symbols come back as placeholders; a provider failure yields a
// full batch of error placeholders and is not cached, so the next request
// retries.
func (s *Service) GetQuotes(ctx context.Context, symbols []string) []models.Quote {
	requested := cleanSymbols(symbols)
	if len(requested) == 0 {
		return []models.Quote{}
	}

	key := CanonicalSymbolKey(requested)

	payload, err := s.cache.GetOrFetch(ctx, key, s.quoteTTL, func() (interface{}, error) {
		return s.fetchQuotes(ctx, requested)
	})
	if err != nil {
		s.logger.WithError(err).Warn("quote provider unavailable, returning placeholders")
		results := make([]models.Quote, 0, len(requested))
		for _, sym := range requested {
			results = append(results, errorQuote(sym))
		}
		return results
	}

	return payload.([]models.Quote)
}

func (s *Service) fetchQuotes(ctx context.Context, requested []string) (interface{}, error) {
	providerSymbols := make([]string, 0, len(requested))
	for _, sym := range requested {
		providerSymbols = append(providerSymbols, NormalizeSymbol(sym))
	}

	fetched, err := s.provider.FetchQuotes(ctx, providerSymbols)
	if err != nil {
		return nil, err
	}

	results := make([]models.Quote, 0, len(requested))
	for i, sym := range requested {
		quote, ok := fetched[providerSymbols[i]]
		if !ok || quote.Price == 0 {
			s.logger.WithField("symbol", sym).Warn("quote not found, returning placeholder")
			results = append(results, notFoundQuote(sym))
			continue
		}
		quote.Symbol = DenormalizeSymbol(providerSymbols[i])
		results = append(results, quote)
	}

	return results, nil
}

// GetChart returns the historical series plus latest quote for one symbol.
// Provider failure degrades to an empty zeroed series.
func (s *Service) GetChart(ctx context.Context, symbol string) *models.ChartSeries {
	sym := strings.ToUpper(strings.TrimSpace(symbol))
	key := CacheKey(keyChart, sym)

	payload, err := s.cache.GetOrFetch(ctx, key, s.chartTTL, func() (interface{}, error) {
		return s.fetchChart(ctx, sym)
	})
	if err != nil {
		s.logger.WithError(err).WithField("symbol", sym).Warn("chart data not available")
		return &models.ChartSeries{Symbol: sym, Bars: []models.ChartBar{}}
	}

	return payload.(*models.ChartSeries)
}

func (s *Service) fetchChart(ctx context.Context, sym string) (interface{}, error) {
	providerSymbol := NormalizeSymbol(sym)

	bars, err := s.provider.FetchChart(ctx, providerSymbol)
	if err != nil {
		return nil, err
	}

	fetched, err := s.provider.FetchQuotes(ctx, []string{providerSymbol})
	if err != nil {
		return nil, err
	}

	series := &models.ChartSeries{Symbol: sym, Bars: bars}
	if quote, ok := fetched[providerSymbol]; ok {
		series.Price = quote.Price
		series.Change = quote.Change
	}

	return series, nil
}

// Search looks up symbols by free text. Unlike quotes and charts there is no
// placeholder form for a search, so provider failures propagate.
func (s *Service) Search(ctx context.Context, term string) ([]models.SearchResult, error) {
	t := strings.ToUpper(strings.TrimSpace(term))
	key := CacheKey(keySearch, t)

	payload, err := s.cache.GetOrFetch(ctx, key, s.quoteTTL, func() (interface{}, error) {
		return s.provider.Search(ctx, t)
	})
	if err != nil {
		return nil, err
	}

	return payload.([]models.SearchResult), nil
}
