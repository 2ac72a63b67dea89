package service

import (
	"context"

	"github.com/invest-tracker/internal/logging"
	"github.com/invest-tracker/internal/models"
)

// QuoteSource supplies current market quotes. It never fails; symbols it
// cannot resolve come back as zero-priced placeholders.
type QuoteSource interface {
	GetQuotes(ctx context.Context, symbols []string) []models.Quote
}

// PortfolioService joins aggregated positions with market quotes
type PortfolioService struct {
	positions *PositionService
	quotes    QuoteSource
	logger    *logging.Logger
}

// NewPortfolioService creates a new portfolio service
func NewPortfolioService(positions *PositionService, quotes QuoteSource, logger *logging.Logger) *PortfolioService {
	return &PortfolioService{
		positions: positions,
		quotes:    quotes,
		logger:    logger,
	}
}

// DetailedPortfolio returns every held position enriched with its current
// price plus the portfolio totals. A symbol without a quote contributes zero
// market value, which shows up as an unrealized loss rather than hiding the
// position.
func (s *PortfolioService) DetailedPortfolio(ctx context.Context, ownerID string) ([]models.EnrichedPosition, *models.PortfolioSummary, error) {
	positions, err := s.positions.Positions(ctx, ownerID)
	if err != nil {
		return nil, nil, err
	}

	if len(positions) == 0 {
		return []models.EnrichedPosition{}, &models.PortfolioSummary{}, nil
	}

	symbols := make([]string, 0, len(positions))
	for _, p := range positions {
		symbols = append(symbols, p.Asset)
	}

	priceBySymbol := make(map[string]float64, len(symbols))
	for _, q := range s.quotes.GetQuotes(ctx, symbols) {
		priceBySymbol[q.Symbol] = q.Price
	}

	enriched := make([]models.EnrichedPosition, 0, len(positions))
	summary := &models.PortfolioSummary{PositionCount: len(positions)}

	for _, p := range positions {
		price, ok := priceBySymbol[p.Asset]
		if !ok {
			s.logger.WithField("asset", p.Asset).Warn("no quote for held asset, valuing at zero")
		}

		currentValue := p.Quantity * price
		resultValue := currentValue - p.TotalInvested

		ep := models.EnrichedPosition{
			Position:     p,
			CurrentPrice: price,
			CurrentValue: currentValue,
			ResultValue:  resultValue,
		}
		if p.TotalInvested != 0 {
			ep.ResultPercent = resultValue / p.TotalInvested * 100
		}
		enriched = append(enriched, ep)

		summary.TotalInvested += p.TotalInvested
		summary.CurrentValue += currentValue
	}

	summary.ResultValue = summary.CurrentValue - summary.TotalInvested
	if summary.TotalInvested != 0 {
		summary.ResultPercent = summary.ResultValue / summary.TotalInvested * 100
	}

	return enriched, summary, nil
}

// DashboardSummary returns only the portfolio totals
func (s *PortfolioService) DashboardSummary(ctx context.Context, ownerID string) (*models.PortfolioSummary, error) {
	_, summary, err := s.DetailedPortfolio(ctx, ownerID)
	return summary, err
}
