// Package quotes provides market data lookup with an in-process TTL cache in
// front of an external quote provider.
package quotes

import (
	"context"
	"strings"

	"github.com/invest-tracker/internal/models"
)

// Provider is the upstream market data source. Symbols passed in are already
// in the provider's own format (see NormalizeSymbol).
type Provider interface {
	// FetchQuotes returns quotes keyed by provider symbol. Symbols the
	// provider does not know are simply absent from the map.
	FetchQuotes(ctx context.Context, symbols []string) (map[string]models.Quote, error)
	// FetchChart returns the daily historical series for one symbol.
	FetchChart(ctx context.Context, symbol string) ([]models.ChartBar, error)
	// Search looks up symbols matching a free-text term.
	Search(ctx context.Context, term string) ([]models.SearchResult, error)
}

// NormalizeSymbol converts a user-entered ticker into the provider's format:
// uppercased, with the B3 exchange suffix appended unless the symbol is an
// index (leading ^) or already carries the suffix.
func NormalizeSymbol(symbol string) string {
	up := strings.ToUpper(strings.TrimSpace(symbol))
	if up == "" {
		return up
	}
	if !strings.HasPrefix(up, "^") && !strings.HasSuffix(up, ".SA") {
		return up + ".SA"
	}
	return up
}

// DenormalizeSymbol strips the exchange suffix so responses carry the symbol
// the caller asked for.
func DenormalizeSymbol(symbol string) string {
	return strings.TrimSuffix(symbol, ".SA")
}
