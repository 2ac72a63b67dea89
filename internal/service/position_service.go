package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/invest-tracker/internal/models"
	"github.com/invest-tracker/internal/types"
)

// AggregatePositions folds a ledger of operations into the currently held
// positions. Buys add quantity, sells subtract it, and the average price is
// the buy-weighted average: sells realize gains but never change the cost
// basis of what remains. Assets with no net holding are dropped. The result
// is sorted by asset so output is deterministic.
func AggregatePositions(operations []*models.Operation) []models.Position {
	type accumulator struct {
		netQuantity float64
		buyQuantity float64
		buyTotal    float64
	}

	byAsset := make(map[string]*accumulator)
	for _, op := range operations {
		acc, ok := byAsset[op.Asset]
		if !ok {
			acc = &accumulator{}
			byAsset[op.Asset] = acc
		}
		acc.netQuantity += op.SignedQuantity()
		if op.Type == types.OperationBuy {
			acc.buyQuantity += op.Quantity
			acc.buyTotal += op.Total
		}
	}

	positions := make([]models.Position, 0, len(byAsset))
	for asset, acc := range byAsset {
		if acc.netQuantity <= 0 {
			continue
		}
		var average float64
		if acc.buyQuantity > 0 {
			average = acc.buyTotal / acc.buyQuantity
		}
		positions = append(positions, models.Position{
			Asset:         asset,
			Quantity:      acc.netQuantity,
			AveragePrice:  average,
			TotalInvested: average * acc.netQuantity,
		})
	}

	sort.Slice(positions, func(i, j int) bool {
		return positions[i].Asset < positions[j].Asset
	})

	return positions
}

// PositionService exposes the aggregated holdings of one owner
type PositionService struct {
	ops OperationStore
}

// NewPositionService creates a new position service
func NewPositionService(ops OperationStore) *PositionService {
	return &PositionService{ops: ops}
}

// Positions loads the owner's ledger and aggregates it into held positions
func (s *PositionService) Positions(ctx context.Context, ownerID string) ([]models.Position, error) {
	operations, err := s.ops.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing operations for aggregation: %w", err)
	}
	return AggregatePositions(operations), nil
}
