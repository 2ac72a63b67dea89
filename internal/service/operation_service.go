package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/invest-tracker/internal/logging"
	"github.com/invest-tracker/internal/models"
	"github.com/invest-tracker/internal/storage"
	"github.com/invest-tracker/internal/types"
)

// OperationStore is the ledger persistence surface the services depend on
type OperationStore interface {
	Create(ctx context.Context, op *models.Operation) error
	ListByOwner(ctx context.Context, ownerID string) ([]*models.Operation, error)
	ListByOwnerBetween(ctx context.Context, ownerID string, start, end models.Date) ([]*models.Operation, error)
	GetByIDAndOwner(ctx context.Context, id, ownerID string) (*models.Operation, error)
	Update(ctx context.Context, op *models.Operation) (*models.Operation, error)
	DeleteByIDAndOwner(ctx context.Context, id, ownerID string) error
}

// OperationService validates and records buy/sell operations
type OperationService struct {
	ops               OperationStore
	blockShortSelling bool
	logger            *logging.Logger
}

// NewOperationService creates a new operation service
func NewOperationService(ops OperationStore, blockShortSelling bool, logger *logging.Logger) *OperationService {
	return &OperationService{
		ops:               ops,
		blockShortSelling: blockShortSelling,
		logger:            logger,
	}
}

// OperationInput carries the fields accepted when recording an operation
type OperationInput struct {
	Date     models.Date         `json:"date"`
	Type     types.OperationType `json:"type"`
	Asset    string              `json:"asset"`
	Quantity float64             `json:"quantity"`
	Price    float64             `json:"price"`
}

func (in *OperationInput) validate() *types.ServiceError {
	details := map[string]interface{}{}
	if in.Date.IsZero() {
		details["date"] = "date is required"
	}
	if !in.Type.Valid() {
		details["type"] = "type must be buy or sell"
	}
	if strings.TrimSpace(in.Asset) == "" {
		details["asset"] = "asset is required"
	}
	if in.Quantity <= 0 {
		details["quantity"] = "quantity must be greater than zero"
	}
	if in.Price <= 0 {
		details["price"] = "price must be greater than zero"
	}
	if len(details) > 0 {
		return invalidInput(details)
	}
	return nil
}

var errNotFoundOperation = &types.ServiceError{
	Code:    types.CodeNotFound,
	Message: "Operation not found",
}

// Create validates and records a new operation. Total is computed here and
// stored with the row.
func (s *OperationService) Create(ctx context.Context, ownerID string, input OperationInput) (*models.Operation, error) {
	if serr := input.validate(); serr != nil {
		return nil, serr
	}

	asset := strings.ToUpper(strings.TrimSpace(input.Asset))

	if err := s.checkShortSell(ctx, ownerID, asset, input, ""); err != nil {
		return nil, err
	}

	op := &models.Operation{
		UserID:   ownerID,
		Date:     input.Date,
		Type:     input.Type,
		Asset:    asset,
		Quantity: input.Quantity,
		Price:    input.Price,
		Total:    input.Quantity * input.Price,
	}

	if err := s.ops.Create(ctx, op); err != nil {
		return nil, fmt.Errorf("creating operation: %w", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"operation_id": op.ID,
		"asset":        op.Asset,
		"type":         op.Type,
	}).Info("operation recorded")

	return op, nil
}

// List returns all of the owner's operations, most recent date first
func (s *OperationService) List(ctx context.Context, ownerID string) ([]*models.Operation, error) {
	operations, err := s.ops.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing operations: %w", err)
	}
	if operations == nil {
		operations = []*models.Operation{}
	}
	return operations, nil
}

// Get returns one of the owner's operations
func (s *OperationService) Get(ctx context.Context, ownerID, id string) (*models.Operation, error) {
	op, err := s.ops.GetByIDAndOwner(ctx, id, ownerID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, errNotFoundOperation
		}
		return nil, fmt.Errorf("loading operation: %w", err)
	}
	return op, nil
}

// Update rewrites one of the owner's operations with fresh validated fields
func (s *OperationService) Update(ctx context.Context, ownerID, id string, input OperationInput) (*models.Operation, error) {
	if serr := input.validate(); serr != nil {
		return nil, serr
	}

	asset := strings.ToUpper(strings.TrimSpace(input.Asset))

	if err := s.checkShortSell(ctx, ownerID, asset, input, id); err != nil {
		return nil, err
	}

	op := &models.Operation{
		ID:       id,
		UserID:   ownerID,
		Date:     input.Date,
		Type:     input.Type,
		Asset:    asset,
		Quantity: input.Quantity,
		Price:    input.Price,
		Total:    input.Quantity * input.Price,
	}

	updated, err := s.ops.Update(ctx, op)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, errNotFoundOperation
		}
		return nil, fmt.Errorf("updating operation: %w", err)
	}

	return updated, nil
}

// Delete removes one of the owner's operations
func (s *OperationService) Delete(ctx context.Context, ownerID, id string) error {
	if err := s.ops.DeleteByIDAndOwner(ctx, id, ownerID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return errNotFoundOperation
		}
		return fmt.Errorf("deleting operation: %w", err)
	}
	return nil
}

// checkShortSell rejects sells that would push the held quantity of an asset
// below zero. Only active when configured; the default keeps the ledger
// permissive so users can backfill history in any order. excludeID skips the
// operation being updated when recomputing the held quantity.
func (s *OperationService) checkShortSell(ctx context.Context, ownerID, asset string, input OperationInput, excludeID string) error {
	if !s.blockShortSelling || input.Type != types.OperationSell {
		return nil
	}

	operations, err := s.ops.ListByOwner(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("listing operations for sell check: %w", err)
	}

	var held float64
	for _, op := range operations {
		if op.Asset != asset || op.ID == excludeID {
			continue
		}
		held += op.SignedQuantity()
	}

	if input.Quantity > held {
		return invalidInput(map[string]interface{}{
			"quantity": fmt.Sprintf("cannot sell %g of %s, only %g held", input.Quantity, asset, held),
		})
	}

	return nil
}
