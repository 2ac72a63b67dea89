package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/invest-tracker/internal/models"
	"github.com/jackc/pgx/v5"
)

// OperationRepository handles the buy/sell ledger. Every read and mutation is
// scoped by owner; a miss on either id or owner reports ErrNotFound.
type OperationRepository struct {
	db *PostgresDB
}

// NewOperationRepository creates a new operation repository
func NewOperationRepository(db *PostgresDB) *OperationRepository {
	return &OperationRepository{db: db}
}

const operationColumns = `id, user_id, date, type, asset, quantity, price, total, created_at, updated_at`

func scanOperation(row pgx.Row) (*models.Operation, error) {
	var op models.Operation
	err := row.Scan(
		&op.ID,
		&op.UserID,
		&op.Date,
		&op.Type,
		&op.Asset,
		&op.Quantity,
		&op.Price,
		&op.Total,
		&op.CreatedAt,
		&op.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan operation: %w", err)
	}
	return &op, nil
}

func collectOperations(rows pgx.Rows) ([]*models.Operation, error) {
	defer rows.Close()

	var operations []*models.Operation
	for rows.Next() {
		op, err := scanOperation(rows)
		if err != nil {
			return nil, err
		}
		operations = append(operations, op)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating operations: %w", err)
	}

	return operations, nil
}

// Create inserts a new operation and fills in the generated fields
func (r *OperationRepository) Create(ctx context.Context, op *models.Operation) error {
	if op.ID == "" {
		op.ID = uuid.New().String()
	}

	now := time.Now()
	op.CreatedAt = now
	op.UpdatedAt = now

	query := `
		INSERT INTO operations (id, user_id, date, type, asset, quantity, price, total, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.Pool().Exec(ctx, query,
		op.ID,
		op.UserID,
		op.Date,
		op.Type,
		op.Asset,
		op.Quantity,
		op.Price,
		op.Total,
		op.CreatedAt,
		op.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create operation: %w", err)
	}

	return nil
}

// ListByOwner returns all operations for the owner, most recent date first
func (r *OperationRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.Operation, error) {
	query := `
		SELECT ` + operationColumns + `
		FROM operations
		WHERE user_id = $1
		ORDER BY date DESC
	`

	rows, err := r.db.Pool().Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list operations: %w", err)
	}

	return collectOperations(rows)
}

// ListByOwnerBetween returns the owner's operations within the date range
// inclusive, oldest first. Reports iterate chronologically.
func (r *OperationRepository) ListByOwnerBetween(ctx context.Context, ownerID string, start, end models.Date) ([]*models.Operation, error) {
	query := `
		SELECT ` + operationColumns + `
		FROM operations
		WHERE user_id = $1 AND date BETWEEN $2 AND $3
		ORDER BY date ASC
	`

	rows, err := r.db.Pool().Query(ctx, query, ownerID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list operations by date range: %w", err)
	}

	return collectOperations(rows)
}

// GetByIDAndOwner retrieves one operation scoped by owner
func (r *OperationRepository) GetByIDAndOwner(ctx context.Context, id, ownerID string) (*models.Operation, error) {
	query := `SELECT ` + operationColumns + ` FROM operations WHERE id = $1 AND user_id = $2`
	return scanOperation(r.db.Pool().QueryRow(ctx, query, id, ownerID))
}

// Update rewrites the mutable fields of an owner's operation and returns the
// stored row. Zero rows affected means the row does not exist for this owner.
func (r *OperationRepository) Update(ctx context.Context, op *models.Operation) (*models.Operation, error) {
	query := `
		UPDATE operations
		SET date = $3, type = $4, asset = $5, quantity = $6, price = $7, total = $8, updated_at = $9
		WHERE id = $1 AND user_id = $2
		RETURNING ` + operationColumns

	return scanOperation(r.db.Pool().QueryRow(ctx, query,
		op.ID,
		op.UserID,
		op.Date,
		op.Type,
		op.Asset,
		op.Quantity,
		op.Price,
		op.Total,
		time.Now(),
	))
}

// DeleteByIDAndOwner removes an owner's operation. Hard delete, no recovery.
func (r *OperationRepository) DeleteByIDAndOwner(ctx context.Context, id, ownerID string) error {
	query := `DELETE FROM operations WHERE id = $1 AND user_id = $2`

	result, err := r.db.Pool().Exec(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete operation: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}
