package models

import (
	"time"

	"github.com/invest-tracker/internal/types"
)

// Operation represents a single buy or sell recorded by a user. Total is
// computed as quantity * price at write time and never recomputed afterwards,
// so later price edits do not rewrite history.
type Operation struct {
	ID        string              `json:"id" db:"id"`
	UserID    string              `json:"-" db:"user_id"`
	Date      Date                `json:"date" db:"date"`
	Type      types.OperationType `json:"type" db:"type"`
	Asset     string              `json:"asset" db:"asset"`
	Quantity  float64             `json:"quantity" db:"quantity"`
	Price     float64             `json:"price" db:"price"`
	Total     float64             `json:"total" db:"total"`
	CreatedAt time.Time           `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time           `json:"updatedAt" db:"updated_at"`
}

// SignedQuantity returns the quantity with buys positive and sells negative.
func (o *Operation) SignedQuantity() float64 {
	if o.Type == types.OperationSell {
		return -o.Quantity
	}
	return o.Quantity
}
