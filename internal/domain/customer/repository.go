package customer

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("customer not found")
)

type Repository interface {
	Save(ctx context.Context, customer *Customer) error

	FindByID(ctx context.Context, customerID int64) (*Customer, error)

	FindAll(ctx context.Context) ([]*Customer, error)

	// SetCurrentDebt overwrites the cached current_debt column. The cache is
	// derived state; scoring never reads it back.
	SetCurrentDebt(ctx context.Context, customerID int64, currentDebt int64) error

	// Upsert writes a customer row with an explicit ID, used by bulk ingestion.
	Upsert(ctx context.Context, customer *Customer) error
}
