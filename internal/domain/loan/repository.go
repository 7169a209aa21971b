package loan

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("loan not found")
)

type Repository interface {
	Create(ctx context.Context, loan *Loan) (*Loan, error)

	FindByID(ctx context.Context, loanID int64) (*Loan, error)

	FindByCustomer(ctx context.Context, customerID int64) ([]*Loan, error)

	// FindCurrentByCustomer returns the customer's loans whose end date is
	// null or on/after asOf.
	FindCurrentByCustomer(ctx context.Context, customerID int64, asOf time.Time) ([]*Loan, error)

	// Upsert writes a loan row with an explicit ID, used by bulk ingestion.
	Upsert(ctx context.Context, loan *Loan) error
}
