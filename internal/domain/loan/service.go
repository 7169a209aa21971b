package loan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"credit-engine/internal/domain/customer"
	"credit-engine/internal/pkg/apperrors"
	"credit-engine/internal/pkg/clock"
)

type Service interface {
	// GetLoan returns a loan together with its owning customer.
	GetLoan(ctx context.Context, loanID int64) (*Loan, *customer.Customer, error)

	// ListCurrentLoans returns the customer's current loans as of today.
	ListCurrentLoans(ctx context.Context, customerID int64) ([]*Loan, error)
}

var _ Service = (*service)(nil)

type service struct {
	repo            Repository
	customerService customer.Service
	now             clock.Clock
	logger          *slog.Logger
}

func NewService(repo Repository, customerService customer.Service, now clock.Clock, logger *slog.Logger) Service {
	if repo == nil || customerService == nil || logger == nil {
		panic("loan service dependencies cannot be nil")
	}
	if now == nil {
		now = clock.System
	}
	return &service{
		repo:            repo,
		customerService: customerService,
		now:             now,
		logger:          logger.With(slog.String("component", "loanService")),
	}
}

func (s *service) GetLoan(ctx context.Context, loanID int64) (*Loan, *customer.Customer, error) {
	s.logger.InfoContext(ctx, "Getting loan details", slog.Int64("loanID", loanID))

	l, err := s.repo.FindByID(ctx, loanID)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "Loan not found", slog.Int64("loanID", loanID))
			return nil, nil, fmt.Errorf("%w: loan with ID %d not found", apperrors.ErrNotFound, loanID)
		}
		s.logger.ErrorContext(ctx, "Failed to get loan", slog.Int64("loanID", loanID), slog.Any("error", err))
		return nil, nil, fmt.Errorf("%w: failed to get loan %d: %v", apperrors.ErrInternalServer, loanID, err)
	}

	cust, err := s.customerService.GetCustomer(ctx, l.CustomerID)
	if err != nil {
		if errors.Is(err, customer.ErrNotFound) {
			s.logger.WarnContext(ctx, "Loan exists but its customer does not (data inconsistency?)",
				slog.Int64("loanID", loanID), slog.Int64("customerID", l.CustomerID))
			return nil, nil, fmt.Errorf("%w: customer %d for loan %d not found", apperrors.ErrNotFound, l.CustomerID, loanID)
		}
		s.logger.ErrorContext(ctx, "Failed to get customer for loan", slog.Any("error", err))
		return nil, nil, fmt.Errorf("failed to get customer for loan %d: %w", loanID, err)
	}

	return l, cust, nil
}

func (s *service) ListCurrentLoans(ctx context.Context, customerID int64) ([]*Loan, error) {
	s.logger.InfoContext(ctx, "Listing current loans for customer", slog.Int64("customerID", customerID))

	if _, err := s.customerService.GetCustomer(ctx, customerID); err != nil {
		if errors.Is(err, customer.ErrNotFound) {
			return nil, fmt.Errorf("%w: customer with ID %d not found", apperrors.ErrNotFound, customerID)
		}
		return nil, fmt.Errorf("failed to verify customer %d: %w", customerID, err)
	}

	loans, err := s.repo.FindCurrentByCustomer(ctx, customerID, s.now.Today())
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list current loans", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to list current loans for customer %d: %v", apperrors.ErrInternalServer, customerID, err)
	}

	s.logger.InfoContext(ctx, "Listed current loans", slog.Int("count", len(loans)))
	return loans, nil
}
