package credit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"credit-engine/internal/domain/customer"
	"credit-engine/internal/domain/loan"
	"credit-engine/internal/event"
	"credit-engine/internal/infrastructure/monitoring"
	"credit-engine/internal/pkg/apperrors"
	"credit-engine/internal/pkg/clock"
)

const (
	MessageApproved = "Loan approved."
	MessageRejected = "Loan not approved based on credit policy."
)

type EligibilityResult struct {
	CustomerID         int64
	Score              int
	Approved           bool
	InterestRate       float64
	CorrectedRate      float64
	Tenure             int
	MonthlyInstallment float64
}

type LoanCreationResult struct {
	LoanID             *int64
	CustomerID         int64
	Approved           bool
	Message            string
	MonthlyInstallment float64
}

type Service interface {
	// CheckEligibility runs a full evaluation with no persistence side effect.
	CheckEligibility(ctx context.Context, customerID int64, amount, rate float64, tenure int) (*EligibilityResult, error)

	// CreateLoan evaluates and, on approval, persists the new loan and
	// refreshes the customer's cached debt.
	CreateLoan(ctx context.Context, customerID int64, amount, rate float64, tenure int) (*LoanCreationResult, error)

	// RefreshCurrentDebt recomputes the customer's current outstanding
	// principal from loan records and overwrites the cached value.
	RefreshCurrentDebt(ctx context.Context, customerID int64) (int64, error)
}

var _ Service = (*service)(nil)

type service struct {
	customers customer.Repository
	loans     loan.Repository
	pub       event.Publisher
	now       clock.Clock
	logger    *slog.Logger
}

func NewService(customers customer.Repository, loans loan.Repository, pub event.Publisher, now clock.Clock, logger *slog.Logger) Service {
	if customers == nil || loans == nil || logger == nil {
		panic("credit service dependencies cannot be nil")
	}
	if pub == nil {
		pub = event.NoopPublisher{}
	}
	if now == nil {
		now = clock.System
	}
	return &service{
		customers: customers,
		loans:     loans,
		pub:       pub,
		now:       now,
		logger:    logger.With(slog.String("component", "creditService")),
	}
}

func (s *service) evaluate(ctx context.Context, customerID int64, amount, rate float64, tenure int) (*customer.Customer, Evaluation, time.Time, error) {
	cust, err := s.customers.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, customer.ErrNotFound) || errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "Customer not found for evaluation", slog.Int64("customerID", customerID))
			return nil, Evaluation{}, time.Time{}, fmt.Errorf("%w: customer with ID %d not found", apperrors.ErrNotFound, customerID)
		}
		s.logger.ErrorContext(ctx, "Failed to fetch customer for evaluation", slog.Any("error", err))
		return nil, Evaluation{}, time.Time{}, fmt.Errorf("failed to fetch customer %d: %w", customerID, err)
	}

	loans, err := s.loans.FindByCustomer(ctx, customerID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to fetch loan history for evaluation", slog.Any("error", err))
		return nil, Evaluation{}, time.Time{}, fmt.Errorf("failed to fetch loans for customer %d: %w", customerID, err)
	}

	today := s.now.Today()
	eval := Evaluate(cust, loans, amount, rate, tenure, today)
	return cust, eval, today, nil
}

func (s *service) CheckEligibility(ctx context.Context, customerID int64, amount, rate float64, tenure int) (*EligibilityResult, error) {
	s.logger.InfoContext(ctx, "Checking loan eligibility",
		slog.Int64("customerID", customerID),
		slog.Float64("amount", amount),
		slog.Float64("rate", rate),
		slog.Int("tenure", tenure))

	_, eval, _, err := s.evaluate(ctx, customerID, amount, rate, tenure)
	if err != nil {
		monitoring.RecordEvaluation("error")
		return nil, err
	}

	outcome := "rejected"
	if eval.Approved {
		outcome = "approved"
	}
	monitoring.RecordEvaluation(outcome)
	s.logger.InfoContext(ctx, "Eligibility evaluated",
		slog.Int("score", eval.Score),
		slog.Bool("approved", eval.Approved),
		slog.Float64("correctedRate", eval.CorrectedRate))

	return &EligibilityResult{
		CustomerID:         customerID,
		Score:              eval.Score,
		Approved:           eval.Approved,
		InterestRate:       rate,
		CorrectedRate:      eval.CorrectedRate,
		Tenure:             tenure,
		MonthlyInstallment: loan.MonthlyInstallment(amount, eval.CorrectedRate, tenure),
	}, nil
}

func (s *service) CreateLoan(ctx context.Context, customerID int64, amount, rate float64, tenure int) (*LoanCreationResult, error) {
	s.logger.InfoContext(ctx, "Creating loan", slog.Int64("customerID", customerID))

	cust, eval, today, err := s.evaluate(ctx, customerID, amount, rate, tenure)
	if err != nil {
		monitoring.RecordEvaluation("error")
		return nil, err
	}

	installment := loan.MonthlyInstallment(amount, eval.CorrectedRate, tenure)

	if !eval.Approved {
		monitoring.RecordEvaluation("rejected")
		s.logger.InfoContext(ctx, "Loan rejected by credit policy",
			slog.Int("score", eval.Score),
			slog.Float64("correctedRate", eval.CorrectedRate))
		return &LoanCreationResult{
			LoanID:             nil,
			CustomerID:         customerID,
			Approved:           false,
			Message:            MessageRejected,
			MonthlyInstallment: installment,
		}, nil
	}
	monitoring.RecordEvaluation("approved")

	newLoan := loan.NewLoan(customerID, amount, eval.CorrectedRate, tenure, today)
	created, err := s.loans.Create(ctx, newLoan)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to persist approved loan", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to save approved loan: %v", apperrors.ErrInternalServer, err)
	}
	monitoring.RecordLoanCreated()

	// The cache refresh is best effort: a crash here leaves current_debt
	// stale until the next reconciliation, never wrong at evaluation time,
	// because scoring recomputes exposure from loan records.
	if _, err := s.RefreshCurrentDebt(ctx, customerID); err != nil {
		s.logger.ErrorContext(ctx, "Loan created, but FAILED to refresh cached debt", slog.Any("error", err))
	}

	approvedEvent := event.LoanApprovedEvent{
		Timestamp: time.Now(),
		Payload: event.LoanEventPayload{
			LoanID:             created.LoanID,
			CustomerID:         customerID,
			Amount:             amount,
			Tenure:             tenure,
			InterestRate:       eval.CorrectedRate,
			MonthlyInstallment: created.MonthlyRepayment,
			Score:              eval.Score,
		},
	}
	if pubErr := s.pub.PublishLoanApproved(ctx, approvedEvent); pubErr != nil {
		s.logger.ErrorContext(ctx, "Loan created, but FAILED to publish approval event", slog.Any("error", pubErr))
	}

	s.logger.InfoContext(ctx, "Loan created successfully",
		slog.Int64("loanID", created.LoanID),
		slog.Int64("customerID", customerID),
		slog.Int64("approvedLimit", cust.ApprovedLimit))

	return &LoanCreationResult{
		LoanID:             &created.LoanID,
		CustomerID:         customerID,
		Approved:           true,
		Message:            MessageApproved,
		MonthlyInstallment: created.MonthlyRepayment,
	}, nil
}

func (s *service) RefreshCurrentDebt(ctx context.Context, customerID int64) (int64, error) {
	today := s.now.Today()
	current, err := s.loans.FindCurrentByCustomer(ctx, customerID, today)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch current loans for customer %d: %w", customerID, err)
	}

	debt := int64(AggregateExposure(current, today).DebtSum)
	if err := s.customers.SetCurrentDebt(ctx, customerID, debt); err != nil {
		return 0, fmt.Errorf("failed to update cached debt for customer %d: %w", customerID, err)
	}
	return debt, nil
}
