package customer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"credit-engine/internal/event"
	"credit-engine/internal/infrastructure/monitoring"
	"credit-engine/internal/pkg/apperrors"
)

const customerNotFound = "Customer not found by repository"

type Service interface {
	RegisterCustomer(ctx context.Context, firstName, lastName string, age *int, monthlyIncome int64, phoneNumber string) (*Customer, error)
	GetCustomer(ctx context.Context, customerID int64) (*Customer, error)
	ListCustomers(ctx context.Context) ([]*Customer, error)
}

var _ Service = (*service)(nil)

type service struct {
	repo   Repository
	pub    event.Publisher
	logger *slog.Logger
}

func NewService(repo Repository, pub event.Publisher, logger *slog.Logger) Service {
	if repo == nil {
		panic("customer repository cannot be nil")
	}
	if pub == nil {
		pub = event.NoopPublisher{}
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to customer.NewService, using default stderr handler")
	}

	return &service{
		repo:   repo,
		pub:    pub,
		logger: logger.With(slog.String("component", "customerService")),
	}
}

func (s *service) RegisterCustomer(ctx context.Context, firstName, lastName string, age *int, monthlyIncome int64, phoneNumber string) (*Customer, error) {
	s.logger.InfoContext(ctx, "Attempting to register new customer")

	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	phoneNumber = strings.TrimSpace(phoneNumber)
	if firstName == "" {
		s.logger.WarnContext(ctx, "Validation failed: first name is empty")
		return nil, apperrors.NewValidationError("first_name", "cannot be empty")
	}
	if monthlyIncome < 0 {
		s.logger.WarnContext(ctx, "Validation failed: monthly income is negative")
		return nil, apperrors.NewValidationError("monthly_income", "cannot be negative")
	}

	cust := NewCustomer(firstName, lastName, phoneNumber, age, monthlyIncome)
	s.logger.InfoContext(ctx, "Customer domain object created",
		slog.Int64("approvedLimit", cust.ApprovedLimit))

	if err := s.repo.Save(ctx, cust); err != nil {
		s.logger.ErrorContext(ctx, "Repository failed to save new customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to save new customer: %w", err)
	}

	monitoring.RecordCustomerRegistered()
	s.logger.InfoContext(ctx, "Successfully registered new customer, publishing registration event",
		slog.Int64("customerID", cust.CustomerID))

	registeredEvent := event.CustomerRegisteredEvent{
		Timestamp: time.Now(),
		Payload: event.CustomerEventPayload{
			CustomerID:    cust.CustomerID,
			FirstName:     cust.FirstName,
			LastName:      cust.LastName,
			PhoneNumber:   cust.PhoneNumber,
			MonthlySalary: cust.MonthlySalary,
			ApprovedLimit: cust.ApprovedLimit,
		},
	}
	if pubErr := s.pub.PublishCustomerRegistered(ctx, registeredEvent); pubErr != nil {
		s.logger.ErrorContext(ctx, "Customer registered, but FAILED to publish registration event", slog.Any("error", pubErr))
	}

	return cust, nil
}

func (s *service) GetCustomer(ctx context.Context, customerID int64) (*Customer, error) {
	s.logger.InfoContext(ctx, "Attempting to get customer by ID", slog.Int64("customerID", customerID))

	cust, err := s.repo.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, customerNotFound)
			return nil, ErrNotFound
		}
		s.logger.ErrorContext(ctx, "Repository error finding customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to get customer %d: %w", customerID, err)
	}

	return cust, nil
}

func (s *service) ListCustomers(ctx context.Context) ([]*Customer, error) {
	s.logger.InfoContext(ctx, "Attempting to list all customers")

	customers, err := s.repo.FindAll(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository error listing customers", slog.Any("error", err))
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}

	s.logger.InfoContext(ctx, "Successfully retrieved customers", slog.Int("count", len(customers)))
	return customers, nil
}
