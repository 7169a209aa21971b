package loan

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"credit-engine/internal/domain/customer"
	"credit-engine/internal/pkg/apperrors"
	"credit-engine/internal/pkg/clock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) Create(ctx context.Context, l *Loan) (*Loan, error) {
	args := m.Called(ctx, l)
	if created, ok := args.Get(0).(*Loan); ok {
		return created, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepo) FindByID(ctx context.Context, loanID int64) (*Loan, error) {
	args := m.Called(ctx, loanID)
	if l, ok := args.Get(0).(*Loan); ok {
		return l, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepo) FindByCustomer(ctx context.Context, customerID int64) ([]*Loan, error) {
	args := m.Called(ctx, customerID)
	if loans, ok := args.Get(0).([]*Loan); ok {
		return loans, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepo) FindCurrentByCustomer(ctx context.Context, customerID int64, asOf time.Time) ([]*Loan, error) {
	args := m.Called(ctx, customerID, asOf)
	if loans, ok := args.Get(0).([]*Loan); ok {
		return loans, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepo) Upsert(ctx context.Context, l *Loan) error {
	return m.Called(ctx, l).Error(0)
}

type mockCustomerService struct {
	mock.Mock
}

func (m *mockCustomerService) RegisterCustomer(ctx context.Context, firstName, lastName string, age *int, monthlyIncome int64, phoneNumber string) (*customer.Customer, error) {
	args := m.Called(ctx, firstName, lastName, age, monthlyIncome, phoneNumber)
	if cust, ok := args.Get(0).(*customer.Customer); ok {
		return cust, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCustomerService) GetCustomer(ctx context.Context, customerID int64) (*customer.Customer, error) {
	args := m.Called(ctx, customerID)
	if cust, ok := args.Get(0).(*customer.Customer); ok {
		return cust, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCustomerService) ListCustomers(ctx context.Context) ([]*customer.Customer, error) {
	args := m.Called(ctx)
	if customers, ok := args.Get(0).([]*customer.Customer); ok {
		return customers, args.Error(1)
	}
	return nil, args.Error(1)
}

var (
	testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))
	today      = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
)

func fixedClock() clock.Clock {
	return func() time.Time { return today.Add(15 * time.Hour) }
}

func setupLoanService(t *testing.T) (Service, *mockRepo, *mockCustomerService) {
	t.Helper()
	repo := new(mockRepo)
	customers := new(mockCustomerService)
	svc := NewService(repo, customers, fixedClock(), testLogger)
	return svc, repo, customers
}

func TestGetLoan(t *testing.T) {
	ctx := context.Background()

	t.Run("should return loan with its customer", func(t *testing.T) {
		svc, repo, customers := setupLoanService(t)
		repo.On("FindByID", ctx, int64(42)).Return(&Loan{LoanID: 42, CustomerID: 7}, nil)
		customers.On("GetCustomer", ctx, int64(7)).Return(&customer.Customer{CustomerID: 7, FirstName: "Jane"}, nil)

		l, cust, err := svc.GetLoan(ctx, 42)

		assert.NoError(t, err)
		assert.Equal(t, int64(42), l.LoanID)
		assert.Equal(t, "Jane", cust.FirstName)
	})

	t.Run("should map missing loan to not found", func(t *testing.T) {
		svc, repo, _ := setupLoanService(t)
		repo.On("FindByID", ctx, int64(99)).Return(nil, ErrNotFound)

		_, _, err := svc.GetLoan(ctx, 99)

		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("should map missing customer to not found", func(t *testing.T) {
		svc, repo, customers := setupLoanService(t)
		repo.On("FindByID", ctx, int64(42)).Return(&Loan{LoanID: 42, CustomerID: 7}, nil)
		customers.On("GetCustomer", ctx, int64(7)).Return(nil, customer.ErrNotFound)

		_, _, err := svc.GetLoan(ctx, 42)

		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestListCurrentLoans(t *testing.T) {
	ctx := context.Background()

	t.Run("should verify the customer and query as of today", func(t *testing.T) {
		svc, repo, customers := setupLoanService(t)
		customers.On("GetCustomer", ctx, int64(7)).Return(&customer.Customer{CustomerID: 7}, nil)
		repo.On("FindCurrentByCustomer", ctx, int64(7), today).Return([]*Loan{{LoanID: 1}}, nil)

		loans, err := svc.ListCurrentLoans(ctx, 7)

		assert.NoError(t, err)
		assert.Len(t, loans, 1)
		repo.AssertExpectations(t)
	})

	t.Run("should map unknown customer to not found", func(t *testing.T) {
		svc, _, customers := setupLoanService(t)
		customers.On("GetCustomer", ctx, int64(99)).Return(nil, customer.ErrNotFound)

		_, err := svc.ListCurrentLoans(ctx, 99)

		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("should wrap repository failures", func(t *testing.T) {
		svc, repo, customers := setupLoanService(t)
		customers.On("GetCustomer", ctx, int64(7)).Return(&customer.Customer{CustomerID: 7}, nil)
		repo.On("FindCurrentByCustomer", ctx, int64(7), today).Return(nil, errors.New("db down"))

		_, err := svc.ListCurrentLoans(ctx, 7)

		assert.ErrorIs(t, err, apperrors.ErrInternalServer)
	})
}
