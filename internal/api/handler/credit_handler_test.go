package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"credit-engine/internal/api/handler/dto"
	"credit-engine/internal/domain/credit"
	"credit-engine/internal/domain/customer"
	"credit-engine/internal/domain/loan"
	"credit-engine/internal/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

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

type mockCreditService struct {
	mock.Mock
}

func (m *mockCreditService) CheckEligibility(ctx context.Context, customerID int64, amount, rate float64, tenure int) (*credit.EligibilityResult, error) {
	args := m.Called(ctx, customerID, amount, rate, tenure)
	if res, ok := args.Get(0).(*credit.EligibilityResult); ok {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCreditService) CreateLoan(ctx context.Context, customerID int64, amount, rate float64, tenure int) (*credit.LoanCreationResult, error) {
	args := m.Called(ctx, customerID, amount, rate, tenure)
	if res, ok := args.Get(0).(*credit.LoanCreationResult); ok {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCreditService) RefreshCurrentDebt(ctx context.Context, customerID int64) (int64, error) {
	args := m.Called(ctx, customerID)
	return args.Get(0).(int64), args.Error(1)
}

type mockLoanService struct {
	mock.Mock
}

func (m *mockLoanService) GetLoan(ctx context.Context, loanID int64) (*loan.Loan, *customer.Customer, error) {
	args := m.Called(ctx, loanID)
	l, _ := args.Get(0).(*loan.Loan)
	cust, _ := args.Get(1).(*customer.Customer)
	return l, cust, args.Error(2)
}

func (m *mockLoanService) ListCurrentLoans(ctx context.Context, customerID int64) ([]*loan.Loan, error) {
	args := m.Called(ctx, customerID)
	if loans, ok := args.Get(0).([]*loan.Loan); ok {
		return loans, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockIngestionJob struct {
	mock.Mock
}

func (m *mockIngestionJob) Start(timeout time.Duration) (string, error) {
	args := m.Called(timeout)
	return args.String(0), args.Error(1)
}

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func decodeBody(t *testing.T, body io.Reader, v interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(body).Decode(v))
}

func postJSON(handler http.HandlerFunc, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler(rr, req)
	return rr
}

func TestRegisterCustomer(t *testing.T) {
	t.Run("should register a customer and return 201", func(t *testing.T) {
		customers := new(mockCustomerService)
		h := NewCreditHandler(customers, new(mockCreditService), testLogger)

		age := 30
		customers.On("RegisterCustomer", mock.Anything, "Jane", "Doe", &age, int64(50000), "9876543210").
			Return(&customer.Customer{
				CustomerID:    7,
				FirstName:     "Jane",
				LastName:      "Doe",
				Age:           &age,
				MonthlySalary: 50000,
				ApprovedLimit: 1800000,
				PhoneNumber:   "9876543210",
			}, nil)

		rr := postJSON(h.RegisterCustomer, `{"first_name":"Jane","last_name":"Doe","age":30,"monthly_income":50000,"phone_number":"9876543210"}`)

		assert.Equal(t, http.StatusCreated, rr.Code)
		var resp dto.RegisterCustomerResponse
		decodeBody(t, rr.Body, &resp)
		assert.Equal(t, int64(7), resp.CustomerID)
		assert.Equal(t, "Jane Doe", resp.Name)
		assert.Equal(t, int64(1800000), resp.ApprovedLimit)
		customers.AssertExpectations(t)
	})

	t.Run("should return 400 on malformed JSON", func(t *testing.T) {
		h := NewCreditHandler(new(mockCustomerService), new(mockCreditService), testLogger)

		rr := postJSON(h.RegisterCustomer, `{"first_name":`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("should return 400 with the offending field on validation failure", func(t *testing.T) {
		h := NewCreditHandler(new(mockCustomerService), new(mockCreditService), testLogger)

		rr := postJSON(h.RegisterCustomer, `{"last_name":"Doe","monthly_income":50000}`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		var resp dto.ErrorResponse
		decodeBody(t, rr.Body, &resp)
		assert.Equal(t, "first_name", resp.Error.Field)
	})

	t.Run("should return 500 when the service fails", func(t *testing.T) {
		customers := new(mockCustomerService)
		h := NewCreditHandler(customers, new(mockCreditService), testLogger)
		customers.On("RegisterCustomer", mock.Anything, "Jane", "", (*int)(nil), int64(50000), "").
			Return(nil, apperrors.ErrInternalServer)

		rr := postJSON(h.RegisterCustomer, `{"first_name":"Jane","monthly_income":50000}`)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}

func TestCheckEligibility(t *testing.T) {
	t.Run("should return the evaluation with the corrected rate", func(t *testing.T) {
		creditSvc := new(mockCreditService)
		h := NewCreditHandler(new(mockCustomerService), creditSvc, testLogger)

		creditSvc.On("CheckEligibility", mock.Anything, int64(1), 100000.0, 10.0, 12).
			Return(&credit.EligibilityResult{
				CustomerID:         1,
				Score:              38,
				Approved:           false,
				InterestRate:       10,
				CorrectedRate:      12,
				Tenure:             12,
				MonthlyInstallment: 8884.87886,
			}, nil)

		rr := postJSON(h.CheckEligibility, `{"customer_id":1,"loan_amount":100000,"interest_rate":10,"tenure":12}`)

		assert.Equal(t, http.StatusOK, rr.Code)
		var resp dto.EligibilityResponse
		decodeBody(t, rr.Body, &resp)
		assert.False(t, resp.Approval)
		assert.Equal(t, 12.0, resp.CorrectedInterestRate)
		assert.Equal(t, 38, resp.CreditScore)
		assert.Equal(t, 8884.88, resp.MonthlyInstallment)
	})

	t.Run("should return 404 for an unknown customer", func(t *testing.T) {
		creditSvc := new(mockCreditService)
		h := NewCreditHandler(new(mockCustomerService), creditSvc, testLogger)
		creditSvc.On("CheckEligibility", mock.Anything, int64(99), 100000.0, 10.0, 12).
			Return(nil, apperrors.ErrNotFound)

		rr := postJSON(h.CheckEligibility, `{"customer_id":99,"loan_amount":100000,"interest_rate":10,"tenure":12}`)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("should return 400 on non-positive tenure", func(t *testing.T) {
		h := NewCreditHandler(new(mockCustomerService), new(mockCreditService), testLogger)

		rr := postJSON(h.CheckEligibility, `{"customer_id":1,"loan_amount":100000,"interest_rate":10,"tenure":0}`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		var resp dto.ErrorResponse
		decodeBody(t, rr.Body, &resp)
		assert.Equal(t, "tenure", resp.Error.Field)
	})

	t.Run("should return 400 on unknown fields", func(t *testing.T) {
		h := NewCreditHandler(new(mockCustomerService), new(mockCreditService), testLogger)

		rr := postJSON(h.CheckEligibility, `{"customer_id":1,"loan_amount":100000,"interest_rate":10,"tenure":12,"surprise":true}`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestCreateLoan(t *testing.T) {
	t.Run("should return 201 with the loan ID when approved", func(t *testing.T) {
		creditSvc := new(mockCreditService)
		h := NewCreditHandler(new(mockCustomerService), creditSvc, testLogger)

		loanID := int64(42)
		creditSvc.On("CreateLoan", mock.Anything, int64(1), 100000.0, 12.0, 12).
			Return(&credit.LoanCreationResult{
				LoanID:             &loanID,
				CustomerID:         1,
				Approved:           true,
				Message:            credit.MessageApproved,
				MonthlyInstallment: 8884.87886,
			}, nil)

		rr := postJSON(h.CreateLoan, `{"customer_id":1,"loan_amount":100000,"interest_rate":12,"tenure":12}`)

		assert.Equal(t, http.StatusCreated, rr.Code)
		var resp dto.CreateLoanResponse
		decodeBody(t, rr.Body, &resp)
		require.NotNil(t, resp.LoanID)
		assert.Equal(t, int64(42), *resp.LoanID)
		assert.True(t, resp.LoanApproved)
		assert.Equal(t, credit.MessageApproved, resp.Message)
	})

	t.Run("should return 200 with a null loan ID when rejected", func(t *testing.T) {
		creditSvc := new(mockCreditService)
		h := NewCreditHandler(new(mockCustomerService), creditSvc, testLogger)

		creditSvc.On("CreateLoan", mock.Anything, int64(1), 100000.0, 10.0, 12).
			Return(&credit.LoanCreationResult{
				CustomerID:         1,
				Approved:           false,
				Message:            credit.MessageRejected,
				MonthlyInstallment: 8884.87886,
			}, nil)

		rr := postJSON(h.CreateLoan, `{"customer_id":1,"loan_amount":100000,"interest_rate":10,"tenure":12}`)

		assert.Equal(t, http.StatusOK, rr.Code)
		var resp dto.CreateLoanResponse
		decodeBody(t, rr.Body, &resp)
		assert.Nil(t, resp.LoanID)
		assert.False(t, resp.LoanApproved)
		assert.Equal(t, credit.MessageRejected, resp.Message)
	})

	t.Run("should return 404 for an unknown customer", func(t *testing.T) {
		creditSvc := new(mockCreditService)
		h := NewCreditHandler(new(mockCustomerService), creditSvc, testLogger)
		creditSvc.On("CreateLoan", mock.Anything, int64(99), 100000.0, 10.0, 12).
			Return(nil, apperrors.ErrNotFound)

		rr := postJSON(h.CreateLoan, `{"customer_id":99,"loan_amount":100000,"interest_rate":10,"tenure":12}`)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}
