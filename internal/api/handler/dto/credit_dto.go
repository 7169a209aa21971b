package dto

import (
	"strings"

	"credit-engine/internal/domain/credit"
	"credit-engine/internal/domain/customer"
	"credit-engine/internal/pkg/apperrors"

	"github.com/shopspring/decimal"
)

// Request fields are pointers so a missing key is distinguishable from a
// zero value and can be reported per field.
type RegisterCustomerRequest struct {
	FirstName     *string `json:"first_name"`
	LastName      *string `json:"last_name"`
	Age           *int    `json:"age"`
	MonthlyIncome *int64  `json:"monthly_income"`
	PhoneNumber   *string `json:"phone_number"`
}

func (r *RegisterCustomerRequest) Validate() error {
	if r.FirstName == nil || strings.TrimSpace(*r.FirstName) == "" {
		return apperrors.NewValidationError("first_name", "first_name is required")
	}
	if r.MonthlyIncome == nil {
		return apperrors.NewValidationError("monthly_income", "monthly_income is required")
	}
	if *r.MonthlyIncome < 0 {
		return apperrors.NewValidationError("monthly_income", "monthly_income cannot be negative")
	}
	if r.Age != nil && *r.Age < 0 {
		return apperrors.NewValidationError("age", "age cannot be negative")
	}
	return nil
}

type EligibilityRequest struct {
	CustomerID   *int64   `json:"customer_id"`
	LoanAmount   *float64 `json:"loan_amount"`
	InterestRate *float64 `json:"interest_rate"`
	Tenure       *int     `json:"tenure"`
}

func (r *EligibilityRequest) Validate() error {
	if r.CustomerID == nil || *r.CustomerID <= 0 {
		return apperrors.NewValidationError("customer_id", "customer_id must be a positive number")
	}
	if r.LoanAmount == nil || *r.LoanAmount <= 0 {
		return apperrors.NewValidationError("loan_amount", "loan_amount must be greater than zero")
	}
	if r.InterestRate == nil || *r.InterestRate < 0 {
		return apperrors.NewValidationError("interest_rate", "interest_rate cannot be negative")
	}
	if r.Tenure == nil || *r.Tenure <= 0 {
		return apperrors.NewValidationError("tenure", "tenure must be a positive number of months")
	}
	return nil
}

// CreateLoanRequest carries the same shape as an eligibility check.
type CreateLoanRequest = EligibilityRequest

type RegisterCustomerResponse struct {
	CustomerID    int64  `json:"customer_id"`
	Name          string `json:"name"`
	Age           *int   `json:"age,omitempty"`
	MonthlyIncome int64  `json:"monthly_income"`
	ApprovedLimit int64  `json:"approved_limit"`
	PhoneNumber   string `json:"phone_number"`
}

func NewRegisterCustomerResponse(cust *customer.Customer) RegisterCustomerResponse {
	if cust == nil {
		return RegisterCustomerResponse{}
	}
	return RegisterCustomerResponse{
		CustomerID:    cust.CustomerID,
		Name:          cust.FullName(),
		Age:           cust.Age,
		MonthlyIncome: cust.MonthlySalary,
		ApprovedLimit: cust.ApprovedLimit,
		PhoneNumber:   cust.PhoneNumber,
	}
}

type EligibilityResponse struct {
	CustomerID            int64   `json:"customer_id"`
	Approval              bool    `json:"approval"`
	InterestRate          float64 `json:"interest_rate"`
	CorrectedInterestRate float64 `json:"corrected_interest_rate"`
	Tenure                int     `json:"tenure"`
	MonthlyInstallment    float64 `json:"monthly_installment"`
	CreditScore           int     `json:"credit_score"`
}

func NewEligibilityResponse(res *credit.EligibilityResult) EligibilityResponse {
	if res == nil {
		return EligibilityResponse{}
	}
	return EligibilityResponse{
		CustomerID:            res.CustomerID,
		Approval:              res.Approved,
		InterestRate:          res.InterestRate,
		CorrectedInterestRate: res.CorrectedRate,
		Tenure:                res.Tenure,
		MonthlyInstallment:    roundMoney(res.MonthlyInstallment),
		CreditScore:           res.Score,
	}
}

type CreateLoanResponse struct {
	LoanID             *int64  `json:"loan_id"`
	CustomerID         int64   `json:"customer_id"`
	LoanApproved       bool    `json:"loan_approved"`
	Message            string  `json:"message"`
	MonthlyInstallment float64 `json:"monthly_installment"`
}

func NewCreateLoanResponse(res *credit.LoanCreationResult) CreateLoanResponse {
	if res == nil {
		return CreateLoanResponse{}
	}
	return CreateLoanResponse{
		LoanID:             res.LoanID,
		CustomerID:         res.CustomerID,
		LoanApproved:       res.Approved,
		Message:            res.Message,
		MonthlyInstallment: roundMoney(res.MonthlyInstallment),
	}
}

func roundMoney(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}
