package dto

import (
	"credit-engine/internal/domain/customer"
	"credit-engine/internal/domain/loan"
)

type LoanCustomerResponse struct {
	ID          int64  `json:"id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	PhoneNumber string `json:"phone_number"`
	Age         *int   `json:"age,omitempty"`
}

type ViewLoanResponse struct {
	LoanID             int64                `json:"loan_id"`
	Customer           LoanCustomerResponse `json:"customer"`
	LoanAmount         float64              `json:"loan_amount"`
	InterestRate       float64              `json:"interest_rate"`
	MonthlyInstallment float64              `json:"monthly_installment"`
	Tenure             int                  `json:"tenure"`
}

func NewViewLoanResponse(l *loan.Loan, cust *customer.Customer) ViewLoanResponse {
	if l == nil {
		return ViewLoanResponse{}
	}
	resp := ViewLoanResponse{
		LoanID:             l.LoanID,
		LoanAmount:         l.Amount,
		InterestRate:       l.InterestRate,
		MonthlyInstallment: roundMoney(l.MonthlyRepayment),
		Tenure:             l.Tenure,
	}
	if cust != nil {
		resp.Customer = LoanCustomerResponse{
			ID:          cust.CustomerID,
			FirstName:   cust.FirstName,
			LastName:    cust.LastName,
			PhoneNumber: cust.PhoneNumber,
			Age:         cust.Age,
		}
	}
	return resp
}

type CustomerLoanResponse struct {
	LoanID             int64   `json:"loan_id"`
	LoanAmount         float64 `json:"loan_amount"`
	InterestRate       float64 `json:"interest_rate"`
	MonthlyInstallment float64 `json:"monthly_installment"`
	RepaymentsLeft     int     `json:"repayments_left"`
}

func NewCustomerLoanResponse(l *loan.Loan) CustomerLoanResponse {
	if l == nil {
		return CustomerLoanResponse{}
	}
	return CustomerLoanResponse{
		LoanID:             l.LoanID,
		LoanAmount:         l.Amount,
		InterestRate:       l.InterestRate,
		MonthlyInstallment: roundMoney(l.MonthlyRepayment),
		RepaymentsLeft:     l.RepaymentsLeft(),
	}
}

type IngestionStartedResponse struct {
	RunID  string `json:"run_id"`
	Status string `json:"status"`
}

type ErrorDetail struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type TokenRequest struct {
	Username string `json:"username"`
}
