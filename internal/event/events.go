package event

import (
	"context"
	"time"
)

type CustomerEventPayload struct {
	CustomerID    int64  `json:"customerId"`
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	PhoneNumber   string `json:"phoneNumber"`
	MonthlySalary int64  `json:"monthlySalary"`
	ApprovedLimit int64  `json:"approvedLimit"`
}

type CustomerRegisteredEvent struct {
	Timestamp time.Time            `json:"timestamp"`
	Payload   CustomerEventPayload `json:"payload"`
}

type LoanEventPayload struct {
	LoanID             int64   `json:"loanId"`
	CustomerID         int64   `json:"customerId"`
	Amount             float64 `json:"amount"`
	Tenure             int     `json:"tenure"`
	InterestRate       float64 `json:"interestRate"`
	MonthlyInstallment float64 `json:"monthlyInstallment"`
	Score              int     `json:"score"`
}

type LoanApprovedEvent struct {
	Timestamp time.Time        `json:"timestamp"`
	Payload   LoanEventPayload `json:"payload"`
}

type Publisher interface {
	PublishCustomerRegistered(ctx context.Context, event CustomerRegisteredEvent) error
	PublishLoanApproved(ctx context.Context, event LoanApprovedEvent) error
}

// NoopPublisher is used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishCustomerRegistered(context.Context, CustomerRegisteredEvent) error {
	return nil
}

func (NoopPublisher) PublishLoanApproved(context.Context, LoanApprovedEvent) error {
	return nil
}

var _ Publisher = NoopPublisher{}
