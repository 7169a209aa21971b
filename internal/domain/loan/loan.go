package loan

import (
	"math"
	"time"
)

type Loan struct {
	LoanID           int64      `json:"loanId"`
	CustomerID       int64      `json:"customerId"`
	Amount           float64    `json:"amount"`
	Tenure           int        `json:"tenure"`
	InterestRate     float64    `json:"interestRate"`
	MonthlyRepayment float64    `json:"monthlyRepayment"`
	EMIsPaidOnTime   int        `json:"emisPaidOnTime"`
	StartDate        *time.Time `json:"startDate,omitempty"`
	EndDate          *time.Time `json:"endDate,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
}

// NewLoan builds the loan persisted after an approved evaluation: the tenure
// runs from asOf, the first EMI counter starts at zero and the rate is the
// corrected rate the evaluation settled on.
func NewLoan(customerID int64, amount float64, rate float64, tenureMonths int, asOf time.Time) *Loan {
	start := asOf
	end := asOf.AddDate(0, tenureMonths, 0)
	return &Loan{
		CustomerID:       customerID,
		Amount:           amount,
		Tenure:           tenureMonths,
		InterestRate:     rate,
		MonthlyRepayment: MonthlyInstallment(amount, rate, tenureMonths),
		EMIsPaidOnTime:   0,
		StartDate:        &start,
		EndDate:          &end,
	}
}

// IsCurrent reports whether the loan still counts toward the customer's
// exposure: no end date, or an end date on or after asOf. The same predicate
// backs scoring, eligibility and debt reconciliation.
func (l *Loan) IsCurrent(asOf time.Time) bool {
	return l.EndDate == nil || !l.EndDate.Before(asOf)
}

func (l *Loan) RepaymentsLeft() int {
	left := l.Tenure - l.EMIsPaidOnTime
	if left < 0 {
		return 0
	}
	return left
}

// MonthlyInstallment computes the fixed EMI for a principal at an annual
// percentage rate over tenureMonths. Zero or negative tenure yields 0; a zero
// rate degenerates to straight-line repayment. Negative inputs are computed
// mechanically, validation happens upstream.
func MonthlyInstallment(principal, annualRatePercent float64, tenureMonths int) float64 {
	if tenureMonths <= 0 {
		return 0
	}
	monthlyRate := annualRatePercent / 100 / 12
	if monthlyRate == 0 {
		return principal / float64(tenureMonths)
	}
	factor := math.Pow(1+monthlyRate, float64(tenureMonths))
	return principal * monthlyRate * factor / (factor - 1)
}
