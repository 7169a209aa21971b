package credit

import (
	"time"

	"credit-engine/internal/domain/loan"
)

// Exposure aggregates a customer's current loans: the monthly repayment they
// are already committed to and the principal still counted against their
// limit. It is always recomputed from loan records, never read from the
// customer's cached current_debt.
type Exposure struct {
	EMISum  float64
	DebtSum float64
}

func AggregateExposure(loans []*loan.Loan, asOf time.Time) Exposure {
	var exp Exposure
	for _, l := range loans {
		if !l.IsCurrent(asOf) {
			continue
		}
		exp.EMISum += l.MonthlyRepayment
		exp.DebtSum += l.Amount
	}
	return exp
}
