package credit

import (
	"time"

	"credit-engine/internal/domain/customer"
	"credit-engine/internal/domain/loan"
)

// emiToSalaryLimit caps total monthly commitments at half the salary.
const emiToSalaryLimit = 0.5

type Evaluation struct {
	Score         int
	Approved      bool
	CorrectedRate float64
}

// Evaluate decides whether the requested loan may be granted. The corrected
// rate is informational on rejection: it reflects the rate the borrower's
// score tier would require.
//
// Approval requires all three of: a score above the hard-reject tier, a
// requested rate already meeting the tier minimum, and total monthly EMIs at
// the corrected rate staying within half the salary. A requested rate below
// the tier minimum is grounds for rejection on its own, even when the EMI
// check at the corrected rate would pass; the correction is never a silent
// accommodation.
func Evaluate(cust *customer.Customer, loans []*loan.Loan, amount, requestedRate float64, tenure int, asOf time.Time) Evaluation {
	score := Score(cust, loans, asOf)

	minRate, ok := MinimumRateForScore(score)
	if !ok {
		return Evaluation{Score: score, Approved: false, CorrectedRate: requestedRate}
	}

	correctedRate := requestedRate
	rateBelowMinimum := minRate > 0 && requestedRate < minRate
	if rateBelowMinimum {
		correctedRate = minRate
	}

	exposure := AggregateExposure(loans, asOf)
	newEMI := loan.MonthlyInstallment(amount, correctedRate, tenure)
	if exposure.EMISum+newEMI > emiToSalaryLimit*float64(cust.MonthlySalary) {
		return Evaluation{Score: score, Approved: false, CorrectedRate: correctedRate}
	}

	if rateBelowMinimum {
		return Evaluation{Score: score, Approved: false, CorrectedRate: correctedRate}
	}

	return Evaluation{Score: score, Approved: true, CorrectedRate: correctedRate}
}
