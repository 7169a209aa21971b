package credit

import (
	"math"
	"time"

	"credit-engine/internal/domain/customer"
	"credit-engine/internal/domain/loan"
)

const (
	onTimeWeight    = 50.0
	loanCountWeight = 15.0
	recencyWeight   = 15.0
	volumeWeight    = 20.0
	loanCountCap    = 10
	recentStartsCap = 5
	maxScore        = 100
)

// Score rates a customer's full loan history on a 0-100 scale. A customer
// whose current outstanding principal exceeds their approved limit scores 0
// outright, before any history factor is considered. Otherwise four weighted
// factors add up: on-time EMI ratio (50), number of loans taken (15), loans
// started in the current calendar year (15) and lifetime volume relative to
// the approved limit (20). The raw sum is truncated, not rounded.
func Score(cust *customer.Customer, loans []*loan.Loan, asOf time.Time) int {
	exposure := AggregateExposure(loans, asOf)
	if exposure.DebtSum > float64(cust.ApprovedLimit) {
		return 0
	}

	var totalTenure, paidOnTime, recentStarts int
	var totalVolume float64
	for _, l := range loans {
		totalTenure += l.Tenure
		paidOnTime += l.EMIsPaidOnTime
		totalVolume += l.Amount
		if l.StartDate != nil && l.StartDate.Year() == asOf.Year() {
			recentStarts++
		}
	}

	onTimeRatio := 0.0
	if totalTenure > 0 {
		onTimeRatio = math.Min(float64(paidOnTime)/float64(totalTenure), 1)
	}

	countFactor := math.Min(float64(len(loans)), loanCountCap) / loanCountCap * loanCountWeight
	recencyFactor := math.Min(float64(recentStarts), recentStartsCap) / recentStartsCap * recencyWeight

	limit := float64(cust.ApprovedLimit)
	if limit < 1 {
		limit = 1
	}
	volumeFactor := math.Min(totalVolume/limit, 1) * volumeWeight

	raw := onTimeRatio*onTimeWeight + countFactor + recencyFactor + volumeFactor

	// Truncation is deliberate: 50.9 lands in the 12% tier, not the 0% tier.
	score := int(raw)
	if score > maxScore {
		score = maxScore
	}
	if score < 0 {
		score = 0
	}
	return score
}

// MinimumRateForScore maps a score to the lowest interest rate that tier may
// be offered. The second return value is false for the hard-reject tier
// (score <= 10), where no rate is acceptable.
func MinimumRateForScore(score int) (float64, bool) {
	switch {
	case score > 50:
		return 0, true
	case score > 30:
		return 12.0, true
	case score > 10:
		return 16.0, true
	default:
		return 0, false
	}
}
