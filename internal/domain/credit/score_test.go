package credit

import (
	"math/rand"
	"testing"
	"time"

	"credit-engine/internal/domain/customer"
	"credit-engine/internal/domain/loan"

	"github.com/stretchr/testify/assert"
)

var asOf = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

func testCustomer() *customer.Customer {
	return &customer.Customer{
		CustomerID:    1,
		MonthlySalary: 50_000,
		ApprovedLimit: 1_000_000,
	}
}

func historyLoan(amount float64, tenure, paidOnTime int, start, end time.Time) *loan.Loan {
	return &loan.Loan{
		Amount:           amount,
		Tenure:           tenure,
		EMIsPaidOnTime:   paidOnTime,
		MonthlyRepayment: loan.MonthlyInstallment(amount, 12, tenure),
		StartDate:        &start,
		EndDate:          &end,
	}
}

func TestScore(t *testing.T) {
	t.Run("zero loans scores zero", func(t *testing.T) {
		assert.Zero(t, Score(testCustomer(), nil, asOf))
	})

	t.Run("current debt above approved limit scores zero outright", func(t *testing.T) {
		loans := []*loan.Loan{
			historyLoan(600_000, 12, 12, asOf.AddDate(-1, 0, 0), asOf.AddDate(0, 6, 0)),
			historyLoan(500_000, 12, 12, asOf.AddDate(-1, 0, 0), asOf.AddDate(0, 6, 0)),
		}
		assert.Zero(t, Score(testCustomer(), loans, asOf))
	})

	t.Run("factor sum is truncated not rounded", func(t *testing.T) {
		// On-time 12/12 -> 50, one loan -> 1.5, started this year -> 3,
		// volume 200000/1000000 -> 4. Raw 58.5 truncates to 58.
		start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		loans := []*loan.Loan{historyLoan(200_000, 12, 12, start, start.AddDate(0, 12, 0))}
		assert.Equal(t, 58, Score(testCustomer(), loans, asOf))
	})

	t.Run("closed loans still count toward history factors", func(t *testing.T) {
		// Two closed loans: on-time 12/20 -> 30, count -> 3, no starts this
		// year -> 0, volume 250000/1000000 -> 5. Raw 38.
		start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)
		loans := []*loan.Loan{
			historyLoan(150_000, 10, 6, start, end),
			historyLoan(100_000, 10, 6, start, end),
		}
		assert.Equal(t, 38, Score(testCustomer(), loans, asOf))
	})

	t.Run("score never leaves the 0-100 range", func(t *testing.T) {
		start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		var loans []*loan.Loan
		for i := 0; i < 30; i++ {
			loans = append(loans, historyLoan(30_000, 6, 6, start, start.AddDate(0, 6, 0)))
		}
		score := Score(testCustomer(), loans, asOf)
		assert.GreaterOrEqual(t, score, 0)
		assert.LessOrEqual(t, score, 100)
	})

	t.Run("score stays in 0-100 for randomized loan histories", func(t *testing.T) {
		rng := rand.New(rand.NewSource(42))
		for i := 0; i < 5000; i++ {
			cust := &customer.Customer{
				CustomerID:    1,
				MonthlySalary: rng.Int63n(500_000),
				ApprovedLimit: rng.Int63n(5_000_000) - 100_000,
			}
			loans := make([]*loan.Loan, rng.Intn(40))
			for j := range loans {
				l := &loan.Loan{
					Amount:           rng.Float64() * 3_000_000,
					Tenure:           rng.Intn(70) - 5,
					EMIsPaidOnTime:   rng.Intn(90) - 5,
					MonthlyRepayment: rng.Float64() * 100_000,
				}
				if rng.Intn(10) > 0 {
					start := asOf.AddDate(-rng.Intn(6), 0, rng.Intn(400)-200)
					l.StartDate = &start
					if rng.Intn(10) > 1 {
						end := start.AddDate(0, rng.Intn(72), 0)
						l.EndDate = &end
					}
				}
				loans[j] = l
			}

			score := Score(cust, loans, asOf)
			assert.GreaterOrEqual(t, score, 0, "history %d", i)
			assert.LessOrEqual(t, score, 100, "history %d", i)
		}
	})
}

func TestMinimumRateForScore(t *testing.T) {
	tests := []struct {
		score    int
		wantRate float64
		wantOK   bool
	}{
		{100, 0, true},
		{51, 0, true},
		{50, 12, true},
		{31, 12, true},
		{30, 16, true},
		{11, 16, true},
		{10, 0, false},
		{0, 0, false},
	}
	for _, tt := range tests {
		rate, ok := MinimumRateForScore(tt.score)
		assert.Equal(t, tt.wantRate, rate, "score %d", tt.score)
		assert.Equal(t, tt.wantOK, ok, "score %d", tt.score)
	}
}
