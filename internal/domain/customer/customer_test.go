package customer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundToNearestLakh(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		want  int64
	}{
		{"exact lakh stays put", 100_000, 100_000},
		{"halfway rounds up", 150_000, 200_000},
		{"just below halfway rounds down", 149_999, 100_000},
		{"just above halfway rounds up", 150_001, 200_000},
		{"zero stays zero", 0, 0},
		{"small value rounds down to zero", 49_999, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RoundToNearestLakh(tt.value))
		})
	}
}

func TestApprovedLimitFor(t *testing.T) {
	t.Run("should be 36x salary rounded to nearest lakh", func(t *testing.T) {
		// 36 * 50000 = 1800000, already a multiple of a lakh.
		assert.Equal(t, int64(1_800_000), ApprovedLimitFor(50_000))

		// 36 * 12500 = 450000, rounds up to 500000.
		assert.Equal(t, int64(500_000), ApprovedLimitFor(12_500))

		// 36 * 12000 = 432000, rounds down to 400000.
		assert.Equal(t, int64(400_000), ApprovedLimitFor(12_000))
	})

	t.Run("zero salary yields zero limit", func(t *testing.T) {
		assert.Equal(t, int64(0), ApprovedLimitFor(0))
	})
}

func TestNewCustomer(t *testing.T) {
	age := 30
	cust := NewCustomer("Jane", "Doe", "9876543210", &age, 50_000)

	assert.Equal(t, "Jane", cust.FirstName)
	assert.Equal(t, "Doe", cust.LastName)
	assert.Equal(t, "9876543210", cust.PhoneNumber)
	assert.Equal(t, &age, cust.Age)
	assert.Equal(t, int64(50_000), cust.MonthlySalary)
	assert.Equal(t, int64(1_800_000), cust.ApprovedLimit)
	assert.Zero(t, cust.CurrentDebt)
	assert.Equal(t, "Jane Doe", cust.FullName())
}
