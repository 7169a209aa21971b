package customer

import (
	"math"
	"time"
)

// Lakh is the rounding granularity for approved credit limits.
const Lakh = 100_000

type Customer struct {
	CustomerID    int64     `json:"customerId"`
	FirstName     string    `json:"firstName"`
	LastName      string    `json:"lastName"`
	PhoneNumber   string    `json:"phoneNumber"`
	Age           *int      `json:"age,omitempty"`
	MonthlySalary int64     `json:"monthlySalary"`
	ApprovedLimit int64     `json:"approvedLimit"`
	CurrentDebt   int64     `json:"currentDebt"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func NewCustomer(firstName, lastName, phoneNumber string, age *int, monthlySalary int64) *Customer {
	return &Customer{
		FirstName:     firstName,
		LastName:      lastName,
		PhoneNumber:   phoneNumber,
		Age:           age,
		MonthlySalary: monthlySalary,
		ApprovedLimit: ApprovedLimitFor(monthlySalary),
		CurrentDebt:   0,
	}
}

func (c *Customer) FullName() string {
	return c.FirstName + " " + c.LastName
}

// RoundToNearestLakh rounds half up: 150000 -> 200000, 149999 -> 100000.
func RoundToNearestLakh(value float64) int64 {
	return int64(math.Round(value/Lakh)) * Lakh
}

// ApprovedLimitFor derives the credit limit granted at registration:
// 36x monthly salary, rounded to the nearest lakh.
func ApprovedLimitFor(monthlySalary int64) int64 {
	return RoundToNearestLakh(36 * float64(monthlySalary))
}
