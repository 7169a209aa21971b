package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"credit-engine/internal/domain/loan"
	"credit-engine/internal/pkg/apperrors"

	"github.com/jackc/pgx/v5"
)

type LoanRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ loan.Repository = (*LoanRepository)(nil)

const loanColumns = "id, customer_id, amount, tenure, interest_rate, monthly_repayment, emis_paid_on_time, start_date, end_date, created_at"

func NewLoanRepository(db DBPool, logger *slog.Logger) *LoanRepository {
	return &LoanRepository{db: db, logger: logger.With("component", "LoanRepository")}
}

func (r *LoanRepository) Create(ctx context.Context, newLoan *loan.Loan) (*loan.Loan, error) {
	if newLoan == nil {
		return nil, fmt.Errorf("%w: loan cannot be nil", apperrors.ErrInvalidArgument)
	}
	r.logger.InfoContext(ctx, "Attempting to insert new loan", slog.Int64("customerID", newLoan.CustomerID))

	query := `
        INSERT INTO loans (customer_id, amount, tenure, interest_rate, monthly_repayment, emis_paid_on_time, start_date, end_date, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
        RETURNING ` + loanColumns

	var created loan.Loan
	err := r.db.QueryRow(ctx, query,
		newLoan.CustomerID,
		newLoan.Amount,
		newLoan.Tenure,
		newLoan.InterestRate,
		newLoan.MonthlyRepayment,
		newLoan.EMIsPaidOnTime,
		newLoan.StartDate,
		newLoan.EndDate,
	).Scan(
		&created.LoanID,
		&created.CustomerID,
		&created.Amount,
		&created.Tenure,
		&created.InterestRate,
		&created.MonthlyRepayment,
		&created.EMIsPaidOnTime,
		&created.StartDate,
		&created.EndDate,
		&created.CreatedAt,
	)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to insert loan", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to insert loan: %w", apperrors.ErrDatabase, err)
	}

	r.logger.InfoContext(ctx, "Loan created in DB", slog.Int64("loanID", created.LoanID))
	return &created, nil
}

func (r *LoanRepository) FindByID(ctx context.Context, loanID int64) (*loan.Loan, error) {
	r.logger.InfoContext(ctx, "Attempting to find loan by ID", slog.Int64("loanID", loanID))

	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1`

	var l loan.Loan
	err := r.db.QueryRow(ctx, query, loanID).Scan(
		&l.LoanID,
		&l.CustomerID,
		&l.Amount,
		&l.Tenure,
		&l.InterestRate,
		&l.MonthlyRepayment,
		&l.EMIsPaidOnTime,
		&l.StartDate,
		&l.EndDate,
		&l.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.WarnContext(ctx, "Loan not found")
			return nil, apperrors.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to query/scan loan by ID", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to get loan by ID: %w", apperrors.ErrDatabase, err)
	}

	return &l, nil
}

func (r *LoanRepository) FindByCustomer(ctx context.Context, customerID int64) ([]*loan.Loan, error) {
	r.logger.InfoContext(ctx, "Attempting to find all loans for customer", slog.Int64("customerID", customerID))

	query := `SELECT ` + loanColumns + ` FROM loans WHERE customer_id = $1 ORDER BY id ASC`

	return r.queryLoans(ctx, query, customerID)
}

func (r *LoanRepository) FindCurrentByCustomer(ctx context.Context, customerID int64, asOf time.Time) ([]*loan.Loan, error) {
	r.logger.InfoContext(ctx, "Attempting to find current loans for customer", slog.Int64("customerID", customerID))

	query := `SELECT ` + loanColumns + ` FROM loans
        WHERE customer_id = $1 AND (end_date IS NULL OR end_date >= $2)
        ORDER BY id ASC`

	return r.queryLoans(ctx, query, customerID, asOf)
}

func (r *LoanRepository) queryLoans(ctx context.Context, query string, args ...any) ([]*loan.Loan, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query loans", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to query loans: %w", apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	loans := make([]*loan.Loan, 0)
	for rows.Next() {
		var l loan.Loan
		err := rows.Scan(
			&l.LoanID,
			&l.CustomerID,
			&l.Amount,
			&l.Tenure,
			&l.InterestRate,
			&l.MonthlyRepayment,
			&l.EMIsPaidOnTime,
			&l.StartDate,
			&l.EndDate,
			&l.CreatedAt,
		)
		if err != nil {
			r.logger.ErrorContext(ctx, "Failed to scan loan row", slog.Any("error", err))
			return nil, fmt.Errorf("%w: failed to scan loan row: %w", apperrors.ErrDatabase, err)
		}
		loans = append(loans, &l)
	}

	if err = rows.Err(); err != nil {
		r.logger.ErrorContext(ctx, "Error iterating loan rows", slog.Any("error", err))
		return nil, fmt.Errorf("%w: error iterating loan rows: %w", apperrors.ErrDatabase, err)
	}

	r.logger.InfoContext(ctx, "Finished finding loans", slog.Int("count", len(loans)))
	return loans, nil
}

func (r *LoanRepository) Upsert(ctx context.Context, l *loan.Loan) error {
	if l == nil || l.LoanID == 0 {
		return fmt.Errorf("%w: upsert requires a loan with an explicit ID", apperrors.ErrInvalidArgument)
	}
	r.logger.InfoContext(ctx, "Attempting to upsert loan", slog.Int64("loanID", l.LoanID))

	query := `
        INSERT INTO loans (id, customer_id, amount, tenure, interest_rate, monthly_repayment, emis_paid_on_time, start_date, end_date, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
        ON CONFLICT (id) DO UPDATE
        SET customer_id = EXCLUDED.customer_id,
            amount = EXCLUDED.amount,
            tenure = EXCLUDED.tenure,
            interest_rate = EXCLUDED.interest_rate,
            monthly_repayment = EXCLUDED.monthly_repayment,
            emis_paid_on_time = EXCLUDED.emis_paid_on_time,
            start_date = EXCLUDED.start_date,
            end_date = EXCLUDED.end_date`

	_, err := r.db.Exec(ctx, query,
		l.LoanID,
		l.CustomerID,
		l.Amount,
		l.Tenure,
		l.InterestRate,
		l.MonthlyRepayment,
		l.EMIsPaidOnTime,
		l.StartDate,
		l.EndDate,
	)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to upsert loan", slog.Any("error", err))
		return fmt.Errorf("%w: failed to upsert loan: %w", apperrors.ErrDatabase, err)
	}

	r.logger.InfoContext(ctx, "Loan upserted successfully")
	return nil
}
