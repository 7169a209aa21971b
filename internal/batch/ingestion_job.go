package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"credit-engine/internal/domain/credit"
	"credit-engine/internal/domain/customer"
	"credit-engine/internal/domain/loan"
	"credit-engine/internal/infrastructure/monitoring"
	"credit-engine/internal/pkg/apperrors"
	"credit-engine/internal/pkg/clock"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

const (
	customerFileName = "customer_data.xlsx"
	loanFileName     = "loan_data.xlsx"
)

// IngestionJob bulk-loads customer and loan rows from spreadsheets and then
// reconciles every customer's cached current debt from the persisted loan
// state. At most one run may be in flight: interleaved partial writes would
// leave the debt cache inconsistent.
type IngestionJob struct {
	customers     customer.Repository
	loans         loan.Repository
	creditService credit.Service
	dataDir       string
	now           clock.Clock
	logger        *slog.Logger

	mu sync.Mutex
}

func NewIngestionJob(
	customers customer.Repository,
	loans loan.Repository,
	creditService credit.Service,
	dataDir string,
	now clock.Clock,
	logger *slog.Logger,
) *IngestionJob {
	if customers == nil || loans == nil || creditService == nil || logger == nil {
		panic("IngestionJob dependencies cannot be nil")
	}
	if now == nil {
		now = clock.System
	}
	return &IngestionJob{
		customers:     customers,
		loans:         loans,
		creditService: creditService,
		dataDir:       dataDir,
		now:           now,
		logger:        logger.With("job", "Ingestion"),
	}
}

// Start launches a run in the background and returns its run ID, or
// ErrIngestionRunning when a run is already in flight.
func (j *IngestionJob) Start(timeout time.Duration) (string, error) {
	if !j.mu.TryLock() {
		return "", apperrors.ErrIngestionRunning
	}
	runID := uuid.NewString()
	go func() {
		defer j.mu.Unlock()
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := j.run(ctx, runID); err != nil {
			j.logger.Error("Background ingestion run finished with error", "run_id", runID, slog.Any("error", err))
		}
	}()
	return runID, nil
}

// Run executes a full ingestion pass synchronously. Used by the cron trigger.
func (j *IngestionJob) Run(ctx context.Context) error {
	if !j.mu.TryLock() {
		return apperrors.ErrIngestionRunning
	}
	defer j.mu.Unlock()
	return j.run(ctx, uuid.NewString())
}

func (j *IngestionJob) run(ctx context.Context, runID string) error {
	startTime := time.Now()
	logger := j.logger.With("run_id", runID)
	logger.InfoContext(ctx, "Starting ingestion job.")

	if err := j.ingestCustomers(ctx, logger); err != nil {
		monitoring.RecordIngestionRun("failure")
		return fmt.Errorf("customer ingestion failed: %w", err)
	}
	if err := j.ingestLoans(ctx, logger); err != nil {
		monitoring.RecordIngestionRun("failure")
		return fmt.Errorf("loan ingestion failed: %w", err)
	}
	if err := j.reconcileDebts(ctx, logger); err != nil {
		monitoring.RecordIngestionRun("failure")
		return fmt.Errorf("debt reconciliation failed: %w", err)
	}

	monitoring.RecordIngestionRun("success")
	logger.InfoContext(ctx, "Ingestion job finished successfully.", slog.Duration("duration", time.Since(startTime)))
	return nil
}

func (j *IngestionJob) ingestCustomers(ctx context.Context, logger *slog.Logger) error {
	path := filepath.Join(j.dataDir, customerFileName)
	rows, headers, err := readSheet(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.WarnContext(ctx, "Customer data file not found, skipping", "path", path)
			return nil
		}
		return err
	}
	logger.InfoContext(ctx, "Ingesting customer rows", "path", path, slog.Int("rows", len(rows)))

	for _, row := range rows {
		customerID, ok := cellInt(row, headers, "customer_id", "customer id")
		if !ok {
			monitoring.RecordIngestionRow("customer", "skipped")
			continue
		}

		cust := &customer.Customer{
			CustomerID:    customerID,
			FirstName:     cellString(row, headers, "first_name", "first name"),
			LastName:      cellString(row, headers, "last_name", "last name"),
			PhoneNumber:   cellString(row, headers, "phone_number", "phone number"),
			MonthlySalary: cellIntDefault(row, headers, 0, "monthly_salary", "monthly salary"),
			ApprovedLimit: cellIntDefault(row, headers, 0, "approved_limit", "approved limit"),
			CurrentDebt:   cellIntDefault(row, headers, 0, "current_debt", "current debt"),
		}
		if age, ok := cellInt(row, headers, "age"); ok {
			a := int(age)
			cust.Age = &a
		}

		if err := j.customers.Upsert(ctx, cust); err != nil {
			logger.ErrorContext(ctx, "Failed to upsert customer row", slog.Int64("customerID", customerID), slog.Any("error", err))
			monitoring.RecordIngestionRow("customer", "error")
			continue
		}
		monitoring.RecordIngestionRow("customer", "upserted")
	}
	return nil
}

func (j *IngestionJob) ingestLoans(ctx context.Context, logger *slog.Logger) error {
	path := filepath.Join(j.dataDir, loanFileName)
	rows, headers, err := readSheet(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.WarnContext(ctx, "Loan data file not found, skipping", "path", path)
			return nil
		}
		return err
	}
	logger.InfoContext(ctx, "Ingesting loan rows", "path", path, slog.Int("rows", len(rows)))

	for _, row := range rows {
		loanID, ok := cellInt(row, headers, "loan id", "loan_id")
		if !ok {
			monitoring.RecordIngestionRow("loan", "skipped")
			continue
		}
		customerID, ok := cellInt(row, headers, "customer id", "customer_id")
		if !ok {
			monitoring.RecordIngestionRow("loan", "skipped")
			continue
		}

		if _, err := j.customers.FindByID(ctx, customerID); err != nil {
			if errors.Is(err, customer.ErrNotFound) || errors.Is(err, apperrors.ErrNotFound) {
				logger.WarnContext(ctx, "Skipping loan row for unknown customer",
					slog.Int64("loanID", loanID), slog.Int64("customerID", customerID))
				monitoring.RecordIngestionRow("loan", "skipped")
				continue
			}
			return fmt.Errorf("failed to look up customer %d: %w", customerID, err)
		}

		amount := cellFloatDefault(row, headers, 0, "loan amount", "loan_amount")
		tenure := int(cellIntDefault(row, headers, 0, "tenure"))
		rate := cellFloatDefault(row, headers, 0, "interest rate", "interest_rate")
		repayment := cellFloatDefault(row, headers, 0, "monthly repayment", "monthly_repayment", "monthly payment")
		if repayment == 0 && amount != 0 && tenure != 0 {
			repayment = loan.MonthlyInstallment(amount, rate, tenure)
		}

		l := &loan.Loan{
			LoanID:           loanID,
			CustomerID:       customerID,
			Amount:           amount,
			Tenure:           tenure,
			InterestRate:     rate,
			MonthlyRepayment: repayment,
			EMIsPaidOnTime:   int(cellIntDefault(row, headers, 0, "emis paid on time", "emis_paid_on_time")),
			StartDate:        cellDate(row, headers, "start date", "start_date"),
			EndDate:          cellDate(row, headers, "end date", "end_date"),
		}

		if err := j.loans.Upsert(ctx, l); err != nil {
			logger.ErrorContext(ctx, "Failed to upsert loan row", slog.Int64("loanID", loanID), slog.Any("error", err))
			monitoring.RecordIngestionRow("loan", "error")
			continue
		}
		monitoring.RecordIngestionRow("loan", "upserted")
	}
	return nil
}

// reconcileDebts recomputes every customer's cached current debt from loan
// records. Running it twice over unchanged data is a no-op.
func (j *IngestionJob) reconcileDebts(ctx context.Context, logger *slog.Logger) error {
	customers, err := j.customers.FindAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to list customers: %w", err)
	}

	var errorCount int
	for _, cust := range customers {
		if _, err := j.creditService.RefreshCurrentDebt(ctx, cust.CustomerID); err != nil {
			logger.ErrorContext(ctx, "Failed to refresh cached debt",
				slog.Int64("customerID", cust.CustomerID), slog.Any("error", err))
			errorCount++
		}
	}

	logger.InfoContext(ctx, "Debt reconciliation finished",
		slog.Int("customers", len(customers)), slog.Int("errors", errorCount))
	if errorCount > 0 {
		return fmt.Errorf("reconciliation completed with %d errors", errorCount)
	}
	return nil
}

// readSheet returns the data rows of the first sheet plus a header-name to
// column-index map. Header names are matched case-insensitively.
func readSheet(path string) ([][]string, map[string]int, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, nil, err
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open spreadsheet %s: %w", path, err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read rows from %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, map[string]int{}, nil
	}

	headers := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		headers[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return rows[1:], headers, nil
}

func cellString(row []string, headers map[string]int, keys ...string) string {
	for _, key := range keys {
		idx, ok := headers[key]
		if !ok || idx >= len(row) {
			continue
		}
		if v := strings.TrimSpace(row[idx]); v != "" {
			return v
		}
	}
	return ""
}

func cellInt(row []string, headers map[string]int, keys ...string) (int64, bool) {
	raw := cellString(row, headers, keys...)
	if raw == "" {
		return 0, false
	}
	if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return v, true
	}
	// Excel frequently renders integer cells as floats ("42.0").
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return int64(f), true
	}
	return 0, false
}

func cellIntDefault(row []string, headers map[string]int, def int64, keys ...string) int64 {
	if v, ok := cellInt(row, headers, keys...); ok {
		return v
	}
	return def
}

func cellFloatDefault(row []string, headers map[string]int, def float64, keys ...string) float64 {
	raw := cellString(row, headers, keys...)
	if raw == "" {
		return def
	}
	if v, err := strconv.ParseFloat(raw, 64); err == nil {
		return v
	}
	return def
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"01-02-06",
	"1/2/2006",
	"2006/01/02",
}

func cellDate(row []string, headers map[string]int, keys ...string) *time.Time {
	raw := cellString(row, headers, keys...)
	if raw == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	// Fall back to Excel serial date numbers.
	if serial, err := strconv.ParseFloat(raw, 64); err == nil {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return &t
		}
	}
	return nil
}
