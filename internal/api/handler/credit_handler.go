package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"credit-engine/internal/api/handler/dto"
	"credit-engine/internal/domain/credit"
	"credit-engine/internal/domain/customer"
	"credit-engine/internal/pkg/apperrors"
)

type CreditHandler struct {
	customerService customer.Service
	creditService   credit.Service
	logger          *slog.Logger
}

func NewCreditHandler(cs customer.Service, crs credit.Service, l *slog.Logger) *CreditHandler {
	if cs == nil || crs == nil {
		panic("credit handler services cannot be nil")
	}
	if l == nil {
		panic("logger cannot be nil")
	}
	return &CreditHandler{
		customerService: cs,
		creditService:   crs,
		logger:          l.With("component", "CreditHandler"),
	}
}

func decodeJSON(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return fmt.Errorf("no request body")
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		slog.Default().Error("Failed to marshal JSON response", "error", err)
		http.Error(w, `{"error":{"message":"Internal server error"}}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(response)
}

func respondError(w http.ResponseWriter, err error) {
	status, message, field := http.StatusInternalServerError, "An unexpected error occurred.", ""
	var validationError *apperrors.ValidationError
	var appErr *apperrors.AppError

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		status, message = http.StatusNotFound, "Resource not found."
	// Checked before the ErrValidation sentinel: NewValidationError wraps
	// both, and only the typed error carries the offending field.
	case errors.As(err, &validationError):
		status, message, field = http.StatusBadRequest, validationError.Message, validationError.Field
	case errors.Is(err, apperrors.ErrInvalidArgument), errors.Is(err, apperrors.ErrValidation):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, apperrors.ErrIngestionRunning):
		status, message = http.StatusConflict, "An ingestion run is already in progress."
	case errors.Is(err, apperrors.ErrAlreadyExists), errors.Is(err, apperrors.ErrConflict):
		status, message = http.StatusConflict, err.Error()
	case errors.Is(err, apperrors.ErrUnauthorized):
		status, message = http.StatusUnauthorized, "Unauthorized."
	case errors.Is(err, apperrors.ErrForbidden):
		status, message = http.StatusForbidden, "Forbidden."
	case errors.As(err, &appErr):
		message = appErr.Error()
	default:
		slog.Default().Error("Unhandled internal error", "error", err)
	}

	resp := dto.ErrorResponse{
		Error: dto.ErrorDetail{
			Message: message,
			Field:   field,
		},
	}
	respondJSON(w, status, resp)
}

// RegisterCustomer handles POST /register
// @Summary Register a new customer
// @Description Registers a customer and derives their approved credit limit from monthly income.
// @Tags Customers
// @Accept json
// @Produce json
// @Param request body dto.RegisterCustomerRequest true "Customer registration request"
// @Success 201 {object} dto.RegisterCustomerResponse "Customer successfully registered"
// @Failure 400 {object} dto.ErrorResponse "Invalid request payload"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /register [post]
// @Security BearerAuth
func (h *CreditHandler) RegisterCustomer(w http.ResponseWriter, r *http.Request) {
	h.logger.DebugContext(r.Context(), "Received register customer request")

	var req dto.RegisterCustomerRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode request body", slog.Any("error", err))
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		h.logger.WarnContext(r.Context(), "Register request validation failed", slog.Any("error", err))
		respondError(w, err)
		return
	}

	var lastName, phone string
	if req.LastName != nil {
		lastName = *req.LastName
	}
	if req.PhoneNumber != nil {
		phone = *req.PhoneNumber
	}

	created, err := h.customerService.RegisterCustomer(r.Context(), *req.FirstName, lastName, req.Age, *req.MonthlyIncome, phone)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Service failed to register customer", slog.Any("error", err))
		respondError(w, err)
		return
	}

	resp := dto.NewRegisterCustomerResponse(created)
	h.logger.InfoContext(r.Context(), "Customer registered successfully", slog.Int64("customerID", resp.CustomerID))
	respondJSON(w, http.StatusCreated, resp)
}

// CheckEligibility handles POST /check-eligibility
// @Summary Check loan eligibility
// @Description Evaluates a loan request against the customer's credit score and repayment capacity without creating a loan.
// @Tags Credit
// @Accept json
// @Produce json
// @Param request body dto.EligibilityRequest true "Eligibility check request"
// @Success 200 {object} dto.EligibilityResponse "Evaluation result"
// @Failure 400 {object} dto.ErrorResponse "Invalid request payload"
// @Failure 404 {object} dto.ErrorResponse "Customer not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /check-eligibility [post]
// @Security BearerAuth
func (h *CreditHandler) CheckEligibility(w http.ResponseWriter, r *http.Request) {
	h.logger.DebugContext(r.Context(), "Received check eligibility request")

	var req dto.EligibilityRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode request body", slog.Any("error", err))
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		h.logger.WarnContext(r.Context(), "Eligibility request validation failed", slog.Any("error", err))
		respondError(w, err)
		return
	}

	result, err := h.creditService.CheckEligibility(r.Context(), *req.CustomerID, *req.LoanAmount, *req.InterestRate, *req.Tenure)
	if err != nil {
		level := slog.LevelWarn
		if !errors.Is(err, apperrors.ErrNotFound) {
			level = slog.LevelError
		}
		h.logger.Log(r.Context(), level, "Service failed to check eligibility", slog.Any("error", err))
		respondError(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Eligibility check completed",
		slog.Int64("customerID", result.CustomerID),
		slog.Bool("approved", result.Approved))
	respondJSON(w, http.StatusOK, dto.NewEligibilityResponse(result))
}

// CreateLoan handles POST /create-loan
// @Summary Create a new loan
// @Description Evaluates the request and, when approved, persists the loan at the corrected interest rate.
// @Tags Credit
// @Accept json
// @Produce json
// @Param request body dto.CreateLoanRequest true "Loan creation request"
// @Success 201 {object} dto.CreateLoanResponse "Loan successfully created"
// @Success 200 {object} dto.CreateLoanResponse "Loan rejected by credit policy"
// @Failure 400 {object} dto.ErrorResponse "Invalid request payload"
// @Failure 404 {object} dto.ErrorResponse "Customer not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /create-loan [post]
// @Security BearerAuth
func (h *CreditHandler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	h.logger.DebugContext(r.Context(), "Received create loan request")

	var req dto.CreateLoanRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode request body", slog.Any("error", err))
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		h.logger.WarnContext(r.Context(), "Create loan request validation failed", slog.Any("error", err))
		respondError(w, err)
		return
	}

	result, err := h.creditService.CreateLoan(r.Context(), *req.CustomerID, *req.LoanAmount, *req.InterestRate, *req.Tenure)
	if err != nil {
		level := slog.LevelWarn
		if !errors.Is(err, apperrors.ErrNotFound) {
			level = slog.LevelError
		}
		h.logger.Log(r.Context(), level, "Service failed to create loan", slog.Any("error", err))
		respondError(w, err)
		return
	}

	status := http.StatusOK
	if result.Approved {
		status = http.StatusCreated
	}
	h.logger.InfoContext(r.Context(), "Create loan completed",
		slog.Int64("customerID", result.CustomerID),
		slog.Bool("approved", result.Approved))
	respondJSON(w, status, dto.NewCreateLoanResponse(result))
}
