package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"credit-engine/internal/api/handler/dto"
	"credit-engine/internal/domain/loan"
	"credit-engine/internal/pkg/apperrors"

	"github.com/go-chi/chi/v5"
)

type LoanHandler struct {
	service loan.Service
	logger  *slog.Logger
}

func NewLoanHandler(s loan.Service, l *slog.Logger) *LoanHandler {
	return &LoanHandler{
		service: s,
		logger:  l.With("component", "LoanHandler"),
	}
}

func getIDFromURL(r *http.Request, param string) (int64, error) {
	idStr := chi.URLParam(r, param)
	if idStr == "" {
		return 0, fmt.Errorf("%w: %s not found in URL path", apperrors.ErrInvalidArgument, param)
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid %s format in URL path: %s", apperrors.ErrInvalidArgument, param, idStr)
	}
	return id, nil
}

// ViewLoan handles GET /view-loan/{loanID}
// @Summary Retrieve loan details
// @Description Retrieves a loan together with a summary of its customer.
// @Tags Loans
// @Produce json
// @Param loanID path int true "Loan ID" Minimum(1)
// @Success 200 {object} dto.ViewLoanResponse "Loan details retrieved"
// @Failure 400 {object} dto.ErrorResponse "Invalid loan ID format"
// @Failure 404 {object} dto.ErrorResponse "Loan not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /view-loan/{loanID} [get]
// @Security BearerAuth
func (h *LoanHandler) ViewLoan(w http.ResponseWriter, r *http.Request) {
	loanID, err := getIDFromURL(r, "loanID")
	if err != nil {
		h.logger.WarnContext(r.Context(), "Failed to get loan ID from URL", slog.Any("error", err))
		respondError(w, err)
		return
	}

	h.logger.DebugContext(r.Context(), "Received view loan request", slog.Int64("loanID", loanID))

	domainLoan, cust, err := h.service.GetLoan(r.Context(), loanID)
	if err != nil {
		level := slog.LevelWarn
		if !errors.Is(err, loan.ErrNotFound) && !errors.Is(err, apperrors.ErrNotFound) {
			level = slog.LevelError
		}
		h.logger.Log(r.Context(), level, "Service failed to get loan", slog.Any("error", err))
		respondError(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Loan retrieved successfully", slog.Int64("loanID", loanID))
	respondJSON(w, http.StatusOK, dto.NewViewLoanResponse(domainLoan, cust))
}

// ViewCustomerLoans handles GET /view-loans/{customerID}
// @Summary List a customer's current loans
// @Description Retrieves all loans of a customer that have not yet reached their end date.
// @Tags Loans
// @Produce json
// @Param customerID path int true "Customer ID" Minimum(1)
// @Success 200 {array} dto.CustomerLoanResponse "List of current loans"
// @Failure 400 {object} dto.ErrorResponse "Invalid customer ID format"
// @Failure 404 {object} dto.ErrorResponse "Customer not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /view-loans/{customerID} [get]
// @Security BearerAuth
func (h *LoanHandler) ViewCustomerLoans(w http.ResponseWriter, r *http.Request) {
	customerID, err := getIDFromURL(r, "customerID")
	if err != nil {
		h.logger.WarnContext(r.Context(), "Failed to get customer ID from URL", slog.Any("error", err))
		respondError(w, err)
		return
	}

	h.logger.DebugContext(r.Context(), "Received view customer loans request", slog.Int64("customerID", customerID))

	loans, err := h.service.ListCurrentLoans(r.Context(), customerID)
	if err != nil {
		level := slog.LevelWarn
		if !errors.Is(err, apperrors.ErrNotFound) {
			level = slog.LevelError
		}
		h.logger.Log(r.Context(), level, "Service failed to list current loans", slog.Any("error", err))
		respondError(w, err)
		return
	}

	resp := make([]dto.CustomerLoanResponse, len(loans))
	for i, l := range loans {
		resp[i] = dto.NewCustomerLoanResponse(l)
	}

	h.logger.InfoContext(r.Context(), "Customer loans listed successfully",
		slog.Int64("customerID", customerID), slog.Int("count", len(resp)))
	respondJSON(w, http.StatusOK, resp)
}
