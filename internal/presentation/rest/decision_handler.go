package rest

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/bibbank/loan-decision/internal/application/dto"
	"github.com/bibbank/loan-decision/internal/domain/model"
)

// LoanDecider is the application entry point the handler needs.
type LoanDecider interface {
	Execute(ctx context.Context, req dto.LoanDecisionRequest) (dto.LoanDecisionResponse, error)
}

// DecisionHandler serves loan decisions over HTTP.
type DecisionHandler struct {
	decider LoanDecider
	logger  *slog.Logger
}

// NewDecisionHandler creates a decision HTTP handler.
func NewDecisionHandler(decider LoanDecider, logger *slog.Logger) *DecisionHandler {
	return &DecisionHandler{decider: decider, logger: logger}
}

// RegisterRoutes attaches the decision route to the given mux.
func (h *DecisionHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/decisions/loans", h.decide)
}

func (h *DecisionHandler) decide(w http.ResponseWriter, r *http.Request) {
	req, problems := parseDecisionQuery(r)
	if len(problems) > 0 {
		writeError(w, r, http.StatusBadRequest, strings.Join(problems, ","))
		return
	}

	resp, err := h.decider.Execute(r.Context(), req)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, resp)
	case model.IsClientError(err):
		writeError(w, r, http.StatusBadRequest, domainMessage(err))
	case model.IsServerError(err):
		writeError(w, r, http.StatusInternalServerError, domainMessage(err))
	default:
		h.logger.ErrorContext(r.Context(), "unexpected decision failure", "error", err)
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}

// Query parsing messages, in addition to the dto field messages.
const (
	msgLoanAmountNumeric = "Loan Amount must be a number"
	msgLoanPeriodNumeric = "Loan Period must be a whole number of months"
)

// parseDecisionQuery reads the query string and reports at most one problem
// per field, in field order.
func parseDecisionQuery(r *http.Request) (dto.LoanDecisionRequest, []string) {
	q := r.URL.Query()
	var (
		req      dto.LoanDecisionRequest
		problems []string
	)

	req.PersonalCode = strings.TrimSpace(q.Get("personalCode"))
	if req.PersonalCode == "" {
		problems = append(problems, dto.MsgPersonalCodeRequired)
	}

	switch raw := strings.TrimSpace(q.Get("loanAmount")); {
	case raw == "":
		problems = append(problems, dto.MsgLoanAmountRequired)
	default:
		amount, err := decimal.NewFromString(raw)
		switch {
		case err != nil:
			problems = append(problems, msgLoanAmountNumeric)
		case amount.Sign() <= 0:
			problems = append(problems, dto.MsgLoanAmountPositive)
		default:
			req.LoanAmount = amount
		}
	}

	switch raw := strings.TrimSpace(q.Get("loanPeriod")); {
	case raw == "":
		problems = append(problems, dto.MsgLoanPeriodRequired)
	default:
		period, err := strconv.Atoi(raw)
		switch {
		case err != nil:
			problems = append(problems, msgLoanPeriodNumeric)
		case period <= 0:
			problems = append(problems, dto.MsgLoanPeriodPositive)
		default:
			req.LoanPeriod = period
		}
	}

	return req, problems
}

// domainMessage strips the use case prefix and returns the engine's message.
func domainMessage(err error) string {
	var de *model.DecisionError
	if errors.As(err, &de) {
		return de.Error()
	}
	return err.Error()
}
