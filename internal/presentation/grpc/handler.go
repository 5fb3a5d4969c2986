package grpc

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/bibbank/loan-decision/internal/application/dto"
	"github.com/bibbank/loan-decision/internal/domain/model"
)

// LoanDecider is the application entry point the handler needs.
type LoanDecider interface {
	Execute(ctx context.Context, req dto.LoanDecisionRequest) (dto.LoanDecisionResponse, error)
}

// DecisionHandler implements DecisionServiceServer.
type DecisionHandler struct {
	UnimplementedDecisionServiceServer
	decider LoanDecider
	logger  *slog.Logger
}

// NewDecisionHandler creates a new gRPC decision handler.
func NewDecisionHandler(decider LoanDecider, logger *slog.Logger) *DecisionHandler {
	return &DecisionHandler{decider: decider, logger: logger}
}

// Decide handles the gRPC Decide request.
func (h *DecisionHandler) Decide(ctx context.Context, req *DecideRequest) (*DecideResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	in := dto.LoanDecisionRequest{
		PersonalCode: strings.TrimSpace(req.PersonalCode),
		LoanPeriod:   int(req.LoanPeriod),
	}
	if req.LoanAmount != "" {
		amount, err := decimal.NewFromString(req.LoanAmount)
		if err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "invalid loan_amount: %v", err)
		}
		in.LoanAmount = amount
	}
	if problems := in.Validate(); len(problems) > 0 {
		return nil, status.Error(codes.InvalidArgument, strings.Join(problems, ","))
	}

	result, err := h.decider.Execute(ctx, in)
	if err != nil {
		return nil, h.toStatus(ctx, err)
	}

	return &DecideResponse{
		Decision:        result.Decision,
		LoanAmount:      result.LoanAmount.String(),
		Outcome:         result.Outcome,
		SuggestedPeriod: int32(result.SuggestedPeriod), //nolint:gosec // bounded by the loan policy
	}, nil
}

func (h *DecisionHandler) toStatus(ctx context.Context, err error) error {
	var de *model.DecisionError
	if !errors.As(err, &de) {
		h.logger.ErrorContext(ctx, "unexpected decision failure", "error", err)
		return status.Error(codes.Internal, "internal error")
	}
	switch {
	case errors.Is(de, model.ErrAccountNotFound):
		return status.Error(codes.NotFound, de.Error())
	case de.Kind == model.KindClient:
		return status.Error(codes.InvalidArgument, de.Error())
	default:
		return status.Error(codes.Internal, de.Error())
	}
}
