package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/bibbank/loan-decision/internal/application/dto"
	"github.com/bibbank/loan-decision/internal/domain/model"
	"github.com/bibbank/loan-decision/internal/domain/service"
)

// DecideLoanUseCase turns a wire request into a loan decision and records
// aggregate counters about it. Nothing about individual decisions is kept.
type DecideLoanUseCase struct {
	engine *service.DecisionEngine
	logger *slog.Logger
	tracer trace.Tracer

	decisions metric.Int64Counter
	failures  metric.Int64Counter
	duration  metric.Float64Histogram
}

// NewDecideLoanUseCase wires dependencies and registers the decision instruments on meter.
func NewDecideLoanUseCase(
	engine *service.DecisionEngine,
	logger *slog.Logger,
	meter metric.Meter,
	tracer trace.Tracer,
) (*DecideLoanUseCase, error) {
	decisions, err := meter.Int64Counter("loan_decisions_total",
		metric.WithDescription("Loan decisions produced, by outcome."))
	if err != nil {
		return nil, fmt.Errorf("create decisions counter: %w", err)
	}
	failures, err := meter.Int64Counter("loan_decision_errors_total",
		metric.WithDescription("Loan decision requests that produced an error, by kind."))
	if err != nil {
		return nil, fmt.Errorf("create errors counter: %w", err)
	}
	duration, err := meter.Float64Histogram("loan_decision_duration_seconds",
		metric.WithDescription("Time spent deciding a loan request."),
		metric.WithUnit("s"))
	if err != nil {
		return nil, fmt.Errorf("create duration histogram: %w", err)
	}

	return &DecideLoanUseCase{
		engine:    engine,
		logger:    logger,
		tracer:    tracer,
		decisions: decisions,
		failures:  failures,
		duration:  duration,
	}, nil
}

// Execute decides the request. Errors returned are *model.DecisionError for
// domain failures, so transports can map them with model.IsClientError and
// model.IsServerError.
func (uc *DecideLoanUseCase) Execute(ctx context.Context, req dto.LoanDecisionRequest) (dto.LoanDecisionResponse, error) {
	ctx, span := uc.tracer.Start(ctx, "DecideLoan")
	defer span.End()

	start := time.Now()
	defer func() {
		uc.duration.Record(ctx, time.Since(start).Seconds())
	}()

	decision, err := uc.engine.Decide(ctx, model.LoanRequest{
		ApplicantID:           req.PersonalCode,
		RequestedAmount:       req.LoanAmount,
		RequestedPeriodMonths: req.LoanPeriod,
	})
	if err != nil {
		kind := errorKind(err)
		uc.failures.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
		span.SetStatus(codes.Error, kind)
		span.RecordError(err)

		if kind == model.KindClient.String() {
			uc.logger.InfoContext(ctx, "loan request refused", "reason", err.Error())
		} else {
			uc.logger.ErrorContext(ctx, "loan decision failed", "error", err)
		}
		return dto.LoanDecisionResponse{}, fmt.Errorf("decide loan: %w", err)
	}

	outcome := decision.Outcome().String()
	uc.decisions.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	span.SetAttributes(
		attribute.String("loan.outcome", outcome),
		attribute.Bool("loan.rejected", decision.Outcome().IsRejection()),
	)
	if decision.HasSuggestedPeriod() {
		span.SetAttributes(attribute.Int("loan.suggested_period", decision.SuggestedPeriod()))
	}
	uc.logger.DebugContext(ctx, "loan decided",
		"outcome", outcome,
		"amount", decision.Amount().String(),
		"suggested_period", decision.SuggestedPeriod(),
	)

	return dto.LoanDecisionResponse{
		Decision:        decision.Message(),
		LoanAmount:      decision.Amount(),
		Outcome:         outcome,
		SuggestedPeriod: decision.SuggestedPeriod(),
	}, nil
}

func errorKind(err error) string {
	var de *model.DecisionError
	if errors.As(err, &de) {
		return de.Kind.String()
	}
	return "unknown"
}
