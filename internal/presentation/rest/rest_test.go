package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/crypto/bcrypt"

	"github.com/bibbank/loan-decision/internal/application/dto"
	"github.com/bibbank/loan-decision/internal/application/usecase"
	"github.com/bibbank/loan-decision/internal/domain/model"
	"github.com/bibbank/loan-decision/internal/domain/service"
	"github.com/bibbank/loan-decision/internal/infrastructure/credentials"
	"github.com/bibbank/loan-decision/internal/infrastructure/directory"
	"github.com/bibbank/loan-decision/pkg/auth"
	"github.com/bibbank/loan-decision/pkg/testutil"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// ---------------------------------------------------------------------------
// Fakes
// ---------------------------------------------------------------------------

type mockDecider struct {
	executeFunc func(ctx context.Context, req dto.LoanDecisionRequest) (dto.LoanDecisionResponse, error)
	calls       int
}

func (m *mockDecider) Execute(ctx context.Context, req dto.LoanDecisionRequest) (dto.LoanDecisionResponse, error) {
	m.calls++
	return m.executeFunc(ctx, req)
}

func failingDecider(err error) *mockDecider {
	return &mockDecider{executeFunc: func(context.Context, dto.LoanDecisionRequest) (dto.LoanDecisionResponse, error) {
		return dto.LoanDecisionResponse{}, err
	}}
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) dto.ErrorDetails {
	t.Helper()
	var body dto.ErrorDetails
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func serveDecision(h *DecisionHandler, query string) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/decisions/loans?"+query, nil))
	return rec
}

// ---------------------------------------------------------------------------
// Decision handler
// ---------------------------------------------------------------------------

func TestDecisionHandler_QueryValidation(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"everything missing", "", strings.Join([]string{dto.MsgPersonalCodeRequired, dto.MsgLoanAmountRequired, dto.MsgLoanPeriodRequired}, ",")},
		{"non numeric amount", "personalCode=1&loanAmount=abc&loanPeriod=12", msgLoanAmountNumeric},
		{"zero amount", "personalCode=1&loanAmount=0&loanPeriod=12", dto.MsgLoanAmountPositive},
		{"fractional period", "personalCode=1&loanAmount=2000&loanPeriod=12.5", msgLoanPeriodNumeric},
		{"negative period", "personalCode=1&loanAmount=2000&loanPeriod=-3", dto.MsgLoanPeriodPositive},
		{"blank code", "personalCode=%20&loanAmount=2000&loanPeriod=12", dto.MsgPersonalCodeRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decider := failingDecider(errors.New("must not be called"))
			rec := serveDecision(NewDecisionHandler(decider, discard), tt.query)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			body := decodeError(t, rec)
			assert.Equal(t, tt.want, body.Message)
			assert.Equal(t, "uri=/api/decisions/loans", body.Details)
			_, err := time.Parse(time.RFC3339Nano, body.Timestamp)
			assert.NoError(t, err)
			assert.Zero(t, decider.calls)
		})
	}
}

func TestDecisionHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{
			"client error",
			model.ClientError(model.ErrAccountNotFound, "%s", "1"),
			http.StatusBadRequest,
			"no such account: 1",
		},
		{
			"wrapped server error",
			errors.Join(errors.New("decide loan"), model.ServerError(model.ErrInvalidProfileData, "%s", "1")),
			http.StatusInternalServerError,
			"invalid internal profile data: 1",
		},
		{
			"unknown error",
			errors.New("boom"),
			http.StatusInternalServerError,
			"internal error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serveDecision(NewDecisionHandler(failingDecider(tt.err), discard), "personalCode=1&loanAmount=2000&loanPeriod=12")

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.message, decodeError(t, rec).Message)
		})
	}
}

func TestDecisionHandler_PassesParsedRequest(t *testing.T) {
	var got dto.LoanDecisionRequest
	decider := &mockDecider{executeFunc: func(_ context.Context, req dto.LoanDecisionRequest) (dto.LoanDecisionResponse, error) {
		got = req
		return dto.LoanDecisionResponse{Decision: "ok", LoanAmount: req.LoanAmount, Outcome: "APPROVED"}, nil
	}}

	rec := serveDecision(NewDecisionHandler(decider, discard), "personalCode=49002010976&loanAmount=2500.50&loanPeriod=24")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "49002010976", got.PersonalCode)
	testutil.AssertDecimalEqual(t, "2500.5", got.LoanAmount)
	assert.Equal(t, 24, got.LoanPeriod)
}

// ---------------------------------------------------------------------------
// Router, end to end over the seed directory
// ---------------------------------------------------------------------------

type routerHarness struct {
	handler http.Handler
	jwt     *auth.JWTService
}

func newRouterHarness(t *testing.T, rateLimit int, checks map[string]CheckFunc) routerHarness {
	t.Helper()
	dir, err := directory.NewMemoryDirectory(directory.DefaultSeed())
	require.NoError(t, err)

	uc, err := usecase.NewDecideLoanUseCase(
		service.NewDecisionEngine(dir),
		discard,
		metricnoop.NewMeterProvider().Meter("test"),
		tracenoop.NewTracerProvider().Tracer("test"),
	)
	require.NoError(t, err)

	jwtSvc, err := auth.NewJWTService(auth.JWTConfig{Secret: "rest-test-secret", Issuer: "bib-test"})
	require.NoError(t, err)

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	store, err := credentials.ParseStore("officer:" + string(hash))
	require.NoError(t, err)

	handler := NewRouter(RouterConfig{
		Decisions: NewDecisionHandler(uc, discard),
		Auth:      NewAuthHandler(store, jwtSvc, discard),
		Health:    NewHealthHandler("bib-decision", checks, discard),
		Metrics: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, "# metrics\n")
		}),
		JWT:       jwtSvc,
		RateLimit: rateLimit,
		Logger:    discard,
	})
	return routerHarness{handler: handler, jwt: jwtSvc}
}

func (h routerHarness) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

func (h routerHarness) token(t *testing.T) string {
	t.Helper()
	rec := h.do(t, httptest.NewRequest(http.MethodPost, "/api/authenticate",
		strings.NewReader(`{"username":"officer","password":"s3cret"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	var resp dto.AuthenticateResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func (h routerHarness) decide(t *testing.T, token, query string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/decisions/loans?"+query, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return h.do(t, req)
}

func TestRouter_DecisionFlow(t *testing.T) {
	h := newRouterHarness(t, 1000, nil)
	token := h.token(t)

	t.Run("approved and capped", func(t *testing.T) {
		rec := h.decide(t, token, "personalCode="+testutil.ApplicantSegment3+"&loanAmount=4000&loanPeriod=12")

		require.Equal(t, http.StatusOK, rec.Code)
		var resp dto.LoanDecisionResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "Your Loan request has been APPROVED.", resp.Decision)
		assert.Equal(t, "APPROVED", resp.Outcome)
		testutil.AssertDecimalEqual(t, "10000", resp.LoanAmount)
	})

	t.Run("counter-offer with period", func(t *testing.T) {
		rec := h.decide(t, token, "personalCode="+testutil.ApplicantSegment1+"&loanAmount=4000&loanPeriod=12")

		require.Equal(t, http.StatusOK, rec.Code)
		var resp dto.LoanDecisionResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "Requested loan request has been REJECTED.Bank suggest new loan period : 40", resp.Decision)
		assert.Equal(t, 40, resp.SuggestedPeriod)
		testutil.AssertDecimalEqual(t, "4000", resp.LoanAmount)
	})

	t.Run("debt", func(t *testing.T) {
		rec := h.decide(t, token, "personalCode="+testutil.ApplicantWithDebt+"&loanAmount=4000&loanPeriod=12")

		require.Equal(t, http.StatusOK, rec.Code)
		var resp dto.LoanDecisionResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "user is having Debt. Requested loan request has been REJECTED.", resp.Decision)
		assert.Equal(t, "REJECTED", resp.Outcome)
	})

	t.Run("unknown applicant", func(t *testing.T) {
		rec := h.decide(t, token, "personalCode="+testutil.UnknownApplicant+"&loanAmount=4000&loanPeriod=12")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "no such account: "+testutil.UnknownApplicant, decodeError(t, rec).Message)
	})

	t.Run("amount below policy", func(t *testing.T) {
		rec := h.decide(t, token, "personalCode="+testutil.ApplicantSegment1+"&loanAmount=1999&loanPeriod=12")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.True(t, strings.HasPrefix(decodeError(t, rec).Message, model.ErrAmountTooLow.Error()))
	})
}

func TestRouter_Authentication(t *testing.T) {
	h := newRouterHarness(t, 1000, nil)

	t.Run("missing token", func(t *testing.T) {
		rec := h.decide(t, "", "personalCode=1&loanAmount=2000&loanPeriod=12")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		rec := h.decide(t, "not-a-jwt", "personalCode=1&loanAmount=2000&loanPeriod=12")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "invalid token", decodeError(t, rec).Message)
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := h.do(t, httptest.NewRequest(http.MethodPost, "/api/authenticate",
			strings.NewReader(`{"username":"officer","password":"nope"}`)))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		body := decodeError(t, rec)
		assert.Equal(t, "INVALID CREDENTIALS", body.Message)
		assert.Equal(t, "uri=/api/authenticate", body.Details)
	})

	t.Run("malformed body", func(t *testing.T) {
		rec := h.do(t, httptest.NewRequest(http.MethodPost, "/api/authenticate", strings.NewReader("{")))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("issued token carries roles", func(t *testing.T) {
		claims, err := h.jwt.ValidateToken(h.token(t))
		require.NoError(t, err)
		assert.Equal(t, "officer", claims.Subject)
		assert.True(t, claims.HasRole(auth.RoleOperator))
	})
}

func TestRouter_OpenEndpoints(t *testing.T) {
	h := newRouterHarness(t, 1000, map[string]CheckFunc{
		"directory": func(context.Context) error { return nil },
	})

	for _, path := range []string{"/healthz", "/readyz", "/metrics"} {
		rec := h.do(t, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestRouter_RequestID(t *testing.T) {
	h := newRouterHarness(t, 1000, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, testutil.TestRequestID.String())
	assert.Equal(t, testutil.TestRequestID.String(), h.do(t, req).Header().Get(requestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "not a uuid")
	got := h.do(t, req).Header().Get(requestIDHeader)
	assert.NotEqual(t, "not a uuid", got)
	assert.Len(t, got, 36)
}

func TestRouter_RateLimit(t *testing.T) {
	h := newRouterHarness(t, 1, nil)

	assert.Equal(t, http.StatusOK, h.do(t, httptest.NewRequest(http.MethodGet, "/healthz", nil)).Code)
	rec := h.do(t, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
}

func TestRouter_CORSPreflight(t *testing.T) {
	h := newRouterHarness(t, 1000, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/decisions/loans", nil)
	req.Header.Set("Origin", "https://example.test")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := h.do(t, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

// ---------------------------------------------------------------------------
// Health and rate limiter
// ---------------------------------------------------------------------------

func TestHealthHandler_Readiness(t *testing.T) {
	h := NewHealthHandler("bib-decision", map[string]CheckFunc{
		"postgres": func(context.Context) error { return errors.New("connection refused") },
		"redis":    func(context.Context) error { return nil },
	}, discard)
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var body struct {
		Status string            `json:"status"`
		Failed map[string]string `json:"failed"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "unavailable", body.Status)
	assert.Equal(t, map[string]string{"postgres": "connection refused"}, body.Failed)
}

func TestRateLimiter_Refills(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(2)
	rl.now = func() time.Time { return now }
	rl.lastRefill = now

	assert.True(t, rl.Allow())
	assert.True(t, rl.Allow())
	assert.False(t, rl.Allow())

	now = now.Add(500 * time.Millisecond)
	assert.True(t, rl.Allow())
	assert.False(t, rl.Allow())

	now = now.Add(time.Hour)
	assert.True(t, rl.Allow())
	assert.True(t, rl.Allow())
	assert.False(t, rl.Allow())
}

func TestDecimalBodyIsNumericString(t *testing.T) {
	rec := httptest.NewRecorder()
	writeJSON(rec, http.StatusOK, dto.LoanDecisionResponse{LoanAmount: decimal.RequireFromString("2000.50")})
	assert.Contains(t, rec.Body.String(), `"loanAmount":"2000.5"`)
}
