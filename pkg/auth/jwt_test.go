package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func newTestJWTService(t *testing.T) *JWTService {
	t.Helper()
	svc, err := NewJWTService(JWTConfig{
		Secret:     "test-secret-key-for-unit-tests",
		Issuer:     "bib-test",
		Expiration: 15 * time.Minute,
	})
	require.NoError(t, err)
	return svc
}

func TestGenerateAndValidateToken(t *testing.T) {
	svc := newTestJWTService(t)

	token, err := svc.GenerateToken("loan-officer", []string{RoleOperator})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "loan-officer", claims.Subject)
	assert.Equal(t, "bib-test", claims.Issuer)
	assert.NotEmpty(t, claims.ID)
	assert.True(t, claims.HasRole(RoleOperator))
	assert.False(t, claims.HasRole(RoleAdmin))
}

func TestValidateToken_Rejections(t *testing.T) {
	svc := newTestJWTService(t)

	t.Run("expired", func(t *testing.T) {
		past, err := NewJWTService(JWTConfig{Secret: "test-secret-key-for-unit-tests", Issuer: "bib-test", Expiration: time.Minute})
		require.NoError(t, err)
		past.now = func() time.Time { return time.Now().Add(-time.Hour) }
		token, err := past.GenerateToken("u", nil)
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		assert.Error(t, err)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other, err := NewJWTService(JWTConfig{Secret: "another-secret", Issuer: "bib-test"})
		require.NoError(t, err)
		token, err := other.GenerateToken("u", nil)
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		assert.Error(t, err)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other, err := NewJWTService(JWTConfig{Secret: "test-secret-key-for-unit-tests", Issuer: "someone-else"})
		require.NoError(t, err)
		token, err := other.GenerateToken("u", nil)
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		assert.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.ValidateToken("not.a.token")
		assert.Error(t, err)
	})
}

func TestRSAModes(t *testing.T) {
	privPEM, pubPEM, err := GenerateKeyPair()
	require.NoError(t, err)

	issuer, err := NewJWTService(JWTConfig{PrivateKeyPEM: string(privPEM), Issuer: "bib-decision"})
	require.NoError(t, err)
	validator, err := NewJWTService(JWTConfig{PublicKeyPEM: string(pubPEM), Issuer: "bib-decision"})
	require.NoError(t, err)

	token, err := issuer.GenerateToken("client-a", []string{RoleAPIClient})
	require.NoError(t, err)

	claims, err := validator.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "client-a", claims.Subject)

	_, err = validator.GenerateToken("x", nil)
	assert.ErrorIs(t, err, ErrValidationOnly)

	t.Run("HS256 token is refused by an RSA validator", func(t *testing.T) {
		hmac, err := NewJWTService(JWTConfig{Secret: string(pubPEM), Issuer: "bib-decision"})
		require.NoError(t, err)
		forged, err := hmac.GenerateToken("mallory", []string{RoleAdmin})
		require.NoError(t, err)

		_, err = validator.ValidateToken(forged)
		assert.Error(t, err)
	})
}

func TestNewJWTService_RequiresKey(t *testing.T) {
	_, err := NewJWTService(JWTConfig{})
	assert.Error(t, err)

	_, err = NewJWTService(JWTConfig{PublicKeyPEM: "not pem"})
	assert.Error(t, err)
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		token  string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer abc", "abc", true},
		{"Basic abc", "", false},
		{"Bearer", "", false},
		{"Bearer   ", "", false},
		{"", "", false},
	}
	for _, tc := range tests {
		token, ok := BearerToken(tc.header)
		assert.Equal(t, tc.ok, ok, tc.header)
		assert.Equal(t, tc.token, token, tc.header)
	}
}

func TestUnaryAuthInterceptor(t *testing.T) {
	svc := newTestJWTService(t)
	interceptor := UnaryAuthInterceptor(svc, []string{"/grpc.health.v1.Health/Check"})
	okHandler := func(ctx context.Context, _ interface{}) (interface{}, error) {
		claims, _ := ClaimsFromContext(ctx)
		return claims, nil
	}
	info := &grpc.UnaryServerInfo{FullMethod: "/bib.decision.v1.DecisionService/Decide"}

	t.Run("skipped method", func(t *testing.T) {
		_, err := interceptor(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}, okHandler)
		assert.NoError(t, err)
	})

	t.Run("missing metadata", func(t *testing.T) {
		_, err := interceptor(context.Background(), nil, info, okHandler)
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	})

	t.Run("valid token attaches claims", func(t *testing.T) {
		token, err := svc.GenerateToken("op", []string{RoleOperator})
		require.NoError(t, err)
		ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer "+token))

		resp, err := interceptor(ctx, nil, info, okHandler)
		require.NoError(t, err)
		claims, ok := resp.(*Claims)
		require.True(t, ok)
		assert.Equal(t, "op", claims.Subject)
	})

	t.Run("invalid token", func(t *testing.T) {
		ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer nope"))
		_, err := interceptor(ctx, nil, info, okHandler)
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	})
}

func TestRequireRole(t *testing.T) {
	interceptor := RequireRole([]string{"/health"}, RoleOperator, RoleAPIClient)
	handler := func(context.Context, interface{}) (interface{}, error) { return "ok", nil }
	info := &grpc.UnaryServerInfo{FullMethod: "/decide"}

	withRoles := func(roles ...string) context.Context {
		return ContextWithClaims(context.Background(), &Claims{Roles: roles})
	}

	_, err := interceptor(withRoles(RoleAPIClient), nil, info, handler)
	assert.NoError(t, err)

	_, err = interceptor(withRoles("viewer"), nil, info, handler)
	assert.Equal(t, codes.PermissionDenied, status.Code(err))

	_, err = interceptor(context.Background(), nil, info, handler)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	_, err = interceptor(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/health"}, handler)
	assert.NoError(t, err)
}
