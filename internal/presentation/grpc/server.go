package grpc

import (
	"fmt"
	"log/slog"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/bibbank/loan-decision/pkg/auth"
	"github.com/bibbank/loan-decision/pkg/tlsutil"
)

// ServerConfig holds the transport options of the gRPC server.
type ServerConfig struct {
	ServiceName string
	CertFile    string
	KeyFile     string
	Reflection  bool
}

// Server wraps a gRPC server with the decision handler registered.
type Server struct {
	gs     *grpc.Server
	health *health.Server
	name   string
	logger *slog.Logger
}

var healthMethods = []string{
	"/grpc.health.v1.Health/Check",
	"/grpc.health.v1.Health/Watch",
}

// NewServer creates and configures the gRPC server. Every call except the
// health checks needs a bearer token with the operator or api-client role.
func NewServer(cfg ServerConfig, handler DecisionServiceServer, jwtService *auth.JWTService, logger *slog.Logger) (*Server, error) {
	serverOpts := []grpc.ServerOption{
		grpc.ChainUnaryInterceptor(
			auth.UnaryAuthInterceptor(jwtService, healthMethods),
			auth.RequireRole(healthMethods, auth.RoleOperator, auth.RoleAPIClient, auth.RoleAdmin),
		),
	}

	if cfg.CertFile != "" && cfg.KeyFile != "" {
		creds, err := tlsutil.ServerTLSConfig(cfg.CertFile, cfg.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("load gRPC TLS credentials: %w", err)
		}
		serverOpts = append(serverOpts, grpc.Creds(creds))
		logger.Info("gRPC TLS enabled", "cert", cfg.CertFile)
	} else {
		logger.Info("gRPC TLS not configured, running without TLS")
	}

	gs := grpc.NewServer(serverOpts...)

	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(gs, healthSrv)
	healthSrv.SetServingStatus(cfg.ServiceName, healthpb.HealthCheckResponse_SERVING)

	if cfg.Reflection {
		reflection.Register(gs)
	}

	RegisterDecisionServiceServer(gs, handler)

	return &Server{gs: gs, health: healthSrv, name: cfg.ServiceName, logger: logger}, nil
}

// Serve accepts connections on lis until the server stops.
func (s *Server) Serve(lis net.Listener) error {
	s.logger.Info("gRPC server listening", "addr", lis.Addr().String())
	return s.gs.Serve(lis)
}

// ListenAndServe starts the gRPC server on the specified address.
func (s *Server) ListenAndServe(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(lis)
}

// GracefulStop marks the service as not serving and drains in-flight calls.
func (s *Server) GracefulStop() {
	s.logger.Info("gRPC server shutting down")
	s.health.Shutdown()
	s.gs.GracefulStop()
}
