package grpc

import (
	"context"

	"github.com/MKhiriev/go-blog/internal/logger"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

// ServiceName is the name probes may ask for besides the empty
// whole-server name.
const ServiceName = "go-blog"

// HealthChecker reports whether the backing stores are reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Handler is the root gRPC transport handler. It serves the standard
// grpc.health.v1.Health service, answering SERVING while the stores
// respond to a ping.
//
// Watch and List are left unimplemented.
type Handler struct {
	healthpb.UnimplementedHealthServer

	checker HealthChecker

	logger *logger.Logger
}

// NewHandler constructs a [Handler] that probes checker on every Check.
func NewHandler(checker HealthChecker, logger *logger.Logger) *Handler {
	logger.Debug().Msg("gRPC handler created")
	return &Handler{
		checker: checker,
		logger:  logger,
	}
}

// Register adds the health service to s.
func (h *Handler) Register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, h)
}

// Check implements [healthpb.HealthServer].
func (h *Handler) Check(ctx context.Context, req *healthpb.HealthCheckRequest) (*healthpb.HealthCheckResponse, error) {
	if service := req.GetService(); service != "" && service != ServiceName {
		return nil, status.Errorf(codes.NotFound, "unknown service %q", service)
	}

	if err := h.checker.Ping(ctx); err != nil {
		h.logger.Warn().Err(err).Str("func", "*Handler.Check").Msg("health check failed")
		return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_NOT_SERVING}, nil
	}

	return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_SERVING}, nil
}
