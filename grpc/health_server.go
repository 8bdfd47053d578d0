package grpc

import (
	"net"

	"go.uber.org/zap"
	grpc "google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the health service name reported for the bot.
const ServiceName = "nhxinfobot"

// HealthServer serves the standard gRPC health protocol. The bot flips its
// status as the Discord session connects and disconnects.
type HealthServer struct {
	server *grpc.Server
	health *health.Server
	logger *zap.Logger
}

// NewHealthServer registers the health service. It starts NOT_SERVING.
func NewHealthServer(logger *zap.Logger) *HealthServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &HealthServer{
		server: grpc.NewServer(),
		health: health.NewServer(),
		logger: logger,
	}
	healthpb.RegisterHealthServer(h.server, h.health)
	h.SetServing(false)
	return h
}

// SetServing updates both the overall and the bot service status.
func (h *HealthServer) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	h.health.SetServingStatus("", status)
	h.health.SetServingStatus(ServiceName, status)
	h.logger.Debug("Health status changed", zap.String("status", status.String()))
}

// Serve blocks until Stop.
func (h *HealthServer) Serve(l net.Listener) error {
	h.logger.Info("gRPC health service started", zap.String("addr", l.Addr().String()))
	return h.server.Serve(l)
}

// ListenAndServe listens on addr.
func (h *HealthServer) ListenAndServe(addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return h.Serve(l)
}

// Stop marks every service NOT_SERVING and drains in-flight calls.
func (h *HealthServer) Stop() {
	h.health.Shutdown()
	h.server.GracefulStop()
}
