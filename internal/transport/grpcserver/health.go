// Package grpcserver file: internal/transport/grpcserver/health.go
package grpcserver

import (
	"context"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the health service name reported next to the overall "" status.
const ServiceName = "gestionbc.v1.Backoffice"

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthServer serves grpc.health.v1. It starts NOT_SERVING until SetServing(true).
type HealthServer struct {
	server *grpc.Server
	health *health.Server
}

func NewHealthServer(opts ...grpc.ServerOption) *HealthServer {
	gs := grpc.NewServer(opts...)
	hs := health.NewServer()
	healthpb.RegisterHealthServer(gs, hs)
	s := &HealthServer{server: gs, health: hs}
	s.SetServing(false)
	return s
}

func (s *HealthServer) SetServing(ok bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if ok {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}

// Serve blocks until Stop.
func (s *HealthServer) Serve(lis net.Listener) error {
	slog.Info("grpc health server listening", "address", lis.Addr().String())
	return s.server.Serve(lis)
}

// Monitor pings db every interval and flips the status accordingly until ctx ends.
func (s *HealthServer) Monitor(ctx context.Context, db Pinger, interval time.Duration) {
	check := func() {
		pctx, cancel := context.WithTimeout(ctx, interval/2+time.Millisecond)
		defer cancel()
		err := db.PingContext(pctx)
		if err != nil {
			slog.Warn("database ping failed", "error", err)
		}
		s.SetServing(err == nil)
	}

	check()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			check()
		}
	}
}

// Stop marks every service NOT_SERVING and drains in-flight calls.
func (s *HealthServer) Stop() {
	s.health.Shutdown()
	s.server.GracefulStop()
}
