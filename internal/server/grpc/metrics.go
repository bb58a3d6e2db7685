package grpc

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

var requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "wellkeeper",
	Subsystem: "grpc",
	Name:      "requests_total",
	Help:      "gRPC requests handled, by method and status code.",
}, []string{"method", "code"})

func (s *GRPCServer) metricsInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	resp, err := handler(ctx, req)
	requestsTotal.WithLabelValues(info.FullMethod, status.Code(err).String()).Inc()
	return resp, err
}

func (s *GRPCServer) streamMetricsInterceptor(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
	err := handler(srv, ss)
	requestsTotal.WithLabelValues(info.FullMethod, status.Code(err).String()).Inc()
	return err
}
