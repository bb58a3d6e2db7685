// Package grpc serves the entry store over gRPC. Every call except
// Register, Login and Ping needs a valid access token, and data calls are
// confined to the token's user.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/wellkeeper/internal/logging"
	pb "github.com/dmitrijs2005/wellkeeper/internal/proto"
	"github.com/dmitrijs2005/wellkeeper/internal/server/users"
	"github.com/dmitrijs2005/wellkeeper/internal/store"
	"google.golang.org/grpc"
)

// UserService registers and authenticates accounts.
type UserService interface {
	Register(ctx context.Context, username, password string) (*users.Session, error)
	Login(ctx context.Context, username, password string) (*users.Session, error)
}

type GRPCServer struct {
	pb.UnimplementedEntryStoreServer
	address   string
	users     UserService
	store     store.Store
	logger    logging.Logger
	jwtSecret []byte
}

func NewGRPCServer(address string, l logging.Logger, us UserService, st store.Store, secretKey string) *GRPCServer {
	return &GRPCServer{
		address:   address,
		logger:    l.With("module", "grpc_server"),
		users:     us,
		store:     st,
		jwtSecret: []byte(secretKey),
	}
}

func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(s.metricsInterceptor, s.accessTokenInterceptor),
		grpc.ChainStreamInterceptor(s.streamMetricsInterceptor, s.streamAccessTokenInterceptor),
	)
	pb.RegisterEntryStoreServer(srv, s)
	return srv
}

// Run listens on the configured address and serves until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve serves on lis until ctx is done, then stops gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	return srv.Serve(lis)
}
