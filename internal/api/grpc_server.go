package api

import (
	"context"
	"fmt"
	"net"
	"time"

	"ridebooking/internal/config"
	"ridebooking/internal/logging"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"
)

type GRPCServer struct {
	server   *grpc.Server
	listener net.Listener
	log      zerolog.Logger
}

func NewGRPCServer(cfg config.GRPCConfig, svc BookingServiceServer, auth *BearerAuth, logger *zerolog.Logger) (*GRPCServer, error) {
	addr := fmt.Sprintf(":%d", cfg.Port)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("grpc listen %s: %w", addr, err)
	}

	return &GRPCServer{
		server:   newGRPCServer(cfg, svc, auth, logger),
		listener: lis,
		log:      logging.Component(logger, "grpc"),
	}, nil
}

func newGRPCServer(cfg config.GRPCConfig, svc BookingServiceServer, auth *BearerAuth, logger *zerolog.Logger) *grpc.Server {
	unary := ChainUnaryInterceptors(
		LoggingUnaryInterceptor(logger),
		AuthUnaryInterceptor(auth),
	)

	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(unary))
	RegisterBookingServiceServer(grpcServer, svc)

	if cfg.Reflection {
		reflection.Register(grpcServer)
	}
	return grpcServer
}

func (s *GRPCServer) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *GRPCServer) Serve() error {
	s.log.Info().Str("addr", s.Addr()).Msg("gRPC API listening")
	return s.server.Serve(s.listener)
}

func (s *GRPCServer) Shutdown(ctx context.Context) {
	if s.server == nil {
		return
	}

	done := make(chan struct{})
	go func() {
		s.server.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		s.log.Warn().Msg("gRPC graceful shutdown timed out; forcing stop")
		s.server.Stop()
	case <-time.After(10 * time.Second):
		s.log.Warn().Msg("gRPC graceful shutdown timed out; forcing stop")
		s.server.Stop()
	}
}
