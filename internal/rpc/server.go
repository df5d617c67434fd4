package rpc

import (
	"context"
	"net"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"github.com/copyleftdev/tundr-problems/internal/logging"
	"github.com/copyleftdev/tundr-problems/internal/registry"
)

// Server serves the OptimizerService over gRPC.
type Server struct {
	grpc   *grpc.Server
	logger *zap.Logger
}

// NewServer creates a gRPC server exposing svc. Additional server options are
// appended after the codec and logging interceptor.
func NewServer(svc *registry.Service, logger *logging.Logger, opts ...grpc.ServerOption) *Server {
	zl := zap.NewNop()
	if logger != nil {
		zl = logger.Zap().Named("grpc")
	}

	s := &Server{logger: zl}
	opts = append([]grpc.ServerOption{
		grpc.ForceServerCodec(binaryCodec{}),
		grpc.ChainUnaryInterceptor(s.logUnary),
	}, opts...)
	s.grpc = grpc.NewServer(opts...)
	RegisterOptimizerServer(s.grpc, NewProblemService(svc, zl))
	return s
}

// Serve accepts connections on lis until Stop or GracefulStop is called.
func (s *Server) Serve(lis net.Listener) error {
	s.logger.Info("gRPC server listening", zap.String("addr", lis.Addr().String()))
	return s.grpc.Serve(lis)
}

// GracefulStop stops accepting connections and waits for pending calls.
func (s *Server) GracefulStop() {
	s.grpc.GracefulStop()
}

// Stop closes all connections immediately.
func (s *Server) Stop() {
	s.grpc.Stop()
}

func (s *Server) logUnary(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	s.logger.Debug("gRPC call",
		zap.String("method", info.FullMethod),
		zap.String("code", status.Code(err).String()),
		zap.Duration("duration", time.Since(start)),
	)
	return resp, err
}
