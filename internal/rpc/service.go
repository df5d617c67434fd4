package rpc

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	apperrors "github.com/copyleftdev/tundr-problems/internal/errors"
	"github.com/copyleftdev/tundr-problems/internal/registry"
	"github.com/copyleftdev/tundr-problems/internal/wire"
)

const serviceName = "tundr.optimizer.v1.OptimizerService"

// OptimizerServer is the server API of the OptimizerService.
type OptimizerServer interface {
	RegisterProblem(context.Context, *wire.OptimizationProblem) (*wire.ProblemHandle, error)
	GetProblem(context.Context, *wire.ProblemHandle) (*wire.OptimizationProblem, error)
	ListProblems(context.Context, *wire.Empty) (*wire.ProblemList, error)
	DeleteProblem(context.Context, *wire.ProblemHandle) (*wire.Empty, error)
}

// ProblemService implements OptimizerServer on top of a registry.
type ProblemService struct {
	registry *registry.Service
	logger   *zap.Logger
}

var _ OptimizerServer = (*ProblemService)(nil)

// NewProblemService creates a ProblemService. A nil logger disables logging.
func NewProblemService(svc *registry.Service, logger *zap.Logger) *ProblemService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProblemService{registry: svc, logger: logger}
}

func (s *ProblemService) RegisterProblem(ctx context.Context, req *wire.OptimizationProblem) (*wire.ProblemHandle, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "problem is required")
	}
	id, _, err := s.registry.Register(ctx, req)
	if err != nil {
		return nil, s.statusOf("RegisterProblem", err)
	}
	return &wire.ProblemHandle{Id: id}, nil
}

func (s *ProblemService) GetProblem(ctx context.Context, req *wire.ProblemHandle) (*wire.OptimizationProblem, error) {
	if req.GetId() == "" {
		return nil, status.Error(codes.InvalidArgument, "problem id is required")
	}
	msg, err := s.registry.GetWire(ctx, req.GetId())
	if err != nil {
		return nil, s.statusOf("GetProblem", err)
	}
	return msg, nil
}

func (s *ProblemService) ListProblems(ctx context.Context, _ *wire.Empty) (*wire.ProblemList, error) {
	ids, err := s.registry.List(ctx)
	if err != nil {
		return nil, s.statusOf("ListProblems", err)
	}
	return &wire.ProblemList{Ids: ids}, nil
}

func (s *ProblemService) DeleteProblem(ctx context.Context, req *wire.ProblemHandle) (*wire.Empty, error) {
	if req.GetId() == "" {
		return nil, status.Error(codes.InvalidArgument, "problem id is required")
	}
	if err := s.registry.Delete(ctx, req.GetId()); err != nil {
		return nil, s.statusOf("DeleteProblem", err)
	}
	return &wire.Empty{}, nil
}

func (s *ProblemService) statusOf(method string, err error) error {
	switch {
	case registry.IsInvalid(err):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, registry.ErrNotFound):
		return status.Error(codes.NotFound, "problem not found")
	case errors.Is(err, registry.ErrInvalidID):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	}
	fields := []zap.Field{zap.String("method", method), zap.Error(err)}
	if e, ok := apperrors.Find(err); ok {
		fields = append(fields, zap.String("operation", e.Operation), zap.String("component", e.Component))
	}
	s.logger.Error("gRPC method failed", fields...)
	return status.Error(codes.Internal, err.Error())
}

// RegisterOptimizerServer registers srv on s.
func RegisterOptimizerServer(s grpc.ServiceRegistrar, srv OptimizerServer) {
	s.RegisterService(&serviceDesc, srv)
}

func registerProblemHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wire.OptimizationProblem)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(OptimizerServer).RegisterProblem(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/RegisterProblem"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(OptimizerServer).RegisterProblem(ctx, req.(*wire.OptimizationProblem))
	}
	return interceptor(ctx, in, info, handler)
}

func getProblemHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wire.ProblemHandle)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(OptimizerServer).GetProblem(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/GetProblem"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(OptimizerServer).GetProblem(ctx, req.(*wire.ProblemHandle))
	}
	return interceptor(ctx, in, info, handler)
}

func listProblemsHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wire.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(OptimizerServer).ListProblems(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/ListProblems"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(OptimizerServer).ListProblems(ctx, req.(*wire.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func deleteProblemHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wire.ProblemHandle)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(OptimizerServer).DeleteProblem(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/DeleteProblem"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(OptimizerServer).DeleteProblem(ctx, req.(*wire.ProblemHandle))
	}
	return interceptor(ctx, in, info, handler)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*OptimizerServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "RegisterProblem", Handler: registerProblemHandler},
		{MethodName: "GetProblem", Handler: getProblemHandler},
		{MethodName: "ListProblems", Handler: listProblemsHandler},
		{MethodName: "DeleteProblem", Handler: deleteProblemHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "tundr/optimizer/v1/optimizer.proto",
}
