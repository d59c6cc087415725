package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ProjectionServiceName is the fully qualified gRPC service name
const ProjectionServiceName = "wealthflow.projection.v1.ProjectionService"

// ProjectionServiceServer is the server API for the projection service.
// Every method takes and returns a google.protobuf.Struct holding the JSON
// form of the request and response.
type ProjectionServiceServer interface {
	CreateScenario(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetScenario(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListScenarios(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateScenario(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteScenario(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RunBaselineProjection(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RunScenarioProjection(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetLatestProjection(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetDistribution(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetLiquidity(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetStressTest(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetGrowthProjection(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type structMethod func(ProjectionServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

// ProjectionServiceDesc describes the projection service for grpc.Server.RegisterService
var ProjectionServiceDesc = grpc.ServiceDesc{
	ServiceName: ProjectionServiceName,
	HandlerType: (*ProjectionServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		methodDesc("CreateScenario", ProjectionServiceServer.CreateScenario),
		methodDesc("GetScenario", ProjectionServiceServer.GetScenario),
		methodDesc("ListScenarios", ProjectionServiceServer.ListScenarios),
		methodDesc("UpdateScenario", ProjectionServiceServer.UpdateScenario),
		methodDesc("DeleteScenario", ProjectionServiceServer.DeleteScenario),
		methodDesc("RunBaselineProjection", ProjectionServiceServer.RunBaselineProjection),
		methodDesc("RunScenarioProjection", ProjectionServiceServer.RunScenarioProjection),
		methodDesc("GetLatestProjection", ProjectionServiceServer.GetLatestProjection),
		methodDesc("GetDistribution", ProjectionServiceServer.GetDistribution),
		methodDesc("GetLiquidity", ProjectionServiceServer.GetLiquidity),
		methodDesc("GetStressTest", ProjectionServiceServer.GetStressTest),
		methodDesc("GetGrowthProjection", ProjectionServiceServer.GetGrowthProjection),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "wealthflow/projection/v1/projection.proto",
}

// RegisterProjectionServiceServer registers srv on s
func RegisterProjectionServiceServer(s grpc.ServiceRegistrar, srv ProjectionServiceServer) {
	s.RegisterService(&ProjectionServiceDesc, srv)
}

// FullMethod returns the full gRPC method path of a projection service method
func FullMethod(method string) string {
	return "/" + ProjectionServiceName + "/" + method
}

func methodDesc(name string, call structMethod) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(ProjectionServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: FullMethod(name),
			}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(ProjectionServiceServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// ProjectionServiceClient calls projection service methods over a client connection
type ProjectionServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewProjectionServiceClient creates a client for the projection service
func NewProjectionServiceClient(cc grpc.ClientConnInterface) *ProjectionServiceClient {
	return &ProjectionServiceClient{cc: cc}
}

// Call invokes method with in as the request payload
func (c *ProjectionServiceClient) Call(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
