// Package calcserver exposes the EXP calculator as the gRPC service
// expcalc.v1.Calculator. Requests and responses are google.protobuf.Struct
// messages, so the service needs no generated code.
package calcserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "expcalc.v1.Calculator"

// RPC method names.
const (
	MethodCumulativeExp     = "CumulativeExp"
	MethodBattlesNeeded     = "BattlesNeeded"
	MethodMethodExpectation = "MethodExpectation"
	MethodEfficiency        = "Efficiency"
	MethodRankLocations     = "RankLocations"
)

// FullMethod returns the "/service/method" path of an RPC.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// CalculatorServer is the server API of expcalc.v1.Calculator.
type CalculatorServer interface {
	CumulativeExp(context.Context, *structpb.Struct) (*structpb.Struct, error)
	BattlesNeeded(context.Context, *structpb.Struct) (*structpb.Struct, error)
	MethodExpectation(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Efficiency(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RankLocations(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type rpcFunc func(CalculatorServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(method string, call rpcFunc) func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(CalculatorServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(method)}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(CalculatorServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// ServiceDesc describes expcalc.v1.Calculator for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CalculatorServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: MethodCumulativeExp, Handler: unaryHandler(MethodCumulativeExp, CalculatorServer.CumulativeExp)},
		{MethodName: MethodBattlesNeeded, Handler: unaryHandler(MethodBattlesNeeded, CalculatorServer.BattlesNeeded)},
		{MethodName: MethodMethodExpectation, Handler: unaryHandler(MethodMethodExpectation, CalculatorServer.MethodExpectation)},
		{MethodName: MethodEfficiency, Handler: unaryHandler(MethodEfficiency, CalculatorServer.Efficiency)},
		{MethodName: MethodRankLocations, Handler: unaryHandler(MethodRankLocations, CalculatorServer.RankLocations)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "expcalc/v1/calculator.proto",
}

// RegisterCalculatorServer registers srv on s.
func RegisterCalculatorServer(s grpc.ServiceRegistrar, srv CalculatorServer) {
	s.RegisterService(&ServiceDesc, srv)
}
