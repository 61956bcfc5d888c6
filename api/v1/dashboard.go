// Package v1 defines the csdashboard.v1.Dashboard gRPC service. Requests and
// responses are protobuf well-known types, so no generated message code is
// needed: selections travel as google.protobuf.Struct and chart images as
// google.protobuf.BytesValue.
package v1

import (
	"context"

	jsoniter "github.com/json-iterator/go"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const ServiceName = "csdashboard.v1.Dashboard"

const (
	Dashboard_GetFilterOptions_FullMethodName = "/csdashboard.v1.Dashboard/GetFilterOptions"
	Dashboard_GetDashboard_FullMethodName     = "/csdashboard.v1.Dashboard/GetDashboard"
	Dashboard_ListTickets_FullMethodName      = "/csdashboard.v1.Dashboard/ListTickets"
	Dashboard_RenderChart_FullMethodName      = "/csdashboard.v1.Dashboard/RenderChart"
)

// DashboardClient is the client API for the Dashboard service.
type DashboardClient interface {
	GetFilterOptions(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	GetDashboard(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	ListTickets(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	RenderChart(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error)
}

type dashboardClient struct {
	cc grpc.ClientConnInterface
}

func NewDashboardClient(cc grpc.ClientConnInterface) DashboardClient {
	return &dashboardClient{cc}
}

func (c *dashboardClient) GetFilterOptions(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, Dashboard_GetFilterOptions_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *dashboardClient) GetDashboard(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, Dashboard_GetDashboard_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *dashboardClient) ListTickets(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, Dashboard_ListTickets_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *dashboardClient) RenderChart(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error) {
	out := new(wrapperspb.BytesValue)
	if err := c.cc.Invoke(ctx, Dashboard_RenderChart_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// DashboardServer is the server API for the Dashboard service.
type DashboardServer interface {
	GetFilterOptions(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetDashboard(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListTickets(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RenderChart(context.Context, *structpb.Struct) (*wrapperspb.BytesValue, error)
}

// UnimplementedDashboardServer can be embedded to keep servers forward
// compatible.
type UnimplementedDashboardServer struct{}

func (UnimplementedDashboardServer) GetFilterOptions(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method GetFilterOptions not implemented")
}

func (UnimplementedDashboardServer) GetDashboard(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method GetDashboard not implemented")
}

func (UnimplementedDashboardServer) ListTickets(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method ListTickets not implemented")
}

func (UnimplementedDashboardServer) RenderChart(context.Context, *structpb.Struct) (*wrapperspb.BytesValue, error) {
	return nil, status.Error(codes.Unimplemented, "method RenderChart not implemented")
}

func RegisterDashboardServer(s grpc.ServiceRegistrar, srv DashboardServer) {
	s.RegisterService(&Dashboard_ServiceDesc, srv)
}

func structHandler(
	method string,
	call func(DashboardServer, context.Context, *structpb.Struct) (any, error),
) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(DashboardServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: method,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(DashboardServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// Dashboard_ServiceDesc is the grpc.ServiceDesc for the Dashboard service.
var Dashboard_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DashboardServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetFilterOptions",
			Handler: structHandler(Dashboard_GetFilterOptions_FullMethodName, func(s DashboardServer, ctx context.Context, in *structpb.Struct) (any, error) {
				return s.GetFilterOptions(ctx, in)
			}),
		},
		{
			MethodName: "GetDashboard",
			Handler: structHandler(Dashboard_GetDashboard_FullMethodName, func(s DashboardServer, ctx context.Context, in *structpb.Struct) (any, error) {
				return s.GetDashboard(ctx, in)
			}),
		},
		{
			MethodName: "ListTickets",
			Handler: structHandler(Dashboard_ListTickets_FullMethodName, func(s DashboardServer, ctx context.Context, in *structpb.Struct) (any, error) {
				return s.ListTickets(ctx, in)
			}),
		},
		{
			MethodName: "RenderChart",
			Handler: structHandler(Dashboard_RenderChart_FullMethodName, func(s DashboardServer, ctx context.Context, in *structpb.Struct) (any, error) {
				return s.RenderChart(ctx, in)
			}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "csdashboard/v1/dashboard.proto",
}

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// EncodeStruct converts any JSON-serializable value into a Struct. The value
// must encode as a JSON object.
func EncodeStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return structpb.NewStruct(m)
}

// DecodeStruct fills dest from the JSON form of s.
func DecodeStruct(s *structpb.Struct, dest any) error {
	data, err := json.Marshal(s.AsMap())
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

// Request keys understood by every method. Selection keys reuse the category
// field names of the ticket data.
const (
	KeyStart            = "start"
	KeyEnd              = "end"
	KeyCustomerType     = "고객유형"
	KeyInquiryType      = "문의유형"
	KeyInquirySecondary = "문의유형_2차"
	KeyServiceType      = "서비스유형"
	KeyServiceSecondary = "서비스유형_2차"
	KeyPeriod           = "period"
	KeyGroupBy          = "group_by"
	KeyCrossScore       = "cross_score"
	KeyHistScore        = "hist_score"
	KeyTrendScore       = "trend_score"
	KeyTextQuestion     = "text_question"
	KeyChart            = "chart"
	KeyLimit            = "limit"
	KeyOffset           = "offset"
)

// RequestKeys lists every request key in a stable order.
var RequestKeys = []string{
	KeyStart, KeyEnd,
	KeyCustomerType, KeyInquiryType, KeyInquirySecondary, KeyServiceType, KeyServiceSecondary,
	KeyPeriod, KeyGroupBy, KeyCrossScore, KeyHistScore, KeyTrendScore, KeyTextQuestion,
	KeyChart, KeyLimit, KeyOffset,
}
