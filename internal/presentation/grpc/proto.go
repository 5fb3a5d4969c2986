package grpc

// proto.go defines the gRPC server interface for bib.decision.v1.DecisionService.
// Messages travel with the json codec registered in json_codec.go.

import (
	"context"

	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Fully qualified names used by interceptors and clients.
const (
	DecisionServiceName = "bib.decision.v1.DecisionService"
	DecideMethod        = "/" + DecisionServiceName + "/Decide"
)

// DecideRequest asks for a decision on one loan request. LoanAmount is a
// decimal string.
type DecideRequest struct {
	PersonalCode string `json:"personal_code"`
	LoanAmount   string `json:"loan_amount"`
	LoanPeriod   int32  `json:"loan_period"`
}

// DecideResponse carries the decision.
type DecideResponse struct {
	Decision        string `json:"decision"`
	LoanAmount      string `json:"loan_amount"`
	Outcome         string `json:"outcome"`
	SuggestedPeriod int32  `json:"suggested_period,omitempty"`
}

// DecisionServiceServer is the server API for DecisionService.
type DecisionServiceServer interface {
	Decide(context.Context, *DecideRequest) (*DecideResponse, error)
	mustEmbedUnimplementedDecisionServiceServer()
}

// UnimplementedDecisionServiceServer provides forward-compatible default implementations.
type UnimplementedDecisionServiceServer struct{}

func (UnimplementedDecisionServiceServer) Decide(context.Context, *DecideRequest) (*DecideResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Decide not implemented")
}
func (UnimplementedDecisionServiceServer) mustEmbedUnimplementedDecisionServiceServer() {}

// RegisterDecisionServiceServer registers the DecisionServiceServer with the gRPC server.
func RegisterDecisionServiceServer(s grpclib.ServiceRegistrar, srv DecisionServiceServer) {
	s.RegisterService(&_DecisionService_serviceDesc, srv) //nolint:revive // gRPC handler registration
}

//nolint:revive // gRPC handler registration
var _DecisionService_serviceDesc = grpclib.ServiceDesc{
	ServiceName: DecisionServiceName,
	HandlerType: (*DecisionServiceServer)(nil),
	Methods: []grpclib.MethodDesc{
		{MethodName: "Decide", Handler: _DecisionService_Decide_Handler}, //nolint:revive // gRPC handler registration
	},
	Streams: []grpclib.StreamDesc{},
}

//nolint:revive,errcheck // gRPC handler registration
func _DecisionService_Decide_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpclib.UnaryServerInterceptor) (any, error) {
	in := new(DecideRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DecisionServiceServer).Decide(ctx, in)
	}
	info := &grpclib.UnaryServerInfo{
		Server:     srv,
		FullMethod: DecideMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DecisionServiceServer).Decide(ctx, req.(*DecideRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// DecisionServiceClient is the client API for DecisionService.
type DecisionServiceClient interface {
	Decide(ctx context.Context, in *DecideRequest, opts ...grpclib.CallOption) (*DecideResponse, error)
}

type decisionServiceClient struct {
	cc grpclib.ClientConnInterface
}

// NewDecisionServiceClient returns a client that sends messages with the json codec.
func NewDecisionServiceClient(cc grpclib.ClientConnInterface) DecisionServiceClient {
	return &decisionServiceClient{cc: cc}
}

func (c *decisionServiceClient) Decide(ctx context.Context, in *DecideRequest, opts ...grpclib.CallOption) (*DecideResponse, error) {
	out := new(DecideResponse)
	opts = append([]grpclib.CallOption{grpclib.CallContentSubtype(jsonCodec{}.Name())}, opts...)
	if err := c.cc.Invoke(ctx, DecideMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
