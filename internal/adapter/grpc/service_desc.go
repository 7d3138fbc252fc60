package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "estateledger.v1.LedgerService"

// LedgerServiceServer is the server API for LedgerService. Every method takes
// and returns a google.protobuf.Struct.
type LedgerServiceServer interface {
	InitiateAgreement(context.Context, *structpb.Struct) (*structpb.Struct, error)
	EnterPropertyDetails(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SetPercentage(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SignByPropertyOwner(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SignByMogul(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdatePriceByPropertyOwner(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdatePropertyDocByPropertyOwner(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdatePropertyOwnerRetainsByPropertyOwner(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdatePropertyOwnerByMogul(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateMaxSupplyByMogul(context.Context, *structpb.Struct) (*structpb.Struct, error)
	TransferPlatformFee(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ConfirmDeedCompletion(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UploadSaleDeedByOwner(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetAgreement(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SetFundsAsset(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SetPlatformFee(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SetPayoutAddress(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetDeedSettings(context.Context, *structpb.Struct) (*structpb.Struct, error)
	MintNewPropertyToken(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateVestingContractAddress(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateCrowdsaleAddress(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DelistToken(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ExtendBurnDeadline(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Transfer(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Burn(context.Context, *structpb.Struct) (*structpb.Struct, error)
	BurnBatch(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SetApprovalForAll(context.Context, *structpb.Struct) (*structpb.Struct, error)
	IsApprovedForAll(context.Context, *structpb.Struct) (*structpb.Struct, error)
	PenaltyPercentage(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Pause(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Unpause(context.Context, *structpb.Struct) (*structpb.Struct, error)
	TokenInfo(context.Context, *structpb.Struct) (*structpb.Struct, error)
	BalanceOf(context.Context, *structpb.Struct) (*structpb.Struct, error)
	TotalSupply(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetTokenSettings(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// LedgerServiceDesc describes LedgerService for grpc.Server.RegisterService.
var LedgerServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*LedgerServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod("InitiateAgreement", LedgerServiceServer.InitiateAgreement),
		unaryMethod("EnterPropertyDetails", LedgerServiceServer.EnterPropertyDetails),
		unaryMethod("SetPercentage", LedgerServiceServer.SetPercentage),
		unaryMethod("SignByPropertyOwner", LedgerServiceServer.SignByPropertyOwner),
		unaryMethod("SignByMogul", LedgerServiceServer.SignByMogul),
		unaryMethod("UpdatePriceByPropertyOwner", LedgerServiceServer.UpdatePriceByPropertyOwner),
		unaryMethod("UpdatePropertyDocByPropertyOwner", LedgerServiceServer.UpdatePropertyDocByPropertyOwner),
		unaryMethod("UpdatePropertyOwnerRetainsByPropertyOwner", LedgerServiceServer.UpdatePropertyOwnerRetainsByPropertyOwner),
		unaryMethod("UpdatePropertyOwnerByMogul", LedgerServiceServer.UpdatePropertyOwnerByMogul),
		unaryMethod("UpdateMaxSupplyByMogul", LedgerServiceServer.UpdateMaxSupplyByMogul),
		unaryMethod("TransferPlatformFee", LedgerServiceServer.TransferPlatformFee),
		unaryMethod("ConfirmDeedCompletion", LedgerServiceServer.ConfirmDeedCompletion),
		unaryMethod("UploadSaleDeedByOwner", LedgerServiceServer.UploadSaleDeedByOwner),
		unaryMethod("GetAgreement", LedgerServiceServer.GetAgreement),
		unaryMethod("SetFundsAsset", LedgerServiceServer.SetFundsAsset),
		unaryMethod("SetPlatformFee", LedgerServiceServer.SetPlatformFee),
		unaryMethod("SetPayoutAddress", LedgerServiceServer.SetPayoutAddress),
		unaryMethod("GetDeedSettings", LedgerServiceServer.GetDeedSettings),
		unaryMethod("MintNewPropertyToken", LedgerServiceServer.MintNewPropertyToken),
		unaryMethod("UpdateVestingContractAddress", LedgerServiceServer.UpdateVestingContractAddress),
		unaryMethod("UpdateCrowdsaleAddress", LedgerServiceServer.UpdateCrowdsaleAddress),
		unaryMethod("DelistToken", LedgerServiceServer.DelistToken),
		unaryMethod("ExtendBurnDeadline", LedgerServiceServer.ExtendBurnDeadline),
		unaryMethod("Transfer", LedgerServiceServer.Transfer),
		unaryMethod("Burn", LedgerServiceServer.Burn),
		unaryMethod("BurnBatch", LedgerServiceServer.BurnBatch),
		unaryMethod("SetApprovalForAll", LedgerServiceServer.SetApprovalForAll),
		unaryMethod("IsApprovedForAll", LedgerServiceServer.IsApprovedForAll),
		unaryMethod("PenaltyPercentage", LedgerServiceServer.PenaltyPercentage),
		unaryMethod("Pause", LedgerServiceServer.Pause),
		unaryMethod("Unpause", LedgerServiceServer.Unpause),
		unaryMethod("TokenInfo", LedgerServiceServer.TokenInfo),
		unaryMethod("BalanceOf", LedgerServiceServer.BalanceOf),
		unaryMethod("TotalSupply", LedgerServiceServer.TotalSupply),
		unaryMethod("GetTokenSettings", LedgerServiceServer.GetTokenSettings),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "estateledger/v1/ledger.proto",
}

// RegisterLedgerServiceServer registers srv on s.
func RegisterLedgerServiceServer(s grpc.ServiceRegistrar, srv LedgerServiceServer) {
	s.RegisterService(&LedgerServiceDesc, srv)
}

// FullMethod returns the full RPC path of a LedgerService method.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

func unaryMethod(name string, call func(LedgerServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(LedgerServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: FullMethod(name),
			}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(LedgerServiceServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// LedgerServiceClient calls LedgerService methods over a client connection.
type LedgerServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewLedgerServiceClient(cc grpc.ClientConnInterface) *LedgerServiceClient {
	return &LedgerServiceClient{cc: cc}
}

// Call invokes method with a request built from fields.
func (c *LedgerServiceClient) Call(ctx context.Context, method string, fields map[string]interface{}, opts ...grpc.CallOption) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
