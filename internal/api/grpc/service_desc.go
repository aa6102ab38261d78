package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	SponsorshipServiceName = "membership.v1.SponsorshipService"
	MemberServiceName      = "membership.v1.MemberService"
)

// Every RPC takes and returns a google.protobuf.Struct, so the default proto
// codec serves the services without generated stubs.
type structMethod[S any] func(srv S, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)

func unary[S any](service, name string, fn structMethod[S]) grpc.MethodDesc {
	fullMethod := "/" + service + "/" + name
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return fn(srv.(S), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				return fn(srv.(S), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// SponsorshipServer is implemented by SponsorshipHandler.
type SponsorshipServer interface {
	CreateApplication(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetApplication(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ApproveApplication(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RejectApplication(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SweepExpiredApplications(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListAuditLog(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

var SponsorshipServiceDesc = grpc.ServiceDesc{
	ServiceName: SponsorshipServiceName,
	HandlerType: (*SponsorshipServer)(nil),
	Methods: []grpc.MethodDesc{
		unary[SponsorshipServer](SponsorshipServiceName, "CreateApplication", SponsorshipServer.CreateApplication),
		unary[SponsorshipServer](SponsorshipServiceName, "GetApplication", SponsorshipServer.GetApplication),
		unary[SponsorshipServer](SponsorshipServiceName, "ApproveApplication", SponsorshipServer.ApproveApplication),
		unary[SponsorshipServer](SponsorshipServiceName, "RejectApplication", SponsorshipServer.RejectApplication),
		unary[SponsorshipServer](SponsorshipServiceName, "SweepExpiredApplications", SponsorshipServer.SweepExpiredApplications),
		unary[SponsorshipServer](SponsorshipServiceName, "ListAuditLog", SponsorshipServer.ListAuditLog),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "membership/v1/sponsorship.proto",
}

// MemberServer is implemented by MemberHandler.
type MemberServer interface {
	RegisterMember(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetMember(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SetMemberActive(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

var MemberServiceDesc = grpc.ServiceDesc{
	ServiceName: MemberServiceName,
	HandlerType: (*MemberServer)(nil),
	Methods: []grpc.MethodDesc{
		unary[MemberServer](MemberServiceName, "RegisterMember", MemberServer.RegisterMember),
		unary[MemberServer](MemberServiceName, "GetMember", MemberServer.GetMember),
		unary[MemberServer](MemberServiceName, "SetMemberActive", MemberServer.SetMemberActive),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "membership/v1/member.proto",
}

func RegisterSponsorshipServer(s grpc.ServiceRegistrar, srv SponsorshipServer) {
	s.RegisterService(&SponsorshipServiceDesc, srv)
}

func RegisterMemberServer(s grpc.ServiceRegistrar, srv MemberServer) {
	s.RegisterService(&MemberServiceDesc, srv)
}
