package grpc

import (
	"context"
	"log/slog"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/dwikikusuma/shoe-store/internal/order/app"
	"github.com/dwikikusuma/shoe-store/internal/order/domain"
	"github.com/dwikikusuma/shoe-store/pkg/apperr"
)

const ServiceName = "shoestore.order.v1.OrderAdmin"

type GetOrderRequest struct {
	OrderID string `json:"orderId"`
}

type UpdateStatusRequest struct {
	OrderID string `json:"orderId"`
	Status  string `json:"status"`
}

type OrderReply struct {
	Order domain.Order `json:"order"`
}

type AdminServer interface {
	GetOrder(ctx context.Context, req *GetOrderRequest) (*OrderReply, error)
	UpdateStatus(ctx context.Context, req *UpdateStatusRequest) (*OrderReply, error)
}

type Server struct {
	svc *app.Service
	log *slog.Logger
}

func NewServer(svc *app.Service, log *slog.Logger) *Server {
	return &Server{svc: svc, log: log}
}

func (s *Server) GetOrder(ctx context.Context, req *GetOrderRequest) (*OrderReply, error) {
	if strings.TrimSpace(req.OrderID) == "" {
		return nil, status.Error(codes.InvalidArgument, "orderId must not be empty")
	}
	o, err := s.svc.GetOrder(ctx, "", true, req.OrderID)
	if err != nil {
		return nil, apperr.GRPCError(err)
	}
	return &OrderReply{Order: o}, nil
}

func (s *Server) UpdateStatus(ctx context.Context, req *UpdateStatusRequest) (*OrderReply, error) {
	if strings.TrimSpace(req.OrderID) == "" {
		return nil, status.Error(codes.InvalidArgument, "orderId must not be empty")
	}
	o, err := s.svc.UpdateStatus(ctx, req.OrderID, req.Status)
	if err != nil {
		if code, _ := apperr.CodeOf(err); code == codes.Internal {
			s.log.Error("grpc update status failed", slog.String("order_id", req.OrderID), slog.Any("err", err))
		}
		return nil, apperr.GRPCError(err)
	}
	s.log.Info("order status updated", slog.String("order_id", o.ID), slog.String("status", string(o.Status)))
	return &OrderReply{Order: o}, nil
}

// Register adds the admin service to gs.
func Register(gs *grpc.Server, srv AdminServer) {
	gs.RegisterService(&serviceDesc, srv)
}

// RequireAdmin rejects calls whose x-user-role metadata is not admin.
func RequireAdmin(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	md, _ := metadata.FromIncomingContext(ctx)
	if role := md.Get("x-user-role"); len(role) == 0 || strings.ToLower(role[0]) != "admin" {
		return nil, status.Error(codes.PermissionDenied, "admin role required")
	}
	return handler(ctx, req)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AdminServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetOrder", Handler: getOrderHandler},
		{MethodName: "UpdateStatus", Handler: updateStatusHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "shoestore/order/v1/admin",
}

func getOrderHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GetOrderRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AdminServer).GetOrder(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/GetOrder"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(AdminServer).GetOrder(ctx, req.(*GetOrderRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func updateStatusHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(UpdateStatusRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AdminServer).UpdateStatus(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/UpdateStatus"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(AdminServer).UpdateStatus(ctx, req.(*UpdateStatusRequest))
	}
	return interceptor(ctx, in, info, handler)
}
