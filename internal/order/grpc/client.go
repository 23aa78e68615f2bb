package grpc

import (
	"context"

	"google.golang.org/grpc"
)

type AdminClient struct {
	cc grpc.ClientConnInterface
}

func NewAdminClient(cc grpc.ClientConnInterface) *AdminClient {
	return &AdminClient{cc: cc}
}

func (c *AdminClient) GetOrder(ctx context.Context, req *GetOrderRequest, opts ...grpc.CallOption) (*OrderReply, error) {
	out := new(OrderReply)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/GetOrder", req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *AdminClient) UpdateStatus(ctx context.Context, req *UpdateStatusRequest, opts ...grpc.CallOption) (*OrderReply, error) {
	out := new(OrderReply)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/UpdateStatus", req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
