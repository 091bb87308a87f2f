package control

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"xdao.co/carrier/wire"
)

// Client is a typed wrapper over the Control gRPC service.
//
// The control surface is local to the node (loopback or unix socket), so the
// transport is plaintext.
type Client struct {
	cc     *grpc.ClientConn
	client ControlClient

	// Timeout applies per RPC when non-zero.
	Timeout time.Duration
}

type DialOptions struct {
	// Timeout applies to the initial dial when non-zero.
	Timeout time.Duration
}

func Dial(target string, opts DialOptions) (*Client, error) {
	ctx := context.Background()
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}
	cc, err := grpc.DialContext(ctx, target,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, err
	}
	return &Client{cc: cc, client: NewControlClient(cc)}, nil
}

func (c *Client) Close() error {
	if c == nil || c.cc == nil {
		return nil
	}
	return c.cc.Close()
}

// Send forwards a request to node through the carrier and returns its response.
func (c *Client) Send(ctx context.Context, node string, req wire.NodeRequest) (wire.NodeResponse, error) {
	env := SendEnvelope{Node: node, Request: req}
	b, err := env.MarshalWire()
	if err != nil {
		return wire.NodeResponse{}, err
	}
	ctx, cancel := c.ctx(ctx)
	defer cancel()
	reply, err := c.client.Send(ctx, wrapperspb.Bytes(b))
	if err != nil {
		return wire.NodeResponse{}, err
	}
	var resp wire.NodeResponse
	if err := resp.UnmarshalWire(reply.GetValue()); err != nil {
		return wire.NodeResponse{}, err
	}
	return resp, nil
}

// Peers returns the daemon's configured node→port map.
func (c *Client) Peers(ctx context.Context) (map[string]uint16, error) {
	ctx, cancel := c.ctx(ctx)
	defer cancel()
	reply, err := c.client.Peers(ctx, &emptypb.Empty{})
	if err != nil {
		return nil, err
	}
	var nodes map[string]uint16
	if err := json.Unmarshal([]byte(reply.GetValue()), &nodes); err != nil {
		return nil, fmt.Errorf("control: peers reply: %w", err)
	}
	return nodes, nil
}

func (c *Client) ctx(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.Timeout > 0 {
		return context.WithTimeout(ctx, c.Timeout)
	}
	return context.WithCancel(ctx)
}
