package control

import (
	"context"
	"encoding/json"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"xdao.co/carrier/channels"
)

// Server exposes a carrier's Outgoing channel set over the Control service.
type Server struct {
	UnimplementedControlServer

	// Outgoing is the carrier's application-side send surface.
	Outgoing *channels.Outgoing

	// Nodes is the configured node→port map reported by Peers.
	Nodes map[string]uint16
}

func (s *Server) Send(ctx context.Context, in *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error) {
	if s == nil || s.Outgoing == nil {
		return nil, status.Error(codes.FailedPrecondition, "missing carrier")
	}
	var env SendEnvelope
	if err := env.UnmarshalWire(in.GetValue()); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if env.Node == "" {
		return nil, status.Error(codes.InvalidArgument, "missing node")
	}
	resp, err := s.Outgoing.Send(ctx, env.Node, env.Request)
	if err != nil {
		return nil, mapErr(err)
	}
	b, err := resp.MarshalWire()
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return wrapperspb.Bytes(b), nil
}

func (s *Server) Peers(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.StringValue, error) {
	_ = ctx
	if s == nil {
		return nil, status.Error(codes.FailedPrecondition, "missing carrier")
	}
	b, err := json.Marshal(s.Nodes)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return wrapperspb.String(string(b)), nil
}

func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, channels.ErrUnknownNode):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, channels.ErrClosed):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
