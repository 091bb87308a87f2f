package carrier

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"xdao.co/carrier/channels"
	"xdao.co/carrier/wire"
)

// outgoingLoop keeps one connection to node alive for the lifetime of the
// carrier, redialing after retry interval on any failure.
func (c *Carrier) outgoingLoop(ctx context.Context, node string, port uint16, clientCfg *tls.Config) {
	for {
		if err := c.serveOutgoing(ctx, node, port, clientCfg); err != nil && !errors.Is(err, context.Canceled) {
			c.log.Debug().Str("node", node).Err(err).Msg("Connection failure")
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(c.retry):
		}
	}
}

func (c *Carrier) serveOutgoing(ctx context.Context, node string, port uint16, clientCfg *tls.Config) error {
	trunk := c.trunks.Outgoing[node]

	// Scoped to this connection so the reader goroutine unblocks on any return.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", net.JoinHostPort(node, strconv.Itoa(int(port))))
	if err != nil {
		return fmt.Errorf("socket: %w", err)
	}
	defer conn.Close()

	cfg := clientCfg.Clone()
	cfg.ServerName = node
	tlsConn := tls.Client(conn, cfg)
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		return err
	}
	c.log.Trace().Str("node", node).Uint16("port", port).Msg("Established a connection")

	reader, writer := c.newPipes(tlsConn)

	// In-flight requests, keyed by request ID. Dropped without a response on
	// teardown; the retry loop rebuilds the connection and senders resend.
	pending := make(map[string]channels.Callback)
	defer func() {
		for _, cb := range pending {
			cb.Drop()
		}
	}()

	respc := make(chan wire.NodeResponse)
	readErr := make(chan error, 1)
	go func() {
		for {
			var resp wire.NodeResponse
			if err := reader.Read(&resp); err != nil {
				readErr <- err
				return
			}
			select {
			case respc <- resp:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case cb, ok := <-trunk:
			if !ok {
				return nil
			}
			key := string(cb.Message.RequestID)
			if old, exists := pending[key]; exists {
				// Same contract as the wire: one in-flight request per ID.
				// The older callback is dropped and the duplicate request is
				// not sent; the retained callback resolves from the response
				// to the request already on the wire.
				c.log.Error().Str("node", node).Hex("request_id", cb.Message.RequestID).Msg("Colliding request_id")
				old.Drop()
				pending[key] = cb
				continue
			}
			pending[key] = cb
			if err := writer.Write(&cb.Message); err != nil {
				return err
			}
			if err := writer.Flush(); err != nil {
				return err
			}
		case resp := <-respc:
			cb, ok := pending[string(resp.RequestID)]
			if !ok {
				return fmt.Errorf("%w: %x", ErrUnexpectedResponse, resp.RequestID)
			}
			delete(pending, string(resp.RequestID))
			cb.Respond(resp)
		case err := <-readErr:
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
