package carrier

import (
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net"
	"sync"

	"xdao.co/carrier/channels"
	"xdao.co/carrier/wire"
)

// serveIncoming owns one accepted connection for its lifetime. Session errors
// terminate the connection quietly; the peer is expected to redial.
func (c *Carrier) serveIncoming(ctx context.Context, conn net.Conn, serverCfg *tls.Config) {
	defer conn.Close()
	if err := c.handleIncoming(ctx, conn, serverCfg); err != nil && !errors.Is(err, context.Canceled) {
		c.log.Debug().Err(err).Msg("Connection terminated")
	}
}

func (c *Carrier) handleIncoming(ctx context.Context, conn net.Conn, serverCfg *tls.Config) error {
	tlsConn := tls.Server(conn, serverCfg)
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		return err
	}
	peer := tlsConn.ConnectionState().ServerName
	if peer == "" {
		return ErrNoSNI
	}
	trunk, ok := c.trunks.Incoming[peer]
	if !ok {
		return ErrUnknownServerName
	}
	c.log.Trace().Str("peer", peer).Msg("Accepted a new connection")

	reader, writer := c.newPipes(tlsConn)

	// Responses complete out of order; each pending callback is pumped into
	// respc by its own goroutine and the main loop serializes the writes.
	// Defer order matters: cancel and the conn close must run before the waits,
	// so that no goroutine touches the trunk after this function returns.
	respc := make(chan wire.NodeResponse)
	var pending sync.WaitGroup
	defer pending.Wait()

	readerDone := make(chan struct{})
	defer func() { <-readerDone }()
	defer tlsConn.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	readErr := make(chan error, 1)
	go func() {
		defer close(readerDone)
		for {
			var req wire.NodeRequest
			if err := reader.Read(&req); err != nil {
				readErr <- err
				return
			}
			cb, rx := channels.NewCallback(req)
			select {
			case trunk <- cb:
			case <-ctx.Done():
				readErr <- ctx.Err()
				return
			}
			pending.Add(1)
			go func() {
				defer pending.Done()
				select {
				case resp, ok := <-rx:
					if !ok {
						return // dropped without a response
					}
					select {
					case respc <- resp:
					case <-ctx.Done():
					}
				case <-ctx.Done():
				}
			}()
		}
	}()

	for {
		select {
		case resp := <-respc:
			if err := writer.Write(&resp); err != nil {
				return err
			}
			if err := writer.Flush(); err != nil {
				return err
			}
		case err := <-readErr:
			if errors.Is(err, io.EOF) {
				return nil // orderly shutdown by the peer
			}
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
