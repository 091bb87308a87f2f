// Package carrier implements the node-to-node communication worker: a mesh of
// TLS links between named nodes, exchanging length-prefixed protobuf
// request/response frames.
//
// Each node listens on one port and dials every configured peer. Incoming
// connections are attributed to a peer by the SNI the peer sends; outgoing
// connections verify the peer's certificate against its node name and are
// redialed forever on failure.
package carrier

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"xdao.co/carrier/channels"
	"xdao.co/carrier/mtls"
	"xdao.co/carrier/wire"
)

// ChannelCapacity is the per-node, per-direction request buffer size.
const ChannelCapacity = 64

const defaultRetryInterval = 200 * time.Millisecond

// Options adjusts carrier behavior. The zero value is usable.
type Options struct {
	// Logger receives connection lifecycle events. Defaults to a no-op logger.
	Logger *zerolog.Logger

	// MaxFrameLen caps frame payloads in both directions.
	// Defaults to wire.DefaultMaxLen.
	MaxFrameLen int

	// RootCAs is an optional PEM file of additional trusted roots for
	// outgoing connections (development certificates, private CAs).
	RootCAs string

	// RetryInterval is the delay between outgoing connection attempts.
	// Defaults to 200ms.
	RetryInterval time.Duration
}

// Carrier is the communication worker. Create one with New and drive it with
// Run; the application talks to it through the returned channel sets.
type Carrier struct {
	nodes   map[string]uint16
	trunks  channels.Trunks
	log     zerolog.Logger
	maxLen  int
	rootCAs string
	retry   time.Duration
}

// New returns a Carrier for the given node→port map together with the
// application-side Incoming and Outgoing channel sets.
func New(nodes map[string]uint16, opts Options) (*Carrier, *channels.Incoming, *channels.Outgoing) {
	names := make([]string, 0, len(nodes))
	for node := range nodes {
		names = append(names, node)
	}
	incoming, outgoing, trunks := channels.New(names, ChannelCapacity)

	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}
	retry := opts.RetryInterval
	if retry <= 0 {
		retry = defaultRetryInterval
	}
	c := &Carrier{
		nodes:   nodes,
		trunks:  trunks,
		log:     log,
		maxLen:  opts.MaxFrameLen,
		rootCAs: opts.RootCAs,
		retry:   retry,
	}
	return c, incoming, outgoing
}

// Run drives the communication until ctx is cancelled or the listener fails.
//
// It listens on bind:nodePort for incoming connections and maintains one
// outgoing connection per configured node. The Incoming channel set closes
// when Run returns.
func (c *Carrier) Run(ctx context.Context, bind string, nodePort uint16, certChain, privKey string) error {
	serverCfg, clientCfg, err := mtls.Init(certChain, privKey, mtls.Options{RootCAs: c.rootCAs})
	if err != nil {
		c.closeIncoming()
		return fmt.Errorf("TLS initialization: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	addr := net.JoinHostPort(bind, strconv.Itoa(int(nodePort)))
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		c.closeIncoming()
		return fmt.Errorf("socket: %w", err)
	}
	c.log.Info().Str("addr", addr).Msg("Listening for incoming connections")

	for node, port := range c.nodes {
		go c.outgoingLoop(ctx, node, port, clientCfg)
	}

	var handlers sync.WaitGroup
	acceptErr := make(chan error, 1)
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				acceptErr <- err
				return
			}
			handlers.Add(1)
			go func() {
				defer handlers.Done()
				c.serveIncoming(ctx, conn, serverCfg)
			}()
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		runErr = ctx.Err()
		ln.Close()
		<-acceptErr // accept loop has exited; no further handlers start
	case err := <-acceptErr:
		ln.Close()
		if ctx.Err() != nil {
			runErr = ctx.Err()
		} else {
			runErr = fmt.Errorf("socket: %w", err)
		}
	}
	// All trunk senders must be done before the close.
	cancel()
	handlers.Wait()
	c.closeIncoming()
	return runErr
}

func (c *Carrier) closeIncoming() {
	for _, trunk := range c.trunks.Incoming {
		close(trunk)
	}
}

// Nodes returns a copy of the configured node→port map.
func (c *Carrier) Nodes() map[string]uint16 {
	nodes := make(map[string]uint16, len(c.nodes))
	for node, port := range c.nodes {
		nodes[node] = port
	}
	return nodes
}

func (c *Carrier) newPipes(conn net.Conn) (*wire.Reader, *wire.Writer) {
	return wire.New(conn, c.maxLen)
}
