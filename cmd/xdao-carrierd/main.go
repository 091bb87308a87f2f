// Command xdao-carrierd runs one carrier node: the TLS mesh listener, the
// outgoing connections to its peers, a responder for incoming requests, and a
// local gRPC control surface for sending requests through the mesh.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/cristalhq/aconfig"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"

	"xdao.co/carrier/carrier"
	"xdao.co/carrier/channels"
	"xdao.co/carrier/control"
	"xdao.co/carrier/wire"
)

type config struct {
	Bind        string            `default:"0.0.0.0" usage:"IP address to listen on for node connections"`
	NodePort    uint16            `default:"9000" usage:"This node's port"`
	CertChain   string            `usage:"Certificate chain file (PEM)"`
	CertPrivKey string            `usage:"Certificate private key file (PEM)"`
	RootCAs     string            `usage:"Additional trusted roots (PEM), for development certificates"`
	Control     string            `default:"127.0.0.1:7600" usage:"Control gRPC listen address"`
	Nodes       map[string]uint16 `usage:"Other nodes as name:port pairs"`

	Log struct {
		Level string `default:"info"`
		JSON  bool   `default:"false" usage:"Output JSON instead of console messages"`
	}
}

var logLevels = map[string]zerolog.Level{
	"trace":   zerolog.TraceLevel,
	"debug":   zerolog.DebugLevel,
	"info":    zerolog.InfoLevel,
	"warn":    zerolog.WarnLevel,
	"warning": zerolog.WarnLevel,
	"error":   zerolog.ErrorLevel,
}

func (cfg *config) validate() error {
	if cfg.CertChain == "" {
		return errors.New("certchain is required")
	}
	if cfg.CertPrivKey == "" {
		return errors.New("certprivkey is required")
	}
	if _, ok := logLevels[cfg.Log.Level]; !ok {
		return fmt.Errorf("invalid log.level %q", cfg.Log.Level)
	}
	return nil
}

func main() {
	var cfg config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "CARRIERD",
		Files:     []string{"carrierd.json"},
	})
	if err := loader.Load(); err != nil {
		if strings.Contains(err.Error(), "help requested") {
			os.Exit(3)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if err := cfg.validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	var log zerolog.Logger
	if cfg.Log.JSON {
		log = zerolog.New(os.Stderr).With().Timestamp().Logger()
	} else {
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	}
	log = log.Level(logLevels[cfg.Log.Level])

	if err := run(cfg, log); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("carrier stopped")
	}
}

func run(cfg config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, incoming, outgoing := carrier.New(cfg.Nodes, carrier.Options{
		Logger:  &log,
		RootCAs: cfg.RootCAs,
	})

	lis, err := net.Listen("tcp", cfg.Control)
	if err != nil {
		return fmt.Errorf("control listen: %w", err)
	}
	defer lis.Close()
	gsrv := grpc.NewServer()
	control.RegisterControlServer(gsrv, &control.Server{Outgoing: outgoing, Nodes: c.Nodes()})
	go func() {
		log.Info().Str("addr", lis.Addr().String()).Msg("Control surface listening")
		if err := gsrv.Serve(lis); err != nil {
			log.Error().Err(err).Msg("Control surface stopped")
		}
	}()
	defer gsrv.Stop()

	go respond(ctx, incoming, log)

	return c.Run(ctx, cfg.Bind, cfg.NodePort, cfg.CertChain, cfg.CertPrivKey)
}

// respond answers every incoming request with its request ID.
func respond(ctx context.Context, incoming *channels.Incoming, log zerolog.Logger) {
	for {
		node, cb, err := incoming.Recv(ctx)
		if err != nil {
			return
		}
		log.Info().Str("node", node).Hex("request_id", cb.Message.RequestID).Msg("Received request")
		cb.Respond(wire.NodeResponse{RequestID: cb.Message.RequestID})
	}
}
