// Package mtls builds the TLS configurations for carrier links.
//
// Every node presents the same certificate in both directions: as a server to
// nodes dialing in, and as a client certificate offered when dialing out. The
// server does not demand the client certificate; incoming peers are identified
// by the SNI they send, so node names must match certificate DNS names.
package mtls

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
)

// Options adjusts Init beyond the certificate pair.
type Options struct {
	// RootCAs is an optional PEM file of additional trusted roots, for
	// private CAs and development certificates. System roots are always
	// included.
	RootCAs string
}

// Init loads the PEM certificate chain and private key and returns the
// server-side and client-side TLS configurations for carrier links.
//
// The client configuration has no ServerName; callers clone it and set the
// target node's name per connection.
func Init(certChain, privKey string, opts Options) (server, client *tls.Config, err error) {
	chainPEM, err := os.ReadFile(certChain)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrCertChain, err)
	}
	keyPEM, err := os.ReadFile(privKey)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrCertKey, err)
	}
	cert, err := tls.X509KeyPair(chainPEM, keyPEM)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}

	roots, err := x509.SystemCertPool()
	if err != nil {
		// No system roots (uncommon); start from an empty pool.
		roots = x509.NewCertPool()
	}
	if opts.RootCAs != "" {
		extra, err := os.ReadFile(opts.RootCAs)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrRootCAs, err)
		}
		if !roots.AppendCertsFromPEM(extra) {
			return nil, nil, fmt.Errorf("%w: no certificates in %s", ErrRootCAs, opts.RootCAs)
		}
	}

	server = &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}
	client = &tls.Config{
		Certificates: []tls.Certificate{cert},
		RootCAs:      roots,
		MinVersion:   tls.VersionTLS12,
	}
	return server, client, nil
}
