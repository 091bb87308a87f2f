package mtls

import (
	"crypto/x509"
	"encoding/pem"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeCert(t *testing.T, dnsName string) (chain, key string) {
	t.Helper()
	certPEM, keyPEM, err := SelfSigned(dnsName, time.Hour)
	if err != nil {
		t.Fatalf("SelfSigned: %v", err)
	}
	dir := t.TempDir()
	chain = filepath.Join(dir, "fullchain.pem")
	key = filepath.Join(dir, "privkey.pem")
	if err := os.WriteFile(chain, certPEM, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := os.WriteFile(key, keyPEM, 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return chain, key
}

func TestSelfSignedIsUsableBothWays(t *testing.T) {
	certPEM, _, err := SelfSigned("node1.example.com", time.Hour)
	if err != nil {
		t.Fatalf("SelfSigned: %v", err)
	}
	block, _ := pem.Decode(certPEM)
	if block == nil {
		t.Fatal("no PEM block")
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		t.Fatalf("ParseCertificate: %v", err)
	}
	if err := cert.VerifyHostname("node1.example.com"); err != nil {
		t.Fatalf("VerifyHostname: %v", err)
	}
	var server, client bool
	for _, eku := range cert.ExtKeyUsage {
		server = server || eku == x509.ExtKeyUsageServerAuth
		client = client || eku == x509.ExtKeyUsageClientAuth
	}
	if !server || !client {
		t.Fatalf("missing key usage: server=%v client=%v", server, client)
	}
}

func TestSelfSignedRequiresDNSName(t *testing.T) {
	if _, _, err := SelfSigned("", time.Hour); err == nil {
		t.Fatal("empty DNS name accepted")
	}
}

func TestInit(t *testing.T) {
	chain, key := writeCert(t, "localhost")

	server, client, err := Init(chain, key, Options{RootCAs: chain})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if len(server.Certificates) != 1 || len(client.Certificates) != 1 {
		t.Fatal("certificate not loaded")
	}
	if client.ServerName != "" {
		t.Fatalf("client ServerName preset to %q", client.ServerName)
	}
}

func TestInitErrors(t *testing.T) {
	chain, key := writeCert(t, "localhost")

	if _, _, err := Init("/nonexistent/chain.pem", key, Options{}); !errors.Is(err, ErrCertChain) {
		t.Fatalf("got %v want ErrCertChain", err)
	}
	if _, _, err := Init(chain, "/nonexistent/key.pem", Options{}); !errors.Is(err, ErrCertKey) {
		t.Fatalf("got %v want ErrCertKey", err)
	}
	if _, _, err := Init(chain, chain, Options{}); !errors.Is(err, ErrConfig) {
		t.Fatalf("got %v want ErrConfig", err)
	}
	if _, _, err := Init(chain, key, Options{RootCAs: "/nonexistent/roots.pem"}); !errors.Is(err, ErrRootCAs) {
		t.Fatalf("got %v want ErrRootCAs", err)
	}
}
