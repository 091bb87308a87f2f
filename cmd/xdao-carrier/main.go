// Command xdao-carrier is the operator CLI: devshell manifest tooling, pin
// computation, signing keys, development certificates, and a control-plane
// client for a running carrier daemon.
package main

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"xdao.co/carrier/cidutil"
	"xdao.co/carrier/control"
	"xdao.co/carrier/devshell"
	"xdao.co/carrier/keys"
	"xdao.co/carrier/mtls"
	"xdao.co/carrier/store/localdir"
	"xdao.co/carrier/wire"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		printUsage(errOut)
		return 2
	}

	switch args[0] {
	case "shell":
		return cmdShell(args[1:], out, errOut)
	case "pin":
		return cmdPin(args[1:], out, errOut)
	case "key":
		return cmdKey(args[1:], out, errOut)
	case "cert":
		return cmdCert(args[1:], out, errOut)
	case "send":
		return cmdSend(args[1:], out, errOut)
	case "peers":
		return cmdPeers(args[1:], out, errOut)
	case "help", "-h", "--help":
		printUsage(out)
		return 0
	default:
		fmt.Fprintf(errOut, "unknown command: %s\n\n", args[0])
		printUsage(errOut)
		return 2
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "xdao-carrier: carrier devshell/key/control CLI")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  xdao-carrier shell platforms --manifest <file>")
	fmt.Fprintln(w, "  xdao-carrier shell render --manifest <file> --platform <p> [--toolchain-root <dir>]")
	fmt.Fprintln(w, "  xdao-carrier shell verify-artifact --manifest <file> --artifact <file> [--store <dir>]")
	fmt.Fprintln(w, "  xdao-carrier shell verify-signature --manifest <file>")
	fmt.Fprintln(w, "  xdao-carrier pin cid <file>")
	fmt.Fprintln(w, "  xdao-carrier key init --name <name> [--seed-hex <64hex>] [--force]")
	fmt.Fprintln(w, "  xdao-carrier key derive --name <name> --role <role> [--force]")
	fmt.Fprintln(w, "  xdao-carrier key list")
	fmt.Fprintln(w, "  xdao-carrier key export --name <name> [--role <role>]")
	fmt.Fprintln(w, "  xdao-carrier cert selfsigned --dns <name> [--out-dir <dir>] [--days <n>]")
	fmt.Fprintln(w, "  xdao-carrier send --node <name> --request-id <hex> [--payload <hex>] [--control <addr>]")
	fmt.Fprintln(w, "  xdao-carrier peers [--control <addr>]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Notes:")
	fmt.Fprintln(w, "  - --seed-hex must be 32 bytes (64 hex chars) ed25519 seed")
	fmt.Fprintln(w, "  - keys live under ~/.xdao/carrier/keys (0600 private key files)")
	fmt.Fprintln(w, "  - shell render prints a shell-sourceable environment to stdout")
	fmt.Fprintln(w, "  - send/peers talk to a running xdao-carrierd control surface")
}

func loadManifest(path string, errOut io.Writer) (*devshell.Manifest, int) {
	if path == "" {
		fmt.Fprintln(errOut, "missing --manifest")
		return nil, 2
	}
	b, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(errOut, "read manifest: %v\n", err)
		return nil, 1
	}
	m, err := devshell.Parse(b)
	if err != nil {
		fmt.Fprintf(errOut, "invalid manifest: %v\n", err)
		return nil, 1
	}
	if err := m.Validate(); err != nil {
		fmt.Fprintf(errOut, "invalid manifest: %v\n", err)
		return nil, 1
	}
	return m, 0
}

func cmdShell(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "usage: xdao-carrier shell <subcommand> ...")
		fmt.Fprintln(errOut, "subcommands: platforms, render, verify-artifact, verify-signature")
		return 2
	}
	switch args[0] {
	case "platforms":
		fs := flag.NewFlagSet("shell platforms", flag.ContinueOnError)
		fs.SetOutput(errOut)
		manifest := fs.String("manifest", "", "manifest file")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		m, code := loadManifest(*manifest, errOut)
		if m == nil {
			return code
		}
		for _, name := range m.PlatformNames() {
			fmt.Fprintln(out, name)
		}
		return 0

	case "render":
		fs := flag.NewFlagSet("shell render", flag.ContinueOnError)
		fs.SetOutput(errOut)
		manifest := fs.String("manifest", "", "manifest file")
		platform := fs.String("platform", "", "platform to compose")
		root := fs.String("toolchain-root", "", "materialized toolchain root for env resolution")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		m, code := loadManifest(*manifest, errOut)
		if m == nil {
			return code
		}
		if *platform == "" {
			fmt.Fprintln(errOut, "missing --platform")
			return 2
		}
		env, err := m.Compose(*platform)
		if err != nil {
			fmt.Fprintf(errOut, "compose: %v\n", err)
			return 1
		}
		resolved := env.Env
		if *root != "" {
			if err := m.EnvReady(*root); err != nil {
				fmt.Fprintf(errOut, "toolchain root: %v\n", err)
				return 1
			}
			resolved = m.ResolveEnv(*root)
		}
		if err := env.Render(out, resolved); err != nil {
			fmt.Fprintf(errOut, "render: %v\n", err)
			return 1
		}
		return 0

	case "verify-artifact":
		fs := flag.NewFlagSet("shell verify-artifact", flag.ContinueOnError)
		fs.SetOutput(errOut)
		manifest := fs.String("manifest", "", "manifest file")
		artifact := fs.String("artifact", "", "toolchain artifact file")
		storeDir := fs.String("store", "", "artifact store directory (record on success)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		m, code := loadManifest(*manifest, errOut)
		if m == nil {
			return code
		}
		if *artifact == "" {
			fmt.Fprintln(errOut, "missing --artifact")
			return 2
		}
		data, err := os.ReadFile(*artifact)
		if err != nil {
			fmt.Fprintf(errOut, "read artifact: %v\n", err)
			return 1
		}
		if *storeDir != "" {
			s, err := localdir.New(*storeDir)
			if err != nil {
				fmt.Fprintf(errOut, "open store: %v\n", err)
				return 1
			}
			id, err := m.Materialize(s, data)
			if err != nil {
				fmt.Fprintf(errOut, "verify: %v\n", err)
				return 1
			}
			fmt.Fprintln(out, id)
			return 0
		}
		if err := m.VerifyArtifact(data); err != nil {
			fmt.Fprintf(errOut, "verify: %v\n", err)
			return 1
		}
		fmt.Fprintln(out, "ok")
		return 0

	case "verify-signature":
		fs := flag.NewFlagSet("shell verify-signature", flag.ContinueOnError)
		fs.SetOutput(errOut)
		manifest := fs.String("manifest", "", "manifest file")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		m, code := loadManifest(*manifest, errOut)
		if m == nil {
			return code
		}
		if err := m.VerifySignature(); err != nil {
			fmt.Fprintf(errOut, "verify: %v\n", err)
			return 1
		}
		fmt.Fprintln(out, "ok")
		return 0

	default:
		fmt.Fprintf(errOut, "unknown shell subcommand: %s\n", args[0])
		return 2
	}
}

func cmdPin(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 || args[0] != "cid" {
		fmt.Fprintln(errOut, "usage: xdao-carrier pin cid <file>")
		return 2
	}
	fs := flag.NewFlagSet("pin cid", flag.ContinueOnError)
	fs.SetOutput(errOut)
	if err := fs.Parse(args[1:]); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: xdao-carrier pin cid <file>")
		return 2
	}
	b, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(errOut, "read artifact: %v\n", err)
		return 1
	}
	id, err := cidutil.CIDv1RawSHA256CID(b)
	if err != nil {
		fmt.Fprintf(errOut, "cid: %v\n", err)
		return 1
	}
	fmt.Fprintln(out, id)
	return 0
}

func cmdKey(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "usage: xdao-carrier key <subcommand> ...")
		fmt.Fprintln(errOut, "subcommands: init, derive, list, export")
		return 2
	}
	ks, err := keys.Open("")
	if err != nil {
		fmt.Fprintf(errOut, "open keystore: %v\n", err)
		return 1
	}

	switch args[0] {
	case "init":
		fs := flag.NewFlagSet("key init", flag.ContinueOnError)
		fs.SetOutput(errOut)
		name := fs.String("name", "", "key identifier")
		seedHex := fs.String("seed-hex", "", "32-byte hex seed (generated if omitted)")
		force := fs.Bool("force", false, "overwrite an existing key")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		var seed []byte
		if *seedHex != "" {
			seed, err = keys.ParseSeedHex(*seedHex)
			if err != nil {
				fmt.Fprintf(errOut, "seed: %v\n", err)
				return 1
			}
		} else {
			seed = make([]byte, ed25519.SeedSize)
			if _, err := rand.Read(seed); err != nil {
				fmt.Fprintf(errOut, "seed generation: %v\n", err)
				return 1
			}
		}
		signerKey, path, err := ks.InitRootKey(*name, seed, *force)
		if err != nil {
			fmt.Fprintf(errOut, "init: %v\n", err)
			return 1
		}
		fmt.Fprintf(out, "%s\t%s\n", signerKey, path)
		return 0

	case "derive":
		fs := flag.NewFlagSet("key derive", flag.ContinueOnError)
		fs.SetOutput(errOut)
		name := fs.String("name", "", "key identifier")
		role := fs.String("role", "", "role name")
		force := fs.Bool("force", false, "overwrite an existing role key")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		signerKey, path, err := ks.DeriveRoleKey(*name, *role, *force)
		if err != nil {
			fmt.Fprintf(errOut, "derive: %v\n", err)
			return 1
		}
		fmt.Fprintf(out, "%s\t%s\n", signerKey, path)
		return 0

	case "list":
		entries, err := ks.List()
		if err != nil {
			fmt.Fprintf(errOut, "list: %v\n", err)
			return 1
		}
		for _, e := range entries {
			if len(e.Roles) == 0 {
				fmt.Fprintln(out, e.Identifier)
				continue
			}
			fmt.Fprintf(out, "%s\t%s\n", e.Identifier, strings.Join(e.Roles, ","))
		}
		return 0

	case "export":
		fs := flag.NewFlagSet("key export", flag.ContinueOnError)
		fs.SetOutput(errOut)
		name := fs.String("name", "", "key identifier")
		role := fs.String("role", "", "role name (root key if omitted)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		signerKey, err := ks.ExportKey(*name, *role)
		if err != nil {
			fmt.Fprintf(errOut, "export: %v\n", err)
			return 1
		}
		fmt.Fprintln(out, signerKey)
		return 0

	default:
		fmt.Fprintf(errOut, "unknown key subcommand: %s\n", args[0])
		return 2
	}
}

func cmdCert(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 || args[0] != "selfsigned" {
		fmt.Fprintln(errOut, "usage: xdao-carrier cert selfsigned --dns <name> [--out-dir <dir>] [--days <n>]")
		return 2
	}
	fs := flag.NewFlagSet("cert selfsigned", flag.ContinueOnError)
	fs.SetOutput(errOut)
	dns := fs.String("dns", "", "DNS name (node name)")
	outDir := fs.String("out-dir", ".", "output directory")
	days := fs.Int("days", 30, "validity in days")
	if err := fs.Parse(args[1:]); err != nil {
		return 2
	}
	certPEM, keyPEM, err := mtls.SelfSigned(*dns, time.Duration(*days)*24*time.Hour)
	if err != nil {
		fmt.Fprintf(errOut, "cert: %v\n", err)
		return 1
	}
	chainPath := filepath.Join(*outDir, "fullchain.pem")
	keyPath := filepath.Join(*outDir, "privkey.pem")
	if err := os.WriteFile(chainPath, certPEM, 0o644); err != nil {
		fmt.Fprintf(errOut, "write %s: %v\n", chainPath, err)
		return 1
	}
	if err := os.WriteFile(keyPath, keyPEM, 0o600); err != nil {
		fmt.Fprintf(errOut, "write %s: %v\n", keyPath, err)
		return 1
	}
	fmt.Fprintf(out, "%s\n%s\n", chainPath, keyPath)
	return 0
}

func cmdSend(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("send", flag.ContinueOnError)
	fs.SetOutput(errOut)
	controlAddr := fs.String("control", "127.0.0.1:7600", "daemon control address")
	node := fs.String("node", "", "target node name")
	requestID := fs.String("request-id", "", "request ID (hex)")
	payload := fs.String("payload", "", "distance list payload (hex)")
	timeout := fs.Duration("timeout", 10*time.Second, "per-request timeout")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *node == "" || *requestID == "" {
		fmt.Fprintln(errOut, "missing --node or --request-id")
		return 2
	}
	id, err := hex.DecodeString(*requestID)
	if err != nil {
		fmt.Fprintf(errOut, "request-id: %v\n", err)
		return 2
	}
	var dist []byte
	if *payload != "" {
		dist, err = hex.DecodeString(*payload)
		if err != nil {
			fmt.Fprintf(errOut, "payload: %v\n", err)
			return 2
		}
	}

	client, err := control.Dial(*controlAddr, control.DialOptions{Timeout: *timeout})
	if err != nil {
		fmt.Fprintf(errOut, "dial control: %v\n", err)
		return 1
	}
	defer client.Close()
	client.Timeout = *timeout

	resp, err := client.Send(context.Background(), *node, wire.NodeRequest{RequestID: id, DistanceList: dist})
	if err != nil {
		fmt.Fprintf(errOut, "send: %v\n", err)
		return 1
	}
	fmt.Fprintf(out, "%x\n", resp.RequestID)
	return 0
}

func cmdPeers(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("peers", flag.ContinueOnError)
	fs.SetOutput(errOut)
	controlAddr := fs.String("control", "127.0.0.1:7600", "daemon control address")
	timeout := fs.Duration("timeout", 10*time.Second, "request timeout")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	client, err := control.Dial(*controlAddr, control.DialOptions{Timeout: *timeout})
	if err != nil {
		fmt.Fprintf(errOut, "dial control: %v\n", err)
		return 1
	}
	defer client.Close()
	client.Timeout = *timeout

	peers, err := client.Peers(context.Background())
	if err != nil {
		fmt.Fprintf(errOut, "peers: %v\n", err)
		return 1
	}
	names := make([]string, 0, len(peers))
	for name := range peers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(out, "%s\t%d\n", name, peers[name])
	}
	return 0
}
