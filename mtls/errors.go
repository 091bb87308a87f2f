package mtls

import "errors"

var (
	// ErrCertChain reports a certificate chain file that could not be read.
	ErrCertChain = errors.New("certificate chain file")

	// ErrCertKey reports a private key file that could not be read.
	ErrCertKey = errors.New("certificate private key file")

	// ErrConfig reports an unusable certificate/key pair.
	ErrConfig = errors.New("TLS configuration")

	// ErrRootCAs reports an unusable additional-roots file.
	ErrRootCAs = errors.New("root CAs file")
)
