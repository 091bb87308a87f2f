package carrier

import "errors"

var (
	// ErrNoSNI reports an incoming TLS connection that sent no server name,
	// leaving the peer unidentifiable.
	ErrNoSNI = errors.New("SNI failure")

	// ErrUnknownServerName reports an incoming connection whose SNI does not
	// match any configured node.
	ErrUnknownServerName = errors.New("unknown server name")

	// ErrUnexpectedResponse reports a response whose request ID matches no
	// in-flight request. The connection is torn down and redialed.
	ErrUnexpectedResponse = errors.New("unexpected response with request_id")
)
