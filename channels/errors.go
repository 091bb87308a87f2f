package channels

import "errors"

var (
	// ErrUnknownNode reports a send to a node that was not configured.
	ErrUnknownNode = errors.New("unknown node")

	// ErrClosed reports that the carrier side went away before delivering
	// a response, or that the incoming side is drained and closed.
	ErrClosed = errors.New("channel closed")
)
