// Package channels provides the request/response channel sets that connect an
// application to a running carrier.
//
// Requests travel as Callbacks: a NodeRequest coupled with a single-use
// response channel. The application side holds Incoming and Outgoing; the
// carrier side holds the matching Trunks.
package channels

import (
	"context"
	"sync"

	"xdao.co/carrier/wire"
)

// Callback couples a request with a single-use channel for its response.
//
// Exactly one of Respond or Drop must be called by the receiving side.
type Callback struct {
	Message  wire.NodeRequest
	response chan<- wire.NodeResponse
}

// NewCallback returns a Callback wrapping message and the channel on which
// its response (or closure, if dropped) will be delivered.
func NewCallback(message wire.NodeRequest) (Callback, <-chan wire.NodeResponse) {
	ch := make(chan wire.NodeResponse, 1)
	return Callback{Message: message, response: ch}, ch
}

// Respond delivers the response and consumes the callback.
func (cb Callback) Respond(resp wire.NodeResponse) {
	cb.response <- resp
	close(cb.response)
}

// Drop consumes the callback without a response; the waiting sender
// observes ErrClosed.
func (cb Callback) Drop() {
	close(cb.response)
}

type received struct {
	node string
	cb   Callback
}

// Incoming is the application's receive side: requests arriving from any
// configured node.
//
// An application that stops receiving must either drain Recv to ErrClosed or
// call Close; otherwise the fan-in goroutines stay parked on undelivered
// requests.
type Incoming struct {
	merged chan received
	stop   chan struct{}
	once   sync.Once
}

// Close releases the receive side without draining it. Queued and future
// requests are dropped, so their senders observe ErrClosed.
func (in *Incoming) Close() {
	in.once.Do(func() { close(in.stop) })
}

// Outgoing is the application's send side: one queue per configured node.
type Outgoing struct {
	channels map[string]chan<- Callback
}

// Trunks holds the carrier-side ends of the channel sets.
//
// The carrier delivers received requests into Incoming and drains queued
// requests from Outgoing. The carrier closes the Incoming channels when it
// stops, which in turn closes the application's Incoming side.
type Trunks struct {
	Incoming map[string]chan<- Callback
	Outgoing map[string]<-chan Callback
}

// New builds the channel sets for the given node names, with per-node,
// per-direction buffers of the given capacity.
func New(nodes []string, capacity int) (*Incoming, *Outgoing, Trunks) {
	trunks := Trunks{
		Incoming: make(map[string]chan<- Callback, len(nodes)),
		Outgoing: make(map[string]<-chan Callback, len(nodes)),
	}
	outgoing := make(map[string]chan<- Callback, len(nodes))
	incoming := &Incoming{
		merged: make(chan received),
		stop:   make(chan struct{}),
	}

	var wg sync.WaitGroup
	for _, node := range nodes {
		in := make(chan Callback, capacity)
		out := make(chan Callback, capacity)
		trunks.Incoming[node] = in
		trunks.Outgoing[node] = out
		outgoing[node] = out

		wg.Add(1)
		go func(node string, in <-chan Callback) {
			defer wg.Done()
			for cb := range in {
				select {
				case incoming.merged <- received{node: node, cb: cb}:
				case <-incoming.stop:
					cb.Drop()
				}
			}
		}(node, in)
	}
	go func() {
		wg.Wait()
		close(incoming.merged)
	}()

	return incoming, &Outgoing{channels: outgoing}, trunks
}

// Recv returns the next request from any node, together with the sending
// node's name. It returns ErrClosed once the carrier has stopped and all
// buffered requests are drained, or immediately after Close.
func (in *Incoming) Recv(ctx context.Context) (string, Callback, error) {
	select {
	case <-in.stop:
		return "", Callback{}, ErrClosed
	default:
	}
	select {
	case <-ctx.Done():
		return "", Callback{}, ctx.Err()
	case <-in.stop:
		return "", Callback{}, ErrClosed
	case r, ok := <-in.merged:
		if !ok {
			return "", Callback{}, ErrClosed
		}
		return r.node, r.cb, nil
	}
}

// Send queues a request to node and blocks until its response arrives.
//
// It returns ErrUnknownNode for a node that was not configured, and ErrClosed
// if the carrier dropped the request without responding (connection teardown
// or a request-ID collision).
func (out *Outgoing) Send(ctx context.Context, node string, message wire.NodeRequest) (wire.NodeResponse, error) {
	ch, ok := out.channels[node]
	if !ok {
		return wire.NodeResponse{}, ErrUnknownNode
	}
	cb, rx := NewCallback(message)
	select {
	case <-ctx.Done():
		return wire.NodeResponse{}, ctx.Err()
	case ch <- cb:
	}
	select {
	case <-ctx.Done():
		return wire.NodeResponse{}, ctx.Err()
	case resp, ok := <-rx:
		if !ok {
			return wire.NodeResponse{}, ErrClosed
		}
		return resp, nil
	}
}

// Nodes returns the configured node names, in no particular order.
func (out *Outgoing) Nodes() []string {
	nodes := make([]string, 0, len(out.channels))
	for node := range out.channels {
		nodes = append(nodes, node)
	}
	return nodes
}
