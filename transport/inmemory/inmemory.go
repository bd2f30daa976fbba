// In-memory implementation of transport. Two endpoints created by Pipe
// behave like the two ends of a webview postMessage channel.
// Meant for tests and examples.

package inmemory

import (
	"context"
	"sync"

	"github.com/RidgeA/dapp-bridge/transport"
)

const queueSize = 1024

type (
	Endpoint struct {
		name        string
		url         string
		peer        *Endpoint
		queue       chan []byte
		listeners   transport.Listeners
		ctx         context.Context
		cancel      context.CancelFunc
		mu          sync.Mutex
		initialized bool
	}

	OptionsFunc func(*Endpoint)
)

// Pipe returns two connected endpoints. Data posted on one is delivered, in
// order, to the listeners of the other.
func Pipe(a, b string, options ...OptionsFunc) (*Endpoint, *Endpoint) {
	left := newEndpoint(a)
	right := newEndpoint(b)
	left.peer, right.peer = right, left

	for _, f := range options {
		f(left)
		f(right)
	}
	return left, right
}

// SetURL sets the URL reported as Sender.URL to the remote side.
func SetURL(name, url string) OptionsFunc {
	return func(e *Endpoint) {
		if e.name == name {
			e.url = url
		}
	}
}

func newEndpoint(name string) *Endpoint {
	ctx, cancel := context.WithCancel(context.Background())
	return &Endpoint{
		name:   name,
		queue:  make(chan []byte, queueSize),
		ctx:    ctx,
		cancel: cancel,
	}
}

func (e *Endpoint) Name() string {
	return e.name
}

func (e *Endpoint) Initialize() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.initialized && e.ctx.Err() == nil {
		e.initialized = true
		go e.dispatch()
	}
	return nil
}

func (e *Endpoint) Shutdown() {
	e.cancel()
}

func (e *Endpoint) Available() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.initialized && e.ctx.Err() == nil
}

func (e *Endpoint) PostEnvelope(env transport.Envelope) error {
	if !e.Available() {
		return transport.ErrUnavailable
	}
	data, err := transport.Encode(env)
	if err != nil {
		return err
	}
	return e.PostRaw(data)
}

// PostRaw places arbitrary bytes on the channel towards the peer.
func (e *Endpoint) PostRaw(data []byte) error {
	if e.ctx.Err() != nil || e.peer.ctx.Err() != nil {
		return transport.ErrClosed
	}
	select {
	case <-e.ctx.Done():
		return transport.ErrClosed
	case <-e.peer.ctx.Done():
		return transport.ErrClosed
	case e.peer.queue <- data:
		return nil
	}
}

func (e *Endpoint) OnEnvelope(l transport.Listener) func() {
	return e.listeners.Add(l)
}

func (e *Endpoint) dispatch() {
	sender := transport.Sender{ID: e.peer.name, URL: e.peer.url}
	for {
		select {
		case data := <-e.queue:
			msg := transport.Decode(data)
			msg.Sender = sender
			e.listeners.Notify(msg)
		case <-e.ctx.Done():
			return
		}
	}
}
