package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"

	bridge "github.com/RidgeA/dapp-bridge"
	"github.com/RidgeA/dapp-bridge/transport"
)

type (
	// EthereumProvider is what the wallet router hands out to pages.
	EthereumProvider interface {
		Request(ctx context.Context, method RPCMethod, params ...interface{}) (json.RawMessage, error)
	}

	EventListener func(payload json.RawMessage)

	// Provider is the injected provider living on the page side of the bridge.
	Provider struct {
		sender bridge.Sender
		nextID int64

		mu        sync.RWMutex
		listeners map[Event][]listenerEntry
		nextEntry uint64
	}

	listenerEntry struct {
		id uint64
		fn EventListener
	}
)

func NewProvider(sender bridge.Sender) *Provider {
	return &Provider{
		sender:    sender,
		listeners: make(map[Event][]listenerEntry),
	}
}

// Request sends method over the providerRequest topic and returns its result.
func (p *Provider) Request(ctx context.Context, method RPCMethod, params ...interface{}) (json.RawMessage, error) {
	encoded, err := encodeParams(params)
	if err != nil {
		return nil, err
	}

	id := atomic.AddInt64(&p.nextID, 1)
	req := Request{
		Method: method,
		Params: encoded,
		ID:     id,
	}

	raw, err := p.sender.Send(ctx, RequestTopic, req, transport.NumberID(id))
	if err != nil {
		return nil, err
	}

	var resp Response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", method, err)
	}
	if resp.Error != nil {
		return nil, resp.Error
	}
	return resp.Result, nil
}

// On registers fn for event and returns a function removing it.
func (p *Provider) On(event Event, fn EventListener) func() {
	p.mu.Lock()
	p.nextEntry++
	id := p.nextEntry
	p.listeners[event] = append(p.listeners[event], listenerEntry{id: id, fn: fn})
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		entries := p.listeners[event]
		for i, e := range entries {
			if e.id == id {
				p.listeners[event] = append(entries[:i], entries[i+1:]...)
				return
			}
		}
	}
}

func (p *Provider) ListenerCount(event Event) int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.listeners[event])
}

func (p *Provider) Emit(event Event, payload json.RawMessage) {
	p.mu.RLock()
	entries := append([]listenerEntry(nil), p.listeners[event]...)
	p.mu.RUnlock()

	for _, e := range entries {
		e.fn(payload)
	}
}
