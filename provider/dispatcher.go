package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	bridge "github.com/RidgeA/dapp-bridge"
)

type (
	// HandlerFunc executes one provider method against wallet state.
	HandlerFunc func(ctx context.Context, req Request) (interface{}, error)

	// Dispatcher maps providerRequest calls to wallet side handlers.
	Dispatcher struct {
		mu       sync.RWMutex
		handlers map[RPCMethod]HandlerFunc
		fallback HandlerFunc
	}
)

func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		handlers: make(map[RPCMethod]HandlerFunc),
	}
}

func (d *Dispatcher) Handle(method RPCMethod, f HandlerFunc) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[method] = f
}

// HandleUnknown installs f for every method without a dedicated handler.
func (d *Dispatcher) HandleUnknown(f HandlerFunc) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fallback = f
}

// Serve answers providerRequest calls arriving at r until the returned
// function is called.
func (d *Dispatcher) Serve(r bridge.Replier, options ...bridge.HandlerOptionsFunc) func() {
	return r.Reply(RequestTopic, d.serve, options...)
}

func (d *Dispatcher) serve(ctx context.Context, payload json.RawMessage, meta bridge.CallbackOptions) (interface{}, error) {
	var req Request
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, fmt.Errorf("decode provider request: %w", err)
	}
	// Meta always comes from the channel, never from the page.
	req.Meta = &meta
	return d.Dispatch(ctx, req), nil
}

// Dispatch runs the handler for req.Method and wraps the outcome in a
// Response carrying req.ID.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) Response {
	resp := Response{ID: req.ID}

	f := d.lookup(req.Method)
	if f == nil {
		resp.Error = NewError(CodeUnsupportedMethod, "the provider does not support %s", req.Method)
		return resp
	}

	result, err := f(ctx, req)
	if err != nil {
		var rpcErr *RPCError
		if errors.As(err, &rpcErr) {
			resp.Error = rpcErr
		} else {
			resp.Error = &RPCError{Code: CodeInternal, Message: err.Error()}
		}
		return resp
	}

	if result != nil {
		raw, err := json.Marshal(result)
		if err != nil {
			resp.Error = &RPCError{Code: CodeInternal, Message: err.Error()}
			return resp
		}
		resp.Result = raw
	}
	return resp
}

func (d *Dispatcher) lookup(method RPCMethod) HandlerFunc {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if f, ok := d.handlers[method]; ok {
		return f
	}
	return d.fallback
}
