package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/RidgeA/dapp-bridge/transport"
)

// Send posts payload as a request on topic and waits for the first matching
// reply. When id is not zero only a reply carrying the same id matches.
func (m *Messenger) Send(ctx context.Context, topic string, payload interface{}, id transport.ID) (json.RawMessage, error) {
	if topic == "" {
		return nil, ErrEmptyTopic
	}
	if m.ctx.Err() != nil {
		return nil, ErrShutdown
	}

	body, err := marshalPayload(payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload for %s: %w", topic, err)
	}

	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	m.debug("Sending request, topic: %s, id: %s", topic, id)
	p := m.addPending(topic, id)
	defer m.removePending(topic, p)

	err = m.t.PostEnvelope(transport.Envelope{
		Topic:   transport.RequestTopic(topic),
		Payload: body,
		ID:      id,
	})
	if err != nil {
		return nil, err
	}
	m.metrics.sent.WithLabelValues(transport.KindRequest.String()).Inc()

	select {
	case r := <-p.result:
		m.debug("Got reply, topic: %s, id: %s", topic, id)
		return r.response, r.err
	case <-ctx.Done():
		m.info("Request abandoned, topic: %s, id: %s: %v", topic, id, ctx.Err())
		return nil, ctx.Err()
	case <-m.ctx.Done():
		return nil, ErrShutdown
	}
}

func (m *Messenger) settle(msg transport.Message) {
	r, ok := decodeReply(msg.Envelope.Payload)
	if !ok {
		return
	}

	m.mu.Lock()
	var matched []*pending
	for p := range m.pending[msg.Topic] {
		if p.id.IsZero() || p.id == msg.Envelope.ID {
			matched = append(matched, p)
			delete(m.pending[msg.Topic], p)
		}
	}
	if len(m.pending[msg.Topic]) == 0 {
		delete(m.pending, msg.Topic)
	}
	m.mu.Unlock()

	if len(matched) == 0 {
		m.debug("No pending request for reply, topic: %s, id: %s", msg.Topic, msg.Envelope.ID)
		return
	}
	for _, p := range matched {
		m.metrics.pending.Dec()
		p.result <- r
	}
}

func (m *Messenger) addPending(topic string, id transport.ID) *pending {
	p := &pending{
		id:     id,
		result: make(chan result, 1),
	}
	m.mu.Lock()
	if m.pending[topic] == nil {
		m.pending[topic] = make(map[*pending]struct{})
	}
	m.pending[topic][p] = struct{}{}
	m.mu.Unlock()
	m.metrics.pending.Inc()
	return p
}

func (m *Messenger) removePending(topic string, p *pending) {
	m.mu.Lock()
	_, exists := m.pending[topic][p]
	if exists {
		delete(m.pending[topic], p)
		if len(m.pending[topic]) == 0 {
			delete(m.pending, topic)
		}
	}
	m.mu.Unlock()
	if exists {
		m.metrics.pending.Dec()
	}
}

// decodeReply reports false for a missing or falsy payload, which never
// settles a request. Any truthy error field rejects, whatever its shape.
func decodeReply(payload json.RawMessage) (result, bool) {
	if !truthy(payload) {
		return result{}, false
	}

	var body struct {
		Response json.RawMessage `json:"response"`
		Error    json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		// Not an object: there is neither a response nor an error.
		return result{}, true
	}
	if truthy(body.Error) {
		return result{err: &RemoteError{Message: errorMessage(body.Error)}}, true
	}
	return result{response: body.Response}, true
}

// errorMessage extracts the message of an error object, "" for any other
// shape.
func errorMessage(raw json.RawMessage) string {
	var obj struct {
		Message json.RawMessage `json:"message"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return ""
	}
	var message string
	if err := json.Unmarshal(obj.Message, &message); err != nil {
		return ""
	}
	return message
}

func truthy(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	switch string(raw) {
	case "", "null", "false", "0", `""`:
		return false
	}
	return true
}
