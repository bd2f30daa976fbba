package bridge

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/RidgeA/dapp-bridge/transport"
)

// Reply serves every inbound request on topic with f until the returned
// function is called. Topic Wildcard matches requests on any topic.
func (m *Messenger) Reply(topic string, f HandlerFunc, options ...HandlerOptionsFunc) func() {
	if topic == "" {
		m.errorf("Refusing to register handler: %v", ErrEmptyTopic)
		return func() {}
	}

	h := &handler{
		topic:   topic,
		handler: f,
	}
	for _, setter := range options {
		setter(h)
	}
	if h.throughput > 0 {
		h.limit = make(chan struct{}, h.throughput)
	}

	m.mu.Lock()
	m.nextHandler++
	h.id = m.nextHandler
	m.handlers = append(m.handlers, h)
	m.mu.Unlock()
	m.debug("Registered handler for topic %s", topic)

	var once sync.Once
	return func() {
		once.Do(func() { m.removeHandler(h.id) })
	}
}

func (m *Messenger) removeHandler(id uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, h := range m.handlers {
		if h.id == id {
			m.debug("Removing handler for topic %s", h.topic)
			m.handlers = append(m.handlers[:i], m.handlers[i+1:]...)
			return
		}
	}
}

func (m *Messenger) serve(msg transport.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopped {
		return
	}

	for _, h := range m.handlers {
		if h.topic == msg.Topic || h.topic == Wildcard {
			m.wg.Add(1)
			go m.invoke(h, msg)
		}
	}
}

func (m *Messenger) invoke(h *handler, msg transport.Message) {
	defer m.wg.Done()

	if h.limit != nil {
		select {
		case h.limit <- struct{}{}:
			defer func() { <-h.limit }()
		case <-m.ctx.Done():
			return
		}
	}

	meta := CallbackOptions{
		Topic:  msg.Topic,
		Sender: msg.Sender,
		ID:     msg.Envelope.ID,
	}

	var body replyBody
	response, err := m.call(h.handler, msg.Envelope.Payload, meta)
	if err == nil {
		body.Response, err = marshalPayload(response)
	}
	if err != nil {
		m.errorf("Handler for %s failed, id: %s: %v", msg.Topic, msg.Envelope.ID, err)
		m.metrics.handlerErrors.Inc()
		body = replyBody{Error: &WireError{Message: err.Error()}}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		m.errorf("Encoding reply for %s failed: %v", msg.Topic, err)
		return
	}

	err = m.t.PostEnvelope(transport.Envelope{
		Topic:   transport.ReplyTopic(msg.Topic),
		Payload: payload,
		ID:      msg.Envelope.ID,
	})
	if err != nil {
		m.errorf("Sending reply for %s failed, id: %s: %v", msg.Topic, msg.Envelope.ID, err)
		return
	}
	m.metrics.sent.WithLabelValues(transport.KindReply.String()).Inc()
}

func (m *Messenger) call(f HandlerFunc, payload json.RawMessage, meta CallbackOptions) (response interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return f(m.ctx, payload, meta)
}
