package bridge

import (
	"context"
	"encoding/json"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/RidgeA/dapp-bridge/transport"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	errorLog = func(format string, args ...interface{}) { zap.S().Errorf(format, args...) }
	infoLog  = func(format string, args ...interface{}) { zap.S().Infof(format, args...) }
	debugLog = func(format string, args ...interface{}) { zap.S().Debugf(format, args...) }
)

// Wildcard subscribes a handler to every inbound request regardless of topic.
const Wildcard = "*"

type (
	Sender interface {
		Send(ctx context.Context, topic string, payload interface{}, id transport.ID) (json.RawMessage, error)
	}

	Replier interface {
		Reply(topic string, f HandlerFunc, options ...HandlerOptionsFunc) (unsubscribe func())
	}

	LogFunc func(string, ...interface{})

	// HandlerFunc serves one inbound request. The returned value is encoded
	// as the reply's response; a returned error becomes the reply's error.
	HandlerFunc func(ctx context.Context, payload json.RawMessage, meta CallbackOptions) (interface{}, error)

	OptionsFunc func(*Messenger)

	HandlerOptionsFunc func(*handler)

	CallbackOptions struct {
		Topic  string           `json:"topic"`
		Sender transport.Sender `json:"sender"`
		ID     transport.ID     `json:"id,omitempty"`
	}

	// Messenger implements request/reply over a Transport. Every instance
	// can both send requests and serve them.
	Messenger struct {
		errorf, info, debug LogFunc
		t                   transport.Transport
		url                 string
		name                string
		instanceId          string
		timeout             time.Duration
		metrics             *Metrics

		ctx    context.Context
		cancel context.CancelFunc
		wg     sync.WaitGroup

		mu            sync.Mutex
		pending       map[string]map[*pending]struct{}
		handlers      []*handler
		nextHandler   uint64
		stopListening func()
		stopped       bool
	}

	handler struct {
		id         uint64
		topic      string
		handler    HandlerFunc
		throughput uint
		limit      chan struct{}
	}

	pending struct {
		id     transport.ID
		result chan result
	}

	result struct {
		response json.RawMessage
		err      error
	}

	// replyBody is the payload shape of every reply envelope this side posts.
	replyBody struct {
		Response json.RawMessage `json:"response,omitempty"`
		Error    *WireError      `json:"error,omitempty"`
	}

	WireError struct {
		Message string `json:"message"`
	}
)

func New(name string, opts ...OptionsFunc) *Messenger {
	m := new(Messenger)
	m.name = name
	m.errorf = errorLog
	m.info = infoLog
	m.debug = debugLog
	m.instanceId = m.createInstanceId()
	m.pending = make(map[string]map[*pending]struct{})
	m.ctx, m.cancel = context.WithCancel(context.Background())

	for _, setter := range opts {
		setter(m)
	}

	if m.metrics == nil {
		m.metrics = NewMetrics(nil)
	}

	if m.t == nil {
		m.t = transport.NewAMQPTransport(m.name, m.instanceId, m.url)
	}
	return m
}

func SetError(f LogFunc) OptionsFunc {
	return func(m *Messenger) {
		m.errorf = f
	}
}

func SetInfo(f LogFunc) OptionsFunc {
	return func(m *Messenger) {
		m.info = f
	}
}

func SetDebug(f LogFunc) OptionsFunc {
	return func(m *Messenger) {
		m.debug = f
	}
}

// SetLogger routes all three log levels to l.
func SetLogger(l *zap.Logger) OptionsFunc {
	return func(m *Messenger) {
		s := l.Sugar().With("messenger", m.name)
		m.errorf = s.Errorf
		m.info = s.Infof
		m.debug = s.Debugf
	}
}

// SetUrl is the AMQP url used when no transport is set explicitly.
func SetUrl(url string) OptionsFunc {
	return func(m *Messenger) {
		m.url = url
	}
}

func SetTransport(t transport.Transport) OptionsFunc {
	return func(m *Messenger) {
		m.t = t
	}
}

// SetRequestTimeout bounds every Send in addition to its context. Zero means
// a request waits until its context is done.
func SetRequestTimeout(d time.Duration) OptionsFunc {
	return func(m *Messenger) {
		m.timeout = d
	}
}

func SetMetrics(metrics *Metrics) OptionsFunc {
	return func(m *Messenger) {
		m.metrics = metrics
	}
}

// SetHandlerThroughput limits concurrent invocations of one handler.
func SetHandlerThroughput(throughput uint) HandlerOptionsFunc {
	return func(h *handler) {
		h.throughput = throughput
	}
}

func (m *Messenger) Name() string {
	return m.name
}

func (m *Messenger) InstanceID() string {
	return m.instanceId
}

func (m *Messenger) Available() bool {
	return m.t.Available()
}

func (m *Messenger) Start() error {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return ErrShutdown
	}
	if m.stopListening == nil {
		m.stopListening = m.t.OnEnvelope(m.dispatch)
	}
	m.mu.Unlock()

	if err := m.t.Initialize(); err != nil {
		return err
	}

	if !m.t.Available() {
		m.errorf("Transport of messenger %s is not available", m.name)
		return nil
	}
	m.info("Messenger %s started", m.instanceId)
	return nil
}

// Shutdown releases pending requests with ErrShutdown, waits for running
// handlers and shuts the transport down.
func (m *Messenger) Shutdown() {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return
	}
	m.stopped = true
	stop := m.stopListening
	m.mu.Unlock()

	m.info("Shutting down messenger %s", m.instanceId)
	m.cancel()
	if stop != nil {
		stop()
	}
	m.wg.Wait()
	m.t.Shutdown()
}

func (m *Messenger) dispatch(msg transport.Message) {
	m.metrics.received.WithLabelValues(msg.Kind.String()).Inc()

	switch msg.Kind {
	case transport.KindRequest:
		m.serve(msg)
	case transport.KindReply:
		m.settle(msg)
	default:
		m.debug("Ignoring unrecognized envelope, topic: %q", msg.Envelope.Topic)
	}
}

func (m *Messenger) createInstanceId() string {
	host, err := os.Hostname()
	if err != nil {
		host = "unknown.host"
	}
	pid := strconv.Itoa(os.Getpid())
	return m.name + "." + pid + "." + host + "." + uuid.New().String()[:8]
}

func marshalPayload(payload interface{}) (json.RawMessage, error) {
	switch p := payload.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		return p, nil
	default:
		return json.Marshal(payload)
	}
}
