package transport

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/multierr"
)

const closeGracePeriod = time.Second

// WebSocket carries envelopes as text frames over a single connection, one
// envelope per frame.
type WebSocket struct {
	conn      *websocket.Conn
	sender    Sender
	listeners Listeners

	writeMu sync.Mutex

	mu          sync.Mutex
	initialized bool
	closed      bool
	err         error
	done        chan struct{}
}

// NewWebSocket wraps an accepted or dialed connection. sender describes the
// remote side; an empty ID is replaced with a random one.
func NewWebSocket(conn *websocket.Conn, sender Sender) *WebSocket {
	if sender.ID == "" {
		sender.ID = uuid.New().String()
	}
	return &WebSocket{
		conn:   conn,
		sender: sender,
		done:   make(chan struct{}),
	}
}

func DialWebSocket(ctx context.Context, url string, header http.Header) (*WebSocket, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if err != nil {
		return nil, err
	}
	return NewWebSocket(conn, Sender{URL: url}), nil
}

func (t *WebSocket) Sender() Sender {
	return t.sender
}

func (t *WebSocket) Initialize() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return ErrClosed
	}
	if !t.initialized {
		t.initialized = true
		go t.readLoop()
	}
	return nil
}

func (t *WebSocket) Available() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.conn != nil && t.initialized && !t.closed
}

func (t *WebSocket) PostEnvelope(env Envelope) error {
	if !t.Available() {
		return ErrUnavailable
	}
	data, err := Encode(env)
	if err != nil {
		return err
	}

	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	return t.conn.WriteMessage(websocket.TextMessage, data)
}

func (t *WebSocket) OnEnvelope(l Listener) func() {
	return t.listeners.Add(l)
}

// Done is closed once the connection has stopped reading.
func (t *WebSocket) Done() <-chan struct{} {
	return t.done
}

// Err reports why the read loop stopped, nil for a normal closure.
func (t *WebSocket) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

func (t *WebSocket) Shutdown() {
	_ = t.Close()
}

func (t *WebSocket) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	started := t.initialized
	t.mu.Unlock()

	t.writeMu.Lock()
	err := t.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(closeGracePeriod),
	)
	t.writeMu.Unlock()
	if err == websocket.ErrCloseSent {
		err = nil
	}

	err = multierr.Append(err, t.conn.Close())
	if !started {
		close(t.done)
	}
	return err
}

func (t *WebSocket) readLoop() {
	defer close(t.done)
	for {
		kind, data, err := t.conn.ReadMessage()
		if err != nil {
			t.mu.Lock()
			closing := t.closed
			t.closed = true
			if !closing && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				t.err = err
			}
			t.mu.Unlock()
			if !closing {
				_ = t.conn.Close()
			}
			return
		}
		if kind != websocket.TextMessage && kind != websocket.BinaryMessage {
			continue
		}
		msg := Decode(data)
		msg.Sender = t.sender
		t.listeners.Notify(msg)
	}
}
