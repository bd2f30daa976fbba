package transport

import (
	"errors"
	"sync"
)

var (
	ErrUnavailable = errors.New("transport is not available")
	ErrClosed      = errors.New("transport is closed")
)

//go:generate mockgen -destination=mock/mock_transport.go -package=mock_transport github.com/RidgeA/dapp-bridge/transport Transport

type (
	Transport interface {
		Initialize() error
		Shutdown()
		Available() bool
		PostEnvelope(Envelope) error
		OnEnvelope(Listener) (remove func())
	}

	Listener func(Message)

	// Sender describes the remote end of the channel a message arrived on.
	Sender struct {
		ID  string `json:"id,omitempty"`
		URL string `json:"url,omitempty"`
	}

	// Listeners is the fan-out list every transport delivers decoded
	// messages through. Listeners run in registration order.
	Listeners struct {
		mu      sync.RWMutex
		next    uint64
		entries []listenerEntry
	}

	listenerEntry struct {
		id uint64
		fn Listener
	}
)

func (l *Listeners) Add(fn Listener) func() {
	l.mu.Lock()
	l.next++
	id := l.next
	l.entries = append(l.entries, listenerEntry{id: id, fn: fn})
	l.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { l.remove(id) })
	}
}

func (l *Listeners) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

func (l *Listeners) Notify(msg Message) {
	l.mu.RLock()
	snapshot := make([]Listener, 0, len(l.entries))
	for _, e := range l.entries {
		snapshot = append(snapshot, e.fn)
	}
	l.mu.RUnlock()

	for _, fn := range snapshot {
		fn(msg)
	}
}

func (l *Listeners) remove(id uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, e := range l.entries {
		if e.id == id {
			l.entries = append(l.entries[:i], l.entries[i+1:]...)
			return
		}
	}
}
