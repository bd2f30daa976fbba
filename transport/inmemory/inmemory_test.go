package inmemory

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/RidgeA/dapp-bridge/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(e *Endpoint) <-chan transport.Message {
	out := make(chan transport.Message, 128)
	e.OnEnvelope(func(msg transport.Message) { out <- msg })
	return out
}

func next(t *testing.T, in <-chan transport.Message) transport.Message {
	t.Helper()
	select {
	case msg := <-in:
		return msg
	case <-time.After(time.Second):
		t.Fatal("nothing delivered")
		return transport.Message{}
	}
}

func TestPipe_DeliversInOrder(t *testing.T) {
	a, b := Pipe("page", "wallet", SetURL("page", "https://app.example.com"))
	require.NoError(t, a.Initialize())
	require.NoError(t, b.Initialize())
	defer a.Shutdown()
	defer b.Shutdown()

	in := collect(b)
	for i := int64(0); i < 100; i++ {
		require.NoError(t, a.PostEnvelope(transport.Envelope{
			Topic: transport.RequestTopic("seq"),
			ID:    transport.NumberID(i),
		}))
	}

	for i := int64(0); i < 100; i++ {
		msg := next(t, in)
		assert.Equal(t, transport.NumberID(i), msg.Envelope.ID)
		assert.Equal(t, "page", msg.Sender.ID)
		assert.Equal(t, "https://app.example.com", msg.Sender.URL)
	}
}

func TestPipe_IsBidirectional(t *testing.T) {
	a, b := Pipe("page", "wallet")
	require.NoError(t, a.Initialize())
	require.NoError(t, b.Initialize())
	defer a.Shutdown()
	defer b.Shutdown()

	fromB := collect(a)
	require.NoError(t, b.PostEnvelope(transport.Envelope{
		Topic:   transport.ReplyTopic("x"),
		Payload: json.RawMessage(`{"response":1}`),
	}))

	msg := next(t, fromB)
	assert.Equal(t, transport.KindReply, msg.Kind)
	assert.Equal(t, "wallet", msg.Sender.ID)
	assert.Empty(t, msg.Sender.URL)
}

func TestPipe_RawDataIsUnrecognized(t *testing.T) {
	a, b := Pipe("page", "wallet")
	require.NoError(t, b.Initialize())
	defer a.Shutdown()
	defer b.Shutdown()

	in := collect(b)
	require.NoError(t, a.PostRaw([]byte("not json")))
	assert.Equal(t, transport.KindUnrecognized, next(t, in).Kind)
}

func TestEndpoint_Availability(t *testing.T) {
	a, b := Pipe("page", "wallet")
	defer b.Shutdown()

	assert.False(t, a.Available())
	assert.ErrorIs(t, a.PostEnvelope(transport.Envelope{Topic: "> x"}), transport.ErrUnavailable)

	require.NoError(t, a.Initialize())
	assert.True(t, a.Available())

	a.Shutdown()
	assert.False(t, a.Available())
	assert.ErrorIs(t, a.PostRaw([]byte("{}")), transport.ErrClosed)
}
