package transport

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_Kinds(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		kind  Kind
		topic string
		id    ID
	}{
		{"request", `{"topic":"> providerRequest","id":1,"payload":{}}`, KindRequest, "providerRequest", NumberID(1)},
		{"reply", `{"topic":"< providerRequest","id":"a","payload":{}}`, KindReply, "providerRequest", StringID("a")},
		{"host scoped", `{"topic":"> chainChanged:example.com","id":2}`, KindRequest, "chainChanged:example.com", NumberID(2)},
		{"untagged", `{"topic":"providerRequest","id":1}`, KindUnrecognized, "providerRequest", NumberID(1)},
		{"tag without space", `{"topic":">providerRequest"}`, KindUnrecognized, ">providerRequest", ""},
		{"not json", `hello`, KindUnrecognized, "", ""},
		{"bool id", `{"topic":"> x","id":true}`, KindUnrecognized, "", ""},
		{"array", `[1,2]`, KindUnrecognized, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := Decode([]byte(tt.raw))
			assert.Equal(t, tt.kind, msg.Kind)
			assert.Equal(t, tt.topic, msg.Topic)
			assert.Equal(t, tt.id, msg.Envelope.ID)
		})
	}
}

func TestID_Canonical(t *testing.T) {
	var a, b, c, d ID
	require.NoError(t, json.Unmarshal([]byte(`1.0`), &a))
	require.NoError(t, json.Unmarshal([]byte(`1`), &b))
	require.NoError(t, json.Unmarshal([]byte(`"1"`), &c))
	require.NoError(t, json.Unmarshal([]byte(`null`), &d))

	assert.Equal(t, NumberID(1), a)
	assert.Equal(t, a, b)
	assert.NotEqual(t, b, c)
	assert.Equal(t, StringID("1"), c)
	assert.True(t, d.IsZero())

	var e ID
	require.NoError(t, json.Unmarshal([]byte(`1.5`), &e))
	assert.Equal(t, ID("1.5"), e)

	assert.Error(t, json.Unmarshal([]byte(`{}`), &e))
}

func TestEncode_OmitsAbsentFields(t *testing.T) {
	data, err := Encode(Envelope{Topic: RequestTopic("reload")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"topic":"> reload"}`, string(data))

	data, err = Encode(Envelope{Topic: ReplyTopic("x"), ID: StringID("q\"uote"), Payload: json.RawMessage(`{"response":1}`)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"topic":"< x","id":"q\"uote","payload":{"response":1}}`, string(data))

	msg := Decode(data)
	assert.Equal(t, StringID("q\"uote"), msg.Envelope.ID)
}

func TestReplyTopic_MirrorsRequestTopic(t *testing.T) {
	msg := Decode([]byte(`{"topic":"> a > b"}`))
	require.Equal(t, KindRequest, msg.Kind)
	assert.Equal(t, "a > b", msg.Topic)
	assert.Equal(t, "< a > b", ReplyTopic(msg.Topic))
}

func TestListeners_AddRemove(t *testing.T) {
	var l Listeners
	var calls []string

	removeA := l.Add(func(Message) { calls = append(calls, "a") })
	l.Add(func(Message) { calls = append(calls, "b") })
	assert.Equal(t, 2, l.Len())

	l.Notify(Message{})
	assert.Equal(t, []string{"a", "b"}, calls)

	removeA()
	removeA()
	assert.Equal(t, 1, l.Len())

	calls = nil
	l.Notify(Message{})
	assert.Equal(t, []string{"b"}, calls)
}
