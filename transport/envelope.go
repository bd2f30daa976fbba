package transport

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
)

const (
	RequestPrefix = "> "
	ReplyPrefix   = "< "
)

type (
	// ID correlates a request with its reply. It holds the canonical JSON
	// literal of a number or a string; the zero value means no id.
	ID string

	Envelope struct {
		Topic   string          `json:"topic"`
		Payload json.RawMessage `json:"payload,omitempty"`
		ID      ID              `json:"id,omitempty"`
	}

	Kind int

	// Message is an inbound envelope decoded once at the transport boundary.
	Message struct {
		Kind     Kind
		Topic    string
		Envelope Envelope
		Sender   Sender
	}
)

const (
	KindUnrecognized Kind = iota
	KindRequest
	KindReply
)

var errInvalidID = errors.New("id must be a number or a string")

func (k Kind) String() string {
	switch k {
	case KindRequest:
		return "request"
	case KindReply:
		return "reply"
	default:
		return "unrecognized"
	}
}

func NumberID(n int64) ID {
	return ID(strconv.FormatInt(n, 10))
}

func StringID(s string) ID {
	b, _ := json.Marshal(s)
	return ID(b)
}

func (id ID) IsZero() bool {
	return id == ""
}

func (id ID) String() string {
	return string(id)
}

func (id ID) MarshalJSON() ([]byte, error) {
	if id.IsZero() {
		return []byte("null"), nil
	}
	return []byte(id), nil
}

func (id *ID) UnmarshalJSON(data []byte) error {
	canonical, err := canonicalID(data)
	if err != nil {
		return err
	}
	*id = canonical
	return nil
}

func canonicalID(data []byte) (ID, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return "", nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return "", err
	}

	switch value := v.(type) {
	case string:
		return StringID(value), nil
	case json.Number:
		if n, err := value.Int64(); err == nil {
			return NumberID(n), nil
		}
		f, err := value.Float64()
		if err != nil {
			return "", err
		}
		if f == math.Trunc(f) && math.Abs(f) < 1<<63 {
			return NumberID(int64(f)), nil
		}
		return ID(strconv.FormatFloat(f, 'g', -1, 64)), nil
	default:
		return "", errInvalidID
	}
}

func RequestTopic(topic string) string {
	return RequestPrefix + topic
}

func ReplyTopic(topic string) string {
	return ReplyPrefix + topic
}

// Decode parses raw channel data. Anything that is not valid JSON or does not
// carry a direction tag is reported as KindUnrecognized.
func Decode(data []byte) Message {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Message{Kind: KindUnrecognized}
	}

	msg := Message{Envelope: env}
	switch {
	case strings.HasPrefix(env.Topic, RequestPrefix):
		msg.Kind = KindRequest
		msg.Topic = strings.TrimPrefix(env.Topic, RequestPrefix)
	case strings.HasPrefix(env.Topic, ReplyPrefix):
		msg.Kind = KindReply
		msg.Topic = strings.TrimPrefix(env.Topic, ReplyPrefix)
	default:
		msg.Kind = KindUnrecognized
		msg.Topic = env.Topic
	}
	return msg
}

// Encode is the single serialization point shared by every transport.
func Encode(env Envelope) ([]byte, error) {
	return json.Marshal(env)
}
