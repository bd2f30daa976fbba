package transport

import (
	"sync"

	"github.com/streadway/amqp"
	"go.uber.org/multierr"
)

type (
	// AMQPTransport uses a fanout exchange as the shared broadcast channel.
	// Every endpoint bound to the same bridge name receives every envelope
	// except its own.
	AMQPTransport struct {
		url          string
		name         string
		tag          string
		exchangeName string
		queueName    string
		extConn      bool
		conn         *amqp.Connection
		out          *amqp.Channel
		in           *amqp.Channel
		listeners    Listeners
		mu           sync.Mutex
		available    bool
		done         chan struct{}
	}

	AMQPOptionsFunc func(transport *AMQPTransport)
)

func NewAMQPTransport(name, tag, url string, options ...AMQPOptionsFunc) *AMQPTransport {
	t := &AMQPTransport{
		url:          url,
		name:         name,
		exchangeName: exchangeName(name),
		queueName:    queueName(name, tag),
		tag:          tag,
		done:         make(chan struct{}),
	}

	for _, f := range options {
		f(t)
	}
	return t
}

func SetConnection(conn *amqp.Connection) AMQPOptionsFunc {
	return func(t *AMQPTransport) {
		t.extConn = true
		t.conn = conn
	}
}

// Initialize dials the broker unless a connection was supplied and declares the
// exchange and queue. On failure everything it opened is closed again.
func (t *AMQPTransport) Initialize() (err error) {
	defer func() {
		if err != nil {
			err = multierr.Append(err, t.Close())
		}
	}()

	if t.conn == nil {
		if t.conn, err = amqp.Dial(t.url); err != nil {
			return err
		}
	}

	if t.out, err = t.conn.Channel(); err != nil {
		return err
	}

	if err = t.out.ExchangeDeclare(t.exchangeName, "fanout", false, true, false, false, nil); err != nil {
		return err
	}

	if t.in, err = t.conn.Channel(); err != nil {
		return err
	}

	if _, err = t.in.QueueDeclare(t.queueName, false, true, true, false, nil); err != nil {
		return err
	}

	if err = t.in.QueueBind(t.queueName, "", t.exchangeName, false, nil); err != nil {
		return err
	}

	delivery, err := t.in.Consume(t.queueName, t.tag, true, true, false, false, nil)
	if err != nil {
		return err
	}

	t.mu.Lock()
	t.available = true
	t.mu.Unlock()

	go t.handle(delivery)
	return nil
}

func (t *AMQPTransport) Available() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.available
}

func (t *AMQPTransport) Shutdown() {
	_ = t.Close()
}

func (t *AMQPTransport) Close() error {
	t.mu.Lock()
	t.available = false
	t.mu.Unlock()

	var err error
	if t.in != nil {
		err = multierr.Append(err, t.in.Close())
	}
	if t.out != nil {
		err = multierr.Append(err, t.out.Close())
	}
	if !t.extConn && t.conn != nil {
		err = multierr.Append(err, t.conn.Close())
	}
	return err
}

func (t *AMQPTransport) PostEnvelope(env Envelope) error {
	if !t.Available() {
		return ErrUnavailable
	}
	data, err := Encode(env)
	if err != nil {
		return err
	}
	publishing := amqp.Publishing{
		AppId:       t.tag,
		ContentType: "application/json",
		Body:        data,
	}
	return t.out.Publish(t.exchangeName, "", false, false, publishing)
}

func (t *AMQPTransport) OnEnvelope(l Listener) func() {
	return t.listeners.Add(l)
}

// Done is closed when the consumer stops, e.g. after the broker connection drops.
func (t *AMQPTransport) Done() <-chan struct{} {
	return t.done
}

func (t *AMQPTransport) handle(in <-chan amqp.Delivery) {
	defer close(t.done)
	for d := range in {
		if d.AppId == t.tag {
			continue
		}
		msg := Decode(d.Body)
		msg.Sender = Sender{ID: d.AppId}
		t.listeners.Notify(msg)
	}

	t.mu.Lock()
	t.available = false
	t.mu.Unlock()
}

func exchangeName(name string) string {
	return name + ".bridge.exchange"
}

func queueName(name, tag string) string {
	return name + ".bridge." + tag
}
