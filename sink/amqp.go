package sink

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// DefaultPublishTimeout bounds each publish when the caller's context has
// no earlier deadline.
const DefaultPublishTimeout = 30 * time.Second

// ErrNotConnected is returned when publishing on a closed publisher.
var ErrNotConnected = errors.New("not connected to a broker")

// Channel is the subset of *amqp.Channel the publisher needs.
type Channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPPublisher publishes reports as persistent JSON messages to a durable
// queue on the default exchange.
type AMQPPublisher struct {
	ch      Channel
	conn    *amqp.Connection
	queue   string
	timeout time.Duration
	closed  bool
}

// NewAMQPPublisher declares queue on ch and returns a publisher using it.
func NewAMQPPublisher(ch Channel, queue string) (*AMQPPublisher, error) {
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("sink: declare queue %q: %w", queue, err)
	}
	return &AMQPPublisher{ch: ch, queue: queue, timeout: DefaultPublishTimeout}, nil
}

// DialAMQP connects to url, opens a channel and declares queue.
func DialAMQP(url, queue string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("sink: dial broker: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("sink: open channel: %w", err)
	}
	p, err := NewAMQPPublisher(ch, queue)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	p.conn = conn
	return p, nil
}

// SetTimeout changes the per-publish timeout. Non-positive values are ignored.
func (p *AMQPPublisher) SetTimeout(d time.Duration) {
	if d > 0 {
		p.timeout = d
	}
}

// Queue returns the queue name.
func (p *AMQPPublisher) Queue() string {
	return p.queue
}

// Write publishes r.
func (p *AMQPPublisher) Write(ctx context.Context, r Report) error {
	if p.closed {
		return ErrNotConnected
	}

	body, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("sink: encode report: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	err = p.ch.PublishWithContext(ctx,
		"",      // exchange
		p.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    r.MessageID,
			Timestamp:    r.ValidatedAt,
			Type:         "anthrocheck.report",
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("sink: publish report %s: %w", r.MessageID, err)
	}
	return nil
}

// Close closes the channel and, when dialled, the connection.
func (p *AMQPPublisher) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true

	err := p.ch.Close()
	if p.conn != nil {
		err = errors.Join(err, p.conn.Close())
	}
	return err
}
