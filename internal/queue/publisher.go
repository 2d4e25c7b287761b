package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/campus-connect/internal/service"
)

// channel is the part of *amqp.Channel the publisher uses.
type channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// dialer opens a channel and returns the func that tears the connection
// down again.  It must give up once ctx is done.
type dialer func(ctx context.Context, url string) (channel, func() error, error)

// dialAMQP bounds the TCP connect by the time left on ctx.  The AMQP
// handshake is covered by the same deadline through the caller's select.
func dialAMQP(ctx context.Context, url string) (channel, func() error, error) {
	timeout := 30 * time.Second
	if dl, ok := ctx.Deadline(); ok {
		timeout = time.Until(dl)
	}
	if timeout <= 0 {
		return nil, nil, context.DeadlineExceeded
	}
	conn, err := amqp.DialConfig(url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(timeout),
	})
	if err != nil {
		return nil, nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	return ch, conn.Close, nil
}

// Publisher implements service.ContactHandoff.  Each hand-off dials the
// broker, publishes one persistent message to the default exchange and
// disconnects.  The whole exchange is bounded by the caller's deadline and
// by timeout, whichever is sooner.  Failures are returned for the caller
// to log; nothing is retried.
type Publisher struct {
	url     string
	timeout time.Duration
	log     *slog.Logger
	dial    dialer
}

// NewPublisher returns a publisher for the broker at url.
func NewPublisher(url string, log *slog.Logger) *Publisher {
	return &Publisher{url: url, timeout: 3 * time.Second, log: log, dial: dialAMQP}
}

var _ service.ContactHandoff = (*Publisher)(nil)

// Handoff publishes c as a RequestAcceptedEvent.  It returns as soon as
// ctx is done even if the broker is still connecting; the abandoned
// attempt closes its own connection when it finishes.
func (p *Publisher) Handoff(ctx context.Context, c service.Contact) error {
	body, err := json.Marshal(EventFromContact(c))
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- p.publish(ctx, c.RequestID, body) }()

	select {
	case err := <-done:
		if err != nil {
			return err
		}
		p.log.DebugContext(ctx, "contact hand-off published", "request_id", c.RequestID)
		return nil
	case <-ctx.Done():
		return fmt.Errorf("handoff: %w", ctx.Err())
	}
}

func (p *Publisher) publish(ctx context.Context, requestID uint64, body []byte) error {
	ch, closeConn, err := p.dial(ctx, p.url)
	if err != nil {
		return fmt.Errorf("dial broker: %w", err)
	}
	defer func() { _ = closeConn() }()
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(QueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	err = ch.PublishWithContext(ctx, "", QueueName, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		MessageId:    fmt.Sprintf("request-%d", requestID),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}
