package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"finax/internal/logger"

	"github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 5 * time.Second

// ErrDeliveriesClosed is returned by Consume when the broker closes the delivery channel.
var ErrDeliveriesClosed = errors.New("delivery channel closed")

// ErrConnectionClosed is returned by Closed when the broker connection ends.
var ErrConnectionClosed = errors.New("amqp connection closed")

// channel is the part of *amqp091.Channel the queue uses.
type channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp091.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp091.Table) (amqp091.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp091.Table) error
	Qos(prefetchCount, prefetchSize int, global bool) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp091.Table) (<-chan amqp091.Delivery, error)
	Close() error
}

// Queue publishes messages to a durable AMQP queue and consumes them in the worker.
type Queue struct {
	conn        *amqp091.Connection
	notifyClose func(chan *amqp091.Error) chan *amqp091.Error
	ch          channel
	exchange    string
	queue       string
	log         *logger.Logger
}

func DialQueue(url, exchange, queue string, log *logger.Logger) (*Queue, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	q, err := newQueue(ch, exchange, queue, log)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	q.conn = conn
	q.notifyClose = conn.NotifyClose
	return q, nil
}

func newQueue(ch channel, exchange, queue string, log *logger.Logger) (*Queue, error) {
	q := &Queue{ch: ch, exchange: exchange, queue: queue, log: log}
	if err := q.setup(); err != nil {
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
	}
	return q, nil
}

func (q *Queue) setup() error {
	if err := q.ch.ExchangeDeclare(q.exchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}
	if _, err := q.ch.QueueDeclare(q.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	// routing key is the queue name
	if err := q.ch.QueueBind(q.queue, q.queue, q.exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

// Send publishes m as a persistent JSON message.
func (q *Queue) Send(ctx context.Context, m Message) error {
	if err := m.Validate(); err != nil {
		return err
	}
	body, err := m.Encode()
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = q.ch.PublishWithContext(ctx, q.exchange, q.queue, false, false, amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		Timestamp:    time.Now(),
		Type:         m.Kind,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish %s message: %w", m.Kind, err)
	}

	if q.log != nil {
		q.log.Infow("mail_queued", "kind", m.Kind, "exchange", q.exchange, "queue", q.queue)
	}
	return nil
}

// Consume hands each queued message to handle until ctx is done.
// Malformed and undeliverable messages are dropped; other handler failures are requeued.
func (q *Queue) Consume(ctx context.Context, handle func(context.Context, Message) error) error {
	if err := q.ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}
	deliveries, err := q.ch.Consume(q.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	if q.log != nil {
		q.log.Infow("mail_consumer_started", "queue", q.queue)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return ErrDeliveriesClosed
			}
			q.process(ctx, d, handle)
		}
	}
}

func (q *Queue) process(ctx context.Context, d amqp091.Delivery, handle func(context.Context, Message) error) {
	m, err := DecodeMessage(d.Body)
	if err != nil {
		if q.log != nil {
			q.log.Warnw("mail_message_dropped", "err", err)
		}
		_ = d.Nack(false, false)
		return
	}

	if err := handle(ctx, m); err != nil {
		requeue := !errors.Is(err, ErrUndeliverable)
		if q.log != nil {
			q.log.Errorw("mail_send_failed", "kind", m.Kind, "requeue", requeue, "err", err)
		}
		_ = d.Nack(false, requeue)
		return
	}

	_ = d.Ack(false)
	if q.log != nil {
		q.log.Infow("mail_sent", "kind", m.Kind)
	}
}

// Closed blocks until the broker connection drops or ctx is done.
func (q *Queue) Closed(ctx context.Context) error {
	if q.notifyClose == nil {
		<-ctx.Done()
		return ctx.Err()
	}

	closed := q.notifyClose(make(chan *amqp091.Error, 1))
	select {
	case <-ctx.Done():
		return ctx.Err()
	case amqpErr, ok := <-closed:
		if !ok || amqpErr == nil {
			return ErrConnectionClosed
		}
		return fmt.Errorf("%w: %v", ErrConnectionClosed, amqpErr)
	}
}

func (q *Queue) Close() error {
	if q.ch != nil {
		_ = q.ch.Close()
	}
	if q.conn != nil {
		return q.conn.Close()
	}
	return nil
}
