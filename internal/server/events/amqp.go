package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// DefaultExchange is the topic exchange entry events are published to.
const DefaultExchange = "geojournal.entries"

const maxReconnectAttempts = 10

var errPublisherClosed = errors.New("amqp publisher is closed")

// AMQPPublisher publishes events to a RabbitMQ topic exchange, routing by event type.
// The connection is re-established in the background when the broker drops it.
type AMQPPublisher struct {
	logger     *slog.Logger
	dial       func(url string) (*amqp.Connection, error)
	conn       *amqp.Connection
	channel    *amqp.Channel
	done       chan struct{}
	url        string
	exchange   string
	reconnects int
	mu         sync.RWMutex
	closeOnce  sync.Once
	closed     bool
}

// NewAMQPPublisher dials url and declares the exchange.
func NewAMQPPublisher(logger *slog.Logger, url, exchange string) (*AMQPPublisher, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}

	p := &AMQPPublisher{
		logger:   logger,
		dial:     amqp.Dial,
		done:     make(chan struct{}),
		url:      url,
		exchange: exchange,
	}

	if err := p.connect(); err != nil {
		return nil, err
	}

	return p, nil
}

func (p *AMQPPublisher) connect() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	// после Close новое соединение не открывается
	if p.closed {
		return errPublisherClosed
	}

	conn, err := p.dial(p.url)
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		p.exchange,
		amqp.ExchangeTopic,
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	p.conn = conn
	p.channel = ch

	go p.handleReconnect(conn)

	p.logger.Info("connected to RabbitMQ", slog.String("url", sanitizeURL(p.url)), slog.String("exchange", p.exchange))
	return nil
}

// handleReconnect ждет закрытия соединения и переподключается с экспоненциальной задержкой
func (p *AMQPPublisher) handleReconnect(conn *amqp.Connection) {
	err, ok := <-conn.NotifyClose(make(chan *amqp.Error, 1))
	if !ok || err == nil {
		return
	}
	if p.isClosed() {
		return
	}

	p.logger.Warn("RabbitMQ connection closed, attempting to reconnect", slog.Any("error", err))
	p.reconnect()
}

// reconnect returns once connected, after maxReconnectAttempts failures or on Close
func (p *AMQPPublisher) reconnect() {
	for i := 0; i < maxReconnectAttempts; i++ {
		backoff := min(time.Duration(1<<i)*time.Second, 30*time.Second)
		timer := time.NewTimer(backoff)
		select {
		case <-p.done:
			timer.Stop()
			return
		case <-timer.C:
		}

		err := p.connect()
		if errors.Is(err, errPublisherClosed) {
			return
		}
		if err != nil {
			p.logger.Error("reconnection failed", slog.Any("error", err), slog.Int("attempt", i+1))
			continue
		}

		p.mu.Lock()
		p.reconnects++
		total := p.reconnects
		p.mu.Unlock()

		p.logger.Info("reconnected to RabbitMQ",
			slog.Int("attempts", i+1),
			slog.Int("total_reconnects", total),
		)
		return
	}

	p.logger.Error("failed to reconnect to RabbitMQ", slog.Int("attempts", maxReconnectAttempts))
}

// Reconnects returns how many times the connection was re-established.
func (p *AMQPPublisher) Reconnects() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.reconnects
}

func (p *AMQPPublisher) isClosed() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.closed
}

// Publish sends event as a persistent JSON message routed by its type.
func (p *AMQPPublisher) Publish(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	p.mu.RLock()
	ch := p.channel
	p.mu.RUnlock()

	if ch == nil || ch.IsClosed() {
		return fmt.Errorf("amqp channel is not available")
	}

	err = ch.PublishWithContext(
		ctx,
		p.exchange,
		string(event.Type),
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    event.ID.String(),
			Timestamp:    event.OccurredAt,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.Type, err)
	}

	return nil
}

// Close closes the channel and the connection and stops a pending reconnect.
func (p *AMQPPublisher) Close() error {
	p.closeOnce.Do(func() { close(p.done) })

	p.mu.Lock()
	defer p.mu.Unlock()

	p.closed = true

	if p.channel != nil {
		p.channel.Close()
		p.channel = nil
	}
	if p.conn != nil {
		conn := p.conn
		p.conn = nil
		return conn.Close()
	}
	return nil
}

// sanitizeURL drops credentials from an AMQP URL before logging.
func sanitizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "invalid-url"
	}
	u.User = nil
	return u.String()
}
