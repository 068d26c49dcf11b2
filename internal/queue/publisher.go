package queue

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/joshua-takyi/evently/internal/models"
)

// Publisher keeps one connection and channel open and redials when either closes.
type Publisher struct {
	url    string
	queue  string
	logger *slog.Logger

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewPublisher(url string, logger *slog.Logger) *Publisher {
	if url == "" {
		url = DefaultURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{url: url, queue: BookingQueueName, logger: logger}
}

func (p *Publisher) channel() (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	p.closeLocked()

	conn, err := amqp.Dial(p.url)
	if err != nil {
		return nil, fmt.Errorf("dial failed: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("channel open failed: %w", err)
	}
	// durable so messages survive broker restarts
	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("queue declare failed: %w", err)
	}
	p.conn, p.ch = conn, ch
	return ch, nil
}

// PublishBookingEvent sends the event as a persistent JSON message.
func (p *Publisher) PublishBookingEvent(ctx context.Context, event *models.BookingEvent) error {
	body, err := encodeEvent(event)
	if err != nil {
		return err
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Type:         string(event.Type),
		Body:         body,
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	for attempt := 0; attempt < 2; attempt++ {
		ch, err := p.channel()
		if err != nil {
			p.logger.Warn("rabbitmq: publisher unavailable", "error", err)
			return err
		}
		err = ch.PublishWithContext(ctx, "", p.queue, false, false, pub)
		if err == nil {
			return nil
		}
		p.logger.Warn("rabbitmq: publish failed", "attempt", attempt+1, "error", err)
		p.closeLocked()
		if attempt == 1 {
			return err
		}
	}
	return nil
}

func (p *Publisher) closeLocked() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}

func (p *Publisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closeLocked()
}
