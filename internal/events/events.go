// Package events publishes analysis lifecycle events to a message broker.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/streadway/amqp"

	"github.com/jonathan/cv-architect/internal/types"
)

// Defaults for the AMQP publisher.
const (
	DefaultExchange             = "cv_architect"
	RoutingKeyAnalysisCompleted = "analysis.completed"
)

// AnalysisCompleted is the event body published after an analysis is recorded.
// It carries no CV content.
type AnalysisCompleted struct {
	ID        string       `json:"id"`
	Title     string       `json:"title"`
	Score     types.Score  `json:"score"`
	Market    types.Market `json:"market"`
	CreatedAt int64        `json:"createdAt"`
}

// FromItem builds the event for a history item.
func FromItem(item types.HistoryItem) AnalysisCompleted {
	return AnalysisCompleted{
		ID:        item.ID,
		Title:     item.Title,
		Score:     item.Score,
		Market:    item.Market,
		CreatedAt: item.CreatedAt,
	}
}

// Nop discards events. It is used when no broker is configured.
type Nop struct{}

func (Nop) AnalysisCompleted(context.Context, types.HistoryItem) error { return nil }
func (Nop) Close() error                                               { return nil }

// channel is the subset of *amqp.Channel the publisher uses.
type channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPPublisher publishes events to a topic exchange.
type AMQPPublisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	ch       channel
	exchange string
	logger   *slog.Logger
}

// DialAMQP connects to url and declares the exchange.
func DialAMQP(url, exchange string, logger *slog.Logger) (*AMQPPublisher, error) {
	if url == "" {
		return nil, errors.New("amqp url is empty")
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to broker: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	p, err := newPublisher(ch, exchange, logger)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	p.conn = conn
	return p, nil
}

func newPublisher(ch channel, exchange string, logger *slog.Logger) (*AMQPPublisher, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}
	if logger == nil {
		logger = slog.Default()
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}
	return &AMQPPublisher{ch: ch, exchange: exchange, logger: logger}, nil
}

// AnalysisCompleted publishes the completed event for item.
func (p *AMQPPublisher) AnalysisCompleted(ctx context.Context, item types.HistoryItem) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := json.Marshal(FromItem(item))
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.ch.Publish(p.exchange, RoutingKeyAnalysisCompleted, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    item.ID,
		Timestamp:    time.UnixMilli(item.CreatedAt),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", RoutingKeyAnalysisCompleted, err)
	}
	p.logger.Debug("event published", "routing_key", RoutingKeyAnalysisCompleted, "id", item.ID)
	return nil
}

// Close closes the channel and connection.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var errs []error
	if p.ch != nil {
		errs = append(errs, p.ch.Close())
	}
	if p.conn != nil {
		errs = append(errs, p.conn.Close())
	}
	return errors.Join(errs...)
}
