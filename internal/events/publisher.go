// Package events publishes order lifecycle notifications to RabbitMQ
// so kitchen displays and trackers can subscribe. Publishing is an
// optional side channel: a nil *Publisher is safe to call and does
// nothing, and publish failures never fail the business operation.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"tandoor/models"
	"tandoor/pkg/logger"
)

const (
	// Exchange is the topic exchange order events are published to.
	Exchange = "kitchen_events"

	publishTimeout = 5 * time.Second
)

// OrderEvent is the wire payload for one order status change.
type OrderEvent struct {
	OrderID    string             `json:"order_id"`
	TableID    int                `json:"table_id"`
	Status     models.OrderStatus `json:"status"`
	OccurredAt time.Time          `json:"occurred_at"`
}

// Publisher owns one AMQP connection and channel.
type Publisher struct {
	conn   *amqp.Connection
	ch     *amqp.Channel
	logger *logger.Logger
}

// Dial connects to the broker and declares the topic exchange.
func Dial(url string, log *logger.Logger) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(Exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	log.Info("Connected to RabbitMQ", "exchange", Exchange)
	return &Publisher{conn: conn, ch: ch, logger: log.WithComponent("events")}, nil
}

// PublishOrderStatus emits one lifecycle event with routing key
// orders.<status>. Safe on a nil publisher.
func (p *Publisher) PublishOrderStatus(orderID string, tableID int, status models.OrderStatus) error {
	if p == nil {
		return nil
	}

	event := OrderEvent{
		OrderID:    orderID,
		TableID:    tableID,
		Status:     status,
		OccurredAt: time.Now().UTC(),
	}
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal order event: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	routingKey := fmt.Sprintf("orders.%s", status)
	err = p.ch.PublishWithContext(ctx, Exchange, routingKey, false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish order event: %w", err)
	}

	p.logger.Debug("Published order event", "order_id", orderID, "routing_key", routingKey)
	return nil
}

// Close tears down the channel and connection.
func (p *Publisher) Close() {
	if p == nil {
		return
	}
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}
