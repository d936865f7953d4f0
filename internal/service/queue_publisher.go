// Package queue_publisher publishes order events to RabbitMQ. Errors are
// logged and returned so callers can ignore failures without interrupting
// the request flow; a lost ticket line never fails an order.
package queue_publisher

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	q "restaurant-pos/internal/queue"
)

// PublishOrderPlaced publishes an OrderPlacedEvent to the order.placed
// queue. Messages are marked persistent so tickets survive broker restarts.
func PublishOrderPlaced(ctx context.Context, ev q.OrderPlacedEvent) error {
	return publish(ctx, "order.placed", ev)
}

// PublishOrderPaid publishes an OrderPaidEvent to the order.paid queue.
func PublishOrderPaid(ctx context.Context, ev q.OrderPaidEvent) error {
	return publish(ctx, "order.paid", ev)
}

func publish(ctx context.Context, queue string, payload any) error {
	conn, err := amqp.Dial(q.BrokerURL())
	if err != nil {
		log.Printf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	// Idempotent declare; durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("rabbitmq: marshal event failed: %v", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queue, false, false, pub); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}
	return nil
}
