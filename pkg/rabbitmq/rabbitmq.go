package rabbitmq

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	amqp "github.com/streadway/amqp"
)

// Queue carrying account and catalog events.
const eventQueue = "shop_events"

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL string
}

// NewClient connects to RabbitMQ, opens a channel and declares the durable
// event queue.
func NewClient(cfg Config) (*Client, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	_, err = ch.QueueDeclare(
		eventQueue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare %s queue: %w", eventQueue, err)
	}

	log.Printf("RabbitMQ client connected and %s queue declared", eventQueue)

	return &Client{
		conn:    conn,
		channel: ch,
	}, nil
}

// Close closes the RabbitMQ connection and channel.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors occurred during RabbitMQ client close: %v", errs)
	}
	return nil
}

// PublishUserRegistered publishes a user.registered event.
func (c *Client) PublishUserRegistered(event map[string]interface{}) error {
	return c.publish("user.registered", event)
}

// PublishProductCreated publishes a product.created event.
func (c *Client) PublishProductCreated(event map[string]interface{}) error {
	return c.publish("product.created", event)
}

func (c *Client) publish(eventType string, event map[string]interface{}) error {
	if c == nil || c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}

	payload := map[string]interface{}{
		"type":       eventType,
		"occurredAt": time.Now().UTC().Format(time.RFC3339),
		"data":       event,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", eventType, err)
	}

	err = c.channel.Publish(
		"",         // default exchange
		eventQueue, // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish %s event: %w", eventType, err)
	}
	return nil
}

// ConsumeEvents starts delivering queued events to the handler. A nil error
// from the handler acknowledges the message; otherwise it is requeued.
func (c *Client) ConsumeEvents(handler func(amqp.Delivery) error) error {
	if c == nil || c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}

	deliveries, err := c.channel.Consume(
		eventQueue,
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to start consumer: %w", err)
	}

	for msg := range deliveries {
		if err := handler(msg); err != nil {
			log.Printf("Event handler failed (tag %d): %v", msg.DeliveryTag, err)
			if nackErr := msg.Nack(false, true); nackErr != nil {
				log.Printf("Failed to nack message: %v", nackErr)
			}
			continue
		}
		if ackErr := msg.Ack(false); ackErr != nil {
			log.Printf("Failed to ack message: %v", ackErr)
		}
	}
	return nil
}
