package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"eksporyuk-ledger/pkg/config"
	"eksporyuk-ledger/pkg/logger"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	LedgerExchange = "ledger_events"

	CommissionPostedKey = "commission.posted"
	PayoutSettledKey    = "payout.settled"

	LedgerEventQueueName = "ledger_event_queue"
)

// CommissionPostedEvent is published at most once per ledger entry, the
// first time a sale's commission is posted. The notification layer
// (email/WhatsApp/push) consumes it.
type CommissionPostedEvent struct {
	LedgerEntryID string `json:"ledger_entry_id"`
	SaleID        string `json:"sale_id"`
	AffiliateID   string `json:"affiliate_id"`
	// UserID is the affiliate's platform user, the notification recipient.
	UserID   string    `json:"user_id"`
	Amount   int64     `json:"amount"`
	PostedAt time.Time `json:"posted_at"`
}

type PayoutSettledEvent struct {
	PayoutID  string    `json:"payout_id"`
	UserID    string    `json:"user_id"`
	Amount    int64     `json:"amount"`
	Status    string    `json:"status"`
	SettledAt time.Time `json:"settled_at"`
}

type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	logger  *logger.Logger
}

func NewRabbitMQClient(cfg *config.Config, log *logger.Logger) (*Client, error) {
	url := fmt.Sprintf("amqp://%s:%s@%s:%s/",
		cfg.RabbitMQUser,
		cfg.RabbitMQPassword,
		cfg.RabbitMQHost,
		cfg.RabbitMQPort,
	)

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		LedgerExchange, // name
		"direct",       // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	_, err = channel.QueueDeclare(
		LedgerEventQueueName, // name
		true,                 // durable
		false,                // delete when unused
		false,                // exclusive
		false,                // no-wait
		nil,                  // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	for _, key := range []string{CommissionPostedKey, PayoutSettledKey} {
		if err := channel.QueueBind(LedgerEventQueueName, key, LedgerExchange, false, nil); err != nil {
			channel.Close()
			conn.Close()
			return nil, fmt.Errorf("failed to bind queue: %w", err)
		}
	}

	log.Info("Connected to RabbitMQ at %s:%s", cfg.RabbitMQHost, cfg.RabbitMQPort)

	return &Client{
		conn:    conn,
		channel: channel,
		logger:  log,
	}, nil
}

func (c *Client) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

func (c *Client) PublishCommissionPosted(event CommissionPostedEvent) error {
	return c.publish(CommissionPostedKey, event)
}

func (c *Client) PublishPayoutSettled(event PayoutSettledEvent) error {
	return c.publish(PayoutSettledKey, event)
}

func (c *Client) publish(routingKey string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = c.channel.Publish(
		LedgerExchange, // exchange
		routingKey,     // routing key
		false,          // mandatory
		false,          // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		c.logger.Error("[RABBITMQ] Failed to publish %s: %v", routingKey, err)
		return fmt.Errorf("failed to publish message: %w", err)
	}

	c.logger.Info("[RABBITMQ] Published %s: %s", routingKey, string(body))
	return nil
}

// ConsumeLedgerEvents consumes ledger events from the queue. Used by the
// notification worker, not by the ledger service itself.
func (c *Client) ConsumeLedgerEvents(handler func(routingKey string, body []byte) error) error {
	msgs, err := c.channel.Consume(
		LedgerEventQueueName, // queue
		"",                   // consumer
		false,                // auto-ack
		false,                // exclusive
		false,                // no-local
		false,                // no-wait
		nil,                  // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	go func() {
		for msg := range msgs {
			if err := handler(msg.RoutingKey, msg.Body); err != nil {
				c.logger.Error("[RABBITMQ] Handler failed for %s: %v", msg.RoutingKey, err)
				msg.Nack(false, true) // Reject and requeue
				continue
			}
			msg.Ack(false)
		}
	}()

	return nil
}
