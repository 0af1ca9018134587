// Package events publishes dataset load notifications to an AMQP exchange.
package events

import (
	"context"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"painel/internal/dataset"
	"painel/internal/log"
)

const publishTimeout = 5 * time.Second

// Publisher sends load messages somewhere.
type Publisher interface {
	Publish(ctx context.Context, msg *LoadMessage) error
	Close() error
}

// channel is the subset of *amqp091.Channel the client uses.
type channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp091.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

type Client struct {
	conn         *amqp091.Connection
	channel      channel
	exchangeName string
	logger       *log.Logger
}

var _ Publisher = (*Client)(nil)

func NewClient(url, exchangeName string, logger *log.Logger) (*Client, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	client, err := newClient(ch, exchangeName, logger)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}
	client.conn = conn
	return client, nil
}

func newClient(ch channel, exchangeName string, logger *log.Logger) (*Client, error) {
	if logger == nil {
		logger = log.Discard()
	}
	c := &Client{
		channel:      ch,
		exchangeName: exchangeName,
		logger:       logger.WithComponent(log.ComponentAMQP),
	}
	if err := c.setup(); err != nil {
		return nil, fmt.Errorf("setup exchange: %w", err)
	}
	return c, nil
}

func (c *Client) setup() error {
	err := c.channel.ExchangeDeclare(
		c.exchangeName, // name
		"direct",       // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}
	return nil
}

// Publish sends msg with its type as routing key.
func (c *Client) Publish(ctx context.Context, msg *LoadMessage) error {
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = c.channel.PublishWithContext(
		ctx,
		c.exchangeName, // exchange
		msg.Type,       // routing key
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType: "application/json",
			Type:        msg.Type,
			Timestamp:   msg.Timestamp,
			Body:        body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}

	c.logger.DebugContext(ctx, "Published load event",
		"type", msg.Type,
		log.FieldRows, msg.Rows,
		"exchange", c.exchangeName)
	return nil
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

// LoadHook turns dataset loads into published messages. Publishing failures
// are logged and otherwise ignored.
func LoadHook(p Publisher, logger *log.Logger) dataset.LoadHook {
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentAMQP)
	return func(ctx context.Context, res dataset.LoadResult, loadErr error) {
		var msg *LoadMessage
		if loadErr != nil {
			msg = NewLoadFailedMessage(loadErr, time.Now())
		} else {
			msg = NewLoadedMessage(res.Records, res.LoadedAt)
		}
		if err := p.Publish(context.WithoutCancel(ctx), msg); err != nil {
			logger.WarnContext(ctx, "Failed to publish load event",
				log.FieldOperation, log.OpPublish,
				"type", msg.Type,
				log.FieldError, err)
		}
	}
}
