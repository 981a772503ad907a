package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"farmxchain/pkg/order"

	"github.com/gofiber/fiber/v2/log"
	"github.com/streadway/amqp"
)

// DefaultExchange is used when AMQP_EXCHANGE is not set.
const DefaultExchange = "farmxchain.orders"

type (
	// Channel is the part of *amqp.Channel used for publishing.
	Channel interface {
		Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
		Close() error
	}

	// BrokerService forwards ledger events to a RabbitMQ direct exchange.
	BrokerService interface {
		Run(ctx context.Context, events <-chan order.Event)
		Publish(e order.Event) error
		Close() error
	}

	brokerService struct {
		channel  Channel
		conn     io.Closer
		exchange string
	}
)

// Dial connects to RabbitMQ and declares a durable direct exchange.
func Dial(amqpURL, exchange string) (BrokerService, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}

	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	err = ch.ExchangeDeclare(
		exchange, // name
		"direct", // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	return &brokerService{channel: ch, conn: conn, exchange: exchange}, nil
}

func NewBrokerService(ch Channel, exchange string) BrokerService {
	return &brokerService{channel: ch, exchange: exchange}
}

// RoutingKey is the key events of one order log are published under.
func RoutingKey(logName string) string {
	return "orders." + logName
}

// NewPublishing encodes an event as a persistent JSON message.
func NewPublishing(e order.Event) (amqp.Publishing, error) {
	body, err := json.Marshal(e)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("failed to marshal event %d: %w", e.Seq, err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    e.At,
		MessageId:    fmt.Sprintf("%s-%d", e.Log, e.Seq),
		Type:         string(e.Kind),
	}, nil
}

func (s *brokerService) Publish(e order.Event) error {
	msg, err := NewPublishing(e)
	if err != nil {
		return err
	}
	if err := s.channel.Publish(s.exchange, RoutingKey(e.Log), false, false, msg); err != nil {
		return fmt.Errorf("failed to publish event %d: %w", e.Seq, err)
	}
	return nil
}

func (s *brokerService) Run(ctx context.Context, events <-chan order.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			if err := s.Publish(e); err != nil {
				log.Errorf("broker: %v", err)
			}
		}
	}
}

func (s *brokerService) Close() error {
	var err error
	if s.channel != nil {
		if channelErr := s.channel.Close(); channelErr != nil {
			log.Warnf("failed to close channel: %v", channelErr)
			err = channelErr
		}
	}
	if s.conn != nil {
		if connErr := s.conn.Close(); connErr != nil {
			log.Warnf("failed to close connection: %v", connErr)
			if err == nil {
				err = connErr
			}
		}
	}
	return err
}
