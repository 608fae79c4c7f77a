// internal/kitchen/rabbitmq.go
package kitchen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"restaurant-admin/internal/config"
	"restaurant-admin/internal/models"
)

var ErrNack = errors.New("kitchen: publish NACK from broker")

type publishChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Publisher отправляет тикеты кухни в RabbitMQ и ждёт подтверждения от брокера.
type Publisher struct {
	conn       *amqp.Connection
	ch         *amqp.Channel
	pub        publishChannel
	acks       <-chan amqp.Confirmation
	exchange   string
	routingKey string

	mu sync.Mutex // confirms arrive in publish order
}

func DialPublisher(cfg config.RabbitMQConfig) (*Publisher, error) {
	url := fmt.Sprintf("amqp://%s:%s@%s:%d/%s", cfg.User, cfg.Password, cfg.Host, cfg.Port, trimVHost(cfg.VHost))
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	if err := ch.ExchangeDeclare(cfg.Exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	acks := ch.NotifyPublish(make(chan amqp.Confirmation, 1))

	slog.Info("kitchen: издатель RabbitMQ подключён", "host", cfg.Host, "exchange", cfg.Exchange, "routing_key", cfg.RoutingKey)
	return &Publisher{
		conn:       conn,
		ch:         ch,
		pub:        ch,
		acks:       acks,
		exchange:   cfg.Exchange,
		routingKey: cfg.RoutingKey,
	}, nil
}

func (p *Publisher) SubmitKitchenOrder(ctx context.Context, ticket models.KitchenTicket) error {
	body, err := json.Marshal(ticket)
	if err != nil {
		return fmt.Errorf("kitchen: marshal ticket: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.pub.PublishWithContext(ctx, p.exchange, p.routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Timestamp:    time.Now().UTC(),
			MessageId:    ticket.OrderID,
			Body:         body,
		})
	if err != nil {
		return fmt.Errorf("kitchen: publish order %s: %w", ticket.OrderID, err)
	}

	select {
	case conf, ok := <-p.acks:
		if !ok {
			return errors.New("kitchen: confirm channel closed")
		}
		if !conf.Ack {
			return ErrNack
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Publisher) Close() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}

func trimVHost(v string) string {
	if v == "/" {
		return ""
	}
	return v
}
