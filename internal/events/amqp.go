package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/streadway/amqp"
)

// Channel — часть *amqp.Channel, нужная публикатору.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Connect подключается к RabbitMQ, повторяя попытку retries раз с паузой delay.
func Connect(url string, retries int, delay time.Duration) (*amqp.Connection, error) {
	const op = "events.Connect"
	var (
		conn *amqp.Connection
		err  error
	)
	for range retries {
		conn, err = amqp.Dial(url)
		if err == nil {
			return conn, nil
		}
		time.Sleep(delay)
	}
	return nil, fmt.Errorf("%s: %w", op, err)
}

// AMQPPublisher публикует события в direct exchange; routing key — тип события.
type AMQPPublisher struct {
	mu       sync.Mutex
	ch       Channel
	exchange string
}

// NewAMQPPublisher объявляет exchange и возвращает публикатор.
func NewAMQPPublisher(ch Channel, exchange string) (*AMQPPublisher, error) {
	const op = "events.NewAMQPPublisher"

	err := ch.ExchangeDeclare(
		exchange,
		"direct",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &AMQPPublisher{ch: ch, exchange: exchange}, nil
}

// Publish сериализует событие в JSON и публикует его.
func (p *AMQPPublisher) Publish(ctx context.Context, ev Event) error {
	const op = "events.Publish"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	err = p.ch.Publish(
		p.exchange,
		ev.Type,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    ev.OccurredAt,
			Type:         ev.Type,
		},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Close закрывает канал.
func (p *AMQPPublisher) Close() error {
	return p.ch.Close()
}
