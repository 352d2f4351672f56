package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const Exchange = "frontofhouse.events"

// confirmation is the broker's answer for exactly one published message.
type confirmation interface {
	WaitContext(ctx context.Context) (bool, error)
}

type publishFunc func(ctx context.Context, key string, msg amqp.Publishing) (confirmation, error)

type AMQPPublisher struct {
	conn    *amqp.Connection
	ch      *amqp.Channel
	publish publishFunc
}

// DialAMQP connects, declares the topic exchange and enables publisher
// confirms.
func DialAMQP(url string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(Exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("enable confirms: %w", err)
	}

	p := newPublisher(func(ctx context.Context, key string, msg amqp.Publishing) (confirmation, error) {
		dc, err := ch.PublishWithDeferredConfirmWithContext(ctx, Exchange, key, false, false, msg)
		if err != nil || dc == nil {
			return nil, err
		}
		return dc, nil
	})
	p.conn, p.ch = conn, ch
	return p, nil
}

func newPublisher(publish publishFunc) *AMQPPublisher {
	return &AMQPPublisher{publish: publish}
}

// Publish waits for the broker to confirm this message. A cancelled ctx
// abandons only this message's confirmation.
func (p *AMQPPublisher) Publish(ctx context.Context, e Event) error {
	msg, err := Encode(e)
	if err != nil {
		return err
	}

	conf, err := p.publish(ctx, e.Key, msg)
	if err != nil {
		return fmt.Errorf("publish %s: %w", e.Key, err)
	}
	if conf == nil {
		return nil
	}

	ack, err := conf.WaitContext(ctx)
	if err != nil {
		return fmt.Errorf("publish %s: wait for confirm: %w", e.Key, err)
	}
	if !ack {
		return fmt.Errorf("publish %s: nack from broker", e.Key)
	}
	return nil
}

func (p *AMQPPublisher) Close() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}

// Encode renders an event as a persistent JSON publishing.
func Encode(e Event) (amqp.Publishing, error) {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	body, err := json.Marshal(e)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("encode event: %w", err)
	}
	return amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		Timestamp:    e.At,
		Type:         e.Key,
		Body:         body,
	}, nil
}
