// Package notify delivers alert activations to the paging/notification
// collaborator over AMQP. The engine's only obligation is to hand each
// activation over once; fan-out to pagers and phones happens downstream.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/edflow/edflow/internal/domain/alert"
)

type AMQPPublisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
	log      *zap.Logger
}

// pagingMessage is the wire payload the paging dispatcher consumes.
type pagingMessage struct {
	ActivationID string               `json:"activation_id"`
	PatientID    string               `json:"patient_id"`
	Kind         string               `json:"kind"`
	ActivatedAt  time.Time            `json:"activated_at"`
	Targets      []alert.TargetBudget `json:"targets"`
}

func NewAMQPPublisher(url, exchange string, log *zap.Logger) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connecting to broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("opening channel: %w", err)
	}

	if err := ch.ExchangeDeclare(
		exchange, // name
		"fanout", // type
		true,     // durable
		false,    // autoDelete
		false,    // internal
		false,    // noWait
		nil,      // args
	); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declaring exchange: %w", err)
	}

	return &AMQPPublisher{conn: conn, ch: ch, exchange: exchange, log: log}, nil
}

func (p *AMQPPublisher) Notify(ctx context.Context, a *alert.Activation) error {
	body, err := json.Marshal(pagingMessage{
		ActivationID: a.ID.String(),
		PatientID:    a.PatientID.String(),
		Kind:         a.Label(),
		ActivatedAt:  a.ActivatedAt,
		Targets:      a.Kind.TargetBudgets(),
	})
	if err != nil {
		return fmt.Errorf("encoding paging message: %w", err)
	}

	err = p.ch.PublishWithContext(ctx,
		p.exchange, // exchange
		"",         // routing key (fanout)
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    a.ActivatedAt,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publishing activation: %w", err)
	}

	p.log.Debug("alert activation published",
		zap.String("activation_id", a.ID.String()),
		zap.String("kind", a.Label()),
	)
	return nil
}

func (p *AMQPPublisher) Close() {
	if err := p.ch.Close(); err != nil {
		p.log.Warn("closing AMQP channel", zap.Error(err))
	}
	if err := p.conn.Close(); err != nil {
		p.log.Warn("closing AMQP connection", zap.Error(err))
	}
}
