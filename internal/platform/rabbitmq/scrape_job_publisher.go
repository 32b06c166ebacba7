package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"propertydesk/internal/app"
)

// DeclareQueue declares the durable queue shared by the publisher and the
// import worker.
func DeclareQueue(ch *amqp.Channel, name string) error {
	_, err := ch.QueueDeclare(
		name,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare queue failed: %w", err)
	}
	return nil
}

type ScrapeJobPublisher struct {
	conn      *amqp.Connection
	queueName string
}

func NewScrapeJobPublisher(conn *amqp.Connection, queueName string) *ScrapeJobPublisher {
	return &ScrapeJobPublisher{
		conn:      conn,
		queueName: queueName,
	}
}

func (p *ScrapeJobPublisher) PublishScrapeJob(ctx context.Context, job app.ScrapeJob) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	defer ch.Close()

	if err := DeclareQueue(ch, p.queueName); err != nil {
		return err
	}

	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal scrape job failed: %w", err)
	}

	if err := ch.PublishWithContext(
		ctx,
		"",
		p.queueName,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         payload,
			DeliveryMode: amqp.Persistent,
		},
	); err != nil {
		return fmt.Errorf("publish scrape job failed: %w", err)
	}
	return nil
}
