// setup.go
package rabbit

import (
	"fmt"

	"opt-shop/internal/apperror"

	"github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

const (
	ExchangeOrderEvents = "order_events"
	QueueStockSync      = "stock_sync"

	consumerPrefetch = 10
)

// Dial opens a connection and a channel on it.
func Dial(url string) (*amqp091.Connection, *amqp091.Channel, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("open channel: %w", err)
	}
	return conn, ch, nil
}

// DeclareTopology declares the order events exchange and the stock sync queue.
// Both are durable and safe to redeclare.
func DeclareTopology(ch *amqp091.Channel) error {
	if err := ch.ExchangeDeclare(
		ExchangeOrderEvents,
		amqp091.ExchangeTopic,
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		return fmt.Errorf("declare exchange %s: %w", ExchangeOrderEvents, err)
	}

	if _, err := ch.QueueDeclare(
		QueueStockSync,
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		return fmt.Errorf("declare queue %s: %w", QueueStockSync, err)
	}
	return nil
}

// SetupConsumers starts consuming the stock sync queue. Deliveries are acked
// after handling; a message that failed because the database was unavailable
// is requeued once, anything else is dropped.
func SetupConsumers(ch *amqp091.Channel, consumer *StockSyncConsumer, log *logrus.Logger) error {
	if err := ch.Qos(consumerPrefetch, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}

	msgs, err := ch.Consume(
		QueueStockSync,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("consume %s: %w", QueueStockSync, err)
	}

	go func() {
		for m := range msgs {
			settleDelivery(m, m.Redelivered, consumer.Handle(m.Body), log)
		}
		log.Warn("stock sync delivery channel closed")
	}()

	log.WithField("queue", QueueStockSync).Info("consuming stock sync messages")
	return nil
}

type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

func settleDelivery(m acknowledger, redelivered bool, handleErr error, log *logrus.Logger) {
	var err error
	switch {
	case handleErr == nil:
		err = m.Ack(false)
	case apperror.KindOf(handleErr) == apperror.KindUnavailable && !redelivered:
		err = m.Nack(false, true)
	default:
		err = m.Nack(false, false)
	}
	if err != nil {
		log.WithError(err).Error("failed to settle delivery")
	}
}
