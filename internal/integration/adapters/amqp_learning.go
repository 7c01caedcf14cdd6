package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"

	"github.com/finance-tracker/bookkeeping/config"
	"github.com/finance-tracker/bookkeeping/internal/application/adapter"
	"github.com/finance-tracker/bookkeeping/internal/domain/entity"
)

// LearningMessage is the wire form of a learning signal.
type LearningMessage struct {
	WorkspaceID        uuid.UUID  `json:"workspace_id"`
	TransactionID      uuid.UUID  `json:"transaction_id"`
	MerchantKey        string     `json:"merchant_key"`
	CategoryID         uuid.UUID  `json:"category_id"`
	PreviousCategoryID *uuid.UUID `json:"previous_category_id,omitempty"`
	OccurredAt         time.Time  `json:"occurred_at"`
}

func newLearningMessage(signal entity.LearningSignal) LearningMessage {
	return LearningMessage{
		WorkspaceID:        signal.WorkspaceID,
		TransactionID:      signal.TransactionID,
		MerchantKey:        signal.MerchantKey,
		CategoryID:         signal.CategoryID,
		PreviousCategoryID: signal.PreviousCategoryID,
		OccurredAt:         signal.OccurredAt,
	}
}

// Signal converts the message back into a learning signal.
func (m LearningMessage) Signal() entity.LearningSignal {
	return entity.LearningSignal{
		WorkspaceID:        m.WorkspaceID,
		TransactionID:      m.TransactionID,
		MerchantKey:        m.MerchantKey,
		CategoryID:         m.CategoryID,
		PreviousCategoryID: m.PreviousCategoryID,
		OccurredAt:         m.OccurredAt,
	}
}

// RequeueDelay is how long a delivery that failed to store is held before it
// goes back to the queue.
const RequeueDelay = 2 * time.Second

// amqpChannel is the part of *amqp091.Channel the publisher needs.
type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
}

// AMQPLearningBus publishes learning signals to a RabbitMQ exchange and
// consumes them back into the statistics store.
type AMQPLearningBus struct {
	conn         *amqp091.Connection
	channel      *amqp091.Channel
	publisher    amqpChannel
	exchange     string
	routingKey   string
	queue        string
	requeueDelay time.Duration
}

// NewAMQPLearningBus dials the broker and declares the exchange, the queue and their binding.
func NewAMQPLearningBus(cfg *config.LearningConfig) (*AMQPLearningBus, error) {
	conn, err := amqp091.Dial(cfg.AMQPURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial amqp: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open amqp channel: %w", err)
	}

	bus := &AMQPLearningBus{
		conn:         conn,
		channel:      channel,
		publisher:    channel,
		exchange:     cfg.Exchange,
		routingKey:   cfg.RoutingKey,
		queue:        cfg.Exchange + "." + cfg.RoutingKey,
		requeueDelay: RequeueDelay,
	}

	if err := bus.setup(); err != nil {
		_ = bus.Close()
		return nil, fmt.Errorf("failed to set up amqp topology: %w", err)
	}
	return bus, nil
}

func (b *AMQPLearningBus) setup() error {
	if err := b.channel.ExchangeDeclare(b.exchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}
	if _, err := b.channel.QueueDeclare(b.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}
	if err := b.channel.QueueBind(b.queue, b.routingKey, b.exchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue: %w", err)
	}
	return nil
}

// Notify publishes the signal as a persistent JSON message. Failures are
// logged and dropped.
func (b *AMQPLearningBus) Notify(ctx context.Context, signal entity.LearningSignal) {
	logger := slog.Default().With(
		"workspaceID", signal.WorkspaceID.String(),
		"merchantKey", signal.MerchantKey,
	)

	body, err := json.Marshal(newLearningMessage(signal))
	if err != nil {
		logger.Warn("Failed to encode learning signal", "error", err.Error())
		return
	}

	err = b.publisher.PublishWithContext(ctx, b.exchange, b.routingKey, false, false, amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		Timestamp:    signal.OccurredAt,
		Body:         body,
	})
	if err != nil {
		logger.Warn("Failed to publish learning signal", "error", err.Error())
		return
	}
	logger.Debug("Learning signal published", "exchange", b.exchange)
}

// Consume records delivered signals into repo until ctx is done. Malformed
// messages are dropped. A store failure is requeued once, after RequeueDelay;
// a redelivered message that fails again is dropped.
func (b *AMQPLearningBus) Consume(ctx context.Context, repo adapter.LearningSignalRepository) error {
	deliveries, err := b.channel.Consume(b.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	logger := slog.Default().With("queue", b.queue)
	logger.Info("Learning signal consumer started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("Learning signal consumer stopped", "reason", ctx.Err())
			return nil
		case delivery, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("amqp delivery channel closed")
			}
			b.settle(ctx, repo, delivery, logger)
		}
	}
}

func (b *AMQPLearningBus) settle(ctx context.Context, repo adapter.LearningSignalRepository, delivery amqp091.Delivery, logger *slog.Logger) {
	err := handleDelivery(ctx, repo, delivery.Body)
	if err == nil {
		_ = delivery.Ack(false)
		return
	}

	requeue := isRetryable(err) && !delivery.Redelivered
	logger.Warn("Failed to handle learning signal",
		"error", err.Error(),
		"redelivered", delivery.Redelivered,
		"requeue", requeue,
	)
	if requeue && b.requeueDelay > 0 {
		timer := time.NewTimer(b.requeueDelay)
		select {
		case <-ctx.Done():
		case <-timer.C:
		}
		timer.Stop()
	}
	_ = delivery.Nack(false, requeue)
}

// Close closes the channel and the connection.
func (b *AMQPLearningBus) Close() error {
	if b.channel != nil {
		_ = b.channel.Close()
	}
	if b.conn != nil {
		return b.conn.Close()
	}
	return nil
}

type malformedMessageError struct {
	err error
}

func (e *malformedMessageError) Error() string {
	return "malformed learning message: " + e.err.Error()
}

func (e *malformedMessageError) Unwrap() error {
	return e.err
}

func handleDelivery(ctx context.Context, repo adapter.LearningSignalRepository, body []byte) error {
	var msg LearningMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return &malformedMessageError{err: err}
	}
	if msg.WorkspaceID == uuid.Nil || msg.CategoryID == uuid.Nil || msg.MerchantKey == "" {
		return &malformedMessageError{err: errors.New("incomplete learning message")}
	}
	if err := repo.Record(ctx, msg.Signal()); err != nil {
		return fmt.Errorf("failed to record learning signal: %w", err)
	}
	return nil
}

func isRetryable(err error) bool {
	var malformed *malformedMessageError
	return !errors.As(err, &malformed)
}
