package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"

	"github.com/lp-farming/farming-core/internal/config"
	"github.com/lp-farming/farming-core/internal/observability/metrics"
)

var ErrNack = errors.New("queue: message not acknowledged by broker")

// LedgerEventMessage is the payload published for every committed ledger
// event. The routing key is the event type.
type LedgerEventMessage struct {
	ID                string `json:"id"`
	Sequence          uint64 `json:"sequence"`
	Index             int    `json:"index"`
	Type              string `json:"type"`
	PoolID            uint64 `json:"pool_id"`
	User              string `json:"user,omitempty"`
	Asset             string `json:"asset,omitempty"`
	Amount            string `json:"amount,omitempty"`
	AllocPoint        string `json:"alloc_point,omitempty"`
	AccRewardPerShare string `json:"acc_reward_per_share,omitempty"`
	Time              uint64 `json:"time"`
}

// QueueManager publishes ledger events to a topic exchange with publisher
// confirms. The connection is reopened lazily after the broker drops it.
type QueueManager struct {
	cfg *config.QueueConfig

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewQueueManager(cfg *config.QueueConfig) (*QueueManager, error) {
	qm := &QueueManager{cfg: cfg}
	if _, err := qm.channel(); err != nil {
		return nil, fmt.Errorf("failed to connect to queue: %w", err)
	}
	return qm, nil
}

// channel returns an open confirm-mode channel, dialing again if needed.
func (qm *QueueManager) channel() (*amqp.Channel, error) {
	qm.mu.Lock()
	defer qm.mu.Unlock()

	if qm.ch != nil && !qm.ch.IsClosed() {
		return qm.ch, nil
	}
	if qm.conn == nil || qm.conn.IsClosed() {
		conn, err := amqp.DialConfig(qm.cfg.AmqpURI(), amqp.Config{
			Heartbeat: 10 * time.Second,
			Locale:    "en_US",
		})
		if err != nil {
			return nil, err
		}
		qm.conn = conn
	}

	ch, err := qm.conn.Channel()
	if err != nil {
		return nil, err
	}
	err = ch.ExchangeDeclare(
		qm.cfg.Exchange,
		amqp.ExchangeTopic,
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		return nil, err
	}
	if err := ch.Confirm(false); err != nil {
		ch.Close()
		return nil, err
	}

	qm.ch = ch
	return ch, nil
}

// PublishLedgerEvent sends msg and waits for the broker confirm, retrying
// with the configured attempts and interval.
func (qm *QueueManager) PublishLedgerEvent(ctx context.Context, msg LedgerEventMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	err = retry.Do(func() error {
		return qm.publish(ctx, msg.Type, msg.ID, body)
	},
		retry.Context(ctx),
		retry.Attempts(qm.cfg.MaxRetryAttempts),
		retry.Delay(qm.cfg.RetryInterval),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Ctx(ctx).Warn().
				Uint("attempt", n+1).
				Str("event_id", msg.ID).
				Err(err).
				Msg("failed to publish ledger event, retrying")
		}),
	)
	if err != nil {
		metrics.RecordQueueSendError()
		return fmt.Errorf("failed to publish ledger event %s: %w", msg.ID, err)
	}
	return nil
}

func (qm *QueueManager) publish(ctx context.Context, routingKey, messageID string, body []byte) error {
	ch, err := qm.channel()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, qm.cfg.PublishTimeout)
	defer cancel()

	confirmation, err := ch.PublishWithDeferredConfirmWithContext(
		ctx,
		qm.cfg.Exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    messageID,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return err
	}

	acked, err := confirmation.WaitContext(ctx)
	if err != nil {
		return err
	}
	if !acked {
		return ErrNack
	}
	return nil
}

// Ping reports whether the broker connection is usable.
func (qm *QueueManager) Ping() error {
	_, err := qm.channel()
	return err
}

// Shutdown gracefully stops the interaction with the queue, ensuring all resources are properly released.
func (qm *QueueManager) Shutdown() {
	log.Info().Msg("Shutting down queue manager")

	qm.mu.Lock()
	defer qm.mu.Unlock()

	if qm.ch != nil {
		if err := qm.ch.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			log.Warn().Err(err).Msg("failed to close queue channel")
		}
		qm.ch = nil
	}
	if qm.conn != nil {
		if err := qm.conn.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			log.Warn().Err(err).Msg("failed to close queue connection")
		}
		qm.conn = nil
	}
}
