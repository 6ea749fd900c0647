package events

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/tyagiab3/user-service/internal/config"
)

// AuditSink records the outcome of a consumed event.
type AuditSink interface {
	Record(ctx context.Context, actionType, status, actor, details string)
}

// Consumer reads user events back from the channel and turns them into
// audit records. Consumption is best-effort; a broken connection is logged
// and retried by the underlying reader.
type Consumer struct {
	cfg    config.KafkaConfig
	sink   AuditSink
	logger *zap.Logger

	wg      sync.WaitGroup
	readers []*kafkago.Reader
}

// NewConsumer builds a consumer for the registration and login topics.
func NewConsumer(cfg config.KafkaConfig, sink AuditSink, logger *zap.Logger) *Consumer {
	return &Consumer{cfg: cfg, sink: sink, logger: logger}
}

// Start launches one reader loop per topic. Loops exit when ctx is canceled.
func (c *Consumer) Start(ctx context.Context) {
	for _, topic := range []string{c.cfg.RegistrationTopic, c.cfg.LoginTopic} {
		reader := kafkago.NewReader(kafkago.ReaderConfig{
			Brokers: c.cfg.Brokers,
			GroupID: c.cfg.ConsumerGroup,
			Topic:   topic,
		})
		c.readers = append(c.readers, reader)

		c.wg.Add(1)
		go c.run(ctx, reader, topic)
	}
}

// Stop closes the readers and waits for the loops to drain.
func (c *Consumer) Stop() {
	for _, reader := range c.readers {
		_ = reader.Close()
	}
	c.wg.Wait()
}

func (c *Consumer) run(ctx context.Context, reader *kafkago.Reader, topic string) {
	defer c.wg.Done()

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Warn("event read failed", zap.String("topic", topic), zap.Error(err))
			return
		}

		var event UserEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			c.logger.Warn("undecodable event", zap.String("topic", topic), zap.Error(err))
			continue
		}

		c.record(ctx, topic, event)
	}
}

func (c *Consumer) record(ctx context.Context, topic string, event UserEvent) {
	c.logger.Info("event consumed",
		zap.String("topic", topic),
		zap.String("event_type", event.EventType),
		zap.String("email", event.Email))

	var action, details string
	switch topic {
	case c.cfg.RegistrationTopic:
		action = "USER_REGISTRATION"
		details = "New user registered successfully."
		if strings.EqualFold(event.Status, StatusFailure) {
			details = "User registration failed: " + event.Message
		}
	default:
		action = "USER_LOGIN"
		details = "User logged in successfully."
		if strings.EqualFold(event.Status, StatusFailure) {
			details = "User login failed: " + event.Message
		}
	}

	c.sink.Record(ctx, action, event.Status, event.Email, details)
}
