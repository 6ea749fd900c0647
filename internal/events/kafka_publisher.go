package events

import (
	"context"
	"encoding/json"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/tyagiab3/user-service/internal/config"
)

// KafkaPublisher writes user events to Kafka with a bounded attempt per
// publish. Channel unavailability is logged and swallowed.
type KafkaPublisher struct {
	writer            *kafkago.Writer
	registrationTopic string
	loginTopic        string
	writeTimeout      time.Duration
	logger            *zap.Logger
}

// NewKafkaPublisher builds a publisher over the configured brokers.
func NewKafkaPublisher(cfg config.KafkaConfig, logger *zap.Logger) *KafkaPublisher {
	writer := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.Brokers...),
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireOne,
		WriteTimeout: cfg.WriteTimeout(),
		ErrorLogger: kafkago.LoggerFunc(func(msg string, args ...interface{}) {
			logger.Warn("kafka writer", zap.String("msg", msg), zap.Any("args", args))
		}),
	}

	return &KafkaPublisher{
		writer:            writer,
		registrationTopic: cfg.RegistrationTopic,
		loginTopic:        cfg.LoginTopic,
		writeTimeout:      cfg.WriteTimeout(),
		logger:            logger,
	}
}

// PublishRegistration emits a registration event, best-effort.
func (p *KafkaPublisher) PublishRegistration(ctx context.Context, event UserEvent) {
	p.publish(ctx, p.registrationTopic, event)
}

// PublishLogin emits a login event, best-effort.
func (p *KafkaPublisher) PublishLogin(ctx context.Context, event UserEvent) {
	p.publish(ctx, p.loginTopic, event)
}

func (p *KafkaPublisher) publish(ctx context.Context, topic string, event UserEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("marshal event", zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(ctx, p.writeTimeout)
	defer cancel()

	msg := kafkago.Message{
		Topic: topic,
		Key:   []byte(event.Email),
		Value: payload,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Warn("event publish failed",
			zap.String("topic", topic),
			zap.String("event_type", event.EventType),
			zap.Error(err))
		return
	}

	p.logger.Info("event published",
		zap.String("topic", topic),
		zap.String("event_type", event.EventType),
		zap.String("status", event.Status))
}

// Close releases the underlying writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
