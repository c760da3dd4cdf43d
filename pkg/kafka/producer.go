package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"example.com/sales-console/pkg/logger"
)

// Producer публикует события заказов. Headers trace_id, session_id
// и timestamp проставляются из контекста запроса автоматически.
type Producer struct {
	writer *kafka.Writer
}

// NewProducer создаёт Producer поверх kafka.Writer.
func NewProducer(cfg Config) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("не указаны брокеры Kafka")
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne, // Ждём подтверждения от лидера
		Async:        false,
	}

	logger.Info().
		Strs("brokers", cfg.Brokers).
		Msg("Создан Kafka Producer")

	return &Producer{writer: writer}, nil
}

// Send публикует сообщение в топик. Ключом служит номер или id заказа,
// чтобы события одного заказа попадали в одну партицию.
func (p *Producer) Send(ctx context.Context, topic string, key []byte, value []byte) error {
	msg := kafka.Message{
		Topic:   topic,
		Key:     key,
		Value:   value,
		Headers: contextHeaders(ctx),
		Time:    time.Now(),
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		logger.Error().
			Err(err).
			Str("topic", topic).
			Str("key", string(key)).
			Str("trace_id", logger.TraceIDFromContext(ctx)).
			Msg("Ошибка отправки сообщения в Kafka")
		return fmt.Errorf("отправка в Kafka: %w", err)
	}

	logger.Debug().
		Str("topic", topic).
		Str("key", string(key)).
		Str("trace_id", logger.TraceIDFromContext(ctx)).
		Str("session_id", logger.SessionIDFromContext(ctx)).
		Msg("Сообщение отправлено в Kafka")

	return nil
}

// contextHeaders собирает служебные headers из контекста запроса.
func contextHeaders(ctx context.Context) []kafka.Header {
	headers := make([]kafka.Header, 0, 3)

	if traceID := logger.TraceIDFromContext(ctx); traceID != "" {
		headers = append(headers, kafka.Header{Key: HeaderTraceID, Value: []byte(traceID)})
	}
	if sessionID := logger.SessionIDFromContext(ctx); sessionID != "" {
		headers = append(headers, kafka.Header{Key: HeaderSessionID, Value: []byte(sessionID)})
	}
	headers = append(headers, kafka.Header{
		Key:   HeaderTimestamp,
		Value: []byte(time.Now().UTC().Format(time.RFC3339Nano)),
	})

	return headers
}

// Close закрывает writer. Вызывается при остановке сервиса.
func (p *Producer) Close() error {
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("закрытие producer: %w", err)
	}

	logger.Info().Msg("Kafka Producer закрыт")
	return nil
}
