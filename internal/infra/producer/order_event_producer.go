package producer

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"time"

	"github.com/RoyceAzure/lab/barcheckout/internal/model"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

var ErrProducerClosed = errors.New("producer closed")

// Writer kafka.Writer 的子集, 方便測試替換
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type IOrderEventProducer interface {
	Publish(ctx context.Context, event model.OrderEvent) error
	Close() error
}

// 依 order id 分區, 同一張訂單的事件保持順序
// topic: 由 writer 創建時設置
type KafkaOrderEventProducer struct {
	writer Writer
	closed atomic.Bool
}

func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		MaxAttempts:            5,
		BatchTimeout:           10 * time.Millisecond,
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
}

func NewKafkaOrderEventProducer(writer Writer) *KafkaOrderEventProducer {
	return &KafkaOrderEventProducer{writer: writer}
}

func (p *KafkaOrderEventProducer) Publish(ctx context.Context, event model.OrderEvent) error {
	if p.closed.Load() {
		return ErrProducerClosed
	}
	msg, err := convertToMessage(event)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, msg)
}

func (p *KafkaOrderEventProducer) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	return p.writer.Close()
}

func convertToMessage(event model.OrderEvent) (kafka.Message, error) {
	value, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(event.OrderID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
		},
		Time: event.OccurredAt,
	}, nil
}

// NopOrderEventProducer 沒有設定 broker 時使用, 只記 log
type NopOrderEventProducer struct {
	logger *zerolog.Logger
}

func NewNopOrderEventProducer(logger *zerolog.Logger) *NopOrderEventProducer {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &NopOrderEventProducer{logger: logger}
}

func (p *NopOrderEventProducer) Publish(ctx context.Context, event model.OrderEvent) error {
	p.logger.Debug().
		Str("event_type", string(event.EventType)).
		Str("order_id", event.OrderID).
		Msg("event publishing disabled")
	return nil
}

func (p *NopOrderEventProducer) Close() error {
	return nil
}
