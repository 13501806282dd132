package sinks

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/ruslano69/dbdump/pkg/config"
)

// messageWriter - часть kafka.Writer, нужная приемнику
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Kafka публикует дамп в топик частями; все части одного файла имеют один ключ
type Kafka struct {
	config    config.KafkaConfig
	writer    messageWriter
	chunkSize int
}

// NewKafka создает Kafka приемник
func NewKafka(cfg config.KafkaConfig) (*Kafka, error) {
	if cfg.Topic == "" {
		return nil, fmt.Errorf("topic name is required for Kafka")
	}
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("at least one broker address is required for Kafka")
	}
	return &Kafka{config: cfg, chunkSize: DefaultChunkSize}, nil
}

func (k *Kafka) connect() {
	if k.writer != nil {
		return
	}
	k.writer = &kafka.Writer{
		Addr:         kafka.TCP(k.config.Brokers...),
		Topic:        k.config.Topic,
		Balancer:     &kafka.Hash{}, // один ключ - одна партиция, порядок частей сохраняется
		RequiredAcks: kafka.RequireAll,
		MaxAttempts:  3,
		WriteTimeout: 30 * time.Second,
	}
}

// Upload публикует файл как последовательность сообщений
func (k *Kafka) Upload(ctx context.Context, path string) error {
	k.connect()

	name := filepath.Base(path)
	var msgs []kafka.Message

	err := chunks(path, k.chunkSize, func(part, total int, data []byte) error {
		msgs = append(msgs, kafka.Message{
			Key:   []byte(name),
			Value: data,
			Time:  time.Now(),
			Headers: []kafka.Header{
				{Key: "file", Value: []byte(name)},
				{Key: "part", Value: []byte(strconv.Itoa(part))},
				{Key: "parts", Value: []byte(strconv.Itoa(total))},
			},
		})
		return nil
	})
	if err != nil {
		return err
	}

	if err := k.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("failed to write message to Kafka: %w", err)
	}
	return nil
}

// Close закрывает writer
func (k *Kafka) Close() error {
	if k.writer == nil {
		return nil
	}
	if err := k.writer.Close(); err != nil {
		return fmt.Errorf("failed to close writer: %w", err)
	}
	return nil
}

// Type возвращает тип приемника
func (k *Kafka) Type() string { return "kafka" }
