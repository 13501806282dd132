package sinks

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/ruslano69/dbdump/pkg/config"
	"github.com/ruslano69/dbdump/pkg/retry"
)

// DefaultChunkSize - размер части файла в одном сообщении брокера
const DefaultChunkSize = 512 * 1024

// Sink отправляет готовый файл дампа во внешнее хранилище или брокер
type Sink interface {
	// Upload отправляет файл path
	Upload(ctx context.Context, path string) error

	// Close освобождает соединения
	Close() error

	// Type возвращает тип приемника (local, s3, kafka, rabbitmq)
	Type() string
}

// New создает приемник по конфигурации загрузки. Соединение открывается при первом Upload
func New(cfg config.UploadConfig) (Sink, error) {
	switch cfg.Type {
	case "", "none", "file":
		return Local{}, nil
	case "s3":
		return NewS3(*cfg.S3)
	case "kafka":
		return NewKafka(*cfg.Kafka)
	case "rabbitmq":
		return NewRabbitMQ(*cfg.RabbitMQ)
	}
	return nil, fmt.Errorf("unsupported upload type: %s (supported: s3, kafka, rabbitmq)", cfg.Type)
}

// Local - файл остается на диске, загружать нечего
type Local struct{}

func (Local) Upload(context.Context, string) error { return nil }
func (Local) Close() error                         { return nil }
func (Local) Type() string                         { return "local" }

// RetryConfig переводит настройки повторов из конфигурации
func RetryConfig(cfg config.RetryConfig, logger zerolog.Logger) retry.Config {
	return retry.Config{
		MaxAttempts:  cfg.MaxAttempts,
		InitialDelay: time.Duration(cfg.InitialDelayMs) * time.Millisecond,
		MaxDelay:     time.Duration(cfg.MaxDelayMs) * time.Millisecond,
		Strategy:     retry.BackoffStrategy(cfg.Strategy),
		Jitter:       cfg.Jitter,
		OnRetry: func(attempt int, err error, delay time.Duration) {
			logger.Warn().Err(err).Int("attempt", attempt).Dur("delay", delay).Msg("upload failed, retrying")
		},
	}
}

// retrying повторяет Upload вложенного приемника
type retrying struct {
	Sink
	retryer *retry.Retryer
}

// WithRetry оборачивает приемник повторами загрузки
func WithRetry(sink Sink, cfg retry.Config) (Sink, error) {
	r, err := retry.NewRetryer(cfg)
	if err != nil {
		return nil, err
	}
	return &retrying{Sink: sink, retryer: r}, nil
}

func (r *retrying) Upload(ctx context.Context, path string) error {
	return r.retryer.Do(ctx, func(ctx context.Context) error {
		err := r.Sink.Upload(ctx, path)
		if os.IsNotExist(err) {
			return retry.Permanent(err)
		}
		return err
	})
}

// chunks читает файл частями по size байт
func chunks(path string, size int, fn func(part, total int, data []byte) error) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if size <= 0 {
		size = DefaultChunkSize
	}

	total := (len(data) + size - 1) / size
	if total == 0 {
		total = 1
	}

	for part := 0; part < total; part++ {
		end := min((part+1)*size, len(data))
		if err := fn(part+1, total, data[part*size:end]); err != nil {
			return err
		}
	}
	return nil
}
