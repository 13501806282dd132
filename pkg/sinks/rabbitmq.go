package sinks

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/url"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/ruslano69/dbdump/pkg/config"
)

// publisher - часть amqp.Channel, нужная приемнику
type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// RabbitMQ публикует дамп в очередь частями
type RabbitMQ struct {
	config    config.RabbitMQConfig
	conn      *amqp.Connection
	channel   publisher
	chunkSize int
}

// NewRabbitMQ создает RabbitMQ приемник
func NewRabbitMQ(cfg config.RabbitMQConfig) (*RabbitMQ, error) {
	if cfg.Queue == "" {
		return nil, fmt.Errorf("queue name is required for RabbitMQ")
	}
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.Port == 0 {
		cfg.Port = 5672
		if cfg.UseTLS {
			cfg.Port = 5671
		}
	}
	if cfg.VHost == "" {
		cfg.VHost = "/"
	}
	return &RabbitMQ{config: cfg, chunkSize: DefaultChunkSize}, nil
}

// URL возвращает строку подключения amqp:// или amqps://
func (r *RabbitMQ) URL() string {
	scheme := "amqp"
	if r.config.UseTLS {
		scheme = "amqps"
	}
	auth := ""
	if r.config.User != "" {
		auth = url.UserPassword(r.config.User, r.config.Password).String() + "@"
	}
	return fmt.Sprintf("%s://%s%s:%d/%s", scheme, auth, r.config.Host, r.config.Port, url.PathEscape(r.config.VHost))
}

func (r *RabbitMQ) connect() error {
	if r.channel != nil {
		return nil
	}

	var (
		conn *amqp.Connection
		err  error
	)
	if r.config.UseTLS {
		conn, err = amqp.DialTLS(r.URL(), &tls.Config{
			ServerName: r.config.Host,
			MinVersion: tls.VersionTLS12,
		})
	} else {
		conn, err = amqp.Dial(r.URL())
	}
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to open channel: %w", err)
	}

	// Параметры должны совпадать с существующей очередью
	if _, err := ch.QueueDeclare(r.config.Queue, r.config.Durable, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	r.conn = conn
	r.channel = ch
	return nil
}

// Upload публикует файл в очередь
func (r *RabbitMQ) Upload(ctx context.Context, path string) error {
	if err := r.connect(); err != nil {
		return err
	}

	name := filepath.Base(path)
	return chunks(path, r.chunkSize, func(part, total int, data []byte) error {
		err := r.channel.PublishWithContext(ctx, "", r.config.Queue, false, false, amqp.Publishing{
			ContentType:  "application/octet-stream",
			Body:         data,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			MessageId:    fmt.Sprintf("%s#%d", name, part),
			Headers: amqp.Table{
				"file":  name,
				"part":  int32(part),
				"parts": int32(total),
			},
		})
		if err != nil {
			return fmt.Errorf("failed to publish part %d/%d: %w", part, total, err)
		}
		return nil
	})
}

// Close закрывает канал и соединение
func (r *RabbitMQ) Close() error {
	if r.channel != nil {
		if err := r.channel.Close(); err != nil {
			return fmt.Errorf("failed to close channel: %w", err)
		}
	}
	if r.conn != nil {
		if err := r.conn.Close(); err != nil {
			return fmt.Errorf("failed to close connection: %w", err)
		}
	}
	return nil
}

// Type возвращает тип приемника
func (r *RabbitMQ) Type() string { return "rabbitmq" }
