package sinks

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/ruslano69/dbdump/pkg/config"
	"github.com/ruslano69/dbdump/pkg/retry"
)

func writeDump(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dump.sql")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

type fakeWriter struct {
	msgs   []kafka.Message
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaUploadChunks(t *testing.T) {
	path := writeDump(t, "0123456789")

	k, err := NewKafka(config.KafkaConfig{Brokers: []string{"localhost:9092"}, Topic: "dumps"})
	if err != nil {
		t.Fatalf("NewKafka() error = %v", err)
	}
	w := &fakeWriter{}
	k.writer = w
	k.chunkSize = 4

	if err := k.Upload(context.Background(), path); err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	var got []string
	for _, m := range w.msgs {
		got = append(got, string(m.Value))
		if string(m.Key) != "dump.sql" {
			t.Errorf("key = %s", m.Key)
		}
	}
	if strings.Join(got, "|") != "0123|4567|89" {
		t.Errorf("chunks = %v", got)
	}

	last := w.msgs[2].Headers
	if string(last[1].Value) != "3" || string(last[2].Value) != "3" {
		t.Errorf("headers = %v", last)
	}

	if err := k.Close(); err != nil || !w.closed {
		t.Errorf("Close() error = %v, closed = %v", err, w.closed)
	}
}

func TestKafkaEmptyFileSendsOneMessage(t *testing.T) {
	path := writeDump(t, "")

	k, _ := NewKafka(config.KafkaConfig{Brokers: []string{"b:9092"}, Topic: "t"})
	w := &fakeWriter{}
	k.writer = w

	if err := k.Upload(context.Background(), path); err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if len(w.msgs) != 1 || len(w.msgs[0].Value) != 0 {
		t.Errorf("messages = %d", len(w.msgs))
	}
}

type fakePublisher struct {
	published []amqp.Publishing
	keys      []string
}

func (p *fakePublisher) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	p.keys = append(p.keys, key)
	p.published = append(p.published, msg)
	return nil
}

func (p *fakePublisher) Close() error { return nil }

func TestRabbitMQUpload(t *testing.T) {
	path := writeDump(t, "abcdef")

	r, err := NewRabbitMQ(config.RabbitMQConfig{Queue: "dumps"})
	if err != nil {
		t.Fatalf("NewRabbitMQ() error = %v", err)
	}
	p := &fakePublisher{}
	r.channel = p
	r.chunkSize = 3

	if err := r.Upload(context.Background(), path); err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	if len(p.published) != 2 {
		t.Fatalf("published = %d, want 2", len(p.published))
	}
	if string(p.published[1].Body) != "def" || p.published[1].MessageId != "dump.sql#2" {
		t.Errorf("second message = %+v", p.published[1])
	}
	if p.keys[0] != "dumps" {
		t.Errorf("routing key = %s", p.keys[0])
	}
	if p.published[0].Headers["parts"] != int32(2) {
		t.Errorf("headers = %v", p.published[0].Headers)
	}
}

func TestRabbitMQURL(t *testing.T) {
	tests := []struct {
		cfg  config.RabbitMQConfig
		want string
	}{
		{config.RabbitMQConfig{Queue: "q"}, "amqp://localhost:5672/%2F"},
		{config.RabbitMQConfig{Queue: "q", User: "guest", Password: "p@ss", Host: "mq", VHost: "prod"}, "amqp://guest:p%40ss@mq:5672/prod"},
		{config.RabbitMQConfig{Queue: "q", Host: "mq", UseTLS: true}, "amqps://mq:5671/%2F"},
	}

	for _, tt := range tests {
		r, err := NewRabbitMQ(tt.cfg)
		if err != nil {
			t.Fatalf("NewRabbitMQ() error = %v", err)
		}
		if got := r.URL(); got != tt.want {
			t.Errorf("URL() = %s, want %s", got, tt.want)
		}
	}
}

type fakeUploader struct {
	bucket, key string
	body        string
}

func (u *fakeUploader) Upload(_ context.Context, in *s3.PutObjectInput, _ ...func(*manager.Uploader)) (*manager.UploadOutput, error) {
	u.bucket = *in.Bucket
	u.key = *in.Key
	data, err := io.ReadAll(in.Body)
	u.body = string(data)
	return &manager.UploadOutput{}, err
}

func TestS3Upload(t *testing.T) {
	path := writeDump(t, "INSERT;")

	s, err := NewS3(config.S3Config{Bucket: "backups", Prefix: "nightly/2024"})
	if err != nil {
		t.Fatalf("NewS3() error = %v", err)
	}
	u := &fakeUploader{}
	s.uploader = u

	if err := s.Upload(context.Background(), path); err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if u.bucket != "backups" || u.key != "nightly/2024/dump.sql" || u.body != "INSERT;" {
		t.Errorf("uploaded %s/%s = %q", u.bucket, u.key, u.body)
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		cfg      config.UploadConfig
		wantType string
	}{
		{config.UploadConfig{}, "local"},
		{config.UploadConfig{Type: "file"}, "local"},
		{config.UploadConfig{Type: "s3", S3: &config.S3Config{Bucket: "b"}}, "s3"},
		{config.UploadConfig{Type: "kafka", Kafka: &config.KafkaConfig{Brokers: []string{"b:9092"}, Topic: "t"}}, "kafka"},
		{config.UploadConfig{Type: "rabbitmq", RabbitMQ: &config.RabbitMQConfig{Queue: "q"}}, "rabbitmq"},
	}

	for _, tt := range tests {
		s, err := New(tt.cfg)
		if err != nil {
			t.Fatalf("New(%s) error = %v", tt.cfg.Type, err)
		}
		if s.Type() != tt.wantType {
			t.Errorf("Type() = %s, want %s", s.Type(), tt.wantType)
		}
	}

	if _, err := New(config.UploadConfig{Type: "ftp"}); err == nil {
		t.Error("New(ftp) error = nil")
	}
}

// flakySink падает заданное число раз
type flakySink struct {
	Local
	failures int
	calls    int
}

func (s *flakySink) Upload(context.Context, string) error {
	s.calls++
	if s.calls <= s.failures {
		return errors.New("connection reset")
	}
	return nil
}

func TestWithRetry(t *testing.T) {
	inner := &flakySink{failures: 2}

	cfg := RetryConfig(config.RetryConfig{MaxAttempts: 3, Strategy: "constant", InitialDelayMs: 1, MaxDelayMs: 1}, zerolog.Nop())
	s, err := WithRetry(inner, cfg)
	if err != nil {
		t.Fatalf("WithRetry() error = %v", err)
	}

	if err := s.Upload(context.Background(), "dump.sql"); err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if inner.calls != 3 {
		t.Errorf("calls = %d, want 3", inner.calls)
	}
	if s.Type() != "local" {
		t.Errorf("Type() = %s", s.Type())
	}
}

func TestWithRetryMissingFileIsPermanent(t *testing.T) {
	k, _ := NewKafka(config.KafkaConfig{Brokers: []string{"b:9092"}, Topic: "t"})
	k.writer = &fakeWriter{}

	s, err := WithRetry(k, retry.Config{MaxAttempts: 5, InitialDelay: time.Hour, MaxDelay: time.Hour})
	if err != nil {
		t.Fatalf("WithRetry() error = %v", err)
	}

	err = s.Upload(context.Background(), filepath.Join(t.TempDir(), "missing.sql"))
	if !os.IsNotExist(err) {
		t.Errorf("Upload() error = %v, want not exist", err)
	}
}
