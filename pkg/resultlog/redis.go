package resultlog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ruslano69/dbdump/pkg/config"
	"github.com/ruslano69/dbdump/pkg/dumper"
)

// RunResult - состояние выгрузки, публикуемое в Redis после завершения
// (успешного или с ошибкой).
//
// Redis-ключи:
//
//	SET  dbdump:run:<name>:state  <JSON>  EX <ttl>  - последнее состояние для GET
//	PUB  dbdump:run:<name>                          - событие для подписчиков
type RunResult struct {
	Name       string              `json:"name"`
	Status     string              `json:"status"` // "success" | "failed"
	StartedAt  time.Time           `json:"started_at"`
	FinishedAt time.Time           `json:"finished_at"`
	DurationMs int64               `json:"duration_ms"`
	Rows       int                 `json:"rows"`
	Queries    int                 `json:"queries"`
	Tables     []dumper.TableStats `json:"tables,omitempty"`
	Output     string              `json:"output,omitempty"`
	Checksum   string              `json:"checksum,omitempty"`
	Error      *string             `json:"error,omitempty"`
}

// NewRunResult собирает результат выгрузки
func NewRunResult(name string, started time.Time, stats dumper.Stats, runErr error) RunResult {
	finished := time.Now()
	result := RunResult{
		Name:       name,
		Status:     "success",
		StartedAt:  started,
		FinishedAt: finished,
		DurationMs: finished.Sub(started).Milliseconds(),
		Rows:       stats.Rows,
		Queries:    stats.Queries,
		Tables:     stats.Tables,
	}
	if runErr != nil {
		result.Status = "failed"
		msg := runErr.Error()
		result.Error = &msg
	}
	return result
}

// StateKey возвращает ключ последнего состояния
func StateKey(name string) string {
	return fmt.Sprintf("dbdump:run:%s:state", name)
}

// Channel возвращает канал событий
func Channel(name string) string {
	return fmt.Sprintf("dbdump:run:%s", name)
}

// RedisPublisher публикует результат выгрузки в Redis
type RedisPublisher struct {
	client *redis.Client
	config config.ResultLogConfig
}

// NewRedisPublisher создает publisher по конфигурации
func NewRedisPublisher(cfg config.ResultLogConfig) *RedisPublisher {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &RedisPublisher{client: client, config: cfg}
}

// Publish сохраняет состояние с TTL и публикует событие.
// Вызывается независимо от исхода выгрузки
func (p *RedisPublisher) Publish(ctx context.Context, result RunResult) error {
	if result.Name == "" {
		result.Name = p.config.Name
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	ttl := time.Duration(p.config.TTL) * time.Second

	if err := p.client.Set(ctx, StateKey(p.config.Name), payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis SET failed: %w", err)
	}
	if err := p.client.Publish(ctx, Channel(p.config.Name), payload).Err(); err != nil {
		return fmt.Errorf("redis PUBLISH failed: %w", err)
	}

	return nil
}

// Close закрывает соединение с Redis
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
