package adapters

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
)

// Engine создает новый, еще не подключенный адаптер
type Engine func() Adapter

var (
	enginesMu sync.RWMutex
	engines   = make(map[string]Engine)
)

// Register добавляет движок под именем типа БД. Вызывается из init() пакета движка;
// повторная регистрация того же имени - ошибка сборки программы, поэтому panic
func Register(dbType string, engine Engine) {
	enginesMu.Lock()
	defer enginesMu.Unlock()

	if engine == nil {
		panic("adapters: Register engine is nil for " + dbType)
	}
	if _, dup := engines[dbType]; dup {
		panic("adapters: Register called twice for " + dbType)
	}
	engines[dbType] = engine
}

// Engines возвращает отсортированные имена зарегистрированных движков
func Engines() []string {
	enginesMu.RLock()
	defer enginesMu.RUnlock()
	return slices.Sorted(maps.Keys(engines))
}

// UnknownEngineError - для типа БД не импортирован пакет движка
type UnknownEngineError struct {
	Type      string
	Available []string
}

func (e *UnknownEngineError) Error() string {
	return fmt.Sprintf("unknown database type %q (registered: %s)", e.Type, strings.Join(e.Available, ", "))
}

// New создает адаптер нужного типа и подключает его.
// Диалект выгрузки выбирается по GetDatabaseType, поэтому движок обязан
// сообщать тот же тип, под которым зарегистрирован
func New(ctx context.Context, cfg Config) (Adapter, error) {
	enginesMu.RLock()
	engine, ok := engines[cfg.Type]
	enginesMu.RUnlock()

	if !ok {
		return nil, &UnknownEngineError{Type: cfg.Type, Available: Engines()}
	}

	adapter := engine()
	if err := adapter.Connect(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Type, err)
	}

	if got := adapter.GetDatabaseType(); got != cfg.Type {
		adapter.Close(ctx)
		return nil, fmt.Errorf("engine %s reports database type %s", cfg.Type, got)
	}

	return adapter, nil
}
