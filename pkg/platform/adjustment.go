package platform

import (
	"context"
	"fmt"
	"sort"

	"github.com/ruslano69/dbdump/pkg/adapters"
)

// Connection - то, что нужно настройкам платформы от подключения
type Connection interface {
	GetDatabaseType() string
	Exec(ctx context.Context, statement string) error
	TypeMappings() *adapters.TypeMappings
}

// Adjustment - особенности СУБД, применяемые один раз перед выгрузкой таблиц
type Adjustment interface {
	// InitConnection выполняет сессионные настройки подключения
	InitConnection(ctx context.Context) error

	// RegisterCustomTypeMappings регистрирует соответствия нестандартных типов (enum и т.д.)
	RegisterCustomTypeMappings()

	// PreambleExtras возвращает операторы, которые пишутся в начало дампа
	PreambleExtras() []string
}

type constructor func(conn Connection) Adjustment

var variants = map[string]constructor{
	"mysql":    func(c Connection) Adjustment { return &MySQL{conn: c} },
	"postgres": func(c Connection) Adjustment { return &PostgreSQL{conn: c} },
	"sqlite":   func(c Connection) Adjustment { return &SQLite{conn: c} },
	"mssql":    func(c Connection) Adjustment { return &MSSQL{conn: c} },
}

// New выбирает настройки по типу СУБД подключения
func New(conn Connection) (Adjustment, error) {
	ctor, ok := variants[conn.GetDatabaseType()]
	if !ok {
		return nil, fmt.Errorf("no platform adjustment for database type: %s (supported: %v)",
			conn.GetDatabaseType(), Supported())
	}
	return ctor(conn), nil
}

// Supported возвращает типы СУБД, для которых есть настройки (отсортированы)
func Supported() []string {
	types := make([]string, 0, len(variants))
	for t := range variants {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Apply выполняет все шаги настройки и возвращает преамбулу
func Apply(ctx context.Context, adj Adjustment) ([]string, error) {
	if err := adj.InitConnection(ctx); err != nil {
		return nil, fmt.Errorf("failed to init connection: %w", err)
	}
	adj.RegisterCustomTypeMappings()
	return adj.PreambleExtras(), nil
}
