package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ruslano69/dbdump/pkg/adapters"
	"github.com/ruslano69/dbdump/pkg/adapters/base"
	_ "modernc.org/sqlite"
)

const driverSqlite = "sqlite"

// AdapterType идентификатор SQLite адаптера
const AdapterType = "sqlite"

// Compile-time check: Adapter должен реализовывать интерфейс adapters.Adapter
var _ adapters.Adapter = (*Adapter)(nil)

// Регистрация адаптера в глобальной фабрике
func init() {
	adapters.Register(AdapterType, func() adapters.Adapter {
		return &Adapter{}
	})
}

// Adapter представляет адаптер для работы с SQLite
type Adapter struct {
	*base.StandardSQLAdapter
}

// dialect - синтаксис SQLite
var dialect = base.Dialect{
	Name:        AdapterType,
	QuoteOpen:   `"`,
	QuoteClose:  `"`,
	Placeholder: adapters.PlaceholderQuestion,
}

// defaultTypeMappings - декларированные типы SQLite (affinity)
func defaultTypeMappings() *adapters.TypeMappings {
	return adapters.NewTypeMappings(map[string]adapters.GenericType{
		"integer":  adapters.TypeInteger,
		"int":      adapters.TypeInteger,
		"bigint":   adapters.TypeInteger,
		"real":     adapters.TypeFloat,
		"double":   adapters.TypeFloat,
		"numeric":  adapters.TypeDecimal,
		"decimal":  adapters.TypeDecimal,
		"text":     adapters.TypeString,
		"varchar":  adapters.TypeString,
		"blob":     adapters.TypeBinary,
		"boolean":  adapters.TypeBoolean,
		"datetime": adapters.TypeDateTime,
	})
}

// Connect устанавливает подключение к SQLite
func (a *Adapter) Connect(ctx context.Context, cfg adapters.Config) error {
	db, err := sql.Open(driverSqlite, cfg.DSN)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// Дамп использует одно соединение последовательно;
	// для ":memory:" это еще и единственный способ видеть одну и ту же БД
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	a.StandardSQLAdapter = base.NewStandardSQLAdapter(db, dialect, defaultTypeMappings())
	a.Timeout = cfg.Timeout
	return nil
}

// NewFromDB создает адаптер поверх уже открытого *sql.DB (используется в тестах)
func NewFromDB(db *sql.DB) *Adapter {
	return &Adapter{
		StandardSQLAdapter: base.NewStandardSQLAdapter(db, dialect, defaultTypeMappings()),
	}
}

// GetDatabaseVersion возвращает версию SQLite
func (a *Adapter) GetDatabaseVersion(ctx context.Context) (string, error) {
	var version string
	err := a.DB.QueryRowContext(ctx, "SELECT sqlite_version()").Scan(&version)
	if err != nil {
		return "", fmt.Errorf("failed to get version: %w", err)
	}
	return "SQLite " + version, nil
}
