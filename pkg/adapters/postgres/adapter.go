package postgres

import (
	"context"
	"database/sql/driver"
	"fmt"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ruslano69/dbdump/pkg/adapters"
)

// AdapterType идентификатор PostgreSQL адаптера
const AdapterType = "postgres"

// Compile-time check: Adapter должен реализовывать интерфейс adapters.Adapter
var _ adapters.Adapter = (*Adapter)(nil)

// Регистрация адаптера в глобальной фабрике
func init() {
	adapters.Register(AdapterType, func() adapters.Adapter {
		return &Adapter{}
	})
}

// Adapter представляет адаптер для работы с PostgreSQL
type Adapter struct {
	pool   *pgxpool.Pool
	schema string // public, custom, etc.

	types   *adapters.TypeMappings
	typeMap *pgtype.Map

	// oidNames - кэш имен типов, неизвестных pgx (enum, domain и т.д.)
	oidMu    sync.Mutex
	oidNames map[uint32]string
}

// defaultTypeMappings - встроенные типы PostgreSQL
func defaultTypeMappings() *adapters.TypeMappings {
	return adapters.NewTypeMappings(map[string]adapters.GenericType{
		"int2":        adapters.TypeInteger,
		"int4":        adapters.TypeInteger,
		"int8":        adapters.TypeInteger,
		"float4":      adapters.TypeFloat,
		"float8":      adapters.TypeFloat,
		"numeric":     adapters.TypeDecimal,
		"bool":        adapters.TypeBoolean,
		"text":        adapters.TypeString,
		"varchar":     adapters.TypeString,
		"bpchar":      adapters.TypeString,
		"name":        adapters.TypeString,
		"uuid":        adapters.TypeString,
		"json":        adapters.TypeString,
		"jsonb":       adapters.TypeString,
		"date":        adapters.TypeDateTime,
		"timestamp":   adapters.TypeDateTime,
		"timestamptz": adapters.TypeDateTime,
		"bytea":       adapters.TypeBinary,
	})
}

// Connect устанавливает подключение к PostgreSQL
func (a *Adapter) Connect(ctx context.Context, cfg adapters.Config) error {
	// Парсим connection string
	config, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return fmt.Errorf("failed to parse connection string: %w", err)
	}

	// Дамп читает последовательно одним соединением
	if cfg.MaxConns > 0 {
		config.MaxConns = int32(cfg.MaxConns)
	} else {
		config.MaxConns = 1
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	a.init(pool, cfg.Schema)
	return nil
}

// NewFromPool создает адаптер поверх готового пула
func NewFromPool(pool *pgxpool.Pool, schema string) *Adapter {
	a := &Adapter{}
	a.init(pool, schema)
	return a
}

func (a *Adapter) init(pool *pgxpool.Pool, schema string) {
	a.pool = pool
	a.schema = schema
	if a.schema == "" {
		a.schema = "public" // default schema
	}
	a.types = defaultTypeMappings()
	a.typeMap = pgtype.NewMap()
	a.oidNames = make(map[uint32]string)
}

// Close закрывает connection pool
func (a *Adapter) Close(ctx context.Context) error {
	if a.pool != nil {
		a.pool.Close()
	}
	return nil
}

// Ping проверяет доступность БД
func (a *Adapter) Ping(ctx context.Context) error {
	if a.pool == nil {
		return fmt.Errorf("adapter not connected")
	}
	return a.pool.Ping(ctx)
}

// Query выполняет запрос, переписывая :name в $n
func (a *Adapter) Query(ctx context.Context, query string, params adapters.Bindings) ([]adapters.Row, error) {
	if a.pool == nil {
		return nil, fmt.Errorf("adapter not connected")
	}

	sqlText, args, err := adapters.Rebind(query, params, adapters.PlaceholderDollar)
	if err != nil {
		return nil, fmt.Errorf("failed to bind parameters: %w", err)
	}

	rows, err := a.pool.Query(ctx, sqlText, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	columns := make([]string, len(fields))
	oids := make([]uint32, len(fields))
	for i, fd := range fields {
		columns[i] = fd.Name
		oids[i] = fd.DataTypeOID
	}

	var raw [][]any
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("failed to read row values: %w", err)
		}
		raw = append(raw, values)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading rows: %w", err)
	}

	// Имена типов резолвим после закрытия курсора: соединение одно
	rows.Close()
	nativeTypes := make([]string, len(oids))
	for i, oid := range oids {
		nativeTypes[i] = a.typeName(ctx, oid)
	}

	result := make([]adapters.Row, 0, len(raw))
	for _, values := range raw {
		for i, v := range values {
			values[i] = a.normalizeValue(nativeTypes[i], v)
		}
		result = append(result, adapters.Row{Columns: columns, Values: values})
	}

	return result, nil
}

// Exec выполняет служебную команду
func (a *Adapter) Exec(ctx context.Context, statement string) error {
	if a.pool == nil {
		return fmt.Errorf("adapter not connected")
	}
	if _, err := a.pool.Exec(ctx, statement); err != nil {
		return fmt.Errorf("failed to execute SQL: %w", err)
	}
	return nil
}

// QuoteIdentifier экранирует идентификатор двойными кавычками (schema.table по частям)
func (a *Adapter) QuoteIdentifier(identifier string) string {
	parts := strings.Split(identifier, ".")
	return pgx.Identifier(parts).Sanitize()
}

// TypeMappings возвращает реестр типов адаптера
func (a *Adapter) TypeMappings() *adapters.TypeMappings {
	return a.types
}

// GetDatabaseVersion возвращает версию PostgreSQL
func (a *Adapter) GetDatabaseVersion(ctx context.Context) (string, error) {
	var version string
	err := a.pool.QueryRow(ctx, "SELECT version()").Scan(&version)
	if err != nil {
		return "", fmt.Errorf("failed to get version: %w", err)
	}
	return version, nil
}

// GetDatabaseType возвращает тип СУБД
func (a *Adapter) GetDatabaseType() string {
	return AdapterType
}

// Pool возвращает *pgxpool.Pool для прямого доступа
func (a *Adapter) Pool() *pgxpool.Pool {
	return a.pool
}

// Schema возвращает текущую схему
func (a *Adapter) Schema() string {
	return a.schema
}

// typeName возвращает имя типа по OID. Пользовательские типы ищутся в pg_type;
// перечисления получают общее имя "enum"
func (a *Adapter) typeName(ctx context.Context, oid uint32) string {
	if t, ok := a.typeMap.TypeForOID(oid); ok {
		return t.Name
	}

	a.oidMu.Lock()
	defer a.oidMu.Unlock()

	if name, ok := a.oidNames[oid]; ok {
		return name
	}

	var name, kind string
	err := a.pool.QueryRow(ctx,
		"SELECT typname, typtype::text FROM pg_catalog.pg_type WHERE oid = $1", oid,
	).Scan(&name, &kind)
	if err != nil {
		// Не кэшируем: следующий запрос попробует еще раз
		return ""
	}
	if kind == "e" {
		name = "enum"
	}
	a.oidNames[oid] = name
	return name
}

// normalizeValue приводит значения pgx к простым Go-типам
func (a *Adapter) normalizeValue(nativeType string, v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case [16]byte:
		// uuid
		return fmt.Sprintf("%x-%x-%x-%x-%x", val[0:4], val[4:6], val[6:8], val[8:10], val[10:16])
	case int16:
		return int64(val)
	case int32:
		return int64(val)
	case float32:
		return float64(val)
	case driver.Valuer:
		// pgtype.Numeric и подобные
		dv, err := val.Value()
		if err != nil {
			return fmt.Sprint(v)
		}
		return a.types.Normalize(nativeType, dv)
	}
	return a.types.Normalize(nativeType, v)
}
