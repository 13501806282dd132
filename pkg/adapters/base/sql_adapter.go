package base

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/ruslano69/dbdump/pkg/adapters"
)

// Dialect описывает синтаксические особенности СУБД на базе database/sql
type Dialect struct {
	Name        string                   // "sqlite", "mysql", "mssql"
	QuoteOpen   string                   // '`' для MySQL, '"' для SQLite, '[' для MS SQL
	QuoteClose  string                   // закрывающая кавычка
	Placeholder adapters.PlaceholderStyle // синтаксис параметров драйвера
}

// StandardSQLAdapter - общая часть адаптеров поверх database/sql (SQLite, MySQL, MS SQL).
// Специфичные адаптеры встраивают его и добавляют Connect и метаданные
type StandardSQLAdapter struct {
	DB      *sql.DB
	Dialect Dialect
	Timeout time.Duration

	types *adapters.TypeMappings
}

// NewStandardSQLAdapter создает StandardSQLAdapter поверх открытого *sql.DB
func NewStandardSQLAdapter(db *sql.DB, dialect Dialect, types *adapters.TypeMappings) *StandardSQLAdapter {
	return &StandardSQLAdapter{
		DB:      db,
		Dialect: dialect,
		types:   types,
	}
}

// Query выполняет запрос с именованными параметрами и сканирует все строки
func (a *StandardSQLAdapter) Query(ctx context.Context, query string, params adapters.Bindings) ([]adapters.Row, error) {
	if a == nil || a.DB == nil {
		return nil, fmt.Errorf("adapter not connected")
	}

	sqlText, args, err := adapters.Rebind(query, params, a.Dialect.Placeholder)
	if err != nil {
		return nil, fmt.Errorf("failed to bind parameters: %w", err)
	}

	if a.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.Timeout)
		defer cancel()
	}

	rows, err := a.DB.QueryContext(ctx, sqlText, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	return ScanRows(rows, a.types)
}

// Exec выполняет служебную команду
func (a *StandardSQLAdapter) Exec(ctx context.Context, statement string) error {
	if a == nil || a.DB == nil {
		return fmt.Errorf("adapter not connected")
	}
	if _, err := a.DB.ExecContext(ctx, statement); err != nil {
		return fmt.Errorf("failed to execute SQL: %w", err)
	}
	return nil
}

// QuoteIdentifier экранирует идентификатор; составные имена (schema.table) квотируются по частям
func (a *StandardSQLAdapter) QuoteIdentifier(identifier string) string {
	parts := strings.Split(identifier, ".")
	for i, part := range parts {
		escaped := strings.ReplaceAll(part, a.Dialect.QuoteClose, a.Dialect.QuoteClose+a.Dialect.QuoteClose)
		parts[i] = a.Dialect.QuoteOpen + escaped + a.Dialect.QuoteClose
	}
	return strings.Join(parts, ".")
}

// TypeMappings возвращает реестр типов адаптера
func (a *StandardSQLAdapter) TypeMappings() *adapters.TypeMappings {
	return a.types
}

// Ping проверяет доступность БД
func (a *StandardSQLAdapter) Ping(ctx context.Context) error {
	if a == nil || a.DB == nil {
		return fmt.Errorf("adapter not connected")
	}
	return a.DB.PingContext(ctx)
}

// Close закрывает соединение с БД
func (a *StandardSQLAdapter) Close(ctx context.Context) error {
	if a != nil && a.DB != nil {
		return a.DB.Close()
	}
	return nil
}

// GetDatabaseType возвращает тип СУБД
func (a *StandardSQLAdapter) GetDatabaseType() string {
	return a.Dialect.Name
}

// ScanRows читает все строки результата, приводя значения через реестр типов
func ScanRows(rows *sql.Rows, types *adapters.TypeMappings) ([]adapters.Row, error) {
	columnTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("failed to get column types: %w", err)
	}

	columns := make([]string, len(columnTypes))
	nativeTypes := make([]string, len(columnTypes))
	for i, ct := range columnTypes {
		columns[i] = ct.Name()
		nativeTypes[i] = ct.DatabaseTypeName()
	}

	var result []adapters.Row
	for rows.Next() {
		raw := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range raw {
			ptrs[i] = &raw[i]
		}

		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		values := make([]any, len(columns))
		for i, v := range raw {
			if types != nil {
				values[i] = types.Normalize(nativeTypes[i], v)
			} else {
				values[i] = v
			}
		}

		result = append(result, adapters.Row{Columns: columns, Values: values})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading rows: %w", err)
	}

	return result, nil
}
