/*
Package adapters предоставляет универсальный интерфейс чтения из различных СУБД.

# Архитектура двухуровневого адаптера

	┌─────────────────────────────────────────┐
	│    Dumper (pkg/dumper)                  │
	│  - Cursor / Planner / Predicate         │
	└─────────────────┬───────────────────────┘
	                  │
	┌─────────────────▼───────────────────────┐
	│  Level 1: Universal Adapter Interface   │  ← pkg/adapters/adapter.go
	│                                          │
	│  type Adapter interface {               │
	│    Connect(ctx, Config) error           │
	│    Query(ctx, sql, Bindings) ([]Row)    │
	│    QuoteIdentifier(name) string         │
	│    ...                                   │
	│  }                                       │
	└─────────────────┬───────────────────────┘
	                  │
	     ┌────────────┼────────────┬──────────┐
	┌────▼─────┐ ┌────▼─────┐ ┌────▼────┐ ┌───▼─────┐
	│ SQLite   │ │PostgreSQL│ │ MySQL   │ │ MS SQL  │  ← Level 2
	└──────────┘ └──────────┘ └─────────┘ └─────────┘

# Параметры запросов

Запросы пишутся с именованными параметрами ":name". Rebind переписывает их
в синтаксис драйвера:
  - SQLite, MySQL: "?" (значение повторяется для каждого вхождения)
  - PostgreSQL: "$1", "$2" (одно значение на имя)
  - MS SQL: "@name" + sql.Named

# Движки

Каждый пакет движка регистрирует себя в init(); без импорта пакета
adapters.New вернет UnknownEngineError:

	import _ "github.com/ruslano69/dbdump/pkg/adapters/sqlite"

	adapter, err := adapters.New(ctx, adapters.Config{Type: "sqlite", DSN: "app.db"})

# Типы

TypeMappings сопоставляет нативные типы общим (string, integer, binary, ...).
Драйверы database/sql отдают текст как []byte; ScanRows по реестру превращает
его в string, int64, float64 или bool и оставляет []byte только бинарным типам.
*/
package adapters
