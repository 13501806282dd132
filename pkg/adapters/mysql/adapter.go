package mysql

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql" // MySQL driver

	"github.com/ruslano69/dbdump/pkg/adapters"
	"github.com/ruslano69/dbdump/pkg/adapters/base"
)

// AdapterType идентификатор MySQL адаптера
const AdapterType = "mysql"

var _ adapters.Adapter = (*Adapter)(nil)

// Adapter реализует adapters.Adapter для MySQL
type Adapter struct {
	*base.StandardSQLAdapter
	config adapters.Config
}

func init() {
	// Регистрируем MySQL адаптер в фабрике
	adapters.Register(AdapterType, func() adapters.Adapter {
		return &Adapter{}
	})
}

var dialect = base.Dialect{
	Name:        AdapterType,
	QuoteOpen:   "`",
	QuoteClose:  "`",
	Placeholder: adapters.PlaceholderQuestion,
}

// defaultTypeMappings - типы, которые go-sql-driver/mysql возвращает через DatabaseTypeName
func defaultTypeMappings() *adapters.TypeMappings {
	return adapters.NewTypeMappings(map[string]adapters.GenericType{
		"tinyint":    adapters.TypeInteger,
		"smallint":   adapters.TypeInteger,
		"mediumint":  adapters.TypeInteger,
		"int":        adapters.TypeInteger,
		"bigint":     adapters.TypeInteger,
		"unsigned":   adapters.TypeInteger,
		"float":      adapters.TypeFloat,
		"double":     adapters.TypeFloat,
		"decimal":    adapters.TypeDecimal,
		"char":       adapters.TypeString,
		"varchar":    adapters.TypeString,
		"text":       adapters.TypeString,
		"tinytext":   adapters.TypeString,
		"mediumtext": adapters.TypeString,
		"longtext":   adapters.TypeString,
		"json":       adapters.TypeString,
		"date":       adapters.TypeDateTime,
		"datetime":   adapters.TypeDateTime,
		"timestamp":  adapters.TypeDateTime,
		"binary":     adapters.TypeBinary,
		"varbinary":  adapters.TypeBinary,
		"blob":       adapters.TypeBinary,
		"tinyblob":   adapters.TypeBinary,
		"mediumblob": adapters.TypeBinary,
		"longblob":   adapters.TypeBinary,
		"bit":        adapters.TypeBinary,
		"geometry":   adapters.TypeBinary,
	})
}

// Connect подключается к MySQL базе данных
func (a *Adapter) Connect(ctx context.Context, cfg adapters.Config) error {
	db, err := sql.Open("mysql", cfg.DSN)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// Сессионные настройки (SET NAMES и т.д.) должны жить на одном соединении
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	a.StandardSQLAdapter = base.NewStandardSQLAdapter(db, dialect, defaultTypeMappings())
	a.Timeout = cfg.Timeout
	a.config = cfg

	return nil
}

// NewFromDB создает адаптер поверх уже открытого *sql.DB
func NewFromDB(db *sql.DB) *Adapter {
	return &Adapter{
		StandardSQLAdapter: base.NewStandardSQLAdapter(db, dialect, defaultTypeMappings()),
	}
}

// GetDatabaseVersion возвращает версию MySQL
func (a *Adapter) GetDatabaseVersion(ctx context.Context) (string, error) {
	var version string
	err := a.DB.QueryRowContext(ctx, "SELECT VERSION()").Scan(&version)
	if err != nil {
		return "", fmt.Errorf("failed to get version: %w", err)
	}
	return version, nil
}
