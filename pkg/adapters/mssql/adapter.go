package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/denisenkom/go-mssqldb" // MS SQL Server driver

	"github.com/ruslano69/dbdump/pkg/adapters"
	"github.com/ruslano69/dbdump/pkg/adapters/base"
)

// AdapterType идентификатор MS SQL адаптера
const AdapterType = "mssql"

var _ adapters.Adapter = (*Adapter)(nil)

// Adapter implements the adapters.Adapter interface for Microsoft SQL Server.
type Adapter struct {
	*base.StandardSQLAdapter

	// Version information
	serverVersion    int    // Major version: 11=2012, 13=2016, 14=2017, 15=2019, 16=2022
	serverVersionStr string // Full version string
}

func init() {
	// Register MS SQL Server adapter in factory
	adapters.Register(AdapterType, func() adapters.Adapter {
		return &Adapter{}
	})
}

var dialect = base.Dialect{
	Name:        AdapterType,
	QuoteOpen:   "[",
	QuoteClose:  "]",
	Placeholder: adapters.PlaceholderAtNamed,
}

func defaultTypeMappings() *adapters.TypeMappings {
	return adapters.NewTypeMappings(map[string]adapters.GenericType{
		"tinyint":          adapters.TypeInteger,
		"smallint":         adapters.TypeInteger,
		"int":              adapters.TypeInteger,
		"bigint":           adapters.TypeInteger,
		"bit":              adapters.TypeBoolean,
		"real":             adapters.TypeFloat,
		"float":            adapters.TypeFloat,
		"decimal":          adapters.TypeDecimal,
		"numeric":          adapters.TypeDecimal,
		"money":            adapters.TypeDecimal,
		"smallmoney":       adapters.TypeDecimal,
		"char":             adapters.TypeString,
		"varchar":          adapters.TypeString,
		"nchar":            adapters.TypeString,
		"nvarchar":         adapters.TypeString,
		"text":             adapters.TypeString,
		"ntext":            adapters.TypeString,
		"uniqueidentifier": adapters.TypeString,
		"xml":              adapters.TypeString,
		"date":             adapters.TypeDateTime,
		"datetime":         adapters.TypeDateTime,
		"datetime2":        adapters.TypeDateTime,
		"datetimeoffset":   adapters.TypeDateTime,
		"binary":           adapters.TypeBinary,
		"varbinary":        adapters.TypeBinary,
		"image":            adapters.TypeBinary,
		"timestamp":        adapters.TypeBinary,
	})
}

// Connect implements adapters.Adapter interface.
// Connects to MS SQL Server and detects the server version.
func (a *Adapter) Connect(ctx context.Context, cfg adapters.Config) error {
	db, err := sql.Open("sqlserver", cfg.DSN)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	a.StandardSQLAdapter = base.NewStandardSQLAdapter(db, dialect, defaultTypeMappings())
	a.Timeout = cfg.Timeout

	if err := a.detectVersion(ctx); err != nil {
		db.Close()
		return err
	}

	return nil
}

// NewFromDB создает адаптер поверх уже открытого *sql.DB
func NewFromDB(db *sql.DB) *Adapter {
	return &Adapter{
		StandardSQLAdapter: base.NewStandardSQLAdapter(db, dialect, defaultTypeMappings()),
	}
}

// detectVersion reads SERVERPROPERTY('ProductVersion') to know the major version.
func (a *Adapter) detectVersion(ctx context.Context) error {
	var version string
	err := a.DB.QueryRowContext(ctx, "SELECT CAST(SERVERPROPERTY('ProductVersion') AS NVARCHAR(128))").Scan(&version)
	if err != nil {
		return fmt.Errorf("failed to detect server version: %w", err)
	}

	a.serverVersionStr = version
	a.serverVersion = parseServerVersion(version)
	return nil
}

// parseServerVersion extracts major version from "15.0.2000.5"
func parseServerVersion(version string) int {
	major, _, _ := strings.Cut(version, ".")
	n, err := strconv.Atoi(major)
	if err != nil {
		return 0
	}
	return n
}

// SupportsOffsetFetch reports whether OFFSET/FETCH paging is available (SQL Server 2012+).
func (a *Adapter) SupportsOffsetFetch() bool {
	return a.serverVersion == 0 || a.serverVersion >= 11
}

// GetDatabaseVersion returns the full product version string.
func (a *Adapter) GetDatabaseVersion(ctx context.Context) (string, error) {
	if a.serverVersionStr != "" {
		return "SQL Server " + a.serverVersionStr, nil
	}
	if err := a.detectVersion(ctx); err != nil {
		return "", err
	}
	return "SQL Server " + a.serverVersionStr, nil
}
