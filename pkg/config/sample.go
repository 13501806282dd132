package config

import "github.com/ruslano69/dbdump/pkg/converters"

// Sample возвращает пример конфигурации для указанного типа СУБД
func Sample(dbType string) *Config {
	cfg := &Config{
		Database: DatabaseConfig{Type: dbType},
		Dump:     DumpConfig{BatchSize: 100, HarvestLimit: 100000},
		Tables: []TableConfig{
			{
				Name:    "users",
				OrderBy: "id",
				Filters: []FilterConfig{
					{Column: "status", Operator: "in", Value: []any{"active", "blocked"}},
				},
				Converters: map[string][]converters.Config{
					"email": {{Type: "empty"}, {Type: "hash", Params: map[string]any{"length": 12}}},
					"phone": {{Type: "empty"}, {Type: "mask", Params: map[string]any{"pattern": "first2_last2"}}},
				},
			},
			{
				Name:    "orders",
				OrderBy: "id",
				Limit:   10000,
				Filters: []FilterConfig{
					{Column: "user_id", Operator: "in", References: "users.id"},
				},
			},
			{
				Name:  "order_items",
				Query: "SELECT oi.* FROM order_items oi WHERE $autoConditions",
				Filters: []FilterConfig{
					{Column: "order_id", Operator: "in", References: "orders.id"},
				},
			},
		},
		Output: OutputConfig{
			Path:     "dump.sql.zst",
			Format:   "sql",
			Compress: true,
			Level:    3,
			Checksum: true,
		},
		Log: LogConfig{Level: "info", Format: "console"},
	}

	switch dbType {
	case "postgres":
		cfg.Database.Host = "localhost"
		cfg.Database.Port = 5432
		cfg.Database.Database = "mydb"
		cfg.Database.User = "postgres"
		cfg.Database.Password = "password"
		cfg.Database.Schema = "public"
		cfg.Database.SSLMode = "disable"

	case "mssql":
		cfg.Database.Host = "localhost"
		cfg.Database.Port = 1433
		cfg.Database.Database = "mydb"
		cfg.Database.User = "sa"
		cfg.Database.Password = "YourPassword123"

	case "mysql":
		cfg.Database.Host = "localhost"
		cfg.Database.Port = 3306
		cfg.Database.Database = "mydb"
		cfg.Database.User = "root"
		cfg.Database.Password = "password"

	default:
		cfg.Database.Type = "sqlite"
		cfg.Database.Database = "database.db"
	}

	return cfg
}
