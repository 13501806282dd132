package config

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ruslano69/dbdump/pkg/adapters"
	"github.com/ruslano69/dbdump/pkg/converters"
	"github.com/ruslano69/dbdump/pkg/dumper"
	"github.com/ruslano69/dbdump/pkg/output"
	"github.com/ruslano69/dbdump/pkg/platform"
	"github.com/ruslano69/dbdump/pkg/security"
)

// Config - полная конфигурация выгрузки
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Dump      DumpConfig      `yaml:"dump,omitempty"`
	Tables    []TableConfig   `yaml:"tables"`
	Output    OutputConfig    `yaml:"output"`
	Upload    UploadConfig    `yaml:"upload,omitempty"`
	ResultLog ResultLogConfig `yaml:"result_log,omitempty"`
	Log       LogConfig       `yaml:"log,omitempty"`
}

// DatabaseConfig - параметры подключения к источнику.
// DSN имеет приоритет над отдельными полями
type DatabaseConfig struct {
	Type     string `yaml:"type"`               // sqlite, postgres, mysql, mssql
	DSN      string `yaml:"dsn,omitempty"`      // Строка подключения целиком
	Host     string `yaml:"host,omitempty"`     // Для сетевых СУБД
	Port     int    `yaml:"port,omitempty"`     // Порт
	Database string `yaml:"database,omitempty"` // Имя БД или путь к файлу SQLite
	User     string `yaml:"user,omitempty"`     // Пользователь
	Password string `yaml:"password,omitempty"` // Пароль
	Schema   string `yaml:"schema,omitempty"`   // Схема PostgreSQL (по умолчанию public)
	SSLMode  string `yaml:"sslmode,omitempty"`  // SSL режим PostgreSQL
	Timeout  int    `yaml:"timeout,omitempty"`  // Таймаут одного запроса в секундах (0 = без таймаута)
}

// DumpConfig - параметры постраничной выборки
type DumpConfig struct {
	BatchSize    int `yaml:"batch_size"`              // Размер страницы (по умолчанию 100)
	HarvestLimit int `yaml:"harvest_limit,omitempty"` // Максимум собранных значений на колонку (0 = без ограничения)

	// UnsafeQueries отключает проверку пользовательских запросов на read-only
	UnsafeQueries bool `yaml:"unsafe_queries,omitempty"`
}

// TableConfig - таблица в порядке выгрузки
type TableConfig struct {
	Name       string                         `yaml:"name"`
	Limit      int                            `yaml:"limit,omitempty"`
	OrderBy    string                         `yaml:"order_by,omitempty"`
	Query      string                         `yaml:"query,omitempty"`
	Filters    []FilterConfig                 `yaml:"filters,omitempty"`
	Converters map[string][]converters.Config `yaml:"converters,omitempty"`
}

// FilterConfig - фильтр таблицы.
// Value задает обычный фильтр, References ("table.column") - зависимый
type FilterConfig struct {
	Column     string `yaml:"column"`
	Operator   string `yaml:"operator"`
	Value      any    `yaml:"value,omitempty"`
	References string `yaml:"references,omitempty"`
}

// OutputConfig - файл дампа
type OutputConfig struct {
	Path     string `yaml:"path"`
	Format   string `yaml:"format,omitempty"`   // sql (по умолчанию), xlsx
	Compress bool   `yaml:"compress,omitempty"` // zstd
	Level    int    `yaml:"level,omitempty"`    // Уровень zstd 1-22 (по умолчанию 3)
	Checksum bool   `yaml:"checksum,omitempty"` // Писать <path>.xxh3
}

// UploadConfig - куда отправить готовый дамп (пустой type = никуда)
type UploadConfig struct {
	Type     string          `yaml:"type,omitempty"` // s3, kafka, rabbitmq
	S3       *S3Config       `yaml:"s3,omitempty"`
	Kafka    *KafkaConfig    `yaml:"kafka,omitempty"`
	RabbitMQ *RabbitMQConfig `yaml:"rabbitmq,omitempty"`
	Retry    RetryConfig     `yaml:"retry,omitempty"`
}

// S3Config - бакет для загрузки дампа
type S3Config struct {
	Bucket       string `yaml:"bucket"`
	Prefix       string `yaml:"prefix,omitempty"`
	Region       string `yaml:"region,omitempty"`
	Endpoint     string `yaml:"endpoint,omitempty"` // MinIO и другие S3-совместимые хранилища
	AccessKey    string `yaml:"access_key,omitempty"`
	SecretKey    string `yaml:"secret_key,omitempty"`
	UsePathStyle bool   `yaml:"use_path_style,omitempty"`
}

// KafkaConfig - топик для публикации дампа
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// RabbitMQConfig - очередь для публикации дампа
type RabbitMQConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port,omitempty"`
	User     string `yaml:"user,omitempty"`
	Password string `yaml:"password,omitempty"`
	VHost    string `yaml:"vhost,omitempty"`
	Queue    string `yaml:"queue"`
	UseTLS   bool   `yaml:"use_tls,omitempty"`
	Durable  bool   `yaml:"durable,omitempty"`
}

// RetryConfig - повторы загрузки
type RetryConfig struct {
	MaxAttempts    int     `yaml:"max_attempts,omitempty"`    // 0 или 1 = без повторов
	Strategy       string  `yaml:"strategy,omitempty"`        // constant, linear, exponential
	InitialDelayMs int     `yaml:"initial_delay_ms,omitempty"`
	MaxDelayMs     int     `yaml:"max_delay_ms,omitempty"`
	Jitter         float64 `yaml:"jitter,omitempty"`
}

// ResultLogConfig - публикация результата выгрузки в Redis
type ResultLogConfig struct {
	Type     string `yaml:"type,omitempty"`     // redis (пустое = отключено)
	Address  string `yaml:"address,omitempty"`  // Адрес Redis, например "127.0.0.1:6379"
	Name     string `yaml:"name,omitempty"`     // Имя выгрузки в ключе/канале
	Password string `yaml:"password,omitempty"` // Пароль Redis (опционально)
	DB       int    `yaml:"db,omitempty"`       // Индекс БД Redis
	TTL      int    `yaml:"ttl,omitempty"`      // TTL ключа в секундах (по умолчанию 3600)
}

// LogConfig - параметры логирования
type LogConfig struct {
	Level  string `yaml:"level,omitempty"`  // debug, info, warn, error
	Format string `yaml:"format,omitempty"` // console (по умолчанию), json
}

// LoadConfig читает, проверяет и дополняет значениями по умолчанию YAML конфигурацию
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse разбирает YAML конфигурацию из памяти
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	cfg.SetDefaults()
	return &cfg, nil
}

// Save сохраняет конфигурацию в YAML файл
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate проверяет конфигурацию
func (c *Config) Validate() error {
	if err := c.Database.Validate(); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if c.Dump.BatchSize < 0 {
		return fmt.Errorf("dump: batch_size must be >= 0")
	}
	if c.Dump.HarvestLimit < 0 {
		return fmt.Errorf("dump: harvest_limit must be >= 0")
	}

	if len(c.Tables) == 0 {
		return fmt.Errorf("at least one table is required")
	}
	seen := make(map[string]bool, len(c.Tables))
	for i := range c.Tables {
		t := &c.Tables[i]
		if err := t.Validate(); err != nil {
			return fmt.Errorf("tables[%d] (%s): %w", i, t.Name, err)
		}
		if seen[t.Name] {
			return fmt.Errorf("tables[%d]: duplicate table %s", i, t.Name)
		}
		if t.Query != "" && !c.Dump.UnsafeQueries {
			if err := security.ValidateQuery(t.Name, t.Query); err != nil {
				return fmt.Errorf("tables[%d]: %w", i, err)
			}
		}
		seen[t.Name] = true
	}

	if err := c.Output.Validate(); err != nil {
		return fmt.Errorf("output: %w", err)
	}
	if err := c.Upload.Validate(); err != nil {
		return fmt.Errorf("upload: %w", err)
	}
	if err := c.ResultLog.Validate(); err != nil {
		return fmt.Errorf("result_log: %w", err)
	}
	if err := c.Log.Validate(); err != nil {
		return fmt.Errorf("log: %w", err)
	}

	return nil
}

// Validate проверяет параметры подключения
func (d *DatabaseConfig) Validate() error {
	if d.Type == "" {
		return fmt.Errorf("type is required")
	}
	if !slices.Contains(platform.Supported(), d.Type) {
		return fmt.Errorf("unsupported type '%s', must be one of: %s",
			d.Type, strings.Join(platform.Supported(), ", "))
	}
	if d.DSN == "" && d.Database == "" {
		return fmt.Errorf("dsn or database is required")
	}
	if d.Timeout < 0 {
		return fmt.Errorf("timeout must be >= 0")
	}
	return nil
}

// Validate проверяет таблицу и ее фильтры
func (t *TableConfig) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("name is required")
	}
	if t.Limit < 0 {
		return fmt.Errorf("limit must be >= 0")
	}

	for i, f := range t.Filters {
		if err := f.Validate(); err != nil {
			return fmt.Errorf("filters[%d] (%s): %w", i, f.Column, err)
		}
		if table, _, err := splitReference(f.References); err == nil && table == t.Name {
			return fmt.Errorf("filters[%d] (%s): references the table itself", i, f.Column)
		}
	}

	for column, chain := range t.Converters {
		for i, conv := range chain {
			if conv.Type == "" {
				return fmt.Errorf("converters.%s[%d]: type is required", column, i)
			}
		}
	}

	return nil
}

// Validate проверяет фильтр
func (f *FilterConfig) Validate() error {
	if f.Column == "" {
		return fmt.Errorf("column is required")
	}

	op, err := dumper.ParseOperator(f.Operator)
	if err != nil {
		return err
	}

	if f.References != "" {
		if f.Value != nil {
			return fmt.Errorf("value and references are mutually exclusive")
		}
		if !op.IsSet() {
			return fmt.Errorf("references require operator in or not_in, got %s", op)
		}
		if _, _, err := splitReference(f.References); err != nil {
			return err
		}
		return nil
	}

	if op.IsSet() {
		if _, ok := f.Value.([]any); !ok && f.Value != nil {
			return fmt.Errorf("operator %s requires a list value", op)
		}
	}

	return nil
}

// Validate проверяет выходной файл
func (o *OutputConfig) Validate() error {
	if _, err := output.ParseFormat(o.Format); err != nil {
		return err
	}
	if o.Level < 0 || o.Level > 22 {
		return fmt.Errorf("level must be between 1 and 22")
	}
	return nil
}

// Validate проверяет параметры загрузки
func (u *UploadConfig) Validate() error {
	switch u.Type {
	case "", "none", "file":
	case "s3":
		if u.S3 == nil {
			return fmt.Errorf("s3 configuration is required when type is 's3'")
		}
		if u.S3.Bucket == "" {
			return fmt.Errorf("s3.bucket is required")
		}
	case "kafka":
		if u.Kafka == nil {
			return fmt.Errorf("kafka configuration is required when type is 'kafka'")
		}
		if len(u.Kafka.Brokers) == 0 {
			return fmt.Errorf("kafka.brokers is required")
		}
		if u.Kafka.Topic == "" {
			return fmt.Errorf("kafka.topic is required")
		}
	case "rabbitmq":
		if u.RabbitMQ == nil {
			return fmt.Errorf("rabbitmq configuration is required when type is 'rabbitmq'")
		}
		if u.RabbitMQ.Queue == "" {
			return fmt.Errorf("rabbitmq.queue is required")
		}
	default:
		return fmt.Errorf("unsupported upload type '%s', must be one of: s3, kafka, rabbitmq", u.Type)
	}

	switch u.Retry.Strategy {
	case "", "constant", "linear", "exponential":
	default:
		return fmt.Errorf("retry.strategy must be constant, linear or exponential")
	}
	if u.Retry.MaxAttempts < 0 {
		return fmt.Errorf("retry.max_attempts must be >= 0")
	}
	if u.Retry.Jitter < 0 || u.Retry.Jitter > 1 {
		return fmt.Errorf("retry.jitter must be between 0.0 and 1.0")
	}
	return nil
}

// Validate проверяет публикацию результата
func (r *ResultLogConfig) Validate() error {
	if r.Type == "" {
		return nil
	}
	if r.Type != "redis" {
		return fmt.Errorf("unsupported type '%s', must be 'redis'", r.Type)
	}
	if r.Address == "" {
		return fmt.Errorf("address is required when type is 'redis'")
	}
	if r.Name == "" {
		return fmt.Errorf("name is required when type is 'redis'")
	}
	return nil
}

// Validate проверяет параметры логирования
func (l *LogConfig) Validate() error {
	switch strings.ToLower(l.Level) {
	case "", "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unsupported level '%s'", l.Level)
	}
	switch l.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("format must be 'console' or 'json'")
	}
	return nil
}

// SetDefaults заполняет незаданные значения
func (c *Config) SetDefaults() {
	if c.Dump.BatchSize == 0 {
		c.Dump.BatchSize = dumper.DefaultBatchSize
	}

	if c.Database.Type == "postgres" && c.Database.Schema == "" {
		c.Database.Schema = "public"
	}

	if c.Output.Format == "" {
		c.Output.Format = string(output.FormatSQL)
	}
	if c.Output.Path == "" {
		c.Output.Path = "dump." + c.Output.Format
		if c.Output.Compress {
			c.Output.Path += ".zst"
		}
	}
	if c.Output.Compress && c.Output.Level == 0 {
		c.Output.Level = 3
	}

	if c.Upload.RabbitMQ != nil {
		if c.Upload.RabbitMQ.Port == 0 {
			c.Upload.RabbitMQ.Port = 5672
			if c.Upload.RabbitMQ.UseTLS {
				c.Upload.RabbitMQ.Port = 5671
			}
		}
		if c.Upload.RabbitMQ.VHost == "" {
			c.Upload.RabbitMQ.VHost = "/"
		}
	}
	if c.Upload.Retry.Strategy == "" {
		c.Upload.Retry.Strategy = "exponential"
	}
	if c.Upload.Retry.InitialDelayMs == 0 {
		c.Upload.Retry.InitialDelayMs = 1000
	}
	if c.Upload.Retry.MaxDelayMs == 0 {
		c.Upload.Retry.MaxDelayMs = 30000
	}

	if c.ResultLog.Type == "redis" && c.ResultLog.TTL == 0 {
		c.ResultLog.TTL = 3600
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
}

// AdapterConfig собирает параметры для adapters.New
func (d *DatabaseConfig) AdapterConfig() adapters.Config {
	return adapters.Config{
		Type:    d.Type,
		DSN:     d.BuildDSN(),
		Schema:  d.Schema,
		Timeout: time.Duration(d.Timeout) * time.Second,
	}
}

// BuildDSN строит строку подключения из отдельных полей (если dsn не задан)
func (d *DatabaseConfig) BuildDSN() string {
	if d.DSN != "" {
		return d.DSN
	}

	switch d.Type {
	case "postgres":
		sslMode := d.SSLMode
		if sslMode == "" {
			sslMode = "disable"
		}
		schema := d.Schema
		if schema == "" {
			schema = "public"
		}
		return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s&search_path=%s",
			d.User, d.Password, d.Host, d.Port, d.Database, sslMode, schema)

	case "mssql":
		return fmt.Sprintf("sqlserver://%s:%s@%s:%d?database=%s",
			d.User, d.Password, d.Host, d.Port, d.Database)

	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
			d.User, d.Password, d.Host, d.Port, d.Database)

	case "sqlite":
		return d.Database
	}

	return ""
}

// DumperTables переводит таблицы конфигурации в настройки выгрузки, сохраняя порядок
func (c *Config) DumperTables() ([]dumper.TableConfig, error) {
	return c.DumperTablesWith(converters.DefaultFactory)
}

// DumperTablesWith - то же, что DumperTables, с собственной фабрикой конвертеров
func (c *Config) DumperTablesWith(factory *converters.Factory) ([]dumper.TableConfig, error) {
	tables := make([]dumper.TableConfig, 0, len(c.Tables))

	for _, t := range c.Tables {
		table := dumper.TableConfig{
			Name:    t.Name,
			Limit:   t.Limit,
			OrderBy: t.OrderBy,
			Query:   t.Query,
		}

		for _, f := range t.Filters {
			filter, err := f.toFilter()
			if err != nil {
				return nil, fmt.Errorf("table %s: %w", t.Name, err)
			}
			table.Filters = append(table.Filters, filter)
		}

		if len(t.Converters) > 0 {
			table.Converters = make(map[string]converters.Chain, len(t.Converters))
			for column, configs := range t.Converters {
				chain, err := factory.CreateChain(configs)
				if err != nil {
					return nil, fmt.Errorf("table %s, column %s: %w", t.Name, column, err)
				}
				table.Converters[column] = chain
			}
		}

		tables = append(tables, table)
	}

	return tables, nil
}

func (f FilterConfig) toFilter() (dumper.Filter, error) {
	op, err := dumper.ParseOperator(f.Operator)
	if err != nil {
		return dumper.Filter{}, err
	}

	if f.References != "" {
		table, column, err := splitReference(f.References)
		if err != nil {
			return dumper.Filter{}, err
		}
		return dumper.NewDependentFilter(f.Column, op, table, column), nil
	}

	return dumper.NewFilter(f.Column, op, f.Value), nil
}

// splitReference разбирает "table.column"; схема допустима: "sales.orders.id"
func splitReference(ref string) (string, string, error) {
	idx := strings.LastIndex(ref, ".")
	if idx <= 0 || idx == len(ref)-1 {
		return "", "", fmt.Errorf("references must be in form table.column, got %q", ref)
	}
	return ref[:idx], ref[idx+1:], nil
}
