package dumper

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/ruslano69/dbdump/pkg/adapters"
	"github.com/ruslano69/dbdump/pkg/converters"
	"github.com/ruslano69/dbdump/pkg/output"
	"github.com/ruslano69/dbdump/pkg/platform"
)

// DefaultBatchSize - размер страницы по умолчанию
const DefaultBatchSize = 100

// Connection - подключение, которое нужно оркестратору
type Connection interface {
	Querier
	Exec(ctx context.Context, statement string) error
	TypeMappings() *adapters.TypeMappings
}

// Options - параметры выгрузки
type Options struct {
	// BatchSize - строк на страницу (0 = DefaultBatchSize)
	BatchSize int
	// HarvestLimit - максимум собираемых значений на колонку (0 = без ограничения)
	HarvestLimit int
	// Logger - логгер выгрузки (по умолчанию zerolog.Nop)
	Logger *zerolog.Logger
}

// TableStats - итог выгрузки одной таблицы
type TableStats struct {
	Table    string        `json:"table"`
	Rows     int           `json:"rows"`
	Queries  int           `json:"queries"`
	Duration time.Duration `json:"duration"`
}

// Stats - итог выгрузки
type Stats struct {
	Tables   []TableStats  `json:"tables"`
	Rows     int           `json:"rows"`
	Queries  int           `json:"queries"`
	Duration time.Duration `json:"duration"`
}

// Dumper выгружает таблицы в заданном порядке.
// Порядок должен уже учитывать зависимости фильтров: таблица, на которую ссылаются,
// идет раньше ссылающейся
type Dumper struct {
	conn      Connection
	tables    []TableConfig
	writer    output.Writer
	batchSize int
	harvest   map[string][]string
	limit     int
	log       zerolog.Logger

	harvested *HarvestedValues
}

// New создает оркестратор выгрузки
func New(conn Connection, tables []TableConfig, writer output.Writer, opts Options) (*Dumper, error) {
	for _, t := range tables {
		if err := t.Validate(); err != nil {
			return nil, err
		}
	}

	d := &Dumper{
		conn:      conn,
		tables:    tables,
		writer:    writer,
		batchSize: opts.BatchSize,
		limit:     opts.HarvestLimit,
		log:       zerolog.Nop(),
		harvested: NewHarvestedValues(),
	}
	if d.batchSize <= 0 {
		d.batchSize = DefaultBatchSize
	}
	if opts.Logger != nil {
		d.log = *opts.Logger
	}

	d.harvest = harvestPlan(tables)
	return d, nil
}

// harvestPlan возвращает для каждой таблицы колонки, на которые ссылаются другие таблицы
func harvestPlan(tables []TableConfig) map[string][]string {
	plan := make(map[string][]string)
	for _, t := range tables {
		for refTable, columns := range t.Dependencies() {
			for _, col := range columns {
				plan[refTable] = appendUnique(plan[refTable], col)
			}
		}
	}
	for table := range plan {
		sort.Strings(plan[table])
	}
	return plan
}

// Harvested возвращает собранные значения (для отладки и тестов)
func (d *Dumper) Harvested() *HarvestedValues {
	return d.harvested
}

// Run выполняет выгрузку: настройки платформы и преамбула один раз, затем таблицы по порядку.
// Любая ошибка прерывает выгрузку
func (d *Dumper) Run(ctx context.Context) (Stats, error) {
	start := time.Now()
	var stats Stats

	adj, err := platform.New(d.conn)
	if err != nil {
		return stats, err
	}
	preamble, err := platform.Apply(ctx, adj)
	if err != nil {
		return stats, err
	}
	if err := d.writer.WritePreamble(preamble); err != nil {
		return stats, fmt.Errorf("failed to write preamble: %w", err)
	}

	d.log.Info().
		Str("dialect", d.conn.GetDatabaseType()).
		Int("tables", len(d.tables)).
		Int("batch_size", d.batchSize).
		Msg("dump started")

	for _, table := range d.tables {
		// Прерывание возможно только между таблицами
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		ts, err := d.dumpTable(ctx, table)
		stats.Tables = append(stats.Tables, ts)
		stats.Rows += ts.Rows
		stats.Queries += ts.Queries
		if err != nil {
			stats.Duration = time.Since(start)
			return stats, fmt.Errorf("table %s: %w", table.Name, err)
		}
	}

	stats.Duration = time.Since(start)

	d.log.Info().
		Int("rows", stats.Rows).
		Int("queries", stats.Queries).
		Dur("duration", stats.Duration).
		Msg("dump finished")

	return stats, nil
}

func (d *Dumper) dumpTable(ctx context.Context, table TableConfig) (TableStats, error) {
	start := time.Now()
	ts := TableStats{Table: table.Name}

	logger := d.log.With().Str("table", table.Name).Logger()
	cursor := NewCursor(d.conn, table, d.harvested, d.batchSize, WithLogger(logger))
	collector := newHarvestCollector(d.harvest[table.Name], d.limit)

	if err := d.writer.BeginTable(table.Name); err != nil {
		return ts, fmt.Errorf("failed to begin table: %w", err)
	}

	for row, err := range cursor.All(ctx) {
		if err != nil {
			ts.Queries = cursor.Stats().Queries
			ts.Duration = time.Since(start)
			return ts, err
		}

		collector.add(row.Columns, row.Values)

		if err := d.writer.WriteRow(table.Name, convertRow(table, row)); err != nil {
			return ts, fmt.Errorf("failed to write row: %w", err)
		}
		ts.Rows++
	}

	if err := d.writer.EndTable(table.Name, ts.Rows); err != nil {
		return ts, fmt.Errorf("failed to end table: %w", err)
	}

	collector.commit(table.Name, d.harvested)

	ts.Queries = cursor.Stats().Queries
	ts.Duration = time.Since(start)

	for col := range collector.capped {
		logger.Warn().Str("column", col).Int("limit", d.limit).Msg("harvested values truncated")
	}
	logger.Info().
		Int("rows", ts.Rows).
		Int("queries", ts.Queries).
		Dur("duration", ts.Duration).
		Msg("table dumped")

	return ts, nil
}

// convertRow прогоняет значения через цепочки конвертеров колонок.
// NULL не конвертируется; исходная строка не меняется
func convertRow(table TableConfig, row adapters.Row) adapters.Row {
	if len(table.Converters) == 0 {
		return row
	}

	var raw map[string]any
	values := make([]any, len(row.Values))
	copy(values, row.Values)

	for i, col := range row.Columns {
		chain, ok := table.Converters[col]
		if !ok || chain.IsEmpty() || values[i] == nil {
			continue
		}
		if raw == nil {
			raw = row.Map()
		}
		values[i] = chain.Convert(stringify(values[i]), converters.Context{
			Table:  table.Name,
			Column: col,
			Row:    raw,
		})
	}

	return adapters.Row{Columns: row.Columns, Values: values}
}

// stringify приводит значение поля к строке для конвертеров
func stringify(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case []byte:
		return string(val)
	case time.Time:
		return val.Format("2006-01-02 15:04:05")
	}
	return fmt.Sprintf("%v", v)
}
