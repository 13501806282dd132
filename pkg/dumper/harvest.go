package dumper

// HarvestedValues - значения колонок уже выгруженных таблиц: таблица → колонка → значения.
// Только дополняется; владелец - оркестратор, курсор и построитель предикатов лишь читают
type HarvestedValues struct {
	tables map[string]map[string][]any
}

// NewHarvestedValues создает пустой набор собранных значений
func NewHarvestedValues() *HarvestedValues {
	return &HarvestedValues{tables: make(map[string]map[string][]any)}
}

// HasTable - таблица уже выгружена
func (h *HarvestedValues) HasTable(table string) bool {
	if h == nil {
		return false
	}
	_, ok := h.tables[table]
	return ok
}

// Values возвращает собранные значения колонки.
// ok=false, если колонка таблицы не собиралась
func (h *HarvestedValues) Values(table, column string) ([]any, bool) {
	if h == nil {
		return nil, false
	}
	columns, ok := h.tables[table]
	if !ok {
		return nil, false
	}
	values, ok := columns[column]
	return values, ok
}

// Record дописывает значения колонок выгруженной таблицы.
// Запись для таблицы появляется даже при пустом columns
func (h *HarvestedValues) Record(table string, columns map[string][]any) {
	entry, ok := h.tables[table]
	if !ok {
		entry = make(map[string][]any, len(columns))
		h.tables[table] = entry
	}
	for column, values := range columns {
		entry[column] = append(entry[column], values...)
	}
}

// Tables возвращает число выгруженных таблиц
func (h *HarvestedValues) Tables() int {
	if h == nil {
		return 0
	}
	return len(h.tables)
}

// Resolve подставляет в зависимый фильтр собранные значения колонки, на которую он ссылается.
// Возвращает новый фильтр; исходный не меняется. Значения не дедуплицируются и не приводятся
func Resolve(f Filter, harvested *HarvestedValues, currentTable string) (Filter, error) {
	if !f.IsDependent() {
		return f, nil
	}

	if !harvested.HasTable(f.ReferencedTable) {
		return Filter{}, &MissingDependencyError{
			Table:           currentTable,
			ReferencedTable: f.ReferencedTable,
		}
	}

	values, ok := harvested.Values(f.ReferencedTable, f.ReferencedColumn)
	if !ok {
		return Filter{}, &MissingColumnError{
			Table:            currentTable,
			ReferencedTable:  f.ReferencedTable,
			ReferencedColumn: f.ReferencedColumn,
		}
	}

	resolved := f
	resolved.Value = append([]any(nil), values...)
	resolved.resolved = true
	return resolved, nil
}

// harvestCollector собирает значения колонок во время выгрузки таблицы.
// В HarvestedValues они попадают только после успешного завершения таблицы
type harvestCollector struct {
	columns map[string][]any
	limit   int
	capped  map[string]bool
	seen    map[string]bool
	rows    int
}

func newHarvestCollector(columns []string, limit int) *harvestCollector {
	c := &harvestCollector{
		columns: make(map[string][]any, len(columns)),
		limit:   limit,
		capped:  make(map[string]bool),
		seen:    make(map[string]bool),
	}
	for _, col := range columns {
		c.columns[col] = []any{}
	}
	return c
}

// add запоминает значения нужных колонок строки (значения до конвертации)
func (c *harvestCollector) add(columns []string, values []any) {
	c.rows++
	for i, col := range columns {
		collected, wanted := c.columns[col]
		if !wanted {
			continue
		}
		c.seen[col] = true
		if c.limit > 0 && len(collected) >= c.limit {
			c.capped[col] = true
			continue
		}
		c.columns[col] = append(collected, values[i])
	}
}

// commit переносит собранное в общий набор.
// Колонки, которых не было в результате непустой выгрузки, не записываются
func (c *harvestCollector) commit(table string, harvested *HarvestedValues) {
	if c.rows > 0 {
		for col := range c.columns {
			if !c.seen[col] {
				delete(c.columns, col)
			}
		}
	}
	harvested.Record(table, c.columns)
}
