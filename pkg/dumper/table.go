package dumper

import (
	"fmt"

	"github.com/ruslano69/dbdump/pkg/converters"
)

// TableConfig - настройки выгрузки одной таблицы. Не меняется во время выгрузки
type TableConfig struct {
	// Name - имя таблицы (может включать схему: "sales.orders")
	Name string

	// Filters объединяются через AND
	Filters []Filter

	// Limit - максимальное число строк таблицы (0 = без ограничения)
	Limit int

	// OrderBy - выражение ORDER BY без ключевого слова
	OrderBy string

	// Query - собственный запрос; маркер $autoConditions заменяется условием фильтров
	Query string

	// Converters - цепочки конвертеров по колонкам
	Converters map[string]converters.Chain
}

// Validate проверяет настройки таблицы
func (t TableConfig) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("table name is required")
	}
	if t.Limit < 0 {
		return fmt.Errorf("table %s: limit must be >= 0", t.Name)
	}
	for _, f := range t.Filters {
		if f.Column == "" {
			return fmt.Errorf("table %s: filter column is required", t.Name)
		}
		if f.Operator.SQL() == "" {
			return fmt.Errorf("table %s: unsupported operator %q", t.Name, f.Operator)
		}
		if f.IsDependent() && (f.ReferencedTable == "" || f.ReferencedColumn == "") {
			return fmt.Errorf("table %s: dependent filter on %s must reference table.column", t.Name, f.Column)
		}
		if f.IsDependent() && !f.Operator.IsSet() {
			return fmt.Errorf("table %s: dependent filter on %s requires in or not_in, got %s", t.Name, f.Column, f.Operator)
		}
		if f.IsDependent() && f.ReferencedTable == t.Name {
			return fmt.Errorf("table %s: dependent filter on %s references the table itself", t.Name, f.Column)
		}
	}
	return nil
}

// Dependencies возвращает колонки других таблиц, на которые ссылаются зависимые фильтры
func (t TableConfig) Dependencies() map[string][]string {
	deps := make(map[string][]string)
	for _, f := range t.Filters {
		if !f.IsDependent() {
			continue
		}
		deps[f.ReferencedTable] = appendUnique(deps[f.ReferencedTable], f.ReferencedColumn)
	}
	return deps
}

func appendUnique(list []string, value string) []string {
	for _, v := range list {
		if v == value {
			return list
		}
	}
	return append(list, value)
}
