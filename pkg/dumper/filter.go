package dumper

import (
	"fmt"
	"strings"
)

// Operator - оператор сравнения фильтра
type Operator string

const (
	OpEq      Operator = "eq"
	OpNeq     Operator = "neq"
	OpGt      Operator = "gt"
	OpGte     Operator = "gte"
	OpLt      Operator = "lt"
	OpLte     Operator = "lte"
	OpLike    Operator = "like"
	OpNotLike Operator = "not_like"
	OpIn      Operator = "in"
	OpNotIn   Operator = "not_in"
)

var operatorAliases = map[string]Operator{
	"eq":       OpEq,
	"=":        OpEq,
	"neq":      OpNeq,
	"!=":       OpNeq,
	"<>":       OpNeq,
	"gt":       OpGt,
	">":        OpGt,
	"gte":      OpGte,
	">=":       OpGte,
	"lt":       OpLt,
	"<":        OpLt,
	"lte":      OpLte,
	"<=":       OpLte,
	"like":     OpLike,
	"not_like": OpNotLike,
	"notlike":  OpNotLike,
	"in":       OpIn,
	"not_in":   OpNotIn,
	"notin":    OpNotIn,
}

// ParseOperator разбирает оператор из конфигурации (регистр не важен)
func ParseOperator(s string) (Operator, error) {
	op, ok := operatorAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("unsupported filter operator: %q", s)
	}
	return op, nil
}

// SQL возвращает SQL-представление оператора
func (op Operator) SQL() string {
	switch op {
	case OpEq:
		return "="
	case OpNeq:
		return "<>"
	case OpGt:
		return ">"
	case OpGte:
		return ">="
	case OpLt:
		return "<"
	case OpLte:
		return "<="
	case OpLike:
		return "LIKE"
	case OpNotLike:
		return "NOT LIKE"
	case OpIn:
		return "IN"
	case OpNotIn:
		return "NOT IN"
	}
	return ""
}

// IsSet - оператор работает с множеством значений
func (op Operator) IsSet() bool {
	return op == OpIn || op == OpNotIn
}

// FilterKind - вариант фильтра
type FilterKind int

const (
	// DefaultFilter - значение задано в конфигурации
	DefaultFilter FilterKind = iota
	// DataDependentFilter - значения берутся из ранее выгруженной таблицы
	DataDependentFilter
)

func (k FilterKind) String() string {
	if k == DataDependentFilter {
		return "data_dependent"
	}
	return "default"
}

// Filter - условие отбора строк таблицы.
// Зависимый фильтр неизменяем: Resolve возвращает новый экземпляр со значением
type Filter struct {
	Kind     FilterKind
	Column   string
	Operator Operator

	// Value - литерал (DefaultFilter) или собранные значения после разрешения (DataDependentFilter)
	Value any

	ReferencedTable  string
	ReferencedColumn string

	resolved bool
}

// NewFilter создает фильтр со значением из конфигурации
func NewFilter(column string, op Operator, value any) Filter {
	return Filter{
		Kind:     DefaultFilter,
		Column:   column,
		Operator: op,
		Value:    value,
	}
}

// NewDependentFilter создает фильтр по значениям колонки другой таблицы
func NewDependentFilter(column string, op Operator, refTable, refColumn string) Filter {
	return Filter{
		Kind:             DataDependentFilter,
		Column:           column,
		Operator:         op,
		ReferencedTable:  refTable,
		ReferencedColumn: refColumn,
	}
}

// IsDependent - фильтр зависит от данных другой таблицы
func (f Filter) IsDependent() bool {
	return f.Kind == DataDependentFilter
}

// Usable - фильтр можно превратить в условие (зависимый - только после разрешения)
func (f Filter) Usable() bool {
	return !f.IsDependent() || f.resolved
}

func (f Filter) String() string {
	if f.IsDependent() {
		return fmt.Sprintf("%s %s %s.%s", f.Column, f.Operator, f.ReferencedTable, f.ReferencedColumn)
	}
	return fmt.Sprintf("%s %s %v", f.Column, f.Operator, f.Value)
}
