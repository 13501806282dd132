package dumper

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/ruslano69/dbdump/pkg/adapters"
)

// EmptySetSentinel подставляется вместо пустого множества IN / NOT IN,
// чтобы условие оставалось синтаксически корректным и не совпадало ни с одной строкой.
// На числовых колонках MySQL приводит строку к 0, а PostgreSQL отвергает запрос
const EmptySetSentinel = "_________UNDEFINED__________"

// Quoter экранирует идентификаторы по правилам активного диалекта
type Quoter interface {
	QuoteIdentifier(identifier string) string
}

// Predicate - условие WHERE с именованными параметрами (:param_N)
type Predicate struct {
	Expr     string
	Bindings adapters.Bindings
}

// IsEmpty - условие отсутствует (нет фильтров)
func (p Predicate) IsEmpty() bool {
	return p.Expr == ""
}

// BuildPredicate строит конъюнкцию условий фильтров таблицы.
// Зависимые фильтры сначала разрешаются через harvested и дополнительно пропускают NULL.
// Значения передаются только параметрами, в текст попадают лишь экранированные идентификаторы
func BuildPredicate(filters []Filter, harvested *HarvestedValues, table string, quoter Quoter) (Predicate, error) {
	var (
		clauses  []string
		bindings adapters.Bindings
	)

	for i, f := range filters {
		if f.IsDependent() {
			if !f.Operator.IsSet() {
				return Predicate{}, &InvalidFilterError{
					Table:  table,
					Column: f.Column,
					Reason: fmt.Sprintf("dependent filter requires in or not_in, got %s", f.Operator),
				}
			}
			resolved, err := Resolve(f, harvested, table)
			if err != nil {
				return Predicate{}, err
			}
			f = resolved
		}

		sqlOp := f.Operator.SQL()
		if sqlOp == "" {
			return Predicate{}, &InvalidFilterError{
				Table:  table,
				Column: f.Column,
				Reason: fmt.Sprintf("unsupported operator %q", f.Operator),
			}
		}

		column := quoter.QuoteIdentifier(f.Column)
		var clause string

		if f.Operator.IsSet() {
			values, ok := toSlice(f.Value)
			if !ok {
				return Predicate{}, &InvalidFilterError{
					Table:  table,
					Column: f.Column,
					Reason: fmt.Sprintf("operator %s requires a list of values, got %T", f.Operator, f.Value),
				}
			}
			if len(values) == 0 {
				values = []any{EmptySetSentinel}
			}

			placeholders := make([]string, len(values))
			for j, v := range values {
				name := fmt.Sprintf("param_%d_%d", i, j)
				placeholders[j] = ":" + name
				bindings = append(bindings, adapters.Binding{Name: name, Value: v})
			}
			clause = fmt.Sprintf("%s %s (%s)", column, sqlOp, strings.Join(placeholders, ", "))
		} else {
			name := fmt.Sprintf("param_%d", i)
			bindings = append(bindings, adapters.Binding{Name: name, Value: f.Value})
			clause = fmt.Sprintf("%s %s :%s", column, sqlOp, name)
		}

		if f.IsDependent() {
			clause = fmt.Sprintf("(%s OR %s IS NULL)", clause, column)
		}

		clauses = append(clauses, clause)
	}

	return Predicate{
		Expr:     strings.Join(clauses, " AND "),
		Bindings: bindings,
	}, nil
}

// toSlice приводит значение фильтра множества к []any.
// Строки не считаются множеством, nil - пустое множество
func toSlice(value any) ([]any, bool) {
	switch v := value.(type) {
	case nil:
		return nil, true
	case []any:
		return v, true
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out, true
	case string, []byte:
		return nil, false
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}
