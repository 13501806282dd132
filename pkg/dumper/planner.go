package dumper

import (
	"fmt"
	"strings"

	"github.com/ruslano69/dbdump/pkg/adapters"
)

// AutoConditionsMarker в собственном запросе заменяется на условие фильтров в скобках
const AutoConditionsMarker = "$autoConditions"

// alwaysTrue подставляется вместо маркера, когда фильтров нет
const alwaysTrue = "1 = 1"

// Page - позиция страницы выгрузки
type Page struct {
	Index int
	Size  int
}

// Offset возвращает смещение первой строки страницы
func (p Page) Offset() int {
	return p.Index * p.Size
}

// Query - текст запроса страницы и его параметры
type Query struct {
	SQL      string
	Bindings adapters.Bindings

	// Paged - запрос сгенерирован с LIMIT/OFFSET (false для собственного запроса)
	Paged bool
}

// Planner собирает запросы страниц для конкретного диалекта
type Planner struct {
	dialect string
	quoter  Quoter
}

// Dialect - то, что планировщику нужно знать о подключении
type Dialect interface {
	Quoter
	GetDatabaseType() string
}

// NewPlanner создает планировщик для подключения
func NewPlanner(conn Dialect) *Planner {
	return &Planner{
		dialect: conn.GetDatabaseType(),
		quoter:  conn,
	}
}

// BuildPageQuery возвращает запрос страницы page таблицы table с условием predicate.
// LIMIT/OFFSET пагинации всегда последние в запросе; собственный запрос таблицы
// используется как есть и сам отвечает за порядок и пагинацию
func (p *Planner) BuildPageQuery(table TableConfig, predicate Predicate, page Page) (Query, error) {
	if page.Size <= 0 {
		return Query{}, fmt.Errorf("page size must be > 0, got %d", page.Size)
	}

	if table.Query != "" {
		return customQuery(table.Query, predicate), nil
	}

	var parts []string
	parts = append(parts, "SELECT * FROM "+p.quoter.QuoteIdentifier(table.Name))

	if !predicate.IsEmpty() {
		parts = append(parts, "WHERE "+predicate.Expr)
	}

	orderBy := strings.TrimSpace(table.OrderBy)

	if p.dialect == "mssql" {
		// OFFSET/FETCH требует ORDER BY
		if orderBy == "" {
			orderBy = "(SELECT NULL)"
		}
		parts = append(parts, "ORDER BY "+orderBy)
		parts = append(parts, fmt.Sprintf("OFFSET %d ROWS FETCH NEXT %d ROWS ONLY", page.Offset(), page.Size))
	} else {
		if orderBy != "" {
			parts = append(parts, "ORDER BY "+orderBy)
		}
		parts = append(parts, fmt.Sprintf("LIMIT %d OFFSET %d", page.Size, page.Offset()))
	}

	return Query{
		SQL:      strings.TrimSpace(strings.Join(parts, " ")),
		Bindings: predicate.Bindings,
		Paged:    true,
	}, nil
}

// customQuery подставляет условие в собственный запрос.
// Без маркера запрос выполняется без фильтров и параметров
func customQuery(raw string, predicate Predicate) Query {
	if !strings.Contains(raw, AutoConditionsMarker) {
		return Query{SQL: strings.TrimSpace(raw)}
	}

	expr := predicate.Expr
	if expr == "" {
		expr = alwaysTrue
	}

	return Query{
		SQL:      strings.TrimSpace(strings.ReplaceAll(raw, AutoConditionsMarker, "("+expr+")")),
		Bindings: predicate.Bindings,
	}
}
