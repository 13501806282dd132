package dumper

import (
	"reflect"
	"testing"

	"github.com/ruslano69/dbdump/pkg/adapters"
)

type testDialect struct {
	name        string
	open, close string
}

func (d testDialect) QuoteIdentifier(s string) string { return d.open + s + d.close }
func (d testDialect) GetDatabaseType() string         { return d.name }

var (
	sqliteDialect = testDialect{"sqlite", `"`, `"`}
	mssqlDialect  = testDialect{"mssql", "[", "]"}
)

func TestBuildPageQueryGenerated(t *testing.T) {
	agePredicate := Predicate{
		Expr:     `"age" > :param_0`,
		Bindings: adapters.Bindings{{Name: "param_0", Value: 18}},
	}

	tests := []struct {
		name      string
		dialect   testDialect
		table     TableConfig
		predicate Predicate
		page      Page
		want      string
	}{
		{
			name:    "plain first page",
			dialect: sqliteDialect,
			table:   TableConfig{Name: "users"},
			page:    Page{Index: 0, Size: 10},
			want:    `SELECT * FROM "users" LIMIT 10 OFFSET 0`,
		},
		{
			name:      "where order and third page",
			dialect:   sqliteDialect,
			table:     TableConfig{Name: "users", OrderBy: "id DESC"},
			predicate: agePredicate,
			page:      Page{Index: 2, Size: 10},
			want:      `SELECT * FROM "users" WHERE "age" > :param_0 ORDER BY id DESC LIMIT 10 OFFSET 20`,
		},
		{
			name:    "table limit does not reach sql",
			dialect: sqliteDialect,
			table:   TableConfig{Name: "users", Limit: 5},
			page:    Page{Index: 1, Size: 50},
			want:    `SELECT * FROM "users" LIMIT 50 OFFSET 50`,
		},
		{
			name:    "mssql without order",
			dialect: mssqlDialect,
			table:   TableConfig{Name: "users"},
			page:    Page{Index: 2, Size: 10},
			want:    `SELECT * FROM [users] ORDER BY (SELECT NULL) OFFSET 20 ROWS FETCH NEXT 10 ROWS ONLY`,
		},
		{
			name:      "mssql with order",
			dialect:   mssqlDialect,
			table:     TableConfig{Name: "users", OrderBy: "id"},
			predicate: agePredicate,
			page:      Page{Index: 0, Size: 5},
			want:      `SELECT * FROM [users] WHERE "age" > :param_0 ORDER BY id OFFSET 0 ROWS FETCH NEXT 5 ROWS ONLY`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewPlanner(tt.dialect).BuildPageQuery(tt.table, tt.predicate, tt.page)
			if err != nil {
				t.Fatalf("BuildPageQuery() error = %v", err)
			}
			if got.SQL != tt.want {
				t.Errorf("SQL = %q, want %q", got.SQL, tt.want)
			}
			if !got.Paged {
				t.Error("Paged = false for generated query")
			}
			if !reflect.DeepEqual(got.Bindings, tt.predicate.Bindings) {
				t.Errorf("Bindings = %v, want %v", got.Bindings, tt.predicate.Bindings)
			}
		})
	}
}

func TestBuildPageQueryCustom(t *testing.T) {
	predicate := Predicate{
		Expr:     "age > :p",
		Bindings: adapters.Bindings{{Name: "p", Value: 21}},
	}

	tests := []struct {
		name         string
		query        string
		predicate    Predicate
		want         string
		wantBindings adapters.Bindings
	}{
		{
			name:         "marker replaced with parenthesized predicate",
			query:        "SELECT * FROM users u WHERE $autoConditions AND u.active = 1",
			predicate:    predicate,
			want:         "SELECT * FROM users u WHERE (age > :p) AND u.active = 1",
			wantBindings: predicate.Bindings,
		},
		{
			name:      "no marker runs verbatim without bindings",
			query:     "SELECT id, name FROM users ORDER BY name LIMIT 3",
			predicate: predicate,
			want:      "SELECT id, name FROM users ORDER BY name LIMIT 3",
		},
		{
			name:  "empty predicate",
			query: "SELECT * FROM users WHERE $autoConditions",
			want:  "SELECT * FROM users WHERE (1 = 1)",
		},
		{
			name:         "only surrounding whitespace trimmed",
			query:        "\n\t  SELECT *\n  FROM users\n WHERE $autoConditions  \n",
			predicate:    predicate,
			want:         "SELECT *\n  FROM users\n WHERE (age > :p)",
			wantBindings: predicate.Bindings,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := TableConfig{Name: "users", Query: tt.query, OrderBy: "id", Limit: 10}

			got, err := NewPlanner(sqliteDialect).BuildPageQuery(table, tt.predicate, Page{Index: 3, Size: 10})
			if err != nil {
				t.Fatalf("BuildPageQuery() error = %v", err)
			}
			if got.SQL != tt.want {
				t.Errorf("SQL = %q, want %q", got.SQL, tt.want)
			}
			if !reflect.DeepEqual(got.Bindings, tt.wantBindings) {
				t.Errorf("Bindings = %v, want %v", got.Bindings, tt.wantBindings)
			}
			if got.Paged {
				t.Error("Paged = true for custom query")
			}
		})
	}
}

func TestBuildPageQueryInvalidPage(t *testing.T) {
	_, err := NewPlanner(sqliteDialect).BuildPageQuery(TableConfig{Name: "users"}, Predicate{}, Page{Size: 0})
	if err == nil {
		t.Error("BuildPageQuery() with zero page size: want error")
	}
}
