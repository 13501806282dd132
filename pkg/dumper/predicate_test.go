package dumper

import (
	"errors"
	"reflect"
	"testing"

	"github.com/ruslano69/dbdump/pkg/adapters"
)

type quoteDouble struct{}

func (quoteDouble) QuoteIdentifier(s string) string { return `"` + s + `"` }

func TestBuildPredicate(t *testing.T) {
	harvested := NewHarvestedValues()
	harvested.Record("users", map[string][]any{
		"id": {int64(1), int64(2), int64(2)},
	})
	harvested.Record("archived", map[string][]any{"id": {}})

	tests := []struct {
		name         string
		filters      []Filter
		wantExpr     string
		wantBindings adapters.Bindings
	}{
		{
			name:     "no filters",
			filters:  nil,
			wantExpr: "",
		},
		{
			name:     "scalar operator",
			filters:  []Filter{NewFilter("age", OpGt, 18)},
			wantExpr: `"age" > :param_0`,
			wantBindings: adapters.Bindings{
				{Name: "param_0", Value: 18},
			},
		},
		{
			name: "conjunction",
			filters: []Filter{
				NewFilter("status", OpEq, "active"),
				NewFilter("country", OpNotIn, []string{"RU", "BY"}),
				NewFilter("name", OpLike, "A%"),
			},
			wantExpr: `"status" = :param_0 AND "country" NOT IN (:param_1_0, :param_1_1) AND "name" LIKE :param_2`,
			wantBindings: adapters.Bindings{
				{Name: "param_0", Value: "active"},
				{Name: "param_1_0", Value: "RU"},
				{Name: "param_1_1", Value: "BY"},
				{Name: "param_2", Value: "A%"},
			},
		},
		{
			name:     "empty in set uses sentinel",
			filters:  []Filter{NewFilter("id", OpIn, []any{})},
			wantExpr: `"id" IN (:param_0_0)`,
			wantBindings: adapters.Bindings{
				{Name: "param_0_0", Value: EmptySetSentinel},
			},
		},
		{
			name:     "nil in set uses sentinel",
			filters:  []Filter{NewFilter("id", OpNotIn, nil)},
			wantExpr: `"id" NOT IN (:param_0_0)`,
			wantBindings: adapters.Bindings{
				{Name: "param_0_0", Value: EmptySetSentinel},
			},
		},
		{
			name:     "dependent filter includes nulls and keeps duplicates",
			filters:  []Filter{NewDependentFilter("user_id", OpIn, "users", "id")},
			wantExpr: `("user_id" IN (:param_0_0, :param_0_1, :param_0_2) OR "user_id" IS NULL)`,
			wantBindings: adapters.Bindings{
				{Name: "param_0_0", Value: int64(1)},
				{Name: "param_0_1", Value: int64(2)},
				{Name: "param_0_2", Value: int64(2)},
			},
		},
		{
			name:     "dependent filter on empty harvest",
			filters:  []Filter{NewDependentFilter("archived_id", OpIn, "archived", "id")},
			wantExpr: `("archived_id" IN (:param_0_0) OR "archived_id" IS NULL)`,
			wantBindings: adapters.Bindings{
				{Name: "param_0_0", Value: EmptySetSentinel},
			},
		},
		{
			name: "mixed default and dependent",
			filters: []Filter{
				NewFilter("total", OpGte, 100),
				NewDependentFilter("user_id", OpNotIn, "users", "id"),
			},
			wantExpr: `"total" >= :param_0 AND ("user_id" NOT IN (:param_1_0, :param_1_1, :param_1_2) OR "user_id" IS NULL)`,
			wantBindings: adapters.Bindings{
				{Name: "param_0", Value: 100},
				{Name: "param_1_0", Value: int64(1)},
				{Name: "param_1_1", Value: int64(2)},
				{Name: "param_1_2", Value: int64(2)},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BuildPredicate(tt.filters, harvested, "orders", quoteDouble{})
			if err != nil {
				t.Fatalf("BuildPredicate() error = %v", err)
			}
			if got.Expr != tt.wantExpr {
				t.Errorf("Expr = %q, want %q", got.Expr, tt.wantExpr)
			}
			if !reflect.DeepEqual(got.Bindings, tt.wantBindings) {
				t.Errorf("Bindings = %v, want %v", got.Bindings, tt.wantBindings)
			}
		})
	}
}

func TestBuildPredicateInvalidSetValue(t *testing.T) {
	tests := []struct {
		name  string
		value any
	}{
		{"string", "1,2,3"},
		{"int", 5},
		{"map", map[string]int{"a": 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildPredicate([]Filter{NewFilter("id", OpIn, tt.value)}, nil, "users", quoteDouble{})

			var filterErr *InvalidFilterError
			if !errors.As(err, &filterErr) {
				t.Fatalf("BuildPredicate() error = %v, want InvalidFilterError", err)
			}
			if filterErr.Column != "id" {
				t.Errorf("Column = %q, want id", filterErr.Column)
			}
		})
	}
}

func TestBuildPredicateDependentScalarOperator(t *testing.T) {
	harvested := NewHarvestedValues()
	harvested.Record("users", map[string][]any{"id": {int64(1), int64(2)}})

	for _, op := range []Operator{OpEq, OpGt, OpLike} {
		t.Run(string(op), func(t *testing.T) {
			_, err := BuildPredicate([]Filter{NewDependentFilter("user_id", op, "users", "id")}, harvested, "orders", quoteDouble{})

			var filterErr *InvalidFilterError
			if !errors.As(err, &filterErr) {
				t.Fatalf("BuildPredicate() error = %v, want InvalidFilterError", err)
			}
			if filterErr.Table != "orders" || filterErr.Column != "user_id" {
				t.Errorf("error = %+v", filterErr)
			}
		})
	}

	// Ошибка оператора важнее отсутствующей зависимости
	_, err := BuildPredicate([]Filter{NewDependentFilter("group_id", OpEq, "groups", "id")}, harvested, "orders", quoteDouble{})
	var filterErr *InvalidFilterError
	if !errors.As(err, &filterErr) {
		t.Errorf("BuildPredicate() error = %v, want InvalidFilterError", err)
	}
}

func TestBuildPredicateQuotesIdentifiers(t *testing.T) {
	got, err := BuildPredicate([]Filter{NewFilter(`we"ird`, OpEq, 1)}, nil, "t", quoteDouble{})
	if err != nil {
		t.Fatalf("BuildPredicate() error = %v", err)
	}
	if got.Expr != `"we"ird" = :param_0` {
		t.Errorf("Expr = %q", got.Expr)
	}
}

func TestResolve(t *testing.T) {
	harvested := NewHarvestedValues()
	harvested.Record("users", map[string][]any{"id": {int64(7), int64(8)}})

	original := NewDependentFilter("user_id", OpIn, "users", "id")

	resolved, err := Resolve(original, harvested, "orders")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	if !resolved.Usable() {
		t.Error("resolved filter is not usable")
	}
	if original.Usable() || original.Value != nil {
		t.Error("Resolve() mutated the original filter")
	}
	if !reflect.DeepEqual(resolved.Value, []any{int64(7), int64(8)}) {
		t.Errorf("Value = %v", resolved.Value)
	}

	// Дальнейшая запись в harvested не меняет разрешенный фильтр
	harvested.Record("users", map[string][]any{"id": {int64(9)}})
	if len(resolved.Value.([]any)) != 2 {
		t.Errorf("resolved value changed after Record: %v", resolved.Value)
	}
}

func TestResolveErrors(t *testing.T) {
	harvested := NewHarvestedValues()
	harvested.Record("users", map[string][]any{"email": {"x@y.z"}})

	_, err := Resolve(NewDependentFilter("c", OpIn, "groups", "id"), harvested, "orders")
	var depErr *MissingDependencyError
	if !errors.As(err, &depErr) {
		t.Errorf("Resolve() error = %v, want MissingDependencyError", err)
	}

	_, err = Resolve(NewDependentFilter("c", OpIn, "users", "id"), harvested, "orders")
	var colErr *MissingColumnError
	if !errors.As(err, &colErr) {
		t.Errorf("Resolve() error = %v, want MissingColumnError", err)
	}

	f := NewFilter("a", OpEq, 1)
	got, err := Resolve(f, nil, "orders")
	if err != nil || !reflect.DeepEqual(got, f) {
		t.Errorf("Resolve(default) = %v, %v; want unchanged", got, err)
	}
}

func TestParseOperator(t *testing.T) {
	tests := []struct {
		in      string
		want    Operator
		wantErr bool
	}{
		{"eq", OpEq, false},
		{"=", OpEq, false},
		{"<>", OpNeq, false},
		{"!=", OpNeq, false},
		{">=", OpGte, false},
		{"IN", OpIn, false},
		{"notIn", OpNotIn, false},
		{"not_in", OpNotIn, false},
		{"notLike", OpNotLike, false},
		{"between", "", true},
	}

	for _, tt := range tests {
		got, err := ParseOperator(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseOperator(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseOperator(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
