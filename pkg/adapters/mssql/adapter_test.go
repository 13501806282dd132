package mssql

import (
	"context"
	"database/sql"
	"reflect"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/ruslano69/dbdump/pkg/adapters"
)

func TestParseServerVersion(t *testing.T) {
	tests := []struct {
		version string
		want    int
	}{
		{"15.0.2000.5", 15},
		{"11.0.7001.0", 11},
		{"16", 16},
		{"", 0},
		{"abc", 0},
	}

	for _, tt := range tests {
		if got := parseServerVersion(tt.version); got != tt.want {
			t.Errorf("parseServerVersion(%q) = %d, want %d", tt.version, got, tt.want)
		}
	}
}

func TestQueryUsesNamedParameters(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	rows := sqlmock.NewRowsWithColumnDefinition(
		sqlmock.NewColumn("id").OfType("BIGINT", int64(0)),
		sqlmock.NewColumn("flag").OfType("BIT", false),
		sqlmock.NewColumn("version").OfType("TIMESTAMP", []byte(nil)),
	).AddRow(int64(5), true, []byte{0, 0, 0, 0, 0, 0, 0x07, 0xD1})

	mock.ExpectQuery("SELECT * FROM [dbo].[users] WHERE [id] >= @param_0 ORDER BY (SELECT NULL) OFFSET 0 ROWS FETCH NEXT 10 ROWS ONLY").
		WithArgs(sql.Named("param_0", 5)).
		WillReturnRows(rows)

	a := NewFromDB(db)
	got, err := a.Query(context.Background(),
		"SELECT * FROM [dbo].[users] WHERE [id] >= :param_0 ORDER BY (SELECT NULL) OFFSET 0 ROWS FETCH NEXT 10 ROWS ONLY",
		adapters.Bindings{{Name: "param_0", Value: 5}},
	)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}

	want := []adapters.Row{{
		Columns: []string{"id", "flag", "version"},
		Values:  []any{int64(5), true, []byte{0, 0, 0, 0, 0, 0, 0x07, 0xD1}},
	}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Query() = %#v\nwant %#v", got, want)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestGetDatabaseVersion(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT CAST(SERVERPROPERTY('ProductVersion') AS NVARCHAR(128))").
		WillReturnRows(sqlmock.NewRows([]string{"v"}).AddRow("16.0.1000.6"))

	a := NewFromDB(db)
	got, err := a.GetDatabaseVersion(context.Background())
	if err != nil {
		t.Fatalf("GetDatabaseVersion() error = %v", err)
	}
	if got != "SQL Server 16.0.1000.6" {
		t.Errorf("GetDatabaseVersion() = %q", got)
	}
	if !a.SupportsOffsetFetch() {
		t.Error("SupportsOffsetFetch() = false for SQL Server 2022")
	}

	// Second call uses the cached version without querying
	if _, err := a.GetDatabaseVersion(context.Background()); err != nil {
		t.Fatalf("GetDatabaseVersion() second call error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestQuoteIdentifier(t *testing.T) {
	a := NewFromDB(nil)
	if got := a.QuoteIdentifier("dbo.order]s"); got != "[dbo].[order]]s]" {
		t.Errorf("QuoteIdentifier() = %q", got)
	}
}
