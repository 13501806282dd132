package output

import (
	"testing"
	"time"
)

func TestFormatLiteral(t *testing.T) {
	ts := time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC)
	day := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	frac := time.Date(2024, 3, 15, 14, 30, 0, 250000000, time.UTC)

	tests := []struct {
		name    string
		dialect string
		value   any
		want    string
	}{
		{"null", "sqlite", nil, "NULL"},
		{"string", "sqlite", "O'Brien", "'O''Brien'"},
		{"mysql backslash", "mysql", `C:\tmp`, `'C:\\tmp'`},
		{"mysql nul byte", "mysql", "a\x00b", `'a\0b'`},
		{"postgres backslash kept", "postgres", `C:\tmp`, `'C:\tmp'`},
		{"mssql unicode", "mssql", "Привет", "N'Привет'"},
		{"int64", "sqlite", int64(-42), "-42"},
		{"uint8", "mysql", uint8(7), "7"},
		{"float", "sqlite", 1.5, "1.5"},
		{"bool postgres", "postgres", true, "TRUE"},
		{"bool mysql", "mysql", false, "0"},
		{"bool mssql", "mssql", true, "1"},
		{"datetime", "sqlite", ts, "'2024-03-15 14:30:00'"},
		{"date", "mysql", day, "'2024-03-15'"},
		{"fractional seconds", "postgres", frac, "'2024-03-15 14:30:00.25'"},
		{"blob sqlite", "sqlite", []byte{0xCA, 0xFE}, "X'cafe'"},
		{"blob mysql", "mysql", []byte{0x01}, "X'01'"},
		{"bytea", "postgres", []byte{0xCA, 0xFE}, `'\xcafe'::bytea`},
		{"varbinary", "mssql", []byte{0xCA, 0xFE}, "0xcafe"},
		{"empty varbinary", "mssql", []byte{}, "0x"},
		{"fallback", "sqlite", []int{1, 2}, "'[1 2]'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatLiteral(tt.dialect, tt.value); got != tt.want {
				t.Errorf("FormatLiteral(%q, %v) = %s, want %s", tt.dialect, tt.value, got, tt.want)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatSQL, "sql": FormatSQL, "xlsx": FormatXLSX} {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %v, %v; want %v", in, got, err, want)
		}
	}

	if _, err := ParseFormat("csv"); err == nil {
		t.Error("ParseFormat(csv) error = nil")
	}
}
