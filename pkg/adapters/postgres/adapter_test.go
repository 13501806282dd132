package postgres

import (
	"reflect"
	"testing"
)

func TestNormalizeValue(t *testing.T) {
	a := &Adapter{types: defaultTypeMappings()}

	tests := []struct {
		name       string
		nativeType string
		value      any
		want       any
	}{
		{"null", "int4", nil, nil},
		{"int2", "int2", int16(7), int64(7)},
		{"int4", "int4", int32(-42), int64(-42)},
		{"float4", "float4", float32(1.5), float64(1.5)},
		{"text", "text", "hello", "hello"},
		{"bool", "bool", true, true},
		{
			"uuid",
			"uuid",
			[16]byte{0x12, 0x34, 0x56, 0x78, 0x9a, 0xbc, 0xde, 0xf0, 0x12, 0x34, 0x56, 0x78, 0x9a, 0xbc, 0xde, 0xf0},
			"12345678-9abc-def0-1234-56789abcdef0",
		},
		{"bytea copied", "bytea", []byte{0x01, 0x02}, []byte{0x01, 0x02}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := a.normalizeValue(tt.nativeType, tt.value)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("normalizeValue(%s, %v) = %#v, want %#v", tt.nativeType, tt.value, got, tt.want)
			}
		})
	}
}

func TestQuoteIdentifier(t *testing.T) {
	a := &Adapter{}

	tests := []struct {
		in   string
		want string
	}{
		{"users", `"users"`},
		{"public.users", `"public"."users"`},
		{`we"ird`, `"we""ird"`},
	}

	for _, tt := range tests {
		if got := a.QuoteIdentifier(tt.in); got != tt.want {
			t.Errorf("QuoteIdentifier(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
