package adapters

import (
	"strconv"
	"strings"
	"sync"
)

// GenericType - общий тип значения, к которому приводятся нативные типы СУБД
type GenericType string

const (
	TypeString   GenericType = "string"
	TypeBinary   GenericType = "binary"
	TypeInteger  GenericType = "integer"
	TypeDecimal  GenericType = "decimal"
	TypeFloat    GenericType = "float"
	TypeBoolean  GenericType = "boolean"
	TypeDateTime GenericType = "datetime"
)

// TypeMappings - реестр соответствия нативных типов СУБД общим типам.
// Ключи нормализуются к нижнему регистру без размеров: "VARCHAR(255)" → "varchar"
type TypeMappings struct {
	mu       sync.RWMutex
	mappings map[string]GenericType
}

// NewTypeMappings создает реестр с начальными соответствиями
func NewTypeMappings(initial map[string]GenericType) *TypeMappings {
	t := &TypeMappings{mappings: make(map[string]GenericType, len(initial))}
	for native, generic := range initial {
		t.mappings[normalizeTypeName(native)] = generic
	}
	return t
}

// Register регистрирует (или переопределяет) соответствие нативного типа общему
func (t *TypeMappings) Register(nativeType string, generic GenericType) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.mappings[normalizeTypeName(nativeType)] = generic
}

// Lookup возвращает общий тип для нативного типа
func (t *TypeMappings) Lookup(nativeType string) (GenericType, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	generic, ok := t.mappings[normalizeTypeName(nativeType)]
	return generic, ok
}

// Normalize приводит значение, полученное от драйвера, к представлению общего типа.
// Драйверы database/sql часто отдают текстовые значения как []byte, поэтому
// []byte превращается в string везде, кроме бинарных типов.
func (t *TypeMappings) Normalize(nativeType string, value any) any {
	b, ok := value.([]byte)
	if !ok {
		return value
	}

	generic, known := t.Lookup(nativeType)
	if !known {
		return string(b)
	}

	switch generic {
	case TypeBinary:
		// Копируем: драйвер может переиспользовать буфер
		out := make([]byte, len(b))
		copy(out, b)
		return out
	case TypeInteger:
		if n, err := strconv.ParseInt(string(b), 10, 64); err == nil {
			return n
		}
	case TypeFloat:
		if f, err := strconv.ParseFloat(string(b), 64); err == nil {
			return f
		}
	case TypeBoolean:
		if v, err := strconv.ParseBool(string(b)); err == nil {
			return v
		}
	}

	// decimal, string, datetime и ошибки парсинга остаются строкой
	return string(b)
}

// normalizeTypeName убирает размеры и модификаторы: "DECIMAL(10,2) UNSIGNED" → "decimal"
func normalizeTypeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if idx := strings.IndexAny(name, "( "); idx > 0 {
		name = name[:idx]
	}
	return name
}
