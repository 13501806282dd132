package converters

import "fmt"

// Constant всегда возвращает заданное значение
type Constant struct {
	Value string
}

// Convert реализует Converter
func (c Constant) Convert(string, Context) string {
	return c.Value
}

// NewConstantFromConfig создает Constant из параметра "value"
func NewConstantFromConfig(params map[string]any) (Converter, error) {
	value, ok := stringParam(params, "value")
	if !ok {
		return nil, fmt.Errorf("missing 'value' parameter")
	}
	return Constant{Value: value}, nil
}

// Echo возвращает входное значение без изменений
type Echo struct{}

// Convert реализует Converter
func (Echo) Convert(value string, _ Context) string {
	return value
}

// Empty возвращает пустую строку
type Empty struct{}

// Convert реализует Converter
func (Empty) Convert(string, Context) string {
	return ""
}
