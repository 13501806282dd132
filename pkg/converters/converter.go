package converters

import "strings"

// Context - контекст конвертации значения: таблица, колонка и исходная строка целиком
type Context struct {
	Table  string
	Column string
	Row    map[string]any
}

// Converter преобразует значение поля (обычно для анонимизации)
type Converter interface {
	Convert(value string, ctx Context) string
}

// Func позволяет использовать функцию как Converter
type Func func(value string, ctx Context) string

// Convert реализует Converter
func (f Func) Convert(value string, ctx Context) string {
	return f(value, ctx)
}

// Config - конфигурация одного конвертера колонки
type Config struct {
	Type   string         `yaml:"type"`   // Тип конвертера (mask, hash, constant, ...)
	Params map[string]any `yaml:"params"` // Параметры конвертера
}

// Chain - цепочка конвертеров колонки.
//
// Цепочка накапливает результат, а не заменяет его: каждый конвертер получает
// текущий аккумулятор, и его результат дописывается к аккумулятору через пробел.
// Для "Alice" и конвертеров, возвращающих "X" и "Y", результат "Alice X Y".
// Итог обрезается по пробелам с краев
type Chain struct {
	converters []Converter
}

// NewChain создает цепочку конвертеров
func NewChain(converters ...Converter) Chain {
	return Chain{converters: converters}
}

// Convert прогоняет значение через цепочку
func (c Chain) Convert(value string, ctx Context) string {
	acc := value
	for _, conv := range c.converters {
		acc += " " + conv.Convert(acc, ctx)
	}
	return strings.TrimSpace(acc)
}

// Add добавляет конвертер в конец цепочки
func (c *Chain) Add(conv Converter) {
	c.converters = append(c.converters, conv)
}

// Len возвращает количество конвертеров в цепочке
func (c Chain) Len() int {
	return len(c.converters)
}

// IsEmpty проверяет, пуста ли цепочка
func (c Chain) IsEmpty() bool {
	return len(c.converters) == 0
}
