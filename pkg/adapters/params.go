package adapters

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
)

// Binding - именованный параметр запроса (без префикса ':')
type Binding struct {
	Name  string
	Value any
}

// Bindings - упорядоченный список именованных параметров.
// Порядок сохраняется, чтобы перепривязка к позиционным параметрам была детерминированной
type Bindings []Binding

// Lookup возвращает значение параметра по имени
func (b Bindings) Lookup(name string) (any, bool) {
	for _, p := range b {
		if p.Name == name {
			return p.Value, true
		}
	}
	return nil, false
}

// Names возвращает имена параметров в порядке добавления
func (b Bindings) Names() []string {
	names := make([]string, len(b))
	for i, p := range b {
		names[i] = p.Name
	}
	return names
}

// PlaceholderStyle - синтаксис параметров конкретного драйвера
type PlaceholderStyle int

const (
	// PlaceholderQuestion - позиционные "?" (MySQL, SQLite)
	PlaceholderQuestion PlaceholderStyle = iota
	// PlaceholderDollar - нумерованные "$1" (PostgreSQL)
	PlaceholderDollar
	// PlaceholderAtNamed - именованные "@name" + sql.Named (MS SQL)
	PlaceholderAtNamed
)

// Rebind переписывает именованные параметры ":name" в синтаксис драйвера и
// возвращает аргументы в нужном порядке.
// Текст внутри кавычек ('...', "...", `...`, для MS SQL и [...]) и приведения типов "::" не трогаются.
func Rebind(query string, params Bindings, style PlaceholderStyle) (string, []any, error) {
	var (
		sb      strings.Builder
		args    []any
		indexes = make(map[string]int)
		quote   byte
	)
	sb.Grow(len(query))

	for i := 0; i < len(query); i++ {
		c := query[i]

		if quote != 0 {
			sb.WriteByte(c)
			// "]]" внутри [...] - экранированная скобка
			if quote == ']' && c == ']' && i+1 < len(query) && query[i+1] == ']' {
				i++
				sb.WriteByte(']')
				continue
			}
			if c == '\\' && quote != '`' && quote != ']' && i+1 < len(query) {
				i++
				sb.WriteByte(query[i])
				continue
			}
			if c == quote {
				quote = 0
			}
			continue
		}

		switch c {
		case '\'', '"', '`':
			quote = c
			sb.WriteByte(c)
			continue
		case '[':
			// Идентификаторы MS SQL в квадратных скобках
			if style == PlaceholderAtNamed {
				quote = ']'
				sb.WriteByte(c)
				continue
			}
		case ':':
			// "::" - приведение типа PostgreSQL
			if i+1 < len(query) && query[i+1] == ':' {
				sb.WriteString("::")
				i++
				continue
			}
			end := i + 1
			for end < len(query) && isNameChar(query[end], end == i+1) {
				end++
			}
			if end == i+1 {
				sb.WriteByte(c)
				continue
			}

			name := query[i+1 : end]
			value, ok := params.Lookup(name)
			if !ok {
				return "", nil, fmt.Errorf("missing binding for parameter :%s", name)
			}

			switch style {
			case PlaceholderQuestion:
				args = append(args, value)
				sb.WriteByte('?')
			case PlaceholderDollar:
				idx, seen := indexes[name]
				if !seen {
					args = append(args, value)
					idx = len(args)
					indexes[name] = idx
				}
				sb.WriteByte('$')
				sb.WriteString(strconv.Itoa(idx))
			case PlaceholderAtNamed:
				if _, seen := indexes[name]; !seen {
					args = append(args, sql.Named(name, value))
					indexes[name] = len(args)
				}
				sb.WriteByte('@')
				sb.WriteString(name)
			default:
				return "", nil, fmt.Errorf("unsupported placeholder style: %d", style)
			}

			i = end - 1
			continue
		}

		sb.WriteByte(c)
	}

	return sb.String(), args, nil
}

// isNameChar проверяет допустимость символа в имени параметра
func isNameChar(c byte, first bool) bool {
	switch {
	case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		return true
	case c >= '0' && c <= '9':
		return !first
	}
	return false
}
