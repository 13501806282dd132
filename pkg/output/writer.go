package output

import (
	"github.com/ruslano69/dbdump/pkg/adapters"
)

// Writer принимает поток строк дампа
type Writer interface {
	// WritePreamble пишет операторы, которые должны идти до данных
	WritePreamble(statements []string) error

	// BeginTable открывает секцию таблицы
	BeginTable(table string) error

	// WriteRow пишет одну строку (значения уже сконвертированы)
	WriteRow(table string, row adapters.Row) error

	// EndTable закрывает секцию таблицы
	EndTable(table string, rows int) error

	// Close сбрасывает буферы и закрывает выход
	Close() error
}

// Format - формат файла дампа
type Format string

const (
	FormatSQL  Format = "sql"
	FormatXLSX Format = "xlsx"
)

// ParseFormat разбирает формат вывода (пусто = sql)
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatSQL:
		return FormatSQL, nil
	case FormatXLSX:
		return FormatXLSX, nil
	}
	return "", &UnsupportedFormatError{Format: s}
}

// UnsupportedFormatError - неизвестный формат вывода
type UnsupportedFormatError struct {
	Format string
}

func (e *UnsupportedFormatError) Error() string {
	return "unsupported output format: " + e.Format
}
