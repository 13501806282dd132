package output

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ruslano69/dbdump/pkg/adapters"
)

// maxSheetName - ограничение Excel на длину имени листа
const maxSheetName = 31

// XLSXWriter пишет каждую таблицу на отдельный лист.
// Строки пишутся потоково (StreamWriter), первая строка листа - имена колонок
type XLSXWriter struct {
	out    io.Writer
	file   *excelize.File
	stream *excelize.StreamWriter
	sheet  string
	row    int
	sheets int
}

// NewXLSXWriter создает писатель; книга сохраняется в out при Close
func NewXLSXWriter(out io.Writer) *XLSXWriter {
	return &XLSXWriter{
		out:  out,
		file: excelize.NewFile(),
	}
}

// WritePreamble: в xlsx преамбула не пишется
func (x *XLSXWriter) WritePreamble([]string) error {
	return nil
}

// BeginTable создает лист таблицы
func (x *XLSXWriter) BeginTable(table string) error {
	name := sheetName(table)

	index, err := x.file.NewSheet(name)
	if err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", name, err)
	}
	if x.sheets == 0 {
		x.file.SetActiveSheet(index)
		if name != "Sheet1" {
			if err := x.file.DeleteSheet("Sheet1"); err != nil {
				return fmt.Errorf("failed to delete default sheet: %w", err)
			}
		}
	}
	x.sheets++

	stream, err := x.file.NewStreamWriter(name)
	if err != nil {
		return fmt.Errorf("failed to create stream writer: %w", err)
	}

	x.stream = stream
	x.sheet = name
	x.row = 0
	return nil
}

// WriteRow пишет строку; перед первой строкой пишется заголовок
func (x *XLSXWriter) WriteRow(table string, row adapters.Row) error {
	if x.stream == nil {
		return fmt.Errorf("table %s not started", table)
	}

	if x.row == 0 {
		header := make([]any, len(row.Columns))
		for i, c := range row.Columns {
			header[i] = c
		}
		if err := x.setRow(header); err != nil {
			return err
		}
	}

	values := make([]any, len(row.Values))
	for i, v := range row.Values {
		values[i] = cellValue(v)
	}
	return x.setRow(values)
}

func (x *XLSXWriter) setRow(values []any) error {
	x.row++
	cell, err := excelize.CoordinatesToCellName(1, x.row)
	if err != nil {
		return err
	}
	if err := x.stream.SetRow(cell, values); err != nil {
		return fmt.Errorf("failed to write row %d of %s: %w", x.row, x.sheet, err)
	}
	return nil
}

// EndTable завершает лист
func (x *XLSXWriter) EndTable(table string, rows int) error {
	if x.stream == nil {
		return nil
	}
	err := x.stream.Flush()
	x.stream = nil
	if err != nil {
		return fmt.Errorf("failed to flush sheet %s: %w", x.sheet, err)
	}
	return nil
}

// Close сохраняет книгу в выход
func (x *XLSXWriter) Close() error {
	defer x.file.Close()

	if _, err := x.file.WriteTo(x.out); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	if c, ok := x.out.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func sheetName(table string) string {
	r := []rune(table)
	for i, c := range r {
		switch c {
		case ':', '\\', '/', '?', '*', '[', ']':
			r[i] = '_'
		}
	}
	if len(r) > maxSheetName {
		r = r[:maxSheetName]
	}
	return string(r)
}

// cellValue приводит значение к типу, который понимает excelize
func cellValue(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case []byte:
		return fmt.Sprintf("%x", val)
	case time.Time:
		return val
	}
	return v
}
