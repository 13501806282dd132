package output

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ruslano69/dbdump/pkg/adapters"
)

// Quoter экранирует идентификаторы диалекта
type Quoter interface {
	QuoteIdentifier(identifier string) string
}

// SQLWriter пишет дамп в виде INSERT-операторов
type SQLWriter struct {
	w       *bufio.Writer
	closer  io.Closer
	quoter  Quoter
	dialect string
	source  string
	now     func() time.Time

	headerWritten bool
}

// NewSQLWriter создает SQL-писатель поверх w.
// Если w реализует io.Closer, он закрывается в Close
func NewSQLWriter(w io.Writer, quoter Quoter, dialect, source string) *SQLWriter {
	sw := &SQLWriter{
		w:       bufio.NewWriterSize(w, 64*1024),
		quoter:  quoter,
		dialect: dialect,
		source:  source,
		now:     time.Now,
	}
	if c, ok := w.(io.Closer); ok {
		sw.closer = c
	}
	return sw
}

func (s *SQLWriter) writeHeader() error {
	if s.headerWritten {
		return nil
	}
	s.headerWritten = true

	_, err := fmt.Fprintf(s.w, "-- dbdump\n-- Dialect: %s\n-- Source: %s\n-- Generated: %s\n\n",
		s.dialect, s.source, s.now().UTC().Format(time.RFC3339))
	return err
}

// WritePreamble пишет заголовок и операторы преамбулы
func (s *SQLWriter) WritePreamble(statements []string) error {
	if err := s.writeHeader(); err != nil {
		return err
	}
	for _, stmt := range statements {
		if _, err := fmt.Fprintln(s.w, stmt); err != nil {
			return err
		}
	}
	if len(statements) > 0 {
		_, err := fmt.Fprintln(s.w)
		return err
	}
	return nil
}

// BeginTable пишет комментарий-разделитель таблицы
func (s *SQLWriter) BeginTable(table string) error {
	if err := s.writeHeader(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(s.w, "-- Table: %s\n", table)
	return err
}

// WriteRow пишет INSERT для строки
func (s *SQLWriter) WriteRow(table string, row adapters.Row) error {
	columns := make([]string, len(row.Columns))
	for i, c := range row.Columns {
		columns[i] = s.quoter.QuoteIdentifier(c)
	}

	values := make([]string, len(row.Values))
	for i, v := range row.Values {
		values[i] = FormatLiteral(s.dialect, v)
	}

	_, err := fmt.Fprintf(s.w, "INSERT INTO %s (%s) VALUES (%s);\n",
		s.quoter.QuoteIdentifier(table),
		strings.Join(columns, ", "),
		strings.Join(values, ", "))
	return err
}

// EndTable пишет итог по таблице
func (s *SQLWriter) EndTable(table string, rows int) error {
	_, err := fmt.Fprintf(s.w, "-- %d rows\n\n", rows)
	return err
}

// Close сбрасывает буфер и закрывает выход
func (s *SQLWriter) Close() error {
	if err := s.w.Flush(); err != nil {
		return fmt.Errorf("failed to flush output: %w", err)
	}
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}
