package dumper

import (
	"errors"
	"fmt"
)

// ErrCursorNotStarted возвращается при обращении к курсору до Start
var ErrCursorNotStarted = errors.New("cursor not started")

// MissingDependencyError - зависимая таблица не была выгружена до текущей
type MissingDependencyError struct {
	Table           string
	ReferencedTable string
}

func (e *MissingDependencyError) Error() string {
	return fmt.Sprintf("table %s has not been dumped before %s", e.ReferencedTable, e.Table)
}

// MissingColumnError - зависимая таблица выгружена, но нужная колонка не собиралась
type MissingColumnError struct {
	Table            string
	ReferencedTable  string
	ReferencedColumn string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("column %s of table %s has not been dumped (required by %s)",
		e.ReferencedColumn, e.ReferencedTable, e.Table)
}

// QueryExecutionError - ошибка драйвера при выполнении запроса страницы.
// Исходная ошибка доступна через errors.Unwrap
type QueryExecutionError struct {
	Table string
	Query string
	Err   error
}

func (e *QueryExecutionError) Error() string {
	return fmt.Sprintf("query for table %s failed: %v", e.Table, e.Err)
}

func (e *QueryExecutionError) Unwrap() error {
	return e.Err
}

// InvalidFilterError - фильтр не может быть превращен в корректный предикат
type InvalidFilterError struct {
	Table  string
	Column string
	Reason string
}

func (e *InvalidFilterError) Error() string {
	return fmt.Sprintf("invalid filter on %s.%s: %s", e.Table, e.Column, e.Reason)
}

// ErrCursorExhausted возвращается при чтении текущей строки исчерпанного курсора
var ErrCursorExhausted = errors.New("cursor exhausted")
