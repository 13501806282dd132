// Package base содержит общую часть адаптеров поверх database/sql.
//
// StandardSQLAdapter реализует Query, Exec, QuoteIdentifier, Ping и Close
// для SQLite, MySQL и MS SQL. Специфичный адаптер встраивает его и добавляет
// Connect, версию СУБД и реестр типов:
//
//	type Adapter struct {
//	    *base.StandardSQLAdapter
//	}
//
// Диалект (кавычки идентификаторов, стиль параметров) задается через Dialect.
package base
