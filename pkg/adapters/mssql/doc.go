// Package mssql реализует адаптер Microsoft SQL Server.
//
// Возможности:
//   - SQL Server 2012+ (постраничная выборка через OFFSET/FETCH)
//   - именованные параметры @name через sql.Named
//   - идентификаторы в квадратных скобках: [schema].[table]
//   - версия сервера через SERVERPROPERTY('ProductVersion')
package mssql
