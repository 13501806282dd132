package main

import (
	"fmt"
	"io"
)

// Version information, set at build time via -ldflags
var (
	Version   = "dev"
	BuildDate = "unknown"
)

// PrintVersion prints version information
func PrintVersion(w io.Writer) {
	fmt.Fprintf(w, "dbdump %s (built %s)\n", Version, BuildDate)
}

// PrintHelp prints usage with examples
func PrintHelp(w io.Writer) {
	fmt.Fprint(w, `dbdump - batched, filtered, anonymising table extraction

USAGE:
  dbdump -config dbdump.yaml [options]

OPTIONS:
  -config <file>          Configuration file (default: dbdump.yaml)
  -output <file>          Output file, overrides output.path
  -batch-size <n>         Rows per page, overrides dump.batch_size (default: 100)
  -log-level <level>      debug, info, warn, error
  -create-config <type>   Write a sample config (sqlite, postgres, mysql, mssql)
  -version                Show version
  -help                   Show this help

TABLES:
  Tables are dumped in config order. A filter with "references: users.id"
  keeps only rows whose column matches a value already dumped from users.id
  (rows with NULL in that column are kept too), so referenced tables must
  be listed first.

  A table with "query" runs that SQL as a single page; the marker
  $autoConditions is replaced with the table's filters.

CONVERTERS:
  constant  {value}           append a fixed string
  echo                        repeat the accumulated value
  empty                       append nothing
  mask      {pattern}         partial, middle, stars, first2_last2
  normalize {rule}            trim, whitespace, lowercase, uppercase, email, phone
  hash      {salt, length}    xxh3 hex digest

  Each converter appends " " + its output to the accumulated value.

EXAMPLES:
  dbdump -create-config postgres
  dbdump -config dbdump.yaml -output nightly.sql.zst
  dbdump -config dbdump.yaml -batch-size 1000 -log-level debug
`)
}
