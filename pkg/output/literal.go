package output

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FormatLiteral форматирует значение как SQL-литерал диалекта
func FormatLiteral(dialect string, value any) string {
	switch v := value.(type) {
	case nil:
		return "NULL"
	case string:
		return quoteString(dialect, v)
	case []byte:
		return binaryLiteral(dialect, v)
	case bool:
		if dialect == "postgres" {
			if v {
				return "TRUE"
			}
			return "FALSE"
		}
		if v {
			return "1"
		}
		return "0"
	case int:
		return strconv.Itoa(v)
	case int8:
		return strconv.FormatInt(int64(v), 10)
	case int16:
		return strconv.FormatInt(int64(v), 10)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint:
		return strconv.FormatUint(uint64(v), 10)
	case uint8:
		return strconv.FormatUint(uint64(v), 10)
	case uint16:
		return strconv.FormatUint(uint64(v), 10)
	case uint32:
		return strconv.FormatUint(uint64(v), 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case time.Time:
		return quoteString(dialect, formatTime(v))
	case fmt.Stringer:
		return quoteString(dialect, v.String())
	}
	return quoteString(dialect, fmt.Sprintf("%v", value))
}

// formatTime: дата без времени пишется как дата, иначе с дробной частью секунд если она есть
func formatTime(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format("2006-01-02")
	}
	if t.Nanosecond() != 0 {
		return t.Format("2006-01-02 15:04:05.999999")
	}
	return t.Format("2006-01-02 15:04:05")
}

func quoteString(dialect, s string) string {
	s = strings.ReplaceAll(s, "'", "''")
	switch dialect {
	case "mysql":
		// MySQL по умолчанию трактует обратный слеш как escape
		s = strings.ReplaceAll(s, `\`, `\\`)
		s = strings.ReplaceAll(s, "\x00", `\0`)
	case "mssql":
		return "N'" + s + "'"
	}
	return "'" + s + "'"
}

func binaryLiteral(dialect string, b []byte) string {
	h := hex.EncodeToString(b)
	switch dialect {
	case "postgres":
		return `'\x` + h + `'::bytea`
	case "mssql":
		if len(b) == 0 {
			return "0x"
		}
		return "0x" + h
	}
	return "X'" + h + "'"
}
