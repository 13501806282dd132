package security

import (
	"fmt"
	"strings"
	"unicode"
)

// Ключевые слова, запрещенные в запросах выгрузки
var forbiddenKeywords = map[string]bool{
	"INSERT": true, "UPDATE": true, "DELETE": true, "TRUNCATE": true, "MERGE": true,
	"DROP": true, "CREATE": true, "ALTER": true, "RENAME": true,
	"GRANT": true, "REVOKE": true,
	"EXECUTE": true, "EXEC": true, "CALL": true,
	"PRAGMA": true, "ATTACH": true, "DETACH": true,
	"BEGIN": true, "COMMIT": true, "ROLLBACK": true,
	"INTO": true,
}

// QueryError - пользовательский запрос отклонен
type QueryError struct {
	Table  string
	Reason string
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query for table %s rejected: %s", e.Table, e.Reason)
}

// ValidateQuery проверяет, что пользовательский запрос таблицы только читает данные.
// Допускаются SELECT и WITH, одна команда, без комментариев.
// Содержимое строковых литералов и идентификаторов в кавычках не проверяется.
func ValidateQuery(table, query string) error {
	s, err := scan(query)
	if err != nil {
		return &QueryError{Table: table, Reason: err.Error()}
	}

	if len(s.words) == 0 {
		return &QueryError{Table: table, Reason: "query is empty"}
	}
	if first := s.words[0]; first != "SELECT" && first != "WITH" {
		return &QueryError{Table: table, Reason: fmt.Sprintf("only SELECT and WITH queries allowed, got %s", first)}
	}
	for _, w := range s.words {
		if forbiddenKeywords[w] {
			return &QueryError{Table: table, Reason: fmt.Sprintf("forbidden keyword %s", w)}
		}
	}
	if s.trailing {
		return &QueryError{Table: table, Reason: "multiple statements not allowed"}
	}

	return nil
}

type scanResult struct {
	words    []string // Слова вне литералов, в верхнем регистре
	trailing bool     // После ';' есть что-то кроме пробелов
}

// scan разбивает запрос на слова, пропуская литералы и идентификаторы в кавычках
func scan(query string) (scanResult, error) {
	var (
		res       scanResult
		word      strings.Builder
		semicolon bool
	)

	flush := func() {
		if word.Len() > 0 {
			res.words = append(res.words, strings.ToUpper(word.String()))
			word.Reset()
		}
	}

	runes := []rune(query)
	for i := 0; i < len(runes); i++ {
		r := runes[i]

		if semicolon && !unicode.IsSpace(r) {
			res.trailing = true
		}

		switch {
		case r == '-' && i+1 < len(runes) && runes[i+1] == '-',
			r == '/' && i+1 < len(runes) && runes[i+1] == '*':
			return res, fmt.Errorf("comments not allowed")

		case r == '\'' || r == '"' || r == '`' || r == '[':
			flush()
			end := closingQuote(r)
			j := i + 1
			for ; j < len(runes); j++ {
				if runes[j] != end {
					continue
				}
				// Удвоенная кавычка внутри литерала
				if j+1 < len(runes) && runes[j+1] == end && r != '[' {
					j++
					continue
				}
				break
			}
			if j >= len(runes) {
				return res, fmt.Errorf("unterminated %c", r)
			}
			i = j

		case r == ';':
			flush()
			semicolon = true

		case r == '_' || r == '$' || unicode.IsLetter(r) || unicode.IsDigit(r):
			word.WriteRune(r)

		default:
			flush()
		}
	}
	flush()

	return res, nil
}

func closingQuote(open rune) rune {
	if open == '[' {
		return ']'
	}
	return open
}
