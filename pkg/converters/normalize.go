package converters

import (
	"fmt"
	"regexp"
	"strings"
)

// NormalizeRule определяет правило нормализации
type NormalizeRule string

const (
	NormalizeTrim       NormalizeRule = "trim"
	NormalizeWhitespace NormalizeRule = "whitespace"
	NormalizeLowerCase  NormalizeRule = "lowercase"
	NormalizeUpperCase  NormalizeRule = "uppercase"
	NormalizeEmail      NormalizeRule = "email"
	NormalizePhone      NormalizeRule = "phone"
)

var (
	phoneCleanRe = regexp.MustCompile(`[^\d+]`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// Normalizer приводит значение к единому формату.
// Если значение не подходит под правило, оно возвращается как есть
type Normalizer struct {
	Rule NormalizeRule
}

// NewNormalizerFromConfig создает Normalizer из параметра "rule"
func NewNormalizerFromConfig(params map[string]any) (Converter, error) {
	rule, ok := stringParam(params, "rule")
	if !ok {
		return nil, fmt.Errorf("missing 'rule' parameter")
	}

	switch r := NormalizeRule(rule); r {
	case NormalizeTrim, NormalizeWhitespace, NormalizeLowerCase, NormalizeUpperCase, NormalizeEmail, NormalizePhone:
		return Normalizer{Rule: r}, nil
	}
	return nil, fmt.Errorf("unknown normalize rule: %s", rule)
}

// Convert реализует Converter
func (n Normalizer) Convert(value string, _ Context) string {
	switch n.Rule {
	case NormalizeTrim:
		return strings.TrimSpace(value)
	case NormalizeWhitespace:
		return whitespaceRe.ReplaceAllString(strings.TrimSpace(value), " ")
	case NormalizeLowerCase:
		return strings.ToLower(value)
	case NormalizeUpperCase:
		return strings.ToUpper(value)
	case NormalizeEmail:
		return normalizeEmail(value)
	case NormalizePhone:
		return normalizePhone(value)
	}
	return value
}

// normalizeEmail: " John.Doe@Example.COM " → "john.doe@example.com"
func normalizeEmail(value string) string {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if !strings.Contains(normalized, "@") || !strings.Contains(normalized, ".") {
		return value
	}
	return normalized
}

// normalizePhone: "+7 (999) 123-45-67", "8(999)123-45-67" → "79991234567"
func normalizePhone(value string) string {
	cleaned := phoneCleanRe.ReplaceAllString(value, "")

	if strings.HasPrefix(cleaned, "+7") {
		cleaned = "7" + cleaned[2:]
	}
	if strings.HasPrefix(cleaned, "8") && len(cleaned) == 11 {
		cleaned = "7" + cleaned[1:]
	}

	// Не российский номер - оставляем как есть
	if len(cleaned) != 11 || !strings.HasPrefix(cleaned, "7") {
		return value
	}
	return cleaned
}
