package converters

import (
	"fmt"
	"regexp"
	"strings"
)

// MaskPattern определяет тип маскирования
type MaskPattern string

const (
	// MaskPartial оставляет первый и последний символ (email: j***@example.com)
	MaskPartial MaskPattern = "partial"
	// MaskMiddle скрывает средние цифры (phone: +1 (555) XXX-X567)
	MaskMiddle MaskPattern = "middle"
	// MaskStars заменяет все кроме разделителей на звездочки
	MaskStars MaskPattern = "stars"
	// MaskFirst2Last2 показывает только первые 2 и последние 2 символа
	MaskFirst2Last2 MaskPattern = "first2_last2"
)

var (
	emailRegex  = regexp.MustCompile(`^([a-zA-Z0-9._%+-]+)@([a-zA-Z0-9.-]+\.[a-zA-Z]{2,})$`)
	nonDigitsRe = regexp.MustCompile(`\D`)
)

// Masker маскирует чувствительные данные (PII) по заданному шаблону
type Masker struct {
	Pattern MaskPattern
}

// NewMaskerFromConfig создает Masker из параметра "pattern" (по умолчанию stars)
func NewMaskerFromConfig(params map[string]any) (Converter, error) {
	pattern := MaskStars
	if p, ok := stringParam(params, "pattern"); ok {
		pattern = MaskPattern(p)
	}

	switch pattern {
	case MaskPartial, MaskMiddle, MaskStars, MaskFirst2Last2:
		return Masker{Pattern: pattern}, nil
	}
	return nil, fmt.Errorf("invalid mask pattern '%s'", pattern)
}

// Convert реализует Converter
func (m Masker) Convert(value string, _ Context) string {
	if value == "" {
		return value
	}

	switch m.Pattern {
	case MaskPartial:
		return maskPartial(value)
	case MaskMiddle:
		return maskMiddle(value)
	case MaskFirst2Last2:
		return maskFirst2Last2(value)
	default:
		return maskStars(value)
	}
}

// maskPartial: john.doe@example.com → j***@example.com, "Hello World" → "H***d"
func maskPartial(value string) string {
	if matches := emailRegex.FindStringSubmatch(value); len(matches) == 3 {
		return matches[1][:1] + "***@" + matches[2]
	}

	runes := []rune(value)
	if len(runes) <= 2 {
		return "***"
	}
	return string(runes[0]) + "***" + string(runes[len(runes)-1])
}

// maskMiddle: 1234 5678 9012 3456 → 1234 XXXX XXXX 3456
func maskMiddle(value string) string {
	digits := len(nonDigitsRe.ReplaceAllString(value, ""))
	if digits <= 4 {
		return strings.Repeat("X", len([]rune(value)))
	}

	visible := 4
	if digits < 8 {
		visible = digits / 2
	}

	runes := []rune(value)
	seen := 0
	for i, r := range runes {
		if r >= '0' && r <= '9' {
			seen++
			if seen > visible && seen <= digits-visible {
				runes[i] = 'X'
			}
		}
	}
	return string(runes)
}

// maskStars: "123-45-6789" → "***-**-****"
func maskStars(value string) string {
	runes := []rune(value)
	for i, r := range runes {
		switch r {
		case ' ', '-', '(', ')', '.', '/':
		default:
			runes[i] = '*'
		}
	}
	return string(runes)
}

// maskFirst2Last2: "1234 567890" → "12** ****90"
func maskFirst2Last2(value string) string {
	runes := []rune(value)

	// позиции непробельных символов
	var positions []int
	for i, r := range runes {
		if r != ' ' {
			positions = append(positions, i)
		}
	}

	if len(positions) <= 4 {
		return strings.Repeat("*", len(runes))
	}

	for _, pos := range positions[2 : len(positions)-2] {
		runes[pos] = '*'
	}
	return string(runes)
}
