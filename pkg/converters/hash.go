package converters

import (
	"fmt"

	"github.com/zeebo/xxh3"
)

// Hasher заменяет значение детерминированным xxh3-хешем (hex).
// Одинаковые значения дают одинаковый хеш, поэтому связи между таблицами сохраняются
type Hasher struct {
	Salt   string
	Length int // обрезать hex до Length символов (0 = все 16)
}

// NewHasherFromConfig создает Hasher из параметров "salt" и "length"
func NewHasherFromConfig(params map[string]any) (Converter, error) {
	h := Hasher{}
	if salt, ok := stringParam(params, "salt"); ok {
		h.Salt = salt
	}

	length, ok, err := intParam(params, "length")
	if err != nil {
		return nil, err
	}
	if ok {
		if length < 0 || length > 16 {
			return nil, fmt.Errorf("hash length must be between 0 and 16, got %d", length)
		}
		h.Length = length
	}

	return h, nil
}

// Convert реализует Converter
func (h Hasher) Convert(value string, _ Context) string {
	sum := xxh3.HashString(h.Salt + value)

	hex := fmt.Sprintf("%016x", sum)

	if h.Length > 0 {
		return hex[:h.Length]
	}
	return hex
}
