package converters

import (
	"fmt"
	"sort"
	"sync"
)

// CreatorFunc создает конвертер из параметров конфигурации
type CreatorFunc func(params map[string]any) (Converter, error)

// Factory создает конвертеры по их типу и параметрам
type Factory struct {
	mu       sync.RWMutex
	creators map[string]CreatorFunc
}

// NewFactory создает фабрику со встроенными конвертерами
func NewFactory() *Factory {
	f := &Factory{
		creators: make(map[string]CreatorFunc),
	}

	f.Register("constant", NewConstantFromConfig)
	f.Register("echo", func(map[string]any) (Converter, error) { return Echo{}, nil })
	f.Register("empty", func(map[string]any) (Converter, error) { return Empty{}, nil })
	f.Register("mask", NewMaskerFromConfig)
	f.Register("normalize", NewNormalizerFromConfig)
	f.Register("hash", NewHasherFromConfig)

	return f
}

// Register регистрирует новый тип конвертера
func (f *Factory) Register(converterType string, creator CreatorFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creators[converterType] = creator
}

// Types возвращает зарегистрированные типы (отсортированы)
func (f *Factory) Types() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	types := make([]string, 0, len(f.creators))
	for t := range f.creators {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Create создает конвертер по конфигурации
func (f *Factory) Create(config Config) (Converter, error) {
	f.mu.RLock()
	creator, ok := f.creators[config.Type]
	f.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown converter type: %s", config.Type)
	}

	conv, err := creator(config.Params)
	if err != nil {
		return nil, fmt.Errorf("failed to create converter '%s': %w", config.Type, err)
	}

	return conv, nil
}

// CreateChain создает цепочку конвертеров из массива конфигураций
func (f *Factory) CreateChain(configs []Config) (Chain, error) {
	chain := NewChain()

	for i, config := range configs {
		conv, err := f.Create(config)
		if err != nil {
			return Chain{}, fmt.Errorf("failed to create converter %d: %w", i, err)
		}
		chain.Add(conv)
	}

	return chain, nil
}

// DefaultFactory - фабрика со всеми встроенными конвертерами
var DefaultFactory = NewFactory()

// CreateChainFromConfigs создает цепочку используя дефолтную фабрику
func CreateChainFromConfigs(configs []Config) (Chain, error) {
	return DefaultFactory.CreateChain(configs)
}

// stringParam читает строковый параметр
func stringParam(params map[string]any, key string) (string, bool) {
	v, ok := params[key]
	if !ok || v == nil {
		return "", false
	}
	if s, ok := v.(string); ok {
		return s, true
	}
	return fmt.Sprintf("%v", v), true
}

// intParam читает целочисленный параметр (yaml дает int, json - float64)
func intParam(params map[string]any, key string) (int, bool, error) {
	v, ok := params[key]
	if !ok || v == nil {
		return 0, false, nil
	}
	switch n := v.(type) {
	case int:
		return n, true, nil
	case int64:
		return int(n), true, nil
	case float64:
		return int(n), true, nil
	}
	return 0, false, fmt.Errorf("parameter '%s' must be an integer, got %T", key, v)
}
