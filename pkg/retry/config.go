package retry

import (
	"fmt"
	"time"
)

// BackoffStrategy определяет рост задержки между попытками
type BackoffStrategy string

const (
	BackoffConstant    BackoffStrategy = "constant"
	BackoffLinear      BackoffStrategy = "linear"
	BackoffExponential BackoffStrategy = "exponential"
)

// Config - параметры повторов
type Config struct {
	// MaxAttempts - число попыток, включая первую (0 и 1 = без повторов)
	MaxAttempts int

	InitialDelay time.Duration
	MaxDelay     time.Duration

	Strategy BackoffStrategy

	// Multiplier - основание для exponential (по умолчанию 2)
	Multiplier float64

	// Jitter - доля случайного разброса задержки, 0.0 - 1.0
	Jitter float64

	// OnRetry вызывается перед каждой повторной попыткой
	OnRetry func(attempt int, err error, delay time.Duration)
}

// Validate проверяет конфигурацию и подставляет множитель по умолчанию
func (c *Config) Validate() error {
	if c.MaxAttempts < 0 {
		return fmt.Errorf("max_attempts must be >= 0, got %d", c.MaxAttempts)
	}
	if c.InitialDelay < 0 {
		return fmt.Errorf("initial_delay must be >= 0")
	}
	if c.MaxDelay < c.InitialDelay {
		return fmt.Errorf("max_delay (%v) must be >= initial_delay (%v)", c.MaxDelay, c.InitialDelay)
	}

	switch c.Strategy {
	case BackoffConstant, BackoffLinear, BackoffExponential:
	case "":
		c.Strategy = BackoffExponential
	default:
		return fmt.Errorf("invalid backoff strategy: %s", c.Strategy)
	}

	if c.Multiplier <= 0 {
		c.Multiplier = 2.0
	}
	if c.Jitter < 0 || c.Jitter > 1.0 {
		return fmt.Errorf("jitter must be between 0.0 and 1.0, got %f", c.Jitter)
	}

	return nil
}

// DefaultConfig - 3 попытки, экспоненциально от 1s до 30s
func DefaultConfig() Config {
	return Config{
		MaxAttempts:  3,
		InitialDelay: time.Second,
		MaxDelay:     30 * time.Second,
		Strategy:     BackoffExponential,
		Multiplier:   2.0,
		Jitter:       0.1,
	}
}
