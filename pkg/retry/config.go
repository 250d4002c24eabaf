package retry

import (
	"fmt"
	"time"
)

// Backoff определяет стратегию задержки между повторами
type Backoff string

const (
	// BackoffConstant - постоянная задержка
	BackoffConstant Backoff = "constant"
	// BackoffLinear - линейное увеличение задержки
	BackoffLinear Backoff = "linear"
	// BackoffExponential - экспоненциальное увеличение задержки
	BackoffExponential Backoff = "exponential"
)

// Config - параметры повторов для сетевых операций (публикация результата)
type Config struct {
	Enabled bool `yaml:"enabled"`

	// MaxAttempts - количество попыток, включая первую
	MaxAttempts int `yaml:"max_attempts"`

	InitialDelay time.Duration `yaml:"initial_delay"`
	MaxDelay     time.Duration `yaml:"max_delay"`

	Backoff    Backoff `yaml:"backoff"`
	Multiplier float64 `yaml:"multiplier,omitempty"` // для exponential, обычно 2.0

	// Jitter - доля случайного разброса задержки (0.0 - 1.0)
	Jitter float64 `yaml:"jitter,omitempty"`

	// Retryable - подстроки ошибок, которые стоит повторять.
	// Пустой список = повторять любую ошибку
	Retryable []string `yaml:"retryable,omitempty"`

	// OnRetry вызывается перед каждой повторной попыткой
	OnRetry func(attempt int, err error, delay time.Duration) `yaml:"-"`
}

// Validate проверяет корректность конфигурации
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}

	if c.MaxAttempts < 1 {
		return fmt.Errorf("max_attempts must be >= 1, got %d", c.MaxAttempts)
	}
	if c.InitialDelay < 0 {
		return fmt.Errorf("initial_delay must be >= 0")
	}
	if c.MaxDelay < c.InitialDelay {
		return fmt.Errorf("max_delay (%v) must be >= initial_delay (%v)", c.MaxDelay, c.InitialDelay)
	}

	switch c.Backoff {
	case BackoffConstant, BackoffLinear, BackoffExponential:
	default:
		return fmt.Errorf("invalid backoff strategy: %q", c.Backoff)
	}

	if c.Multiplier <= 0 {
		c.Multiplier = 2.0
	}
	if c.Jitter < 0 || c.Jitter > 1.0 {
		return fmt.Errorf("jitter must be between 0.0 and 1.0, got %f", c.Jitter)
	}
	return nil
}

// DefaultConfig возвращает конфигурацию по умолчанию (повторы выключены)
func DefaultConfig() Config {
	return Config{
		MaxAttempts:  3,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Backoff:      BackoffExponential,
		Multiplier:   2.0,
		Jitter:       0.1,
	}
}

// Enable создает конфигурацию с включенными повторами
func Enable(maxAttempts int, initialDelay time.Duration) Config {
	config := DefaultConfig()
	config.Enabled = true
	config.MaxAttempts = maxAttempts
	config.InitialDelay = initialDelay
	if config.MaxDelay < initialDelay {
		config.MaxDelay = initialDelay
	}
	return config
}
