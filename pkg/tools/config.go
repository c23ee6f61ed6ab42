package tools

import "time"

// Config specifies how tool batches are executed.
type Config struct {
	// MaxParallel bounds concurrent calls within one batch; <= 1 means
	// sequential execution.
	MaxParallel int
	// ExecutionTimeout bounds one call; zero means no per-call timeout.
	ExecutionTimeout time.Duration
}

// DefaultConfig returns the default execution configuration.
func DefaultConfig() Config {
	return Config{
		MaxParallel:      3,
		ExecutionTimeout: 30 * time.Second,
	}
}

func (c Config) WithMaxParallel(maxParallel int) Config {
	c.MaxParallel = maxParallel
	return c
}

func (c Config) WithExecutionTimeout(timeout time.Duration) Config {
	c.ExecutionTimeout = timeout
	return c
}
