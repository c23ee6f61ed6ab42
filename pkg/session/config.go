package session

// Config bounds one turn of the orchestration loop.
type Config struct {
	// MaxRounds caps the number of model invocations within a single
	// turn. Each tool round consumes one invocation; the terminal
	// response consumes one as well.
	MaxRounds int
}

// DefaultConfig returns the default turn configuration.
func DefaultConfig() Config {
	return Config{
		MaxRounds: 5,
	}
}

func (c Config) WithMaxRounds(maxRounds int) Config {
	c.MaxRounds = maxRounds
	return c
}
