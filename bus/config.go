package bus

import (
	"time"

	"github.com/kbukum/liftkit/validation"
)

// Config holds bus timeouts as loaded from the "bus" config section.
type Config struct {
	PollTimeout    time.Duration `mapstructure:"poll_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// ApplyDefaults fills unset timeouts.
func (c *Config) ApplyDefaults() {
	if c.PollTimeout == 0 {
		c.PollTimeout = DefaultPollTimeout
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
}

// Validate checks the configuration after defaults are applied.
func (c *Config) Validate() error {
	return validation.New().
		NonNegative("bus.poll_timeout", float64(c.PollTimeout)).
		PositiveDuration("bus.request_timeout", c.RequestTimeout).
		Validate()
}

// Options converts the configuration into Link/Switch options.
func (c Config) Options() []Option {
	return []Option{WithTimeout(c.PollTimeout), WithRequestTimeout(c.RequestTimeout)}
}
