package operator

import (
	"time"

	"github.com/kbukum/liftkit/validation"
)

// Chooser modes.
const (
	ModeCanned = "canned"
	ModeScript = "script"
)

// DefaultScriptTimeout bounds one script call.
const DefaultScriptTimeout = time.Second

// Config selects and configures the chooser.
type Config struct {
	Mode string `mapstructure:"mode"`

	// Canned mode: 0-based positions.
	HookIndex    int `mapstructure:"hook_index"`
	BearingIndex int `mapstructure:"bearing_index"`

	// Script mode.
	ScriptPath    string        `mapstructure:"script_path"`
	ScriptTimeout time.Duration `mapstructure:"script_timeout"`
}

func (c *Config) ApplyDefaults() {
	if c.Mode == "" {
		c.Mode = ModeCanned
	}
	if c.ScriptTimeout <= 0 {
		c.ScriptTimeout = DefaultScriptTimeout
	}
}

func (c *Config) Validate() error {
	return validation.New().
		OneOf("operator.mode", c.Mode, []string{ModeCanned, ModeScript}).
		NonNegative("operator.hook_index", float64(c.HookIndex)).
		NonNegative("operator.bearing_index", float64(c.BearingIndex)).
		Custom(c.Mode != ModeScript || c.ScriptPath != "", "operator.script_path", "is required in script mode").
		Validate()
}

// NewChooser builds the chooser for the configured mode.
func (c Config) NewChooser() Chooser {
	if c.Mode == ModeScript {
		return NewLuaChooser(c.ScriptPath, c.ScriptTimeout)
	}
	return CannedChooser{Hook: c.HookIndex, Bearing: c.BearingIndex}
}
