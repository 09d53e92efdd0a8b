package run

import (
	"github.com/kbukum/liftkit/bus"
	"github.com/kbukum/liftkit/config"
	"github.com/kbukum/liftkit/crane"
	"github.com/kbukum/liftkit/observability"
	"github.com/kbukum/liftkit/operator"
	"github.com/kbukum/liftkit/resilience"
	"github.com/kbukum/liftkit/storage"
)

// Config is the liftkit.yml layout.
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Bus           bus.Config             `yaml:"bus" mapstructure:"bus"`
	Storage       storage.Config         `yaml:"storage" mapstructure:"storage"`
	Operator      operator.Config        `yaml:"operator" mapstructure:"operator"`
	Retry         resilience.RetryConfig `yaml:"retry" mapstructure:"retry"`
	Observability observability.Config   `yaml:"observability" mapstructure:"observability"`

	// DataKey is the storage key of the initial data.
	DataKey string `yaml:"data_key" mapstructure:"data_key"`
	// AwaitRestart makes the chain wait for the operator's RestartEval.
	AwaitRestart bool `yaml:"await_restart" mapstructure:"await_restart"`
}

func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "liftkit"
	}
	c.ServiceConfig.ApplyDefaults()
	c.Bus.ApplyDefaults()
	c.Storage.ApplyDefaults()
	c.Operator.ApplyDefaults()
	c.Retry.ApplyDefaults()
	c.Observability.ApplyDefaults()
	if c.DataKey == "" {
		c.DataKey = crane.DefaultInitialKey
	}
}

func (c *Config) Validate() error {
	for _, v := range []interface{ Validate() error }{
		&c.ServiceConfig, &c.Bus, &c.Storage, &c.Operator, &c.Retry, &c.Observability,
	} {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}
