package bootstrap

import "github.com/kbukum/liftkit/config"

// Config is satisfied by any pointer to a struct embedding
// config.ServiceConfig that also defines ApplyDefaults and Validate for its
// own sections:
//
//	type Config struct {
//	    config.ServiceConfig `mapstructure:",squash"`
//	    Bus bus.Config       `mapstructure:"bus"`
//	}
type Config interface {
	GetServiceConfig() *config.ServiceConfig
	ApplyDefaults()
	Validate() error
}
