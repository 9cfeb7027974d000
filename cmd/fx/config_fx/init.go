package config_fx

import (
	"go.uber.org/fx"

	"colabora/internal/config"
)

// Module supplies a configuration loaded (and possibly overridden by CLI
// flags) before the graph is built.
func Module(cfg config.Config) fx.Option {
	return fx.Supply(cfg)
}
