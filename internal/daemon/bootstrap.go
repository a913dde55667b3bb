// SPDX-License-Identifier: MIT

// Package daemon provides the core daemon bootstrapping and lifecycle management.
package daemon

import (
	"fmt"

	"github.com/ManuGH/pendel/internal/config"
)

// Bootstrap loads the configuration from file and environment and wraps it
// in a reload-capable holder. The returned holder carries the validated
// initial configuration.
func Bootstrap(configPath, version string) (*config.ConfigHolder, error) {
	loader := config.NewLoader(configPath, version)
	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return config.NewConfigHolder(cfg, loader, configPath), nil
}
