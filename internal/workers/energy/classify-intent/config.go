// internal/workers/energy/classify-intent/config.go
package classifyintent

import (
	"time"

	"energy-agent/internal/common/config"
)

type Config struct {
	Timeout time.Duration
}

func LoadConfig(appCfg *config.Config) *Config {
	cfg := &Config{Timeout: 2 * time.Second}
	if appCfg != nil {
		if w := config.GetWorkerConfig(appCfg, TaskType); w.Timeout > 0 {
			cfg.Timeout = config.GetDuration(w.Timeout)
		}
	}
	return cfg
}
