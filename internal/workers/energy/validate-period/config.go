// internal/workers/energy/validate-period/config.go
package validateperiod

import (
	"time"

	"energy-agent/internal/common/config"
)

type Config struct {
	// Timeout bounds the model call.
	Timeout time.Duration
}

func LoadConfig(appCfg *config.Config) *Config {
	cfg := &Config{Timeout: 15 * time.Second}
	if appCfg == nil {
		return cfg
	}
	if w := config.GetWorkerConfig(appCfg, TaskType); w.Timeout > 0 {
		cfg.Timeout = config.GetDuration(w.Timeout)
	} else if appCfg.APIs.Gemini.Timeout > 0 {
		cfg.Timeout = config.GetDuration(appCfg.APIs.Gemini.Timeout)
	}
	return cfg
}
