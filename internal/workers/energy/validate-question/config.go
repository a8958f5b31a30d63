// internal/workers/energy/validate-question/config.go
package validatequestion

import (
	"time"

	"energy-agent/internal/common/config"
)

type Config struct {
	MinLength   int
	CostInScope bool
	Timeout     time.Duration
}

func LoadConfig(appCfg *config.Config) *Config {
	cfg := &Config{MinLength: 3, Timeout: 2 * time.Second}
	if appCfg == nil {
		return cfg
	}
	cfg.CostInScope = appCfg.Agent.CostInScope
	if w := config.GetWorkerConfig(appCfg, TaskType); w.Timeout > 0 {
		cfg.Timeout = config.GetDuration(w.Timeout)
	}
	return cfg
}
