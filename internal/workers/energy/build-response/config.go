// internal/workers/energy/build-response/config.go
package buildresponse

import (
	"time"

	"energy-agent/internal/common/config"
)

type Config struct {
	Timeout        time.Duration
	EmpathyEnabled bool
	EmpathySeed    int64
	Source         string
}

func LoadConfig(appCfg *config.Config) *Config {
	cfg := &Config{
		Timeout:        2 * time.Second,
		EmpathyEnabled: true,
		Source:         "energy-agent",
	}
	if appCfg == nil {
		return cfg
	}
	if w := config.GetWorkerConfig(appCfg, TaskType); w.Timeout > 0 {
		cfg.Timeout = config.GetDuration(w.Timeout)
	}
	cfg.EmpathyEnabled = appCfg.Agent.EmpathyEnabled
	cfg.EmpathySeed = appCfg.Agent.EmpathySeed
	if appCfg.Agent.Source != "" {
		cfg.Source = appCfg.Agent.Source
	}
	return cfg
}
