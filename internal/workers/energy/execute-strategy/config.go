// internal/workers/energy/execute-strategy/config.go
package executestrategy

import (
	"time"

	"energy-agent/internal/common/config"
)

type Config struct {
	Timeout      time.Duration
	QueryTimeout time.Duration
	Tariff       float64
	Source       string
}

func LoadConfig(appCfg *config.Config) *Config {
	cfg := &Config{
		Timeout:      15 * time.Second,
		QueryTimeout: 10 * time.Second,
		Tariff:       0.20,
		Source:       "energy-agent",
	}
	if appCfg == nil {
		return cfg
	}
	if w := config.GetWorkerConfig(appCfg, TaskType); w.Timeout > 0 {
		cfg.Timeout = config.GetDuration(w.Timeout)
	}
	if qt := appCfg.Database.Postgres.QueryTimeout; qt > 0 {
		cfg.QueryTimeout = config.GetDuration(qt)
	}
	if appCfg.Agent.Tariff > 0 {
		cfg.Tariff = appCfg.Agent.Tariff
	}
	if appCfg.Agent.Source != "" {
		cfg.Source = appCfg.Agent.Source
	}
	return cfg
}
