// internal/workers/energy/suggest-questions/config.go
package suggestquestions

import (
	"time"

	"energy-agent/internal/common/config"
)

type Config struct {
	Timeout     time.Duration
	Index       string
	Limit       int
	CostInScope bool
}

func LoadConfig(appCfg *config.Config) *Config {
	cfg := &Config{
		Timeout: 2 * time.Second,
		Index:   "energy-question-examples",
		Limit:   3,
	}
	if appCfg == nil {
		return cfg
	}
	if w := config.GetWorkerConfig(appCfg, TaskType); w.Timeout > 0 {
		cfg.Timeout = config.GetDuration(w.Timeout)
	}
	if appCfg.Database.Elasticsearch.Index != "" {
		cfg.Index = appCfg.Database.Elasticsearch.Index
	}
	if appCfg.Agent.Suggestions > 0 {
		cfg.Limit = appCfg.Agent.Suggestions
	}
	cfg.CostInScope = appCfg.Agent.CostInScope
	return cfg
}
