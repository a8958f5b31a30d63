// internal/workers/energy/build-response/extract.go
package buildresponse

import (
	"encoding/json"
	"strconv"
	"strings"

	"energy-agent/internal/common/logger"
)

// accessor reads the answer value from one known result shape.
type accessor struct {
	name string
	get  func(result, data map[string]any) (float64, bool)
}

// accessors are probed in order; the first shape that yields a number wins.
var accessors = []accessor{
	{"data.value", func(_, data map[string]any) (float64, bool) {
		return number(data["value"])
	}},
	{"data.summary.total", func(_, data map[string]any) (float64, bool) {
		return number(field(data, "summary")["total"])
	}},
	{"data.data.summary.total", func(_, data map[string]any) (float64, bool) {
		return number(field(field(data, "data"), "summary")["total"])
	}},
	{"data.data.value", func(_, data map[string]any) (float64, bool) {
		return number(field(data, "data")["value"])
	}},
	{"value", func(result, _ map[string]any) (float64, bool) {
		return number(result["value"])
	}},
	{"data.zones", func(_, data map[string]any) (float64, bool) {
		zones, ok := data["zones"].(map[string]any)
		if !ok {
			return 0, false
		}
		var sum float64
		for _, v := range zones {
			if f, ok := numeric(v); ok {
				sum += f
			}
		}
		return sum, true
	}},
	{"data.current_period", func(_, data map[string]any) (float64, bool) {
		return number(data["current_period"])
	}},
}

// ExtractValue returns the numeric answer of an execution result map. It
// never fails: an error payload or an unknown shape yields 0.
func ExtractValue(result map[string]any, log logger.Logger) float64 {
	data := field(result, "data")
	if msg, ok := data["error"]; ok {
		log.Error("execution result carries an error", map[string]interface{}{"error": msg})
		return 0
	}
	for _, a := range accessors {
		if v, ok := a.get(result, data); ok {
			return v
		}
	}
	log.Warn("no value found in execution result", map[string]interface{}{"result": result})
	return 0
}

func field(m map[string]any, key string) map[string]any {
	if m == nil {
		return nil
	}
	sub, _ := m[key].(map[string]any)
	return sub
}

// number converts a scalar that may arrive as a number or a numeric string.
func number(v any) (float64, bool) {
	if f, ok := numeric(v); ok {
		return f, true
	}
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

func numeric(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
