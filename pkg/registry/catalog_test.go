package registry

import (
	"os"
	"path/filepath"
	"testing"

	"energy-agent/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.Len(t, c.Tools, len(models.ToolNames()))

	tool, ok := c.Find(models.ToolZoneComparison)
	require.True(t, ok)
	assert.Equal(t, models.FormatZones, tool.ExpectedFormat)
}

func TestValidate_Problems(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"version": "0.1",
		"tools": [
			{"name": "forecast", "description": "prévision"},
			{"name": "cost", "description": "coût", "inputSchema": {"type": "object"}},
			{"name": "cost", "description": "coût"}
		]
	}`), 0o644))

	c, err := LoadCatalog(path)
	require.NoError(t, err)

	err = c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UNKNOWN_TOOL")
	assert.Contains(t, err.Error(), `duplicate tool "cost"`)
	assert.Contains(t, err.Error(), `tool "aggregate" missing from catalog`)
}

func TestLoadCatalog_Errors(t *testing.T) {
	_, err := LoadCatalog(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"tools": [`), 0o644))
	_, err = LoadCatalog(path)
	assert.Error(t, err)
}

func TestValidateParams(t *testing.T) {
	c := Default()

	tests := []struct {
		name   string
		tool   models.ToolName
		params map[string]interface{}
		valid  bool
		field  string
	}{
		{"aggregate ok", models.ToolAggregate, map[string]interface{}{"period": "7d", "aggregation": "max", "metric": "power"}, true, ""},
		{"unknown metric", models.ToolAggregate, map[string]interface{}{"period": "7d", "metric": "gas"}, false, "metric"},
		{"missing period", models.ToolCost, map[string]interface{}{}, false, "(root)"},
		{"negative savings", models.ToolCost, map[string]interface{}{"period": "30d", "target_savings": -5}, false, "target_savings"},
		{"extra keys allowed", models.ToolZoneComparison, map[string]interface{}{"period": "7d", "zones": []string{"cuisine"}}, true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := c.ValidateParams(tt.tool, tt.params)
			require.NoError(t, err)
			assert.Equal(t, tt.valid, res.Valid, res.GetErrorMessages())
			if tt.field != "" {
				assert.True(t, res.HasErrors(tt.field), res.GetErrorMessages())
			}
		})
	}
}

func TestPromptList(t *testing.T) {
	list := Default().PromptList()
	assert.Contains(t, list, "- aggregate_moyenne: ")
	assert.Contains(t, list, "(paramètres: aggregation, metric, period)")
}

func TestDefaultExamples(t *testing.T) {
	examples := DefaultExamples()
	require.NotEmpty(t, examples)
	for _, ex := range examples {
		assert.NotEmpty(t, ex.ID)
		_, err := models.ParseToolName(ex.Tool)
		assert.NoError(t, err, ex.ID)
	}
}
