// pkg/registry/catalog.go
package registry

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"energy-agent/internal/common/validation"
	"energy-agent/internal/models"
)

//go:embed catalog.json
var defaultCatalog []byte

// ToolCatalog describes the tools the planner may choose from.
type ToolCatalog struct {
	Version     string `json:"version"`
	LastUpdated string `json:"lastUpdated"`
	Tools       []Tool `json:"tools"`

	mu      sync.Mutex
	schemas map[models.ToolName]*validation.Schema
}

type Tool struct {
	Name           models.ToolName        `json:"name"`
	DisplayName    string                 `json:"displayName"`
	Description    string                 `json:"description"`
	Category       string                 `json:"category"`
	ExpectedFormat models.ResponseFormat  `json:"expectedFormat"`
	InputSchema    map[string]interface{} `json:"inputSchema"`
	Tags           []string               `json:"tags,omitempty"`
}

// Default returns the catalog shipped with the binary.
func Default() *ToolCatalog {
	c, err := parseCatalog(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("embedded tool catalog: %v", err))
	}
	return c
}

// LoadCatalog reads a catalog file.
func LoadCatalog(path string) (*ToolCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return parseCatalog(data)
}

func parseCatalog(data []byte) (*ToolCatalog, error) {
	var c ToolCatalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return &c, nil
}

// Find returns the tool entry by name.
func (c *ToolCatalog) Find(name models.ToolName) (Tool, bool) {
	for _, t := range c.Tools {
		if t.Name == name {
			return t, true
		}
	}
	return Tool{}, false
}

// Validate checks that every tool is executable, listed once and carries a
// compilable input schema.
func (c *ToolCatalog) Validate() error {
	var problems []string
	seen := make(map[models.ToolName]bool)
	for _, t := range c.Tools {
		if _, err := models.ParseToolName(string(t.Name)); err != nil {
			problems = append(problems, err.Error())
			continue
		}
		if seen[t.Name] {
			problems = append(problems, fmt.Sprintf("duplicate tool %q", t.Name))
		}
		seen[t.Name] = true
		if t.Description == "" {
			problems = append(problems, fmt.Sprintf("tool %q has no description", t.Name))
		}
		if _, err := c.schema(t); err != nil {
			problems = append(problems, fmt.Sprintf("tool %q: %v", t.Name, err))
		}
	}
	for _, name := range models.ToolNames() {
		if !seen[name] {
			problems = append(problems, fmt.Sprintf("tool %q missing from catalog", name))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid catalog: %s", strings.Join(problems, "; "))
	}
	return nil
}

// ValidateParams checks planner parameters against the tool's input schema.
// Tools without a schema accept anything.
func (c *ToolCatalog) ValidateParams(name models.ToolName, params map[string]interface{}) (*validation.ValidationResult, error) {
	t, ok := c.Find(name)
	if !ok || t.InputSchema == nil {
		return &validation.ValidationResult{Valid: true}, nil
	}
	s, err := c.schema(t)
	if err != nil {
		return nil, err
	}
	if params == nil {
		params = map[string]interface{}{}
	}
	return s.Validate(params), nil
}

func (c *ToolCatalog) schema(t Tool) (*validation.Schema, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.schemas[t.Name]; ok {
		return s, nil
	}
	raw, err := json.Marshal(t.InputSchema)
	if err != nil {
		return nil, err
	}
	s, err := validation.Compile(string(raw))
	if err != nil {
		return nil, err
	}
	if c.schemas == nil {
		c.schemas = make(map[models.ToolName]*validation.Schema)
	}
	c.schemas[t.Name] = s
	return s, nil
}

// PromptList renders the catalog as the tool list of the planning prompt.
func (c *ToolCatalog) PromptList() string {
	var b strings.Builder
	for _, t := range c.Tools {
		fmt.Fprintf(&b, "- %s: %s", t.Name, t.Description)
		if props, ok := t.InputSchema["properties"].(map[string]interface{}); ok && len(props) > 0 {
			keys := make([]string, 0, len(props))
			for k := range props {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(&b, " (paramètres: %s)", strings.Join(keys, ", "))
		}
		b.WriteString("\n")
	}
	return b.String()
}
