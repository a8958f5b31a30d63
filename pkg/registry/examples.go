package registry

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
)

//go:embed examples.json
var defaultExamples []byte

// QuestionExample is a sample question offered to users whose question was
// out of scope.
type QuestionExample struct {
	ID       string   `json:"id"`
	Question string   `json:"question"`
	Tool     string   `json:"tool"`
	Tags     []string `json:"tags"`
}

// ExampleIndexMapping is the Elasticsearch mapping of the example question index.
const ExampleIndexMapping = `{
  "mappings": {
    "properties": {
      "question": {"type": "text", "analyzer": "french"},
      "tags":     {"type": "text", "analyzer": "french"},
      "tool":     {"type": "keyword"}
    }
  }
}`

// DefaultExamples returns the built-in example questions.
func DefaultExamples() []QuestionExample {
	var out []QuestionExample
	if err := json.Unmarshal(defaultExamples, &out); err != nil {
		panic(fmt.Sprintf("embedded examples: %v", err))
	}
	return out
}

func LoadExamples(path string) ([]QuestionExample, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read examples: %w", err)
	}
	var out []QuestionExample
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to parse examples: %w", err)
	}
	return out, nil
}
