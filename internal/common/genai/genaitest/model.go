// Package genaitest provides an in-memory language model for tests.
package genaitest

import (
	"context"
	"strings"
	"sync"

	"github.com/tmc/langchaingo/llms"
)

// Model answers prompts with Respond and records every prompt it receives.
type Model struct {
	Respond func(prompt string) (string, error)

	mu      sync.Mutex
	prompts []string
}

var _ llms.Model = (*Model)(nil)

// Reply returns a model that always answers text.
func Reply(text string) *Model {
	return &Model{Respond: func(string) (string, error) { return text, nil }}
}

// Fail returns a model whose calls all fail with err.
func Fail(err error) *Model {
	return &Model{Respond: func(string) (string, error) { return "", err }}
}

func (m *Model) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

func (m *Model) GenerateContent(ctx context.Context, messages []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	var b strings.Builder
	for _, msg := range messages {
		for _, p := range msg.Parts {
			if tc, ok := p.(llms.TextContent); ok {
				b.WriteString(tc.Text)
			}
		}
	}
	prompt := b.String()

	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	text, err := m.Respond(prompt)
	if err != nil {
		return nil, err
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: text}}}, nil
}

// Prompts returns the prompts received so far.
func (m *Model) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}
