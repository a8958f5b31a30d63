// Package genai provides the Gemini language model used by the period
// validator and the planner, exposed as a langchaingo llms.Model.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"energy-agent/internal/common/config"
	httpclient "energy-agent/internal/common/http"
	"energy-agent/internal/common/logger"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

var (
	ErrLLMTimeout       = errors.New("LLM_TIMEOUT")
	ErrLLMRequestFailed = errors.New("LLM_REQUEST_FAILED")
	ErrLLMEmptyResponse = errors.New("LLM_RESPONSE_INVALID")
)

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// Client calls the Gemini generateContent endpoint. Identical concurrent
// prompts share one request, calls are rate limited and successful
// responses are cached when a cache is configured.
type Client struct {
	http        *httpclient.Client
	endpoint    string
	model       string
	apiKey      string
	temperature float64
	timeout     time.Duration
	limiter     *rate.Limiter
	cache       *Cache
	group       singleflight.Group
	logger      logger.Logger
}

var _ llms.Model = (*Client)(nil)

func NewClient(cfg config.GeminiConfig, cache *Cache, log logger.Logger) *Client {
	timeout := config.GetDuration(cfg.Timeout)
	limit := rate.Limit(cfg.RateLimit)
	if cfg.RateLimit <= 0 {
		limit = rate.Inf
	}
	return &Client{
		http:        httpclient.NewClient(0, cfg.MaxRetries),
		endpoint:    strings.TrimRight(cfg.Endpoint, "/"),
		model:       cfg.Model,
		apiKey:      cfg.APIKey,
		temperature: cfg.Temperature,
		timeout:     timeout,
		limiter:     rate.NewLimiter(limit, cfg.Burst),
		cache:       cache,
		logger:      log.With(map[string]interface{}{"component": "gemini", "model": cfg.Model}),
	}
}

// Call implements llms.Model.
func (c *Client) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, c, prompt, options...)
}

// GenerateContent implements llms.Model. Text parts of every message are
// sent as Gemini contents; other part types are ignored.
func (c *Client) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	// -1 means the caller left the temperature unset.
	opts := llms.CallOptions{Temperature: -1}
	for _, o := range options {
		o(&opts)
	}
	temperature := c.temperature
	if opts.Temperature >= 0 {
		temperature = opts.Temperature
	}

	req := geminiRequest{GenerationConfig: geminiGenerationConfig{
		Temperature:     temperature,
		MaxOutputTokens: opts.MaxTokens,
	}}
	var promptText strings.Builder
	for _, m := range messages {
		content := geminiContent{Role: geminiRole(m.Role)}
		for _, p := range m.Parts {
			if tc, ok := p.(llms.TextContent); ok {
				content.Parts = append(content.Parts, geminiPart{Text: tc.Text})
				promptText.WriteString(tc.Text)
				promptText.WriteByte('\n')
			}
		}
		if len(content.Parts) > 0 {
			req.Contents = append(req.Contents, content)
		}
	}
	if len(req.Contents) == 0 {
		return nil, fmt.Errorf("%w: empty prompt", ErrLLMRequestFailed)
	}

	key := c.cache.Key(c.model, temperature, promptText.String())
	if text, ok := c.cache.Get(ctx, key); ok {
		return textResponse(text), nil
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		text, err := c.generate(ctx, req)
		if err == nil {
			c.cache.Set(ctx, key, text)
		}
		return text, err
	})
	if err != nil {
		return nil, err
	}
	return textResponse(v.(string)), nil
}

func (c *Client) generate(ctx context.Context, req geminiRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%w: rate limiter: %v", ErrLLMTimeout, err)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrLLMRequestFailed, err)
	}
	endpoint := fmt.Sprintf("%s/%s:generateContent?key=%s", c.endpoint, c.model, url.QueryEscape(c.apiKey))

	start := time.Now()
	raw, err := c.http.DoWithRetry(ctx, func(ctx context.Context) (*http.Request, error) {
		r, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		r.Header.Set("Content-Type", "application/json")
		return r, nil
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: after %s", ErrLLMTimeout, time.Since(start).Round(time.Millisecond))
		}
		return "", fmt.Errorf("%w: %v", ErrLLMRequestFailed, err)
	}

	var resp geminiResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrLLMEmptyResponse, err)
	}
	if resp.Error != nil {
		return "", fmt.Errorf("%w: gemini error %d: %s", ErrLLMRequestFailed, resp.Error.Code, resp.Error.Message)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: no candidates", ErrLLMEmptyResponse)
	}

	var text strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		text.WriteString(p.Text)
	}
	if strings.TrimSpace(text.String()) == "" {
		return "", fmt.Errorf("%w: empty text", ErrLLMEmptyResponse)
	}

	c.logger.Debug("gemini response received", map[string]interface{}{
		"duration_ms":  time.Since(start).Milliseconds(),
		"finishReason": resp.Candidates[0].FinishReason,
	})
	return text.String(), nil
}

func geminiRole(role schema.ChatMessageType) string {
	if role == schema.ChatMessageTypeAI {
		return "model"
	}
	return "user"
}

func textResponse(text string) *llms.ContentResponse {
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: text}}}
}
