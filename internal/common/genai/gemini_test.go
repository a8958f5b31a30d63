package genai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"energy-agent/internal/common/config"
	"energy-agent/internal/common/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

func geminiServer(t *testing.T, calls *int32, status int, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		assert.Equal(t, "/gemini-test:generateContent", r.URL.Path)
		assert.Equal(t, "k", r.URL.Query().Get("key"))

		var req geminiRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if assert.NotEmpty(t, req.Contents) {
			assert.Contains(t, req.Contents[0].Parts[0].Text, "hier")
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

func testConfig(endpoint string) config.GeminiConfig {
	return config.GeminiConfig{
		Endpoint:   endpoint,
		Model:      "gemini-test",
		APIKey:     "k",
		Timeout:    2000,
		MaxRetries: 0,
		RateLimit:  100,
		Burst:      10,
	}
}

const okBody = `{"candidates":[{"content":{"parts":[{"text":"YESTERDAY\n"}]},"finishReason":"STOP"}]}`

func TestClientCall(t *testing.T) {
	var calls int32
	srv := geminiServer(t, &calls, http.StatusOK, okBody)
	defer srv.Close()

	c := NewClient(testConfig(srv.URL), nil, logger.NewTestLogger(t))
	out, err := llms.GenerateFromSinglePrompt(context.Background(), c, "Quelle a été ma consommation hier ?", llms.WithTemperature(0))
	require.NoError(t, err)
	assert.Equal(t, "YESTERDAY\n", out)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClientCachesResponses(t *testing.T) {
	var calls int32
	srv := geminiServer(t, &calls, http.StatusOK, okBody)
	defer srv.Close()

	mr := miniredis.RunT(t)
	log := logger.NewTestLogger(t)
	cache := NewCache(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Hour, log)
	c := NewClient(testConfig(srv.URL), cache, log)

	for i := 0; i < 3; i++ {
		out, err := c.Call(context.Background(), "consommation hier")
		require.NoError(t, err)
		assert.Equal(t, "YESTERDAY\n", out)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	keys := mr.Keys()
	require.Len(t, keys, 1)
	assert.Contains(t, keys[0], "energy:llm:gemini-test:")
}

func TestClientErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"api error", http.StatusBadRequest, `{"error":{"code":400,"message":"API key not valid"}}`, ErrLLMRequestFailed},
		{"error in ok body", http.StatusOK, `{"error":{"code":429,"message":"quota"}}`, ErrLLMRequestFailed},
		{"no candidates", http.StatusOK, `{"candidates":[]}`, ErrLLMEmptyResponse},
		{"blank text", http.StatusOK, `{"candidates":[{"content":{"parts":[{"text":"  "}]}}]}`, ErrLLMEmptyResponse},
		{"not json", http.StatusOK, `<html>`, ErrLLMEmptyResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			srv := geminiServer(t, &calls, tt.status, tt.body)
			defer srv.Close()

			c := NewClient(testConfig(srv.URL), nil, logger.NewTestLogger(t))
			_, err := c.Call(context.Background(), "hier ?")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestClientTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.Timeout = 50
	c := NewClient(cfg, nil, logger.NewTestLogger(t))

	_, err := c.Call(context.Background(), "hier ?")
	assert.ErrorIs(t, err, ErrLLMTimeout)
}

func TestCacheKeyStable(t *testing.T) {
	var c *Cache
	a := c.Key("m", 0, "prompt")
	assert.Equal(t, a, c.Key("m", 0, "prompt"))
	assert.NotEqual(t, a, c.Key("m", 0.7, "prompt"))
	assert.NotEqual(t, a, c.Key("m", 0, "prompt 2"))

	_, ok := c.Get(context.Background(), a)
	assert.False(t, ok)
	c.Set(context.Background(), a, "ignored")
}

func TestClientTemperature(t *testing.T) {
	var got []float64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req geminiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		got = append(got, req.GenerationConfig.Temperature)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(okBody))
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.Temperature = 0.7
	c := NewClient(cfg, nil, logger.NewTestLogger(t))
	ctx := context.Background()

	_, err := c.Call(ctx, "hier ?", llms.WithTemperature(0))
	require.NoError(t, err)
	_, err = c.Call(ctx, "semaine ?")
	require.NoError(t, err)
	_, err = c.Call(ctx, "mois ?", llms.WithTemperature(0.3))
	require.NoError(t, err)

	assert.Equal(t, []float64{0, 0.7, 0.3}, got)
}
