//go:build e2e

// test/e2e/e2e_test.go
//
// Runs the agent against real backends:
//
//	E2E_POSTGRES_DSN        (required, the energy_data table is recreated)
//	E2E_ELASTICSEARCH_URL   (optional, seeds the example index)
//	E2E_NATS_URL            (optional, exercises the request/reply subject)
//
//	go test -tags e2e ./test/e2e/...
package e2e

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"energy-agent/internal/agent"
	"energy-agent/internal/api"
	"energy-agent/internal/common/config"
	"energy-agent/internal/common/database"
	"energy-agent/internal/common/genai/genaitest"
	"energy-agent/internal/common/logger"
	"energy-agent/internal/common/observability"
	"energy-agent/internal/common/transport"
	"energy-agent/internal/models"
	buildresponse "energy-agent/internal/workers/energy/build-response"
	suggestquestions "energy-agent/internal/workers/energy/suggest-questions"
	"energy-agent/pkg/registry"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testIndex = "energy-question-examples-e2e"

var schema = []string{
	`DROP TABLE IF EXISTS energy_data`,
	`CREATE TABLE energy_data (
		timestamp              TIMESTAMP PRIMARY KEY,
		energy_total_kwh       DOUBLE PRECISION NOT NULL,
		global_active_power_kw DOUBLE PRECISION NOT NULL,
		voltage_v              DOUBLE PRECISION NOT NULL,
		global_intensity_a     DOUBLE PRECISION NOT NULL,
		sub_metering_1_kwh     DOUBLE PRECISION NOT NULL,
		sub_metering_2_kwh     DOUBLE PRECISION NOT NULL,
		sub_metering_3_kwh     DOUBLE PRECISION NOT NULL
	)`,
	// 0.5 kWh every hour from ten days ago to the end of today.
	`INSERT INTO energy_data
	SELECT ts, 0.5, 2.0, 240.0, 8.5, 0.1, 0.1, 0.2
	FROM generate_series(CURRENT_DATE - INTERVAL '10 days', CURRENT_DATE + INTERVAL '23 hours', INTERVAL '1 hour') AS ts`,
}

func e2eConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		App:   config.AppConfig{Name: "energy-agent-e2e"},
		Agent: config.AgentConfig{Tariff: 0.2, Source: "postgres-e2e", Suggestions: 3},
		Database: config.DatabaseConfig{
			Postgres:      config.PostgresConfig{QueryTimeout: 5000},
			Elasticsearch: config.ElasticsearchConfig{Index: testIndex},
		},
		Transport: config.TransportConfig{NATS: config.NATSConfig{
			URL:     os.Getenv("E2E_NATS_URL"),
			Subject: "energy.questions.e2e." + uuid.NewString()[:8],
			Queue:   "energy-agent-e2e",
			Timeout: 10000,
		}},
	}
}

func openStore(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("E2E_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("E2E_POSTGRES_DSN not set")
	}
	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	require.NoError(t, db.PingContext(ctx), "PostgreSQL ping failed")
	for _, stmt := range schema {
		_, err := db.ExecContext(ctx, stmt)
		require.NoError(t, err)
	}
	return db
}

func newAgent(t *testing.T, cfg *config.Config, db *sql.DB, search suggestquestions.Searcher) *agent.Agent {
	t.Helper()
	opts := agent.Options{
		DB:            db,
		LLM:           genaitest.Reply("YESTERDAY"),
		Decorator:     buildresponse.Plain{},
		Observability: observability.Noop(),
	}
	if search != nil {
		opts.Search = search
	}
	a, err := agent.New(cfg, logger.NewTestLogger(t), opts)
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return a
}

func postQuestion(t *testing.T, url, question string) (int, models.StandardResponse) {
	t.Helper()
	body, _ := json.Marshal(api.QuestionRequest{Question: question})
	res, err := http.Post(url+"/api/v1/questions", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer res.Body.Close()

	var resp models.StandardResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&resp))
	return res.StatusCode, resp
}

func TestE2E_HTTP(t *testing.T) {
	db := openStore(t)
	cfg := e2eConfig(t)
	a := newAgent(t, cfg, db, nil)

	srv := httptest.NewServer(api.NewServer(a.Pipeline, a, a.Catalog, 30*time.Second, logger.NewTestLogger(t)).
		WithDataset(a.Postgres()).
		Router())
	defer srv.Close()

	t.Run("ready", func(t *testing.T) {
		res, err := http.Get(srv.URL + "/ready")
		require.NoError(t, err)
		res.Body.Close()
		assert.Equal(t, http.StatusOK, res.StatusCode)
	})

	t.Run("dataset", func(t *testing.T) {
		res, err := http.Get(srv.URL + "/api/v1/dataset")
		require.NoError(t, err)
		defer res.Body.Close()
		var stats database.DatasetStats
		require.NoError(t, json.NewDecoder(res.Body).Decode(&stats))
		assert.Equal(t, int64(11*24), stats.Rows)
	})

	t.Run("yesterday", func(t *testing.T) {
		code, resp := postQuestion(t, srv.URL, "Quelle est ma consommation hier ?")
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, models.StatusSuccess, resp.Status)
		assert.InDelta(t, 12.0, resp.Value, 1e-9)
		assert.Equal(t, "⚡ Vous avez consommé 12.0 kWh hier.", resp.Answer)
		assert.Equal(t, "postgres-e2e", resp.Source)
	})

	t.Run("out of scope", func(t *testing.T) {
		code, resp := postQuestion(t, srv.URL, "Quel temps fera-t-il demain ?")
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, models.StatusOutOfScope, resp.Status)
		assert.Len(t, resp.HelpfulSuggestions, 3)
	})

	t.Run("empty question", func(t *testing.T) {
		code, resp := postQuestion(t, srv.URL, "")
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, models.StatusError, resp.Status)
	})
}

func TestE2E_ElasticsearchSuggestions(t *testing.T) {
	esURL := os.Getenv("E2E_ELASTICSEARCH_URL")
	if esURL == "" {
		t.Skip("E2E_ELASTICSEARCH_URL not set")
	}
	db := openStore(t)
	cfg := e2eConfig(t)
	cfg.Database.Elasticsearch.Enabled = true
	cfg.Database.Elasticsearch.Addresses = []string{esURL}

	es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	require.NoError(t, es.Ping(ctx))
	require.NoError(t, es.EnsureIndex(ctx, testIndex, registry.ExampleIndexMapping))
	for _, ex := range registry.DefaultExamples() {
		require.NoError(t, es.IndexDocument(ctx, testIndex, ex.ID, ex))
	}
	require.NoError(t, es.Refresh(ctx, testIndex))

	a := newAgent(t, cfg, db, es)
	resp, err := a.Pipeline.Process(ctx, "Qui a gagné le match de sport hier ?")
	require.NoError(t, err)
	assert.Equal(t, models.StatusOutOfScope, resp.Status)
	assert.Equal(t, suggestquestions.SourceIndex, resp.Metadata["suggestion_source"])
	assert.NotEmpty(t, resp.HelpfulSuggestions)
	for _, s := range resp.HelpfulSuggestions {
		assert.NotContains(t, s, "coûté")
	}
}

func TestE2E_NATS(t *testing.T) {
	cfg := e2eConfig(t)
	if cfg.Transport.NATS.URL == "" {
		t.Skip("E2E_NATS_URL not set")
	}
	db := openStore(t)
	a := newAgent(t, cfg, db, nil)

	nt, err := transport.NewNATSTransport(cfg.Transport.NATS, cfg.App.Name, a.Pipeline, logger.NewTestLogger(t))
	require.NoError(t, err)
	require.NoError(t, nt.Start())
	defer nt.Close()

	nc, err := nats.Connect(cfg.Transport.NATS.URL)
	require.NoError(t, err)
	defer nc.Close()

	req, _ := json.Marshal(transport.QuestionRequest{RequestID: "e2e-1", Question: "Combien ai-je consommé hier ?"})
	msg, err := nc.Request(cfg.Transport.NATS.Subject, req, 15*time.Second)
	require.NoError(t, err)

	var reply transport.QuestionReply
	require.NoError(t, json.Unmarshal(msg.Data, &reply))
	assert.Equal(t, "e2e-1", reply.RequestID)
	require.NotNil(t, reply.Response)
	assert.InDelta(t, 12.0, reply.Response.Value, 1e-9)
	assert.Equal(t, "e2e-1", reply.Response.Metadata["request_id"])

	blank, _ := json.Marshal(transport.QuestionRequest{RequestID: "e2e-2", Question: "   "})
	msg, err = nc.Request(cfg.Transport.NATS.Subject, blank, 15*time.Second)
	require.NoError(t, err)

	reply = transport.QuestionReply{}
	require.NoError(t, json.Unmarshal(msg.Data, &reply))
	assert.Empty(t, reply.ErrorCode)
	require.NotNil(t, reply.Response)
	assert.Equal(t, models.StatusError, reply.Response.Status)
	assert.Contains(t, reply.Response.Answer, "trop courte")
}
