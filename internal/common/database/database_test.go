package database

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"energy-agent/internal/common/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresStats(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	first := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(2024, 12, 31, 23, 0, 0, 0, time.UTC)
	mock.ExpectQuery("FROM energy_data").
		WillReturnRows(sqlmock.NewRows([]string{"count", "min", "max"}).AddRow(int64(8760), first, last))

	stats, err := NewPostgresFromDB(db, time.Second).Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(8760), stats.Rows)
	assert.True(t, stats.First.Equal(first))
	assert.True(t, stats.Last.Equal(last))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisJSON(t *testing.T) {
	mr := miniredis.RunT(t)
	c := &RedisClient{Client: redis.NewClient(&redis.Options{Addr: mr.Addr()})}
	ctx := context.Background()

	var out map[string]string
	found, err := c.GetJSON(ctx, "missing", &out)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.SetJSON(ctx, "energy:test", map[string]string{"code": "YESTERDAY"}, time.Minute))
	found, err = c.GetJSON(ctx, "energy:test", &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "YESTERDAY", out["code"])

	mr.FastForward(2 * time.Minute)
	found, err = c.GetJSON(ctx, "energy:test", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestElasticsearchSearch(t *testing.T) {
	var gotBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte(`{"hits":{"hits":[{"_id":"q1","_score":2.5,"_source":{"question":"Quelle a été ma consommation hier ?"}}]}}`))
	}))
	defer srv.Close()

	es, err := NewElasticsearch(config.ElasticsearchConfig{Addresses: []string{srv.URL}})
	require.NoError(t, err)

	hits, err := es.Search(context.Background(), "energy-question-examples", map[string]interface{}{
		"query": map[string]interface{}{"match_all": map[string]interface{}{}},
	}, 3)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "q1", hits[0].ID)
	assert.Contains(t, string(hits[0].Source), "consommation hier")
	assert.Contains(t, gotBody, "query")
}

func TestElasticsearchSearchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"index_not_found_exception"}`))
	}))
	defer srv.Close()

	es, err := NewElasticsearch(config.ElasticsearchConfig{URL: srv.URL})
	require.NoError(t, err)

	_, err = es.Search(context.Background(), "missing", map[string]interface{}{}, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "index_not_found_exception")
}
