package suggestquestions

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"energy-agent/internal/common/config"
	"energy-agent/internal/common/database"
	"energy-agent/internal/common/logger"
	"energy-agent/internal/models"
	"energy-agent/pkg/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type searchFunc func(ctx context.Context, index string, query map[string]interface{}, size int) ([]database.SearchHit, error)

func (f searchFunc) Search(ctx context.Context, index string, query map[string]interface{}, size int) ([]database.SearchHit, error) {
	return f(ctx, index, query, size)
}

func testConfig() *Config {
	return &Config{Timeout: time.Second, Index: "energy-question-examples", Limit: 3}
}

func hit(id, question string) database.SearchHit {
	src, _ := json.Marshal(registry.QuestionExample{ID: id, Question: question})
	return database.SearchHit{ID: id, Score: 1, Source: src}
}

func TestSuggest_FromIndex(t *testing.T) {
	var gotQuery map[string]interface{}
	var gotSize int
	search := searchFunc(func(_ context.Context, index string, query map[string]interface{}, size int) ([]database.SearchHit, error) {
		assert.Equal(t, "energy-question-examples", index)
		gotQuery, gotSize = query, size
		return []database.SearchHit{
			hit("a", "Quelle a été ma consommation hier ?"),
			{ID: "broken", Source: json.RawMessage(`"not an example"`)},
			hit("b", "Combien ai-je consommé le mois dernier ?"),
		}, nil
	})

	s := NewSuggester(search, testConfig(), nil, logger.NewTestLogger(t))
	got, source := s.Suggest(context.Background(), "Quel temps fait-il ?", models.ScopeNonEnergy)

	assert.Equal(t, SourceIndex, source)
	assert.Equal(t, []string{"Quelle a été ma consommation hier ?", "Combien ai-je consommé le mois dernier ?"}, got)
	assert.Equal(t, 3, gotSize)

	boolQuery := gotQuery["query"].(map[string]interface{})["bool"].(map[string]interface{})
	assert.Contains(t, boolQuery, "must_not")
	assert.Len(t, boolQuery["should"], 1)
}

func TestSuggest_CostScopeBoostsConsumption(t *testing.T) {
	s := NewSuggester(nil, testConfig(), nil, logger.NewTestLogger(t))
	q := s.query("Combien coûte ma facture ?", models.ScopeCost)
	boolQuery := q["query"].(map[string]interface{})["bool"].(map[string]interface{})
	assert.Len(t, boolQuery["should"], 2)
}

func TestSuggest_FallsBackToExamples(t *testing.T) {
	want := []string{
		"Quelle a été ma consommation hier ?",
		"Combien ai-je consommé le mois dernier ?",
		"Quelle est ma consommation moyenne par jour ?",
	}

	tests := []struct {
		name   string
		search Searcher
	}{
		{"no index", nil},
		{"search error", searchFunc(func(context.Context, string, map[string]interface{}, int) ([]database.SearchHit, error) {
			return nil, stderrors.New("connection refused")
		})},
		{"no hits", searchFunc(func(context.Context, string, map[string]interface{}, int) ([]database.SearchHit, error) {
			return nil, nil
		})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSuggester(tt.search, testConfig(), nil, logger.NewTestLogger(t))
			got, source := s.Suggest(context.Background(), "ma consommation hier", models.ScopeUnknown)
			assert.Equal(t, SourceStatic, source)
			assert.Equal(t, want, got)
		})
	}
}

func TestSuggest_CostExamples(t *testing.T) {
	cfg := testConfig()
	withoutCost := NewSuggester(nil, cfg, nil, logger.NewTestLogger(t))
	got, _ := withoutCost.Suggest(context.Background(), "quel est le prix de ma facture", models.ScopeCost)
	assert.NotContains(t, got, "Combien m'a coûté ma consommation cette semaine ?")

	cfg.CostInScope = true
	withCost := NewSuggester(nil, cfg, nil, logger.NewTestLogger(t))
	got, _ = withCost.Suggest(context.Background(), "quel est le prix de ma facture", models.ScopeCost)
	require.NotEmpty(t, got)
	assert.Equal(t, "Combien m'a coûté ma consommation cette semaine ?", got[0])
}

func TestSuggest_ElasticsearchClient(t *testing.T) {
	var body map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewDecoder(r.Body).Decode(&body)
		_, _ = w.Write([]byte(`{"hits":{"hits":[{"_id":"ex-weekend","_score":3.1,"_source":{"question":"Est-ce que je consomme plus le weekend qu'en semaine ?","tool":"weekday_comparison"}}]}}`))
	}))
	defer srv.Close()

	es, err := database.NewElasticsearch(config.ElasticsearchConfig{Addresses: []string{srv.URL}})
	require.NoError(t, err)

	h := NewHandler(testConfig(), es, logger.NewTestLogger(t))
	out, err := h.Execute(context.Background(), &Input{Question: "Qui a gagné le match de foot ?", ScopeType: models.ScopeNonEnergy})
	require.NoError(t, err)
	assert.Equal(t, SourceIndex, out.Source)
	assert.Equal(t, []string{"Est-ce que je consomme plus le weekend qu'en semaine ?"}, out.Suggestions)
	assert.Contains(t, body, "query")
}
