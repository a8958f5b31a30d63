// internal/workers/energy/suggest-questions/suggester.go
package suggestquestions

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"energy-agent/internal/common/database"
	"energy-agent/internal/common/errors"
	"energy-agent/internal/common/logger"
	"energy-agent/internal/models"
	"energy-agent/pkg/registry"
)

const (
	SourceIndex  = "index"
	SourceStatic = "static"
)

// Searcher runs a query against the example question index.
type Searcher interface {
	Search(ctx context.Context, index string, query map[string]interface{}, size int) ([]database.SearchHit, error)
}

// Suggester proposes in-scope questions to a user whose question was
// redirected.
type Suggester struct {
	search      Searcher
	index       string
	limit       int
	costInScope bool
	timeout     time.Duration
	examples    []registry.QuestionExample
	logger      logger.Logger
}

// NewSuggester uses the built-in examples when search is nil or fails.
func NewSuggester(search Searcher, cfg *Config, examples []registry.QuestionExample, log logger.Logger) *Suggester {
	if examples == nil {
		examples = registry.DefaultExamples()
	}
	limit := cfg.Limit
	if limit <= 0 {
		limit = 3
	}
	return &Suggester{
		search:      search,
		index:       cfg.Index,
		limit:       limit,
		costInScope: cfg.CostInScope,
		timeout:     cfg.Timeout,
		examples:    examples,
		logger:      log,
	}
}

// Suggest never fails. It returns the suggestions and where they came from.
func (s *Suggester) Suggest(ctx context.Context, question string, scope models.ScopeType) ([]string, string) {
	if s.search != nil {
		found, err := s.fromIndex(ctx, question, scope)
		if err == nil && len(found) > 0 {
			return found, SourceIndex
		}
		if err != nil {
			s.logger.Warn("suggestion search failed, using built-in examples", map[string]interface{}{
				"errorCode": string(errors.Normalize(err).Code),
				"error":     err.Error(),
			})
		}
	}
	return s.fromExamples(question), SourceStatic
}

func (s *Suggester) fromIndex(ctx context.Context, question string, scope models.ScopeType) ([]string, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	hits, err := s.search.Search(ctx, s.index, s.query(question, scope), s.limit)
	if err != nil {
		return nil, errors.NewSearchQueryFailedError(s.index, err)
	}

	out := make([]string, 0, len(hits))
	for _, hit := range hits {
		var ex registry.QuestionExample
		if err := json.Unmarshal(hit.Source, &ex); err != nil || ex.Question == "" {
			continue
		}
		out = append(out, ex.Question)
		if len(out) == s.limit {
			break
		}
	}
	return out, nil
}

// query ranks every example by similarity with the question. Cost examples
// are excluded while cost questions are redirected.
func (s *Suggester) query(question string, scope models.ScopeType) map[string]interface{} {
	should := []interface{}{
		map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     question,
				"fields":    []string{"question^2", "tags"},
				"fuzziness": "AUTO",
			},
		},
	}
	if scope == models.ScopeCost {
		should = append(should, map[string]interface{}{
			"terms": map[string]interface{}{
				"tool":  []string{string(models.ToolAggregateTemporal), string(models.ToolAggregateMoyenne)},
				"boost": 2,
			},
		})
	}

	boolQuery := map[string]interface{}{
		"must":   []interface{}{map[string]interface{}{"match_all": map[string]interface{}{}}},
		"should": should,
	}
	if !s.costInScope {
		boolQuery["must_not"] = []interface{}{
			map[string]interface{}{"term": map[string]interface{}{"tool": string(models.ToolCost)}},
		}
	}
	return map[string]interface{}{"query": map[string]interface{}{"bool": boolQuery}}
}

// fromExamples ranks the built-in examples by the number of their tags found
// in the question, keeping file order between equals.
func (s *Suggester) fromExamples(question string) []string {
	q := strings.ToLower(question)
	type ranked struct {
		question string
		score    int
	}
	var candidates []ranked
	for _, ex := range s.examples {
		if !s.costInScope && ex.Tool == string(models.ToolCost) {
			continue
		}
		score := 0
		for _, tag := range ex.Tags {
			if tag != "" && strings.Contains(q, strings.ToLower(tag)) {
				score++
			}
		}
		candidates = append(candidates, ranked{ex.Question, score})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	out := make([]string, 0, s.limit)
	for _, c := range candidates {
		if len(out) == s.limit {
			break
		}
		out = append(out, c.question)
	}
	return out
}
