package search

import (
	"context"
	"log"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/khanglvm/capsearch/internal/cache"
	"github.com/khanglvm/capsearch/internal/config"
	"github.com/khanglvm/capsearch/internal/embed"
	"github.com/khanglvm/capsearch/internal/index"
	"github.com/khanglvm/capsearch/internal/registry"
)

// Engine is the hybrid capability search engine. It owns no background
// goroutines; every query runs synchronously on the caller's goroutine
// (with internal fan-out for scoring) and honours the caller's context.
type Engine struct {
	cfg      *config.Config
	store    registry.Store
	traces   registry.TraceReader
	idx      index.Searcher
	embedder embed.Embedder
	results  *cache.ResultCache

	strategies []rankingStrategy
}

// Option configures optional engine collaborators.
type Option func(*Engine)

// WithIndex wires the full-text index collaborator. Without it every
// query takes the keyword-scan fallback strategy.
func WithIndex(idx index.Searcher) Option {
	return func(e *Engine) { e.idx = idx }
}

// WithEmbedder wires the embedding backend. Without it (or on backend
// failure) candidates are ranked on lexical signal alone.
func WithEmbedder(em embed.Embedder) Option {
	return func(e *Engine) { e.embedder = em }
}

// WithTraceReader wires the usage co-occurrence graph.
func WithTraceReader(tr registry.TraceReader) Option {
	return func(e *Engine) { e.traces = tr }
}

// New creates an engine over the given registry store.
func New(cfg *config.Config, store registry.Store, opts ...Option) *Engine {
	if cfg == nil {
		cfg = config.Default()
	}
	e := &Engine{
		cfg:     cfg,
		store:   store,
		results: cache.New(cfg.CacheSize, cfg.CacheTTL),
	}
	for _, opt := range opts {
		opt(e)
	}

	// Ordered ranking strategies: the hybrid pipeline first, the
	// keyword scan as terminal fallback. Each strategy either produces
	// a complete ranking or declines.
	e.strategies = []rankingStrategy{
		&hybridStrategy{engine: e},
		&keywordScanStrategy{engine: e},
	}
	return e
}

// ResultCache exposes the engine's cache for tests and stats reporting.
func (e *Engine) ResultCache() *cache.ResultCache {
	return e.results
}

// queryState carries one query's derived state through the strategies.
type queryState struct {
	query   Query
	norm    Normalized
	limit   int
	actives []registry.Capability
	lex     *Lexical
}

// rankingStrategy produces a complete ranked list for a query, or
// declines so the next strategy runs. The returned list is untruncated;
// the engine caches it whole and serves prefixes.
type rankingStrategy interface {
	name() string
	rank(ctx context.Context, qs *queryState) (results []ScoredResult, ok bool, err error)
}

// Search ranks the active corpus for the query and returns the top
// q.Limit results. It never returns an error for backend degradation or
// unmatched queries; the only error is context cancellation, in which
// case nothing is written to the cache.
func (e *Engine) Search(ctx context.Context, q Query) ([]ScoredResult, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = 10
	}

	norm := Normalize(q.Text)
	if len(norm.Tokens) == 0 {
		// Empty after normalization is a valid query with no answer.
		return []ScoredResult{}, nil
	}

	// The cache key cannot represent session state or ablation flags,
	// so queries carrying either skip the cache entirely.
	cacheable := q.Ablation.enabled() && len(q.SessionUsed) == 0
	key := cache.Key(CacheKeyText(q.Text), CacheKeyText(q.Category))
	if cacheable {
		if cached, ok := e.results.Get(key); ok {
			// A value of the wrong shape is a corrupt entry: treat
			// as a miss and recompute.
			if results, valid := cached.([]ScoredResult); valid {
				return clipResults(results, limit), nil
			}
		}
	}

	actives, err := e.store.ListActive(q.Category)
	if err != nil {
		// Registry trouble degrades to an empty answer; the agent
		// loop must never abort on search-side failures.
		log.Printf("Warning: failed to list capabilities: %v", err)
		return []ScoredResult{}, nil
	}
	if len(actives) == 0 {
		return []ScoredResult{}, nil
	}

	qs := &queryState{
		query:   q,
		norm:    norm,
		limit:   limit,
		actives: actives,
		lex:     NewLexical(e.cfg, actives),
	}

	for _, strat := range e.strategies {
		results, ok, err := strat.rank(ctx, qs)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if cacheable && ctx.Err() == nil {
			e.results.Set(key, results)
		}
		return clipResults(results, limit), nil
	}

	return []ScoredResult{}, nil
}

// ListCategories enumerates categories of active capabilities.
func (e *Engine) ListCategories() ([]registry.CategoryCount, error) {
	return e.store.ListCategories()
}

// hybridStrategy runs the full pipeline: full-text candidate retrieval,
// concurrent lexical and dense scoring, RRF fusion and boosts. It
// declines when the index is unavailable, fails, or matches nothing.
type hybridStrategy struct {
	engine *Engine
}

func (s *hybridStrategy) name() string { return "hybrid-pipeline" }

func (s *hybridStrategy) rank(ctx context.Context, qs *queryState) ([]ScoredResult, bool, error) {
	e := s.engine
	if e.idx == nil {
		return nil, false, nil
	}

	candidateLimit := qs.limit * e.cfg.CandidateFactor
	expanded := qs.lex.ExpandQuery(qs.norm, qs.query.Ablation)
	hits, err := e.idx.Search(strings.Join(expanded, " "), qs.query.Category, candidateLimit)
	if err != nil {
		log.Printf("Warning: full-text index unavailable, falling back: %v", err)
		return nil, false, nil
	}
	if len(hits) == 0 {
		return nil, false, nil
	}

	lexScores := make([]float64, len(qs.actives))
	denseScores := make([]float64, len(qs.actives))

	g, gctx := errgroup.WithContext(ctx)

	// Lexical scoring fans out across the corpus: each candidate is
	// scored independently, so workers write disjoint slice slots.
	workers := runtime.GOMAXPROCS(0)
	if workers > len(qs.actives) {
		workers = len(qs.actives)
	}
	chunk := (len(qs.actives) + workers - 1) / workers
	for w := 0; w < workers; w++ {
		start := w * chunk
		end := start + chunk
		if end > len(qs.actives) {
			end = len(qs.actives)
		}
		if start >= end {
			break
		}
		g.Go(func() error {
			for i := start; i < end; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				doc := qs.lex.BuildDoc(&qs.actives[i])
				score, _ := qs.lex.Score(qs.norm, doc, qs.query.Ablation)
				lexScores[i] = score
			}
			return nil
		})
	}

	// Dense scoring runs concurrently with lexical scoring; neither
	// depends on the other. Embedding failure or timeout contributes
	// an empty dense ranking, never an error.
	if e.embedder != nil && !qs.query.Ablation.DisableDense {
		g.Go(func() error {
			embedCtx, cancel := context.WithTimeout(gctx, e.cfg.EmbedTimeout)
			defer cancel()

			queryEmbedding, err := e.embedder.Embed(embedCtx, qs.query.Text)
			if err != nil {
				log.Printf("Warning: embedding backend unavailable, lexical-only scoring: %v", err)
				return nil
			}
			for i := range qs.actives {
				denseScores[i] = DenseScore(queryEmbedding, &qs.actives[i])
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, false, err
	}
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	// Rankings stay untruncated here: the full fused list is what gets
	// cached, and the per-query limit applies only at serve time.
	lexRanking := rankNonZero(qs.actives, lexScores)
	denseRanking := rankNonZero(qs.actives, denseScores)

	fctx := fusionContext{
		clusters:     e.cfg.Clusters,
		candidates:   activeNames(qs.actives),
		traceWeights: e.sessionTraceWeights(qs),
		ablation:     qs.query.Ablation,
	}
	results := fuse(lexRanking, denseRanking, e.cfg, fctx)
	return results, true, nil
}

// sessionTraceWeights sums, per candidate, the trace-edge weights with
// every capability the session has already used.
func (e *Engine) sessionTraceWeights(qs *queryState) map[string]int64 {
	if e.traces == nil || len(qs.query.SessionUsed) == 0 || qs.query.Ablation.DisableTraceBoost {
		return nil
	}

	weights := make(map[string]int64)
	for _, used := range qs.query.SessionUsed {
		edges, err := e.traces.EdgeWeights(used)
		if err != nil {
			log.Printf("Warning: failed to read trace edges for %q: %v", used, err)
			continue
		}
		for neighbour, w := range edges {
			weights[neighbour] += w
		}
	}
	return weights
}

// keywordScanStrategy is the terminal fallback: substring scan plus
// field-weighted BM25 computed in application code. It always succeeds.
type keywordScanStrategy struct {
	engine *Engine
}

func (s *keywordScanStrategy) name() string { return "keyword-scan" }

func (s *keywordScanStrategy) rank(_ context.Context, qs *queryState) ([]ScoredResult, bool, error) {
	e := s.engine
	results := fallbackSearch(qs.norm, qs.actives, e.cfg, 0)
	return results, true, nil
}

// rankNonZero turns parallel score slices into a ranking of candidates
// with non-zero scores, descending, ties broken by name.
func rankNonZero(caps []registry.Capability, scores []float64) []rankedItem {
	items := make([]rankedItem, 0, len(caps))
	for i := range caps {
		if scores[i] > 0 {
			items = append(items, rankedItem{Name: caps[i].Name, Score: scores[i]})
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		return items[i].Name < items[j].Name
	})
	return items
}

func activeNames(caps []registry.Capability) []string {
	names := make([]string, len(caps))
	for i := range caps {
		names[i] = caps[i].Name
	}
	return names
}

// clipResults returns the top limit results as a fresh slice; cached
// slices must never be aliased by callers.
func clipResults(results []ScoredResult, limit int) []ScoredResult {
	n := len(results)
	if limit > 0 && n > limit {
		n = limit
	}
	out := make([]ScoredResult, n)
	copy(out, results[:n])
	return out
}
