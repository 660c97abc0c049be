package usecase

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/roomlens/backend/internal/domain"
	"github.com/roomlens/backend/internal/metrics"
	"github.com/rs/zerolog"
)

// RecommendationServiceConfig holds configuration for the recommendation service
type RecommendationServiceConfig struct {
	TopK            int
	DefaultStrategy domain.Strategy
}

// snapshot is the read-only state a match runs against
type snapshot struct {
	catalog *domain.Catalog
	index   domain.VectorIndex
}

// RecommendationService turns room images and keywords into product recommendations.
// Catalog and index are loaded by Reload and swapped atomically; matches in
// flight keep the snapshot they started with.
type RecommendationService struct {
	catalogStore    domain.CatalogStore
	indexStore      domain.IndexStore
	embedder        domain.Embedder
	vision          domain.VisionClient
	logger          zerolog.Logger
	topK            int
	defaultStrategy domain.Strategy

	current  atomic.Pointer[snapshot]
	reloadMu sync.Mutex
}

// NewRecommendationService creates a new recommendation service with dependencies.
// The service starts with an empty catalog; call Reload before serving.
func NewRecommendationService(
	catalogStore domain.CatalogStore,
	indexStore domain.IndexStore,
	embedder domain.Embedder,
	vision domain.VisionClient,
	logger zerolog.Logger,
	config RecommendationServiceConfig,
) *RecommendationService {
	topK := config.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}

	strategy := config.DefaultStrategy
	if !strategy.Valid() {
		strategy = domain.StrategyVector
	}

	s := &RecommendationService{
		catalogStore:    catalogStore,
		indexStore:      indexStore,
		embedder:        embedder,
		vision:          vision,
		logger:          logger,
		topK:            topK,
		defaultStrategy: strategy,
	}
	s.current.Store(&snapshot{catalog: domain.NewCatalog(nil)})

	return s
}

// Reload loads the catalog and vector index and publishes them as one snapshot.
// Concurrent reloads are serialized.
func (s *RecommendationService) Reload(ctx context.Context) error {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	products, err := s.catalogStore.Load(ctx)
	if err != nil {
		metrics.Reloads.WithLabelValues("error").Inc()
		return fmt.Errorf("loading catalog: %w", err)
	}
	catalog := domain.NewCatalog(products)

	var index domain.VectorIndex
	if s.indexStore != nil {
		index, err = s.indexStore.Load(ctx)
		if err != nil {
			metrics.Reloads.WithLabelValues("error").Inc()
			return fmt.Errorf("loading vector index: %w", err)
		}
	}

	indexSize := 0
	if index != nil {
		indexSize = index.Len()
		if indexSize != catalog.Len() {
			s.logger.Warn().
				Int("catalog_size", catalog.Len()).
				Int("index_size", indexSize).
				Msg("vector index and catalog sizes differ; out-of-range neighbors will be skipped")
		}
	} else if s.indexStore != nil {
		s.logger.Warn().Msg("no vector index loaded; vector strategy unavailable")
	}

	s.current.Store(&snapshot{catalog: catalog, index: index})

	metrics.Reloads.WithLabelValues("ok").Inc()
	metrics.CatalogSize.Set(float64(catalog.Len()))
	metrics.IndexSize.Set(float64(indexSize))

	s.logger.Info().
		Int("catalog_size", catalog.Len()).
		Int("index_size", indexSize).
		Msg("catalog and index loaded")

	return nil
}

// Stats returns the sizes of the loaded catalog and index
func (s *RecommendationService) Stats() (catalogSize, indexSize int) {
	snap := s.current.Load()
	if snap.index != nil {
		indexSize = snap.index.Len()
	}
	return snap.catalog.Len(), indexSize
}

// DefaultStrategy returns the strategy used when a request names none
func (s *RecommendationService) DefaultStrategy() domain.Strategy {
	return s.defaultStrategy
}

// Search aggregates recommendations for keywords using strategy.
// An empty strategy selects the configured default.
func (s *RecommendationService) Search(
	ctx context.Context,
	keywords []string,
	strategy domain.Strategy,
) (*domain.RecommendationResult, error) {
	if strategy == "" {
		strategy = s.defaultStrategy
	}
	if !strategy.Valid() {
		return nil, fmt.Errorf("%w: unknown strategy %q", domain.ErrInvalidRequest, strategy)
	}

	// Keywords are matched as given, so results equal Aggregate's
	snap := s.current.Load()
	matcher := s.matcherFor(snap, strategy)

	start := time.Now()
	result, err := Aggregate(ctx, keywords, matcher)
	metrics.RecommendationDuration.WithLabelValues(string(strategy)).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.RecommendationRequests.WithLabelValues(string(strategy), "error").Inc()
		return nil, err
	}

	metrics.RecommendationRequests.WithLabelValues(string(strategy), "ok").Inc()
	metrics.RecommendationResults.Observe(float64(len(result.Recommendations)))

	s.logger.Debug().
		Str("strategy", string(strategy)).
		Strs("keywords", keywords).
		Int("results", len(result.Recommendations)).
		Msg("recommendations aggregated")

	return result, nil
}

// Analyze asks the vision model for keywords and recommends products for them
// using the default strategy.
func (s *RecommendationService) Analyze(ctx context.Context, image []byte, mimeType string) (*domain.AnalyzeResponse, error) {
	text, err := s.describe(ctx, image, mimeType, AnalysisPrompt)
	if err != nil {
		return nil, err
	}

	analysis, err := ParseAnalysis(text)
	if err != nil {
		s.logger.Warn().Err(err).Str("raw_response", text).Msg("could not parse model output")
		return nil, err
	}

	// Model output may carry padded or blank keywords
	keywords := CleanKeywords(analysis.SearchKeywords)

	result, err := s.Search(ctx, keywords, s.defaultStrategy)
	if err != nil {
		return nil, err
	}

	return &domain.AnalyzeResponse{
		Analysis:        analysis.Reasoning,
		SearchKeywords:  keywords,
		Recommendations: result.Recommendations,
	}, nil
}

// RecommendSingle asks the vision model for one keyword and matches it lexically
func (s *RecommendationService) RecommendSingle(ctx context.Context, image []byte, mimeType string) (*domain.RecommendationResult, error) {
	text, err := s.describe(ctx, image, mimeType, SingleKeywordPrompt)
	if err != nil {
		return nil, err
	}

	keyword := NormalizeSingleKeyword(text)
	if keyword == "" {
		return nil, &ModelOutputError{Raw: text, Reason: "model returned no keyword"}
	}

	return s.Search(ctx, []string{keyword}, domain.StrategyLexical)
}

func (s *RecommendationService) describe(ctx context.Context, image []byte, mimeType, prompt string) (string, error) {
	if len(image) == 0 {
		return "", domain.ErrImageRequired
	}
	if s.vision == nil {
		return "", fmt.Errorf("%w: no vision client configured", domain.ErrVisionFailure)
	}

	text, err := s.vision.Analyze(ctx, image, mimeType, prompt)
	if err != nil {
		metrics.VisionRequests.WithLabelValues("error").Inc()
		return "", err
	}
	metrics.VisionRequests.WithLabelValues("ok").Inc()

	return text, nil
}

// matcherFor builds the strategy's matcher over a snapshot.
// Out-of-range index positions are logged here rather than in the matcher.
func (s *RecommendationService) matcherFor(snap *snapshot, strategy domain.Strategy) Matcher {
	if strategy == domain.StrategyLexical {
		return NewLexicalMatcher(snap.catalog)
	}

	return NewVectorMatcher(snap.catalog, snap.index, s.embedder, s.topK).
		OnSkip(func(keyword string, position int) {
			metrics.IndexPositionSkips.Inc()
			s.logger.Warn().
				Str("keyword", keyword).
				Int("position", position).
				Int("catalog_size", snap.catalog.Len()).
				Msg("skipping vector index position outside catalog")
		})
}
