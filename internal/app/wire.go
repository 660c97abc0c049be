// Package app wires configuration into the recommendation service.
package app

import (
	"context"
	"fmt"
	"io"

	"github.com/roomlens/backend/config"
	"github.com/roomlens/backend/internal/domain"
	"github.com/roomlens/backend/internal/infrastructure/cache"
	"github.com/roomlens/backend/internal/infrastructure/catalog"
	"github.com/roomlens/backend/internal/infrastructure/openai"
	"github.com/roomlens/backend/internal/infrastructure/vectorindex"
	"github.com/roomlens/backend/internal/metrics"
	"github.com/roomlens/backend/internal/usecase"
	"github.com/rs/zerolog"
)

// Components are the long-lived collaborators built from configuration
type Components struct {
	Service      *usecase.RecommendationService
	OpenAI       *openai.Client
	CatalogStore *catalog.JSONStore
	IndexStore   *vectorindex.FileStore
	Cache        domain.CacheRepository

	closers []io.Closer
}

// Close releases cache connections and background goroutines
func (c *Components) Close() {
	for _, closer := range c.closers {
		_ = closer.Close()
	}
}

// NewOpenAIClient builds the hosted-model client from configuration
func NewOpenAIClient(cfg *config.Config, logger zerolog.Logger) (*openai.Client, error) {
	return openai.NewClient(openai.Config{
		APIKey:            cfg.OpenAI.APIKey,
		BaseURL:           cfg.OpenAI.BaseURL,
		VisionModel:       cfg.OpenAI.VisionModel,
		EmbeddingModel:    cfg.OpenAI.EmbeddingModel,
		RequestsPerMinute: cfg.OpenAI.RequestsPerMinute,
		MaxRetries:        cfg.OpenAI.MaxRetries,
		Timeout:           cfg.OpenAI.Timeout,
	}, logger)
}

// NewCache builds the configured cache backend
func NewCache(ctx context.Context, cfg *config.Config) (domain.CacheRepository, io.Closer, error) {
	switch cfg.Cache.Type {
	case "redis":
		redisCache, err := cache.NewRedisCache(ctx, cfg.Cache.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return redisCache, redisCache, nil
	case "memory", "":
		memoryCache := cache.NewMemoryCache()
		return memoryCache, memoryCache, nil
	default:
		return nil, nil, fmt.Errorf("unknown cache type %q", cfg.Cache.Type)
	}
}

// Build constructs all components and performs the initial catalog and index load
func Build(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*Components, error) {
	client, err := NewOpenAIClient(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("creating OpenAI client: %w", err)
	}

	repo, closer, err := NewCache(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating cache: %w", err)
	}

	embedder := usecase.NewCachingEmbedder(client, repo, cfg.Cache.TTL, logger).
		WithCounters(metrics.EmbeddingCacheHits.Inc, metrics.EmbeddingCacheMisses.Inc)

	catalogStore := catalog.NewJSONStore(cfg.Catalog.Path)
	indexStore := vectorindex.NewFileStore(cfg.Index.Path)

	service := usecase.NewRecommendationService(
		catalogStore,
		indexStore,
		embedder,
		client,
		logger,
		usecase.RecommendationServiceConfig{
			TopK:            cfg.Matching.TopK,
			DefaultStrategy: domain.Strategy(cfg.Matching.DefaultStrategy),
		},
	)

	components := &Components{
		Service:      service,
		OpenAI:       client,
		CatalogStore: catalogStore,
		IndexStore:   indexStore,
		Cache:        repo,
		closers:      []io.Closer{closer},
	}

	if err := service.Reload(ctx); err != nil {
		components.Close()
		return nil, err
	}

	return components, nil
}
