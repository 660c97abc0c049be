// Package openai adapts the OpenAI API to the embedding provider and vision
// model interfaces. Requests are rate limited and retried on transient failures.
package openai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/roomlens/backend/internal/domain"
	"github.com/rs/zerolog"
	goopenai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
)

const (
	// DefaultVisionModel is used when no vision model is configured
	DefaultVisionModel = goopenai.GPT4oMini
	// DefaultEmbeddingModel is used when no embedding model is configured
	DefaultEmbeddingModel = goopenai.SmallEmbedding3
)

// Config holds OpenAI client configuration
type Config struct {
	APIKey            string
	BaseURL           string
	VisionModel       string
	EmbeddingModel    string
	RequestsPerMinute int
	MaxRetries        int
	RetryDelay        time.Duration
	Timeout           time.Duration
}

// Client implements domain.Embedder and domain.VisionClient
type Client struct {
	api            *goopenai.Client
	visionModel    string
	embeddingModel goopenai.EmbeddingModel
	rateLimiter    *rate.Limiter
	maxRetries     int
	retryDelay     time.Duration
	logger         zerolog.Logger
}

// NewClient creates a new OpenAI client
func NewClient(cfg Config, logger zerolog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	apiConfig := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiConfig.BaseURL = cfg.BaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	apiConfig.HTTPClient = &http.Client{Timeout: timeout}

	visionModel := cfg.VisionModel
	if visionModel == "" {
		visionModel = DefaultVisionModel
	}
	embeddingModel := goopenai.EmbeddingModel(cfg.EmbeddingModel)
	if embeddingModel == "" {
		embeddingModel = DefaultEmbeddingModel
	}

	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = 60
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	retryDelay := cfg.RetryDelay
	if retryDelay <= 0 {
		retryDelay = 500 * time.Millisecond
	}

	return &Client{
		api:            goopenai.NewClientWithConfig(apiConfig),
		visionModel:    visionModel,
		embeddingModel: embeddingModel,
		rateLimiter:    rate.NewLimiter(rate.Limit(float64(rpm)/60.0), rpm),
		maxRetries:     maxRetries,
		retryDelay:     retryDelay,
		logger:         logger.With().Str("component", "openai").Logger(),
	}, nil
}

// Embed returns the embedding for a single text
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch returns embeddings for texts in input order
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	var resp goopenai.EmbeddingResponse
	err := c.withRetry(ctx, "embeddings", func() error {
		var err error
		resp, err = c.api.CreateEmbeddings(ctx, goopenai.EmbeddingRequest{
			Input: texts,
			Model: c.embeddingModel,
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEmbeddingFailure, err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d inputs", domain.ErrEmbeddingFailure, len(resp.Data), len(texts))
	}

	data := resp.Data
	sort.SliceStable(data, func(i, j int) bool { return data[i].Index < data[j].Index })

	vectors := make([][]float32, len(data))
	for i, d := range data {
		vectors[i] = d.Embedding
	}
	return vectors, nil
}

// Analyze sends the image and prompt to the vision model and returns its text answer
func (c *Client) Analyze(ctx context.Context, image []byte, mimeType, prompt string) (string, error) {
	if mimeType == "" {
		mimeType = http.DetectContentType(image)
	}
	dataURL := "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(image)

	req := goopenai.ChatCompletionRequest{
		Model: c.visionModel,
		Messages: []goopenai.ChatCompletionMessage{
			{
				Role: goopenai.ChatMessageRoleUser,
				MultiContent: []goopenai.ChatMessagePart{
					{Type: goopenai.ChatMessagePartTypeText, Text: prompt},
					{
						Type: goopenai.ChatMessagePartTypeImageURL,
						ImageURL: &goopenai.ChatMessageImageURL{
							URL:    dataURL,
							Detail: goopenai.ImageURLDetailAuto,
						},
					},
				},
			},
		},
	}

	var resp goopenai.ChatCompletionResponse
	err := c.withRetry(ctx, "chat", func() error {
		var err error
		resp, err = c.api.CreateChatCompletion(ctx, req)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrVisionFailure, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: response contained no choices", domain.ErrVisionFailure)
	}

	return resp.Choices[0].Message.Content, nil
}

// withRetry runs call up to maxRetries times, waiting on the rate limiter
// before each attempt. Only transient failures are retried.
func (c *Client) withRetry(ctx context.Context, op string, call func() error) error {
	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter error: %w", err)
		}

		err := call()
		if err == nil {
			return nil
		}
		lastErr = err

		if !isRetryable(err) || attempt == c.maxRetries {
			break
		}

		delay := exponentialBackoff(c.retryDelay, attempt)
		c.logger.Warn().Err(err).Str("op", op).Int("attempt", attempt).Dur("backoff", delay).Msg("request failed, retrying")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	return lastErr
}

// exponentialBackoff doubles base for each attempt after the first
func exponentialBackoff(base time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return base * time.Duration(1<<uint(attempt-1))
}

// isRetryable reports whether err is worth another attempt:
// rate limiting, server errors and transport failures.
func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests || apiErr.HTTPStatusCode >= 500
	}

	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == http.StatusTooManyRequests || reqErr.HTTPStatusCode >= 500
	}

	return true
}
