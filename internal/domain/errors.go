package domain

import "errors"

var (
	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrImageRequired is returned when an analysis request carries no image
	ErrImageRequired = errors.New("image file is required")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrRateLimited is returned when rate limit is exceeded
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrEmbeddingFailure is returned when the embedding provider fails
	ErrEmbeddingFailure = errors.New("embedding request failed")

	// ErrVisionFailure is returned when the vision model request fails
	ErrVisionFailure = errors.New("vision model request failed")

	// ErrInvalidModelOutput is returned when the vision model response cannot be parsed
	ErrInvalidModelOutput = errors.New("model response was not valid JSON")

	// ErrIndexUnavailable is returned when the vector strategy is used without a loaded index
	ErrIndexUnavailable = errors.New("vector index not loaded")

	// ErrDimensionMismatch is returned when a query vector does not match the index dimension
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)
