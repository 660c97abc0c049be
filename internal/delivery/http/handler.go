package http

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/roomlens/backend/config"
	"github.com/roomlens/backend/internal/domain"
	"github.com/roomlens/backend/internal/usecase"
	"github.com/rs/zerolog"
)

const defaultMaxUploadBytes = 10 << 20

// RecommendationService is the use case the handlers drive
type RecommendationService interface {
	Search(ctx context.Context, keywords []string, strategy domain.Strategy) (*domain.RecommendationResult, error)
	Analyze(ctx context.Context, image []byte, mimeType string) (*domain.AnalyzeResponse, error)
	Reload(ctx context.Context) error
	Stats() (catalogSize, indexSize int)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	service        RecommendationService
	logger         zerolog.Logger
	maxUploadBytes int64
}

// NewHandler creates a new HTTP handler. A nil service makes the
// recommendation endpoints answer 503.
func NewHandler(service RecommendationService, logger zerolog.Logger, maxUploadBytes int64) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}
	return &Handler{
		service:        service,
		logger:         logger,
		maxUploadBytes: maxUploadBytes,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	catalogSize, indexSize := 0, 0
	if h.service != nil {
		catalogSize, indexSize = h.service.Stats()
	}

	c.JSON(http.StatusOK, gin.H{
		"status":       "healthy",
		"service":      "roomlens-backend",
		"version":      config.Version,
		"catalog_size": catalogSize,
		"index_size":   indexSize,
	})
}

// AnalyzeRoom accepts a multipart image upload and returns recommendations
func (h *Handler) AnalyzeRoom(c *gin.Context) {
	if !h.requireService(c) {
		return
	}

	// Limit upload size
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)

	// Get uploaded file
	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Uploaded file is too large"})
		case hasFormValue(c, "file"):
			c.JSON(http.StatusBadRequest, gin.H{"error": "No selected file"})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "No file part"})
		}
		return
	}
	if fileHeader.Filename == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No selected file"})
		return
	}

	// Read image bytes
	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read uploaded file"})
		return
	}
	defer f.Close()

	image, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read uploaded file"})
		return
	}

	// Fall back to sniffing when the part has no useful type
	mimeType := fileHeader.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(image)
	}

	response, err := h.service.Analyze(c.Request.Context(), image, mimeType)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// SearchRecommendations matches a keyword list against the catalog
func (h *Handler) SearchRecommendations(c *gin.Context) {
	if !h.requireService(c) {
		return
	}

	// Parse request body
	var req domain.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	result, err := h.service.Search(c.Request.Context(), req.Keywords, req.Strategy)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ReloadCatalog reloads the catalog and vector index from disk
func (h *Handler) ReloadCatalog(c *gin.Context) {
	if !h.requireService(c) {
		return
	}

	if err := h.service.Reload(c.Request.Context()); err != nil {
		h.logger.Error().Err(err).Msg("reload failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	catalogSize, indexSize := h.service.Stats()
	c.JSON(http.StatusOK, gin.H{
		"status":       "reloaded",
		"catalog_size": catalogSize,
		"index_size":   indexSize,
	})
}

func (h *Handler) requireService(c *gin.Context) bool {
	if h.service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Recommendation service not configured",
		})
		return false
	}
	return true
}

// writeError maps domain errors to HTTP status codes
func (h *Handler) writeError(c *gin.Context, err error) {
	// Unparseable model output carries the raw text
	var outputErr *usecase.ModelOutputError
	if errors.As(err, &outputErr) {
		c.JSON(http.StatusBadGateway, gin.H{
			"error":        outputErr.Error(),
			"raw_response": outputErr.Raw,
		})
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidRequest), errors.Is(err, domain.ErrImageRequired):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrRateLimited):
		status = http.StatusTooManyRequests
	case errors.Is(err, domain.ErrVisionFailure), errors.Is(err, domain.ErrEmbeddingFailure):
		status = http.StatusBadGateway
	case errors.Is(err, domain.ErrIndexUnavailable):
		status = http.StatusServiceUnavailable
	}

	// Log server-side failures
	if status >= http.StatusInternalServerError {
		h.logger.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
	}

	c.JSON(status, gin.H{"error": err.Error()})
}

func hasFormValue(c *gin.Context, key string) bool {
	_, ok := c.GetPostForm(key)
	return ok
}
