package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/roomlens/backend/config"
	"github.com/roomlens/backend/internal/domain"
	"github.com/roomlens/backend/internal/usecase"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMain sets up test environment before running tests
func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// MockRecommendationService records calls and returns canned results
type MockRecommendationService struct {
	searchResult  *domain.RecommendationResult
	analyzeResult *domain.AnalyzeResponse
	err           error
	reloadErr     error

	gotKeywords []string
	gotStrategy domain.Strategy
	gotImage    []byte
	gotMime     string
	reloads     int
}

func (m *MockRecommendationService) Search(ctx context.Context, keywords []string, strategy domain.Strategy) (*domain.RecommendationResult, error) {
	m.gotKeywords = keywords
	m.gotStrategy = strategy
	if m.err != nil {
		return nil, m.err
	}
	return m.searchResult, nil
}

func (m *MockRecommendationService) Analyze(ctx context.Context, image []byte, mimeType string) (*domain.AnalyzeResponse, error) {
	m.gotImage = image
	m.gotMime = mimeType
	if m.err != nil {
		return nil, m.err
	}
	return m.analyzeResult, nil
}

func (m *MockRecommendationService) Reload(ctx context.Context) error {
	m.reloads++
	return m.reloadErr
}

func (m *MockRecommendationService) Stats() (int, int) {
	return 12, 12
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:           "8080",
			Environment:    "test",
			AllowedOrigins: []string{"http://localhost:*"},
		},
		Cache: config.CacheConfig{Type: "memory"},
	}
}

// setupTestRouter creates a test router around service; nil means unconfigured
func setupTestRouter(service RecommendationService) *gin.Engine {
	handler := NewHandler(service, zerolog.Nop(), 1<<20)
	return SetupRouter(testConfig(), handler, zerolog.Nop())
}

func sampleProduct() domain.Product {
	return domain.Product{ID: 4, Name: "Velvet Accent Chair", Category: "Chairs", Style: "Mid-Century", Description: "Plush velvet accent chair", Price: 399, ImageURL: "https://img/4.jpg"}
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), "body: %s", w.Body.String())
	return body
}

func multipartImage(t *testing.T, field, filename, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	return &buf, writer.FormDataContentType()
}

func TestHealthCheckEndpoint(t *testing.T) {
	t.Run("returns healthy status with sizes", func(t *testing.T) {
		router := setupTestRouter(&MockRecommendationService{})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		require.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "healthy", body["status"])
		assert.Equal(t, "roomlens-backend", body["service"])
		assert.Equal(t, config.Version, body["version"])
		assert.Equal(t, float64(12), body["catalog_size"])
		assert.Equal(t, float64(12), body["index_size"])
	})

	t.Run("healthy without service", func(t *testing.T) {
		router := setupTestRouter(nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, float64(0), decodeBody(t, w)["catalog_size"])
	})

	t.Run("only accepts GET", func(t *testing.T) {
		router := setupTestRouter(nil)

		for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(method, "/health", nil))
			if w.Code != http.StatusNotFound {
				t.Errorf("Method %s: Status = %d, want %d", method, w.Code, http.StatusNotFound)
			}
		}
	})
}

func TestMetricsEndpoint(t *testing.T) {
	router := setupTestRouter(nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestSearchEndpoint(t *testing.T) {
	t.Run("returns recommendations", func(t *testing.T) {
		service := &MockRecommendationService{
			searchResult: &domain.RecommendationResult{
				Keywords:        []string{"chair", "lamp"},
				Recommendations: []domain.Product{sampleProduct()},
			},
		}
		router := setupTestRouter(service)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/recommendations/search",
			strings.NewReader(`{"keywords": ["chair", "lamp"], "strategy": "lexical"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, []string{"chair", "lamp"}, service.gotKeywords)
		assert.Equal(t, domain.StrategyLexical, service.gotStrategy)

		var result domain.RecommendationResult
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		assert.Equal(t, []string{"chair", "lamp"}, result.Keywords)
		require.Len(t, result.Recommendations, 1)
		assert.Equal(t, sampleProduct(), result.Recommendations[0])
		assert.Contains(t, w.Body.String(), `"search_keywords"`)
		assert.Contains(t, w.Body.String(), `"image_url"`)
	})

	t.Run("missing keywords", func(t *testing.T) {
		router := setupTestRouter(&MockRecommendationService{})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/recommendations/search", strings.NewReader(`{"strategy": "vector"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, decodeBody(t, w)["error"], "Invalid request body")
	})

	t.Run("malformed JSON", func(t *testing.T) {
		router := setupTestRouter(&MockRecommendationService{})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/recommendations/search", strings.NewReader(`{`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("not configured", func(t *testing.T) {
		router := setupTestRouter(nil)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/recommendations/search", strings.NewReader(`{"keywords": ["rug"]}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, decodeBody(t, w)["error"], "not configured")
	})
}

func TestSearchEndpoint_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"invalid strategy", errors.Join(domain.ErrInvalidRequest, errors.New("unknown strategy")), http.StatusBadRequest},
		{"embedding failure", domain.ErrEmbeddingFailure, http.StatusBadGateway},
		{"rate limited", domain.ErrRateLimited, http.StatusTooManyRequests},
		{"index unavailable", domain.ErrIndexUnavailable, http.StatusServiceUnavailable},
		{"unexpected", errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupTestRouter(&MockRecommendationService{err: tt.err})

			req := httptest.NewRequest(http.MethodPost, "/api/v1/recommendations/search", strings.NewReader(`{"keywords": ["rug"]}`))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.NotEmpty(t, decodeBody(t, w)["error"])
		})
	}
}

func TestAnalyzeEndpoint(t *testing.T) {
	pngHeader := []byte("\x89PNG\r\n\x1a\n0000")

	t.Run("returns analysis and recommendations", func(t *testing.T) {
		service := &MockRecommendationService{
			analyzeResult: &domain.AnalyzeResponse{
				Analysis:        "The room needs seating.",
				SearchKeywords:  []string{"accent chair"},
				Recommendations: []domain.Product{sampleProduct()},
			},
		}
		router := setupTestRouter(service)

		body, contentType := multipartImage(t, "file", "room.png", "", pngHeader)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/recommendations/analyze", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, pngHeader, service.gotImage)
		assert.Equal(t, "image/png", service.gotMime)

		resp := decodeBody(t, w)
		assert.Equal(t, "The room needs seating.", resp["analysis"])
		assert.Equal(t, []interface{}{"accent chair"}, resp["search_keywords"])
		assert.Len(t, resp["recommendations"], 1)
	})

	t.Run("uses part content type when given", func(t *testing.T) {
		service := &MockRecommendationService{analyzeResult: &domain.AnalyzeResponse{}}
		router := setupTestRouter(service)

		body, contentType := multipartImage(t, "file", "room.jpg", "image/jpeg", []byte("jpeg-bytes"))
		req := httptest.NewRequest(http.MethodPost, "/api/v1/recommendations/analyze", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "image/jpeg", service.gotMime)
	})

	t.Run("no file part", func(t *testing.T) {
		router := setupTestRouter(&MockRecommendationService{})

		body, contentType := multipartImage(t, "image", "room.png", "", pngHeader)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/recommendations/analyze", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "No file part", decodeBody(t, w)["error"])
	})

	t.Run("no selected file", func(t *testing.T) {
		router := setupTestRouter(&MockRecommendationService{})

		body, contentType := multipartImage(t, "file", "", "", nil)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/recommendations/analyze", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "No selected file", decodeBody(t, w)["error"])
	})

	t.Run("upload larger than limit", func(t *testing.T) {
		service := &MockRecommendationService{analyzeResult: &domain.AnalyzeResponse{}}
		router := setupTestRouter(service)

		// setupTestRouter caps uploads at 1 MiB
		body, contentType := multipartImage(t, "file", "big.png", "", bytes.Repeat([]byte("a"), 2<<20))
		req := httptest.NewRequest(http.MethodPost, "/api/v1/recommendations/analyze", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		assert.Equal(t, "Uploaded file is too large", decodeBody(t, w)["error"])
		assert.Nil(t, service.gotImage)
	})

	t.Run("invalid model output includes raw response", func(t *testing.T) {
		service := &MockRecommendationService{
			err: &usecase.ModelOutputError{Raw: "I suggest a rug."},
		}
		router := setupTestRouter(service)

		body, contentType := multipartImage(t, "file", "room.png", "", pngHeader)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/recommendations/analyze", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadGateway, w.Code)
		resp := decodeBody(t, w)
		assert.Equal(t, "model response was not valid JSON", resp["error"])
		assert.Equal(t, "I suggest a rug.", resp["raw_response"])
	})

	t.Run("vision failure", func(t *testing.T) {
		router := setupTestRouter(&MockRecommendationService{err: domain.ErrVisionFailure})

		body, contentType := multipartImage(t, "file", "room.png", "", pngHeader)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/recommendations/analyze", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadGateway, w.Code)
	})
}

func TestReloadEndpoint(t *testing.T) {
	t.Run("reloads and reports sizes", func(t *testing.T) {
		service := &MockRecommendationService{}
		router := setupTestRouter(service)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/admin/reload", nil))

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 1, service.reloads)
		body := decodeBody(t, w)
		assert.Equal(t, "reloaded", body["status"])
		assert.Equal(t, float64(12), body["catalog_size"])
	})

	t.Run("reload failure", func(t *testing.T) {
		router := setupTestRouter(&MockRecommendationService{reloadErr: errors.New("loading catalog: bad json")})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/admin/reload", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, decodeBody(t, w)["error"], "bad json")
	})
}

func TestCORSIntegration(t *testing.T) {
	router := setupTestRouter(&MockRecommendationService{})

	t.Run("preflight on API route", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/v1/recommendations/search", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		req.Header.Set("Access-Control-Request-Method", "POST")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("request id echoed", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
	})
}

func TestAPIVersioning(t *testing.T) {
	router := setupTestRouter(&MockRecommendationService{})

	for _, path := range []string{
		"/recommendations/search",
		"/api/recommendations/search",
		"/api/v2/recommendations/search",
	} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, path, nil))
		if w.Code != http.StatusNotFound {
			t.Errorf("Path %s: Status = %d, want %d", path, w.Code, http.StatusNotFound)
		}
	}
}
