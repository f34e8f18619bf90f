package http

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/pricelens/backend/internal/domain"
	"github.com/pricelens/backend/internal/usecase"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	searchService *usecase.SearchService
	extractor     *usecase.ProductExtractor
	settings      domain.SettingsRepository
	cache         domain.CacheRepository
}

// NewHandler creates a new HTTP handler
func NewHandler(
	searchService *usecase.SearchService,
	extractor *usecase.ProductExtractor,
	settings domain.SettingsRepository,
	cache domain.CacheRepository,
) *Handler {
	return &Handler{
		searchService: searchService,
		extractor:     extractor,
		settings:      settings,
		cache:         cache,
	}
}

// respondData writes the uniform success envelope.
func respondData(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

// respondError writes the uniform failure envelope.
func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error":   message,
	})
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	respondData(c, http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "pricelens-backend",
		"version": "1.0.0",
	})
}

// extractRequest is the payload for the extract endpoint. HTML is required;
// the URL only feeds catalog-code detection.
type extractRequest struct {
	HTML string `json:"html" binding:"required"`
	URL  string `json:"url"`
}

// ExtractProduct parses retail page HTML into structured product data
func (h *Handler) ExtractProduct(c *gin.Context) {
	var req extractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "html is required")
		return
	}

	product, err := h.extractor.Extract(req.HTML, req.URL)
	if err != nil {
		respondError(c, http.StatusBadRequest, "unable to parse document")
		return
	}

	respondData(c, http.StatusOK, product)
}

// searchRequest is the payload for a product search. Platforms override the
// host's preferred platforms when present.
type searchRequest struct {
	Product   *domain.ProductData `json:"product" binding:"required"`
	Platforms []string            `json:"platforms"`
}

// SearchProduct runs the full matching flow across marketplaces
func (h *Handler) SearchProduct(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "product is required")
		return
	}

	// Rate-limit and provider failures never surface here; they stay scoped
	// inside their platform slot.
	response, err := h.searchService.Search(c.Request.Context(), req.Product, req.Platforms)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRequest) {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		respondError(c, http.StatusBadGateway, "search temporarily unavailable")
		return
	}

	respondData(c, http.StatusOK, response)
}

// GetSettings returns the current host settings
func (h *Handler) GetSettings(c *gin.Context) {
	settings, err := h.settings.Get(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "unable to load settings")
		return
	}
	respondData(c, http.StatusOK, settings)
}

// UpdateSettings replaces the host settings
func (h *Handler) UpdateSettings(c *gin.Context) {
	var settings domain.Settings
	if err := c.ShouldBindJSON(&settings); err != nil {
		respondError(c, http.StatusBadRequest, "invalid settings payload")
		return
	}

	updated, err := h.settings.Update(c.Request.Context(), settings)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "unable to save settings")
		return
	}
	respondData(c, http.StatusOK, updated)
}

// ClearCache drops all cached search results
func (h *Handler) ClearCache(c *gin.Context) {
	if h.cache == nil {
		respondData(c, http.StatusOK, gin.H{"cleared": false})
		return
	}
	if err := h.cache.Clear(c.Request.Context()); err != nil {
		respondError(c, http.StatusInternalServerError, "unable to clear cache")
		return
	}
	respondData(c, http.StatusOK, gin.H{"cleared": true})
}

// imageSearchRequest carries the product image for a reverse lookup.
type imageSearchRequest struct {
	ImageURL string `json:"imageUrl"`
}

// ReverseImageSearch builds a lens lookup URL for the product image
func (h *Handler) ReverseImageSearch(c *gin.Context) {
	var req imageSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ImageURL == "" {
		respondError(c, http.StatusBadRequest, "imageUrl is required")
		return
	}

	parsed, err := url.Parse(req.ImageURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		respondError(c, http.StatusBadRequest, "imageUrl must be absolute")
		return
	}

	lookupURL := "https://lens.google.com/uploadbyurl?url=" + url.QueryEscape(req.ImageURL)
	respondData(c, http.StatusOK, gin.H{"searchUrl": lookupURL})
}
