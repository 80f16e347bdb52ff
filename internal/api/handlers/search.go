// internal/api/handlers/search.go
package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"simplesearch/internal/config"
	"simplesearch/internal/database"
	"simplesearch/internal/engine"
	"simplesearch/internal/metrics"
	"simplesearch/internal/models"
	"simplesearch/internal/repository"
	"simplesearch/internal/search"
	"simplesearch/pkg/utils"
)

const maxQueryLength = 2000

type SearchHandler struct {
	searchService *search.Service
	repoManager   *repository.RepositoryManager
	cache         *database.Cache
	searchCfg     config.SearchConfig
	logger        *logrus.Logger
}

// NewSearchHandler wires the search endpoints. repoManager and cache may be
// nil; analytics and result caching are skipped then.
func NewSearchHandler(
	searchService *search.Service,
	repoManager *repository.RepositoryManager,
	cache *database.Cache,
	searchCfg config.SearchConfig,
	logger *logrus.Logger,
) *SearchHandler {
	return &SearchHandler{
		searchService: searchService,
		repoManager:   repoManager,
		cache:         cache,
		searchCfg:     searchCfg,
		logger:        logger,
	}
}

// HandleHome serves the landing payload: instance configuration, the known
// ranking profiles and the best-effort corpus size.
func (h *SearchHandler) HandleHome(c *gin.Context) {
	c.JSON(http.StatusOK, models.HomeResponse{
		Service:               "simplesearch",
		DefaultLimit:          h.searchCfg.DefaultLimit,
		MaxLimit:              h.searchCfg.MaxLimit,
		TotalDocuments:        h.searchService.TotalDocuments(c.Request.Context()),
		RankingProfiles:       models.RankingProfiles,
		DefaultRankingProfile: h.searchCfg.DefaultRankingProfile,
	})
}

// HandleSearch processes search requests
func (h *SearchHandler) HandleSearch(c *gin.Context) {
	startTime := time.Now()

	var req models.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Error("Invalid search request")
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	// Validate and sanitize query
	query := strings.TrimSpace(req.Query)
	if query == "" {
		utils.ErrorResponse(c, http.StatusBadRequest, "Query must not be empty.", nil)
		return
	}

	if len(query) > maxQueryLength {
		utils.ErrorResponse(c, http.StatusBadRequest, fmt.Sprintf("Query too long (max %d characters)", maxQueryLength), nil)
		return
	}

	// Capture request metadata here; the analytics goroutines must not
	// touch the gin context after the handler returns.
	userSession := h.getUserSession(c)
	userAgent := c.GetHeader("User-Agent")
	clientIP := c.ClientIP()

	h.logger.WithFields(logrus.Fields{
		"query":        query,
		"user_session": userSession,
		"ip_address":   clientIP,
	}).Info("Processing search request")

	ctx := c.Request.Context()
	useCache := h.cache != nil && h.searchCfg.CacheTTLSeconds > 0

	// The cache key covers everything the result depends on, so normalize
	// the limit and profile the same way the service will.
	effectiveLimit := h.searchService.NormalizeLimit(req.Limit)
	profile := h.searchService.ResolveRankingProfile(req.Ranking)
	cacheKey := h.generateCacheKey(query, effectiveLimit, profile)

	var result *models.SearchResult

	if useCache {
		cached := &models.SearchResult{}
		if err := h.cache.GetCachedSearchResults(ctx, cacheKey, cached); err == nil {
			metrics.SearchCacheTotal.WithLabelValues("hit").Inc()
			h.logger.Debug("Search results served from cache")
			result = cached
		} else {
			metrics.SearchCacheTotal.WithLabelValues("miss").Inc()
		}
	}

	if result == nil {
		var err error
		result, err = h.searchService.Search(ctx, query, req.Limit, req.Ranking)
		if err != nil {
			h.logger.WithError(err).Error("Search failed")
			if h.repoManager != nil {
				go h.trackSearchQuery(userSession, query, 0, 0, profile, time.Since(startTime), userAgent, clientIP)
			}
			if errors.Is(err, engine.ErrUnavailable) {
				utils.ErrorResponse(c, http.StatusBadGateway, "Search engine unavailable", err)
				return
			}
			utils.ErrorResponse(c, http.StatusInternalServerError, "Search failed", err)
			return
		}

		if useCache {
			ttl := time.Duration(h.searchCfg.CacheTTLSeconds) * time.Second
			if err := h.cache.CacheSearchResults(ctx, cacheKey, result, ttl); err != nil {
				h.logger.WithError(err).Warn("Failed to cache search results")
			}
		}
	}

	responseTime := time.Since(startTime)

	// Track analytics
	if h.repoManager != nil {
		go h.trackSearchQuery(userSession, query, result.Returned, result.TotalAvailable, result.RankingProfile, responseTime, userAgent, clientIP)
		go h.updatePopularQueries(query, result.Returned, responseTime)
	}

	h.logger.WithFields(logrus.Fields{
		"results_count": result.Returned,
		"total":         result.TotalAvailable,
		"response_time": responseTime.Milliseconds(),
	}).Info("Search completed successfully")

	c.JSON(http.StatusOK, result)
}

// HandleSuggestions returns popular queries matching a prefix of input.
func (h *SearchHandler) HandleSuggestions(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		utils.ErrorResponse(c, http.StatusBadRequest, "Query parameter 'q' is required", nil)
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "5"))
	if limit < 1 {
		limit = 5
	}
	if limit > 10 {
		limit = 10
	}

	if h.repoManager == nil {
		utils.SuccessResponse(c, http.StatusOK, "Suggestions retrieved", []models.PopularQuery{})
		return
	}

	suggestions, err := h.topQueries(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to get search suggestions")
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to get suggestions", err)
		return
	}

	// Filter suggestions that contain the query
	filtered := make([]models.PopularQuery, 0)
	queryLower := strings.ToLower(query)

	for _, suggestion := range suggestions {
		if strings.Contains(strings.ToLower(suggestion.QueryText), queryLower) {
			filtered = append(filtered, suggestion)
		}
	}
	if len(filtered) > limit {
		filtered = filtered[:limit]
	}

	utils.SuccessResponse(c, http.StatusOK, "Suggestions retrieved", filtered)
}

// Helper methods

// topQueries fetches the popular-query pool, serving it from the cache when
// one is configured.
func (h *SearchHandler) topQueries(ctx context.Context) ([]models.PopularQuery, error) {
	if h.cache != nil {
		if cached, err := h.cache.GetCachedPopularQueries(ctx); err == nil {
			return cached, nil
		}
	}

	queries, err := h.repoManager.PopularQuery.GetTop(10)
	if err != nil {
		return nil, err
	}

	if h.cache != nil {
		if err := h.cache.CachePopularQueries(ctx, queries, time.Minute); err != nil {
			h.logger.WithError(err).Warn("Failed to cache popular queries")
		}
	}
	return queries, nil
}

func (h *SearchHandler) getUserSession(c *gin.Context) string {
	// Try to get session from header first
	if session := c.GetHeader("X-Session-ID"); session != "" {
		return session
	}

	// Generate session based on IP + User-Agent (basic fingerprinting)
	userAgent := c.GetHeader("User-Agent")
	clientIP := c.ClientIP()

	return utils.GenerateSessionID(clientIP + userAgent)
}

func (h *SearchHandler) generateCacheKey(query string, limit int, profile string) string {
	return utils.MD5Hash(fmt.Sprintf("%s|%d|%s", strings.ToLower(query), limit, profile))
}

func (h *SearchHandler) trackSearchQuery(userSession, query string, resultsCount int, totalAvailable int64, profile string, responseTime time.Duration, userAgent, ipAddress string) {
	searchQuery := &models.SearchQuery{
		QueryText:       query,
		UserSession:     userSession,
		ResultsCount:    resultsCount,
		TotalAvailable:  totalAvailable,
		RankingProfile:  profile,
		SearchTimestamp: time.Now(),
		ResponseTimeMs:  int(responseTime.Milliseconds()),
		UserAgent:       userAgent,
		IPAddress:       ipAddress,
	}

	if err := h.repoManager.SearchQuery.Create(searchQuery); err != nil {
		h.logger.WithError(err).Error("Failed to track search query")
	}
}

func (h *SearchHandler) updatePopularQueries(query string, resultsCount int, responseTime time.Duration) {
	if err := h.repoManager.PopularQuery.IncrementCount(query); err != nil {
		h.logger.WithError(err).Error("Failed to update popular queries")
		return
	}

	if err := h.repoManager.PopularQuery.UpdateStats(query, float64(resultsCount), int(responseTime.Milliseconds())); err != nil {
		h.logger.WithError(err).Error("Failed to update query stats")
	}
}
