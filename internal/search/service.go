package search

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"simplesearch/internal/config"
	"simplesearch/internal/engine"
	"simplesearch/internal/models"
)

// MinLimit is the hard floor for the per-query hit cap.
const MinLimit = 1

const (
	searchYQL = "select * from sources * where userQuery()"
	countYQL  = "select * from sources * where true"
)

// Service executes searches against the engine and owns the process-wide
// document-count cache.
type Service struct {
	provider *engine.Provider
	cfg      config.SearchConfig
	logger   *logrus.Logger

	countOnce sync.Once
	totalDocs *int64
}

func NewService(provider *engine.Provider, cfg config.SearchConfig, logger *logrus.Logger) *Service {
	return &Service{
		provider: provider,
		cfg:      cfg,
		logger:   logger,
	}
}

// Search runs the full query pipeline: normalize the inputs, execute one
// engine call, normalize the response. The engine call is never retried.
func (s *Service) Search(ctx context.Context, query string, limit interface{}, ranking string) (*models.SearchResult, error) {
	effectiveLimit := s.NormalizeLimit(limit)
	profile := s.ResolveRankingProfile(ranking)

	raw, err := s.provider.Get().Query(ctx, engine.QueryRequest{
		YQL:     searchYQL,
		Query:   query,
		Hits:    effectiveLimit,
		Ranking: profile,
		Timing:  true,
	})
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"query":   query,
			"ranking": profile,
		}).Error("Engine query failed")
		return nil, fmt.Errorf("search failed: %w", err)
	}

	result := normalizeResponse(raw)
	result.Query = query
	result.Returned = len(result.Hits)
	result.Limit = effectiveLimit
	result.RankingProfile = profile
	return result, nil
}

// NormalizeLimit coerces a caller-supplied limit into [MinLimit, MaxLimit].
// Missing and unparseable values fall back to the configured default before
// clamping. JSON numbers arrive as float64 and are truncated toward zero.
func (s *Service) NormalizeLimit(candidate interface{}) int {
	limit := s.cfg.DefaultLimit
	switch v := candidate.(type) {
	case nil:
	case int:
		limit = v
	case int64:
		limit = int(v)
	case float64:
		limit = int(v)
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			limit = n
		}
	}
	if limit < MinLimit {
		limit = MinLimit
	}
	if limit > s.cfg.MaxLimit {
		limit = s.cfg.MaxLimit
	}
	return limit
}

// ResolveRankingProfile returns the caller's profile verbatim when non-empty,
// otherwise the configured default. Unknown profiles pass through and fail
// inside the engine rather than here.
func (s *Service) ResolveRankingProfile(candidate string) string {
	if candidate != "" {
		return candidate
	}
	return s.cfg.DefaultRankingProfile
}

// TotalDocuments reports the number of documents the engine has indexed,
// for display only. The count is fetched at most once per process with a
// zero-hit query; a failed fetch is cached as nil and never retried.
func (s *Service) TotalDocuments(ctx context.Context) *int64 {
	s.countOnce.Do(func() {
		raw, err := s.provider.Get().Query(ctx, engine.QueryRequest{
			YQL:     countYQL,
			Hits:    0,
			Ranking: s.cfg.DefaultRankingProfile,
			Timing:  true,
		})
		if err != nil {
			s.logger.WithError(err).Warn("Failed to fetch total document count")
			return
		}
		if total, ok := extractTotalHits(raw); ok {
			s.totalDocs = &total
		} else {
			s.logger.Warn("Engine response carried no total document count")
		}
	})
	return s.totalDocs
}
