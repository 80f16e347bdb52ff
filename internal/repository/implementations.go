package repository

import (
	"gorm.io/gorm"

	"simplesearch/internal/models"
)

// SearchQueryRepositoryImpl implements SearchQueryRepository
type SearchQueryRepositoryImpl struct {
	db *gorm.DB
}

func NewSearchQueryRepository(db *gorm.DB) models.SearchQueryRepository {
	return &SearchQueryRepositoryImpl{db: db}
}

func (r *SearchQueryRepositoryImpl) Create(query *models.SearchQuery) error {
	return r.db.Create(query).Error
}

func (r *SearchQueryRepositoryImpl) GetByID(id uint) (*models.SearchQuery, error) {
	var query models.SearchQuery
	err := r.db.First(&query, id).Error
	if err != nil {
		return nil, err
	}
	return &query, nil
}

func (r *SearchQueryRepositoryImpl) GetBySession(session string) ([]models.SearchQuery, error) {
	var queries []models.SearchQuery
	err := r.db.Where("user_session = ?", session).
		Order("search_timestamp DESC").
		Find(&queries).Error
	return queries, err
}

func (r *SearchQueryRepositoryImpl) GetRecentSearches(limit int) ([]models.SearchQuery, error) {
	var queries []models.SearchQuery
	err := r.db.Order("search_timestamp DESC").
		Limit(limit).
		Find(&queries).Error
	return queries, err
}

// PopularQueryRepositoryImpl implements PopularQueryRepository
type PopularQueryRepositoryImpl struct {
	db *gorm.DB
}

func NewPopularQueryRepository(db *gorm.DB) models.PopularQueryRepository {
	return &PopularQueryRepositoryImpl{db: db}
}

func (r *PopularQueryRepositoryImpl) IncrementCount(queryText string) error {
	return r.db.Exec(`
		INSERT INTO popular_queries (query_text, search_count, last_searched, created_at, updated_at)
		VALUES (?, 1, NOW(), NOW(), NOW())
		ON CONFLICT (query_text)
		DO UPDATE SET
			search_count = popular_queries.search_count + 1,
			last_searched = NOW(),
			updated_at = NOW()
	`, queryText).Error
}

func (r *PopularQueryRepositoryImpl) GetTop(limit int) ([]models.PopularQuery, error) {
	var queries []models.PopularQuery
	err := r.db.Order("search_count DESC").
		Limit(limit).
		Find(&queries).Error
	return queries, err
}

func (r *PopularQueryRepositoryImpl) UpdateStats(queryText string, resultsCount float64, responseTime int) error {
	return r.db.Exec(`
		UPDATE popular_queries
		SET
			avg_results_count = (avg_results_count * (search_count - 1) + ?) / search_count,
			avg_response_time_ms = (avg_response_time_ms * (search_count - 1) + ?) / search_count,
			updated_at = NOW()
		WHERE query_text = ?
	`, resultsCount, responseTime, queryText).Error
}

// RepositoryManager bundles all repositories
type RepositoryManager struct {
	SearchQuery  models.SearchQueryRepository
	PopularQuery models.PopularQueryRepository
}

func NewRepositoryManager(db *gorm.DB) *RepositoryManager {
	return &RepositoryManager{
		SearchQuery:  NewSearchQueryRepository(db),
		PopularQuery: NewPopularQueryRepository(db),
	}
}
