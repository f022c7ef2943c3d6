package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/models"
	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/types"
)

// DirectoryRepo serves hospitals and news from fixed lists.
type DirectoryRepo struct {
	mu        sync.RWMutex
	hospitals []models.Hospital
	news      []models.NewsItem
}

func NewDirectoryRepo(hospitals []models.Hospital, news []models.NewsItem) *DirectoryRepo {
	return &DirectoryRepo{
		hospitals: slices.Clone(hospitals),
		news:      slices.Clone(news),
	}
}

func (r *DirectoryRepo) ListHospitals(ctx context.Context) ([]models.Hospital, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Clone(r.hospitals), nil
}

func (r *DirectoryRepo) GetHospital(ctx context.Context, id string) (*models.Hospital, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, h := range r.hospitals {
		if h.ID == id {
			return &h, nil
		}
	}
	return nil, types.ErrHospitalNotFound
}

func (r *DirectoryRepo) ListNews(ctx context.Context) ([]models.NewsItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Clone(r.news), nil
}

func (r *DirectoryRepo) GetNews(ctx context.Context, id string) (*models.NewsItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, n := range r.news {
		if n.ID == id {
			return &n, nil
		}
	}
	return nil, types.ErrNewsNotFound
}
