package doctor

import (
	"context"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/rusdhi-de/clinic-api/internal/model"
	"github.com/rusdhi-de/clinic-api/internal/repository"
)

const (
	rosterCacheKey = "doctors:all"
	rosterCacheTTL = 5 * time.Minute
)

// Service serves the doctor roster. The roster is seeded at startup and
// read-only afterwards, so listings are cached in-process.
type Service struct {
	repo  repository.DoctorRepository
	cache *gocache.Cache
}

func NewService(repo repository.DoctorRepository) *Service {
	return &Service{
		repo:  repo,
		cache: gocache.New(rosterCacheTTL, 10*time.Minute),
	}
}

func (s *Service) List(ctx context.Context) ([]*model.Doctor, error) {
	if cached, found := s.cache.Get(rosterCacheKey); found {
		return cached.([]*model.Doctor), nil
	}

	doctors, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	s.cache.SetDefault(rosterCacheKey, doctors)
	return doctors, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	return s.repo.Get(ctx, id)
}
