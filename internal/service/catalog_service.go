package service

import (
	"context"
	"time"

	"github.com/noah-isme/enrollment-portal-api/internal/models"
	appErrors "github.com/noah-isme/enrollment-portal-api/pkg/errors"
)

const (
	coursesCacheKey  = "catalog:courses"
	advisersCacheKey = "catalog:advisers"
)

type courseCatalog interface {
	ListActive(ctx context.Context) ([]models.Course, error)
}

type adviserCatalog interface {
	ListActive(ctx context.Context) ([]models.Adviser, error)
}

// CatalogService serves the read-only course and adviser lists.
type CatalogService struct {
	courses  courseCatalog
	advisers adviserCatalog
	cache    *CacheService
	ttl      time.Duration
}

func NewCatalogService(courses courseCatalog, advisers adviserCatalog, cache *CacheService, ttl time.Duration) *CatalogService {
	return &CatalogService{courses: courses, advisers: advisers, cache: cache, ttl: ttl}
}

func (s *CatalogService) Courses(ctx context.Context) ([]models.Course, error) {
	var out []models.Course
	if s.cache.Get(ctx, coursesCacheKey, &out) {
		return out, nil
	}
	out, err := s.courses.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Persistence(err, "failed to list courses")
	}
	if out == nil {
		out = []models.Course{}
	}
	s.cache.Set(ctx, coursesCacheKey, out, s.ttl)
	return out, nil
}

func (s *CatalogService) Advisers(ctx context.Context) ([]models.Adviser, error) {
	var out []models.Adviser
	if s.cache.Get(ctx, advisersCacheKey, &out) {
		return out, nil
	}
	out, err := s.advisers.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Persistence(err, "failed to list advisers")
	}
	if out == nil {
		out = []models.Adviser{}
	}
	s.cache.Set(ctx, advisersCacheKey, out, s.ttl)
	return out, nil
}
