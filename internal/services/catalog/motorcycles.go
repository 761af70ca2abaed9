// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mauricehans/moto/internal/cache"
	"github.com/mauricehans/moto/internal/models"
	"github.com/mauricehans/moto/internal/repository"
)

const (
	motorcycleCachePrefix = "catalog:motorcycles:"
	featuredCacheKey      = motorcycleCachePrefix + "featured"
	statsCacheKey         = motorcycleCachePrefix + "stats"

	FeaturedTTL   = 5 * time.Minute
	StatsTTL      = 30 * time.Minute
	FeaturedLimit = 6
)

func (s *Service) ListMotorcycles(ctx context.Context, f repository.MotorcycleFilter) ([]models.Motorcycle, error) {
	return s.repo.ListMotorcycles(ctx, f)
}

// FeaturedMotorcycles returns the newest unsold featured motorcycles.
func (s *Service) FeaturedMotorcycles(ctx context.Context) ([]models.Motorcycle, error) {
	if cached, ok, err := cache.GetJSON[[]models.Motorcycle](ctx, s.store, featuredCacheKey); err != nil {
		slog.Warn("catalog_cache_read_failed", "key", featuredCacheKey, "error", err)
	} else if ok {
		return cached, nil
	}

	unsold, featured := false, true
	list, err := s.repo.ListMotorcycles(ctx, repository.MotorcycleFilter{
		IsSold:   &unsold,
		Featured: &featured,
		Ordering: "-created_at",
		Limit:    FeaturedLimit,
	})
	if err != nil {
		return nil, err
	}
	if err := cache.SetJSON(ctx, s.store, featuredCacheKey, list, FeaturedTTL); err != nil {
		slog.Warn("catalog_cache_write_failed", "key", featuredCacheKey, "error", err)
	}
	return list, nil
}

// MotorcycleStats summarises the inventory.
func (s *Service) MotorcycleStats(ctx context.Context) (*models.MotorcycleStats, error) {
	if cached, ok, err := cache.GetJSON[models.MotorcycleStats](ctx, s.store, statsCacheKey); err != nil {
		slog.Warn("catalog_cache_read_failed", "key", statsCacheKey, "error", err)
	} else if ok {
		return &cached, nil
	}

	stats, err := s.repo.MotorcycleStats(ctx)
	if err != nil {
		return nil, err
	}
	if err := cache.SetJSON(ctx, s.store, statsCacheKey, stats, StatsTTL); err != nil {
		slog.Warn("catalog_cache_write_failed", "key", statsCacheKey, "error", err)
	}
	return stats, nil
}

func (s *Service) GetMotorcycle(ctx context.Context, slug string) (*models.Motorcycle, error) {
	m, err := s.repo.GetMotorcycleBySlug(ctx, slug)
	return m, notFound(err)
}

func (s *Service) GetMotorcycleByID(ctx context.Context, id int64) (*models.Motorcycle, error) {
	m, err := s.repo.GetMotorcycleByID(ctx, id)
	return m, notFound(err)
}

func validateMotorcycle(m *models.Motorcycle, now time.Time) error {
	m.Brand = strings.TrimSpace(m.Brand)
	m.Model = strings.TrimSpace(m.Model)
	m.License = strings.ToUpper(strings.TrimSpace(m.License))
	if m.Features == nil {
		m.Features = models.StringList{}
	}

	v := validator{}
	v.check(m.Brand != "", "brand", "required")
	v.check(m.Model != "", "model", "required")
	v.check(m.Year >= 1900 && m.Year <= now.Year()+1, "year", "out of range")
	v.check(m.PriceCents >= 0, "price_cents", "must not be negative")
	v.check(m.Mileage >= 0, "mileage", "must not be negative")
	v.check(m.Power >= 0, "power", "must not be negative")
	v.check(m.License == "" || models.ValidLicense(m.License), "license", "unknown license")
	return v.err()
}

// CreateMotorcycle validates m, assigns a slug and stores it.
func (s *Service) CreateMotorcycle(ctx context.Context, m *models.Motorcycle) error {
	if err := validateMotorcycle(m, time.Now()); err != nil {
		return err
	}
	slug, err := s.uniqueSlug(ctx, "motorcycles", fmt.Sprintf("%s %s %d", m.Brand, m.Model, m.Year), 0)
	if err != nil {
		return err
	}
	m.Slug = slug
	if err := s.repo.CreateMotorcycle(ctx, m); err != nil {
		return fmt.Errorf("failed to create motorcycle: %w", err)
	}
	s.invalidate(ctx)
	slog.Info("motorcycle_created", "id", m.ID, "slug", m.Slug)
	return nil
}

// UpdateMotorcycle saves m. The slug is kept unless it was cleared.
func (s *Service) UpdateMotorcycle(ctx context.Context, m *models.Motorcycle) error {
	if err := validateMotorcycle(m, time.Now()); err != nil {
		return err
	}
	if strings.TrimSpace(m.Slug) == "" {
		slug, err := s.uniqueSlug(ctx, "motorcycles", fmt.Sprintf("%s %s %d", m.Brand, m.Model, m.Year), m.ID)
		if err != nil {
			return err
		}
		m.Slug = slug
	}
	if err := s.repo.UpdateMotorcycle(ctx, m); err != nil {
		return notFound(err)
	}
	s.invalidate(ctx)
	return nil
}

// MarkSold flags the motorcycle as sold.
func (s *Service) MarkSold(ctx context.Context, slug string) error {
	m, err := s.repo.GetMotorcycleBySlug(ctx, slug)
	if err != nil {
		return notFound(err)
	}
	m.IsSold = true
	if err := s.repo.UpdateMotorcycle(ctx, m); err != nil {
		return notFound(err)
	}
	s.invalidate(ctx)
	slog.Info("motorcycle_sold", "id", m.ID, "slug", m.Slug)
	return nil
}

func (s *Service) DeleteMotorcycle(ctx context.Context, id int64) error {
	if err := s.repo.DeleteMotorcycle(ctx, id); err != nil {
		return notFound(err)
	}
	s.invalidate(ctx)
	slog.Info("motorcycle_deleted", "id", id)
	return nil
}
