// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mauricehans/moto/internal/models"
	"github.com/mauricehans/moto/internal/repository"
)

func (s *Service) ListPartCategories(ctx context.Context) ([]models.PartCategory, error) {
	return s.repo.ListPartCategories(ctx)
}

func (s *Service) CreatePartCategory(ctx context.Context, c *models.PartCategory) error {
	c.Name = strings.TrimSpace(c.Name)
	v := validator{}
	v.check(c.Name != "", "name", "required")
	if err := v.err(); err != nil {
		return err
	}
	slug, err := s.uniqueSlug(ctx, "part_categories", c.Name, 0)
	if err != nil {
		return err
	}
	c.Slug = slug
	if err := s.repo.CreatePartCategory(ctx, c); err != nil {
		return fmt.Errorf("failed to create part category: %w", err)
	}
	return nil
}

func (s *Service) ListParts(ctx context.Context, f repository.PartFilter) ([]models.Part, error) {
	return s.repo.ListParts(ctx, f)
}

func (s *Service) GetPart(ctx context.Context, slug string) (*models.Part, error) {
	p, err := s.repo.GetPartBySlug(ctx, slug)
	return p, notFound(err)
}

// CreatePart stores a part. Availability follows the stock level.
func (s *Service) CreatePart(ctx context.Context, p *models.Part) error {
	p.Name = strings.TrimSpace(p.Name)
	p.Brand = strings.TrimSpace(p.Brand)
	if p.Condition == "" {
		p.Condition = models.ConditionNew
	}

	v := validator{}
	v.check(p.Name != "", "name", "required")
	v.check(p.PriceCents >= 0, "price_cents", "must not be negative")
	v.check(p.Stock >= 0, "stock", "must not be negative")
	v.check(models.ValidCondition(p.Condition), "condition", "unknown condition")

	if p.CategoryID <= 0 && p.CategorySlug != "" {
		cat, err := s.repo.GetPartCategoryBySlug(ctx, p.CategorySlug)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		if cat != nil {
			p.CategoryID = cat.ID
		}
	}
	v.check(p.CategoryID > 0, "category", "unknown category")
	if err := v.err(); err != nil {
		return err
	}

	p.IsAvailable = p.Stock > 0
	slug, err := s.uniqueSlug(ctx, "parts", strings.TrimSpace(p.Brand+" "+p.Name), 0)
	if err != nil {
		return err
	}
	p.Slug = slug
	if err := s.repo.CreatePart(ctx, p); err != nil {
		return fmt.Errorf("failed to create part: %w", err)
	}
	return nil
}

func (s *Service) DeletePart(ctx context.Context, id int64) error {
	return notFound(s.repo.DeletePart(ctx, id))
}
