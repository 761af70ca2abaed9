// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"strings"
	"time"

	"github.com/mauricehans/moto/internal/models"
)

// PartFilter narrows ListParts.
type PartFilter struct {
	CategorySlug  string
	Search        string
	AvailableOnly bool
}

const partSelect = `SELECT p.*, c.slug AS category_slug
	FROM parts p JOIN part_categories c ON c.id = p.category_id`

// ListPartCategories returns all part categories ordered by name.
func (r *Repository) ListPartCategories(ctx context.Context) ([]models.PartCategory, error) {
	cats := []models.PartCategory{}
	err := r.db.SelectContext(ctx, &cats, `SELECT * FROM part_categories ORDER BY name`)
	return cats, err
}

// GetPartCategoryBySlug retrieves a part category by slug.
func (r *Repository) GetPartCategoryBySlug(ctx context.Context, slug string) (*models.PartCategory, error) {
	var c models.PartCategory
	if err := r.db.GetContext(ctx, &c, `SELECT * FROM part_categories WHERE slug = ?`, slug); err != nil {
		return nil, wrapError(err)
	}
	return &c, nil
}

// CreatePartCategory inserts a part category.
func (r *Repository) CreatePartCategory(ctx context.Context, c *models.PartCategory) error {
	c.CreatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO part_categories (name, slug, description, created_at) VALUES (?, ?, ?, ?)`,
		c.Name, c.Slug, c.Description, c.CreatedAt)
	if err != nil {
		return err
	}
	c.ID, err = res.LastInsertId()
	return err
}

// ListParts returns parts matching the filter, newest first.
func (r *Repository) ListParts(ctx context.Context, f PartFilter) ([]models.Part, error) {
	var (
		where []string
		args  []any
	)
	if f.CategorySlug != "" {
		where = append(where, "c.slug = ?")
		args = append(args, f.CategorySlug)
	}
	if f.AvailableOnly {
		where = append(where, "p.is_available = 1")
	}
	if f.Search != "" {
		p := likePattern(f.Search)
		where = append(where, `(p.name LIKE ? ESCAPE '\' OR p.brand LIKE ? ESCAPE '\' OR p.compatible_models LIKE ? ESCAPE '\')`)
		args = append(args, p, p, p)
	}

	query := partSelect
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY p.created_at DESC, p.id DESC"

	parts := []models.Part{}
	if err := r.db.SelectContext(ctx, &parts, query, args...); err != nil {
		return nil, err
	}
	return parts, nil
}

// GetPartByID retrieves a part by ID.
func (r *Repository) GetPartByID(ctx context.Context, id int64) (*models.Part, error) {
	var p models.Part
	if err := r.db.GetContext(ctx, &p, partSelect+` WHERE p.id = ?`, id); err != nil {
		return nil, wrapError(err)
	}
	return &p, nil
}

// GetPartBySlug retrieves a part by slug.
func (r *Repository) GetPartBySlug(ctx context.Context, slug string) (*models.Part, error) {
	var p models.Part
	if err := r.db.GetContext(ctx, &p, partSelect+` WHERE p.slug = ?`, slug); err != nil {
		return nil, wrapError(err)
	}
	return &p, nil
}

// CreatePart inserts a part. The slug must already be set.
func (r *Repository) CreatePart(ctx context.Context, p *models.Part) error {
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	res, err := r.db.NamedExecContext(ctx,
		`INSERT INTO parts (category_id, slug, name, brand, part_number, compatible_models, price_cents,
			stock, condition, description, is_available, is_featured, created_at, updated_at)
		 VALUES (:category_id, :slug, :name, :brand, :part_number, :compatible_models, :price_cents,
			:stock, :condition, :description, :is_available, :is_featured, :created_at, :updated_at)`, p)
	if err != nil {
		return err
	}
	p.ID, err = res.LastInsertId()
	return err
}

// DeletePart deletes a part by ID.
func (r *Repository) DeletePart(ctx context.Context, id int64) error {
	return affected(r.db.ExecContext(ctx, `DELETE FROM parts WHERE id = ?`, id))
}
