// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"strings"
	"time"

	"github.com/mauricehans/moto/internal/models"
)

// MotorcycleFilter narrows ListMotorcycles. Zero values mean "any".
type MotorcycleFilter struct { //nolint:govet // fieldalignment: readability over optimization
	Brand    string
	Year     int
	License  string
	IsSold   *bool
	Featured *bool
	Search   string
	Ordering string // field name, "-" prefix for descending
	Limit    int
	Offset   int
}

var motorcycleOrdering = map[string]string{
	"price":      "price_cents",
	"year":       "year",
	"mileage":    "mileage",
	"created_at": "created_at",
}

func orderClause(ordering string, allowed map[string]string, fallback string) string {
	dir := "ASC"
	field := ordering
	if strings.HasPrefix(field, "-") {
		dir = "DESC"
		field = field[1:]
	}
	col, ok := allowed[field]
	if !ok {
		return fallback
	}
	return col + " " + dir + ", id DESC"
}

func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

// ListMotorcycles returns motorcycles matching the filter.
func (r *Repository) ListMotorcycles(ctx context.Context, f MotorcycleFilter) ([]models.Motorcycle, error) {
	var (
		where []string
		args  []any
	)
	if f.Brand != "" {
		where = append(where, "brand = ? COLLATE NOCASE")
		args = append(args, f.Brand)
	}
	if f.Year != 0 {
		where = append(where, "year = ?")
		args = append(args, f.Year)
	}
	if f.License != "" {
		where = append(where, "license = ?")
		args = append(args, f.License)
	}
	if f.IsSold != nil {
		where = append(where, "is_sold = ?")
		args = append(args, *f.IsSold)
	}
	if f.Featured != nil {
		where = append(where, "is_featured = ?")
		args = append(args, *f.Featured)
	}
	if f.Search != "" {
		p := likePattern(f.Search)
		where = append(where, `(brand LIKE ? ESCAPE '\' OR model LIKE ? ESCAPE '\' OR description LIKE ? ESCAPE '\')`)
		args = append(args, p, p, p)
	}

	query := `SELECT * FROM motorcycles`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY " + orderClause(f.Ordering, motorcycleOrdering, "created_at DESC, id DESC")
	if f.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, f.Limit, f.Offset)
	}

	motos := []models.Motorcycle{}
	if err := r.db.SelectContext(ctx, &motos, query, args...); err != nil {
		return nil, err
	}
	return motos, nil
}

// GetMotorcycleBySlug retrieves a motorcycle by slug.
func (r *Repository) GetMotorcycleBySlug(ctx context.Context, slug string) (*models.Motorcycle, error) {
	var m models.Motorcycle
	if err := r.db.GetContext(ctx, &m, `SELECT * FROM motorcycles WHERE slug = ?`, slug); err != nil {
		return nil, wrapError(err)
	}
	return &m, nil
}

// GetMotorcycleByID retrieves a motorcycle by ID.
func (r *Repository) GetMotorcycleByID(ctx context.Context, id int64) (*models.Motorcycle, error) {
	var m models.Motorcycle
	if err := r.db.GetContext(ctx, &m, `SELECT * FROM motorcycles WHERE id = ?`, id); err != nil {
		return nil, wrapError(err)
	}
	return &m, nil
}

// CreateMotorcycle inserts a motorcycle. The slug must already be set.
func (r *Repository) CreateMotorcycle(ctx context.Context, m *models.Motorcycle) error {
	now := time.Now().UTC()
	m.CreatedAt, m.UpdatedAt = now, now
	res, err := r.db.NamedExecContext(ctx,
		`INSERT INTO motorcycles (slug, brand, model, year, price_cents, mileage, engine, power, license,
			color, description, features, is_sold, is_featured, created_at, updated_at)
		 VALUES (:slug, :brand, :model, :year, :price_cents, :mileage, :engine, :power, :license,
			:color, :description, :features, :is_sold, :is_featured, :created_at, :updated_at)`, m)
	if err != nil {
		return err
	}
	m.ID, err = res.LastInsertId()
	return err
}

// UpdateMotorcycle saves every column of m.
func (r *Repository) UpdateMotorcycle(ctx context.Context, m *models.Motorcycle) error {
	m.UpdatedAt = time.Now().UTC()
	return affected(r.db.NamedExecContext(ctx,
		`UPDATE motorcycles SET slug = :slug, brand = :brand, model = :model, year = :year,
			price_cents = :price_cents, mileage = :mileage, engine = :engine, power = :power,
			license = :license, color = :color, description = :description, features = :features,
			is_sold = :is_sold, is_featured = :is_featured, updated_at = :updated_at
		 WHERE id = :id`, m))
}

// DeleteMotorcycle deletes a motorcycle by ID.
func (r *Repository) DeleteMotorcycle(ctx context.Context, id int64) error {
	return affected(r.db.ExecContext(ctx, `DELETE FROM motorcycles WHERE id = ?`, id))
}

// MotorcycleStats aggregates the inventory.
func (r *Repository) MotorcycleStats(ctx context.Context) (*models.MotorcycleStats, error) {
	var s models.MotorcycleStats
	err := r.db.GetContext(ctx, &s, `SELECT
			count(*) AS total,
			coalesce(sum(is_sold = 0), 0) AS available,
			coalesce(sum(is_sold = 1), 0) AS sold,
			coalesce(sum(is_featured = 1), 0) AS featured,
			coalesce(avg(CASE WHEN is_sold = 0 THEN price_cents END), 0) AS avg_price_cents,
			coalesce(min(CASE WHEN is_sold = 0 THEN price_cents END), 0) AS min_price_cents,
			coalesce(max(CASE WHEN is_sold = 0 THEN price_cents END), 0) AS max_price_cents,
			count(DISTINCT brand) AS distinct_brands
		FROM motorcycles`)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

var slugTables = map[string]bool{
	"motorcycles":     true,
	"parts":           true,
	"part_categories": true,
	"blog_categories": true,
	"blog_posts":      true,
}

// SlugTaken reports whether slug is used in table by a row other than excludeID.
func (r *Repository) SlugTaken(ctx context.Context, table, slug string, excludeID int64) (bool, error) {
	if !slugTables[table] {
		panic("repository: SlugTaken on unknown table " + table)
	}
	var count int64
	err := r.db.GetContext(ctx, &count,
		`SELECT count(*) FROM `+table+` WHERE slug = ? AND id != ?`, slug, excludeID)
	return count > 0, err
}
