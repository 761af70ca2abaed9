// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"strings"
	"time"

	"github.com/mauricehans/moto/internal/models"
)

// PostFilter narrows ListPosts.
type PostFilter struct {
	CategorySlug  string
	Search        string
	PublishedOnly bool
}

const postSelect = `SELECT p.*, c.slug AS category_slug, u.username AS author_name
	FROM blog_posts p
	JOIN blog_categories c ON c.id = p.category_id
	JOIN users u ON u.id = p.author_id`

// ListBlogCategories returns all blog categories ordered by name.
func (r *Repository) ListBlogCategories(ctx context.Context) ([]models.BlogCategory, error) {
	cats := []models.BlogCategory{}
	err := r.db.SelectContext(ctx, &cats, `SELECT * FROM blog_categories ORDER BY name`)
	return cats, err
}

// GetBlogCategoryBySlug retrieves a blog category by slug.
func (r *Repository) GetBlogCategoryBySlug(ctx context.Context, slug string) (*models.BlogCategory, error) {
	var c models.BlogCategory
	if err := r.db.GetContext(ctx, &c, `SELECT * FROM blog_categories WHERE slug = ?`, slug); err != nil {
		return nil, wrapError(err)
	}
	return &c, nil
}

// CreateBlogCategory inserts a blog category.
func (r *Repository) CreateBlogCategory(ctx context.Context, c *models.BlogCategory) error {
	c.CreatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO blog_categories (name, slug, description, created_at) VALUES (?, ?, ?, ?)`,
		c.Name, c.Slug, c.Description, c.CreatedAt)
	if err != nil {
		return err
	}
	c.ID, err = res.LastInsertId()
	return err
}

// ListPosts returns posts, most recently published first.
func (r *Repository) ListPosts(ctx context.Context, f PostFilter) ([]models.BlogPost, error) {
	var (
		where []string
		args  []any
	)
	if f.PublishedOnly {
		where = append(where, "p.is_published = 1")
	}
	if f.CategorySlug != "" {
		where = append(where, "c.slug = ?")
		args = append(args, f.CategorySlug)
	}
	if f.Search != "" {
		p := likePattern(f.Search)
		where = append(where, `(p.title LIKE ? ESCAPE '\' OR p.content LIKE ? ESCAPE '\')`)
		args = append(args, p, p)
	}

	query := postSelect
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY p.published_at DESC, p.created_at DESC, p.id DESC"

	posts := []models.BlogPost{}
	if err := r.db.SelectContext(ctx, &posts, query, args...); err != nil {
		return nil, err
	}
	return posts, nil
}

// GetPostBySlug retrieves a post by slug.
func (r *Repository) GetPostBySlug(ctx context.Context, slug string) (*models.BlogPost, error) {
	var p models.BlogPost
	if err := r.db.GetContext(ctx, &p, postSelect+` WHERE p.slug = ?`, slug); err != nil {
		return nil, wrapError(err)
	}
	return &p, nil
}

// GetPostByID retrieves a post by ID.
func (r *Repository) GetPostByID(ctx context.Context, id int64) (*models.BlogPost, error) {
	var p models.BlogPost
	if err := r.db.GetContext(ctx, &p, postSelect+` WHERE p.id = ?`, id); err != nil {
		return nil, wrapError(err)
	}
	return &p, nil
}

// IncrementPostViews adds one view to a post.
func (r *Repository) IncrementPostViews(ctx context.Context, id int64) error {
	return affected(r.db.ExecContext(ctx,
		`UPDATE blog_posts SET views_count = views_count + 1 WHERE id = ?`, id))
}

// CreatePost inserts a post. Slug and excerpt must already be set.
func (r *Repository) CreatePost(ctx context.Context, p *models.BlogPost) error {
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	res, err := r.db.NamedExecContext(ctx,
		`INSERT INTO blog_posts (category_id, author_id, slug, title, content, excerpt, tags,
			is_published, published_at, created_at, updated_at)
		 VALUES (:category_id, :author_id, :slug, :title, :content, :excerpt, :tags,
			:is_published, :published_at, :created_at, :updated_at)`, p)
	if err != nil {
		return err
	}
	p.ID, err = res.LastInsertId()
	return err
}

// UpdatePost saves the editable columns of p.
func (r *Repository) UpdatePost(ctx context.Context, p *models.BlogPost) error {
	p.UpdatedAt = time.Now().UTC()
	return affected(r.db.NamedExecContext(ctx,
		`UPDATE blog_posts SET category_id = :category_id, slug = :slug, title = :title,
			content = :content, excerpt = :excerpt, tags = :tags, is_published = :is_published,
			published_at = :published_at, updated_at = :updated_at
		 WHERE id = :id`, p))
}

// DeletePost deletes a post by ID.
func (r *Repository) DeletePost(ctx context.Context, id int64) error {
	return affected(r.db.ExecContext(ctx, `DELETE FROM blog_posts WHERE id = ?`, id))
}
