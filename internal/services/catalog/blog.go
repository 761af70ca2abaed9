// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mauricehans/moto/internal/models"
	"github.com/mauricehans/moto/internal/repository"
)

func (s *Service) ListBlogCategories(ctx context.Context) ([]models.BlogCategory, error) {
	return s.repo.ListBlogCategories(ctx)
}

func (s *Service) CreateBlogCategory(ctx context.Context, c *models.BlogCategory) error {
	c.Name = strings.TrimSpace(c.Name)
	v := validator{}
	v.check(c.Name != "", "name", "required")
	if err := v.err(); err != nil {
		return err
	}
	slug, err := s.uniqueSlug(ctx, "blog_categories", c.Name, 0)
	if err != nil {
		return err
	}
	c.Slug = slug
	if err := s.repo.CreateBlogCategory(ctx, c); err != nil {
		return fmt.Errorf("failed to create blog category: %w", err)
	}
	return nil
}

func (s *Service) ListPosts(ctx context.Context, f repository.PostFilter) ([]models.BlogPost, error) {
	return s.repo.ListPosts(ctx, f)
}

// ReadPost returns a published post and counts the view.
func (s *Service) ReadPost(ctx context.Context, slug string) (*models.BlogPost, error) {
	p, err := s.repo.GetPostBySlug(ctx, slug)
	if err != nil {
		return nil, notFound(err)
	}
	if !p.IsPublished {
		return nil, ErrNotFound
	}
	if err := s.repo.IncrementPostViews(ctx, p.ID); err != nil {
		slog.Warn("blog_view_count_failed", "post_id", p.ID, "error", err)
	} else {
		p.ViewsCount++
	}
	return p, nil
}

// GetPost returns a post by slug, published or not.
func (s *Service) GetPost(ctx context.Context, slug string) (*models.BlogPost, error) {
	p, err := s.repo.GetPostBySlug(ctx, slug)
	return p, notFound(err)
}

func (s *Service) preparePost(ctx context.Context, p *models.BlogPost) error {
	p.Title = strings.TrimSpace(p.Title)
	p.Excerpt = strings.TrimSpace(p.Excerpt)
	if p.Tags == nil {
		p.Tags = models.StringList{}
	}

	v := validator{}
	v.check(p.Title != "", "title", "required")
	v.check(strings.TrimSpace(p.Content) != "", "content", "required")

	if p.CategoryID <= 0 && p.CategorySlug != "" {
		cat, err := s.repo.GetBlogCategoryBySlug(ctx, p.CategorySlug)
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

	if p.Excerpt == "" {
		p.Excerpt = models.MakeExcerpt(p.Content)
	}
	if p.IsPublished && !p.PublishedAt.Valid {
		p.PublishedAt = sql.NullTime{Time: time.Now().UTC(), Valid: true}
	}
	return nil
}

// CreatePost stores a post written by authorID.
func (s *Service) CreatePost(ctx context.Context, authorID int64, p *models.BlogPost) error {
	p.AuthorID = authorID
	if err := s.preparePost(ctx, p); err != nil {
		return err
	}
	slug, err := s.uniqueSlug(ctx, "blog_posts", p.Title, 0)
	if err != nil {
		return err
	}
	p.Slug = slug
	if err := s.repo.CreatePost(ctx, p); err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	slog.Info("blog_post_created", "id", p.ID, "slug", p.Slug, "author_id", authorID)
	return nil
}

func (s *Service) UpdatePost(ctx context.Context, p *models.BlogPost) error {
	if err := s.preparePost(ctx, p); err != nil {
		return err
	}
	if strings.TrimSpace(p.Slug) == "" {
		slug, err := s.uniqueSlug(ctx, "blog_posts", p.Title, p.ID)
		if err != nil {
			return err
		}
		p.Slug = slug
	}
	return notFound(s.repo.UpdatePost(ctx, p))
}

func (s *Service) DeletePost(ctx context.Context, id int64) error {
	return notFound(s.repo.DeletePost(ctx, id))
}
