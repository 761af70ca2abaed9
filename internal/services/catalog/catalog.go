// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package catalog serves the dealership's motorcycles, parts, blog and
// garage settings.
package catalog

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"

	"github.com/mauricehans/moto/internal/cache"
	"github.com/mauricehans/moto/internal/repository"
)

// ErrNotFound is returned when a catalog entry does not exist.
var ErrNotFound = errors.New("not found")

// ValidationError lists invalid fields with a short reason each.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return "invalid fields: " + strings.Join(names, ", ")
}

type validator map[string]string

func (v validator) check(ok bool, field, reason string) {
	if !ok {
		if _, exists := v[field]; !exists {
			v[field] = reason
		}
	}
}

func (v validator) err() error {
	if len(v) == 0 {
		return nil
	}
	return &ValidationError{Fields: v}
}

type Service struct {
	repo  *repository.Repository
	store cache.Store
}

func NewService(repo *repository.Repository, store cache.Store) *Service {
	return &Service{repo: repo, store: store}
}

func notFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// invalidate drops cached motorcycle listings. Failures only cost freshness.
func (s *Service) invalidate(ctx context.Context) {
	if err := s.store.DeletePrefix(ctx, motorcycleCachePrefix); err != nil {
		slog.Warn("catalog_cache_invalidate_failed", "error", err)
	}
}
