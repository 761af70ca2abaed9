// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package seed loads catalog fixtures from YAML.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mauricehans/moto/internal/models"
	"github.com/mauricehans/moto/internal/services/catalog"
	"gopkg.in/yaml.v3"
)

// ErrNoAuthor is returned when the fixtures contain posts but no author was
// given.
var ErrNoAuthor = errors.New("seed: posts need an author")

// Fixtures mirrors the YAML document. Parts and posts reference their
// category by slug.
type Fixtures struct {
	PartCategories []Category   `yaml:"part_categories"`
	BlogCategories []Category   `yaml:"blog_categories"`
	Motorcycles    []Motorcycle `yaml:"motorcycles"`
	Parts          []Part       `yaml:"parts"`
	Posts          []Post       `yaml:"posts"`
}

type Category struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

type Motorcycle struct {
	Brand       string   `yaml:"brand"`
	Model       string   `yaml:"model"`
	Year        int      `yaml:"year"`
	PriceCents  int64    `yaml:"price_cents"`
	Mileage     int      `yaml:"mileage"`
	Engine      string   `yaml:"engine"`
	Power       int      `yaml:"power"`
	License     string   `yaml:"license"`
	Color       string   `yaml:"color"`
	Description string   `yaml:"description"`
	Features    []string `yaml:"features"`
	Featured    bool     `yaml:"featured"`
	Sold        bool     `yaml:"sold"`
}

type Part struct {
	Category         string `yaml:"category"`
	Name             string `yaml:"name"`
	Brand            string `yaml:"brand"`
	PartNumber       string `yaml:"part_number"`
	CompatibleModels string `yaml:"compatible_models"`
	PriceCents       int64  `yaml:"price_cents"`
	Stock            int    `yaml:"stock"`
	Condition        string `yaml:"condition"`
	Description      string `yaml:"description"`
	Featured         bool   `yaml:"featured"`
}

type Post struct {
	Category  string   `yaml:"category"`
	Title     string   `yaml:"title"`
	Content   string   `yaml:"content"`
	Excerpt   string   `yaml:"excerpt"`
	Tags      []string `yaml:"tags"`
	Published bool     `yaml:"published"`
}

// Summary counts the records created by Load.
type Summary struct {
	PartCategories int
	BlogCategories int
	Motorcycles    int
	Parts          int
	Posts          int
}

// Parse decodes fixtures from r. Unknown keys are rejected.
func Parse(r io.Reader) (*Fixtures, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f Fixtures
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return &f, nil
		}
		return nil, fmt.Errorf("seed: failed to parse fixtures: %w", err)
	}
	return &f, nil
}

// Load creates every fixture through the catalog service, so validation and
// slugs follow the API rules. It stops at the first failure.
func Load(ctx context.Context, svc *catalog.Service, authorID int64, f *Fixtures) (Summary, error) {
	var sum Summary
	if len(f.Posts) > 0 && authorID <= 0 {
		return sum, ErrNoAuthor
	}

	for _, c := range f.PartCategories {
		cat := models.PartCategory{Name: c.Name, Description: c.Description}
		if err := svc.CreatePartCategory(ctx, &cat); err != nil {
			return sum, describe("part category", c.Name, err)
		}
		sum.PartCategories++
	}
	for _, c := range f.BlogCategories {
		cat := models.BlogCategory{Name: c.Name, Description: c.Description}
		if err := svc.CreateBlogCategory(ctx, &cat); err != nil {
			return sum, describe("blog category", c.Name, err)
		}
		sum.BlogCategories++
	}

	for _, m := range f.Motorcycles {
		bike := models.Motorcycle{
			Brand:       m.Brand,
			Model:       m.Model,
			Year:        m.Year,
			PriceCents:  m.PriceCents,
			Mileage:     m.Mileage,
			Engine:      m.Engine,
			Power:       m.Power,
			License:     m.License,
			Color:       m.Color,
			Description: m.Description,
			Features:    models.StringList(m.Features),
			IsFeatured:  m.Featured,
			IsSold:      m.Sold,
		}
		if err := svc.CreateMotorcycle(ctx, &bike); err != nil {
			return sum, describe("motorcycle", m.Brand+" "+m.Model, err)
		}
		sum.Motorcycles++
	}

	for _, p := range f.Parts {
		part := models.Part{
			CategorySlug:     p.Category,
			Name:             p.Name,
			Brand:            p.Brand,
			PartNumber:       p.PartNumber,
			CompatibleModels: p.CompatibleModels,
			PriceCents:       p.PriceCents,
			Stock:            p.Stock,
			Condition:        p.Condition,
			Description:      p.Description,
			IsFeatured:       p.Featured,
		}
		if err := svc.CreatePart(ctx, &part); err != nil {
			return sum, describe("part", p.Name, err)
		}
		sum.Parts++
	}

	for _, p := range f.Posts {
		post := models.BlogPost{
			CategorySlug: p.Category,
			Title:        p.Title,
			Content:      p.Content,
			Excerpt:      p.Excerpt,
			Tags:         models.StringList(p.Tags),
			IsPublished:  p.Published,
		}
		if err := svc.CreatePost(ctx, authorID, &post); err != nil {
			return sum, describe("post", p.Title, err)
		}
		sum.Posts++
	}

	slog.Info("fixtures_loaded",
		"part_categories", sum.PartCategories,
		"blog_categories", sum.BlogCategories,
		"motorcycles", sum.Motorcycles,
		"parts", sum.Parts,
		"posts", sum.Posts,
	)
	return sum, nil
}

func describe(kind, name string, err error) error {
	var verr *catalog.ValidationError
	if errors.As(err, &verr) {
		return fmt.Errorf("seed: invalid %s %q: %v", kind, name, verr.Fields)
	}
	return fmt.Errorf("seed: failed to create %s %q: %w", kind, name, err)
}
