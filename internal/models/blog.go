// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import (
	"database/sql"
	"time"
)

type BlogCategory struct { //nolint:govet // fieldalignment: readability over optimization
	ID          int64     `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Slug        string    `db:"slug" json:"slug"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

type BlogPost struct { //nolint:govet // fieldalignment: readability over optimization
	ID           int64        `db:"id" json:"id"`
	CategoryID   int64        `db:"category_id" json:"category_id"`
	CategorySlug string       `db:"category_slug" json:"category_slug"`
	AuthorID     int64        `db:"author_id" json:"author_id"`
	AuthorName   string       `db:"author_name" json:"author"`
	Slug         string       `db:"slug" json:"slug"`
	Title        string       `db:"title" json:"title"`
	Content      string       `db:"content" json:"content"`
	Excerpt      string       `db:"excerpt" json:"excerpt"`
	Tags         StringList   `db:"tags" json:"tags"`
	IsPublished  bool         `db:"is_published" json:"is_published"`
	PublishedAt  sql.NullTime `db:"published_at" json:"-"`
	ViewsCount   int64        `db:"views_count" json:"views_count"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updated_at"`
}

// ExcerptLength is the maximum length of a generated excerpt, in runes.
const ExcerptLength = 300

// MakeExcerpt shortens content to ExcerptLength runes, marking cuts with "...".
func MakeExcerpt(content string) string {
	runes := []rune(content)
	if len(runes) <= ExcerptLength {
		return content
	}
	return string(runes[:ExcerptLength-3]) + "..."
}
