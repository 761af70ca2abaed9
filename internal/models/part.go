// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import "time"

type PartCategory struct { //nolint:govet // fieldalignment: readability over optimization
	ID          int64     `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Slug        string    `db:"slug" json:"slug"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Part conditions.
const (
	ConditionNew           = "new"
	ConditionUsedExcellent = "used_excellent"
	ConditionUsedGood      = "used_good"
	ConditionUsedFair      = "used_fair"
	ConditionRefurbished   = "refurbished"
)

// ValidCondition reports whether s is a known part condition.
func ValidCondition(s string) bool {
	switch s {
	case ConditionNew, ConditionUsedExcellent, ConditionUsedGood, ConditionUsedFair, ConditionRefurbished:
		return true
	}
	return false
}

type Part struct { //nolint:govet // fieldalignment: readability over optimization
	ID               int64     `db:"id" json:"id"`
	CategoryID       int64     `db:"category_id" json:"category_id"`
	CategorySlug     string    `db:"category_slug" json:"category_slug"`
	Slug             string    `db:"slug" json:"slug"`
	Name             string    `db:"name" json:"name"`
	Brand            string    `db:"brand" json:"brand"`
	PartNumber       string    `db:"part_number" json:"part_number"`
	CompatibleModels string    `db:"compatible_models" json:"compatible_models"`
	PriceCents       int64     `db:"price_cents" json:"price_cents"`
	Stock            int       `db:"stock" json:"stock"`
	Condition        string    `db:"condition" json:"condition"`
	Description      string    `db:"description" json:"description"`
	IsAvailable      bool      `db:"is_available" json:"is_available"`
	IsFeatured       bool      `db:"is_featured" json:"is_featured"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}
