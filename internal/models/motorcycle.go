// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import "time"

// License categories of the French driving licence.
const (
	LicenseA1 = "A1"
	LicenseA2 = "A2"
	LicenseA  = "A"
)

// ValidLicense reports whether s is a known licence category.
func ValidLicense(s string) bool {
	switch s {
	case LicenseA1, LicenseA2, LicenseA:
		return true
	}
	return false
}

type Motorcycle struct { //nolint:govet // fieldalignment: readability over optimization
	ID          int64      `db:"id" json:"id"`
	Slug        string     `db:"slug" json:"slug"`
	Brand       string     `db:"brand" json:"brand"`
	Model       string     `db:"model" json:"model"`
	Year        int        `db:"year" json:"year"`
	PriceCents  int64      `db:"price_cents" json:"price_cents"`
	Mileage     int        `db:"mileage" json:"mileage"`
	Engine      string     `db:"engine" json:"engine"`
	Power       int        `db:"power" json:"power"`
	License     string     `db:"license" json:"license"`
	Color       string     `db:"color" json:"color"`
	Description string     `db:"description" json:"description"`
	Features    StringList `db:"features" json:"features"`
	IsSold      bool       `db:"is_sold" json:"is_sold"`
	IsFeatured  bool       `db:"is_featured" json:"is_featured"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// MotorcycleStats summarises the motorcycle inventory.
type MotorcycleStats struct {
	Total          int64   `db:"total" json:"total"`
	Available      int64   `db:"available" json:"available"`
	Sold           int64   `db:"sold" json:"sold"`
	Featured       int64   `db:"featured" json:"featured"`
	AvgPriceCents  float64 `db:"avg_price_cents" json:"avg_price_cents"`
	MinPriceCents  int64   `db:"min_price_cents" json:"min_price_cents"`
	MaxPriceCents  int64   `db:"max_price_cents" json:"max_price_cents"`
	DistinctBrands int64   `db:"distinct_brands" json:"distinct_brands"`
}
