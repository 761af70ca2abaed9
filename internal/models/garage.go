// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import "time"

// GarageSettingsID is the primary key of the single settings row.
const GarageSettingsID = 1

type GarageSettings struct { //nolint:govet // fieldalignment: readability over optimization
	ID            int64     `db:"id" json:"-"`
	Name          string    `db:"name" json:"name"`
	Address       string    `db:"address" json:"address"`
	Phone         string    `db:"phone" json:"phone"`
	Email         string    `db:"email" json:"email"`
	Website       string    `db:"website" json:"website"`
	Description   string    `db:"description" json:"description"`
	SocialMedia   JSONMap   `db:"social_media" json:"social_media"`
	BusinessHours JSONMap   `db:"business_hours" json:"business_hours"`
	SEOSettings   JSONMap   `db:"seo_settings" json:"seo_settings"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

func openDay(open, closeAt string, closed bool) map[string]any {
	return map[string]any{"open": open, "close": closeAt, "is_closed": closed}
}

// DefaultGarageSettings returns the settings used before anything is saved.
func DefaultGarageSettings() *GarageSettings {
	return &GarageSettings{
		ID:   GarageSettingsID,
		Name: "Agde Moto Gattuso",
		SocialMedia: JSONMap{
			"facebook": "", "instagram": "", "youtube": "", "twitter": "", "linkedin": "",
		},
		BusinessHours: JSONMap{
			"monday":    openDay("09:00", "18:00", false),
			"tuesday":   openDay("09:00", "18:00", false),
			"wednesday": openDay("09:00", "18:00", false),
			"thursday":  openDay("09:00", "18:00", false),
			"friday":    openDay("09:00", "18:00", false),
			"saturday":  openDay("09:00", "17:00", false),
			"sunday":    openDay("10:00", "16:00", true),
		},
		SEOSettings: JSONMap{
			"meta_title": "", "meta_description": "", "meta_keywords": "",
			"og_title": "", "og_description": "", "og_image": "",
		},
	}
}
