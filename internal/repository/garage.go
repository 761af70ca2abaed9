// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"github.com/mauricehans/moto/internal/models"
)

// GetGarageSettings returns the settings row, creating it with defaults on
// first access.
func (r *Repository) GetGarageSettings(ctx context.Context) (*models.GarageSettings, error) {
	d := models.DefaultGarageSettings()
	now := time.Now().UTC()
	d.CreatedAt, d.UpdatedAt = now, now
	_, err := r.db.NamedExecContext(ctx,
		`INSERT OR IGNORE INTO garage_settings (id, name, address, phone, email, website, description,
			social_media, business_hours, seo_settings, created_at, updated_at)
		 VALUES (:id, :name, :address, :phone, :email, :website, :description,
			:social_media, :business_hours, :seo_settings, :created_at, :updated_at)`, d)
	if err != nil {
		return nil, err
	}

	var s models.GarageSettings
	if err := r.db.GetContext(ctx, &s, `SELECT * FROM garage_settings WHERE id = ?`, models.GarageSettingsID); err != nil {
		return nil, wrapError(err)
	}
	return &s, nil
}

// UpdateGarageSettings saves every column of s.
func (r *Repository) UpdateGarageSettings(ctx context.Context, s *models.GarageSettings) error {
	s.ID = models.GarageSettingsID
	s.UpdatedAt = time.Now().UTC()
	return affected(r.db.NamedExecContext(ctx,
		`UPDATE garage_settings SET name = :name, address = :address, phone = :phone, email = :email,
			website = :website, description = :description, social_media = :social_media,
			business_hours = :business_hours, seo_settings = :seo_settings, updated_at = :updated_at
		 WHERE id = :id`, s))
}
