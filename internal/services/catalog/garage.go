// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package catalog

import (
	"context"
	"html"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/mauricehans/moto/internal/models"
)

// GarageSettingsPatch holds the fields of a partial settings update. Nil
// fields are left unchanged.
type GarageSettingsPatch struct {
	Name          *string        `json:"name"`
	Address       *string        `json:"address"`
	Phone         *string        `json:"phone"`
	Email         *string        `json:"email"`
	Website       *string        `json:"website"`
	Description   *string        `json:"description"`
	SocialMedia   map[string]any `json:"social_media"`
	BusinessHours map[string]any `json:"business_hours"`
	SEOSettings   map[string]any `json:"seo_settings"`
}

func (s *Service) GarageSettings(ctx context.Context) (*models.GarageSettings, error) {
	return s.repo.GetGarageSettings(ctx)
}

func clean(v string) string {
	return html.EscapeString(strings.TrimSpace(v))
}

// UpdateGarageSettings applies patch. Text fields are trimmed and escaped.
func (s *Service) UpdateGarageSettings(ctx context.Context, patch GarageSettingsPatch) (*models.GarageSettings, error) {
	settings, err := s.repo.GetGarageSettings(ctx)
	if err != nil {
		return nil, err
	}

	for _, f := range []struct {
		src *string
		dst *string
	}{
		{patch.Name, &settings.Name},
		{patch.Address, &settings.Address},
		{patch.Phone, &settings.Phone},
		{patch.Email, &settings.Email},
		{patch.Website, &settings.Website},
		{patch.Description, &settings.Description},
	} {
		if f.src != nil {
			*f.dst = clean(*f.src)
		}
	}
	if patch.SocialMedia != nil {
		settings.SocialMedia = models.JSONMap(patch.SocialMedia)
	}
	if patch.BusinessHours != nil {
		settings.BusinessHours = models.JSONMap(patch.BusinessHours)
	}
	if patch.SEOSettings != nil {
		settings.SEOSettings = models.JSONMap(patch.SEOSettings)
	}

	v := validator{}
	v.check(settings.Name != "", "name", "required")
	if settings.Email != "" {
		_, perr := mail.ParseAddress(settings.Email)
		v.check(perr == nil, "email", "invalid email")
	}
	if err := v.err(); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateGarageSettings(ctx, settings); err != nil {
		return nil, err
	}
	slog.Info("garage_settings_updated")
	return settings, nil
}
