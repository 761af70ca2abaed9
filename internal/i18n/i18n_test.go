// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package i18n_test

import (
	"context"
	"testing"

	"github.com/mauricehans/moto/internal/i18n"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestInit(t *testing.T) {
	require.NoError(t, i18n.Init())
	require.NoError(t, i18n.Init())
}

func TestT(t *testing.T) {
	ctx := i18n.WithLocale(context.Background(), language.English)

	assert.Equal(t, "Invalid credentials.", i18n.T(ctx, "error.invalid_credentials"))
}

func TestT_French(t *testing.T) {
	ctx := i18n.WithLocale(context.Background(), language.French)

	assert.Equal(t, "Identifiants invalides.", i18n.T(ctx, "error.invalid_credentials"))
	assert.Equal(t, "fr", i18n.GetLocale(ctx))
}

func TestT_RegionalVariant(t *testing.T) {
	ctx := i18n.WithLocale(context.Background(), language.MustParse("fr-CA"))

	assert.Equal(t, "fr", i18n.GetLocale(ctx))
	assert.Equal(t, "Code invalide ou expiré.", i18n.T(ctx, "error.invalid_code"))
}

func TestT_UnknownKey(t *testing.T) {
	ctx := i18n.WithLocale(context.Background(), language.English)

	assert.Equal(t, "unknown_key_that_does_not_exist", i18n.T(ctx, "unknown_key_that_does_not_exist"))
}

func TestT_NoLocaleContext(t *testing.T) {
	ctx := context.Background()

	assert.Equal(t, "en", i18n.GetLocale(ctx))
	assert.Equal(t, "Email is required.", i18n.T(ctx, "error.email_required"))
}

func TestTData(t *testing.T) {
	en := i18n.WithLocale(context.Background(), language.English)
	fr := i18n.WithLocale(context.Background(), language.French)

	assert.Equal(t, "Password must be at least 8 characters long.",
		i18n.TData(en, "error.password_too_short", map[string]any{"Min": 8}))
	assert.Equal(t, "Votre code de vérification est : 123456",
		i18n.TData(fr, "email.otp.code", map[string]any{"Code": "123456"}))
}

func TestMatchLanguage(t *testing.T) {
	tests := []struct {
		header   string
		expected language.Base
	}{
		{"", language.MustParseBase("en")},
		{"fr-FR,fr;q=0.9,en;q=0.8", language.MustParseBase("fr")},
		{"de-DE", language.MustParseBase("en")},
		{"en-US", language.MustParseBase("en")},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			base, _ := i18n.MatchLanguage(tt.header).Base()
			assert.Equal(t, tt.expected, base)
		})
	}
}

func TestTranslationsComplete(t *testing.T) {
	en := i18n.WithLocale(context.Background(), language.English)
	fr := i18n.WithLocale(context.Background(), language.French)

	ids := []string{
		"error.invalid_link", "error.rate_limited", "error.mail_delivery",
		"message.reset_sent_generic", "message.otp_sent", "email.reset.subject",
		"email.otp.subject", "email.signature",
	}
	for _, id := range ids {
		assert.NotEqual(t, id, i18n.T(en, id))
		assert.NotEqual(t, i18n.T(en, id), i18n.T(fr, id), id)
	}
}
