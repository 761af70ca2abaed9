// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package catalog

import (
	"context"
	"testing"

	"github.com/mauricehans/moto/internal/cache"
	"github.com/mauricehans/moto/internal/models"
	"github.com/mauricehans/moto/internal/repository"
	"github.com/mauricehans/moto/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, *repository.Repository, *cache.Memory) {
	t.Helper()
	_, repo := testutil.NewTestDB(t)
	store := cache.NewMemory(cache.WithJanitor(0))
	t.Cleanup(func() { _ = store.Close() })
	return NewService(repo, store), repo, store
}

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Kawasaki Z900 2023":         "kawasaki-z900-2023",
		"  Été à Agde!  ":            "ete-a-agde",
		"Révision   des 10 000 km":   "revision-des-10-000-km",
		"Ducati -- Monster_821":      "ducati-monster-821",
		"日本":                         "",
		"Pièces d'occasion (garage)": "pieces-d-occasion-garage",
	}
	for in, want := range tests {
		assert.Equal(t, want, Slugify(in), in)
	}
}

func newMotorcycle(brand, model string, year int) *models.Motorcycle {
	return &models.Motorcycle{Brand: brand, Model: model, Year: year, PriceCents: 899_000, License: "a2"}
}

func TestCreateMotorcycleSlugs(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	first := newMotorcycle("Yamaha", "MT-07", 2022)
	require.NoError(t, svc.CreateMotorcycle(ctx, first))
	assert.Equal(t, "yamaha-mt-07-2022", first.Slug)
	assert.Equal(t, models.LicenseA2, first.License)

	second := newMotorcycle("Yamaha", "MT-07", 2022)
	require.NoError(t, svc.CreateMotorcycle(ctx, second))
	assert.Equal(t, "yamaha-mt-07-2022-1", second.Slug)

	third := newMotorcycle("Yamaha", "MT-07", 2022)
	require.NoError(t, svc.CreateMotorcycle(ctx, third))
	assert.Equal(t, "yamaha-mt-07-2022-2", third.Slug)

	got, err := svc.GetMotorcycle(ctx, "yamaha-mt-07-2022-1")
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.ID)
}

func TestCreateMotorcycleValidation(t *testing.T) {
	svc, _, _ := newTestService(t)

	err := svc.CreateMotorcycle(context.Background(), &models.Motorcycle{Year: 1800, PriceCents: -1, License: "B"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "brand")
	assert.Contains(t, verr.Fields, "model")
	assert.Contains(t, verr.Fields, "year")
	assert.Contains(t, verr.Fields, "price_cents")
	assert.Contains(t, verr.Fields, "license")
	assert.Contains(t, verr.Error(), "brand")
}

func TestFeaturedMotorcyclesCache(t *testing.T) {
	ctx := context.Background()
	svc, _, store := newTestService(t)

	m := newMotorcycle("Honda", "CB650R", 2023)
	m.IsFeatured = true
	require.NoError(t, svc.CreateMotorcycle(ctx, m))
	sold := newMotorcycle("Honda", "CBR500R", 2021)
	sold.IsFeatured, sold.IsSold = true, true
	require.NoError(t, svc.CreateMotorcycle(ctx, sold))

	list, err := svc.FeaturedMotorcycles(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, m.ID, list[0].ID)

	_, ok, err := store.Get(ctx, featuredCacheKey)
	require.NoError(t, err)
	assert.True(t, ok)

	// Writes drop the cached listing.
	other := newMotorcycle("Honda", "Africa Twin", 2024)
	other.IsFeatured = true
	require.NoError(t, svc.CreateMotorcycle(ctx, other))
	_, ok, _ = store.Get(ctx, featuredCacheKey)
	assert.False(t, ok)

	list, err = svc.FeaturedMotorcycles(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestMotorcycleStatsCache(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	require.NoError(t, svc.CreateMotorcycle(ctx, newMotorcycle("BMW", "R 1250 GS", 2022)))
	stats, err := svc.MotorcycleStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Total)

	cached, err := svc.MotorcycleStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, stats.Total, cached.Total)

	require.NoError(t, svc.CreateMotorcycle(ctx, newMotorcycle("BMW", "F 900 R", 2023)))
	stats, err = svc.MotorcycleStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Total)
}

func TestUpdateAndDeleteMotorcycle(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	m := newMotorcycle("Triumph", "Street Triple", 2021)
	require.NoError(t, svc.CreateMotorcycle(ctx, m))

	m.PriceCents = 799_000
	m.Slug = ""
	require.NoError(t, svc.UpdateMotorcycle(ctx, m))
	assert.Equal(t, "triumph-street-triple-2021", m.Slug)

	got, err := svc.GetMotorcycleByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(799_000), got.PriceCents)

	require.NoError(t, svc.MarkSold(ctx, m.Slug))
	got, err = svc.GetMotorcycleByID(ctx, m.ID)
	require.NoError(t, err)
	assert.True(t, got.IsSold)
	assert.ErrorIs(t, svc.MarkSold(ctx, "missing"), ErrNotFound)

	require.NoError(t, svc.DeleteMotorcycle(ctx, m.ID))
	assert.ErrorIs(t, svc.DeleteMotorcycle(ctx, m.ID), ErrNotFound)
	_, err = svc.GetMotorcycle(ctx, m.Slug)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestParts(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	cat := &models.PartCategory{Name: "Échappements"}
	require.NoError(t, svc.CreatePartCategory(ctx, cat))
	assert.Equal(t, "echappements", cat.Slug)

	p := &models.Part{Name: "Silencieux", Brand: "Akrapovic", CategorySlug: "echappements", PriceCents: 45_000, Stock: 2}
	require.NoError(t, svc.CreatePart(ctx, p))
	assert.Equal(t, "akrapovic-silencieux", p.Slug)
	assert.True(t, p.IsAvailable)
	assert.Equal(t, models.ConditionNew, p.Condition)

	empty := &models.Part{Name: "Collecteur", CategoryID: cat.ID}
	require.NoError(t, svc.CreatePart(ctx, empty))
	assert.False(t, empty.IsAvailable)

	got, err := svc.GetPart(ctx, "akrapovic-silencieux")
	require.NoError(t, err)
	assert.Equal(t, "echappements", got.CategorySlug)

	list, err := svc.ListParts(ctx, repository.PartFilter{CategorySlug: "echappements", AvailableOnly: true})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, p.ID, list[0].ID)

	err = svc.CreatePart(ctx, &models.Part{Name: "Orphan", CategorySlug: "missing", Condition: "broken"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "category")
	assert.Contains(t, verr.Fields, "condition")

	require.NoError(t, svc.DeletePart(ctx, p.ID))
	_, err = svc.GetPart(ctx, p.Slug)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBlogPosts(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newTestService(t)
	author := testutil.NewTestUser(t, repo, "editor", "password1", testutil.Staff())

	cat := &models.BlogCategory{Name: "Actualités"}
	require.NoError(t, svc.CreateBlogCategory(ctx, cat))

	long := make([]rune, 400)
	for i := range long {
		long[i] = 'é'
	}
	post := &models.BlogPost{Title: "Nouvelle saison", Content: string(long), CategorySlug: "actualites", IsPublished: true}
	require.NoError(t, svc.CreatePost(ctx, author.ID, post))
	assert.Equal(t, "nouvelle-saison", post.Slug)
	assert.Len(t, []rune(post.Excerpt), models.ExcerptLength)
	assert.True(t, post.PublishedAt.Valid)

	read, err := svc.ReadPost(ctx, "nouvelle-saison")
	require.NoError(t, err)
	assert.Equal(t, int64(1), read.ViewsCount)
	assert.Equal(t, "editor", read.AuthorName)
	read, err = svc.ReadPost(ctx, "nouvelle-saison")
	require.NoError(t, err)
	assert.Equal(t, int64(2), read.ViewsCount)

	draft := &models.BlogPost{Title: "Brouillon", Content: "wip", CategoryID: cat.ID}
	require.NoError(t, svc.CreatePost(ctx, author.ID, draft))
	_, err = svc.ReadPost(ctx, draft.Slug)
	assert.ErrorIs(t, err, ErrNotFound)
	byEditor, err := svc.GetPost(ctx, draft.Slug)
	require.NoError(t, err)
	assert.Equal(t, draft.ID, byEditor.ID)

	published, err := svc.ListPosts(ctx, repository.PostFilter{PublishedOnly: true})
	require.NoError(t, err)
	assert.Len(t, published, 1)

	draft.IsPublished = true
	require.NoError(t, svc.UpdatePost(ctx, draft))
	_, err = svc.ReadPost(ctx, draft.Slug)
	assert.NoError(t, err)

	require.NoError(t, svc.DeletePost(ctx, draft.ID))
	assert.ErrorIs(t, svc.DeletePost(ctx, draft.ID), ErrNotFound)
}

func TestCreatePostValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	err := svc.CreatePost(context.Background(), 1, &models.BlogPost{})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "title")
	assert.Contains(t, verr.Fields, "content")
	assert.Contains(t, verr.Fields, "category")
}

func TestGarageSettings(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	settings, err := svc.GarageSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Agde Moto Gattuso", settings.Name)
	assert.Contains(t, settings.BusinessHours, "sunday")

	name := "  <b>Agde Moto</b> "
	phone := " 04 67 00 00 00 "
	updated, err := svc.UpdateGarageSettings(ctx, GarageSettingsPatch{
		Name:        &name,
		Phone:       &phone,
		SocialMedia: map[string]any{"facebook": "https://facebook.com/agdemoto"},
	})
	require.NoError(t, err)
	assert.Equal(t, "&lt;b&gt;Agde Moto&lt;/b&gt;", updated.Name)
	assert.Equal(t, "04 67 00 00 00", updated.Phone)

	reloaded, err := svc.GarageSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, updated.Name, reloaded.Name)
	assert.Equal(t, "https://facebook.com/agdemoto", reloaded.SocialMedia["facebook"])
	assert.Contains(t, reloaded.BusinessHours, "monday")

	badEmail := "not-an-email"
	_, err = svc.UpdateGarageSettings(ctx, GarageSettingsPatch{Email: &badEmail})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "email")

	empty := "   "
	_, err = svc.UpdateGarageSettings(ctx, GarageSettingsPatch{Name: &empty})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "name")
}
