// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	ctxauth "github.com/mauricehans/moto/internal/auth"
	"github.com/mauricehans/moto/internal/models"
	"github.com/mauricehans/moto/internal/repository"
	"github.com/mauricehans/moto/internal/services/catalog"
)

// ListResponse wraps collection results.
type ListResponse[T any] struct {
	Count   int `json:"count"`
	Results []T `json:"results"`
}

func list[T any](c echo.Context, items []T) error {
	if items == nil {
		items = []T{}
	}
	return c.JSON(http.StatusOK, ListResponse[T]{Count: len(items), Results: items})
}

// query collects typed query parameters and the ones that failed to parse.
type query struct {
	c       echo.Context
	invalid map[string]string
}

func newQuery(c echo.Context) *query {
	return &query{c: c, invalid: map[string]string{}}
}

func (q *query) str(name string) string {
	return strings.TrimSpace(q.c.QueryParam(name))
}

func (q *query) number(name string) int {
	v := q.str(name)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		q.invalid[name] = "invalid number"
		return 0
	}
	return n
}

func (q *query) flag(name string) *bool {
	v := q.str(name)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		q.invalid[name] = "invalid boolean"
		return nil
	}
	return &b
}

// ListMotorcycles lists motorcycles matching the query filters.
func (h *Handlers) ListMotorcycles(c echo.Context) error {
	q := newQuery(c)
	f := repository.MotorcycleFilter{
		Brand:    q.str("brand"),
		Year:     q.number("year"),
		License:  strings.ToUpper(q.str("license")),
		IsSold:   q.flag("is_sold"),
		Featured: q.flag("is_featured"),
		Search:   q.str("search"),
		Ordering: q.str("ordering"),
		Limit:    q.number("limit"),
		Offset:   q.number("offset"),
	}
	if len(q.invalid) > 0 {
		return invalid(c, q.invalid)
	}

	motos, err := h.catalog.ListMotorcycles(c.Request().Context(), f)
	if err != nil {
		return catalogError(c, err)
	}
	return list(c, motos)
}

// FeaturedMotorcycles lists the featured motorcycles still for sale.
func (h *Handlers) FeaturedMotorcycles(c echo.Context) error {
	motos, err := h.catalog.FeaturedMotorcycles(c.Request().Context())
	if err != nil {
		return catalogError(c, err)
	}
	return c.JSON(http.StatusOK, motos)
}

func (h *Handlers) MotorcycleStats(c echo.Context) error {
	stats, err := h.catalog.MotorcycleStats(c.Request().Context())
	if err != nil {
		return catalogError(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *Handlers) GetMotorcycle(c echo.Context) error {
	m, err := h.catalog.GetMotorcycle(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return catalogError(c, err)
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handlers) CreateMotorcycle(c echo.Context) error {
	var m models.Motorcycle
	if err := c.Bind(&m); err != nil {
		return fail(c, http.StatusBadRequest, "error.bad_request")
	}
	m.ID = 0
	if err := h.catalog.CreateMotorcycle(c.Request().Context(), &m); err != nil {
		return catalogError(c, err)
	}
	return c.JSON(http.StatusCreated, m)
}

// UpdateMotorcycle applies the request body over the stored motorcycle.
func (h *Handlers) UpdateMotorcycle(c echo.Context) error {
	ctx := c.Request().Context()
	m, err := h.catalog.GetMotorcycle(ctx, c.Param("slug"))
	if err != nil {
		return catalogError(c, err)
	}
	id, created := m.ID, m.CreatedAt
	if err := c.Bind(m); err != nil {
		return fail(c, http.StatusBadRequest, "error.bad_request")
	}
	m.ID, m.CreatedAt = id, created

	if err := h.catalog.UpdateMotorcycle(ctx, m); err != nil {
		return catalogError(c, err)
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handlers) MarkMotorcycleSold(c echo.Context) error {
	ctx := c.Request().Context()
	if err := h.catalog.MarkSold(ctx, c.Param("slug")); err != nil {
		return catalogError(c, err)
	}
	m, err := h.catalog.GetMotorcycle(ctx, c.Param("slug"))
	if err != nil {
		return catalogError(c, err)
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handlers) DeleteMotorcycle(c echo.Context) error {
	ctx := c.Request().Context()
	m, err := h.catalog.GetMotorcycle(ctx, c.Param("slug"))
	if err != nil {
		return catalogError(c, err)
	}
	if err := h.catalog.DeleteMotorcycle(ctx, m.ID); err != nil {
		return catalogError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Parts

func (h *Handlers) ListPartCategories(c echo.Context) error {
	cats, err := h.catalog.ListPartCategories(c.Request().Context())
	if err != nil {
		return catalogError(c, err)
	}
	return list(c, cats)
}

func (h *Handlers) CreatePartCategory(c echo.Context) error {
	var cat models.PartCategory
	if err := c.Bind(&cat); err != nil {
		return fail(c, http.StatusBadRequest, "error.bad_request")
	}
	cat.ID = 0
	if err := h.catalog.CreatePartCategory(c.Request().Context(), &cat); err != nil {
		return catalogError(c, err)
	}
	return c.JSON(http.StatusCreated, cat)
}

func (h *Handlers) ListParts(c echo.Context) error {
	q := newQuery(c)
	f := repository.PartFilter{
		CategorySlug: q.str("category"),
		Search:       q.str("search"),
	}
	if available := q.flag("available"); available != nil {
		f.AvailableOnly = *available
	}
	if len(q.invalid) > 0 {
		return invalid(c, q.invalid)
	}

	parts, err := h.catalog.ListParts(c.Request().Context(), f)
	if err != nil {
		return catalogError(c, err)
	}
	return list(c, parts)
}

func (h *Handlers) GetPart(c echo.Context) error {
	p, err := h.catalog.GetPart(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return catalogError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handlers) CreatePart(c echo.Context) error {
	var p models.Part
	if err := c.Bind(&p); err != nil {
		return fail(c, http.StatusBadRequest, "error.bad_request")
	}
	p.ID = 0
	if err := h.catalog.CreatePart(c.Request().Context(), &p); err != nil {
		return catalogError(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handlers) DeletePart(c echo.Context) error {
	ctx := c.Request().Context()
	p, err := h.catalog.GetPart(ctx, c.Param("slug"))
	if err != nil {
		return catalogError(c, err)
	}
	if err := h.catalog.DeletePart(ctx, p.ID); err != nil {
		return catalogError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Blog

func (h *Handlers) ListBlogCategories(c echo.Context) error {
	cats, err := h.catalog.ListBlogCategories(c.Request().Context())
	if err != nil {
		return catalogError(c, err)
	}
	return list(c, cats)
}

func (h *Handlers) CreateBlogCategory(c echo.Context) error {
	var cat models.BlogCategory
	if err := c.Bind(&cat); err != nil {
		return fail(c, http.StatusBadRequest, "error.bad_request")
	}
	cat.ID = 0
	if err := h.catalog.CreateBlogCategory(c.Request().Context(), &cat); err != nil {
		return catalogError(c, err)
	}
	return c.JSON(http.StatusCreated, cat)
}

// ListPosts lists published posts. Staff may pass drafts=true to include
// unpublished ones.
func (h *Handlers) ListPosts(c echo.Context) error {
	q := newQuery(c)
	f := repository.PostFilter{
		CategorySlug:  q.str("category"),
		Search:        q.str("search"),
		PublishedOnly: true,
	}
	if drafts := q.flag("drafts"); drafts != nil && *drafts && ctxauth.IsStaff(c.Request().Context()) {
		f.PublishedOnly = false
	}
	if len(q.invalid) > 0 {
		return invalid(c, q.invalid)
	}

	posts, err := h.catalog.ListPosts(c.Request().Context(), f)
	if err != nil {
		return catalogError(c, err)
	}
	return list(c, posts)
}

// GetPost returns a published post and counts the view.
func (h *Handlers) GetPost(c echo.Context) error {
	p, err := h.catalog.ReadPost(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return catalogError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handlers) CreatePost(c echo.Context) error {
	var p models.BlogPost
	if err := c.Bind(&p); err != nil {
		return fail(c, http.StatusBadRequest, "error.bad_request")
	}
	p.ID = 0
	ctx := c.Request().Context()
	if err := h.catalog.CreatePost(ctx, ctxauth.GetUser(ctx).ID, &p); err != nil {
		return catalogError(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handlers) UpdatePost(c echo.Context) error {
	ctx := c.Request().Context()
	p, err := h.catalog.GetPost(ctx, c.Param("slug"))
	if err != nil {
		return catalogError(c, err)
	}
	id, author, created, category := p.ID, p.AuthorID, p.CreatedAt, p.CategorySlug
	if err := c.Bind(p); err != nil {
		return fail(c, http.StatusBadRequest, "error.bad_request")
	}
	p.ID, p.AuthorID, p.CreatedAt = id, author, created
	if p.CategorySlug != category {
		p.CategoryID = 0
	}

	if err := h.catalog.UpdatePost(ctx, p); err != nil {
		return catalogError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handlers) DeletePost(c echo.Context) error {
	ctx := c.Request().Context()
	p, err := h.catalog.GetPost(ctx, c.Param("slug"))
	if err != nil {
		return catalogError(c, err)
	}
	if err := h.catalog.DeletePost(ctx, p.ID); err != nil {
		return catalogError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Garage

func (h *Handlers) GarageSettings(c echo.Context) error {
	settings, err := h.catalog.GarageSettings(c.Request().Context())
	if err != nil {
		return catalogError(c, err)
	}
	return c.JSON(http.StatusOK, settings)
}

// UpdateGarageSettings applies a partial update. Omitted fields keep their
// value.
func (h *Handlers) UpdateGarageSettings(c echo.Context) error {
	var patch catalog.GarageSettingsPatch
	if err := c.Bind(&patch); err != nil {
		return fail(c, http.StatusBadRequest, "error.bad_request")
	}
	settings, err := h.catalog.UpdateGarageSettings(c.Request().Context(), patch)
	if err != nil {
		return catalogError(c, err)
	}
	return c.JSON(http.StatusOK, settings)
}
