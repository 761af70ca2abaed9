// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"github.com/labstack/echo/v4"
	mw "github.com/mauricehans/moto/internal/middleware"
)

func setupRoutes(e *echo.Echo, app *App) {
	h := app.handlers()
	l := app.Limiter
	limits := app.Limits

	e.GET("/health", h.Health)
	e.GET("/api/status", h.Status)

	// Authentication
	e.POST("/login", h.Login, mw.RateLimit(l, "login_ip", limits.LoginIP))
	e.POST("/login/refresh", h.Refresh, mw.RateLimit(l, "refresh_ip", limits.LoginIP))

	// Credential recovery
	admin := e.Group("/admin")
	admin.POST("/password-reset", h.RequestReset, mw.RateLimit(l, "reset_ip", limits.ResetIP))
	admin.POST("/password-reset/:uid/:token", h.ConfirmReset, mw.RateLimit(l, "reset_confirm_ip", limits.ResetConfirmIP))
	admin.GET("/password-reset/metrics", h.Metrics, mw.RequireStaff)
	admin.POST("/otp/request", h.RequestOTP, mw.RateLimit(l, "otp_ip", limits.OTPIP))
	admin.POST("/otp/confirm", h.ConfirmOTP, mw.RateLimit(l, "otp_confirm_ip", limits.OTPConfirmIP))

	// Superadmin
	admin.GET("/admins", h.ListAdmins, mw.RequireSuperadmin)
	admin.POST("/admins", h.CreateAdmin, mw.RequireSuperadmin)
	admin.DELETE("/admins/:id", h.DeleteAdmin, mw.RequireSuperadmin)

	api := e.Group("/api/v1")

	// Motorcycles
	api.GET("/motorcycles", h.ListMotorcycles)
	api.POST("/motorcycles", h.CreateMotorcycle, mw.RequireStaff)
	api.GET("/motorcycles/featured", h.FeaturedMotorcycles)
	api.GET("/motorcycles/stats", h.MotorcycleStats)
	api.GET("/motorcycles/:slug", h.GetMotorcycle)
	api.PUT("/motorcycles/:slug", h.UpdateMotorcycle, mw.RequireStaff)
	api.DELETE("/motorcycles/:slug", h.DeleteMotorcycle, mw.RequireStaff)
	api.POST("/motorcycles/:slug/mark-sold", h.MarkMotorcycleSold, mw.RequireStaff)

	// Parts
	api.GET("/parts/categories", h.ListPartCategories)
	api.POST("/parts/categories", h.CreatePartCategory, mw.RequireStaff)
	api.GET("/parts", h.ListParts)
	api.POST("/parts", h.CreatePart, mw.RequireStaff)
	api.GET("/parts/:slug", h.GetPart)
	api.DELETE("/parts/:slug", h.DeletePart, mw.RequireStaff)

	// Blog
	api.GET("/blog/categories", h.ListBlogCategories)
	api.POST("/blog/categories", h.CreateBlogCategory, mw.RequireStaff)
	api.GET("/blog/posts", h.ListPosts)
	api.POST("/blog/posts", h.CreatePost, mw.RequireStaff)
	api.GET("/blog/posts/:slug", h.GetPost)
	api.PUT("/blog/posts/:slug", h.UpdatePost, mw.RequireStaff)
	api.DELETE("/blog/posts/:slug", h.DeletePost, mw.RequireStaff)

	// Garage
	api.GET("/garage/settings", h.GarageSettings)
	api.PUT("/garage/settings", h.UpdateGarageSettings, mw.RequireStaff)
}
