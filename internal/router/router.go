// Package router sets up all HTTP routes and middleware chains for the
// catalog manager. Routes split into the public read surface, the auth
// endpoints, and the admin API behind authentication and two-factor
// verification.
package router

import (
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	"partspress/internal/config"
	"partspress/internal/handlers"
	"partspress/internal/middleware"
	"partspress/internal/session"
)

// Handlers bundles the handler groups the router wires up.
type Handlers struct {
	Auth      *handlers.Auth
	Public    *handlers.Public
	Catalog   *handlers.Catalog
	Machines  *handlers.Machines
	ImageMaps *handlers.ImageMaps
	Imports   *handlers.Imports
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(cfg *config.Config, sessionStore *session.Store, loginLimiter *middleware.RateLimiter, h Handlers) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.LoadSession(sessionStore))

	// Health check and the public read surface the storefront consumes.
	r.Get("/health", h.Public.Health)
	r.Get("/api/status", h.Public.Status)
	r.Get("/api/search", h.Public.Search)
	r.Get("/api/main-products", h.Public.MainProducts)
	r.Get("/api/main-products/catalogs", h.Public.MainProductCatalogs)
	r.Get("/json/{file}", h.Public.ServeJSON)

	// Session endpoints.
	r.Route("/api/auth", func(r chi.Router) {
		r.With(loginLimiter.Middleware).Post("/login", h.Auth.Login)
		r.Post("/logout", h.Auth.Logout)
		r.Get("/me", h.Auth.Me)

		// TOTP enrollment needs a session but not a completed challenge.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Post("/totp/setup", h.Auth.TOTPSetup)
			r.Post("/totp/verify", h.Auth.TOTPVerify)
		})
	})

	// Admin API. Everything below requires a verified session.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Use(middleware.Require2FA)

		r.Route("/api/main-products/{key}/catalog-image", func(r chi.Router) {
			r.Post("/", h.Catalog.UploadCatalogImage)
			r.Delete("/", h.Catalog.DeleteCatalogImage)
		})

		r.Route("/api/categories", func(r chi.Router) {
			r.Get("/", h.Catalog.ListCategories)
			r.Post("/", h.Catalog.CreateCategory)
			r.Post("/update", h.Catalog.UpdateCategories)
			r.Delete("/{key}", h.Catalog.DeleteCategory)
		})

		r.Route("/api/products", func(r chi.Router) {
			r.Get("/", h.Catalog.ListProducts)
			r.Post("/", h.Catalog.CreateProduct)
			r.Post("/update", h.Catalog.UpdateProducts)
			r.Delete("/{sku}", h.Catalog.DeleteProduct)
			r.Post("/{sku}/categories", h.Catalog.AddProductLink)
			r.Delete("/{sku}/categories/{categoryKey}", h.Catalog.RemoveProductLink)
		})

		r.Route("/api/machine-categories", func(r chi.Router) {
			r.Get("/", h.Machines.List)
			r.Get("/hierarchy", h.Machines.Hierarchy)
			r.Post("/", h.Machines.Create)
			r.Post("/update", h.Machines.Update)
			r.Delete("/{id}", h.Machines.Delete)
			r.Post("/{id}/product-categories", h.Machines.AddLink)
			r.Delete("/{id}/product-categories/{categoryKey}", h.Machines.RemoveLink)
		})

		r.Route("/api/image-maps", func(r chi.Router) {
			r.Get("/", h.ImageMaps.List)
			r.Post("/", h.ImageMaps.Upsert)
			r.Get("/{key}", h.ImageMaps.Detail)
			r.Delete("/{key}", h.ImageMaps.Delete)
		})

		r.Route("/api/settings/price-currency", func(r chi.Router) {
			r.Get("/", h.Catalog.GetPriceCurrency)
			r.Post("/", h.Catalog.SetPriceCurrency)
		})

		r.Route("/api/language", func(r chi.Router) {
			r.Get("/categories", h.Catalog.LanguageCategories)
			r.Get("/products", h.Catalog.LanguageProducts)
			r.Post("/update", h.Catalog.UpdateLanguage)
		})

		r.Route("/api/import", func(r chi.Router) {
			r.Post("/products", h.Imports.Products)
			r.Post("/pricelist", h.Imports.Pricelist)
			r.Post("/legacy", h.Imports.Legacy)
			r.Post("/fix-parents", h.Imports.FixParents)
		})

		r.Post("/api/generate-json", h.Imports.GenerateJSON)
	})

	// Uploaded images are served by the app itself when object storage
	// is not configured; with S3 the stores return CDN URLs instead.
	if !cfg.HasS3() {
		imagesDir := filepath.Join(cfg.DataDir, "images")
		fs := http.StripPrefix("/images/", http.FileServer(http.Dir(imagesDir)))
		r.Get("/images/*", func(w http.ResponseWriter, req *http.Request) {
			fs.ServeHTTP(w, req)
		})
	}

	return r
}
