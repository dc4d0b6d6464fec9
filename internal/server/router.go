package server

import (
	"context"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/diewo77/blog-api/auth"
	"github.com/diewo77/blog-api/httpx"
	"github.com/diewo77/blog-api/internal/gate"
	"github.com/diewo77/blog-api/internal/handlers"
	"github.com/diewo77/blog-api/internal/middleware"
	"github.com/diewo77/blog-api/internal/models"
	"github.com/diewo77/blog-api/internal/policy"
)

// New constructs the root http.Handler with all routes and middlewares applied.
func New(db *gorm.DB) http.Handler {
	mux := http.NewServeMux()

	// Configure a user verifier so RequireAuth can ensure the user still
	// exists and is active. Cached so middleware doesn't hammer the DB.
	userActive := gate.NewCachedCheck(func(ctx context.Context, uid uint) bool {
		var count int64
		err := db.WithContext(ctx).Model(&models.User{}).
			Where("id = ? AND is_active = ?", uid, true).
			Limit(1).Count(&count).Error
		return err == nil && count > 0
	}, time.Minute)
	auth.SetUserVerifier(userActive.Check)

	ag := policy.NewAuthGate(db, 5*time.Minute)

	// --- Health endpoints ---
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		if err := db.Exec("SELECT 1").Error; err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Auth endpoints (public)
	authHandler := handlers.NewAuthHandler(db)
	authHandler.Register(mux)

	// protected = identity middleware + collection-level policy check.
	// Instance-level checks live in the handlers once the resource is loaded.
	protected := func(resourceType string, h http.HandlerFunc) http.Handler {
		return auth.Middleware(auth.RequireAuth(ag.Require(resourceType)(h)))
	}

	// Blog posts: author-or-read-only
	ph := handlers.NewPostHandler(db, ag)
	mux.Handle("GET /v1/posts", protected("post", ph.List))
	mux.Handle("POST /v1/posts", protected("post", ph.Create))
	mux.Handle("GET /v1/posts/{id}", protected("post", ph.Get))
	mux.Handle("PUT /v1/posts/{id}", protected("post", ph.Update))
	mux.Handle("PATCH /v1/posts/{id}", protected("post", ph.Update))
	mux.Handle("DELETE /v1/posts/{id}", protected("post", ph.Delete))
	mux.Handle("POST /v1/posts/{id}/publish", protected("post", ph.Publish))

	// Categories: any authenticated user
	ch := handlers.NewCategoryHandler(db)
	mux.Handle("GET /v1/categories", protected("category", ch.List))
	mux.Handle("POST /v1/categories", protected("category", ch.Create))
	mux.Handle("DELETE /v1/categories/{id}", protected("category", ch.Delete))

	// Accounts: staff only
	uh := handlers.NewUserHandler(db, ag)
	mux.Handle("GET /v1/users", protected("user", uh.List))
	mux.Handle("POST /v1/users", protected("user", uh.Create))
	mux.Handle("GET /v1/users/{id}", protected("user", uh.Get))
	mux.Handle("PUT /v1/users/{id}", protected("user", uh.Update))
	mux.Handle("PATCH /v1/users/{id}", protected("user", uh.Update))
	mux.Handle("DELETE /v1/users/{id}", protected("user", uh.Delete))

	// Bookstore catalog: any authenticated user
	bh := handlers.NewCatalogHandler(db)
	mux.Handle("GET /v1/books", protected("book", bh.ListBooks))
	mux.Handle("POST /v1/books", protected("book", bh.CreateBook))
	mux.Handle("GET /v1/books/{id}", protected("book", bh.GetBook))
	mux.Handle("PUT /v1/books/{id}", protected("book", bh.UpdateBook))
	mux.Handle("PATCH /v1/books/{id}", protected("book", bh.UpdateBook))
	mux.Handle("DELETE /v1/books/{id}", protected("book", bh.DeleteBook))
	mux.Handle("POST /v1/books/{id}/stock", protected("book", bh.AdjustStock))
	mux.Handle("GET /v1/authors", protected("book_author", bh.ListAuthors))
	mux.Handle("POST /v1/authors", protected("book_author", bh.CreateAuthor))
	mux.Handle("GET /v1/publishers", protected("publisher", bh.ListPublishers))
	mux.Handle("POST /v1/publishers", protected("publisher", bh.CreatePublisher))

	// Root placeholder
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"service": "blog-api", "docs": "/health"})
	})

	return middleware.RequestLog(middleware.Recover(mux))
}
