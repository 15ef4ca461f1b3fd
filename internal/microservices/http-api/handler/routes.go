package handler

import (
	"log/slog"
	"net/http"

	"elibrary/internal/metrics"
	"elibrary/internal/microservices/http-api/dto"
	"elibrary/internal/microservices/http-api/middleware"

	"github.com/gin-gonic/gin"
)

// Route binds one named operation to its method, path and handler.
type Route struct {
	Name          string
	Method        string
	Path          string
	Authenticated bool // requires an Identity Provider bearer token
	Handler       gin.HandlerFunc
}

// Routes is the static route table of the catalog API.
func Routes(books *BookHandler, users *UserHandler) []Route {
	return []Route{
		{Name: "books.list", Method: http.MethodGet, Path: "/books/all", Handler: books.List},
		{Name: "books.get", Method: http.MethodGet, Path: "/books/:book_id", Handler: books.Get},
		{Name: "books.add", Method: http.MethodPost, Path: "/books/add", Handler: books.Add},
		{Name: "books.update", Method: http.MethodPut, Path: "/books/update/:book_id", Handler: books.Update},
		{Name: "books.delete", Method: http.MethodDelete, Path: "/books/delete/:book_id", Handler: books.Delete},
		{Name: "books.borrow", Method: http.MethodPost, Path: "/books/borrow/:book_id", Authenticated: true, Handler: books.Borrow},
		// Return only clears borrowed_by, so it takes no identity.
		{Name: "books.return", Method: http.MethodPost, Path: "/books/return/:book_id", Handler: books.Return},
		{Name: "users.register", Method: http.MethodPost, Path: "/users/register", Handler: users.Register},
		{Name: "users.login", Method: http.MethodPost, Path: "/users/login", Handler: users.Login},
		{Name: "users.check", Method: http.MethodGet, Path: "/users/check/:username", Handler: users.CheckUsername},
	}
}

// Register installs routes on r. Authenticated routes get RequireIdentity first.
func Register(r gin.IRoutes, routes []Route, verifier *middleware.TokenVerifier) {
	for _, route := range routes {
		handlers := []gin.HandlerFunc{route.Handler}
		if route.Authenticated {
			handlers = append([]gin.HandlerFunc{middleware.RequireIdentity(verifier)}, handlers...)
		}
		r.Handle(route.Method, route.Path, handlers...)
	}
}

// RouterConfig carries everything NewRouter wires together.
type RouterConfig struct {
	Logger         *slog.Logger
	Books          *BookHandler
	Users          *UserHandler
	Health         *HealthHandler
	Verifier       *middleware.TokenVerifier
	RateLimiter    *middleware.RateLimiter // optional
	Metrics        metrics.Recorder
	MetricsHandler http.Handler // optional, served at /metrics
	CORSOrigins    []string
}

// NewRouter builds the gin engine with the middleware chain and every route.
func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true

	r.Use(
		middleware.RequestID(),
		middleware.Recovery(cfg.Logger),
		middleware.Logging(cfg.Logger),
		middleware.Metrics(cfg.Metrics),
		middleware.CORS(cfg.CORSOrigins),
	)

	r.GET("/healthz", cfg.Health.Check)
	if cfg.MetricsHandler != nil {
		r.GET("/metrics", gin.WrapH(cfg.MetricsHandler))
	}

	api := r.Group("")
	if cfg.RateLimiter != nil {
		api.Use(cfg.RateLimiter.Middleware(cfg.Logger))
	}
	Register(api, Routes(cfg.Books, cfg.Users), cfg.Verifier)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.Fail("route not found"))
	})
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, dto.Fail("method not allowed"))
	})

	return r
}
