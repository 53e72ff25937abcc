package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/terra-clan/unicorn-emporium/internal/academy"
	"github.com/terra-clan/unicorn-emporium/internal/config"
	"github.com/terra-clan/unicorn-emporium/internal/models"
	"github.com/terra-clan/unicorn-emporium/internal/storage"
)

// Server represents the HTTP API server
type Server struct {
	config         config.ServerConfig
	router         *chi.Mux
	repo           storage.Repository
	academy        *academy.Loader
	feed           *OrderFeed
	authMiddleware *AuthMiddleware
}

// NewServer creates a new API server
func NewServer(
	cfg config.ServerConfig,
	repo storage.Repository,
	loader *academy.Loader,
	feed *OrderFeed,
) *Server {
	if feed == nil {
		feed = NewOrderFeed()
	}

	s := &Server{
		config:         cfg,
		repo:           repo,
		academy:        loader,
		feed:           feed,
		authMiddleware: NewAuthMiddleware(repo),
	}
	s.setupRouter()
	return s
}

// Router returns the configured router
func (s *Server) Router() http.Handler {
	return s.router
}

// Feed returns the live order feed
func (s *Server) Feed() *OrderFeed {
	return s.feed
}

// setupRouter configures all routes and middleware
func (s *Server) setupRouter() {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-API-Key", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	auth := s.authMiddleware
	timeout := middleware.Timeout(60 * time.Second)

	r.Route("/api", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Use(timeout)
			r.Get("/", s.handleListProducts)
			r.Get("/{id}", s.handleGetProduct)
			r.Get("/category/{category}", s.handleListProductsByCategory)
			r.With(auth.Authenticate, auth.RequirePermission(models.PermProductsWrite)).
				Post("/", s.handleCreateProduct)
		})

		r.Route("/orders", func(r chi.Router) {
			// long-lived, so it stays outside the timeout group
			r.With(auth.Authenticate, auth.RequirePermission(models.PermOrdersRead)).
				Get("/feed", s.handleOrderFeed)

			r.Group(func(r chi.Router) {
				r.Use(timeout)
				r.Post("/", s.handleCreateOrder)
				r.Get("/{id}", s.handleGetOrder)
				r.With(auth.Authenticate, auth.RequirePermission(models.PermOrdersRead)).
					Get("/", s.handleListOrders)
				r.With(auth.Authenticate, auth.RequirePermission(models.PermOrdersRead)).
					Get("/email/{email}", s.handleListOrdersByEmail)
			})
		})

		r.Route("/academy", func(r chi.Router) {
			r.Use(timeout)
			r.Get("/modules", s.handleListModules)
			r.Get("/modules/{id}", s.handleGetModule)
			r.Get("/quiz", s.handleGetQuiz)
			r.Post("/quiz/score", s.handleScoreQuiz)
		})
	})

	s.router = r
}

// loggingMiddleware logs HTTP requests using slog
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			slog.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
				"remote_addr", r.RemoteAddr,
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
