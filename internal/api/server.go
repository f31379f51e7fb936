package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/byway-labs/byway-gateway/internal/authoring"
	"github.com/byway-labs/byway-gateway/internal/cart"
	"github.com/byway-labs/byway-gateway/internal/catalog"
	"github.com/byway-labs/byway-gateway/internal/config"
	"github.com/byway-labs/byway-gateway/internal/normalize"
	"github.com/byway-labs/byway-gateway/internal/notify"
	"github.com/byway-labs/byway-gateway/internal/session"
	"github.com/byway-labs/byway-gateway/internal/upstream"
)

// Server represents the storefront HTTP API server
type Server struct {
	config   config.ServerConfig
	router   *chi.Mux
	catalog  *catalog.Controller
	cart     *cart.Orchestrator
	wizard   *authoring.Wizard
	sessions *session.Store
	upstream *upstream.Client
	mapper   *normalize.Mapper
	hub      *notify.Hub
}

// NewServer creates a new API server
func NewServer(
	cfg config.ServerConfig,
	controller *catalog.Controller,
	orchestrator *cart.Orchestrator,
	wizard *authoring.Wizard,
	sessions *session.Store,
	client *upstream.Client,
	mapper *normalize.Mapper,
	hub *notify.Hub,
) *Server {
	s := &Server{
		config:   cfg,
		catalog:  controller,
		cart:     orchestrator,
		wizard:   wizard,
		sessions: sessions,
		upstream: client,
		mapper:   mapper,
		hub:      hub,
	}
	s.setupRouter()
	return s
}

// Router returns the configured router
func (s *Server) Router() http.Handler {
	return s.router
}

// setupRouter configures all routes and middleware
func (s *Server) setupRouter() {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", "X-Session-Id"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check (public)
	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	// Notification stream (public; events carry no secrets)
	r.Get("/ws/notifications", s.handleNotificationsWS)

	r.Route("/api/v1", func(r chi.Router) {
		// Session is attached when present but not required on the
		// public storefront surface.
		r.Use(s.withSession)

		// Auth
		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/logout", s.handleLogout)
		r.Get("/auth/me", s.handleMe)

		// Catalog browsing
		r.Route("/catalog", func(r chi.Router) {
			r.Get("/", s.handleCatalogStatus)
			r.Get("/courses", s.handleListCourses)
			r.Get("/courses/{id}", s.handleGetCourse)
			r.Get("/categories", s.handleListCategories)
			r.Get("/categories/top", s.handleTopCategories)
			r.Get("/instructors", s.handleListInstructors)
			r.Get("/instructors/{id}", s.handleGetInstructor)
			r.Get("/top/courses", s.handleTopCourses)
			r.Get("/top/instructors", s.handleTopInstructors)
		})

		// Cart and checkout (session required)
		r.Route("/cart", func(r chi.Router) {
			r.Use(s.requireSession)
			r.Get("/", s.handleGetCart)
			r.Post("/items/{courseId}", s.handleAddToCart)
			r.Delete("/items/{courseId}", s.handleRemoveFromCart)
		})
		r.With(s.requireSession).Post("/checkout", s.handleCheckout)

		// Course authoring wizard (session required)
		r.Route("/authoring", func(r chi.Router) {
			r.Use(s.requireSession)
			r.Post("/begin", s.handleWizardBegin)
			r.Post("/begin/{courseId}", s.handleWizardBeginUpdate)
			r.Get("/draft", s.handleWizardDraft)
			r.Put("/step1", s.handleWizardStep1)
			r.Put("/contents", s.handleWizardContents)
			r.Post("/submit", s.handleWizardSubmit)
			r.Delete("/draft", s.handleWizardCancel)
		})

		// Admin dashboard (session required)
		r.Route("/admin", func(r chi.Router) {
			r.Use(s.requireSession)
			r.Get("/summary", s.handleAdminSummary)
			r.Post("/catalog/refresh", s.handleCatalogRefresh)
			r.Delete("/courses/{id}", s.handleDeleteCourse)
			r.Post("/instructors", s.handleCreateInstructor)
			r.Put("/instructors/{id}", s.handleUpdateInstructor)
			r.Delete("/instructors/{id}", s.handleDeleteInstructor)
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
