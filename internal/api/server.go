package api

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/todmy/topic-groups/internal/auth"
	"github.com/todmy/topic-groups/internal/groups"
	"github.com/todmy/topic-groups/internal/storage"
)

const apiPrefix = "/api/v1"

// ServerConfig holds the dependencies of the HTTP server
type ServerConfig struct {
	Store          *storage.Store
	Auth           auth.Service
	AllowedOrigins []string
	// Dashboard carries the word cloud and bar chart sizes and the echarts
	// assets host; BasePath is filled per model.
	Dashboard groups.Options
}

type Server struct {
	router       *chi.Mux
	store        *storage.Store
	authService  auth.Service
	authHandlers *auth.Handlers
	dashboards   *dashboardCache
	dashOpts     groups.Options
}

func NewServer(cfg ServerConfig) *Server {
	r := chi.NewRouter()

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:*", "https://*"}
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	s := &Server{
		router:       r,
		store:        cfg.Store,
		authService:  cfg.Auth,
		authHandlers: auth.NewHandlers(cfg.Auth, modelDirectory{models: cfg.Store.Models}),
		dashboards:   newDashboardCache(),
		dashOpts:     cfg.Dashboard,
	}
	s.setupRoutes()

	return s
}

func (s *Server) setupRoutes() {
	// Health check
	s.router.Get("/health", s.handleHealth)

	s.router.Route(apiPrefix, func(r chi.Router) {
		// Auth routes (public)
		r.Post("/auth/register", s.authHandlers.Register)
		r.Post("/auth/login", s.authHandlers.Login)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(s.authService))
			r.Get("/auth/me", s.authHandlers.Me)

			r.Get("/models", s.handleListModels)
			r.Post("/models", s.handleCreateModel)
			r.With(auth.RequireModelOwner(modelDirectory{models: s.store.Models}, "modelID")).
				Delete("/models/{modelID}", s.handleDeleteModel)
		})

		// Dashboards are shareable by link
		r.Get("/models/{modelID}", s.handleGetModel)
		r.Get("/models/{modelID}/groups/similar", s.handleSimilarGroups)
		r.Mount("/models/{modelID}/groups", http.HandlerFunc(s.handleGroups))
	})
}

// ServeHTTP lets the server be used directly as an http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) Run(addr string) error {
	return http.ListenAndServe(addr, s.router)
}

// Helper to send JSON responses
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
