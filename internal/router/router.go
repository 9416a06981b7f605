package router

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"mc-console-api/internal/handler"
	"mc-console-api/internal/middleware"
	"mc-console-api/internal/ws"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// Config holds the configuration for creating a router.
type Config struct {
	Handler            *handler.Handler
	AccountHandler     *handler.AccountHandler
	ProxyHandler       *handler.ProxyHandler
	SpawnerHandler     *handler.SpawnerHandler
	AuthHandler        *handler.AuthHandler
	CredentialsHandler *handler.CredentialsHandler
	AdminHandler       *handler.AdminHandler
	Hub                *ws.Hub
	AccessGate         func(http.Handler) http.Handler

	StaticDir      string
	StaticBasePath string // normalized: leading slash, no trailing slash
}

// New creates and configures the HTTP router.
func New(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware stack (applies to ALL routes)
	r.Use(middleware.Recovery)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", "X-Session-Token"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// PUBLIC routes (no session required)
	if cfg.Handler != nil {
		r.Get("/api/status", cfg.Handler.Status)
		r.Get("/api/v1/health", cfg.Handler.Health)
	}
	if cfg.AuthHandler != nil {
		r.Post("/api/v1/auth/pin", cfg.AuthHandler.Unlock)
	}

	// Status event feed. The browser cannot attach headers to a WebSocket
	// upgrade, so the feed sits outside the gate, like the static bundle.
	if cfg.Hub != nil {
		r.Get("/ws", cfg.Hub.ServeHTTP)
	}

	// Console bundle (SPA) - public
	if cfg.StaticDir != "" {
		mountStatic(r, cfg.StaticDir, cfg.StaticBasePath)
	}

	// GATED routes (session token required)
	r.Group(func(r chi.Router) {
		if cfg.AccessGate != nil {
			r.Use(cfg.AccessGate)
		}

		r.Route("/api/v1", func(r chi.Router) {
			if cfg.AuthHandler != nil {
				r.Post("/auth/lock", cfg.AuthHandler.Lock)
			}

			if cfg.AccountHandler != nil {
				r.Route("/accounts", func(r chi.Router) {
					r.Get("/", cfg.AccountHandler.List)
					r.Post("/", cfg.AccountHandler.Create)
					r.Post("/check", cfg.AccountHandler.CheckNow)
					r.Route("/{id}", func(r chi.Router) {
						r.Get("/", cfg.AccountHandler.Get)
						r.Patch("/", cfg.AccountHandler.Update)
						r.Delete("/", cfg.AccountHandler.Delete)
						r.Get("/children", cfg.AccountHandler.Children)
						r.Put("/proxy", cfg.AccountHandler.AssignProxy)
						r.Get("/status", cfg.AccountHandler.Status)
					})
				})
			}

			if cfg.ProxyHandler != nil {
				r.Route("/proxies", func(r chi.Router) {
					r.Get("/", cfg.ProxyHandler.List)
					r.Post("/", cfg.ProxyHandler.Create)
					r.Patch("/{id}", cfg.ProxyHandler.Update)
					r.Delete("/{id}", cfg.ProxyHandler.Delete)
					r.Get("/{id}/occupancy", cfg.ProxyHandler.Occupancy)
				})
			}

			if cfg.SpawnerHandler != nil {
				r.Route("/spawners", func(r chi.Router) {
					r.Get("/", cfg.SpawnerHandler.List)
					r.Post("/", cfg.SpawnerHandler.Create)
					r.Delete("/{id}", cfg.SpawnerHandler.Delete)
				})
			}

			if cfg.CredentialsHandler != nil {
				r.Post("/credentials/parse", cfg.CredentialsHandler.Parse)
			}

			if cfg.AdminHandler != nil {
				r.Get("/admin/stats", cfg.AdminHandler.GetStats)
			}
		})
	})

	return r
}

// mountStatic serves the console bundle under basePath with an index.html
// fallback for SPA routes, and redirects the bare prefixes to basePath/.
func mountStatic(r *chi.Mux, dir, basePath string) {
	serve := spaHandler(dir, basePath)

	if basePath == "" {
		r.Get("/*", serve)
		return
	}

	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, basePath+"/", http.StatusFound)
	})
	r.Get(basePath, func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, basePath+"/", http.StatusFound)
	})
	r.Get(basePath+"/*", serve)
}

// spaHandler serves files from dir, falling back to index.html for paths
// that do not resolve to a file.
func spaHandler(dir, basePath string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rel := strings.TrimPrefix(r.URL.Path, basePath)
		rel = filepath.Clean("/" + rel)

		path := filepath.Join(dir, rel)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			http.ServeFile(w, r, path)
			return
		}

		index := filepath.Join(dir, "index.html")
		if _, err := os.Stat(index); err != nil {
			http.NotFound(w, r)
			return
		}
		http.ServeFile(w, r, index)
	}
}
