/*
Package handler provides the HTTP handlers and routing setup for the ThinkSync server.

This file defines the main Router, applying necessary middleware like logging, CORS,
and IP-based rate limiting before delegating requests to specific handlers (API and WebSocket).
*/
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"thinksync/internal/pkg/auth/jwt"
	"thinksync/internal/pkg/limiter"
	"thinksync/internal/pkg/logx"
	"thinksync/internal/pkg/metrics"
	"thinksync/internal/pkg/resp"
)

const (
	CreateRate  = 0.1
	CreateBurst = 3
	WSRate      = 0.2
	WSBurst     = 5
)

// Router sets up the main HTTP routing table (chi.Router) for the application.
// It initializes IP-based rate limiters, configures CORS, and applies global and per-route middleware.
// It requires the realtime.Coordinator for fanout and the AppConfig for settings (like allowed origins).
func Router(deps *AppDeps) http.Handler {
	createLimiter := limiter.NewIPRateLimiter(rate.Limit(CreateRate), CreateBurst)
	wsLimiter := limiter.NewIPRateLimiter(rate.Limit(WSRate), WSBurst)

	r := chi.NewRouter()

	allowedOrigins := make(map[string]struct{})
	for _, origin := range deps.Config.AllowedOrigins {
		allowedOrigins[origin] = struct{}{}
	}

	var wsUpgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if deps.Config.Environment == "development" {
				return true
			}

			origin := r.Header.Get("Origin")
			if _, ok := allowedOrigins[origin]; ok {
				return true
			}

			logx.Warn("WebSocket connection rejected: Origin not allowed.", "origin", origin)
			return false
		},
	}

	corsAllowedOrigins := []string{}
	if deps.Config.Environment == "development" {
		corsAllowedOrigins = []string{"*"}
	} else if len(deps.Config.AllowedOrigins) > 0 {
		corsAllowedOrigins = deps.Config.AllowedOrigins
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   corsAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{},
		AllowCredentials: true,
		MaxAge:           300,
	})
	r.Use(c.Handler)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logx.RequestLogger())
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		data := map[string]string{
			"status":  "ok",
			"service": "ThinkSync Server",
		}
		resp.RespondSuccess(w, r, data)
	})

	r.Method("GET", "/metrics", metrics.Handler())

	r.Route("/api", func(api chi.Router) {
		api.Use(jwt.IdentityExtractorMiddleware(deps.Config.JWTSecret))

		api.Route("/auth", func(auth chi.Router) {
			auth.Post("/register", HandleRegister(deps))
			auth.Post("/login", HandleLogin(deps))
			auth.Get("/me", HandleGetCurrentUser(deps))
		})

		api.Route("/boards", func(boards chi.Router) {
			boards.Get("/", HandleListBoards(deps))
			boards.Post("/", createLimiter.Middleware(HandleCreateBoard(deps)).ServeHTTP)
			boards.Get("/{id}", HandleGetBoard(deps))
			boards.Put("/{id}", HandleUpdateBoard(deps))
			boards.Delete("/{id}", HandleDeleteBoard(deps))
			boards.Post("/{id}/collaborators", HandleAddBoardCollaborator(deps))
			boards.Delete("/{id}/collaborators/{userId}", HandleRemoveBoardCollaborator(deps))
		})

		api.Route("/mindmaps", func(maps chi.Router) {
			maps.Get("/", HandleListMindMaps(deps))
			maps.Post("/", createLimiter.Middleware(HandleCreateMindMap(deps)).ServeHTTP)
			maps.Get("/{id}", HandleGetMindMap(deps))
			maps.Put("/{id}", HandleUpdateMindMap(deps))
			maps.Delete("/{id}", HandleDeleteMindMap(deps))
			maps.Post("/{id}/collaborators", HandleAddMindMapCollaborator(deps))
			maps.Delete("/{id}/collaborators/{userId}", HandleRemoveMindMapCollaborator(deps))
		})

		api.Route("/exports", func(exports chi.Router) {
			exports.Post("/boards/{id}/presign-upload", HandlePresignSnapshotUpload(deps))
			exports.Get("/boards/{id}/presign-download", HandlePresignSnapshotDownload(deps))
			exports.Delete("/boards/{id}/snapshot", HandleDeleteSnapshot(deps))
		})
	})

	r.Get("/ws", HandleWebSocket(wsUpgrader, wsLimiter, deps))

	return r
}
