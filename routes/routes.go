package routes

import (
	"net/http"

	"github.com/coyotecrew/camporee-collator/docs"
	"github.com/coyotecrew/camporee-collator/handlers"
	"github.com/coyotecrew/camporee-collator/middleware"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Handlers struct {
	Score     *handlers.ScoreHandler
	Entity    *handlers.EntityHandler
	Catalog   *handlers.CatalogHandler
	Admin     *handlers.AdminHandler
	WebSocket *handlers.WebSocketHandler
}

// SetupRoutes wires the judge-device API, the admin surface, and the live
// scoreboard onto the router.
func SetupRoutes(router *chi.Mux, h Handlers, jwtSecret string, allowedOrigins []string) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)

	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Catalog is served at the root so devices can fetch it like a static file.
	router.Get("/games.json", h.Catalog.GetGames)

	router.Route("/api", func(r chi.Router) {
		r.Post("/scores", h.Score.SubmitScore)
		r.Get("/scores/{gameID}", h.Score.ListByGame)

		r.Get("/entities", h.Entity.ListEntities)
		r.Post("/entities", h.Entity.CreateEntity)

		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", h.Admin.Login)

			r.Group(func(r chi.Router) {
				r.Use(middleware.AdminAuth(jwtSecret))
				r.Post("/full-reset", h.Admin.FullReset)
				r.Post("/reset-scores", h.Admin.ResetScores)
				r.Get("/roster", h.Admin.Roster)
				r.Post("/export", h.Admin.Export)
				r.Post("/reload-games", h.Catalog.ReloadGames)
			})
		})
	})

	router.Get("/ws/scoreboard/{gameID}", h.WebSocket.Scoreboard)

	router.Get("/docs/openapi.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(docs.OpenAPISpec)
	})
	router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/openapi.json"),
	))
}
