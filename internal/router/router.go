package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"gemchat-backend/internal/handlers"
	"gemchat-backend/internal/middleware"
	"gemchat-backend/internal/websocket"
)

func New(
	sessionAuth *middleware.SessionAuth,
	limiter *middleware.RateLimiter,
	sessionHandler *handlers.SessionHandler,
	chatHandler *handlers.ChatHandler,
	exportHandler *handlers.ExportHandler,
	wsHub *websocket.Hub,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {

		// ──── Session lifecycle (public) ────
		r.With(limiter.Middleware).Post("/sessions", sessionHandler.Create)

		// ──── Current session ────
		r.Route("/session", func(r chi.Router) {
			r.Use(sessionAuth.Middleware)
			r.Get("/", sessionHandler.Get)
			r.Delete("/", sessionHandler.Destroy)

			r.Get("/transcript", chatHandler.Transcript)
			r.With(limiter.Middleware).Post("/messages", chatHandler.SendMessage)
			r.Post("/new", chatHandler.NewConversation)
			r.Post("/clear", chatHandler.ClearAll)

			r.Get("/archive", chatHandler.ListArchive)
			r.Get("/archive/{index}", chatHandler.GetArchived)
			r.Get("/export", exportHandler.Export)
		})

		// ──── Stored exports ────
		r.Route("/exports", func(r chi.Router) {
			r.Use(sessionAuth.Middleware)
			r.Get("/{id}", exportHandler.Get)
		})

		// ──── WebSocket ────
		r.Get("/ws", wsHub.HandleWebSocket)
	})

	return r
}
