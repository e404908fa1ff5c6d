package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"studymate-backend/internal/handlers"
	"studymate-backend/internal/logger"
	"studymate-backend/internal/middleware"
	"studymate-backend/internal/websocket"
)

type Handlers struct {
	Auth    *handlers.AuthHandler
	Session *handlers.SessionHandler
	Content *handlers.ContentHandler
	Export  *handlers.ExportHandler
	Plan    *handlers.PlanHandler
	Chat    *handlers.ChatHandler
}

// New builds the HTTP handler. The returned func stops the auth rate
// limiter's background sweep.
func New(
	jwtAuth *middleware.JWTAuth,
	h Handlers,
	wsHub *websocket.Hub,
	frontendURL string,
	authRatePerMinute int,
	log *logger.Logger,
) (http.Handler, func()) {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.AccessLog(log))
	r.Use(middleware.Recoverer(log))
	r.Use(middleware.CORS(frontendURL))

	authLimiter := middleware.NewRateLimiter(authRatePerMinute, time.Minute)

	r.Get("/health", handlers.Health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/test", handlers.ConnectionTest)

		// ──── Auth Routes (public) ────
		r.Group(func(r chi.Router) {
			r.Use(authLimiter.Middleware)
			r.Post("/register", h.Auth.Register)
			r.Post("/login", h.Auth.Login)
		})

		// ──── Stateless Routes (public) ────
		r.Post("/generate-pdf", h.Export.GeneratePDF)
		r.Post("/download-flashcards", h.Export.DownloadFlashcards)
		r.Post("/chat", h.Chat.Chat)

		// Authenticates through the token query parameter.
		r.Get("/ws", wsHub.HandleWebSocket)

		// ──── Protected Routes ────
		r.Group(func(r chi.Router) {
			r.Use(jwtAuth.Middleware)

			r.Post("/logout", h.Auth.Logout)
			r.Get("/user/me", h.Auth.GetMe)
			r.Delete("/user/me", h.Auth.DeleteMe)

			r.Get("/sessions", h.Session.List)
			r.Get("/sessions/{id}", h.Session.Get)
			r.Delete("/sessions/{id}", h.Session.Delete)

			r.Post("/get-content", h.Content.GetContent)
			r.Post("/generate-quiz", h.Content.GenerateQuiz)
			r.Post("/generate-flashcards", h.Content.GenerateFlashcards)

			r.Post("/study-plan", h.Plan.Create)
			r.Get("/study-plan", h.Plan.List)
			r.Delete("/study-plan/{id}", h.Plan.Delete)
		})
	})

	return r, authLimiter.Stop
}
