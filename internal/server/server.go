// Package server exposes the chat and intimacy API over HTTP.
package server

import (
	"context"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/easeaico/tsukuyomi/internal/chat"
	"github.com/easeaico/tsukuyomi/internal/metrics"
	"github.com/easeaico/tsukuyomi/internal/types"
)

// Chatter runs chat turns.
type Chatter interface {
	Reply(ctx context.Context, userID, message string) (chat.Response, error)
	ClearSession(userID string)
}

// Memory is the long-term state the API reads and resets.
type Memory interface {
	GetState(ctx context.Context, userID string) types.State
	Adjust(ctx context.Context, userID string, amount int) int
	Clear(ctx context.Context, userID string) error
}

// Options wires the router.
type Options struct {
	Chat         Chatter
	Memory       Memory
	Metrics      *metrics.Recorder
	SessionKey   string
	StaticDir    string
	TemplatesDir string
}

// NewRouter returns the HTTP handler for the whole API.
func NewRouter(opts Options) http.Handler {
	h := &handlers{chat: opts.Chat, memory: opts.Memory}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(recoverer)
	r.Use(cors.New(cors.Options{
		AllowOriginFunc:  func(string) bool { return true },
		AllowCredentials: true,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
	}).Handler)

	r.Get("/health", h.health)
	r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())

	if opts.StaticDir != "" {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(opts.StaticDir))))
	}
	if opts.TemplatesDir != "" {
		r.Handle("/templates/*", http.StripPrefix("/templates/", http.FileServer(http.Dir(opts.TemplatesDir))))
		index := filepath.Join(opts.TemplatesDir, "index.html")
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.ServeFile(w, r, index)
		})
	}

	r.Group(func(r chi.Router) {
		r.Use(sessionMiddleware(newSessionCodec(opts.SessionKey, sessionMaxAge)))
		r.Post("/chat", h.chatTurn)
		r.Get("/get_intimacy", h.getIntimacy)
		r.Post("/update_intimacy", h.updateIntimacy)
		r.Post("/clear_session", h.clearSession)
		r.Post("/clear_memory", h.clearMemory)
	})

	return r
}
