// Package web exposes the relay over HTTP: the provider webhook, the command
// endpoints called by the chat gateway, and a health probe.
package web

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	slogchi "github.com/samber/slog-chi"

	"github.com/btouchard/gitops/internal/bus"
	"github.com/btouchard/gitops/internal/subscription"
)

// Deps carries the collaborators the router needs.
type Deps struct {
	Bus           *bus.Bus
	Subscriptions *subscription.Service
}

// NewRouter builds the chi router with the standard middleware stack.
func NewRouter(deps Deps) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(slogchi.New(slog.Default()))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	h := &handler{bus: deps.Bus, subscriptions: deps.Subscriptions}

	r.Post("/publish", h.publish)

	r.Route("/commands", func(r chi.Router) {
		r.Post("/subscribe", h.subscribe)
		r.Post("/unsubscribe", h.unsubscribe)
		r.Post("/subscriptions", h.listSubscriptions)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	return r
}
