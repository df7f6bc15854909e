package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/PM183/Bloom/internal/config"
	assistantHandler "github.com/PM183/Bloom/internal/handler/assistant"
	relayHandler "github.com/PM183/Bloom/internal/handler/relay"
	sessionHandler "github.com/PM183/Bloom/internal/handler/session"
	speechHandler "github.com/PM183/Bloom/internal/handler/speech"
	middlewarePkg "github.com/PM183/Bloom/internal/middleware"
	assistantModel "github.com/PM183/Bloom/internal/model/assistant"
	sessionService "github.com/PM183/Bloom/internal/service/session"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(relayCfg config.RelayConfig, profile assistantModel.Profile, sessionSvc *sessionService.Service, hub *speechHandler.Hub, speechEnabled bool) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	r.Route("/api", func(api chi.Router) {
		relayHandler.New(relayCfg).RegisterRoutes(api)
		assistantHandler.New(profile).RegisterRoutes(api)
		sessionHandler.New(sessionSvc).RegisterRoutes(api)
		speechHandler.New(hub, sessionSvc, speechEnabled).RegisterRoutes(api)
	})

	return r
}
