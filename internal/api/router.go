package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"sjavs/internal/app"
	"sjavs/internal/auth"
	"sjavs/internal/ws"
)

type contextKey string

const identityKey contextKey = "identity"

// Server is the HTTP transport for the command surface.
type Server struct {
	svc      *app.Service
	hub      *ws.Hub
	verifier auth.Verifier
	log      *zap.Logger
}

// NewServer wires the transport.
func NewServer(svc *app.Service, hub *ws.Hub, verifier auth.Verifier, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{svc: svc, hub: hub, verifier: verifier, log: log}
}

// Router builds the route tree.
func (s *Server) Router(allowedOrigin string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{allowedOrigin},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(s.authenticate)

		r.Post("/match", s.handleCreateMatch)
		r.Post("/match/join", s.handleJoinMatch)
		r.Post("/match/leave", s.handleLeaveMatch)

		r.Post("/game/start", s.handleStartGame)
		r.Get("/game/hand", s.handleGetHand)
		r.Post("/game/bid", s.handleBid)
		r.Post("/game/pass", s.handlePass)
		r.Post("/game/play-card", s.handlePlayCard)
		r.Get("/game/trick", s.handleGetTrick)
		r.Post("/game/complete", s.handleCompleteGame)
		r.Get("/game/score", s.handleGetScore)

		r.Get("/ws", s.handleWebSocket)
	})

	return r
}

// authenticate resolves the bearer token (Authorization header, or the
// token query parameter for websocket upgrades) into an identity.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		identity, err := s.verifier.Verify(r.Context(), token)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, errorBody{
				Error:   string(app.KindNotAuthenticated),
				Message: "missing or invalid bearer token",
			})
			return
		}
		ctx := context.WithValue(r.Context(), identityKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return r.URL.Query().Get("token")
}

// identityFrom returns the authenticated identity installed by the
// middleware.
func identityFrom(r *http.Request) auth.Identity {
	identity, _ := r.Context().Value(identityKey).(auth.Identity)
	return identity
}

// handleWebSocket upgrades the authenticated request into a session.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r)
	s.hub.ServeWS(w, r, identity.UserID)
}
