package ws

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"sjavs/internal/app"
	"sjavs/internal/metrics"
	"sjavs/internal/store"
)

// maxConnections caps concurrent sessions; each one costs two goroutines
// and an outbound buffer.
const maxConnections = 1024

// Hub tracks this instance's connected sessions and their match interest.
// It is the advisory, instance-scoped cache: the authoritative state lives
// in the shared store.
type Hub struct {
	svc *app.Service
	log *zap.Logger

	upgrader websocket.Upgrader

	mu           sync.RWMutex
	connections  map[string]*Session
	matchMembers map[string]map[string]struct{}
}

// NewHub builds the hub. allowedOrigin restricts upgrade requests; empty
// allows same-origin and non-browser clients only.
func NewHub(svc *app.Service, log *zap.Logger, allowedOrigin string) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	h := &Hub{
		svc:          svc,
		log:          log,
		connections:  make(map[string]*Session),
		matchMembers: make(map[string]map[string]struct{}),
	}
	h.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return originAllowed(r, allowedOrigin)
		},
	}
	return h
}

func originAllowed(r *http.Request, allowed string) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		// Non-browser client.
		return true
	}
	if allowed == "*" {
		return true
	}
	if allowed != "" && strings.EqualFold(origin, allowed) {
		return true
	}
	return strings.Contains(origin, r.Host)
}

// ServeWS upgrades an authenticated request into a session.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, userID string) {
	h.mu.RLock()
	count := len(h.connections)
	h.mu.RUnlock()
	if count >= maxConnections {
		http.Error(w, "server full", http.StatusServiceUnavailable)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	session := newSession(h, conn, userID)
	h.register(session)
	go session.writePump()
	go session.readPump()
}

// register installs the session, replacing any prior connection for the
// same user.
func (h *Hub) register(session *Session) {
	h.mu.Lock()
	prior := h.connections[session.userID]
	h.connections[session.userID] = session
	h.mu.Unlock()
	if prior != nil {
		prior.close()
	}
	metrics.ConnectionsActive.Inc()
	h.log.Info("session connected", zap.String("user_id", session.userID))
}

// unregister tears a session down: connection map, every match-members set,
// and with them the subscription interest.
func (h *Hub) unregister(session *Session) {
	h.mu.Lock()
	if current, ok := h.connections[session.userID]; ok && current == session {
		delete(h.connections, session.userID)
	}
	for matchID, members := range h.matchMembers {
		delete(members, session.userID)
		if len(members) == 0 {
			delete(h.matchMembers, matchID)
		}
	}
	h.mu.Unlock()
	metrics.ConnectionsActive.Dec()
	h.log.Info("session disconnected", zap.String("user_id", session.userID))
}

// addMatchMember records local interest in a match channel.
func (h *Hub) addMatchMember(matchID, userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.matchMembers[matchID]
	if !ok {
		members = make(map[string]struct{})
		h.matchMembers[matchID] = members
	}
	members[userID] = struct{}{}
}

// Channels implements store.Interest: one user channel per connection plus
// one match channel per match with local members.
func (h *Hub) Channels() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	channels := make([]string, 0, len(h.connections)+len(h.matchMembers))
	for userID := range h.connections {
		channels = append(channels, store.UserChannel(userID))
	}
	for matchID := range h.matchMembers {
		channels = append(channels, store.MatchChannel(matchID))
	}
	return channels
}

// Deliver implements store.Interest. Events arrive on both the match channel
// and the affected users' channels; the user channel is the delivery path
// for affected users, and the match channel covers local members the
// publisher did not address directly, so nobody sees a frame twice.
func (h *Hub) Deliver(channel string, payload []byte) {
	switch {
	case strings.HasPrefix(channel, "user:"):
		userID := strings.TrimPrefix(channel, "user:")
		h.send(userID, payload)
	case strings.HasPrefix(channel, "match:"):
		matchID := strings.TrimPrefix(channel, "match:")
		var envelope struct {
			AffectedPlayers []string `json:"affected_players"`
		}
		if err := json.Unmarshal(payload, &envelope); err != nil {
			h.log.Warn("undecodable event on match channel", zap.Error(err))
			return
		}
		affected := make(map[string]struct{}, len(envelope.AffectedPlayers))
		for _, userID := range envelope.AffectedPlayers {
			affected[userID] = struct{}{}
		}
		h.mu.RLock()
		var recipients []string
		for userID := range h.matchMembers[matchID] {
			if _, ok := affected[userID]; !ok {
				recipients = append(recipients, userID)
			}
		}
		h.mu.RUnlock()
		for _, userID := range recipients {
			h.send(userID, payload)
		}
	}
}

// send enqueues a frame on a user's outbound queue if they are connected
// here. A saturated queue marks the session stuck and drops it.
func (h *Hub) send(userID string, payload []byte) {
	h.mu.RLock()
	session := h.connections[userID]
	h.mu.RUnlock()
	if session == nil {
		return
	}
	if !session.enqueue(payload) {
		h.log.Warn("outbound queue saturated, dropping session",
			zap.String("user_id", userID))
		session.close()
	}
}
