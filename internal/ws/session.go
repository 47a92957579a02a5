package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"sjavs/internal/app"
	"sjavs/internal/metrics"
)

const (
	readTimeout   = 60 * time.Second
	pingInterval  = 54 * time.Second
	writeTimeout  = 10 * time.Second
	readLimit     = 8192
	sendQueueSize = 128
)

// Session is one connected client: a receive loop decoding command
// envelopes and an outbound pump draining the bounded queue. The two tasks
// are independently cancellable; either failing tears the session down.
type Session struct {
	hub    *Hub
	conn   *websocket.Conn
	userID string
	send   chan []byte
	done   chan struct{}
	once   sync.Once
}

func newSession(hub *Hub, conn *websocket.Conn, userID string) *Session {
	return &Session{
		hub:    hub,
		conn:   conn,
		userID: userID,
		send:   make(chan []byte, sendQueueSize),
		done:   make(chan struct{}),
	}
}

// enqueue offers a frame to the outbound queue without blocking the caller
// beyond the queue depth.
func (s *Session) enqueue(payload []byte) bool {
	select {
	case s.send <- payload:
		return true
	case <-s.done:
		return false
	default:
		return false
	}
}

// close begins teardown; safe to call from any task.
func (s *Session) close() {
	s.once.Do(func() {
		close(s.done)
		s.conn.Close()
	})
}

// readPump is the single-threaded inbound decoder: commands from one client
// are processed in send order.
func (s *Session) readPump() {
	defer func() {
		s.hub.unregister(s)
		s.close()
	}()

	s.conn.SetReadLimit(readLimit)
	s.conn.SetReadDeadline(time.Now().Add(readTimeout))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(readTimeout))
		return nil
	})

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.hub.log.Warn("websocket read failed",
					zap.String("user_id", s.userID), zap.Error(err))
			}
			return
		}
		var msg ClientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			s.sendError("bad_envelope", "message is not a command envelope")
			continue
		}
		s.handleMessage(msg)
	}
}

// writePump drains the outbound queue to the wire and keeps the connection
// alive with pings. A failed write terminates the session.
func (s *Session) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		s.close()
	}()

	for {
		select {
		case <-s.done:
			return
		case payload := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := s.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage demuxes one inbound envelope.
func (s *Session) handleMessage(msg ClientMessage) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	metrics.CommandsTotal.WithLabelValues("ws_" + msg.Event).Inc()

	switch msg.Event {
	case msgJoin:
		s.handleJoin(ctx)
	case msgTeamUpRequest, msgTeamUpResponse:
		s.handleTeamUp(ctx, msg)
	case msgCreateMatch:
		var data struct {
			Username string `json:"username"`
		}
		json.Unmarshal(msg.Data, &data)
		m, err := s.hub.svc.CreateMatch(ctx, s.userID, data.Username)
		var reply map[string]any
		if m != nil {
			reply = map[string]any{"game_id": m.ID, "pin": m.PIN, "state": string(m.Status)}
		}
		s.reply(msg.Event, err, reply)
	case msgJoinMatch:
		var data struct {
			Username string `json:"username"`
			PIN      string `json:"pin"`
		}
		json.Unmarshal(msg.Data, &data)
		m, err := s.hub.svc.JoinMatch(ctx, s.userID, data.Username, data.PIN)
		var reply map[string]any
		if m != nil {
			reply = map[string]any{"game_id": m.ID, "state": string(m.Status)}
		}
		s.reply(msg.Event, err, reply)
	case msgLeaveMatch:
		err := s.hub.svc.LeaveMatch(ctx, s.userID)
		s.reply(msg.Event, err, nil)
	case msgStartGame:
		_, err := s.hub.svc.StartGame(ctx, s.userID)
		s.reply(msg.Event, err, nil)
	case msgBid:
		var data struct {
			Length int    `json:"length"`
			Suit   string `json:"suit"`
		}
		json.Unmarshal(msg.Data, &data)
		err := s.hub.svc.MakeBid(ctx, s.userID, data.Length, data.Suit)
		s.reply(msg.Event, err, nil)
	case msgPass:
		err := s.hub.svc.PassBid(ctx, s.userID)
		s.reply(msg.Event, err, nil)
	case msgPlayCard:
		var data struct {
			Card string `json:"card"`
		}
		json.Unmarshal(msg.Data, &data)
		_, err := s.hub.svc.PlayCard(ctx, s.userID, data.Card)
		s.reply(msg.Event, err, nil)
	case msgCompleteGame:
		result, err := s.hub.svc.CompleteGame(ctx, s.userID)
		s.reply(msg.Event, err, result)
	default:
		s.sendError("unknown_event", "unrecognized event "+msg.Event)
	}
}

// handleJoin subscribes the session to its match and sends the phase
// snapshot.
func (s *Session) handleJoin(ctx context.Context) {
	snapshot, err := s.hub.svc.SnapshotForUser(ctx, s.userID)
	if err != nil {
		s.sendError(string(app.KindOf(err)), app.MessageOf(err))
		return
	}
	s.hub.addMatchMember(snapshot.GameID, s.userID)
	payload, err := json.Marshal(snapshot)
	if err != nil {
		s.hub.log.Error("snapshot encode failed", zap.Error(err))
		return
	}
	s.enqueue(payload)
}

func (s *Session) handleTeamUp(ctx context.Context, msg ClientMessage) {
	var data struct {
		ToPlayer string `json:"to_player"`
		Accepted *bool  `json:"accepted,omitempty"`
	}
	json.Unmarshal(msg.Data, &data)
	err := s.hub.svc.RelayTeamUp(ctx, msg.Event, s.userID, data.ToPlayer, data.Accepted)
	s.reply(msg.Event, err, nil)
}

// reply acknowledges a command or reports its classified error.
func (s *Session) reply(event string, err error, data any) {
	if err != nil {
		metrics.CommandErrors.WithLabelValues("ws_" + event).Inc()
		s.sendError(string(app.KindOf(err)), app.MessageOf(err))
		return
	}
	s.sendJSON(serverMessage{Event: event + "_ok", Data: data})
}

func (s *Session) sendError(code, message string) {
	s.sendJSON(serverMessage{Event: "error", Error: code, Message: message})
}

func (s *Session) sendJSON(msg serverMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}
	s.enqueue(payload)
}
