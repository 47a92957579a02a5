package api

import (
	"encoding/json"
	"net/http"

	"sjavs/internal/metrics"
)

func (s *Server) handleCreateMatch(w http.ResponseWriter, r *http.Request) {
	metrics.CommandsTotal.WithLabelValues("create_match").Inc()
	identity := identityFrom(r)

	m, err := s.svc.CreateMatch(r.Context(), identity.UserID, identity.Username)
	if err != nil {
		metrics.CommandErrors.WithLabelValues("create_match").Inc()
		writeError(w, s.log, err)
		return
	}
	metrics.MatchesCreated.Inc()
	writeJSON(w, http.StatusCreated, map[string]any{
		"game_id": m.ID,
		"pin":     m.PIN,
		"state":   string(m.Status),
	})
}

func (s *Server) handleJoinMatch(w http.ResponseWriter, r *http.Request) {
	metrics.CommandsTotal.WithLabelValues("join_match").Inc()
	identity := identityFrom(r)

	var body struct {
		PIN string `json:"pin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.PIN == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "illegal_move", Message: "missing pin"})
		return
	}

	m, err := s.svc.JoinMatch(r.Context(), identity.UserID, identity.Username, body.PIN)
	if err != nil {
		metrics.CommandErrors.WithLabelValues("join_match").Inc()
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"game_id": m.ID,
		"state":   string(m.Status),
	})
}

func (s *Server) handleLeaveMatch(w http.ResponseWriter, r *http.Request) {
	metrics.CommandsTotal.WithLabelValues("leave_match").Inc()
	identity := identityFrom(r)

	if err := s.svc.LeaveMatch(r.Context(), identity.UserID); err != nil {
		metrics.CommandErrors.WithLabelValues("leave_match").Inc()
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "left game"})
}

func (s *Server) handleStartGame(w http.ResponseWriter, r *http.Request) {
	metrics.CommandsTotal.WithLabelValues("start_game").Inc()
	identity := identityFrom(r)

	result, err := s.svc.StartGame(r.Context(), identity.UserID)
	if err != nil {
		metrics.CommandErrors.WithLabelValues("start_game").Inc()
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"game_id":         result.Match.ID,
		"state":           string(result.Match.Status),
		"dealer_position": result.Match.DealerPosition,
		"current_bidder":  result.Match.CurrentBidder,
		"positions":       result.Positions,
	})
}

func (s *Server) handleGetHand(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r)

	view, err := s.svc.HandView(r.Context(), identity.UserID)
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleBid(w http.ResponseWriter, r *http.Request) {
	metrics.CommandsTotal.WithLabelValues("bid").Inc()
	identity := identityFrom(r)

	var body struct {
		Length int    `json:"length"`
		Suit   string `json:"suit"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "illegal_move", Message: "malformed bid body"})
		return
	}

	if err := s.svc.MakeBid(r.Context(), identity.UserID, body.Length, body.Suit); err != nil {
		metrics.CommandErrors.WithLabelValues("bid").Inc()
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "bid made"})
}

func (s *Server) handlePass(w http.ResponseWriter, r *http.Request) {
	metrics.CommandsTotal.WithLabelValues("pass").Inc()
	identity := identityFrom(r)

	if err := s.svc.PassBid(r.Context(), identity.UserID); err != nil {
		metrics.CommandErrors.WithLabelValues("pass").Inc()
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "pass made"})
}

func (s *Server) handlePlayCard(w http.ResponseWriter, r *http.Request) {
	metrics.CommandsTotal.WithLabelValues("play_card").Inc()
	identity := identityFrom(r)

	var body struct {
		Card string `json:"card"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Card == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "illegal_move", Message: "missing card"})
		return
	}

	result, err := s.svc.PlayCard(r.Context(), identity.UserID, body.Card)
	if err != nil {
		metrics.CommandErrors.WithLabelValues("play_card").Inc()
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"card":           result.Card.Code(),
		"trick_complete": result.TrickComplete,
		"trick_winner":   result.TrickWinner,
		"game_complete":  result.GameComplete,
	})
}

func (s *Server) handleGetTrick(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r)

	view, err := s.svc.TrickView(r.Context(), identity.UserID)
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleCompleteGame(w http.ResponseWriter, r *http.Request) {
	metrics.CommandsTotal.WithLabelValues("complete_game").Inc()
	identity := identityFrom(r)

	result, err := s.svc.CompleteGame(r.Context(), identity.UserID)
	if err != nil {
		metrics.CommandErrors.WithLabelValues("complete_game").Inc()
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"scoring":      result.Scoring,
		"result":       result.Result,
		"cross_result": result.CrossResult,
		"cross_state":  result.Cross,
		"rubber_over":  result.RubberOver,
	})
}

func (s *Server) handleGetScore(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r)

	view, err := s.svc.ScoreView(r.Context(), identity.UserID)
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
